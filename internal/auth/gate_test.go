package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGate_Admit(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	gate := NewGate(tokens)

	daveToken, err := tokens.Issue("dave")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	carolToken, err := tokens.Issue("carol")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		token    string
		wantErr  error
	}{
		{"missing token", "carol", "", ErrMissingToken},
		{"invalid token", "carol", "garbage", ErrInvalidToken},
		{"identity mismatch", "carol", daveToken, ErrIdentityMismatch},
		{"authorized", "carol", carolToken, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := gate.Admit(tt.username, tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Admit() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && subject != tt.username {
				t.Errorf("subject = %q, want %q", subject, tt.username)
			}
			if tt.wantErr != nil && subject != "" {
				t.Errorf("subject = %q, want empty on rejection", subject)
			}
		})
	}
}
