package auth

import (
	"testing"
	"time"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	subject, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if subject != "alice" {
		t.Errorf("subject = %q, want %q", subject, "alice")
	}
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(token); err == nil {
			t.Errorf("Verify(%q) expected error", token)
		}
	}
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := svc.Verify(token); err == nil {
		t.Error("Verify() accepted an expired token")
	}
}

func TestTokenService_VerifyRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Error("Verify() accepted a token signed with another secret")
	}
}
