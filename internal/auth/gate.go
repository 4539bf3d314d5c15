package auth

import "errors"

var (
	ErrMissingToken     = errors.New("missing token")
	ErrIdentityMismatch = errors.New("token subject does not match claimed username")
)

// Verifier is the token collaborator the gate delegates to.
type Verifier interface {
	Verify(token string) (string, error)
}

// Gate validates a caller-supplied token against a caller-claimed username
// before a connection may join a room. Pure validation: the caller is
// responsible for closing the transport on rejection.
type Gate struct {
	tokens Verifier
}

func NewGate(tokens Verifier) *Gate {
	return &Gate{tokens: tokens}
}

// Admit returns the authorized subject, or one of ErrMissingToken,
// ErrInvalidToken, ErrIdentityMismatch. The mismatch check stops a valid
// token for user A being used to join as user B.
func (g *Gate) Admit(claimedUsername, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	subject, err := g.tokens.Verify(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if subject != claimedUsername {
		return "", ErrIdentityMismatch
	}
	return subject, nil
}
