package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrUnknownKey   = errors.New("token signed with unknown key")
)

// Claims carries the identity asserted by a verified ID token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier validates a raw bearer credential and returns the identity it
// asserts. The HTTP layer depends on this interface so tests can swap in a
// stub instead of talking to Google.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}
