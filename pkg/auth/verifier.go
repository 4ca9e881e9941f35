// Package auth verifies Google-issued ID tokens.
package auth

import (
	"context"
	"errors"
	"fmt"

	"trujobs-api/internal/domain"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidAudience = errors.New("invalid token audience")
)

// Verifier turns a raw bearer token into a verified identity.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.Identity, error)
}

const (
	ModeJWKS      = "jwks"
	ModeTokenInfo = "tokeninfo"
)

// NewVerifier picks the verification strategy for GOOGLE_VERIFY_MODE.
func NewVerifier(ctx context.Context, mode, clientID string) (Verifier, error) {
	switch mode {
	case ModeJWKS, "":
		return NewGoogleVerifier(clientID, NewKeySet(GoogleCertsURL, nil)), nil
	case ModeTokenInfo:
		return NewTokenInfoVerifier(ctx, clientID)
	default:
		return nil, fmt.Errorf("unknown verify mode %q", mode)
	}
}
