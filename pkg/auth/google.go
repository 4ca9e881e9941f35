package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"trujobs-api/internal/domain"
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// GoogleVerifier checks RS256 ID tokens locally against Google's published keys.
type GoogleVerifier struct {
	clientID string
	keys     *KeySet
}

func NewGoogleVerifier(clientID string, keys *KeySet) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, keys: keys}
}

func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*domain.Identity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: client id not configured", ErrInvalidToken)
	}

	claims := &googleClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, v.keys.KeyFunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !googleIssuers[claims.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &domain.Identity{
		Provider:      domain.ProviderGoogle,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}
