package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"trujobs-api/internal/domain"
)

// TokenInfoVerifier asks Google's tokeninfo endpoint to validate each token.
type TokenInfoVerifier struct {
	clientID string
	svc      *oauth2.Service
}

func NewTokenInfoVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*TokenInfoVerifier, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second})}, opts...)
	svc, err := oauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create oauth2 service: %w", err)
	}
	return &TokenInfoVerifier{clientID: clientID, svc: svc}, nil
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, rawToken string) (*domain.Identity, error) {
	info, err := v.svc.Tokeninfo().IdToken(rawToken).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if v.clientID == "" || info.Audience != v.clientID {
		return nil, ErrInvalidAudience
	}
	if info.UserId == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &domain.Identity{
		Provider:      domain.ProviderGoogle,
		Subject:       info.UserId,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
	}, nil
}
