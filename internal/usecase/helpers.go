package usecase

import (
	"context"

	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
)

// requireAdmin checks the verified caller email against the admin allow-list.
func requireAdmin(ctx context.Context, admins domain.AdminAllowList) error {
	caller, _ := domain.CallerFrom(ctx)
	if !admins.Allows(caller.VerifiedEmail()) {
		return apperror.Unauthorized("Admin access required")
	}
	return nil
}

func callerEmail(ctx context.Context) string {
	if caller, ok := domain.CallerFrom(ctx); ok {
		return caller.Identity.Email
	}
	return ""
}
