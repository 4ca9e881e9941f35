package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/security"
	"trujobs-api/pkg/validation"
)

type adminUsecase struct {
	userRepo domain.UserRepository
	admins   domain.AdminAllowList
	validate *validator.Validate
	audit    *security.AuditLogger
}

func NewAdminUsecase(userRepo domain.UserRepository, admins domain.AdminAllowList, validate *validator.Validate, audit *security.AuditLogger) domain.AdminUsecase {
	return &adminUsecase{
		userRepo: userRepo,
		admins:   admins,
		validate: validate,
		audit:    audit,
	}
}

func (u *adminUsecase) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := requireAdmin(ctx, u.admins); err != nil {
		return nil, err
	}

	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

// UpdateSubscriptionPlan sets the plan and clears any coupon code on the user.
func (u *adminUsecase) UpdateSubscriptionPlan(ctx context.Context, input domain.UpdateSubscriptionInput) (*domain.User, error) {
	if err := requireAdmin(ctx, u.admins); err != nil {
		return nil, err
	}

	input.Email = strings.TrimSpace(input.Email)
	input.SubscriptionPlan = strings.TrimSpace(input.SubscriptionPlan)
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	user, err := u.userRepo.UpdateSubscriptionPlan(ctx, input.Email, input.SubscriptionPlan)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}

	u.audit.Record(ctx, security.AuditEvent{
		Event:   security.EventSubscriptionUpdated,
		Subject: security.MaskEmail(callerEmail(ctx)),
		Details: map[string]string{"user": security.MaskEmail(user.Email), "plan": user.SubscriptionPlan},
	})
	return user, nil
}
