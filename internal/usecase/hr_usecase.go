package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"

	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/logger"
	"trujobs-api/pkg/metrics"
	"trujobs-api/pkg/security"
	"trujobs-api/pkg/validation"
)

type hrUsecase struct {
	hrRepo   domain.HRRepository
	notifier domain.HRNotifier
	admins   domain.AdminAllowList
	validate *validator.Validate
	audit    *security.AuditLogger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewHRUsecase(
	hrRepo domain.HRRepository,
	notifier domain.HRNotifier,
	admins domain.AdminAllowList,
	validate *validator.Validate,
	audit *security.AuditLogger,
	m *metrics.Metrics,
) domain.HRUsecase {
	return &hrUsecase{
		hrRepo:   hrRepo,
		notifier: notifier,
		admins:   admins,
		validate: validate,
		audit:    audit,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register resolves the caller to an HR account: by provider binding first, then
// by verified email (linking the new binding), else a new pending account.
func (u *hrUsecase) Register(ctx context.Context, identity domain.Identity, input domain.RegisterHRInput) (*domain.HRAccount, domain.RegisterOutcome, error) {
	if identity.Provider == "" || identity.Subject == "" {
		return nil, "", apperror.BadRequest("A verified identity is required")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	if err := u.validate.Struct(input); err != nil {
		return nil, "", apperror.BadRequest(validation.Message(err))
	}

	existing, err := u.hrRepo.GetByProvider(ctx, identity.Provider, identity.Subject)
	if err == nil {
		u.metrics.HRRegistered(string(domain.RegisterExisting))
		return existing, domain.RegisterExisting, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", apperror.Internal(err)
	}

	now := u.now()
	binding := domain.NewOAuthProvider(identity, now)
	email := strings.ToLower(strings.TrimSpace(identity.Email))

	if email != "" && identity.EmailVerified {
		byEmail, err := u.hrRepo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			linked, err := u.hrRepo.AddProvider(ctx, byEmail.ID, binding)
			if err != nil {
				return nil, "", apperror.Internal(err)
			}
			logger.Log.Info("linked provider to existing HR", "hr_id", linked.ID.Hex(), "provider", identity.Provider)
			u.metrics.HRRegistered(string(domain.RegisterLinked))
			return linked, domain.RegisterLinked, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, "", apperror.Internal(err)
		}
	}

	documents := input.Documents
	if documents == nil {
		documents = []string{}
	}
	hr := &domain.HRAccount{
		Name:           input.Name,
		CompanyName:    input.CompanyName,
		MobileNumber:   input.MobileNumber,
		Address:        input.Address,
		Documents:      documents,
		Email:          email,
		Roles:          []domain.HRRole{domain.HRRoleRecruiter},
		Status:         domain.HRStatusPending,
		Jobs:           []bson.ObjectID{},
		OAuthProviders: []domain.OAuthProvider{binding},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := u.hrRepo.Create(ctx, hr); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// a concurrent registration for the same binding won the insert
			winner, getErr := u.hrRepo.GetByProvider(ctx, identity.Provider, identity.Subject)
			if getErr == nil {
				u.metrics.HRRegistered(string(domain.RegisterExisting))
				return winner, domain.RegisterExisting, nil
			}
		}
		return nil, "", apperror.Internal(err)
	}

	u.metrics.HRRegistered(string(domain.RegisterCreated))
	return hr, domain.RegisterCreated, nil
}

func (u *hrUsecase) ResolveByIdentity(ctx context.Context, identity domain.Identity) (*domain.HRAccount, error) {
	hr, err := u.hrRepo.GetByProvider(ctx, identity.Provider, identity.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "No HR account linked", domain.ErrNotFound)
		}
		return nil, apperror.Internal(err)
	}
	return hr, nil
}

func (u *hrUsecase) Me(ctx context.Context) (*domain.HRAccount, error) {
	caller, ok := domain.CallerFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if caller.HR == nil {
		return nil, apperror.NotFound("HR not found")
	}

	hr := *caller.HR
	now := u.now()
	if err := u.hrRepo.TouchLastLogin(ctx, hr.ID, now); err != nil {
		logger.Log.Warn("failed to update HR last login", "hr_id", hr.ID.Hex(), "error", err)
	} else {
		hr.LastLogin = &now
	}
	return &hr, nil
}

func (u *hrUsecase) ListByStatus(ctx context.Context, status string) ([]domain.HRAccount, error) {
	if err := requireAdmin(ctx, u.admins); err != nil {
		return nil, err
	}

	s := domain.HRStatus(strings.ToLower(strings.TrimSpace(status)))
	if s == "" {
		s = domain.HRStatusPending
	}
	if !s.Valid() {
		return nil, apperror.BadRequest("status must be one of pending, approved, rejected")
	}

	hrs, err := u.hrRepo.ListByStatus(ctx, s)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return hrs, nil
}

func (u *hrUsecase) Approve(ctx context.Context, hrID string) (*domain.HRAccount, error) {
	return u.setStatus(ctx, hrID, domain.HRStatusApproved)
}

func (u *hrUsecase) Reject(ctx context.Context, hrID string) (*domain.HRAccount, error) {
	return u.setStatus(ctx, hrID, domain.HRStatusRejected)
}

// setStatus overwrites the status whatever it was; concurrent decisions are last-write-wins.
func (u *hrUsecase) setStatus(ctx context.Context, hrID string, status domain.HRStatus) (*domain.HRAccount, error) {
	if err := requireAdmin(ctx, u.admins); err != nil {
		return nil, err
	}

	id, err := bson.ObjectIDFromHex(hrID)
	if err != nil {
		return nil, apperror.BadRequest("Invalid HR id")
	}

	hr, err := u.hrRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("HR not found")
		}
		return nil, apperror.Internal(err)
	}

	u.metrics.HRDecided(string(status))
	u.audit.Record(ctx, security.AuditEvent{
		Event:   security.EventHRStatusChanged,
		Subject: security.MaskEmail(callerEmail(ctx)),
		Details: map[string]string{"hr_id": hr.ID.Hex(), "status": string(status)},
	})

	if err := u.notifier.HRStatusChanged(ctx, hr); err != nil {
		logger.Log.Warn("failed to notify HR of status change", "hr_id", hr.ID.Hex(), "status", status, "error", err)
	}
	return hr, nil
}
