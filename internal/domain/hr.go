package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type HRStatus string

const (
	HRStatusPending  HRStatus = "pending"
	HRStatusApproved HRStatus = "approved"
	HRStatusRejected HRStatus = "rejected"
)

func (s HRStatus) Valid() bool {
	switch s {
	case HRStatusPending, HRStatusApproved, HRStatusRejected:
		return true
	}
	return false
}

type HRRole string

const (
	HRRoleAdmin     HRRole = "admin"
	HRRoleRecruiter HRRole = "recruiter"
	HRRoleViewer    HRRole = "viewer"
)

const ProviderGoogle = "google"

// ProviderProfile is the display data the identity provider returned at link time.
type ProviderProfile struct {
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Picture string `bson:"picture,omitempty" json:"picture,omitempty"`
}

// OAuthProvider binds an HR account to one identity-provider subject.
type OAuthProvider struct {
	Provider      string           `bson:"provider" json:"provider"`
	ProviderID    string           `bson:"provider_id" json:"providerId"`
	Email         string           `bson:"email,omitempty" json:"email,omitempty"`
	EmailVerified bool             `bson:"email_verified" json:"emailVerified"`
	Profile       *ProviderProfile `bson:"profile,omitempty" json:"profile,omitempty"`
	LinkedAt      time.Time        `bson:"linked_at" json:"linkedAt"`
}

// NewOAuthProvider builds a binding from a verified identity.
func NewOAuthProvider(id Identity, now time.Time) OAuthProvider {
	binding := OAuthProvider{
		Provider:      id.Provider,
		ProviderID:    id.Subject,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		LinkedAt:      now,
	}
	if id.Name != "" || id.Picture != "" {
		binding.Profile = &ProviderProfile{Name: id.Name, Picture: id.Picture}
	}
	return binding
}

type HRAccount struct {
	ID             bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string          `bson:"name" json:"name"`
	CompanyName    string          `bson:"company_name" json:"companyName"`
	MobileNumber   string          `bson:"mobile_number,omitempty" json:"mobileNumber,omitempty"`
	Address        string          `bson:"address,omitempty" json:"address,omitempty"`
	Documents      []string        `bson:"documents" json:"documents"`
	Email          string          `bson:"email,omitempty" json:"email,omitempty"`
	Roles          []HRRole        `bson:"roles" json:"roles"`
	Status         HRStatus        `bson:"status" json:"status"`
	Jobs           []bson.ObjectID `bson:"jobs" json:"jobs"`
	OAuthProviders []OAuthProvider `bson:"oauth_providers" json:"oauthProviders"`
	LastLogin      *time.Time      `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt      time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updatedAt"`
}

// HasProvider reports whether the (provider, providerID) pair is already bound.
func (h *HRAccount) HasProvider(provider, providerID string) bool {
	for _, p := range h.OAuthProviders {
		if p.Provider == provider && p.ProviderID == providerID {
			return true
		}
	}
	return false
}

func (h *HRAccount) IsApproved() bool {
	return h != nil && h.Status == HRStatusApproved
}

func (h *HRAccount) Summary() HRSummary {
	return HRSummary{ID: h.ID, Name: h.Name, CompanyName: h.CompanyName, Email: h.Email}
}

// HRSummary is the owner projection embedded in job responses.
type HRSummary struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	Name        string        `bson:"name" json:"name"`
	CompanyName string        `bson:"company_name" json:"companyName"`
	Email       string        `bson:"email,omitempty" json:"email,omitempty"`
}

// RegisterHRInput carries the profile part of a registration; identity comes from the token.
type RegisterHRInput struct {
	Name         string   `json:"name" validate:"required,max=200,valid_name"`
	CompanyName  string   `json:"companyName" validate:"required,max=200,no_emoji"`
	MobileNumber string   `json:"mobileNumber" validate:"omitempty,valid_phone"`
	Address      string   `json:"address" validate:"omitempty,max=500"`
	Documents    []string `json:"documents" validate:"omitempty,dive,url"`
}

type RegisterOutcome string

const (
	RegisterCreated  RegisterOutcome = "created"
	RegisterExisting RegisterOutcome = "existing"
	RegisterLinked   RegisterOutcome = "linked"
)

type HRRepository interface {
	Create(ctx context.Context, hr *HRAccount) error
	GetByID(ctx context.Context, id bson.ObjectID) (*HRAccount, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*HRAccount, error)
	GetByEmail(ctx context.Context, email string) (*HRAccount, error)
	// AddProvider appends the binding unless the pair is already present and returns the account.
	AddProvider(ctx context.Context, id bson.ObjectID, binding OAuthProvider) (*HRAccount, error)
	ListByStatus(ctx context.Context, status HRStatus) ([]HRAccount, error)
	UpdateStatus(ctx context.Context, id bson.ObjectID, status HRStatus) (*HRAccount, error)
	TouchLastLogin(ctx context.Context, id bson.ObjectID, at time.Time) error
	PullJob(ctx context.Context, id bson.ObjectID, jobID bson.ObjectID) error
	Summaries(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]HRSummary, error)
}

// HRNotifier is told about approval decisions. Implementations must be safe to ignore.
type HRNotifier interface {
	HRStatusChanged(ctx context.Context, hr *HRAccount) error
}

type HRUsecase interface {
	Register(ctx context.Context, identity Identity, input RegisterHRInput) (*HRAccount, RegisterOutcome, error)
	ResolveByIdentity(ctx context.Context, identity Identity) (*HRAccount, error)
	Me(ctx context.Context) (*HRAccount, error)
	ListByStatus(ctx context.Context, status string) ([]HRAccount, error)
	Approve(ctx context.Context, hrID string) (*HRAccount, error)
	Reject(ctx context.Context, hrID string) (*HRAccount, error)
}
