package domain

import (
	"context"
	"strings"
)

type CtxKey string

const (
	KeyCaller    CtxKey = "Caller"
	KeyRequestID CtxKey = "RequestID"
)

// Identity is the verified caller as reported by the identity provider.
type Identity struct {
	Provider      string `json:"provider"`
	Subject       string `json:"sub"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// Caller is threaded through the request context once the bearer token is verified.
// HR is nil until the HR attachment middleware resolves a linked account.
type Caller struct {
	Identity Identity
	HR       *HRAccount
}

// VerifiedEmail is the caller email, or "" when the provider has not verified it.
func (c *Caller) VerifiedEmail() string {
	if c == nil || !c.Identity.EmailVerified {
		return ""
	}
	return c.Identity.Email
}

func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, KeyCaller, caller)
}

func CallerFrom(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(KeyCaller).(*Caller)
	return caller, ok && caller != nil
}

// AdminAllowList is the static set of admin emails loaded at startup.
type AdminAllowList struct {
	emails map[string]struct{}
}

func NewAdminAllowList(emails []string) AdminAllowList {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return AdminAllowList{emails: set}
}

func (a AdminAllowList) Allows(email string) bool {
	if email == "" {
		return false
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (a AdminAllowList) Len() int {
	return len(a.emails)
}
