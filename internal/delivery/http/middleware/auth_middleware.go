package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/internal/domain"
	"trujobs-api/pkg/apperror"
	"trujobs-api/pkg/auth"
	"trujobs-api/pkg/security"
)

// Authenticate verifies the bearer ID token and threads the caller through the request context.
// A missing or malformed header is 401; a token that fails verification is 403.
func Authenticate(verifier auth.Verifier, audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Abort(c, http.StatusUnauthorized, "Authorization header with Bearer token required")
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			recordEvent(c, audit, security.EventTokenRejected, "", map[string]string{"reason": err.Error()})
			response.Abort(c, http.StatusForbidden, "Invalid or expired token")
			return
		}

		setCaller(c, &domain.Caller{Identity: *identity})
		c.Next()
	}
}

// AttachHR resolves the HR account bound to the caller's identity. When required
// and no account is linked the request stops with 403; otherwise the handler runs
// without one.
func AttachHR(hrUC domain.HRUsecase, required bool, audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := domain.CallerFrom(c.Request.Context())
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "User not authenticated")
			return
		}

		hr, err := hrUC.ResolveByIdentity(c.Request.Context(), caller.Identity)
		switch {
		case err == nil:
			attached := *caller
			attached.HR = hr
			setCaller(c, &attached)
		case apperror.StatusOf(err) == http.StatusNotFound:
			if required {
				recordEvent(c, audit, security.EventHRNotLinked, caller.Identity.Email, nil)
				response.Abort(c, http.StatusForbidden, "No HR account linked")
				return
			}
		default:
			c.Error(err)
			c.Abort()
			return
		}

		c.Next()
	}
}

func RequireApprovedHR(audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := domain.CallerFrom(c.Request.Context())
		if !ok || caller.HR == nil {
			response.Abort(c, http.StatusUnauthorized, "HR account required")
			return
		}
		if !caller.HR.IsApproved() {
			recordEvent(c, audit, security.EventHRNotApproved, caller.Identity.Email, map[string]string{
				"hr_id":  caller.HR.ID.Hex(),
				"status": string(caller.HR.Status),
			})
			response.Abort(c, http.StatusForbidden, "HR account not approved")
			return
		}
		c.Next()
	}
}

// RequireAdmin checks the verified caller email against the allow-list.
func RequireAdmin(admins domain.AdminAllowList, audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var email, verified string
		if caller, ok := domain.CallerFrom(c.Request.Context()); ok {
			email = caller.Identity.Email
			verified = caller.VerifiedEmail()
		}
		if !admins.Allows(verified) {
			recordEvent(c, audit, security.EventAdminDenied, email, nil)
			response.Abort(c, http.StatusUnauthorized, "Admin access required")
			return
		}
		c.Next()
	}
}

func setCaller(c *gin.Context, caller *domain.Caller) {
	c.Set(string(domain.KeyCaller), caller)
	c.Request = c.Request.WithContext(domain.WithCaller(c.Request.Context(), caller))
}

func recordEvent(c *gin.Context, audit *security.AuditLogger, event security.EventType, email string, details map[string]string) {
	e := security.AuditEvent{
		Event:     event,
		IP:        c.ClientIP(),
		RequestID: c.GetString(response.RequestIDKey),
		Path:      c.FullPath(),
		Details:   details,
	}
	if email != "" {
		e.Subject = security.MaskEmail(email)
	}
	audit.Record(c.Request.Context(), e)
}
