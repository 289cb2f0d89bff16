package middleware

import (
	"net/http"

	"leave-portal/internal/domain"
	"leave-portal/internal/session"
	sessionerrors "leave-portal/internal/session/errors"
	"leave-portal/internal/shared/contextutil"
	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Denial actions offered on the access-denied view.
var deniedActions = []string{"retry", "back", "sign_out"}

const LoginPath = "/login"

// SessionGuard is the part of the session guard the gates need.
type SessionGuard interface {
	CurrentSession() (session.Session, bool)
	Authorize(required domain.Role) session.Decision
	RecordActivity()
}

// RecordActivity treats every request as user activity. Routes that only
// poll state (the countdown) are listed in skip by full path.
func RecordActivity(guard SessionGuard, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(c *gin.Context) {
		if !skipped[c.Request.Method+" "+c.FullPath()] {
			guard.RecordActivity()
		}
		c.Next()
	}
}

// RequireSession lets the request through only with an active session and
// exposes the caller as role, user_email and user_id on the gin context.
func RequireSession(guard SessionGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guard.CurrentSession()
		if !ok {
			abortUnauthenticated(c)
			return
		}

		c.Set("role", sess.Role.String())
		c.Set("user_email", sess.Email)
		c.Set("user_id", sess.UserID)
		c.Request = c.Request.WithContext(contextutil.WithUserEmail(c.Request.Context(), sess.Email))
		c.Next()
	}
}

// RequireRole gates a route on the role hierarchy: any role at or above
// required passes. A missing session redirects to login; a low role gets the
// access-denied payload, never a redirect.
func RequireRole(guard SessionGuard, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := guard.Authorize(required)
		switch d.Reason {
		case session.ReasonAllowed:
			c.Next()
		case session.ReasonUnauthenticated:
			abortUnauthenticated(c)
		default:
			abortForbidden(c, sessionerrors.ErrInsufficientRole.Message, gin.H{
				"required": d.Required,
				"role":     d.Actual,
				"actions":  deniedActions,
			})
		}
	}
}

func abortUnauthenticated(c *gin.Context) {
	e := sessionerrors.ErrNotAuthenticated
	response.Error(c, e.HTTPStatus, e.Code, e.Message, gin.H{"redirect": LoginPath})
	c.Abort()
}

func abortForbidden(c *gin.Context, message string, details any) {
	response.Error(c, http.StatusForbidden, sessionerrors.ErrInsufficientRole.Code, message, details)
	c.Abort()
}
