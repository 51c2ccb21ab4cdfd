// Package middleware holds the pre-request gates: authentication, the
// opportunistic session sweep and request IDs.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/models"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

// Context keys set by the auth middleware.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
	ContextTokenKey  = "session_token"
)

// RequireAuth rejects requests without a valid Bearer token. The signature
// check runs before the session lookup so malformed tokens never hit the
// store. On success the resolved user is attached to the context and the
// user's last-active timestamp is touched; that side effect never fails the
// request.
func RequireAuth(tokens *auth.TokenService, st *store.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":        "Access denied. No token provided.",
				"requiresAuth": true,
			})
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":        "Invalid token.",
				"requiresAuth": true,
			})
			return
		}

		session, err := st.SessionByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":        "Invalid or expired session.",
				"requiresAuth": true,
			})
			return
		}

		if err := st.TouchUserLastActive(c.Request.Context(), userID); err != nil {
			log.Warn("failed to touch last-active timestamp", "user_id", userID, "error", err)
		}

		attachUser(c, &session.User, token)
		c.Next()
	}
}

// OptionalAuth runs the same checks as RequireAuth, but attaches no user and
// proceeds instead of failing the request when any check does not pass.
func OptionalAuth(tokens *auth.TokenService, st *store.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			c.Next()
			return
		}

		session, err := st.SessionByToken(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		if err := st.TouchUserLastActive(c.Request.Context(), userID); err != nil {
			log.Warn("failed to touch last-active timestamp", "user_id", userID, "error", err)
		}

		attachUser(c, &session.User, token)
		c.Next()
	}
}

// CleanupExpiredSessions purges dead session rows on every request. Errors
// are logged and never block the primary request.
func CleanupExpiredSessions(st *store.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n, err := st.DeleteExpiredSessions(c.Request.Context()); err != nil {
			log.Warn("failed to clean up expired sessions", "error", err)
		} else if n > 0 {
			log.Debug("purged expired sessions", "count", n)
		}
		c.Next()
	}
}

func attachUser(c *gin.Context, user *models.User, token string) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextTokenKey, token)
}

// CurrentUser returns the authenticated user attached by RequireAuth or
// OptionalAuth, nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SessionToken returns the Bearer token the current request authenticated
// with, empty when unauthenticated.
func SessionToken(c *gin.Context) string {
	v, ok := c.Get(ContextTokenKey)
	if !ok {
		return ""
	}
	token, _ := v.(string)
	return token
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
