package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/katemdaly/newspulse/backend/internal/apperror"
	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/middleware"
	"github.com/katemdaly/newspulse/backend/internal/models"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

type AuthHandler struct {
	store    *store.Store
	tokens   *auth.TokenService
	verifier auth.IdentityVerifier
	log      *slog.Logger
}

func NewAuthHandler(st *store.Store, tokens *auth.TokenService, verifier auth.IdentityVerifier, log *slog.Logger) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens, verifier: verifier, log: log}
}

// Google handles POST /api/auth/google: verify the credential, create or
// refresh the user, issue a token and persist the matching session row.
func (h *AuthHandler) Google(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Credential == "" {
		fail(c, apperror.InvalidInput("Google credential token is required"))
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		h.log.Error("google authentication failed", "error", err)
		fail(c, apperror.Upstream("Authentication failed", err))
		return
	}

	user, created, err := h.store.UpsertUserByGoogleID(c.Request.Context(), identity)
	if err != nil {
		h.log.Error("failed to upsert user", "error", err)
		fail(c, apperror.Internal("Authentication failed", err))
		return
	}
	if created {
		h.log.Info("new user created", "user_id", user.ID, "email", user.Email)
	} else {
		h.log.Info("existing user authenticated", "user_id", user.ID, "email", user.Email)
	}

	token, expiresAt, err := h.tokens.Generate(user.ID)
	if err != nil {
		fail(c, apperror.Internal("Authentication failed", err))
		return
	}
	if err := h.store.CreateSession(c.Request.Context(), user.ID, token, expiresAt); err != nil {
		fail(c, apperror.Internal("Authentication failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
		"user":      publicProfile(user),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		fail(c, apperror.Unauthenticated("Access denied. No token provided."))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    publicProfile(user),
	})
}

// Logout handles POST /api/auth/logout: deletes the session row for the
// presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if token != "" {
		if err := h.store.DeleteSession(c.Request.Context(), token); err != nil {
			h.log.Error("logout failed", "error", err)
			fail(c, apperror.Internal("Logout failed", err))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Stats handles GET /api/auth/stats; same counters as the voting stats.
func (h *AuthHandler) Stats(c *gin.Context) {
	stats, err := h.store.VotingStats(c.Request.Context())
	if err != nil {
		fail(c, apperror.Internal("Failed to get statistics", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func publicProfile(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"googleId": u.GoogleID,
		"email":    u.Email,
		"name":     u.Name,
		"picture":  u.Picture,
	}
}
