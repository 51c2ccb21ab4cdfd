package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/katemdaly/newspulse/backend/internal/apperror"
	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

// Handler combines all handler types.
type Handler struct {
	Auth        *AuthHandler
	Voting      *VotingHandler
	Preferences *PreferencesHandler
}

func NewHandler(st *store.Store, tokens *auth.TokenService, verifier auth.IdentityVerifier, log *slog.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(st, tokens, verifier, log),
		Voting:      NewVotingHandler(st, log),
		Preferences: NewPreferencesHandler(st, log),
	}
}

// fail translates any error into the {error, details?} JSON shape. Errors
// outside the apperror taxonomy become a 500 with a generic message so
// nothing internal leaks across the boundary.
func fail(c *gin.Context, err error) {
	var (
		message = "Internal server error"
		details string
	)
	if appErr, ok := err.(*apperror.Error); ok {
		message = appErr.Message
		details = appErr.Details
	}

	body := gin.H{"error": message}
	if details != "" {
		body["details"] = details
	}
	c.JSON(apperror.Status(err), body)
}
