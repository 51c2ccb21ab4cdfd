package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/katemdaly/newspulse/backend/internal/apperror"
	"github.com/katemdaly/newspulse/backend/internal/middleware"
	"github.com/katemdaly/newspulse/backend/internal/models"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

type PreferencesHandler struct {
	store *store.Store
	log   *slog.Logger
}

func NewPreferencesHandler(st *store.Store, log *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{store: st, log: log}
}

// List handles GET /api/preferences.
func (h *PreferencesHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	prefs, err := h.store.AllPreferences(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, apperror.Internal("Failed to get user preferences", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"preferences": prefs,
	})
}

// Get handles GET /api/preferences/:key. A key that was never written comes
// back with a null value.
func (h *PreferencesHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	key := c.Param("key")

	value, err := h.store.Preference(c.Request.Context(), user.ID, key)
	if err != nil {
		fail(c, apperror.Internal("Failed to get user preference", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"key":     key,
		"value":   value,
	})
}

// Set handles POST /api/preferences/:key with body {value}.
func (h *PreferencesHandler) Set(c *gin.Context) {
	user := middleware.CurrentUser(c)
	key := c.Param("key")

	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Value) == 0 {
		fail(c, apperror.InvalidInput("Preference value is required"))
		return
	}

	if err := h.store.SetPreference(c.Request.Context(), user.ID, key, req.Value); err != nil {
		fail(c, apperror.Internal("Failed to set user preference", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"key":     key,
		"value":   req.Value,
		"message": "Preference saved successfully",
	})
}

// Bulk handles POST /api/preferences/bulk with body {preferences}. Each key
// is written independently; a failed key is reported without rolling back
// the rest.
func (h *PreferencesHandler) Bulk(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req struct {
		Preferences models.Preferences `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Preferences == nil {
		fail(c, apperror.InvalidInput("Preferences object is required"))
		return
	}

	results := h.store.SetPreferences(c.Request.Context(), user.ID, req.Preferences)
	for _, r := range results {
		if !r.Success {
			h.log.Warn("bulk preference write failed", "user_id", user.ID, "key", r.Key, "error", r.Error)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"preferences": req.Preferences,
		"results":     results,
		"message":     "Preferences saved successfully",
	})
}

// Pagination handles POST /api/preferences/pagination; supplied sub-fields
// are merged into the stored object.
func (h *PreferencesHandler) Pagination(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var patch models.PaginationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, apperror.InvalidInput("Invalid pagination settings"))
		return
	}

	merged, err := h.store.MergePagination(c.Request.Context(), user.ID, patch)
	if err != nil {
		fail(c, apperror.Internal("Failed to set pagination preferences", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"pagination": merged,
		"message":    "Pagination preferences saved successfully",
	})
}

// Filters handles POST /api/preferences/filters, merging like Pagination.
func (h *PreferencesHandler) Filters(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var patch models.FiltersPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, apperror.InvalidInput("Invalid filter settings"))
		return
	}

	merged, err := h.store.MergeFilters(c.Request.Context(), user.ID, patch)
	if err != nil {
		fail(c, apperror.Internal("Failed to set filter preferences", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"filters": merged,
		"message": "Filter preferences saved successfully",
	})
}

// Defaults handles GET /api/preferences/defaults; no auth required.
func (h *PreferencesHandler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"defaults": gin.H{
			models.PrefPagination:    models.DefaultPagination(),
			models.PrefFilters:       models.DefaultFilters(),
			models.PrefTheme:         "light",
			models.PrefNotifications: models.Notifications{},
		},
	})
}
