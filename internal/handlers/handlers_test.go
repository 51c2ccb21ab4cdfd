package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/middleware"
	"github.com/katemdaly/newspulse/backend/internal/models"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

// fakeVerifier substitutes for Google's token validation in tests.
type fakeVerifier struct {
	identity *auth.Identity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, credential string) (*auth.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type testEnv struct {
	router   *gin.Engine
	store    *store.Store
	tokens   *auth.TokenService
	verifier *fakeVerifier
}

// newTestEnv builds the full API router over an in-memory database, with
// the identity verifier stubbed out.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Session{}, &models.UserPreference{},
		&models.Vote{}, &models.ArticleVoteSummary{},
	))

	st := store.New(db)
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars", time.Hour)
	require.NoError(t, err)

	verifier := &fakeVerifier{identity: &auth.Identity{
		Subject: "google-1",
		Email:   "reader@example.com",
		Name:    "Reader",
		Picture: "https://example.com/avatar.png",
	}}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(st, tokens, verifier, log)

	requireAuth := middleware.RequireAuth(tokens, st, log)
	optionalAuth := middleware.OptionalAuth(tokens, st, log)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/auth/google", h.Auth.Google)
		api.GET("/auth/me", requireAuth, h.Auth.Me)
		api.POST("/auth/logout", requireAuth, h.Auth.Logout)
		api.GET("/auth/stats", h.Auth.Stats)

		api.POST("/voting/vote", requireAuth, h.Voting.Vote)
		api.GET("/voting/article/:articleId", optionalAuth, h.Voting.Article)
		api.GET("/voting/articles/all", optionalAuth, h.Voting.All)
		api.GET("/voting/user/votes", requireAuth, h.Voting.UserVotes)
		api.GET("/voting/stats", h.Voting.Stats)

		api.GET("/preferences/defaults", h.Preferences.Defaults)
		api.GET("/preferences", requireAuth, h.Preferences.List)
		api.GET("/preferences/:key", requireAuth, h.Preferences.Get)
		api.POST("/preferences/bulk", requireAuth, h.Preferences.Bulk)
		api.POST("/preferences/pagination", requireAuth, h.Preferences.Pagination)
		api.POST("/preferences/filters", requireAuth, h.Preferences.Filters)
		api.POST("/preferences/:key", requireAuth, h.Preferences.Set)
	}

	return &testEnv{router: r, store: st, tokens: tokens, verifier: verifier}
}

// do runs one request against the router and decodes the JSON body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	decoded := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w.Code, decoded
}

// signIn runs the full Google exchange and returns the issued token.
func (e *testEnv) signIn(t *testing.T) string {
	t.Helper()
	code, body := e.do(t, http.MethodPost, "/api/auth/google", "", gin.H{"credential": "fake-credential"})
	require.Equal(t, http.StatusOK, code, "sign-in response: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
