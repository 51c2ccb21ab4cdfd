package middleware

import (
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/models"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

type testEnv struct {
	store  *store.Store
	tokens *auth.TokenService
	user   *models.User
}

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
	user, _, err := st.UpsertUserByGoogleID(context.Background(), &auth.Identity{
		Subject: "google-1",
		Email:   "reader@example.com",
		Name:    "Reader",
	})
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars", time.Hour)
	require.NoError(t, err)

	return &testEnv{store: st, tokens: tokens, user: user}
}

// signIn issues a token with a matching session row, like the login handler.
func (e *testEnv) signIn(t *testing.T) string {
	t.Helper()
	token, expiresAt, err := e.tokens.Generate(e.user.ID)
	require.NoError(t, err)
	require.NoError(t, e.store.CreateSession(context.Background(), e.user.ID, token, expiresAt))
	return token
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func probeRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/probe", mw, func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	return r
}

func probe(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthNoToken(t *testing.T) {
	env := newTestEnv(t)
	r := probeRouter(RequireAuth(env.tokens, env.store, testLogger()))

	w := probe(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Access denied. No token provided.", body["error"])
	assert.Equal(t, true, body["requiresAuth"])
}

func TestRequireAuthBadSignature(t *testing.T) {
	env := newTestEnv(t)
	r := probeRouter(RequireAuth(env.tokens, env.store, testLogger()))

	w := probe(r, "not-a-real-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token.")
}

func TestRequireAuthValidTokenWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	r := probeRouter(RequireAuth(env.tokens, env.store, testLogger()))

	// The signature checks out, but no session row exists: logout and
	// session expiry both look like this.
	token, _, err := env.tokens.Generate(env.user.ID)
	require.NoError(t, err)

	w := probe(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired session.")
}

func TestRequireAuthExpiredSessionRow(t *testing.T) {
	env := newTestEnv(t)
	r := probeRouter(RequireAuth(env.tokens, env.store, testLogger()))

	token, _, err := env.tokens.Generate(env.user.ID)
	require.NoError(t, err)
	require.NoError(t, env.store.CreateSession(context.Background(), env.user.ID, token, time.Now().Add(-time.Minute)))

	w := probe(r, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthSuccess(t *testing.T) {
	env := newTestEnv(t)
	r := probeRouter(RequireAuth(env.tokens, env.store, testLogger()))

	w := probe(r, env.signIn(t))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reader@example.com")
}

func TestOptionalAuthProceedsAnonymously(t *testing.T) {
	env := newTestEnv(t)
	r := probeRouter(OptionalAuth(env.tokens, env.store, testLogger()))

	for _, token := range []string{"", "garbage-token"} {
		w := probe(r, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "anonymous")
	}
}

func TestOptionalAuthAttachesUser(t *testing.T) {
	env := newTestEnv(t)
	r := probeRouter(OptionalAuth(env.tokens, env.store, testLogger()))

	w := probe(r, env.signIn(t))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reader@example.com")
}

func TestCleanupExpiredSessionsPurges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.CreateSession(ctx, env.user.ID, "dead-token", time.Now().Add(-time.Hour)))

	r := gin.New()
	r.Use(CleanupExpiredSessions(env.store, testLogger()))
	r.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	purged, err := env.store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged, "middleware should have purged the dead row already")
}

func TestBearerTokenParsing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, bearerToken(c), "header %q", tt.header)
	}
}
