package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	err := s.CreateSession(ctx, user.ID, "token-abc", time.Now().Add(time.Hour))
	require.NoError(t, err)

	session, err := s.SessionByToken(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, user.Email, session.User.Email, "user should be preloaded")

	require.NoError(t, s.DeleteSession(ctx, "token-abc"))

	_, err = s.SessionByToken(ctx, "token-abc")
	assert.Error(t, err)
}

func TestSessionByTokenIgnoresExpiredRows(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	// The sweep has not run yet; the lookup must still treat the row as dead.
	err := s.CreateSession(ctx, user.ID, "token-dead", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = s.SessionByToken(ctx, "token-dead")
	assert.Error(t, err)
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, user.ID, "token-live", time.Now().Add(time.Hour)))
	require.NoError(t, s.CreateSession(ctx, user.ID, "token-dead-1", time.Now().Add(-time.Hour)))
	require.NoError(t, s.CreateSession(ctx, user.ID, "token-dead-2", time.Now().Add(-time.Minute)))

	purged, err := s.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	_, err = s.SessionByToken(ctx, "token-live")
	assert.NoError(t, err)
}
