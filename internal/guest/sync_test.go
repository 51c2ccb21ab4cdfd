package guest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katemdaly/newspulse/backend/internal/apiclient"
	"github.com/katemdaly/newspulse/backend/internal/models"
)

// stubBackend records replayed votes and bulk preference pushes, failing
// votes for article ids listed in failFor.
type stubBackend struct {
	mu        sync.Mutex
	votes     []models.VoteRequest
	bulkCalls int
	prefs     models.Preferences
	failFor   map[string]bool
}

func (b *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/voting/vote", func(w http.ResponseWriter, r *http.Request) {
		var req models.VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failFor[req.ArticleID] {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"error": "Failed to process vote"})
			return
		}
		b.votes = append(b.votes, req)
		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"articleId": req.ArticleID,
			"votes":     models.VoteCounts{},
			"userVote":  req.VoteType,
		})
	})
	mux.HandleFunc("POST /api/preferences/bulk", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Preferences models.Preferences `json:"preferences"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.bulkCalls++
		b.prefs = req.Preferences
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	return mux
}

func newSyncEnv(t *testing.T, backend *stubBackend) (*Syncer, *VoteLedger, *Preferences) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	storage := newTestStorage(t)
	votes := NewVoteLedger(storage)
	prefs := NewPreferences(storage)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	api := apiclient.New(srv.URL)
	api.SetToken("test-token")

	return NewSyncer(api, votes, prefs, log), votes, prefs
}

func TestSyncReplaysVotesAndClears(t *testing.T) {
	backend := &stubBackend{}
	syncer, votes, prefs := newSyncEnv(t, backend)

	_, err := votes.Vote("first_article", models.Upvote)
	require.NoError(t, err)
	_, err = votes.Vote("second_article", models.Downvote)
	require.NoError(t, err)
	require.NoError(t, prefs.Set(models.PrefTheme, "dark"))

	report, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Votes, 2)
	assert.Equal(t, 2, report.Succeeded())
	assert.True(t, report.VotesCleared)
	assert.True(t, report.PreferencesSent)

	assert.Len(t, backend.votes, 2)
	assert.Equal(t, 1, backend.bulkCalls)
	assert.Contains(t, backend.prefs, models.PrefTheme)

	remaining, err := votes.UserVotes()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSyncPartialFailureStillClears(t *testing.T) {
	backend := &stubBackend{failFor: map[string]bool{"second_article": true}}
	syncer, votes, _ := newSyncEnv(t, backend)

	_, err := votes.Vote("first_article", models.Upvote)
	require.NoError(t, err)
	_, err = votes.Vote("second_article", models.Downvote)
	require.NoError(t, err)

	report, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded())
	assert.True(t, report.VotesCleared, "one success is enough to clear the local ledger")

	var failed *VoteSyncResult
	for i := range report.Votes {
		if report.Votes[i].Err != nil {
			failed = &report.Votes[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "second_article", failed.ArticleID)
}

func TestSyncTotalFailureKeepsLocalVotes(t *testing.T) {
	backend := &stubBackend{failFor: map[string]bool{
		"first_article":  true,
		"second_article": true,
	}}
	syncer, votes, _ := newSyncEnv(t, backend)

	_, err := votes.Vote("first_article", models.Upvote)
	require.NoError(t, err)
	_, err = votes.Vote("second_article", models.Downvote)
	require.NoError(t, err)

	report, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Succeeded())
	assert.False(t, report.VotesCleared)

	remaining, err := votes.UserVotes()
	require.NoError(t, err)
	assert.Len(t, remaining, 2, "a fully failed sync must leave the device state intact")
}

func TestSyncNothingStoredSkipsBulk(t *testing.T) {
	backend := &stubBackend{}
	syncer, _, _ := newSyncEnv(t, backend)

	report, err := syncer.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Votes)
	assert.False(t, report.PreferencesSent)
	assert.Zero(t, backend.bulkCalls, "no stored preferences means no bulk call")
}
