package guest

import (
	"context"
	"log/slog"
	"sort"

	"github.com/katemdaly/newspulse/backend/internal/apiclient"
	"github.com/katemdaly/newspulse/backend/internal/models"
)

// VoteSyncResult reports the outcome for one replayed local vote. The
// caller decides what to do with failures; the sync itself never retries.
type VoteSyncResult struct {
	ArticleID string
	Kind      models.VoteKind
	Err       error
}

// SyncReport is what a full sign-in sync produced.
type SyncReport struct {
	Votes            []VoteSyncResult
	VotesCleared     bool
	PreferencesSent  bool
	PreferencesError error
}

// Succeeded counts the replayed votes the backend accepted.
func (r *SyncReport) Succeeded() int {
	n := 0
	for _, v := range r.Votes {
		if v.Err == nil {
			n++
		}
	}
	return n
}

// Syncer pushes a device's guest activity to the backend after sign-in.
type Syncer struct {
	api   *apiclient.Client
	votes *VoteLedger
	prefs *Preferences
	log   *slog.Logger
}

func NewSyncer(api *apiclient.Client, votes *VoteLedger, prefs *Preferences, log *slog.Logger) *Syncer {
	return &Syncer{api: api, votes: votes, prefs: prefs, log: log}
}

// Run replays every locally recorded vote one at a time and pushes the
// stored preferences in a single bulk call. The local vote ledger is
// cleared only when at least one replay succeeded, so a fully failed sync
// leaves the device state intact for a later attempt. Local preferences
// are kept either way; the backend copy wins on the next load.
func (s *Syncer) Run(ctx context.Context) (*SyncReport, error) {
	report := &SyncReport{}

	userVotes, err := s.votes.UserVotes()
	if err != nil {
		return nil, err
	}

	// Deterministic order makes the report stable.
	ids := make([]string, 0, len(userVotes))
	for id := range userVotes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		kind := userVotes[id]
		_, voteErr := s.api.Vote(ctx, id, kind)
		if voteErr != nil {
			s.log.Warn("vote sync failed", "articleId", id, "error", voteErr)
		}
		report.Votes = append(report.Votes, VoteSyncResult{ArticleID: id, Kind: kind, Err: voteErr})
	}

	if report.Succeeded() > 0 {
		if err := s.votes.Clear(); err != nil {
			s.log.Warn("clearing local votes after sync", "error", err)
		} else {
			report.VotesCleared = true
		}
	}

	stored, err := s.prefs.Stored()
	if err != nil {
		return report, err
	}
	if len(stored) > 0 {
		if err := s.api.SetPreferencesBulk(ctx, stored); err != nil {
			s.log.Warn("preference sync failed", "error", err)
			report.PreferencesError = err
		} else {
			report.PreferencesSent = true
		}
	}

	return report, nil
}
