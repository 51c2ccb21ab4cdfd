package guest

import (
	"github.com/katemdaly/newspulse/backend/internal/models"
)

// Counts is the local per-article tally. Unlike the backend summary it is
// incrementally adjusted, since a guest device only ever records its own
// single vote per article.
type Counts struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`
}

// VoteLedger keeps the guest's votes in device storage under the same
// derived article ids the backend uses.
type VoteLedger struct {
	storage *Storage
}

func NewVoteLedger(storage *Storage) *VoteLedger {
	return &VoteLedger{storage: storage}
}

// Vote applies the same toggle semantics as the backend: the recorded kind
// again removes the vote, anything else casts or switches it. Returns the
// article's updated local counts.
func (l *VoteLedger) Vote(articleID string, kind models.VoteKind) (Counts, error) {
	votes, userVotes, err := l.read()
	if err != nil {
		return Counts{}, err
	}

	counts := votes[articleID]
	current, voted := userVotes[articleID]

	if voted && current == kind {
		decrement(&counts, kind)
		delete(userVotes, articleID)
	} else {
		if voted {
			decrement(&counts, current)
		}
		increment(&counts, kind)
		userVotes[articleID] = kind
	}

	counts.Score = counts.Upvotes - counts.Downvotes
	votes[articleID] = counts

	if err := l.write(votes, userVotes); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

// UserVote returns the guest's recorded vote for one article, nil if none.
func (l *VoteLedger) UserVote(articleID string) (*models.VoteKind, error) {
	_, userVotes, err := l.read()
	if err != nil {
		return nil, err
	}
	if kind, ok := userVotes[articleID]; ok {
		return &kind, nil
	}
	return nil, nil
}

func (l *VoteLedger) CountsFor(articleID string) (Counts, error) {
	votes, _, err := l.read()
	if err != nil {
		return Counts{}, err
	}
	return votes[articleID], nil
}

// UserVotes returns everything the guest has voted on, keyed by article id.
func (l *VoteLedger) UserVotes() (map[string]models.VoteKind, error) {
	_, userVotes, err := l.read()
	return userVotes, err
}

// Stats mirrors the backend's counters for the local ledger.
func (l *VoteLedger) Stats() (totalArticles, totalVotes, userTotalVotes int, err error) {
	votes, userVotes, err := l.read()
	if err != nil {
		return 0, 0, 0, err
	}
	for _, c := range votes {
		totalVotes += c.Upvotes + c.Downvotes
	}
	return len(votes), totalVotes, len(userVotes), nil
}

// Clear wipes the local ledger; called after a successful sync or when
// switching users.
func (l *VoteLedger) Clear() error {
	if err := l.storage.Delete(KeyVotes); err != nil {
		return err
	}
	return l.storage.Delete(KeyUserVotes)
}

func (l *VoteLedger) read() (map[string]Counts, map[string]models.VoteKind, error) {
	votes := map[string]Counts{}
	if _, err := l.storage.Get(KeyVotes, &votes); err != nil {
		return nil, nil, err
	}
	userVotes := map[string]models.VoteKind{}
	if _, err := l.storage.Get(KeyUserVotes, &userVotes); err != nil {
		return nil, nil, err
	}
	return votes, userVotes, nil
}

func (l *VoteLedger) write(votes map[string]Counts, userVotes map[string]models.VoteKind) error {
	if err := l.storage.Set(KeyVotes, votes); err != nil {
		return err
	}
	return l.storage.Set(KeyUserVotes, userVotes)
}

func increment(c *Counts, kind models.VoteKind) {
	if kind == models.Upvote {
		c.Upvotes++
	} else {
		c.Downvotes++
	}
}

func decrement(c *Counts, kind models.VoteKind) {
	if kind == models.Upvote && c.Upvotes > 0 {
		c.Upvotes--
	} else if kind == models.Downvote && c.Downvotes > 0 {
		c.Downvotes--
	}
}
