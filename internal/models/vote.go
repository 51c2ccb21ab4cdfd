package models

import "time"

// VoteKind is one of the two mutually exclusive vote values.
type VoteKind string

const (
	Upvote   VoteKind = "upvote"
	Downvote VoteKind = "downvote"
)

func (k VoteKind) Valid() bool {
	return k == Upvote || k == Downvote
}

// Vote is the ledger row: at most one per (user, article). Casting the same
// kind again deletes the row, casting the other kind overwrites it.
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_voting_history_user_article" json:"user_id"`
	ArticleID string    `gorm:"not null;uniqueIndex:idx_voting_history_user_article" json:"article_id"`
	VoteType  VoteKind  `gorm:"not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Vote) TableName() string { return "voting_history" }

// ArticleVoteSummary is the denormalized per-article aggregate. It is fully
// recomputed from the ledger after every vote change and is never the source
// of truth.
type ArticleVoteSummary struct {
	ID         int       `gorm:"primaryKey" json:"-"`
	ArticleID  string    `gorm:"uniqueIndex;not null" json:"articleId"`
	Upvotes    int       `gorm:"default:0" json:"upvotes"`
	Downvotes  int       `gorm:"default:0" json:"downvotes"`
	TotalVotes int       `gorm:"default:0" json:"totalVotes"`
	Score      int       `gorm:"default:0" json:"score"`
	UpdatedAt  time.Time `json:"-"`
}

func (ArticleVoteSummary) TableName() string { return "article_votes" }

// VoteCounts is the wire shape of a summary inside voting responses.
type VoteCounts struct {
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	TotalVotes int `json:"totalVotes"`
	Score      int `json:"score"`
}

func (s ArticleVoteSummary) Counts() VoteCounts {
	return VoteCounts{
		Upvotes:    s.Upvotes,
		Downvotes:  s.Downvotes,
		TotalVotes: s.TotalVotes,
		Score:      s.Score,
	}
}

// VoteRequest is the body of POST /api/voting/vote.
type VoteRequest struct {
	ArticleID string   `json:"articleId"`
	VoteType  VoteKind `json:"voteType"`
}

// VotingStats are the global counters behind GET /api/voting/stats.
type VotingStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalVotes         int64 `json:"totalVotes"`
	TotalArticlesVoted int64 `json:"totalArticlesVoted"`
}
