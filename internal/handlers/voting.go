package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/katemdaly/newspulse/backend/internal/apperror"
	"github.com/katemdaly/newspulse/backend/internal/middleware"
	"github.com/katemdaly/newspulse/backend/internal/models"
	"github.com/katemdaly/newspulse/backend/internal/store"
)

type VotingHandler struct {
	store *store.Store
	log   *slog.Logger
}

func NewVotingHandler(st *store.Store, log *slog.Logger) *VotingHandler {
	return &VotingHandler{store: st, log: log}
}

// Vote handles POST /api/voting/vote. Casting the kind already on record
// removes the vote; anything else casts or switches it.
func (h *VotingHandler) Vote(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.InvalidInput("Article ID and vote type are required"))
		return
	}
	if req.ArticleID == "" || req.VoteType == "" {
		fail(c, apperror.InvalidInput("Article ID and vote type are required"))
		return
	}
	if !req.VoteType.Valid() {
		fail(c, apperror.InvalidInput(`Vote type must be either "upvote" or "downvote"`))
		return
	}

	summary, userVote, err := h.store.CastOrToggleVote(c.Request.Context(), user.ID, req.ArticleID, req.VoteType)
	if err != nil {
		h.log.Error("vote failed", "user_id", user.ID, "article_id", req.ArticleID, "error", err)
		fail(c, apperror.Internal("Failed to process vote", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"articleId": req.ArticleID,
		"votes":     summary.Counts(),
		"userVote":  userVote,
	})
}

// Article handles GET /api/voting/article/:articleId. Works without auth;
// userVote is null for guests.
func (h *VotingHandler) Article(c *gin.Context) {
	articleID := c.Param("articleId")

	summary, err := h.store.ArticleSummary(c.Request.Context(), articleID)
	if err != nil {
		fail(c, apperror.Internal("Failed to get article votes", err))
		return
	}

	var userVote *models.VoteKind
	if user := middleware.CurrentUser(c); user != nil {
		userVote, err = h.store.UserVote(c.Request.Context(), user.ID, articleID)
		if err != nil {
			fail(c, apperror.Internal("Failed to get article votes", err))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"articleId": articleID,
		"votes":     summary.Counts(),
		"userVote":  userVote,
	})
}

// articleVotes is the per-article entry of GET /api/voting/articles/all.
type articleVotes struct {
	models.VoteCounts
	UserVote *models.VoteKind `json:"userVote"`
}

// All handles GET /api/voting/articles/all: a mapping of article id to vote
// counts for every article with recorded votes, with the caller's own votes
// folded in when authenticated.
func (h *VotingHandler) All(c *gin.Context) {
	summaries, err := h.store.AllArticleSummaries(c.Request.Context())
	if err != nil {
		fail(c, apperror.Internal("Failed to get article votes", err))
		return
	}

	userVotes := map[string]models.VoteKind{}
	if user := middleware.CurrentUser(c); user != nil {
		userVotes, err = h.store.UserVotes(c.Request.Context(), user.ID)
		if err != nil {
			fail(c, apperror.Internal("Failed to get article votes", err))
			return
		}
	}

	votes := make(map[string]articleVotes, len(summaries))
	for _, s := range summaries {
		entry := articleVotes{VoteCounts: s.Counts()}
		if kind, ok := userVotes[s.ArticleID]; ok {
			k := kind
			entry.UserVote = &k
		}
		votes[s.ArticleID] = entry
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"votes":         votes,
		"totalArticles": len(summaries),
	})
}

// UserVotes handles GET /api/voting/user/votes.
func (h *VotingHandler) UserVotes(c *gin.Context) {
	user := middleware.CurrentUser(c)

	votes, err := h.store.UserVotes(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, apperror.Internal("Failed to get user votes", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"votes":      votes,
		"totalVotes": len(votes),
	})
}

// Stats handles GET /api/voting/stats.
func (h *VotingHandler) Stats(c *gin.Context) {
	stats, err := h.store.VotingStats(c.Request.Context())
	if err != nil {
		fail(c, apperror.Internal("Failed to get voting statistics", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
