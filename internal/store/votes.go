package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/katemdaly/newspulse/backend/internal/models"
)

// CastOrToggleVote applies one vote action and returns the recomputed summary
// together with the user's resulting vote (nil when toggled off).
//
// Casting the kind already on record deletes the row; anything else upserts
// it. The summary is then rebuilt from the ledger, so a crash between the two
// writes leaves it stale only until the article's next vote.
func (s *Store) CastOrToggleVote(ctx context.Context, userID int, articleID string, kind models.VoteKind) (models.ArticleVoteSummary, *models.VoteKind, error) {
	existing, err := s.UserVote(ctx, userID, articleID)
	if err != nil {
		return models.ArticleVoteSummary{}, nil, err
	}

	if existing != nil && *existing == kind {
		err = s.db.WithContext(ctx).
			Where("user_id = ? AND article_id = ?", userID, articleID).
			Delete(&models.Vote{}).Error
		if err != nil {
			return models.ArticleVoteSummary{}, nil, fmt.Errorf("removing vote: %w", err)
		}
	} else {
		vote := models.Vote{
			UserID:    userID,
			ArticleID: articleID,
			VoteType:  kind,
		}
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vote_type", "updated_at"}),
		}).Create(&vote).Error
		if err != nil {
			return models.ArticleVoteSummary{}, nil, fmt.Errorf("casting vote: %w", err)
		}
	}

	summary, err := s.RecomputeArticleSummary(ctx, articleID)
	if err != nil {
		return models.ArticleVoteSummary{}, nil, err
	}

	userVote, err := s.UserVote(ctx, userID, articleID)
	if err != nil {
		return models.ArticleVoteSummary{}, nil, err
	}
	return summary, userVote, nil
}

// RecomputeArticleSummary re-aggregates the ledger for one article and
// replaces the summary row. Last writer wins; the result is idempotent given
// the ledger state at recomputation time.
func (s *Store) RecomputeArticleSummary(ctx context.Context, articleID string) (models.ArticleVoteSummary, error) {
	var upvotes, downvotes int64

	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("article_id = ? AND vote_type = ?", articleID, models.Upvote).
		Count(&upvotes).Error
	if err != nil {
		return models.ArticleVoteSummary{}, fmt.Errorf("counting upvotes: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("article_id = ? AND vote_type = ?", articleID, models.Downvote).
		Count(&downvotes).Error
	if err != nil {
		return models.ArticleVoteSummary{}, fmt.Errorf("counting downvotes: %w", err)
	}

	summary := models.ArticleVoteSummary{
		ArticleID:  articleID,
		Upvotes:    int(upvotes),
		Downvotes:  int(downvotes),
		TotalVotes: int(upvotes + downvotes),
		Score:      int(upvotes - downvotes),
		UpdatedAt:  time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"upvotes", "downvotes", "total_votes", "score", "updated_at"}),
	}).Create(&summary).Error
	if err != nil {
		return models.ArticleVoteSummary{}, fmt.Errorf("updating article summary: %w", err)
	}

	return summary, nil
}

// ArticleSummary returns the stored summary, or a zero-valued one when the
// article has never been voted on.
func (s *Store) ArticleSummary(ctx context.Context, articleID string) (models.ArticleVoteSummary, error) {
	var summary models.ArticleVoteSummary
	err := s.db.WithContext(ctx).Where("article_id = ?", articleID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ArticleVoteSummary{ArticleID: articleID}, nil
	}
	if err != nil {
		return models.ArticleVoteSummary{}, fmt.Errorf("loading article summary: %w", err)
	}
	return summary, nil
}

// AllArticleSummaries lists every article with recorded votes, highest score
// first.
func (s *Store) AllArticleSummaries(ctx context.Context) ([]models.ArticleVoteSummary, error) {
	var summaries []models.ArticleVoteSummary
	err := s.db.WithContext(ctx).Order("score desc").Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("listing article summaries: %w", err)
	}
	return summaries, nil
}

// UserVote returns the user's recorded vote for one article, nil if none.
func (s *Store) UserVote(ctx context.Context, userID int, articleID string) (*models.VoteKind, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user vote: %w", err)
	}
	return &vote.VoteType, nil
}

// UserVotes maps article id to vote kind for everything the user has voted on.
func (s *Store) UserVotes(ctx context.Context, userID int) (map[string]models.VoteKind, error) {
	var votes []models.Vote
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("listing user votes: %w", err)
	}

	result := make(map[string]models.VoteKind, len(votes))
	for _, v := range votes {
		result[v.ArticleID] = v.VoteType
	}
	return result, nil
}

func (s *Store) VotingStats(ctx context.Context) (models.VotingStats, error) {
	var stats models.VotingStats

	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return stats, fmt.Errorf("counting users: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Vote{}).Count(&stats.TotalVotes).Error; err != nil {
		return stats, fmt.Errorf("counting votes: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.ArticleVoteSummary{}).Count(&stats.TotalArticlesVoted).Error; err != nil {
		return stats, fmt.Errorf("counting voted articles: %w", err)
	}
	return stats, nil
}
