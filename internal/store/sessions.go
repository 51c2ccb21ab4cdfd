package store

import (
	"context"
	"fmt"
	"time"

	"github.com/katemdaly/newspulse/backend/internal/models"
)

func (s *Store) CreateSession(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	session := models.Session{
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// SessionByToken returns the live session for a token with its user loaded.
// Rows past their expiry are dead even if the sweep has not removed them yet,
// so the lookup filters on expires_at directly.
func (s *Store) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("session_token = ? AND expires_at > ?", token, time.Now().UTC()).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	err := s.db.WithContext(ctx).
		Where("session_token = ?", token).
		Delete(&models.Session{}).Error
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions purges dead rows. It runs opportunistically on
// incoming requests, not on a schedule.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
