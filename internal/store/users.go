package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/models"
)

// UpsertUserByGoogleID returns the user for a verified identity, creating it
// on first sign-in. Existing users get their last-active timestamp touched.
// The second return reports whether a new row was created.
func (s *Store) UpsertUserByGoogleID(ctx context.Context, id *auth.Identity) (*models.User, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("google_id = ?", id.Subject).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			GoogleID: id.Subject,
			Email:    id.Email,
			Name:     id.Name,
			Picture:  id.Picture,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, false, fmt.Errorf("creating user: %w", err)
		}
		return &user, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.TouchUserLastActive(ctx, user.ID); err != nil {
		return nil, false, err
	}
	return &user, false, nil
}

func (s *Store) UserByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchUserLastActive bumps updated_at; callers on the request path treat a
// failure here as non-fatal.
func (s *Store) TouchUserLastActive(ctx context.Context, userID int) error {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("updated_at", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("touching user %d: %w", userID, err)
	}
	return nil
}
