package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/katemdaly/newspulse/backend/internal/auth"
	"github.com/katemdaly/newspulse/backend/internal/models"
)

// newTestStore returns a store backed by a fresh in-memory SQLite database
// with the full schema migrated. Each test gets its own database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second pooled connection would see its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.UserPreference{},
		&models.Vote{},
		&models.ArticleVoteSummary{},
	)
	require.NoError(t, err)

	return New(db)
}

func createTestUser(t *testing.T, s *Store, subject string) *models.User {
	t.Helper()
	user, created, err := s.UpsertUserByGoogleID(context.Background(), &auth.Identity{
		Subject: subject,
		Email:   subject + "@example.com",
		Name:    "Test " + subject,
	})
	require.NoError(t, err)
	require.True(t, created)
	return user
}
