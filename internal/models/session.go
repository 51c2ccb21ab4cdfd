package models

import "time"

// Session binds an issued token to a user and an expiry. A token is only
// good while a live session row exists for it, independent of the token's
// own signature validity; logout deletes the row.
type Session struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	UserID       int       `gorm:"not null;index" json:"user_id"`
	SessionToken string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Session) TableName() string { return "user_sessions" }
