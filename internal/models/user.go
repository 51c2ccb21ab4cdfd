package models

import "time"

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	GoogleID string `gorm:"uniqueIndex;not null" json:"googleId"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`
	Picture  string `json:"picture"`

	// UpdatedAt doubles as the last-active timestamp: it is touched on
	// every authenticated request.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// GoogleAuthRequest is the body of POST /api/auth/google. The credential is
// the ID token produced by Google Sign-In on the frontend.
type GoogleAuthRequest struct {
	Credential string `json:"credential"`
}
