package models

import (
	"encoding/json"
	"time"
)

// UserPreference stores one key/value pair per row. Values are JSON-encoded
// opaquely; the well-known keys below additionally have typed shapes.
type UserPreference struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	UserID          int       `gorm:"not null;uniqueIndex:idx_user_preferences_user_key" json:"user_id"`
	PreferenceKey   string    `gorm:"not null;uniqueIndex:idx_user_preferences_user_key" json:"preference_key"`
	PreferenceValue string    `gorm:"not null" json:"preference_value"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserPreference) TableName() string { return "user_preferences" }

// Well-known preference keys. Anything else is stored as an opaque
// json.RawMessage.
const (
	PrefPagination    = "pagination"
	PrefFilters       = "filters"
	PrefTheme         = "theme"
	PrefNotifications = "notifications"
)

type Pagination struct {
	ItemsPerPage int `json:"itemsPerPage"`
	CurrentPage  int `json:"currentPage"`
}

type Filters struct {
	DateFilter      string `json:"dateFilter"`
	SortOrder       string `json:"sortOrder"`
	CustomStartDate string `json:"customStartDate"`
	CustomEndDate   string `json:"customEndDate"`
}

type Notifications struct {
	Email   bool `json:"email"`
	Browser bool `json:"browser"`
}

// PaginationPatch carries only the sub-fields the caller supplied; nil fields
// leave the stored value untouched.
type PaginationPatch struct {
	ItemsPerPage *int `json:"itemsPerPage"`
	CurrentPage  *int `json:"currentPage"`
}

func (p PaginationPatch) ApplyTo(dst *Pagination) {
	if p.ItemsPerPage != nil {
		dst.ItemsPerPage = *p.ItemsPerPage
	}
	if p.CurrentPage != nil {
		dst.CurrentPage = *p.CurrentPage
	}
}

type FiltersPatch struct {
	DateFilter      *string `json:"dateFilter"`
	SortOrder       *string `json:"sortOrder"`
	CustomStartDate *string `json:"customStartDate"`
	CustomEndDate   *string `json:"customEndDate"`
}

func (p FiltersPatch) ApplyTo(dst *Filters) {
	if p.DateFilter != nil {
		dst.DateFilter = *p.DateFilter
	}
	if p.SortOrder != nil {
		dst.SortOrder = *p.SortOrder
	}
	if p.CustomStartDate != nil {
		dst.CustomStartDate = *p.CustomStartDate
	}
	if p.CustomEndDate != nil {
		dst.CustomEndDate = *p.CustomEndDate
	}
}

// Preferences is the full key→value mapping for one user.
type Preferences map[string]json.RawMessage

// DefaultPreferences are applied for users (and guests) with nothing stored.
func DefaultPreferences() Preferences {
	return Preferences{
		PrefPagination:    mustJSON(DefaultPagination()),
		PrefFilters:       mustJSON(DefaultFilters()),
		PrefTheme:         mustJSON("light"),
		PrefNotifications: mustJSON(Notifications{}),
	}
}

func DefaultPagination() Pagination {
	return Pagination{ItemsPerPage: 10, CurrentPage: 1}
}

func DefaultFilters() Filters {
	return Filters{DateFilter: "all", SortOrder: "newest"}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
