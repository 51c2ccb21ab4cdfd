// Package store is the data-access layer over the five tables. All methods
// are plain read-then-write sequences; the only serialization they rely on
// is the store's uniqueness constraints.
package store

import "gorm.io/gorm"

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
