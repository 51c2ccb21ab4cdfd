// Package guest mirrors the voting and preference operations against local
// device storage for users without a session, and replays them to the
// backend once on sign-in.
package guest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys; values are JSON-encoded.
const (
	KeyToken       = "newsapp_token"
	KeyExpiresAt   = "newsapp_expires_at"
	KeyVotes       = "news_app_votes"
	KeyUserVotes   = "news_app_user_votes"
	KeyPreferences = "newsapp_preferences"
)

// Storage is a small file-backed key/value store standing in for the
// browser's localStorage: one JSON object per device, keys holding
// JSON-encoded values.
type Storage struct {
	path string
	mu   sync.Mutex
}

func NewStorage(path string) *Storage {
	return &Storage{path: path}
}

// Get decodes the value under key into v. The second return is false when
// the key is absent.
func (s *Storage) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("guest: decoding %q: %w", key, err)
	}
	return true, nil
}

func (s *Storage) Set(key string, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("guest: encoding %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = encoded
	return s.save(data)
}

func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, key)
	return s.save(data)
}

func (s *Storage) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("guest: reading storage: %w", err)
	}

	data := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("guest: corrupt storage file: %w", err)
		}
	}
	return data, nil
}

func (s *Storage) save(data map[string]json.RawMessage) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("guest: creating storage directory: %w", err)
	}
	if err := os.WriteFile(s.path, encoded, 0o644); err != nil {
		return fmt.Errorf("guest: writing storage: %w", err)
	}
	return nil
}
