package guest

import "time"

// SaveSession persists the issued token and its absolute expiry.
func SaveSession(s *Storage, token string, expiresAt time.Time) error {
	if err := s.Set(KeyToken, token); err != nil {
		return err
	}
	return s.Set(KeyExpiresAt, expiresAt.Format(time.RFC3339))
}

// Session returns the stored token if present and unexpired.
func Session(s *Storage) (token string, ok bool) {
	var stored string
	if found, err := s.Get(KeyToken, &stored); err != nil || !found || stored == "" {
		return "", false
	}
	var expiresStr string
	if found, err := s.Get(KeyExpiresAt, &expiresStr); err != nil || !found {
		return "", false
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresStr)
	if err != nil || !time.Now().Before(expiresAt) {
		return "", false
	}
	return stored, true
}

// ClearSession drops the stored token.
func ClearSession(s *Storage) error {
	if err := s.Delete(KeyToken); err != nil {
		return err
	}
	return s.Delete(KeyExpiresAt)
}
