package guest

import (
	"encoding/json"

	"github.com/katemdaly/newspulse/backend/internal/models"
)

// Preferences is the guest-side preference store. Reads fall back to the
// fixed defaults when nothing is stored.
type Preferences struct {
	storage *Storage
}

func NewPreferences(storage *Storage) *Preferences {
	return &Preferences{storage: storage}
}

// All returns the stored mapping merged over the defaults, so every
// well-known key always resolves.
func (p *Preferences) All() (models.Preferences, error) {
	prefs := models.DefaultPreferences()

	stored := models.Preferences{}
	ok, err := p.storage.Get(KeyPreferences, &stored)
	if err != nil {
		return nil, err
	}
	if ok {
		for k, v := range stored {
			prefs[k] = v
		}
	}
	return prefs, nil
}

// Get returns one key's value, defaulting like All.
func (p *Preferences) Get(key string) (json.RawMessage, error) {
	prefs, err := p.All()
	if err != nil {
		return nil, err
	}
	return prefs[key], nil
}

// Set writes one key, leaving siblings untouched.
func (p *Preferences) Set(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	stored := models.Preferences{}
	if _, err := p.storage.Get(KeyPreferences, &stored); err != nil {
		return err
	}
	stored[key] = encoded
	return p.storage.Set(KeyPreferences, stored)
}

// SetAll merges the given mapping over the stored one.
func (p *Preferences) SetAll(prefs models.Preferences) error {
	stored := models.Preferences{}
	if _, err := p.storage.Get(KeyPreferences, &stored); err != nil {
		return err
	}
	for k, v := range prefs {
		stored[k] = v
	}
	return p.storage.Set(KeyPreferences, stored)
}

// Stored returns exactly what the device has saved, without defaults; the
// sync uses it so defaults never overwrite backend values.
func (p *Preferences) Stored() (models.Preferences, error) {
	stored := models.Preferences{}
	if _, err := p.storage.Get(KeyPreferences, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Clear wipes local preferences.
func (p *Preferences) Clear() error {
	return p.storage.Delete(KeyPreferences)
}
