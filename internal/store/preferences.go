package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/katemdaly/newspulse/backend/internal/models"
)

// SetPreference upserts one key, replacing any prior value. The value is
// JSON-encoded opaquely; no schema validation happens here.
func (s *Store) SetPreference(ctx context.Context, userID int, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding preference %q: %w", key, err)
	}

	pref := models.UserPreference{
		UserID:          userID,
		PreferenceKey:   key,
		PreferenceValue: string(encoded),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "preference_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"preference_value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("saving preference %q: %w", key, err)
	}
	return nil
}

// Preference returns the stored value for one key, nil if nothing is stored.
func (s *Store) Preference(ctx context.Context, userID int, key string) (json.RawMessage, error) {
	var pref models.UserPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND preference_key = ?", userID, key).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading preference %q: %w", key, err)
	}
	return json.RawMessage(pref.PreferenceValue), nil
}

func (s *Store) AllPreferences(ctx context.Context, userID int) (models.Preferences, error) {
	var prefs []models.UserPreference
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&prefs).Error
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}

	result := make(models.Preferences, len(prefs))
	for _, p := range prefs {
		result[p.PreferenceKey] = json.RawMessage(p.PreferenceValue)
	}
	return result, nil
}

// PreferenceWriteResult reports the outcome of one key in a bulk write.
type PreferenceWriteResult struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SetPreferences applies each key independently; one failed write does not
// roll back the others. The per-key results are returned to the caller.
func (s *Store) SetPreferences(ctx context.Context, userID int, prefs models.Preferences) []PreferenceWriteResult {
	results := make([]PreferenceWriteResult, 0, len(prefs))
	for key, value := range prefs {
		res := PreferenceWriteResult{Key: key, Success: true}
		if err := s.SetPreference(ctx, userID, key, value); err != nil {
			res.Success = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// MergePagination folds the supplied sub-fields into the stored pagination
// object (defaults when nothing is stored) and saves the merged result.
func (s *Store) MergePagination(ctx context.Context, userID int, patch models.PaginationPatch) (models.Pagination, error) {
	current := models.DefaultPagination()
	if raw, err := s.Preference(ctx, userID, models.PrefPagination); err != nil {
		return current, err
	} else if raw != nil {
		// A corrupt stored value falls back to defaults rather than failing
		// the write.
		_ = json.Unmarshal(raw, &current)
	}

	patch.ApplyTo(&current)
	if err := s.SetPreference(ctx, userID, models.PrefPagination, current); err != nil {
		return current, err
	}
	return current, nil
}

// MergeFilters is the filters counterpart of MergePagination.
func (s *Store) MergeFilters(ctx context.Context, userID int, patch models.FiltersPatch) (models.Filters, error) {
	current := models.DefaultFilters()
	if raw, err := s.Preference(ctx, userID, models.PrefFilters); err != nil {
		return current, err
	} else if raw != nil {
		_ = json.Unmarshal(raw, &current)
	}

	patch.ApplyTo(&current)
	if err := s.SetPreference(ctx, userID, models.PrefFilters, current); err != nil {
		return current, err
	}
	return current, nil
}
