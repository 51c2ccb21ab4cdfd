package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katemdaly/newspulse/backend/internal/models"
)

func TestSetAndGetPreference(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	err := s.SetPreference(ctx, user.ID, models.PrefTheme, "dark")
	require.NoError(t, err)

	raw, err := s.Preference(ctx, user.ID, models.PrefTheme)
	require.NoError(t, err)
	assert.JSONEq(t, `"dark"`, string(raw))
}

func TestSetPreferenceOverwrites(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	require.NoError(t, s.SetPreference(ctx, user.ID, models.PrefTheme, "dark"))
	require.NoError(t, s.SetPreference(ctx, user.ID, models.PrefTheme, "light"))

	raw, err := s.Preference(ctx, user.ID, models.PrefTheme)
	require.NoError(t, err)
	assert.JSONEq(t, `"light"`, string(raw))

	prefs, err := s.AllPreferences(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, prefs, 1)
}

func TestPreferenceAbsentKey(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")

	raw, err := s.Preference(context.Background(), user.ID, "never_written")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestPreferencesAreScopedToUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "google-alice")
	bob := createTestUser(t, s, "google-bob")

	require.NoError(t, s.SetPreference(ctx, alice.ID, models.PrefTheme, "dark"))

	raw, err := s.Preference(ctx, bob.ID, models.PrefTheme)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSetPreferencesBulkLeavesSiblingsAlone(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	require.NoError(t, s.SetPreference(ctx, user.ID, models.PrefTheme, "dark"))

	results := s.SetPreferences(ctx, user.ID, models.Preferences{
		models.PrefPagination: json.RawMessage(`{"itemsPerPage":25,"currentPage":1}`),
		models.PrefFilters:    json.RawMessage(`{"dateFilter":"week","sortOrder":"oldest"}`),
	})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success, "key %s", r.Key)
	}

	prefs, err := s.AllPreferences(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 3)
	assert.JSONEq(t, `"dark"`, string(prefs[models.PrefTheme]))
}

func TestMergePaginationPartialPatch(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	require.NoError(t, s.SetPreference(ctx, user.ID, models.PrefPagination,
		models.Pagination{ItemsPerPage: 25, CurrentPage: 3}))

	page := 5
	merged, err := s.MergePagination(ctx, user.ID, models.PaginationPatch{CurrentPage: &page})
	require.NoError(t, err)

	// The omitted field keeps its stored value.
	assert.Equal(t, 25, merged.ItemsPerPage)
	assert.Equal(t, 5, merged.CurrentPage)

	raw, err := s.Preference(ctx, user.ID, models.PrefPagination)
	require.NoError(t, err)
	var stored models.Pagination
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, merged, stored)
}

func TestMergePaginationNothingStored(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")

	perPage := 50
	merged, err := s.MergePagination(context.Background(), user.ID,
		models.PaginationPatch{ItemsPerPage: &perPage})
	require.NoError(t, err)

	assert.Equal(t, 50, merged.ItemsPerPage)
	assert.Equal(t, models.DefaultPagination().CurrentPage, merged.CurrentPage)
}

func TestMergeFiltersPartialPatch(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	require.NoError(t, s.SetPreference(ctx, user.ID, models.PrefFilters, models.Filters{
		DateFilter:      "custom",
		SortOrder:       "oldest",
		CustomStartDate: "2026-01-01",
		CustomEndDate:   "2026-01-31",
	}))

	sortOrder := "newest"
	merged, err := s.MergeFilters(ctx, user.ID, models.FiltersPatch{SortOrder: &sortOrder})
	require.NoError(t, err)

	assert.Equal(t, "custom", merged.DateFilter)
	assert.Equal(t, "newest", merged.SortOrder)
	assert.Equal(t, "2026-01-01", merged.CustomStartDate)
	assert.Equal(t, "2026-01-31", merged.CustomEndDate)
}

func TestMergeFiltersCorruptStoredValue(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "google-1")
	ctx := context.Background()

	require.NoError(t, s.SetPreference(ctx, user.ID, models.PrefFilters, "not an object"))

	filter := "today"
	merged, err := s.MergeFilters(ctx, user.ID, models.FiltersPatch{DateFilter: &filter})
	require.NoError(t, err)

	// Corrupt data falls back to defaults instead of failing the write.
	assert.Equal(t, "today", merged.DateFilter)
	assert.Equal(t, models.DefaultFilters().SortOrder, merged.SortOrder)
}
