package feed

import (
	"fmt"
	"sort"
	"time"
)

// Date filter values carried in the "filters" preference.
const (
	FilterAll       = "all"
	FilterToday     = "today"
	FilterYesterday = "yesterday"
	FilterWeek      = "week"
	FilterMonth     = "month"
	FilterCustom    = "custom"
)

// Sort order values.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// DateRange computes the [start, end) window for a filter relative to now.
// ok is false for "all" and for a custom filter with missing bounds, meaning
// no filtering applies.
func DateRange(now time.Time, filter, customStart, customEnd string) (start, end time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch filter {
	case FilterToday:
		return today, today.AddDate(0, 0, 1), true
	case FilterYesterday:
		return today.AddDate(0, 0, -1), today, true
	case FilterWeek:
		return today.AddDate(0, 0, -7), now, true
	case FilterMonth:
		return today.AddDate(0, 0, -30), now, true
	case FilterCustom:
		s, err1 := time.ParseInLocation("2006-01-02", customStart, now.Location())
		e, err2 := time.ParseInLocation("2006-01-02", customEnd, now.Location())
		if err1 != nil || err2 != nil {
			return time.Time{}, time.Time{}, false
		}
		// The end date is inclusive.
		return s, e.AddDate(0, 0, 1), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// FilterByDate keeps articles published inside the filter's window.
func FilterByDate(articles []Article, now time.Time, filter, customStart, customEnd string) []Article {
	start, end, ok := DateRange(now, filter, customStart, customEnd)
	if !ok {
		return articles
	}

	filtered := make([]Article, 0, len(articles))
	for _, a := range articles {
		if !a.PublishedAt.Before(start) && a.PublishedAt.Before(end) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// SortByDate returns a copy sorted by publication date; newest first unless
// order is "oldest".
func SortByDate(articles []Article, order string) []Article {
	sorted := make([]Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortOldest {
			return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
		}
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	return sorted
}

// Page is one window into a filtered article list.
type Page struct {
	Articles     []Article `json:"articles"`
	TotalItems   int       `json:"totalItems"`
	TotalPages   int       `json:"totalPages"`
	CurrentPage  int       `json:"currentPage"`
	ItemsPerPage int       `json:"itemsPerPage"`
}

// Paginate slices out the requested page. Pages are 1-based; an
// out-of-range page yields an empty article list with the totals intact.
func Paginate(articles []Article, currentPage, itemsPerPage int) Page {
	if itemsPerPage < 1 {
		itemsPerPage = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}

	totalPages := (len(articles) + itemsPerPage - 1) / itemsPerPage
	start := (currentPage - 1) * itemsPerPage
	end := start + itemsPerPage
	if start > len(articles) {
		start = len(articles)
	}
	if end > len(articles) {
		end = len(articles)
	}

	return Page{
		Articles:     articles[start:end],
		TotalItems:   len(articles),
		TotalPages:   totalPages,
		CurrentPage:  currentPage,
		ItemsPerPage: itemsPerPage,
	}
}

// FilterCounts reports how many articles each date filter would keep, for
// the filter dropdown's counters. Custom is omitted; its window depends on
// user input.
func FilterCounts(articles []Article, now time.Time) map[string]int {
	counts := map[string]int{FilterAll: len(articles)}
	for _, filter := range []string{FilterToday, FilterYesterday, FilterWeek, FilterMonth} {
		counts[filter] = len(FilterByDate(articles, now, filter, "", ""))
	}
	return counts
}

// FormatRelative renders a publication date the way the article list shows
// it: Today, Yesterday, "N days ago" within a week, otherwise a short date.
func FormatRelative(t, now time.Time) string {
	days := int(now.Sub(t).Hours()/24) + 1
	switch {
	case days <= 1:
		return "Today"
	case days == 2:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days-1)
	default:
		return t.Format("Jan 2, 2006")
	}
}
