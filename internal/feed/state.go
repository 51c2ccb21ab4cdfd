package feed

import (
	"sort"
	"time"
)

// VoteInfo is the vote data attached to one article in the list.
type VoteInfo struct {
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Score     int    `json:"score"`
	UserVote  string `json:"userVote,omitempty"`
}

// State is the explicit reading-session state. It is a plain value;
// transitions go through Apply and nothing here touches the network or
// storage, which keeps every UI behavior testable in isolation.
type State struct {
	Articles []Article
	Votes    map[string]VoteInfo
	DemoMode bool
	SignedIn bool

	Filter      string
	CustomStart string
	CustomEnd   string
	Sort        string
	Page        int
	PerPage     int
}

// NewState starts from the fixed defaults used when nothing is stored.
func NewState() State {
	return State{
		Votes:   map[string]VoteInfo{},
		Filter:  FilterAll,
		Sort:    SortNewest,
		Page:    1,
		PerPage: 10,
	}
}

// Event is one thing that happened to the reading session.
type Event interface{ isEvent() }

type ArticlesLoaded struct {
	Articles []Article
	DemoMode bool
}

type VotesMerged struct {
	Votes map[string]VoteInfo
}

// VoteRecorded carries the outcome of a single vote action, local or remote.
type VoteRecorded struct {
	ArticleID string
	Votes     VoteInfo
}

type FilterChanged struct {
	Filter      string
	CustomStart string
	CustomEnd   string
}

type SortChanged struct{ Order string }

type PageChanged struct{ Page int }

type ItemsPerPageChanged struct{ PerPage int }

type SignedIn struct{}

type SignedOut struct{}

func (ArticlesLoaded) isEvent()      {}
func (VotesMerged) isEvent()         {}
func (VoteRecorded) isEvent()        {}
func (FilterChanged) isEvent()       {}
func (SortChanged) isEvent()         {}
func (PageChanged) isEvent()         {}
func (ItemsPerPageChanged) isEvent() {}
func (SignedIn) isEvent()            {}
func (SignedOut) isEvent()           {}

// Apply is the pure transition function: given a state and an event it
// returns the next state without mutating the input. Changing the filter,
// sort or page size snaps back to page 1.
func Apply(s State, e Event) State {
	next := s
	next.Votes = make(map[string]VoteInfo, len(s.Votes))
	for k, v := range s.Votes {
		next.Votes[k] = v
	}

	switch ev := e.(type) {
	case ArticlesLoaded:
		next.Articles = ev.Articles
		next.DemoMode = ev.DemoMode
		next.Page = 1
	case VotesMerged:
		for id, v := range ev.Votes {
			next.Votes[id] = v
		}
	case VoteRecorded:
		next.Votes[ev.ArticleID] = ev.Votes
	case FilterChanged:
		next.Filter = ev.Filter
		next.CustomStart = ev.CustomStart
		next.CustomEnd = ev.CustomEnd
		next.Page = 1
	case SortChanged:
		next.Sort = ev.Order
		next.Page = 1
	case PageChanged:
		if ev.Page >= 1 {
			next.Page = ev.Page
		}
	case ItemsPerPageChanged:
		if ev.PerPage >= 1 {
			next.PerPage = ev.PerPage
			next.Page = 1
		}
	case SignedIn:
		next.SignedIn = true
	case SignedOut:
		next.SignedIn = false
		next.Votes = map[string]VoteInfo{}
	}

	return next
}

// Ranked is an article with its vote data resolved.
type Ranked struct {
	Article Article
	Votes   VoteInfo
}

// VisiblePage is the slice of the list the UI renders.
type VisiblePage struct {
	Entries      []Ranked
	TotalItems   int
	TotalPages   int
	CurrentPage  int
	ItemsPerPage int
}

// Visible filters, ranks and paginates the current article list. Articles
// sort by score (highest first); ties fall back to publication date in the
// configured order.
func (s State) Visible(now time.Time) VisiblePage {
	filtered := FilterByDate(s.Articles, now, s.Filter, s.CustomStart, s.CustomEnd)

	entries := make([]Ranked, 0, len(filtered))
	for _, a := range filtered {
		entries = append(entries, Ranked{Article: a, Votes: s.Votes[a.ID()]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Votes.Score != entries[j].Votes.Score {
			return entries[i].Votes.Score > entries[j].Votes.Score
		}
		if s.Sort == SortOldest {
			return entries[i].Article.PublishedAt.Before(entries[j].Article.PublishedAt)
		}
		return entries[i].Article.PublishedAt.After(entries[j].Article.PublishedAt)
	})

	perPage := s.PerPage
	if perPage < 1 {
		perPage = 1
	}
	page := s.Page
	if page < 1 {
		page = 1
	}
	totalPages := (len(entries) + perPage - 1) / perPage
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(entries) {
		start = len(entries)
	}
	if end > len(entries) {
		end = len(entries)
	}

	return VisiblePage{
		Entries:      entries[start:end],
		TotalItems:   len(entries),
		TotalPages:   totalPages,
		CurrentPage:  page,
		ItemsPerPage: perPage,
	}
}
