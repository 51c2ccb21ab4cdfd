// Package feed holds the client-side article list logic: article identity,
// date filtering, sorting, pagination and an explicit state machine for the
// reading session. Everything here is pure; no I/O.
package feed

import (
	"regexp"
	"strings"
	"time"
)

// Article is an externally-sourced news item. Articles have no stable
// upstream id; identity is derived from title and source.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

const articleIDMaxLen = 50

// ArticleID derives the deterministic identifier joining externally-fetched
// articles with stored vote records: non-alphanumerics stripped, lower-cased,
// "source_title" truncated to 50 characters. The derivation must stay
// byte-identical between client and server or vote records will not merge.
// Distinct articles can collide after truncation; that is an accepted
// approximation.
func ArticleID(title, source string) string {
	cleanTitle := strings.ToLower(nonAlphanumeric.ReplaceAllString(title, ""))
	cleanSource := strings.ToLower(nonAlphanumeric.ReplaceAllString(source, ""))
	id := cleanSource + "_" + cleanTitle
	if len(id) > articleIDMaxLen {
		id = id[:articleIDMaxLen]
	}
	return id
}

// ID is shorthand for ArticleID over the article's own fields.
func (a Article) ID() string {
	return ArticleID(a.Title, a.Source)
}
