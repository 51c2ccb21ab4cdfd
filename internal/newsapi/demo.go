package newsapi

import (
	"strings"
	"time"

	"github.com/katemdaly/newspulse/backend/internal/feed"
)

// demoArticles are the bundled samples shown when no live data is available.
// Publication dates are relative so the date filters stay meaningful.
func demoArticles() []feed.Article {
	now := time.Now()
	return []feed.Article{
		{
			Title:       "Demo News Article 1 - Tech Innovation",
			Description: "This is a demo article about the latest technology innovations. In demo mode, sample data stands in for real API calls.",
			URL:         "https://example.com/article1",
			ImageURL:    "https://via.placeholder.com/300x200?text=Tech+News",
			PublishedAt: now,
			Source:      "Demo News Source",
		},
		{
			Title:       "Demo News Article 2 - Global Events",
			Description: "This is another demo article about global events. This demonstrates how the news feed will look with real data.",
			URL:         "https://example.com/article2",
			ImageURL:    "https://via.placeholder.com/300x200?text=World+News",
			PublishedAt: now.Add(-24 * time.Hour),
			Source:      "Demo World News",
		},
		{
			Title:       "Demo News Article 3 - Sports Update",
			Description: "This is a demo sports article. Once an API key is configured, real news articles replace these demo entries.",
			URL:         "https://example.com/article3",
			ImageURL:    "https://via.placeholder.com/300x200?text=Sports+News",
			PublishedAt: now.Add(-48 * time.Hour),
			Source:      "Demo Sports Network",
		},
	}
}

func filterDemo(query string) []feed.Article {
	query = strings.ToLower(query)
	var matched []feed.Article
	for _, a := range demoArticles() {
		if strings.Contains(strings.ToLower(a.Title), query) ||
			strings.Contains(strings.ToLower(a.Description), query) {
			matched = append(matched, a)
		}
	}
	return matched
}
