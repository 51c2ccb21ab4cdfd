// Package newsapi fetches articles from the NewsAPI.org service, falling
// back to bundled demo data when no API key is configured or the upstream
// call fails.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/katemdaly/newspulse/backend/internal/feed"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	maxPageSize    = 100 // NewsAPI hard limit
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
}

func New(apiKey string, log *slog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// NewWithBaseURL is used by tests to point the client at a fake upstream.
func NewWithBaseURL(apiKey, baseURL string, log *slog.Logger) *Client {
	c := New(apiKey, log)
	c.baseURL = baseURL
	return c
}

// DemoMode reports whether the client serves bundled sample data only.
func (c *Client) DemoMode() bool {
	return c.apiKey == ""
}

// Result is a fetched article batch. Demo is true when the articles are the
// bundled samples rather than live data; the UI shows a banner for that.
type Result struct {
	Articles     []feed.Article
	TotalResults int
	Demo         bool
}

// HeadlinesParams narrow a top-headlines fetch. Zero values are omitted.
type HeadlinesParams struct {
	Category string
	Country  string
	PageSize int
	From     string
	To       string
}

// TopHeadlines fetches the headline feed. Upstream failures degrade to demo
// data instead of surfacing an error; the caller only sees Demo flip to true.
func (c *Client) TopHeadlines(ctx context.Context, p HeadlinesParams) Result {
	if c.DemoMode() {
		return Result{Articles: demoArticles(), TotalResults: len(demoArticles()), Demo: true}
	}

	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Country != "" {
		q.Set("country", p.Country)
	}
	pageSize := p.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	q.Set("pageSize", strconv.Itoa(pageSize))
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}

	res, err := c.get(ctx, "/top-headlines", q)
	if err != nil {
		c.log.Warn("news fetch failed, falling back to demo data", "error", err)
		return Result{Articles: demoArticles(), TotalResults: len(demoArticles()), Demo: true}
	}
	return res
}

// SearchParams narrow an everything-endpoint search.
type SearchParams struct {
	Query    string
	Page     int
	PageSize int
	From     string
	To       string
	SortBy   string // relevancy, popularity or publishedAt
}

// Search queries the everything endpoint with the same demo fallback as
// TopHeadlines.
func (c *Client) Search(ctx context.Context, p SearchParams) Result {
	if c.DemoMode() {
		return Result{Articles: filterDemo(p.Query), Demo: true}
	}

	q := url.Values{}
	q.Set("q", p.Query)
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	pageSize := p.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = 20
	}
	q.Set("pageSize", strconv.Itoa(pageSize))
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}

	res, err := c.get(ctx, "/everything", q)
	if err != nil {
		c.log.Warn("news search failed, falling back to demo data", "error", err)
		return Result{Articles: filterDemo(p.Query), Demo: true}
	}
	return res
}

// apiResponse mirrors the NewsAPI wire format.
type apiResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		URLToImage  string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (Result, error) {
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("newsapi: unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("newsapi: decoding response: %w", err)
	}
	if body.Status != "ok" {
		return Result{}, fmt.Errorf("newsapi: status %q", body.Status)
	}

	articles := make([]feed.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, feed.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
		})
	}

	return Result{Articles: articles, TotalResults: body.TotalResults}, nil
}
