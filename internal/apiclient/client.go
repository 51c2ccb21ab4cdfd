// Package apiclient is a typed HTTP client for the backend's own JSON API.
// The guest sync and the reader binary drive the backend through it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/katemdaly/newspulse/backend/internal/models"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken installs the Bearer token used on subsequent calls. An empty
// token makes requests anonymously.
func (c *Client) SetToken(token string) {
	c.token = token
}

// VoteResult is the response to a vote action or an article-votes lookup.
type VoteResult struct {
	ArticleID string            `json:"articleId"`
	Votes     models.VoteCounts `json:"votes"`
	UserVote  *models.VoteKind  `json:"userVote"`
}

func (c *Client) Vote(ctx context.Context, articleID string, kind models.VoteKind) (*VoteResult, error) {
	var res VoteResult
	err := c.do(ctx, http.MethodPost, "/api/voting/vote",
		models.VoteRequest{ArticleID: articleID, VoteType: kind}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ArticleVotes(ctx context.Context, articleID string) (*VoteResult, error) {
	var res VoteResult
	if err := c.do(ctx, http.MethodGet, "/api/voting/article/"+articleID, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ArticleVotesEntry is one entry of the all-votes mapping.
type ArticleVotesEntry struct {
	models.VoteCounts
	UserVote *models.VoteKind `json:"userVote"`
}

func (c *Client) AllVotes(ctx context.Context) (map[string]ArticleVotesEntry, error) {
	var res struct {
		Votes map[string]ArticleVotesEntry `json:"votes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/voting/articles/all", nil, &res); err != nil {
		return nil, err
	}
	return res.Votes, nil
}

func (c *Client) UserVotes(ctx context.Context) (map[string]models.VoteKind, error) {
	var res struct {
		Votes map[string]models.VoteKind `json:"votes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/voting/user/votes", nil, &res); err != nil {
		return nil, err
	}
	return res.Votes, nil
}

func (c *Client) Stats(ctx context.Context) (*models.VotingStats, error) {
	var res struct {
		Stats models.VotingStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/voting/stats", nil, &res); err != nil {
		return nil, err
	}
	return &res.Stats, nil
}

// LoginResult is the issued session from a Google sign-in exchange.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// GoogleLogin exchanges a Google ID token for a backend session. The
// returned token is installed on the client for subsequent calls.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/google",
		models.GoogleAuthRequest{Credential: credential}, &res)
	if err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var res struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Preferences(ctx context.Context) (models.Preferences, error) {
	var res struct {
		Preferences models.Preferences `json:"preferences"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/preferences", nil, &res); err != nil {
		return nil, err
	}
	return res.Preferences, nil
}

func (c *Client) SetPreference(ctx context.Context, key string, value any) error {
	return c.do(ctx, http.MethodPost, "/api/preferences/"+key,
		map[string]any{"value": value}, nil)
}

func (c *Client) SetPreferencesBulk(ctx context.Context, prefs models.Preferences) error {
	return c.do(ctx, http.MethodPost, "/api/preferences/bulk",
		map[string]any{"preferences": prefs}, nil)
}

func (c *Client) SetPagination(ctx context.Context, patch models.PaginationPatch) error {
	return c.do(ctx, http.MethodPost, "/api/preferences/pagination", patch, nil)
}

func (c *Client) SetFilters(ctx context.Context, patch models.FiltersPatch) error {
	return c.do(ctx, http.MethodPost, "/api/preferences/filters", patch, nil)
}

// APIError is a non-2xx response decoded from the backend's error shape.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %s (%d): %s", e.Message, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("api: %s (%d)", e.Message, e.StatusCode)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding request: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
		var errBody struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Details = errBody.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding response: %w", err)
	}
	return nil
}
