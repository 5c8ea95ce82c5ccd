// internal/leaderboard/client.go
//
// HTTP client for the leaderboard service.
//   - Submit: POST one entry; any non-2xx status is an error.
//   - Fetch: GET the ranked list.
//   - FetchOrEmpty: Fetch for display; failures are logged and read as an
//     empty board.
package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Path is the leaderboard resource on the backend.
const Path = "/api/leaderboard"

// Client talks to the leaderboard service.
type Client struct {
	// BaseURL is prepended to Path. Empty means same-origin (a relative
	// URL), which only works behind a transport that resolves it.
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client for base with a bounded request timeout.
func NewClient(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) url() string {
	return strings.TrimRight(c.BaseURL, "/") + Path
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// Submit posts e. Any non-2xx status is an error; the response body is ignored.
func (c *Client) Submit(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("submit score: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("submit score: unexpected status %d", res.StatusCode)
	}
	return nil
}

// Fetch returns the listing in the order the service sent it (best first).
func (c *Client) Fetch(ctx context.Context) ([]Score, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("fetch scores: unexpected status %d", res.StatusCode)
	}
	var out []Score
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	return out, nil
}

// FetchOrEmpty is Fetch with failures logged and replaced by an empty list.
func (c *Client) FetchOrEmpty(ctx context.Context) []Score {
	scores, err := c.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Str("url", c.url()).Msg("leaderboard fetch failed")
		return []Score{}
	}
	if scores == nil {
		return []Score{}
	}
	return scores
}
