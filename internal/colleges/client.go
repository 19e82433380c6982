package colleges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/campushub/backend/config"
)

// ErrUpstream is returned when the college directory responds with an error.
var ErrUpstream = errors.New("college directory unavailable")

// College is one entry from the directory.
type College struct {
	Name     string   `json:"name"`
	Country  string   `json:"country"`
	Domains  []string `json:"domains"`
	WebPages []string `json:"web_pages"`
}

// Searcher looks up colleges by name.
type Searcher interface {
	Search(ctx context.Context, name, country string) ([]College, error)
}

// Client queries the Hipolabs-style universities API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a directory client from cfg.
func NewClient(cfg config.CollegesConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: cfg.BaseURL, http: &http.Client{Timeout: timeout}}
}

// Search returns colleges matching name, optionally filtered by country.
func (c *Client) Search(ctx context.Context, name, country string) ([]College, error) {
	q := url.Values{}
	q.Set("name", name)
	if country != "" {
		q.Set("country", country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out []College
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return out, nil
}
