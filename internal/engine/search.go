package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Searxng queries a SearXNG instance over its JSON API.
type Searxng struct {
	BaseURL string
	Client  *http.Client
}

// NewSearxng returns a SearXNG client. A nil client falls back to http.DefaultClient.
func NewSearxng(baseURL string, client *http.Client) *Searxng {
	if client == nil {
		client = http.DefaultClient
	}
	return &Searxng{BaseURL: baseURL, Client: client}
}

// Search runs one query and returns raw results. language and engines may be empty.
func (s *Searxng) Search(ctx context.Context, query, language, engines string) ([]SearxngResult, error) {
	u, err := url.Parse(s.BaseURL + "/search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	if language != "" && language != "all" {
		q.Set("language", language)
	}
	if engines != "" {
		q.Set("engines", engines)
	}
	u.RawQuery = q.Encode()

	metrics.SearchRequests.Add(1)

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgentBot)
		return s.Client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng status %d", resp.StatusCode)
	}

	var data searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("searxng decode: %w", err)
	}
	return data.Results, nil
}
