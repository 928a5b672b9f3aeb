package engine

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned by APIClient for 404 responses.
var ErrNotFound = errors.New("not found")

const maxAPIBody = 8 << 20

// APIClient issues rate-limited JSON GET requests against a provider API,
// retrying transient failures with exponential backoff.
type APIClient struct {
	BaseURL      string
	Headers      map[string]string
	RetryInitial time.Duration
	MaxTries     uint

	client  *http.Client
	limiter *rate.Limiter
}

// NewAPIClient returns a client limited to rps requests per second (burst 1).
// rps <= 0 disables limiting. A nil client gets newFetchClient.
func NewAPIClient(baseURL string, headers map[string]string, rps float64, client *http.Client) *APIClient {
	if client == nil {
		client = newFetchClient()
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &APIClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Headers:      headers,
		RetryInitial: time.Second,
		MaxTries:     3,
		client:       client,
		limiter:      rate.NewLimiter(limit, 1),
	}
}

// newFetchClient creates an HTTP client with pooled connections and a redirect cap.
func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// GetJSON fetches path with params and decodes the body, keeping numbers as json.Number.
func (c *APIClient) GetJSON(ctx context.Context, path string, params url.Values) (any, error) {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	body, err := c.fetchWithRetry(ctx, u)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// fetchWithRetry performs a GET, retrying network errors and retryable statuses.
// Other non-200 statuses fail immediately.
func (c *APIClient) fetchWithRetry(ctx context.Context, fetchURL string) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", UserAgentBot)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip")
		for k, v := range c.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(ErrNotFound)
		case IsRetryableStatus(resp.StatusCode):
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		default:
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		return readResponseBody(resp)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryInitial
	bo.MaxInterval = 10 * c.RetryInitial

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.MaxTries),
		backoff.WithMaxElapsedTime(30*time.Second),
	)
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxAPIBody))
}
