package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/engine"
)

// Social scraper API endpoints. Every response wraps its payload in "data".
const (
	socialProfilePath = "/v1/info"
	socialReelsPath   = "/v1/reels"
	socialDetailPath  = "/v1/post_info"
)

// SocialAPI is a profile, media-list and media-detail provider backed by a
// RapidAPI-style social scraper service.
type SocialAPI struct {
	api *engine.APIClient
}

// NewSocialAPI builds the client. host is sent as x-rapidapi-host when set.
func NewSocialAPI(baseURL, apiKey, host string, rps float64, client *http.Client) *SocialAPI {
	headers := map[string]string{"x-rapidapi-key": apiKey}
	if host != "" {
		headers["x-rapidapi-host"] = host
	}
	return &SocialAPI{api: engine.NewAPIClient(baseURL, headers, rps, client)}
}

// API exposes the underlying client for tuning.
func (s *SocialAPI) API() *engine.APIClient { return s.api }

// FetchProfile returns the raw profile payload, or nil when the account does not exist.
func (s *SocialAPI) FetchProfile(ctx context.Context, handle string) (map[string]any, error) {
	engine.IncrProfileRequests()
	data, err := s.data(ctx, socialProfilePath, url.Values{"username_or_id_or_url": {handle}})
	if errors.Is(err, engine.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		engine.IncrProviderErrors()
		return nil, fmt.Errorf("profile %s: %w", handle, err)
	}
	m, _ := data.(map[string]any)
	if len(m) == 0 {
		return nil, nil
	}
	if user, ok := m["user"].(map[string]any); ok {
		return user, nil
	}
	return m, nil
}

// ListMedia returns up to amount recent reels of the profile.
func (s *SocialAPI) ListMedia(ctx context.Context, ref discovery.ProfileRef, amount int) ([]map[string]any, error) {
	engine.IncrMediaRequests()
	id := ref.UserID
	if id == "" {
		id = ref.Handle
	}
	params := url.Values{"username_or_id_or_url": {id}}
	if amount > 0 {
		params.Set("amount", strconv.Itoa(amount))
	}
	data, err := s.data(ctx, socialReelsPath, params)
	if errors.Is(err, engine.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		engine.IncrProviderErrors()
		return nil, fmt.Errorf("reels %s: %w", id, err)
	}

	var items []any
	switch t := data.(type) {
	case []any:
		items = t
	case map[string]any:
		items, _ = t["items"].([]any)
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
		if amount > 0 && len(out) >= amount {
			break
		}
	}
	slog.Debug("reels listed", slog.String("profile", id), slog.Int("count", len(out)))
	return out, nil
}

// FetchMediaDetail returns the detailed payload of one post.
func (s *SocialAPI) FetchMediaDetail(ctx context.Context, shortcode string) (map[string]any, error) {
	engine.IncrDetailRequests()
	data, err := s.data(ctx, socialDetailPath, url.Values{"code_or_id_or_url": {shortcode}})
	if errors.Is(err, engine.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		engine.IncrProviderErrors()
		return nil, fmt.Errorf("post %s: %w", shortcode, err)
	}
	m, _ := data.(map[string]any)
	return m, nil
}

// data fetches path and unwraps the "data" envelope when present.
func (s *SocialAPI) data(ctx context.Context, path string, params url.Values) (any, error) {
	out, err := s.api.GetJSON(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if m, ok := out.(map[string]any); ok {
		if d, ok := m["data"]; ok {
			return d, nil
		}
	}
	return out, nil
}
