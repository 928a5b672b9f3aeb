package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_reels/internal/engine"
)

// TranscriptAPI fetches speech transcripts of public videos by URL.
type TranscriptAPI struct {
	api *engine.APIClient
}

// NewTranscriptAPI builds the client; apiKey is sent as x-api-key.
func NewTranscriptAPI(baseURL, apiKey string, rps float64, client *http.Client) *TranscriptAPI {
	return &TranscriptAPI{api: engine.NewAPIClient(baseURL, map[string]string{"x-api-key": apiKey}, rps, client)}
}

// API exposes the underlying client for tuning.
func (t *TranscriptAPI) API() *engine.APIClient { return t.api }

// FetchTranscript returns the transcript segments of mediaURL. A video without
// speech yields no segments and no error.
func (t *TranscriptAPI) FetchTranscript(ctx context.Context, mediaURL string) ([]string, error) {
	engine.IncrTranscriptRequests()
	out, err := t.api.GetJSON(ctx, "/v1/transcript", url.Values{"url": {mediaURL}})
	if errors.Is(err, engine.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		engine.IncrProviderErrors()
		return nil, fmt.Errorf("transcript: %w", err)
	}
	return transcriptSegments(out), nil
}

// transcriptSegments accepts the shapes the service returns: a bare string, a
// list of strings, or a list of {"text": ...} segments, optionally wrapped in
// "transcript", "segments" or "data".
func transcriptSegments(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, seg := range t {
			out = append(out, transcriptSegments(seg)...)
		}
		return out
	case map[string]any:
		for _, key := range []string{"transcript", "segments", "data", "text"} {
			if inner, ok := t[key]; ok {
				return transcriptSegments(inner)
			}
		}
	}
	return nil
}
