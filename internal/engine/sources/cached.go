package sources

import (
	"context"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/engine"
)

// CachedProfiles serves profile lookups from the engine cache, falling back to Next.
// Missing profiles are not cached.
type CachedProfiles struct {
	Next  discovery.ProfileFetcher
	Cache *engine.Cache
}

func (c *CachedProfiles) FetchProfile(ctx context.Context, handle string) (map[string]any, error) {
	key := engine.CacheKey("profile", handle)
	if m, ok := engine.CacheLoadJSON[map[string]any](ctx, c.Cache, key); ok && m != nil {
		return m, nil
	}
	m, err := c.Next.FetchProfile(ctx, handle)
	if err != nil || m == nil {
		return m, err
	}
	engine.CacheStoreJSON(ctx, c.Cache, key, m)
	return m, nil
}

// CachedTranscripts serves transcript lookups from the engine cache, falling back to Next.
// Empty transcripts are cached too, so silent videos are not re-queried.
type CachedTranscripts struct {
	Next  discovery.TranscriptFetcher
	Cache *engine.Cache
}

func (c *CachedTranscripts) FetchTranscript(ctx context.Context, mediaURL string) ([]string, error) {
	key := engine.CacheKey("transcript", mediaURL)
	if segs, ok := engine.CacheLoadJSON[[]string](ctx, c.Cache, key); ok {
		return segs, nil
	}
	segs, err := c.Next.FetchTranscript(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	if segs == nil {
		segs = []string{}
	}
	engine.CacheStoreJSON(ctx, c.Cache, key, segs)
	return segs, nil
}
