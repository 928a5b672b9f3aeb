package discovery

import "context"

// SearchHit is one keyword-search result.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// ProfileRef addresses a profile for media listing; UserID is preferred when set.
type ProfileRef struct {
	UserID string
	Handle string
}

// Completer is a chat-completion model.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// KeywordSearcher runs a web/social keyword search.
type KeywordSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// ProfileFetcher looks up a profile by handle. A nil map with a nil error means
// the provider has no data for the handle.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, handle string) (map[string]any, error)
}

// MediaLister returns a profile's recent short-form videos as raw payloads.
type MediaLister interface {
	ListMedia(ctx context.Context, ref ProfileRef, amount int) ([]map[string]any, error)
}

// MediaDetailer returns the detailed payload of a single post.
type MediaDetailer interface {
	FetchMediaDetail(ctx context.Context, shortcode string) (map[string]any, error)
}

// TranscriptFetcher returns transcript segments for a media URL.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, mediaURL string) ([]string, error)
}

// Providers bundles the external collaborators of a pipeline.
// Planner, Profiles and Media are required; the rest may be nil, which disables
// the corresponding feature.
type Providers struct {
	Planner     Completer
	Augmenter   Completer
	Classifier  Completer
	Searcher    KeywordSearcher
	Profiles    ProfileFetcher
	Media       MediaLister
	Details     MediaDetailer
	Transcripts TranscriptFetcher
}
