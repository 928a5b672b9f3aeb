package engine

import (
	"net/http"
	"time"

	twitter "github.com/anatolykoptev/go-twitter"
)

// Search backends selectable through SEARCH_PROVIDER.
const (
	SearchProviderSearxng   = "searxng"
	SearchProviderDDG       = "ddg" // DuckDuckGo, falling back to Startpage
	SearchProviderStartpage = "startpage"
	SearchProviderTwitter   = "twitter"
)

// Config holds provider and infrastructure settings, read once in main.
// Pipeline tunables live in discovery.Config.
type Config struct {
	SearxngURL     string
	SearchProvider string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	AugmentLLMModel    string // empty = augmentation disabled
	ClassifierLLMModel string // empty = reuse LLMModel
	LLMTemperature     float64
	LLMMaxTokens       int

	SocialAPIBase string
	SocialAPIKey  string
	SocialAPIHost string
	SocialAPIRPS  float64

	TranscriptAPIBase string
	TranscriptAPIKey  string

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	DatabaseURL string // postgres run store
	SQLitePath  string // sqlite run store, used when DatabaseURL is empty

	HTTPClient    *http.Client
	BrowserClient *BrowserClient  // nil = ddg/startpage backends unavailable
	TwitterClient *twitter.Client // nil = twitter backend unavailable
}
