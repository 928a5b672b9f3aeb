// go_reels: location-aware reel creator discovery MCP server.
//
// Exposes two MCP tools: creator_discovery and discovery_history.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	twitter "github.com/anatolykoptev/go-twitter"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/engine"
	"github.com/anatolykoptev/go_reels/internal/engine/sources"
	"github.com/anatolykoptev/go_reels/internal/reelserver"
	"github.com/anatolykoptev/go_reels/internal/store"
	"github.com/anatolykoptev/go_reels/internal/store/postgres"
	"github.com/anatolykoptev/go_reels/internal/store/sqlite"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	c := loadEngineConfig()
	cfg := loadDiscoveryConfig()

	slog.Info("starting go_reels",
		slog.String("port", mcpPort),
		slog.String("search_provider", c.SearchProvider),
	)

	cache := engine.NewCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	defer cache.Close()

	pipeline, err := discovery.New(buildProviders(c, cfg, cache), cfg)
	if err != nil {
		slog.Error("pipeline init failed", slog.Any("error", err))
		os.Exit(1)
	}

	runStore := openStore(context.Background(), c)
	if runStore != nil {
		defer runStore.Close()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_reels",
		Version: version,
	}, nil)

	reelserver.RegisterTools(server, reelserver.Deps{
		Runner: pipeline,
		Store:  runStore,
		Cache:  cache,
	})
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_reels",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadEngineConfig() engine.Config {
	c := engine.Config{
		SearxngURL:           env.Str("SEARXNG_URL", "http://127.0.0.1:8888"),
		SearchProvider:       env.Str("SEARCH_PROVIDER", engine.SearchProviderSearxng),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		AugmentLLMModel:      env.Str("AUGMENT_LLM_MODEL", ""),
		ClassifierLLMModel:   env.Str("CLASSIFIER_LLM_MODEL", ""),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 4096),
		SocialAPIBase:        env.Str("SOCIAL_API_BASE", "https://instagram-scraper-api2.p.rapidapi.com"),
		SocialAPIKey:         env.Str("SOCIAL_API_KEY", ""),
		SocialAPIHost:        env.Str("SOCIAL_API_HOST", "instagram-scraper-api2.p.rapidapi.com"),
		SocialAPIRPS:         env.Float("SOCIAL_API_RPS", 2),
		TranscriptAPIBase:    env.Str("TRANSCRIPT_API_BASE", ""),
		TranscriptAPIKey:     env.Str("TRANSCRIPT_API_KEY", ""),
		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 6*time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		SQLitePath:           env.Str("SQLITE_PATH", ""),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	switch c.SearchProvider {
	case engine.SearchProviderDDG, engine.SearchProviderStartpage:
		c.BrowserClient = newBrowserClient()
	case engine.SearchProviderTwitter:
		c.TwitterClient = newTwitterClient()
	}
	return c
}

func loadDiscoveryConfig() discovery.Config {
	d := discovery.DefaultConfig()
	return discovery.Config{
		TargetDomain:          env.Str("TARGET_DOMAIN", d.TargetDomain),
		Platform:              env.Str("PLATFORM", d.Platform),
		AcceptThreshold:       env.Float("ACCEPT_THRESHOLD", d.AcceptThreshold),
		ClassifierTimeout:     env.Duration("CLASSIFIER_TIMEOUT", d.ClassifierTimeout),
		SearchEnabled:         envBool("SEARCH_ENABLED", d.SearchEnabled),
		SearchResultLimit:     env.Int("SEARCH_RESULT_LIMIT", d.SearchResultLimit),
		SearchTimeout:         env.Duration("SEARCH_TIMEOUT", d.SearchTimeout),
		SearchConcurrency:     env.Int("SEARCH_CONCURRENCY", d.SearchConcurrency),
		MaxProfiles:           env.Int("MAX_PROFILES", d.MaxProfiles),
		ScreenConcurrency:     env.Int("SCREEN_CONCURRENCY", d.ScreenConcurrency),
		MediaPerProfile:       env.Int("MEDIA_PER_PROFILE", d.MediaPerProfile),
		MediaConcurrency:      env.Int("MEDIA_CONCURRENCY", d.MediaConcurrency),
		FetchDetails:          envBool("FETCH_DETAILS", d.FetchDetails),
		DetailConcurrency:     env.Int("DETAIL_CONCURRENCY", d.DetailConcurrency),
		Transcripts:           envBool("TRANSCRIPTS", d.Transcripts),
		TranscriptConcurrency: env.Int("TRANSCRIPT_CONCURRENCY", d.TranscriptConcurrency),
		TranscriptTimeout:     env.Duration("TRANSCRIPT_TIMEOUT", d.TranscriptTimeout),
		PerCreatorLimit:       env.Int("PER_CREATOR_LIMIT", d.PerCreatorLimit),
	}
}

func buildProviders(c engine.Config, cfg discovery.Config, cache *engine.Cache) discovery.Providers {
	llmOpts := func(model string) engine.LLMOptions {
		return engine.LLMOptions{
			APIBase:      c.LLMAPIBase,
			APIKey:       c.LLMAPIKey,
			FallbackKeys: c.LLMAPIKeyFallbacks,
			Model:        model,
			Temperature:  c.LLMTemperature,
			MaxTokens:    c.LLMMaxTokens,
		}
	}

	classifierModel := c.ClassifierLLMModel
	if classifierModel == "" {
		classifierModel = c.LLMModel
	}

	social := sources.NewSocialAPI(c.SocialAPIBase, c.SocialAPIKey, c.SocialAPIHost, c.SocialAPIRPS, c.HTTPClient)
	p := discovery.Providers{
		Planner:    engine.NewLLM("planner", llmOpts(c.LLMModel)),
		Classifier: engine.NewLLM("classifier", llmOpts(classifierModel)),
		Searcher:   newSearcher(c, cfg.TargetDomain),
		Profiles:   &sources.CachedProfiles{Next: social, Cache: cache},
		Media:      social,
		Details:    social,
	}
	if c.AugmentLLMModel != "" {
		p.Augmenter = engine.NewLLM("augmenter", llmOpts(c.AugmentLLMModel))
	}
	if c.TranscriptAPIBase != "" {
		transcripts := sources.NewTranscriptAPI(c.TranscriptAPIBase, c.TranscriptAPIKey, c.SocialAPIRPS, c.HTTPClient)
		p.Transcripts = &sources.CachedTranscripts{Next: transcripts, Cache: cache}
	} else {
		slog.Info("transcript API not configured, transcripts disabled")
	}
	return p
}

// newSearcher returns nil when the selected backend is unavailable, which disables harvesting.
func newSearcher(c engine.Config, domain string) discovery.KeywordSearcher {
	switch c.SearchProvider {
	case engine.SearchProviderSearxng:
		return &sources.SearxngSearcher{Client: engine.NewSearxng(c.SearxngURL, c.HTTPClient), Domain: domain}
	case engine.SearchProviderDDG:
		if c.BrowserClient != nil {
			return sources.FallbackSearcher{
				&sources.DDGSearcher{Browser: c.BrowserClient, Domain: domain, Region: "us-en"},
				&sources.StartpageSearcher{Browser: c.BrowserClient, Domain: domain},
			}
		}
	case engine.SearchProviderStartpage:
		if c.BrowserClient != nil {
			return &sources.StartpageSearcher{Browser: c.BrowserClient, Domain: domain}
		}
	case engine.SearchProviderTwitter:
		if c.TwitterClient != nil {
			return &sources.TwitterSearcher{Client: c.TwitterClient, Domain: domain}
		}
	default:
		slog.Warn("unknown search provider, harvesting disabled", slog.String("provider", c.SearchProvider))
		return nil
	}
	slog.Warn("search backend unavailable, harvesting disabled", slog.String("provider", c.SearchProvider))
	return nil
}

func newBrowserClient() *engine.BrowserClient {
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
		return nil
	}
	slog.Info("stealth browser client initialized")
	return bc
}

// newTwitterClient runs in guest mode when no accounts are configured.
func newTwitterClient() *twitter.Client {
	accounts := twitter.ParseAccounts(env.Str("TWITTER_ACCOUNTS", ""))
	openCount := 2
	if len(accounts) > 0 {
		openCount = 0
	}
	tw, err := twitter.NewClient(twitter.ClientConfig{
		Accounts:         accounts,
		OpenAccountCount: openCount,
	})
	if err != nil {
		slog.Warn("twitter client init failed", slog.Any("error", err))
		return nil
	}
	slog.Info("twitter client ready", slog.Int("pool_size", tw.Pool().Size()))
	return tw
}

// openStore prefers postgres, then sqlite. A nil store disables run history.
func openStore(ctx context.Context, c engine.Config) store.Backend {
	switch {
	case c.DatabaseURL != "":
		b, err := postgres.New(ctx, c.DatabaseURL)
		if err != nil {
			slog.Warn("postgres run store init failed", slog.Any("error", err))
			return nil
		}
		slog.Info("run store initialized", slog.String("backend", "postgres"))
		return b
	case c.SQLitePath != "":
		b, err := sqlite.New(c.SQLitePath)
		if err != nil {
			slog.Warn("sqlite run store init failed", slog.Any("error", err))
			return nil
		}
		slog.Info("run store initialized", slog.String("backend", "sqlite"), slog.String("path", c.SQLitePath))
		return b
	}
	slog.Info("run store not configured, history disabled")
	return nil
}

// envBool reads a boolean env var; unset or unparsable values return def.
func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
