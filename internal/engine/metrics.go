package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine and providers.
var metrics struct {
	SearchRequests          atomic.Int64
	DirectDDGRequests       atomic.Int64
	DirectStartpageRequests atomic.Int64
	TwitterSearchRequests   atomic.Int64
	LLMCalls                atomic.Int64
	LLMErrors               atomic.Int64
	ProfileRequests         atomic.Int64
	MediaRequests           atomic.Int64
	DetailRequests          atomic.Int64
	TranscriptRequests      atomic.Int64
	ProviderErrors          atomic.Int64
	PipelineRuns            atomic.Int64
	CacheHits               atomic.Int64
	CacheMisses             atomic.Int64
}

var metricKeys = []string{
	"search_requests", "direct_ddg_requests", "direct_startpage_requests", "twitter_search_requests",
	"llm_calls", "llm_errors",
	"profile_requests", "media_requests", "detail_requests", "transcript_requests",
	"provider_errors", "pipeline_runs",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests":           metrics.SearchRequests.Load(),
		"direct_ddg_requests":       metrics.DirectDDGRequests.Load(),
		"direct_startpage_requests": metrics.DirectStartpageRequests.Load(),
		"twitter_search_requests":   metrics.TwitterSearchRequests.Load(),
		"llm_calls":                 metrics.LLMCalls.Load(),
		"llm_errors":                metrics.LLMErrors.Load(),
		"profile_requests":          metrics.ProfileRequests.Load(),
		"media_requests":            metrics.MediaRequests.Load(),
		"detail_requests":           metrics.DetailRequests.Load(),
		"transcript_requests":       metrics.TranscriptRequests.Load(),
		"provider_errors":           metrics.ProviderErrors.Load(),
		"pipeline_runs":             metrics.PipelineRuns.Load(),
		"cache_hits":                metrics.CacheHits.Load(),
		"cache_misses":              metrics.CacheMisses.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and discovery/.
func IncrTwitterSearch()      { metrics.TwitterSearchRequests.Add(1) }
func IncrProfileRequests()    { metrics.ProfileRequests.Add(1) }
func IncrMediaRequests()      { metrics.MediaRequests.Add(1) }
func IncrDetailRequests()     { metrics.DetailRequests.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrProviderErrors()     { metrics.ProviderErrors.Add(1) }
func IncrPipelineRuns()       { metrics.PipelineRuns.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
