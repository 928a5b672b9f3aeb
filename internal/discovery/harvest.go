package discovery

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

const searchHandleConfidence = 0.45

// Harvester merges expansion handles with handles found through keyword search.
type Harvester struct {
	Searcher    KeywordSearcher // nil disables search
	Domain      string
	Limit       int
	Timeout     time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// Harvest returns unique candidate handles sorted by descending confidence.
func (h *Harvester) Harvest(ctx context.Context, exp KeywordExpansionResult, searchEnabled bool) []CandidateHandle {
	log := loggerOr(h.Logger)

	var out []CandidateHandle
	index := make(map[string]int)
	for _, c := range exp.CandidateHandles {
		handle, ok := NormalizeHandle(c.Handle, h.Domain)
		if !ok {
			continue
		}
		if i, seen := index[handle]; seen {
			if c.Confidence > out[i].Confidence {
				out[i].Confidence = c.Confidence
			}
			continue
		}
		c.Handle = handle
		index[handle] = len(out)
		out = append(out, c)
	}

	if searchEnabled && h.Searcher != nil {
		variants := queryVariants(exp)
		found := make([][]string, len(variants))
		_ = runPool(ctx, variants, h.Concurrency, func(ctx context.Context, i int, q string) {
			found[i] = h.searchVariant(ctx, log, q)
		})
		added := 0
		for _, handles := range found {
			for _, handle := range handles {
				if _, seen := index[handle]; seen {
					continue
				}
				index[handle] = len(out)
				out = append(out, CandidateHandle{
					Handle:     handle,
					Confidence: searchHandleConfidence,
					Reason:     "found via keyword search",
					Source:     SourceSearchEngine,
				})
				added++
			}
		}
		log.Info("handles harvested from search", slog.Int("variants", len(variants)), slog.Int("added", added))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// searchVariant runs one query; failures count as zero results.
func (h *Harvester) searchVariant(ctx context.Context, log *slog.Logger, query string) []string {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	hits, err := h.Searcher.Search(ctx, query, h.Limit)
	if err != nil {
		log.Warn("search variant failed", slog.String("query", query), slog.Any("error", err))
		return nil
	}
	if h.Limit > 0 && len(hits) > h.Limit {
		hits = hits[:h.Limit]
	}
	var handles []string
	for _, hit := range hits {
		if handle, ok := HandleFromURL(hit.URL, h.Domain); ok {
			handles = append(handles, handle)
		}
	}
	log.Debug("search variant done", slog.String("query", query), slog.Int("hits", len(hits)), slog.Int("handles", len(handles)))
	return handles
}

// queryVariants expands every enriched query into country-qualified variants,
// deduped case-insensitively in first-seen order.
func queryVariants(exp KeywordExpansionResult) []string {
	queries := exp.EnrichedQueries
	if len(queries) == 0 && exp.SeedKeyword != "" {
		queries = []string{exp.SeedKeyword}
	}
	seen := make(map[string]bool)
	var out []string
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		for _, v := range []string{q, q + " USA", q + " United States", "US " + q} {
			key := strings.ToLower(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}
