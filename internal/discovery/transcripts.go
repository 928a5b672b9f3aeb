package discovery

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// TranscriptEnricher attaches transcripts to media items.
type TranscriptEnricher struct {
	Transcripts TranscriptFetcher
	Concurrency int
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Attach sets Transcript on each item in place. Items whose lookup fails or
// yields no text keep a nil Transcript.
func (t *TranscriptEnricher) Attach(ctx context.Context, items []MediaItem) {
	log := loggerOr(t.Logger)
	if t.Transcripts == nil || len(items) == 0 {
		return
	}
	results := make([]*string, len(items))
	_ = runPool(ctx, items, t.Concurrency, func(ctx context.Context, i int, it MediaItem) {
		results[i] = t.fetch(ctx, log, it)
	})

	attached := 0
	for i, tr := range results {
		items[i].Transcript = tr
		if tr != nil {
			attached++
		}
	}
	log.Info("transcripts attached", slog.Int("items", len(items)), slog.Int("attached", attached))
}

func (t *TranscriptEnricher) fetch(ctx context.Context, log *slog.Logger, it MediaItem) *string {
	if it.URL == "" {
		return nil
	}
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	segments, err := t.Transcripts.FetchTranscript(ctx, it.URL)
	if err != nil {
		log.Warn("transcript fetch failed", slog.String("url", it.URL), slog.Any("error", err))
		return nil
	}
	return joinSegments(segments)
}

// joinSegments joins non-blank segments with newlines; nil when nothing remains.
func joinSegments(segments []string) *string {
	var kept []string
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	text := strings.Join(kept, "\n")
	return &text
}
