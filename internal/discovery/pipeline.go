package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_reels/internal/engine"
)

var (
	// ErrEmptyKeyword is returned for blank keyword input, before any provider call.
	ErrEmptyKeyword = errors.New("keyword is empty")
	// ErrMissingProvider is returned by New when a required provider is nil.
	ErrMissingProvider = errors.New("missing required provider")
)

const slowRunThreshold = 3 * time.Minute

// Stats summarizes one run.
type Stats struct {
	Candidates   int           `json:"candidates"`
	Accepted     int           `json:"accepted"`
	Rejected     int           `json:"rejected"`
	MediaItems   int           `json:"media_items"`
	Transcribed  int           `json:"transcribed"`
	Creators     int           `json:"creators"`
	Duration     time.Duration `json:"duration_ns"`
	SearchUsed   bool          `json:"search_used"`
	Transcripts  bool          `json:"transcripts"`
	DetailsFetch bool          `json:"details_fetch"`
}

// Result is the output of Pipeline.Run.
type Result struct {
	RunID     string                 `json:"run_id"`
	Keyword   string                 `json:"keyword"`
	Expansion KeywordExpansionResult `json:"expansion"`
	Media     []ScoredMediaItem      `json:"media"`
	Creators  []NormalizedCreator    `json:"creators"`
	Stats     Stats                  `json:"stats"`
}

// Pipeline runs creator discovery end to end. It holds no per-run state and
// is safe for concurrent use.
type Pipeline struct {
	providers Providers
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger; records are tagged with run_id and stage.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(gen func() string) Option {
	return func(p *Pipeline) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// New validates providers and returns a Pipeline.
func New(providers Providers, cfg Config, opts ...Option) (*Pipeline, error) {
	switch {
	case providers.Planner == nil:
		return nil, fmt.Errorf("%w: planner", ErrMissingProvider)
	case providers.Profiles == nil:
		return nil, fmt.Errorf("%w: profiles", ErrMissingProvider)
	case providers.Media == nil:
		return nil, fmt.Errorf("%w: media", ErrMissingProvider)
	}
	p := &Pipeline{
		providers: providers,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Config returns the pipeline defaults.
func (p *Pipeline) Config() Config { return p.cfg }

// Run discovers creators for keyword. It fails only for an empty keyword or a
// failed keyword expansion; every other failure shrinks the result.
func (p *Pipeline) Run(ctx context.Context, keyword string, opts RunOptions) (*Result, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	cfg := opts.apply(p.cfg)
	start := time.Now()
	engine.IncrPipelineRuns()

	res := &Result{RunID: p.newID(), Keyword: keyword}
	log := p.logger.With(slog.String("run_id", res.RunID))
	stage := func(name string) *slog.Logger { return log.With(slog.String("stage", name)) }

	err := engine.TrackOperation(ctx, "discovery_run", slowRunThreshold, func(ctx context.Context) error {
		expander := &Expander{
			Planner:   p.providers.Planner,
			Augmenter: p.providers.Augmenter,
			Domain:    cfg.TargetDomain,
			Platform:  cfg.Platform,
			Logger:    stage("expand"),
		}
		exp, err := expander.Expand(ctx, keyword)
		if err != nil {
			return err
		}
		res.Expansion = exp

		harvester := &Harvester{
			Searcher:    p.providers.Searcher,
			Domain:      cfg.TargetDomain,
			Limit:       cfg.SearchResultLimit,
			Timeout:     cfg.SearchTimeout,
			Concurrency: cfg.SearchConcurrency,
			Logger:      stage("harvest"),
		}
		candidates := harvester.Harvest(ctx, exp, cfg.SearchEnabled)

		screener := &Screener{
			Profiles:          p.providers.Profiles,
			Classifier:        p.providers.Classifier,
			Threshold:         cfg.AcceptThreshold,
			ClassifierTimeout: cfg.ClassifierTimeout,
			Concurrency:       cfg.ScreenConcurrency,
			Logger:            stage("screen"),
		}
		screened := screener.Screen(ctx, candidates, cfg.MaxProfiles)

		fetcher := &MediaFetcher{
			Media:   p.providers.Media,
			Details: p.providers.Details,
			Domain:  cfg.TargetDomain,
			Logger:  stage("media"),
		}
		items := fetcher.FetchMedia(ctx, screened.Accepted, MediaOptions{
			AmountPerProfile:  cfg.MediaPerProfile,
			ProfilesLimit:     cfg.MaxProfiles,
			Concurrency:       cfg.MediaConcurrency,
			FetchDetails:      cfg.FetchDetails,
			DetailConcurrency: cfg.DetailConcurrency,
		})

		if cfg.Transcripts {
			enricher := &TranscriptEnricher{
				Transcripts: p.providers.Transcripts,
				Concurrency: cfg.TranscriptConcurrency,
				Timeout:     cfg.TranscriptTimeout,
				Logger:      stage("transcripts"),
			}
			enricher.Attach(ctx, items)
		}

		res.Media = ScoreMedia(items, exp, p.now())
		aggs := Aggregate(res.Media, cfg.PerCreatorLimit)
		res.Creators = Normalizer{Domain: cfg.TargetDomain, Platform: cfg.Platform}.Normalize(aggs, exp)

		res.Stats = Stats{
			Candidates:   len(candidates),
			Accepted:     len(screened.Accepted),
			Rejected:     len(screened.Rejected),
			MediaItems:   len(items),
			Transcribed:  countTranscribed(items),
			Creators:     len(res.Creators),
			SearchUsed:   cfg.SearchEnabled && p.providers.Searcher != nil,
			Transcripts:  cfg.Transcripts && p.providers.Transcripts != nil,
			DetailsFetch: cfg.FetchDetails && p.providers.Details != nil,
		}
		return nil
	})
	if err != nil {
		log.Error("discovery run failed", slog.String("keyword", keyword), slog.Any("error", err))
		return nil, err
	}

	res.Stats.Duration = time.Since(start)
	log.Info("discovery run done",
		slog.String("keyword", keyword),
		slog.Int("creators", res.Stats.Creators),
		slog.Int("media", res.Stats.MediaItems),
		slog.Duration("elapsed", res.Stats.Duration),
	)
	return res, nil
}

func countTranscribed(items []MediaItem) int {
	n := 0
	for _, it := range items {
		if it.Transcript != nil {
			n++
		}
	}
	return n
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
