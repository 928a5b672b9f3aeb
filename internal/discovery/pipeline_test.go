package discovery

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pipelineNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type pipelineFixture struct {
	providers   Providers
	profiles    *fakeProfiles
	media       *fakeMedia
	searchCalls atomic.Int32
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{}
	recent := float64(pipelineNow.Add(-48 * time.Hour).Unix())
	old := float64(pipelineNow.Add(-200 * 24 * time.Hour).Unix())

	f.profiles = &fakeProfiles{profiles: map[string]map[string]any{
		"veganeats": {
			"pk": "101", "username": "veganeats", "full_name": "Vegan Eats",
			"biography":      "Plant-based recipes from Los Angeles. hello@veganeats.com",
			"follower_count": 42000.0,
		},
		"greenbowl": {
			"pk": "202", "username": "greenbowl", "biography": "Salads & bowls",
			"business_address_json": `{"city_name":"Portland","country_code":"US"}`,
			"follower_count":        3000.0,
		},
		"londonveg": {
			"pk": "303", "username": "londonveg", "biography": "London kitchen",
			"follower_count": 8000.0,
		},
	}}
	f.media = &fakeMedia{media: map[string][]map[string]any{
		"101": {
			{"pk": "1", "code": "V1", "caption": map[string]any{"text": "3 vegan recipes for lunch"}, "taken_at": recent, "view_count": 10000.0},
			{"pk": "2", "code": "V2", "caption": map[string]any{"text": "gym day"}, "taken_at": old},
			{"pk": "3", "code": "V3", "caption": map[string]any{"text": "plantbased tacos"}, "taken_at": recent},
			{"pk": "4", "code": "V4", "caption": map[string]any{"text": "easy vegan dinner"}, "taken_at": recent},
		},
		"202": {
			{"pk": "5", "code": "G1", "caption": map[string]any{"text": "bowl prep"}, "taken_at": recent},
		},
		"303": {
			{"pk": "6", "code": "L1", "caption": map[string]any{"text": "vegan recipes london"}, "taken_at": recent},
		},
	}}

	f.providers = Providers{
		Planner: staticCompleter(veganPlan),
		Classifier: completerFunc(func(_ context.Context, _, prompt string) (string, error) {
			if strings.Contains(prompt, "londonveg") {
				return `{"is_us_based": false, "confidence": 0.9, "reason": "London"}`, nil
			}
			return `{"is_us_based": true, "confidence": 0.85, "reason": "US city"}`, nil
		}),
		Searcher: searcherFunc(func(context.Context, string, int) ([]SearchHit, error) {
			f.searchCalls.Add(1)
			return []SearchHit{{URL: "https://www.instagram.com/greenbowl/"}, {URL: "https://www.instagram.com/londonveg/"}}, nil
		}),
		Profiles: f.profiles,
		Media:    f.media,
		Transcripts: &fakeTranscripts{segments: map[string][]string{
			"https://www.instagram.com/reel/V2/": {"today I share my vegan recipes"},
		}},
	}
	return f
}

func newTestPipeline(t *testing.T, f *pipelineFixture, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(f.providers, cfg,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return pipelineNow }),
		WithRunIDs(func() string { return "run-1" }),
	)
	require.NoError(t, err)
	return p
}

func TestPipelineRun(t *testing.T) {
	f := newPipelineFixture()
	cfg := DefaultConfig()
	cfg.SearchConcurrency = 1
	p := newTestPipeline(t, f, cfg)

	res, err := p.Run(context.Background(), "  vegan recipes ", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "vegan recipes", res.Keyword)
	assert.Equal(t, "vegan recipes", res.Expansion.SeedKeyword)
	assert.Positive(t, f.searchCalls.Load())
	assert.Equal(t, 3, res.Stats.Candidates)
	assert.Equal(t, 3, res.Stats.Accepted)
	assert.Equal(t, 6, res.Stats.MediaItems)
	assert.Equal(t, 1, res.Stats.Transcribed)

	require.NotEmpty(t, res.Media)
	for i := 1; i < len(res.Media); i++ {
		assert.GreaterOrEqual(t, res.Media[i-1].RelevanceScore, res.Media[i].RelevanceScore)
	}
	assert.Equal(t, "V1", res.Media[0].Shortcode)
	assert.InDelta(t, 1.0, res.Media[0].RelevanceScore, 1e-9)

	require.Len(t, res.Creators, 3)
	top := res.Creators[0]
	assert.Equal(t, "veganeats", top.Handle)
	assert.Equal(t, "101", top.ID)
	assert.Equal(t, "V1", top.TopItem.Shortcode)
	assert.Len(t, top.TopReels, 2, "per-creator cap of 3 keeps two supplementary reels")
	assert.Equal(t, []string{"hello@veganeats.com"}, top.Emails)
	assert.True(t, top.Metadata.IsLikelyUS)

	for _, c := range res.Creators {
		assert.LessOrEqual(t, 1+len(c.TopReels), cfg.PerCreatorLimit)
		if c.Handle == "londonveg" {
			assert.False(t, c.Metadata.IsLikelyUS)
			assert.InDelta(t, 0.0, c.Metadata.LocationConfidence, 1e-9)
		}
	}
}

func TestPipelineRunOptions(t *testing.T) {
	f := newPipelineFixture()
	p := newTestPipeline(t, f, DefaultConfig())

	res, err := p.Run(context.Background(), "vegan recipes", RunOptions{
		SearchEnabled:   ptr(false),
		MaxProfiles:     1,
		MediaPerProfile: 2,
		Transcripts:     ptr(false),
	})
	require.NoError(t, err)

	assert.Zero(t, f.searchCalls.Load())
	assert.Equal(t, 1, res.Stats.Candidates)
	assert.Equal(t, 2, res.Stats.MediaItems)
	assert.Zero(t, res.Stats.Transcribed)
	require.Len(t, res.Creators, 1)
	assert.Equal(t, "veganeats", res.Creators[0].Handle)
	assert.Equal(t, 10, p.Config().MaxProfiles, "run options must not change pipeline defaults")
}

func TestPipelineRunErrors(t *testing.T) {
	f := newPipelineFixture()
	plannerCalls := 0
	f.providers.Planner = completerFunc(func(context.Context, string, string) (string, error) {
		plannerCalls++
		return "sorry, no plan", nil
	})
	p := newTestPipeline(t, f, DefaultConfig())

	_, err := p.Run(context.Background(), " \n ", RunOptions{})
	require.ErrorIs(t, err, ErrEmptyKeyword)
	assert.Zero(t, plannerCalls)
	assert.Zero(t, f.profiles.calls.Load())

	_, err = p.Run(context.Background(), "vegan recipes", RunOptions{})
	require.ErrorIs(t, err, ErrExpansionFailed)
	assert.Equal(t, 1, plannerCalls)
	assert.Zero(t, f.profiles.calls.Load())
}

func TestPipelineDegradesOnProviderFailures(t *testing.T) {
	f := newPipelineFixture()
	f.providers.Searcher = searcherFunc(func(context.Context, string, int) ([]SearchHit, error) {
		return nil, errFake
	})
	f.providers.Classifier = completerFunc(func(context.Context, string, string) (string, error) {
		return "", errFake
	})
	f.profiles.errs = map[string]bool{"veganeats": true}
	p := newTestPipeline(t, f, DefaultConfig())

	res, err := p.Run(context.Background(), "vegan recipes", RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Creators)
	assert.Equal(t, 1, res.Stats.Candidates)
}

func TestNewRequiresProviders(t *testing.T) {
	_, err := New(Providers{}, DefaultConfig())
	assert.ErrorIs(t, err, ErrMissingProvider)
}
