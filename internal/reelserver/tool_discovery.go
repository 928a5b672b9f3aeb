package reelserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/engine"
	"github.com/anatolykoptev/go_reels/internal/export"
	"github.com/anatolykoptev/go_reels/internal/store"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"

	maxProfilesCap     = 50
	mediaPerProfileCap = 30
)

type DiscoveryInput struct {
	Keyword         string `json:"keyword" jsonschema:"Topic to find creators for (e.g. vegan recipes, home workouts)"`
	SearchEnabled   *bool  `json:"search_enabled,omitempty" jsonschema:"Harvest extra handles from web search (default true)"`
	MaxProfiles     int    `json:"max_profiles,omitempty" jsonschema:"Max profiles to screen and fetch media for (default 10, max 50)"`
	MediaPerProfile int    `json:"media_per_profile,omitempty" jsonschema:"Reels to fetch per profile (default 6, max 30)"`
	Transcripts     *bool  `json:"transcripts,omitempty" jsonschema:"Fetch reel transcripts for scoring (default true)"`
	FetchDetails    *bool  `json:"fetch_details,omitempty" jsonschema:"Backfill missing reel stats from the detail endpoint (default false)"`
	Format          string `json:"format,omitempty" jsonschema:"Output format: json (default) or csv"`
}

type DiscoveryOutput struct {
	RunID     string                           `json:"run_id"`
	Keyword   string                           `json:"keyword"`
	Expansion discovery.KeywordExpansionResult `json:"expansion"`
	Count     int                              `json:"count"`
	Creators  []discovery.NormalizedCreator    `json:"creators"`
	Stats     discovery.Stats                  `json:"stats"`
	CSV       string                           `json:"csv,omitempty"`
}

func registerCreatorDiscovery(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "creator_discovery",
		Description: "Find US-based Instagram reel creators for a topic. Expands the keyword with an LLM, harvests handles from web search, screens profiles for US location, fetches and scores recent reels, and returns ranked creators with their top reels, emails and location evidence. Set format=csv for a spreadsheet with one row per reel.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, discoveryHandler(deps))
}

func discoveryHandler(deps Deps) mcp.ToolHandlerFor[DiscoveryInput, DiscoveryOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DiscoveryInput) (*mcp.CallToolResult, DiscoveryOutput, error) {
		keyword := strings.TrimSpace(input.Keyword)
		if keyword == "" {
			return nil, DiscoveryOutput{}, fmt.Errorf("keyword is required")
		}
		format := strings.ToLower(strings.TrimSpace(input.Format))
		switch format {
		case "":
			format = formatJSON
		case formatJSON, formatCSV:
		default:
			return nil, DiscoveryOutput{}, fmt.Errorf("unsupported format %q (want json or csv)", input.Format)
		}

		opts := discovery.RunOptions{
			SearchEnabled:   input.SearchEnabled,
			MaxProfiles:     min(max(input.MaxProfiles, 0), maxProfilesCap),
			MediaPerProfile: min(max(input.MediaPerProfile, 0), mediaPerProfileCap),
			Transcripts:     input.Transcripts,
			FetchDetails:    input.FetchDetails,
		}

		cacheKey := engine.CacheKey("creator_discovery", strings.ToLower(keyword),
			optBool(opts.SearchEnabled), strconv.Itoa(opts.MaxProfiles), strconv.Itoa(opts.MediaPerProfile),
			optBool(opts.Transcripts), optBool(opts.FetchDetails), format)
		if out, ok := engine.CacheLoadJSON[DiscoveryOutput](ctx, deps.Cache, cacheKey); ok {
			return nil, out, nil
		}

		res, err := deps.Runner.Run(ctx, keyword, opts)
		if err != nil {
			slog.Warn("creator_discovery failed", slog.String("keyword", keyword), slog.Any("error", err))
			if errors.Is(err, discovery.ErrExpansionFailed) {
				return nil, DiscoveryOutput{}, fmt.Errorf("keyword expansion failed, try again or rephrase the keyword: %w", err)
			}
			return nil, DiscoveryOutput{}, fmt.Errorf("creator discovery: %w", err)
		}

		out := DiscoveryOutput{
			RunID:     res.RunID,
			Keyword:   res.Keyword,
			Expansion: res.Expansion,
			Count:     len(res.Creators),
			Creators:  res.Creators,
			Stats:     res.Stats,
		}
		if out.Creators == nil {
			out.Creators = []discovery.NormalizedCreator{}
		}
		if format == formatCSV {
			csv, err := export.CSV(res.Creators)
			if err != nil {
				return nil, DiscoveryOutput{}, fmt.Errorf("render csv: %w", err)
			}
			out.CSV = csv
		}

		saveRun(ctx, deps, res)
		engine.CacheStoreJSON(ctx, deps.Cache, cacheKey, out)
		return nil, out, nil
	}
}

// saveRun persists the result when a store is configured. Failures are logged only.
func saveRun(ctx context.Context, deps Deps, res *discovery.Result) {
	if deps.Store == nil {
		return
	}
	run, err := store.FromResult(res, deps.now())
	if err == nil {
		err = deps.Store.SaveRun(ctx, run)
	}
	if err != nil {
		slog.Warn("save discovery run failed", slog.String("run_id", res.RunID), slog.Any("error", err))
	}
}

func optBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
