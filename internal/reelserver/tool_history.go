package reelserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/store"
)

type HistoryInput struct {
	Keyword         string `json:"keyword,omitempty" jsonschema:"Only runs for this keyword (case-insensitive)"`
	SinceHours      int    `json:"since_hours,omitempty" jsonschema:"Only runs from the last N hours"`
	Limit           int    `json:"limit,omitempty" jsonschema:"Max runs to return (default 10, max 50)"`
	IncludeCreators bool   `json:"include_creators,omitempty" jsonschema:"Include the stored creator records of each run"`
}

type RunSummary struct {
	RunID        string                        `json:"run_id"`
	Keyword      string                        `json:"keyword"`
	SeedKeyword  string                        `json:"seed_keyword"`
	CreatorCount int                           `json:"creator_count"`
	MediaCount   int                           `json:"media_count"`
	DurationMS   int64                         `json:"duration_ms"`
	CreatedAt    string                        `json:"created_at"`
	Creators     []discovery.NormalizedCreator `json:"creators,omitempty"`
}

type HistoryOutput struct {
	Count int          `json:"count"`
	Runs  []RunSummary `json:"runs"`
}

func registerDiscoveryHistory(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "discovery_history",
		Description: "List previous creator_discovery runs, newest first. Filter by keyword and age; optionally include the stored creators.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, historyHandler(deps))
}

func historyHandler(deps Deps) mcp.ToolHandlerFor[HistoryInput, HistoryOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
		if deps.Store == nil {
			return nil, HistoryOutput{}, fmt.Errorf("run history is not configured (set DATABASE_URL or SQLITE_PATH)")
		}

		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}
		limit = min(limit, 50)

		filter := store.Filter{Keyword: strings.TrimSpace(input.Keyword), Limit: limit}
		if input.SinceHours > 0 {
			since := deps.now().Add(-time.Duration(input.SinceHours) * time.Hour)
			filter.Since = &since
		}

		runs, err := deps.Store.ListRuns(ctx, filter)
		if err != nil {
			return nil, HistoryOutput{}, fmt.Errorf("list runs: %w", err)
		}

		out := HistoryOutput{Runs: make([]RunSummary, 0, len(runs))}
		for _, r := range runs {
			s := RunSummary{
				RunID:        r.ID,
				Keyword:      r.Keyword,
				SeedKeyword:  r.SeedKeyword,
				CreatorCount: r.CreatorCount,
				MediaCount:   r.MediaCount,
				DurationMS:   r.Duration.Milliseconds(),
				CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
			}
			if input.IncludeCreators {
				creators, err := r.DecodeCreators()
				if err != nil {
					return nil, HistoryOutput{}, err
				}
				s.Creators = creators
			}
			out.Runs = append(out.Runs, s)
		}
		out.Count = len(out.Runs)
		return nil, out, nil
	}
}
