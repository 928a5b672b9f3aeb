package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_reels/internal/discovery"
)

// Run is the persisted final outcome of one discovery run.
type Run struct {
	ID           string
	Keyword      string
	SeedKeyword  string
	CreatorCount int
	MediaCount   int
	Duration     time.Duration
	Creators     json.RawMessage // []discovery.NormalizedCreator
	CreatedAt    time.Time
}

// Filter selects stored runs, newest first.
type Filter struct {
	Keyword string // case-insensitive exact match
	Since   *time.Time
	Limit   int
	Offset  int
}

// Backend stores and queries discovery runs.
type Backend interface {
	SaveRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, filter Filter) ([]*Run, error)
	Close() error
}

// FromResult converts a pipeline result into a Run stamped with createdAt.
func FromResult(res *discovery.Result, createdAt time.Time) (*Run, error) {
	creators := res.Creators
	if creators == nil {
		creators = []discovery.NormalizedCreator{}
	}
	data, err := json.Marshal(creators)
	if err != nil {
		return nil, fmt.Errorf("marshal creators: %w", err)
	}
	return &Run{
		ID:           res.RunID,
		Keyword:      res.Keyword,
		SeedKeyword:  res.Expansion.SeedKeyword,
		CreatorCount: len(res.Creators),
		MediaCount:   len(res.Media),
		Duration:     res.Stats.Duration,
		Creators:     data,
		CreatedAt:    createdAt.UTC(),
	}, nil
}

// DecodeCreators unmarshals the stored creator records.
func (r *Run) DecodeCreators() ([]discovery.NormalizedCreator, error) {
	var out []discovery.NormalizedCreator
	if len(r.Creators) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.Creators, &out); err != nil {
		return nil, fmt.Errorf("decode creators of run %s: %w", r.ID, err)
	}
	return out, nil
}
