package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/anatolykoptev/go_reels/internal/store"
)

func TestSQLiteBackend(t *testing.T) {
	b, err := New("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	runs := []*store.Run{
		{ID: "r1", Keyword: "Vegan Recipes", SeedKeyword: "vegan recipes", CreatorCount: 2, MediaCount: 5,
			Duration: 2 * time.Second, Creators: json.RawMessage(`[{"id":"1"},{"id":"2"}]`), CreatedAt: base},
		{ID: "r2", Keyword: "street tacos", SeedKeyword: "street tacos", CreatorCount: 0,
			Creators: json.RawMessage(`[]`), CreatedAt: base.Add(time.Hour)},
		{ID: "r3", Keyword: "vegan recipes", SeedKeyword: "vegan recipes", CreatorCount: 1,
			Creators: json.RawMessage(`[{"id":"3"}]`), CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, r := range runs {
		if err := b.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", r.ID, err)
		}
	}
	if err := b.SaveRun(ctx, runs[0]); err == nil {
		t.Error("SaveRun() duplicate id: want error")
	}

	all, err := b.ListRuns(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "r3" || all[2].ID != "r1" {
		t.Fatalf("ListRuns() order = %v", ids(all))
	}
	if all[2].Duration != 2*time.Second || string(all[2].Creators) != `[{"id":"1"},{"id":"2"}]` {
		t.Errorf("r1 round trip = %+v", all[2])
	}

	vegan, err := b.ListRuns(ctx, store.Filter{Keyword: "VEGAN recipes"})
	if err != nil {
		t.Fatalf("ListRuns(keyword) error = %v", err)
	}
	if got := ids(vegan); len(got) != 2 || got[0] != "r3" || got[1] != "r1" {
		t.Errorf("keyword filter = %v", got)
	}

	page, err := b.ListRuns(ctx, store.Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListRuns(page) error = %v", err)
	}
	if got := ids(page); len(got) != 1 || got[0] != "r2" {
		t.Errorf("page = %v", got)
	}
}

func ids(runs []*store.Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}
