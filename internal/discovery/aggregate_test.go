package discovery

import "testing"

func scored(owner ProfileSummary, id string, score float64) ScoredMediaItem {
	return ScoredMediaItem{MediaItem: MediaItem{ID: id, Owner: owner}, RelevanceScore: score}
}

func TestAggregate(t *testing.T) {
	a := ProfileSummary{Handle: "a", UserID: "1"}
	b := ProfileSummary{Handle: "b"}
	in := []ScoredMediaItem{
		scored(b, "b1", 0.9),
		scored(a, "a1", 0.8),
		scored(a, "a2", 0.7),
		scored(b, "b2", 0.95),
		scored(a, "a3", 0.6),
		scored(a, "a4", 0.65),
		scored(ProfileSummary{}, "orphan", 0.99),
	}
	got := Aggregate(in, 3)
	if len(got) != 2 {
		t.Fatalf("groups = %d, want 2", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "1" {
		t.Errorf("group order = %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Items[0].ID != "b2" {
		t.Errorf("top of b = %s, want b2", got[0].Items[0].ID)
	}
	var ids []string
	for _, it := range got[1].Items {
		ids = append(ids, it.ID)
	}
	if len(ids) != 3 || ids[0] != "a1" || ids[1] != "a2" || ids[2] != "a4" {
		t.Errorf("a items = %v", ids)
	}
}

func TestAggregateNeverExceedsLimit(t *testing.T) {
	owner := ProfileSummary{Handle: "x"}
	var in []ScoredMediaItem
	for i := range 10 {
		in = append(in, scored(owner, string(rune('a'+i)), float64(i)/10))
	}
	for _, limit := range []int{1, 2, 5, 0} {
		want := limit
		if limit == 0 {
			want = defaultPerCreatorLimit
		}
		for _, g := range Aggregate(in, limit) {
			if len(g.Items) > want {
				t.Errorf("limit %d: group has %d items", limit, len(g.Items))
			}
		}
	}
}
