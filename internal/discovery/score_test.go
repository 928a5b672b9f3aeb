package discovery

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var scoreNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) int64 {
	return scoreNow.Add(-time.Duration(d * float64(24*time.Hour))).Unix()
}

func veganExpansion() KeywordExpansionResult {
	return KeywordExpansionResult{
		SeedKeyword:     "vegan recipes",
		OriginalKeyword: "vegan recipes",
		EnrichedQueries: []string{"easy vegan dinner"},
		Hashtags:        []string{"veganrecipes", "plantbased"},
	}
}

func TestScoreMediaPrimaryMatchClamps(t *testing.T) {
	items := []MediaItem{{
		ID:        "1",
		Caption:   "My favourite vegan recipes this week",
		TakenAt:   daysAgo(2),
		ViewCount: ptr(int64(10000)),
		Owner:     ProfileSummary{Handle: "veganeats", CountryConfidence: 0.8},
	}}
	got := ScoreMedia(items, veganExpansion(), scoreNow)
	if got[0].RelevanceScore != 1.0 {
		t.Errorf("score = %v, want 1.0", got[0].RelevanceScore)
	}
	if got[0].LocationConfidence != 0.8 {
		t.Errorf("location confidence = %v", got[0].LocationConfidence)
	}
	if len(got[0].MatchedTerms) == 0 || got[0].MatchedTerms[0] != "vegan recipes" {
		t.Errorf("matched = %v", got[0].MatchedTerms)
	}
}

func TestScoreMediaNoMatchPenalty(t *testing.T) {
	items := []MediaItem{{
		ID:        "1",
		Caption:   "Sunset at the beach",
		TakenAt:   daysAgo(1),
		ViewCount: ptr(int64(500)),
		Owner:     ProfileSummary{CountryConfidence: 0.9},
	}}
	got := ScoreMedia(items, veganExpansion(), scoreNow)
	want := (0.20 + math.Min(math.Log10(501)/12, popularityCap) + 0.25) * 0.25
	if math.Abs(got[0].RelevanceScore-want) > 1e-9 {
		t.Errorf("score = %v, want %v", got[0].RelevanceScore, want)
	}
	if got[0].RelevanceScore >= 0.2 {
		t.Errorf("score = %v, want < 0.2", got[0].RelevanceScore)
	}
	if len(got[0].MatchedTerms) != 0 {
		t.Errorf("matched = %v", got[0].MatchedTerms)
	}
}

func TestScoreMediaTokenMatch(t *testing.T) {
	tr := "today: RECIPES that happen to be vegan"
	items := []MediaItem{{ID: "1", Transcript: &tr}}
	got := ScoreMedia(items, KeywordExpansionResult{SeedKeyword: "vegan recipes"}, scoreNow)
	if math.Abs(got[0].RelevanceScore-primaryMatchBoost) > 1e-9 {
		t.Errorf("score = %v, want %v", got[0].RelevanceScore, primaryMatchBoost)
	}
}

func TestScoreMediaSecondaryCap(t *testing.T) {
	exp := KeywordExpansionResult{
		SeedKeyword: "mexican street food",
		Hashtags:    []string{"tacos", "salsa", "guacamole", "burrito", "nachos"},
	}
	items := []MediaItem{{ID: "1", Caption: "tacos salsa guacamole burrito nachos"}}
	got := ScoreMedia(items, exp, scoreNow)
	if math.Abs(got[0].RelevanceScore-secondaryMatchCap) > 1e-9 {
		t.Errorf("score = %v, want %v", got[0].RelevanceScore, secondaryMatchCap)
	}
	if len(got[0].MatchedTerms) != 5 {
		t.Errorf("matched = %v", got[0].MatchedTerms)
	}
}

func TestScoreMediaSortedAndDeterministic(t *testing.T) {
	exp := veganExpansion()
	items := []MediaItem{
		{ID: "a", Caption: "nothing relevant", TakenAt: daysAgo(40)},
		{ID: "b", Caption: "plantbased bowl", TakenAt: daysAgo(5)},
		{ID: "c", Caption: "vegan recipes", TakenAt: daysAgo(100)},
		{ID: "d", Caption: "nothing relevant", TakenAt: daysAgo(40)},
		{ID: "e", Caption: "easy vegan dinner ideas #veganrecipes", TakenAt: daysAgo(20), ViewCount: ptr(int64(1e6))},
	}
	first := ScoreMedia(items, exp, scoreNow)
	second := ScoreMedia(items, exp, scoreNow)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("ScoreMedia() not deterministic")
	}
	for i := 1; i < len(first); i++ {
		if first[i].RelevanceScore > first[i-1].RelevanceScore {
			t.Fatalf("not sorted at %d: %v > %v", i, first[i].RelevanceScore, first[i-1].RelevanceScore)
		}
	}
	if first[3].ID != "a" || first[4].ID != "d" {
		t.Errorf("ties reordered: %s, %s", first[3].ID, first[4].ID)
	}
	for _, s := range first {
		if s.RelevanceScore < 0 || s.RelevanceScore > 1 {
			t.Errorf("score %v out of range", s.RelevanceScore)
		}
	}
	if items[0].ID != "a" || items[4].ID != "e" {
		t.Error("input slice mutated")
	}
}

func TestRecencyBoost(t *testing.T) {
	tests := []struct {
		takenAt int64
		want    float64
	}{
		{0, 0},
		{daysAgo(-1), 0.20},
		{daysAgo(3), 0.20},
		{daysAgo(6), 0.15},
		{daysAgo(29), 0.10},
		{daysAgo(89), 0.05},
		{daysAgo(91), 0},
	}
	for _, tt := range tests {
		if got := recencyBoost(tt.takenAt, scoreNow); got != tt.want {
			t.Errorf("recencyBoost(%d) = %v, want %v", tt.takenAt, got, tt.want)
		}
	}
}
