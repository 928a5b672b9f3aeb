package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const veganPlan = `Sure! Here is the plan:
{"seed_keyword": "vegan recipes",
 "enriched_queries": ["vegan recipes", "Vegan Recipes", "easy vegan dinner"],
 "hashtags": ["#veganrecipes", "VeganRecipes", "plantbased"],
 "candidate_handles": [{"handle": "@VeganEats", "confidence": 0.8, "reason": "LA vegan chef"}]}
Let me know if you need more.`

func newTestExpander(planner, augmenter Completer) *Expander {
	return &Expander{Planner: planner, Augmenter: augmenter, Domain: "instagram.com", Platform: "instagram"}
}

func TestExpandVeganRecipes(t *testing.T) {
	e := newTestExpander(staticCompleter(veganPlan), nil)
	got, err := e.Expand(context.Background(), "  vegan recipes ")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got.SeedKeyword != "vegan recipes" || got.OriginalKeyword != "vegan recipes" {
		t.Errorf("seed = %q, original = %q", got.SeedKeyword, got.OriginalKeyword)
	}
	if len(got.EnrichedQueries) != 2 {
		t.Errorf("EnrichedQueries = %v, want 2 case-insensitive uniques", got.EnrichedQueries)
	}
	if len(got.Hashtags) != 2 || got.Hashtags[0] != "veganrecipes" {
		t.Errorf("Hashtags = %v", got.Hashtags)
	}
	if len(got.CandidateHandles) != 1 {
		t.Fatalf("CandidateHandles = %v", got.CandidateHandles)
	}
	c := got.CandidateHandles[0]
	if c.Handle != "veganeats" || c.Confidence != 0.8 || c.Source != SourceModel {
		t.Errorf("candidate = %+v", c)
	}
}

func TestExpandFatalCases(t *testing.T) {
	tests := []struct {
		name    string
		planner Completer
		keyword string
		want    error
	}{
		{"empty keyword", staticCompleter(veganPlan), "   ", ErrEmptyKeyword},
		{"no json", staticCompleter("I cannot help with that."), "vegan", ErrExpansionFailed},
		{"planner error", completerFunc(func(context.Context, string, string) (string, error) {
			return "", errFake
		}), "vegan", ErrExpansionFailed},
		{"no planner", nil, "vegan", ErrExpansionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Expander{Domain: "instagram.com"}
			if tt.planner != nil {
				e.Planner = tt.planner
			}
			_, err := e.Expand(context.Background(), tt.keyword)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expand() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExpandEmptyKeywordSkipsPlanner(t *testing.T) {
	called := false
	e := newTestExpander(completerFunc(func(context.Context, string, string) (string, error) {
		called = true
		return veganPlan, nil
	}), nil)
	if _, err := e.Expand(context.Background(), "\t\n"); !errors.Is(err, ErrEmptyKeyword) {
		t.Fatalf("Expand() error = %v", err)
	}
	if called {
		t.Error("planner called for empty keyword")
	}
}

func TestExpandAugmenter(t *testing.T) {
	aug := staticCompleter(`{"enriched_queries": ["EASY VEGAN DINNER", "vegan meal prep"],
		"hashtags": ["plantBased", "veganfood"],
		"candidate_handles": [{"handle": "veganeats", "confidence": 0.95, "reason": "dup"},
			{"handle": "plantchef", "confidence": "high"}, "greenbowl"]}`)
	e := newTestExpander(staticCompleter(veganPlan), aug)
	got, err := e.Expand(context.Background(), "vegan recipes")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got.EnrichedQueries) != 3 {
		t.Errorf("EnrichedQueries = %v", got.EnrichedQueries)
	}
	if len(got.Hashtags) != 3 {
		t.Errorf("Hashtags = %v", got.Hashtags)
	}
	byHandle := map[string]CandidateHandle{}
	for _, c := range got.CandidateHandles {
		byHandle[c.Handle] = c
	}
	if c := byHandle["veganeats"]; c.Confidence != 0.95 || c.Reason != "LA vegan chef" {
		t.Errorf("merged veganeats = %+v", c)
	}
	if c := byHandle["plantchef"]; c.Confidence != defaultHandleConfidence {
		t.Errorf("plantchef confidence = %v, want default", c.Confidence)
	}
	if _, ok := byHandle["greenbowl"]; !ok {
		t.Error("bare string handle dropped")
	}
}

func TestExpandAugmenterFailureIsNonFatal(t *testing.T) {
	for name, aug := range map[string]Completer{
		"error":   completerFunc(func(context.Context, string, string) (string, error) { return "", errFake }),
		"garbage": staticCompleter("no json here"),
	} {
		t.Run(name, func(t *testing.T) {
			e := newTestExpander(staticCompleter(veganPlan), aug)
			got, err := e.Expand(context.Background(), "vegan recipes")
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if len(got.CandidateHandles) != 1 {
				t.Errorf("CandidateHandles = %v", got.CandidateHandles)
			}
		})
	}
}

func TestExpandSeedFallsBackToKeyword(t *testing.T) {
	e := newTestExpander(staticCompleter(`{"hashtags": ["tacos"]}`), nil)
	got, err := e.Expand(context.Background(), "Street Tacos")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got.SeedKeyword != "Street Tacos" {
		t.Errorf("SeedKeyword = %q", got.SeedKeyword)
	}
	if len(got.EnrichedQueries) != 1 || !strings.EqualFold(got.EnrichedQueries[0], "street tacos") {
		t.Errorf("EnrichedQueries = %v, want the seed", got.EnrichedQueries)
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{0.8, 0.8},
		{float64(1), 1},
		{0.0, 0},
		{nil, 0.5},
		{"0.3", 0.3},
		{"high", 0.5},
		{1.7, 0.5},
		{-0.1, 0.5},
	}
	for _, tt := range tests {
		if got := parseConfidence(tt.in); got != tt.want {
			t.Errorf("parseConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
