package discovery

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tr := "In this video I cook three vegan recipes for busy weeknights"
	owner := ProfileSummary{
		Handle:            "veganeats",
		UserID:            "101",
		FullName:          "Vegan Eats",
		FollowerCount:     ptr(int64(25000)),
		CountryConfidence: 0.8,
		IsLikelyUS:        true,
		LocationHints:     []string{"bio:los angeles"},
		Raw: map[string]any{
			"biography":               "LA plant-based cook. Collabs: Hello@VeganEats.com",
			"business_email":          "hello@veganeats.com",
			"public_email":            "press@veganeats.com.",
			"hd_profile_pic_url_info": map[string]any{"url": "https://cdn.example/hd.jpg"},
			"profile_pic_url":         "https://cdn.example/sd.jpg",
			"bio_links":               []any{map[string]any{"url": "mailto:book@agency.io"}},
			"external_url":            "https://linktr.ee/veganeats",
		},
	}
	agg := CreatorAggregate{ID: "101", Owner: owner, Items: []ScoredMediaItem{
		{MediaItem: MediaItem{ID: "2", URL: "u2", Caption: "weekend bbq"}, RelevanceScore: 0.4, MatchedTerms: []string{"bbq"}},
		{MediaItem: MediaItem{ID: "1", URL: "u1", Caption: "dinner", Transcript: &tr}, RelevanceScore: 0.9, MatchedTerms: []string{"vegan recipes"}},
	}}
	got := Normalizer{Domain: "instagram.com", Platform: "instagram"}.Normalize([]CreatorAggregate{agg}, veganExpansion())
	if len(got) != 1 {
		t.Fatalf("Normalize() returned %d creators", len(got))
	}
	c := got[0]
	if c.ProfileURL != "https://www.instagram.com/veganeats/" {
		t.Errorf("ProfileURL = %q", c.ProfileURL)
	}
	if c.AvatarURL != "https://cdn.example/hd.jpg" {
		t.Errorf("AvatarURL = %q", c.AvatarURL)
	}
	if strings.Join(c.Emails, ",") != "hello@veganeats.com,press@veganeats.com,book@agency.io" {
		t.Errorf("Emails = %v", c.Emails)
	}
	if c.TopItem.ID != "1" || !c.TopItem.HasTranscript {
		t.Errorf("TopItem = %+v", c.TopItem)
	}
	if !strings.Contains(c.TopItem.Snippet, "vegan recipes") {
		t.Errorf("Snippet = %q", c.TopItem.Snippet)
	}
	if len(c.TopReels) != 1 || c.TopReels[0].ID != "2" || c.TopReels[0].Snippet != "weekend bbq" {
		t.Errorf("TopReels = %+v", c.TopReels)
	}
	if c.Metadata.Keyword != "vegan recipes" || c.Metadata.RelevanceScore != 0.9 || !c.Metadata.IsLikelyUS {
		t.Errorf("Metadata = %+v", c.Metadata)
	}
	if strings.Join(c.Metadata.MatchedTerms, ",") != "vegan recipes,bbq" {
		t.Errorf("MatchedTerms = %v", c.Metadata.MatchedTerms)
	}
}

func TestWindow(t *testing.T) {
	text := strings.Repeat("a ", 50) + "Vegan Recipes" + strings.Repeat(" b", 50)
	got, ok := window(text, "vegan recipes", 10)
	if !ok {
		t.Fatal("window() found nothing")
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") || !strings.Contains(got, "Vegan Recipes") {
		t.Errorf("window() = %q", got)
	}
	if _, ok := window("nothing here", "vegan", 10); ok {
		t.Error("window() matched absent needle")
	}
}

func TestBuildSnippetFallsBackToCaption(t *testing.T) {
	it := MediaItem{Caption: "short caption"}
	if got := buildSnippet(it, []string{"absent"}); got != "short caption" {
		t.Errorf("buildSnippet() = %q", got)
	}
}

func TestResolveProfileURL(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"profile_url field", map[string]any{"profile_url": "https://www.instagram.com/VeganEats/"}, "https://www.instagram.com/VeganEats/"},
		{"url field", map[string]any{"url": "https://instagram.com/veganeats"}, "https://instagram.com/veganeats"},
		{"first non-empty wins", map[string]any{"profile_url": " ", "url": "https://instagram.com/b"}, "https://instagram.com/b"},
		{"non-link ignored", map[string]any{"url": "veganeats"}, "https://www.instagram.com/veganeats/"},
		{"no fields", nil, "https://www.instagram.com/veganeats/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveProfileURL(tt.raw, "instagram.com", "veganeats"); got != tt.want {
				t.Errorf("resolveProfileURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
