package discovery

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/anatolykoptev/go_reels/internal/engine"
)

const snippetRadius = 60

var emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9\-]+(?:\.[a-z0-9\-]+)*\.[a-z]{2,}`)

// Normalizer turns creator aggregates into NormalizedCreator records.
type Normalizer struct {
	Domain   string
	Platform string
}

// Normalize builds one record per aggregate, keeping aggregate order.
func (n Normalizer) Normalize(aggs []CreatorAggregate, exp KeywordExpansionResult) []NormalizedCreator {
	out := make([]NormalizedCreator, 0, len(aggs))
	for _, agg := range aggs {
		if len(agg.Items) == 0 {
			continue
		}
		items := append([]ScoredMediaItem(nil), agg.Items...)
		sort.SliceStable(items, func(a, b int) bool { return items[a].RelevanceScore > items[b].RelevanceScore })

		owner := agg.Owner
		raw := owner.Raw
		top := items[0]

		nc := NormalizedCreator{
			ID:            agg.ID,
			Platform:      n.Platform,
			Handle:        owner.Handle,
			FullName:      owner.FullName,
			ProfileURL:    resolveProfileURL(raw, n.Domain, owner.Handle),
			AvatarURL:     rawString(raw, "profile_pic_url_hd", "hd_profile_pic_url_info.url", "profile_pic_url"),
			Bio:           profileBio(raw),
			Emails:        extractEmails(raw),
			FollowerCount: owner.FollowerCount,
			TopItem:       summarizeReel(top),
			Metadata: CreatorMetadata{
				Keyword:            exp.SeedKeyword,
				MatchedTerms:       unionTerms(items),
				RelevanceScore:     top.RelevanceScore,
				LocationConfidence: owner.CountryConfidence,
				IsLikelyUS:         owner.IsLikelyUS,
				LocationHints:      owner.LocationHints,
			},
		}
		for _, it := range items[1:] {
			nc.TopReels = append(nc.TopReels, summarizeReel(it))
		}
		if nc.TopReels == nil {
			nc.TopReels = []ReelSummary{}
		}
		out = append(out, nc)
	}
	return out
}

// resolveProfileURL prefers a link from the payload and falls back to one built from the handle.
func resolveProfileURL(raw map[string]any, domain, handle string) string {
	for _, k := range []string{"profile_url", "url"} {
		if u := rawString(raw, k); strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
			return u
		}
	}
	return profileURL(domain, handle)
}

func summarizeReel(it ScoredMediaItem) ReelSummary {
	return ReelSummary{
		ID:              it.ID,
		Shortcode:       it.Shortcode,
		URL:             it.URL,
		Caption:         it.Caption,
		Thumbnail:       it.Thumbnail,
		TakenAt:         it.TakenAt,
		ViewCount:       it.ViewCount,
		PlayCount:       it.PlayCount,
		LikeCount:       it.LikeCount,
		DurationSeconds: it.DurationSeconds,
		HasTranscript:   it.Transcript != nil,
		RelevanceScore:  it.RelevanceScore,
		MatchedTerms:    it.MatchedTerms,
		Snippet:         buildSnippet(it.MediaItem, it.MatchedTerms),
	}
}

func unionTerms(items []ScoredMediaItem) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, it := range items {
		for _, t := range it.MatchedTerms {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// extractEmails collects lowercase, deduped emails from contact fields, bio and bio links.
func extractEmails(raw map[string]any) []string {
	var sources []string
	for _, key := range []string{"business_email", "public_email", "email", "biography", "bio", "external_url"} {
		if s := rawString(raw, key); s != "" {
			sources = append(sources, s)
		}
	}
	for _, link := range rawSlice(raw, "bio_links") {
		if m, ok := link.(map[string]any); ok {
			sources = append(sources, rawString(m, "url", "lynx_url", "title"))
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, s := range sources {
		for _, e := range emailRe.FindAllString(s, -1) {
			e = strings.ToLower(strings.TrimRight(e, "."))
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// buildSnippet returns a window of text around the first matched term found in
// caption or transcript, or the start of the caption when none is found.
func buildSnippet(it MediaItem, matched []string) string {
	texts := []string{engine.CollapseSpace(it.Caption)}
	if it.Transcript != nil {
		texts = append(texts, engine.CollapseSpace(*it.Transcript))
	}
	for _, term := range matched {
		needles := []string{term}
		if toks := significantTokens(term); len(toks) > 0 && toks[0] != term {
			needles = append(needles, toks[0])
		}
		for _, text := range texts {
			for _, needle := range needles {
				if s, ok := window(text, needle, snippetRadius); ok {
					return s
				}
			}
		}
	}
	return engine.TruncateAtWord(texts[0], 2*snippetRadius)
}

// window cuts radius runes either side of the first case-insensitive occurrence of needle.
func window(text, needle string, radius int) (string, bool) {
	hay := []rune(text)
	lower := make([]rune, len(hay))
	for i, r := range hay {
		lower[i] = unicode.ToLower(r)
	}
	pat := []rune(strings.ToLower(needle))
	at := indexRunes(lower, pat)
	if at < 0 {
		return "", false
	}
	start := max(at-radius, 0)
	end := min(at+len(pat)+radius, len(hay))
	s := strings.TrimSpace(string(hay[start:end]))
	if start > 0 {
		s = "..." + s
	}
	if end < len(hay) {
		s += "..."
	}
	return s, true
}

func indexRunes(hay, pat []rune) int {
	if len(pat) == 0 || len(pat) > len(hay) {
		return -1
	}
outer:
	for i := 0; i+len(pat) <= len(hay); i++ {
		for j := range pat {
			if hay[i+j] != pat[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
