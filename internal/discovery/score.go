package discovery

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
)

const (
	primaryMatchBoost   = 0.55
	secondaryMatchBoost = 0.12
	secondaryMatchCap   = 0.36
	popularityCap       = 0.18
	locationCap         = 0.25
	noMatchFactor       = 0.25
	minTokenLen         = 3
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true, "that": true,
	"this": true, "you": true, "your": true, "are": true, "was": true, "were": true,
	"how": true, "what": true, "who": true, "why": true, "best": true, "top": true,
	"near": true, "into": true, "about": true, "our": true, "all": true, "new": true,
	"usa": true, "united": true, "states": true, "creators": true, "creator": true,
	"influencer": true, "influencers": true, "instagram": true, "reels": true, "reel": true,
}

// recencyTiers map the maximum age in days to its boost.
var recencyTiers = []struct {
	days  float64
	boost float64
}{
	{3, 0.20},
	{7, 0.15},
	{30, 0.10},
	{90, 0.05},
}

// termSet holds the lowercase terms of one scoring call.
type termSet struct {
	primary   []string
	secondary []string
}

func buildTerms(exp KeywordExpansionResult) termSet {
	var ts termSet
	seen := make(map[string]bool)
	add := func(dst *[]string, s string) {
		s = strings.ToLower(strings.Join(strings.Fields(strings.TrimLeft(s, "#")), " "))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		*dst = append(*dst, s)
	}
	add(&ts.primary, exp.SeedKeyword)
	add(&ts.primary, exp.OriginalKeyword)

	var phrases []string
	phrases = append(phrases, exp.EnrichedQueries...)
	phrases = append(phrases, exp.Hashtags...)
	for _, p := range phrases {
		add(&ts.secondary, p)
	}
	for _, p := range phrases {
		for _, tok := range significantTokens(p) {
			add(&ts.secondary, tok)
		}
	}
	return ts
}

// tokenize splits s into lowercase letter/digit runs.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func significantTokens(s string) []string {
	var out []string
	for _, t := range tokenize(s) {
		if len([]rune(t)) >= minTokenLen && !stopwords[t] {
			out = append(out, t)
		}
	}
	return out
}

// corpus is the lowercase searchable text of one item.
type corpus struct {
	text   string
	tokens map[string]bool
}

func newCorpus(it MediaItem) corpus {
	var b strings.Builder
	b.WriteString(it.Caption)
	if it.Transcript != nil {
		b.WriteString("\n")
		b.WriteString(*it.Transcript)
	}
	text := strings.ToLower(b.String())
	c := corpus{text: text, tokens: make(map[string]bool)}
	for _, t := range tokenize(text) {
		c.tokens[t] = true
	}
	return c
}

// matches reports a substring hit, or for multi-word terms, all significant tokens present.
func (c corpus) matches(term string) bool {
	if term == "" || c.text == "" {
		return false
	}
	if strings.Contains(c.text, term) {
		return true
	}
	if !strings.Contains(term, " ") {
		return false
	}
	toks := significantTokens(term)
	if len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		if !c.tokens[t] {
			return false
		}
	}
	return true
}

// ScoreMedia scores items against the expansion terms and returns them sorted
// by descending relevance; ties keep input order. It has no side effects.
func ScoreMedia(items []MediaItem, exp KeywordExpansionResult, now time.Time) []ScoredMediaItem {
	terms := buildTerms(exp)
	out := make([]ScoredMediaItem, 0, len(items))
	for _, it := range items {
		score, matched := scoreItem(it, terms, now)
		out = append(out, ScoredMediaItem{
			MediaItem:          it,
			RelevanceScore:     score,
			LocationConfidence: it.Owner.CountryConfidence,
			MatchedTerms:       matched,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	return out
}

func scoreItem(it MediaItem, terms termSet, now time.Time) (float64, []string) {
	c := newCorpus(it)
	score := 0.0
	matched := []string{}

	for _, t := range terms.primary {
		if c.matches(t) {
			score += primaryMatchBoost
			matched = append(matched, t)
			break
		}
	}

	secondary := 0.0
	for _, t := range terms.secondary {
		if c.matches(t) {
			secondary += secondaryMatchBoost
			matched = append(matched, t)
		}
	}
	score += math.Min(secondary, secondaryMatchCap)

	score += recencyBoost(it.TakenAt, now)
	if it.ViewCount != nil {
		v := math.Max(float64(*it.ViewCount), 0)
		score += math.Min(math.Log10(v+1)/12, popularityCap)
	}
	score += math.Min(math.Max(it.Owner.CountryConfidence, 0), locationCap)

	if len(matched) == 0 {
		score *= noMatchFactor
	}
	return clamp01(score), matched
}

// recencyBoost returns 0 for an unknown timestamp; future timestamps count as fresh.
func recencyBoost(takenAt int64, now time.Time) float64 {
	if takenAt <= 0 {
		return 0
	}
	age := now.Sub(time.Unix(takenAt, 0)).Hours() / 24
	if age < 0 {
		age = 0
	}
	for _, tier := range recencyTiers {
		if age <= tier.days {
			return tier.boost
		}
	}
	return 0
}
