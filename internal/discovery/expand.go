package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/anatolykoptev/go_reels/internal/engine"
)

// ErrExpansionFailed is returned when the planner yields no usable plan.
var ErrExpansionFailed = errors.New("keyword expansion failed")

const defaultHandleConfidence = 0.5

// planOutput is the JSON shape shared by the planner and the augmenter.
type planOutput struct {
	SeedKeyword      string            `json:"seed_keyword"`
	EnrichedQueries  []json.RawMessage `json:"enriched_queries"`
	Hashtags         []json.RawMessage `json:"hashtags"`
	CandidateHandles []json.RawMessage `json:"candidate_handles"`
}

type planCandidate struct {
	Handle     string `json:"handle"`
	Confidence any    `json:"confidence"`
	Reason     string `json:"reason"`
}

// Expander turns a seed keyword into queries, hashtags and candidate handles.
type Expander struct {
	Planner   Completer
	Augmenter Completer // optional
	Domain    string
	Platform  string
	Logger    *slog.Logger
}

// Expand runs the planner (fatal on failure) and the optional augmenter (best effort).
func (e *Expander) Expand(ctx context.Context, keyword string) (KeywordExpansionResult, error) {
	log := loggerOr(e.Logger)
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return KeywordExpansionResult{}, ErrEmptyKeyword
	}
	if e.Planner == nil {
		return KeywordExpansionResult{}, fmt.Errorf("%w: no planner configured", ErrExpansionFailed)
	}

	raw, err := e.Planner.Complete(ctx,
		fmt.Sprintf(plannerSystemPrompt, e.Platform),
		fmt.Sprintf(plannerUserPrompt, e.Platform, keyword))
	if err != nil {
		return KeywordExpansionResult{}, fmt.Errorf("%w: planner call: %v", ErrExpansionFailed, err)
	}
	plan, err := engine.DecodeJSONObject[planOutput](raw)
	if err != nil {
		return KeywordExpansionResult{}, fmt.Errorf("%w: planner response: %v", ErrExpansionFailed, err)
	}

	seed := strings.TrimSpace(plan.SeedKeyword)
	if seed == "" {
		seed = keyword
	}
	b := newExpansionBuilder(seed, keyword, e.Domain)
	b.add(plan)
	b.addQuery(seed)

	if e.Augmenter != nil {
		if extra, err := e.augment(ctx, b.result()); err != nil {
			log.Warn("keyword augmentation skipped", slog.String("keyword", keyword), slog.Any("error", err))
		} else {
			b.add(extra)
		}
	}

	out := b.result()
	log.Info("keyword expanded",
		slog.String("seed", out.SeedKeyword),
		slog.Int("queries", len(out.EnrichedQueries)),
		slog.Int("hashtags", len(out.Hashtags)),
		slog.Int("handles", len(out.CandidateHandles)),
	)
	return out, nil
}

func (e *Expander) augment(ctx context.Context, current KeywordExpansionResult) (planOutput, error) {
	planJSON, err := json.Marshal(current)
	if err != nil {
		return planOutput{}, err
	}
	raw, err := e.Augmenter.Complete(ctx,
		augmentSystemPrompt,
		fmt.Sprintf(augmentUserPrompt, e.Platform, current.SeedKeyword, planJSON))
	if err != nil {
		return planOutput{}, fmt.Errorf("augmenter call: %w", err)
	}
	return engine.DecodeJSONObject[planOutput](raw)
}

// expansionBuilder accumulates plan fragments with case-insensitive dedupe.
type expansionBuilder struct {
	domain      string
	res         KeywordExpansionResult
	seenQuery   map[string]bool
	seenTag     map[string]bool
	handleIndex map[string]int
}

func newExpansionBuilder(seed, original, domain string) *expansionBuilder {
	return &expansionBuilder{
		domain:      domain,
		res:         KeywordExpansionResult{SeedKeyword: seed, OriginalKeyword: original},
		seenQuery:   make(map[string]bool),
		seenTag:     make(map[string]bool),
		handleIndex: make(map[string]int),
	}
}

func (b *expansionBuilder) add(p planOutput) {
	for _, q := range p.EnrichedQueries {
		b.addQuery(rawText(q))
	}
	for _, h := range p.Hashtags {
		b.addHashtag(rawText(h))
	}
	for _, c := range p.CandidateHandles {
		b.addCandidate(parseCandidate(c))
	}
}

func (b *expansionBuilder) addQuery(q string) {
	q = engine.CollapseSpace(q)
	key := strings.ToLower(q)
	if q == "" || b.seenQuery[key] {
		return
	}
	b.seenQuery[key] = true
	b.res.EnrichedQueries = append(b.res.EnrichedQueries, q)
}

func (b *expansionBuilder) addHashtag(tag string) {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
	key := strings.ToLower(tag)
	if tag == "" || strings.ContainsAny(tag, " \t\n") || b.seenTag[key] {
		return
	}
	b.seenTag[key] = true
	b.res.Hashtags = append(b.res.Hashtags, tag)
}

// addCandidate keeps one entry per handle; a later, more confident proposal
// raises the confidence but keeps the first reason.
func (b *expansionBuilder) addCandidate(c planCandidate) {
	h, ok := NormalizeHandle(c.Handle, b.domain)
	if !ok {
		return
	}
	conf := parseConfidence(c.Confidence)
	if i, seen := b.handleIndex[h]; seen {
		if conf > b.res.CandidateHandles[i].Confidence {
			b.res.CandidateHandles[i].Confidence = conf
		}
		return
	}
	b.handleIndex[h] = len(b.res.CandidateHandles)
	b.res.CandidateHandles = append(b.res.CandidateHandles, CandidateHandle{
		Handle:     h,
		Confidence: conf,
		Reason:     strings.TrimSpace(c.Reason),
		Source:     SourceModel,
	})
}

func (b *expansionBuilder) result() KeywordExpansionResult {
	out := b.res
	out.EnrichedQueries = append([]string(nil), b.res.EnrichedQueries...)
	out.Hashtags = append([]string(nil), b.res.Hashtags...)
	out.CandidateHandles = append([]CandidateHandle(nil), b.res.CandidateHandles...)
	return out
}

// rawText returns a JSON string value, or "" for anything else.
func rawText(r json.RawMessage) string {
	var s string
	if err := json.Unmarshal(r, &s); err != nil {
		return ""
	}
	return s
}

// parseCandidate accepts either {"handle": ...} objects or bare handle strings.
func parseCandidate(r json.RawMessage) planCandidate {
	var c planCandidate
	if err := json.Unmarshal(r, &c); err == nil {
		return c
	}
	return planCandidate{Handle: rawText(r)}
}

// parseConfidence returns v when it is a number (or numeric string) in [0,1],
// defaultHandleConfidence otherwise.
func parseConfidence(v any) float64 {
	f, ok := toFloat64(v)
	if !ok || math.IsNaN(f) || f < 0 || f > 1 {
		return defaultHandleConfidence
	}
	return f
}
