package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/anatolykoptev/go_reels/internal/engine"
)

// ScreenResult splits screened profiles by the acceptance threshold.
// Accepted may include backfilled profiles below the threshold.
type ScreenResult struct {
	Accepted []ProfileSummary `json:"accepted"`
	Rejected []ProfileSummary `json:"rejected"`
}

// Screener fetches profiles and scores how likely each is US-based.
type Screener struct {
	Profiles          ProfileFetcher
	Classifier        Completer // nil disables escalation
	Threshold         float64
	ClassifierTimeout time.Duration
	Concurrency       int
	Logger            *slog.Logger
}

type classifierVerdict struct {
	IsUSBased  any    `json:"is_us_based"`
	Confidence any    `json:"confidence"`
	Reason     string `json:"reason"`
}

// Screen screens the first limit candidates (all when limit <= 0) and backfills
// Accepted from the best rejects when fewer than limit pass.
func (s *Screener) Screen(ctx context.Context, candidates []CandidateHandle, limit int) ScreenResult {
	log := loggerOr(s.Logger)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	slots := make([]*ProfileSummary, len(candidates))
	_ = runPool(ctx, candidates, s.Concurrency, func(ctx context.Context, i int, c CandidateHandle) {
		slots[i] = s.screenOne(ctx, log, c.Handle)
	})

	var res ScreenResult
	for _, p := range slots {
		if p == nil {
			continue
		}
		if p.IsLikelyUS {
			res.Accepted = append(res.Accepted, *p)
		} else {
			res.Rejected = append(res.Rejected, *p)
		}
	}
	passed := len(res.Accepted)

	if limit > 0 && len(res.Accepted) < limit && len(res.Rejected) > 0 {
		sort.SliceStable(res.Rejected, func(i, j int) bool {
			return res.Rejected[i].CountryConfidence > res.Rejected[j].CountryConfidence
		})
		n := min(limit-len(res.Accepted), len(res.Rejected))
		res.Accepted = append(res.Accepted, res.Rejected[:n]...)
		res.Rejected = append([]ProfileSummary(nil), res.Rejected[n:]...)
	}

	log.Info("profiles screened",
		slog.Int("candidates", len(candidates)),
		slog.Int("passed", passed),
		slog.Int("accepted", len(res.Accepted)),
		slog.Int("rejected", len(res.Rejected)),
	)
	return res
}

// screenOne returns nil when the profile could not be fetched.
func (s *Screener) screenOne(ctx context.Context, log *slog.Logger, handle string) *ProfileSummary {
	raw, err := s.Profiles.FetchProfile(ctx, handle)
	if err != nil {
		log.Warn("profile fetch failed", slog.String("handle", handle), slog.Any("error", err))
		return nil
	}
	if raw == nil {
		log.Debug("profile not found", slog.String("handle", handle))
		return nil
	}

	p := summarizeProfile(handle, raw)
	ev := scoreLocation(raw)
	p.LocationHints = ev.Hints
	p.CountryConfidence = ev.Confidence

	if p.CountryConfidence < s.Threshold && s.Classifier != nil {
		v, err := s.classify(ctx, p, raw)
		if err != nil {
			log.Warn("location classifier failed", slog.String("handle", handle), slog.Any("error", err))
		} else {
			p.CountryConfidence = blendVerdict(p.CountryConfidence, v)
			p.ClassifierReason = strings.TrimSpace(v.Reason)
		}
	}
	p.IsLikelyUS = p.CountryConfidence >= s.Threshold
	return &p
}

func (s *Screener) classify(ctx context.Context, p ProfileSummary, raw map[string]any) (classifierVerdict, error) {
	if s.ClassifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ClassifierTimeout)
		defer cancel()
	}
	addr := ""
	if m := businessAddress(raw); m != nil {
		addr = fmt.Sprintf("%s, %s, %s", rawString(m, "street_address"), rawString(m, "city_name"), rawString(m, "country_code"))
	}
	prompt := fmt.Sprintf(classifierUserPrompt,
		p.Handle,
		p.FullName,
		engine.TruncateRunes(profileBio(raw), 600, "..."),
		rawString(raw, "category_name", "business_category_name", "category"),
		addr,
		rawString(raw, "external_url"),
	)
	text, err := s.Classifier.Complete(ctx, classifierSystemPrompt, prompt)
	if err != nil {
		return classifierVerdict{}, err
	}
	return engine.DecodeJSONObject[classifierVerdict](text)
}

// blendVerdict folds a classifier verdict into the heuristic confidence.
func blendVerdict(heuristic float64, v classifierVerdict) float64 {
	c := parseConfidence(v.Confidence)
	if truthy(v.IsUSBased) {
		return clamp01(max(heuristic, max(0.8, c)))
	}
	return clamp01(min(heuristic, min(0.2, c)))
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true
		}
	}
	return false
}

// summarizeProfile extracts identity fields from a raw profile payload.
func summarizeProfile(handle string, raw map[string]any) ProfileSummary {
	if u, ok := NormalizeHandle(rawString(raw, "username"), ""); ok {
		handle = u
	}
	return ProfileSummary{
		Handle:        handle,
		UserID:        rawString(raw, "pk", "id", "pk_id", "user_id"),
		FullName:      rawString(raw, "full_name"),
		IsPrivate:     rawBool(raw, "is_private"),
		FollowerCount: rawInt(raw, "follower_count", "edge_followed_by.count", "followers_count"),
		Raw:           raw,
	}
}
