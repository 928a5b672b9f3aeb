package discovery

import (
	"context"
	"log/slog"
	"strings"
)

// MediaFetcher lists recent media of accepted profiles.
type MediaFetcher struct {
	Media   MediaLister
	Details MediaDetailer // nil disables detail backfill
	Domain  string
	Logger  *slog.Logger
}

// FetchMedia returns the normalized media of profiles, in profile order.
// Items seen twice (same id or shortcode) are kept once.
func (f *MediaFetcher) FetchMedia(ctx context.Context, profiles []ProfileSummary, opts MediaOptions) []MediaItem {
	log := loggerOr(f.Logger)
	if opts.ProfilesLimit > 0 && len(profiles) > opts.ProfilesLimit {
		profiles = profiles[:opts.ProfilesLimit]
	}

	batches := make([][]MediaItem, len(profiles))
	_ = runPool(ctx, profiles, opts.Concurrency, func(ctx context.Context, i int, p ProfileSummary) {
		batches[i] = f.fetchProfileMedia(ctx, log, p, opts.AmountPerProfile)
	})

	seen := make(map[string]bool)
	var items []MediaItem
	for _, batch := range batches {
		for _, it := range batch {
			key := it.Shortcode
			if key == "" {
				key = it.ID
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, it)
		}
	}

	if opts.FetchDetails && f.Details != nil {
		f.backfillDetails(ctx, log, items, opts.DetailConcurrency)
	}

	log.Info("media fetched", slog.Int("profiles", len(profiles)), slog.Int("items", len(items)))
	return items
}

func (f *MediaFetcher) fetchProfileMedia(ctx context.Context, log *slog.Logger, p ProfileSummary, amount int) []MediaItem {
	raws, err := f.Media.ListMedia(ctx, ProfileRef{UserID: p.UserID, Handle: p.Handle}, amount)
	if err != nil {
		log.Warn("media list failed", slog.String("handle", p.Handle), slog.Any("error", err))
		return nil
	}
	var out []MediaItem
	for _, raw := range raws {
		it, ok := normalizeMedia(raw, f.Domain)
		if !ok {
			continue
		}
		it.Owner = p
		out = append(out, it)
		if amount > 0 && len(out) >= amount {
			break
		}
	}
	return out
}

// backfillDetails fills missing caption, view count and canonical URL in place.
// Each worker writes only its own element.
func (f *MediaFetcher) backfillDetails(ctx context.Context, log *slog.Logger, items []MediaItem, concurrency int) {
	_ = runPool(ctx, items, concurrency, func(ctx context.Context, i int, it MediaItem) {
		if it.Shortcode == "" {
			return
		}
		raw, err := f.Details.FetchMediaDetail(ctx, it.Shortcode)
		if err != nil {
			log.Warn("media detail failed", slog.String("shortcode", it.Shortcode), slog.Any("error", err))
			return
		}
		if raw == nil {
			return
		}
		detail, ok := normalizeMedia(raw, f.Domain)
		if !ok {
			return
		}
		mergeDetail(&items[i], detail)
	})
}

func mergeDetail(dst *MediaItem, d MediaItem) {
	if dst.Caption == "" {
		dst.Caption = d.Caption
	}
	if dst.ViewCount == nil {
		dst.ViewCount = d.ViewCount
	}
	if dst.PlayCount == nil {
		dst.PlayCount = d.PlayCount
	}
	if dst.LikeCount == nil {
		dst.LikeCount = d.LikeCount
	}
	if dst.DurationSeconds == nil {
		dst.DurationSeconds = d.DurationSeconds
	}
	if dst.Thumbnail == "" {
		dst.Thumbnail = d.Thumbnail
	}
	if dst.TakenAt == 0 {
		dst.TakenAt = d.TakenAt
	}
	if d.URL != "" {
		dst.URL = d.URL
	}
}

// normalizeMedia maps one raw post payload to a MediaItem without owner.
// Payloads wrapped in "media", "node" or "items[0]" are unwrapped.
func normalizeMedia(raw map[string]any, domain string) (MediaItem, bool) {
	raw = unwrapMedia(raw)
	if raw == nil {
		return MediaItem{}, false
	}
	it := MediaItem{
		ID:              rawString(raw, "id", "pk", "media_id"),
		Shortcode:       rawString(raw, "code", "shortcode"),
		Caption:         rawString(raw, "caption.text", "caption", "edge_media_to_caption.edges.0.node.text"),
		ViewCount:       rawInt(raw, "view_count", "video_view_count", "ig_play_count"),
		PlayCount:       rawInt(raw, "play_count", "video_play_count", "ig_play_count"),
		LikeCount:       rawInt(raw, "like_count", "edge_liked_by.count", "edge_media_preview_like.count"),
		DurationSeconds: rawFloat(raw, "video_duration", "duration"),
		Thumbnail:       rawString(raw, "thumbnail_url", "image_versions2.candidates.0.url", "display_url", "thumbnail_src"),
	}
	if it.ID == "" && it.Shortcode == "" {
		return MediaItem{}, false
	}
	if it.ID == "" {
		it.ID = it.Shortcode
	}
	if ts := rawInt(raw, "taken_at", "taken_at_timestamp"); ts != nil {
		it.TakenAt = *ts
	}
	if it.Shortcode != "" {
		it.URL = reelURL(domain, it.Shortcode)
	} else {
		it.URL = rawString(raw, "permalink", "url")
	}
	return it, true
}

func unwrapMedia(raw map[string]any) map[string]any {
	for depth := 0; raw != nil && depth < 3; depth++ {
		switch {
		case rawMap(raw, "media") != nil:
			raw = rawMap(raw, "media")
		case rawMap(raw, "node") != nil:
			raw = rawMap(raw, "node")
		case rawMap(raw, "items.0") != nil:
			raw = rawMap(raw, "items.0")
		default:
			return raw
		}
	}
	return raw
}

func reelURL(domain, shortcode string) string {
	return "https://www." + strings.TrimPrefix(domain, "www.") + "/reel/" + shortcode + "/"
}

func profileURL(domain, handle string) string {
	return "https://www." + strings.TrimPrefix(domain, "www.") + "/" + handle + "/"
}
