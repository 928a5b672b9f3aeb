package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/engine"
)

const captionPreviewLen = 100

// headers defines the CSV column order.
var headers = []string{
	"Reel URL",
	"Creator Username",
	"Creator Full Name",
	"Follower Count",
	"Video Duration",
	"Views",
	"Plays",
	"Likes",
	"Relevance",
	"Location Confidence",
	"Caption Preview",
	"Posted Date",
	"Emails",
	"Thumbnail URL",
}

// WriteCSV writes one row per reel (top item first, then supplementary reels)
// for every creator, in creator order.
func WriteCSV(w io.Writer, creators []discovery.NormalizedCreator) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range creators {
		reels := append([]discovery.ReelSummary{c.TopItem}, c.TopReels...)
		for _, r := range reels {
			if err := cw.Write(reelRow(c, r)); err != nil {
				return fmt.Errorf("write csv row %s: %w", r.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders creators as a CSV document.
func CSV(creators []discovery.NormalizedCreator) (string, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, creators); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func reelRow(c discovery.NormalizedCreator, r discovery.ReelSummary) []string {
	return []string{
		r.URL,
		c.Handle,
		c.FullName,
		FormatCount(c.FollowerCount),
		FormatDuration(r.DurationSeconds),
		FormatCount(r.ViewCount),
		FormatCount(r.PlayCount),
		FormatCount(r.LikeCount),
		strconv.FormatFloat(r.RelevanceScore, 'f', 3, 64),
		strconv.FormatFloat(c.Metadata.LocationConfidence, 'f', 2, 64),
		CaptionPreview(r.Caption),
		FormatPosted(r.TakenAt),
		strings.Join(c.Emails, "; "),
		r.Thumbnail,
	}
}

// FormatCount renders n with K/M suffixes; nil renders empty.
func FormatCount(n *int64) string {
	if n == nil {
		return ""
	}
	v := *n
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1_000)
	}
	return strconv.FormatInt(v, 10)
}

// FormatDuration renders seconds as M:SS; nil renders empty.
func FormatDuration(seconds *float64) string {
	if seconds == nil || *seconds < 0 {
		return ""
	}
	total := int(*seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// CaptionPreview truncates caption to 100 runes on one line.
func CaptionPreview(caption string) string {
	caption = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(caption)
	return strings.TrimSpace(engine.TruncateRunes(caption, captionPreviewLen, "..."))
}

// FormatPosted renders a unix timestamp as UTC "2006-01-02 15:04"; zero renders empty.
func FormatPosted(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
