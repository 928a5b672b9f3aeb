package discovery

// Handle sources.
const (
	SourceModel        = "model"
	SourceSearchEngine = "search-engine"
)

// KeywordExpansionResult is produced once per run by Expand and not modified afterwards.
type KeywordExpansionResult struct {
	SeedKeyword      string            `json:"seed_keyword"`
	OriginalKeyword  string            `json:"original_keyword,omitempty"`
	EnrichedQueries  []string          `json:"enriched_queries"`
	Hashtags         []string          `json:"hashtags"`
	CandidateHandles []CandidateHandle `json:"candidate_handles"`
}

// CandidateHandle is a creator account proposed by expansion or harvesting.
// Handle is lowercase without a leading '@'.
type CandidateHandle struct {
	Handle     string  `json:"handle"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	Source     string  `json:"source"`
}

// ProfileSummary is the screened view of one creator profile.
type ProfileSummary struct {
	Handle            string         `json:"handle"`
	UserID            string         `json:"user_id,omitempty"`
	FullName          string         `json:"full_name,omitempty"`
	IsPrivate         bool           `json:"is_private"`
	FollowerCount     *int64         `json:"follower_count,omitempty"`
	LocationHints     []string       `json:"location_hints,omitempty"`
	CountryConfidence float64        `json:"country_confidence"`
	IsLikelyUS        bool           `json:"is_likely_us"`
	ClassifierReason  string         `json:"classifier_reason,omitempty"`
	Raw               map[string]any `json:"-"`
}

// Key identifies the creator: user id when known, handle otherwise.
func (p ProfileSummary) Key() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.Handle
}

// MediaItem is one short-form video post. Owner is a value copy.
type MediaItem struct {
	ID              string         `json:"id"`
	Shortcode       string         `json:"shortcode"`
	URL             string         `json:"url"`
	Caption         string         `json:"caption,omitempty"`
	TakenAt         int64          `json:"taken_at"`
	ViewCount       *int64         `json:"view_count,omitempty"`
	PlayCount       *int64         `json:"play_count,omitempty"`
	LikeCount       *int64         `json:"like_count,omitempty"`
	DurationSeconds *float64       `json:"duration_seconds,omitempty"`
	Transcript      *string        `json:"transcript"`
	Thumbnail       string         `json:"thumbnail,omitempty"`
	Owner           ProfileSummary `json:"owner"`
}

// ScoredMediaItem is a MediaItem with its relevance score.
type ScoredMediaItem struct {
	MediaItem
	RelevanceScore     float64  `json:"relevance_score"`
	LocationConfidence float64  `json:"location_confidence"`
	MatchedTerms       []string `json:"matched_terms"`
}

// CreatorAggregate groups the top scored items of one creator.
type CreatorAggregate struct {
	ID    string            `json:"id"`
	Owner ProfileSummary    `json:"owner"`
	Items []ScoredMediaItem `json:"items"`
}

// ReelSummary is one media entry of a NormalizedCreator.
type ReelSummary struct {
	ID              string   `json:"id"`
	Shortcode       string   `json:"shortcode"`
	URL             string   `json:"url"`
	Caption         string   `json:"caption,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	TakenAt         int64    `json:"taken_at"`
	ViewCount       *int64   `json:"view_count,omitempty"`
	PlayCount       *int64   `json:"play_count,omitempty"`
	LikeCount       *int64   `json:"like_count,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	HasTranscript   bool     `json:"has_transcript"`
	RelevanceScore  float64  `json:"relevance_score"`
	MatchedTerms    []string `json:"matched_terms"`
	Snippet         string   `json:"snippet,omitempty"`
}

// CreatorMetadata carries the scoring context of a NormalizedCreator.
type CreatorMetadata struct {
	Keyword            string   `json:"keyword"`
	MatchedTerms       []string `json:"matched_terms"`
	RelevanceScore     float64  `json:"relevance_score"`
	LocationConfidence float64  `json:"location_confidence"`
	IsLikelyUS         bool     `json:"is_likely_us"`
	LocationHints      []string `json:"location_hints,omitempty"`
}

// NormalizedCreator is the denormalized record handed to callers.
type NormalizedCreator struct {
	ID            string          `json:"id"`
	Platform      string          `json:"platform"`
	Handle        string          `json:"handle"`
	FullName      string          `json:"full_name,omitempty"`
	ProfileURL    string          `json:"profile_url"`
	AvatarURL     string          `json:"avatar_url,omitempty"`
	Bio           string          `json:"bio,omitempty"`
	Emails        []string        `json:"emails,omitempty"`
	FollowerCount *int64          `json:"follower_count,omitempty"`
	TopItem       ReelSummary     `json:"top_item"`
	TopReels      []ReelSummary   `json:"top_reels"`
	Metadata      CreatorMetadata `json:"metadata"`
}
