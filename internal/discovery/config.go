package discovery

import "time"

// Config holds pipeline tunables. It is passed by value and never mutated,
// so concurrent runs may use different settings.
type Config struct {
	TargetDomain string // social domain handles must resolve to
	Platform     string

	AcceptThreshold   float64
	ClassifierTimeout time.Duration

	SearchEnabled     bool
	SearchResultLimit int
	SearchTimeout     time.Duration
	SearchConcurrency int

	MaxProfiles       int
	ScreenConcurrency int

	MediaPerProfile   int
	MediaConcurrency  int
	FetchDetails      bool
	DetailConcurrency int

	Transcripts           bool
	TranscriptConcurrency int
	TranscriptTimeout     time.Duration

	PerCreatorLimit int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TargetDomain:          "instagram.com",
		Platform:              "instagram",
		AcceptThreshold:       0.6,
		ClassifierTimeout:     20 * time.Second,
		SearchEnabled:         true,
		SearchResultLimit:     10,
		SearchTimeout:         15 * time.Second,
		SearchConcurrency:     2,
		MaxProfiles:           10,
		ScreenConcurrency:     2,
		MediaPerProfile:       6,
		MediaConcurrency:      2,
		FetchDetails:          false,
		DetailConcurrency:     2,
		Transcripts:           true,
		TranscriptConcurrency: 2,
		TranscriptTimeout:     30 * time.Second,
		PerCreatorLimit:       3,
	}
}

// RunOptions overrides Config for a single run. Zero values keep the Config default.
type RunOptions struct {
	SearchEnabled   *bool `json:"search_enabled,omitempty"`
	MaxProfiles     int   `json:"max_profiles,omitempty"`
	MediaPerProfile int   `json:"media_per_profile,omitempty"`
	Transcripts     *bool `json:"transcripts,omitempty"`
	FetchDetails    *bool `json:"fetch_details,omitempty"`
}

// apply returns a copy of c with the run overrides applied.
func (o RunOptions) apply(c Config) Config {
	if o.SearchEnabled != nil {
		c.SearchEnabled = *o.SearchEnabled
	}
	if o.MaxProfiles > 0 {
		c.MaxProfiles = o.MaxProfiles
	}
	if o.MediaPerProfile > 0 {
		c.MediaPerProfile = o.MediaPerProfile
	}
	if o.Transcripts != nil {
		c.Transcripts = *o.Transcripts
	}
	if o.FetchDetails != nil {
		c.FetchDetails = *o.FetchDetails
	}
	return c
}

// MediaOptions controls FetchMedia.
type MediaOptions struct {
	AmountPerProfile  int
	ProfilesLimit     int // 0 = all profiles
	Concurrency       int
	FetchDetails      bool
	DetailConcurrency int
}
