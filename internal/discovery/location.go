package discovery

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	weightBioKeyword      = 0.25
	weightBusinessAddress = 0.4
	weightCategory        = 0.1
	weightUSDomain        = 0.15
	penaltyLowFollowers   = 0.05
	lowFollowerThreshold  = 500
)

var usPlaces = []string{
	// states
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado", "connecticut",
	"delaware", "florida", "georgia", "hawaii", "idaho", "illinois", "indiana", "iowa",
	"kansas", "kentucky", "louisiana", "maine", "maryland", "massachusetts", "michigan",
	"minnesota", "mississippi", "missouri", "montana", "nebraska", "nevada",
	"new hampshire", "new jersey", "new mexico", "new york", "north carolina",
	"north dakota", "ohio", "oklahoma", "oregon", "pennsylvania", "rhode island",
	"south carolina", "south dakota", "tennessee", "texas", "utah", "vermont", "virginia",
	"washington", "west virginia", "wisconsin", "wyoming",
	// cities
	"los angeles", "san francisco", "san diego", "san jose", "seattle", "portland",
	"las vegas", "phoenix", "denver", "austin", "dallas", "houston", "san antonio",
	"chicago", "detroit", "minneapolis", "nashville", "atlanta", "miami", "orlando",
	"tampa", "charlotte", "boston", "philadelphia", "pittsburgh", "brooklyn", "manhattan",
	"nyc", "baltimore", "new orleans", "salt lake city", "honolulu", "sacramento",
	"oakland", "st. louis", "kansas city", "indianapolis", "columbus", "cleveland",
	"milwaukee", "raleigh", "washington dc", "washington d.c.", "d.c.",
	// country
	"usa", "united states", "u.s.a.", "u.s.",
}

// usPlaceRe matches the first US place name bounded by non-alphanumerics.
// Longer names come first so "washington dc" wins over "washington".
var usPlaceRe = func() *regexp.Regexp {
	names := append([]string(nil), usPlaces...)
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(quoted, "|") + `)(?:$|[^\p{L}\p{N}])`)
}()

var (
	usAddressRe  = regexp.MustCompile(`(?i)\b(united states|usa|us)\b`)
	usCategoryRe = regexp.MustCompile(`(?i)\b(american|usa|u\.s\.|united states|us-based)\b`)
)

// locationEvidence is the heuristic view of a raw profile payload.
type locationEvidence struct {
	Confidence float64
	Hints      []string
}

// scoreLocation computes the heuristic US confidence of a raw profile, clamped to [0,1].
func scoreLocation(raw map[string]any) locationEvidence {
	var ev locationEvidence
	score := 0.0

	if m := usPlaceRe.FindStringSubmatch(profileBio(raw)); m != nil {
		score += weightBioKeyword
		ev.Hints = append(ev.Hints, "bio:"+strings.ToLower(m[1]))
	}

	if addr := businessAddress(raw); addr != nil {
		for _, key := range []string{"country_code", "city_name", "street_address"} {
			if v := rawString(addr, key); v != "" && usAddressRe.MatchString(v) {
				score += weightBusinessAddress
				ev.Hints = append(ev.Hints, "address:"+strings.ToLower(v))
				break
			}
		}
	}

	if cat := rawString(raw, "category_name", "business_category_name", "category"); cat != "" && usCategoryRe.MatchString(cat) {
		score += weightCategory
		ev.Hints = append(ev.Hints, "category:"+strings.ToLower(cat))
	}

	if host := externalHost(raw); host != "" {
		if suffix, _ := publicsuffix.PublicSuffix(host); suffix == "us" || strings.HasSuffix(suffix, ".us") {
			score += weightUSDomain
			ev.Hints = append(ev.Hints, "domain:"+host)
		}
	}

	if followers := rawInt(raw, "follower_count", "edge_followed_by.count", "followers_count"); followers != nil && *followers < lowFollowerThreshold {
		score -= penaltyLowFollowers
	}

	ev.Confidence = clamp01(score)
	return ev
}

func profileBio(raw map[string]any) string {
	return rawString(raw, "biography", "bio")
}

// businessAddress parses business_address_json, which upstreams send either as
// an encoded JSON string or as an object.
func businessAddress(raw map[string]any) map[string]any {
	v, ok := lookupPath(raw, "business_address_json")
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		return t
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(t), &m); err != nil {
			return nil
		}
		return m
	}
	return nil
}

func externalHost(raw map[string]any) string {
	s := rawString(raw, "external_url", "bio_links.0.url")
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
