// Package intent turns free-form natural-language text into a structured
// map-service request. The vocabulary is deliberately small and regular:
// messages outside it fall through to a default place search. Extraction
// is pure computation and never fails.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/geochat-ai/geochat/pkg/geo"
)

// Kind discriminates the intent variants.
type Kind string

const (
	KindSearchPlaces Kind = "search_places"
	KindDirections   Kind = "get_directions"
	KindGeocode      Kind = "geocode"
)

// Travel modes accepted by the directions backend.
const (
	ModeDriving   = "driving"
	ModeWalking   = "walking"
	ModeBicycling = "bicycling"
	ModeTransit   = "transit"
)

const (
	// DefaultRadiusMeters applies when the message names no distance.
	DefaultRadiusMeters = 5000
	// MaxRadiusMeters caps any extracted radius.
	MaxRadiusMeters = 50000
	// DefaultMaxResults bounds place searches.
	DefaultMaxResults = 10
	// DefaultQuery is used when nothing remains after trimming.
	DefaultQuery = "places"
)

// SearchPlaces asks for places matching a query, optionally near a location.
type SearchPlaces struct {
	Query        string
	Location     string // free text or "lat,lng"; empty when unknown
	RadiusMeters int
	PlaceType    string
	MaxResults   int
}

// Directions asks for a route between two endpoints.
type Directions struct {
	Origin      string
	Destination string
	TravelMode  string
}

// Geocode asks for the coordinates of an address.
type Geocode struct {
	Address string
}

// Intent is a tagged variant: exactly one of the payload fields matching
// Kind is non-nil.
type Intent struct {
	Kind       Kind
	Search     *SearchPlaces
	Directions *Directions
	Geocode    *Geocode
}

// Matching is priority-ordered: directions templates first, then geocode
// keywords, then the place-search default. The ordering decides ambiguous
// messages and is a tested contract.
var directionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`directions? (?:from |to )?(.+?) to (.+?)(?:\s|$)`),
	regexp.MustCompile(`how (?:do i|to) get (?:from )?(.+?) to (.+?)(?:\s|$)`),
	regexp.MustCompile(`route (?:from )?(.+?) to (.+?)(?:\s|$)`),
	regexp.MustCompile(`navigate (?:from )?(.+?) to (.+?)(?:\s|$)`),
}

var geocodePattern = regexp.MustCompile(`(?:address|coordinates) (?:of |for )?(.+?)(?:[.!?]*$|[.!?]+\s)`)

// Location prepositions in precedence order; first match wins.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bnear (.+)$`),
	regexp.MustCompile(`\baround (.+)$`),
	regexp.MustCompile(`\bclose to (.+)$`),
	regexp.MustCompile(`\bin (.+)$`),
	regexp.MustCompile(`\bat (.+)$`),
}

var coordPattern = regexp.MustCompile(`(-?\d+\.?\d*),\s*(-?\d+\.?\d*)`)

var trailingPunct = regexp.MustCompile(`[.!?]+$`)

// radiusPatterns are tried in order; the first match wins even when a
// later pattern would capture a longer unit ("within 2 mile" hits the
// meter pattern first).
var radiusPatterns = []struct {
	re    *regexp.Regexp
	scale int
}{
	{regexp.MustCompile(`within (\d+)\s*(?:km|kilometer)`), 1000},
	{regexp.MustCompile(`within (\d+)\s*(?:m|meter)`), 1},
	{regexp.MustCompile(`within (\d+)\s*(?:mile)`), 1609},
	{regexp.MustCompile(`(\d+)\s*(?:km|kilometer) radius`), 1000},
	{regexp.MustCompile(`(\d+)\s*(?:mile) radius`), 1609},
}

// Words that introduce a location clause; they end the query portion of
// the message. "close to" spans two words.
var locationWords = map[string]bool{
	"near": true, "around": true, "in": true, "at": true, "by": true,
}

// Leading verbs stripped from the query portion.
var actionWords = map[string]bool{
	"find": true, "search": true, "get": true, "where": true,
}

var actionPhrases = []string{"look for", "show me"}

// locationKeywords decide whether a message is about locations at all.
// Messages matching none of them never reach the map backend.
var locationKeywords = []string{
	"find", "search", "near", "nearby", "close to", "around",
	"restaurant", "cafe", "coffee", "food", "eat", "drink",
	"gas station", "hotel", "hospital", "bank", "store",
	"directions", "route", "how to get", "navigate",
	"address", "location", "coordinates", "map",
}

// HasLocationIntent reports whether the message asks about places,
// routes, or addresses. Plain substring match over a fixed vocabulary.
func HasLocationIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range locationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Extract classifies a message into exactly one intent. callerLocation,
// when present, is the fallback location for place searches. Extraction
// is total: unmatched messages become a default place search.
func Extract(message string, callerLocation *geo.Location) Intent {
	lower := strings.ToLower(message)

	// 1. Directions templates
	for _, re := range directionPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return Intent{
				Kind: KindDirections,
				Directions: &Directions{
					Origin:      strings.TrimSpace(m[1]),
					Destination: strings.TrimSpace(m[2]),
					TravelMode:  extractTravelMode(lower),
				},
			}
		}
	}

	// 2. Geocode keywords
	if strings.Contains(lower, "address") || strings.Contains(lower, "coordinates") {
		if m := geocodePattern.FindStringSubmatch(lower); m != nil {
			return Intent{
				Kind:    KindGeocode,
				Geocode: &Geocode{Address: strings.TrimSpace(m[1])},
			}
		}
	}

	// 3. Default: place search
	return Intent{
		Kind: KindSearchPlaces,
		Search: &SearchPlaces{
			Query:        extractQuery(message),
			Location:     extractLocation(lower, message, callerLocation),
			RadiusMeters: extractRadius(lower),
			MaxResults:   DefaultMaxResults,
		},
	}
}

// extractTravelMode scans the whole message for mode keywords,
// independent of which directions template matched.
func extractTravelMode(lower string) string {
	switch {
	case containsAny(lower, "walk", "walking", "on foot"):
		return ModeWalking
	case containsAny(lower, "bike", "bicycle", "cycling"):
		return ModeBicycling
	case containsAny(lower, "transit", "public transport", "subway", "bus"):
		return ModeTransit
	default:
		return ModeDriving
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// extractQuery takes the leading run of words up to the first location
// preposition, then strips leading action verbs. An empty remainder
// falls back to DefaultQuery.
func extractQuery(message string) string {
	words := strings.Fields(message)

	queryWords := make([]string, 0, len(words))
	for i, word := range words {
		w := strings.ToLower(trailingPunct.ReplaceAllString(word, ""))
		if locationWords[w] {
			break
		}
		// "close to" spans two words
		if w == "close" && i+1 < len(words) && strings.ToLower(words[i+1]) == "to" {
			break
		}
		queryWords = append(queryWords, word)
	}

	// Strip leading action verbs and two-word action phrases.
	for len(queryWords) > 0 {
		head := strings.ToLower(queryWords[0])
		if actionWords[head] {
			queryWords = queryWords[1:]
			continue
		}
		if len(queryWords) > 1 {
			bigram := head + " " + strings.ToLower(queryWords[1])
			if phraseIn(bigram, actionPhrases) {
				queryWords = queryWords[2:]
				continue
			}
		}
		break
	}

	query := trailingPunct.ReplaceAllString(strings.Join(queryWords, " "), "")
	if query == "" {
		return DefaultQuery
	}
	return query
}

func phraseIn(s string, phrases []string) bool {
	for _, p := range phrases {
		if s == p {
			return true
		}
	}
	return false
}

// extractLocation resolves the search location: preposition clause first,
// then a raw coordinate pair anywhere in the message, then the caller's
// own location. Returns "" when none apply.
func extractLocation(lower, original string, caller *geo.Location) string {
	for _, re := range locationPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			return strings.TrimSpace(trailingPunct.ReplaceAllString(m[1], ""))
		}
	}

	if m := coordPattern.FindStringSubmatch(original); m != nil {
		return m[1] + "," + m[2]
	}

	if caller != nil {
		return caller.String()
	}
	return ""
}

// extractRadius finds a distance clause and converts it to meters,
// capped at MaxRadiusMeters. Unparseable captures fall through to the
// next pattern.
func extractRadius(lower string) int {
	for _, rp := range radiusPatterns {
		m := rp.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		radius := n * rp.scale
		if radius > MaxRadiusMeters {
			return MaxRadiusMeters
		}
		return radius
	}
	return DefaultRadiusMeters
}
