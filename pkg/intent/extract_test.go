package intent

import (
	"testing"

	"github.com/geochat-ai/geochat/pkg/geo"
)

func TestExtractDirections(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		origin   string
		dest     string
		mode     string
	}{
		{
			name:    "Directions from A to B",
			message: "directions from times square to central park",
			origin:  "times square",
			dest:    "central",
			mode:    ModeDriving,
		},
		{
			name:    "How do I get",
			message: "How do I get from Boston to Cambridge",
			origin:  "boston",
			dest:    "cambridge",
			mode:    ModeDriving,
		},
		{
			name:    "Route with walking mode",
			message: "route from home to work walking",
			origin:  "home",
			dest:    "work",
			mode:    ModeWalking,
		},
		{
			name:    "Navigate with transit keyword",
			message: "navigate from airport to downtown by subway",
			origin:  "airport",
			dest:    "downtown",
			mode:    ModeTransit,
		},
		{
			name:    "Bike mode",
			message: "directions from a to b by bike",
			origin:  "a",
			dest:    "b",
			mode:    ModeBicycling,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.message, nil)
			if got.Kind != KindDirections {
				t.Fatalf("Kind = %s, want %s", got.Kind, KindDirections)
			}
			d := got.Directions
			if d.Origin != tc.origin {
				t.Errorf("Origin = %q, want %q", d.Origin, tc.origin)
			}
			if d.Destination != tc.dest {
				t.Errorf("Destination = %q, want %q", d.Destination, tc.dest)
			}
			if d.TravelMode != tc.mode {
				t.Errorf("TravelMode = %q, want %q", d.TravelMode, tc.mode)
			}
		})
	}
}

func TestExtractGeocode(t *testing.T) {
	tests := []struct {
		name    string
		message string
		address string
	}{
		{
			name:    "Address of",
			message: "what is the address of the empire state building",
			address: "the empire state building",
		},
		{
			name:    "Coordinates for",
			message: "coordinates for big ben?",
			address: "big ben",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.message, nil)
			if got.Kind != KindGeocode {
				t.Fatalf("Kind = %s, want %s", got.Kind, KindGeocode)
			}
			if got.Geocode.Address != tc.address {
				t.Errorf("Address = %q, want %q", got.Geocode.Address, tc.address)
			}
		})
	}
}

func TestExtractSearchPlaces(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		caller   *geo.Location
		query    string
		location string
		radius   int
	}{
		{
			name:     "Query with near clause",
			message:  "Find coffee shops near Times Square",
			query:    "coffee shops",
			location: "times square",
			radius:   DefaultRadiusMeters,
		},
		{
			name:     "Pure stopwords default to places",
			message:  "find near me",
			query:    DefaultQuery,
			location: "me",
			radius:   DefaultRadiusMeters,
		},
		{
			name:     "Action phrase stripped",
			message:  "show me restaurants around downtown",
			query:    "restaurants",
			location: "downtown",
			radius:   DefaultRadiusMeters,
		},
		{
			name:     "Trailing punctuation trimmed from location",
			message:  "pizza in Rome!",
			query:    "pizza",
			location: "rome",
			radius:   DefaultRadiusMeters,
		},
		{
			name:     "Raw coordinate pair",
			message:  "gas stations 40.7128,-74.0060",
			query:    "gas stations 40.7128,-74.0060",
			location: "40.7128,-74.0060",
			radius:   DefaultRadiusMeters,
		},
		{
			name:     "Caller location fallback",
			message:  "hotels",
			caller:   &geo.Location{Lat: 51.5, Lng: -0.12},
			query:    "hotels",
			location: "51.5,-0.12",
			radius:   DefaultRadiusMeters,
		},
		{
			name:     "No location at all",
			message:  "bookstores",
			query:    "bookstores",
			location: "",
			radius:   DefaultRadiusMeters,
		},
		{
			name:     "Radius in km",
			message:  "restaurants within 2 km",
			query:    "restaurants within 2 km",
			location: "",
			radius:   2000,
		},
		{
			name:     "Radius capped",
			message:  "restaurants within 999 km",
			query:    "restaurants within 999 km",
			location: "",
			radius:   MaxRadiusMeters,
		},
		{
			name:     "Mile radius",
			message:  "cafes 3 mile radius",
			query:    "cafes 3 mile radius",
			location: "",
			radius:   4827,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.message, tc.caller)
			if got.Kind != KindSearchPlaces {
				t.Fatalf("Kind = %s, want %s", got.Kind, KindSearchPlaces)
			}
			s := got.Search
			if s.Query != tc.query {
				t.Errorf("Query = %q, want %q", s.Query, tc.query)
			}
			if s.Location != tc.location {
				t.Errorf("Location = %q, want %q", s.Location, tc.location)
			}
			if s.RadiusMeters != tc.radius {
				t.Errorf("RadiusMeters = %d, want %d", s.RadiusMeters, tc.radius)
			}
			if s.MaxResults != DefaultMaxResults {
				t.Errorf("MaxResults = %d, want %d", s.MaxResults, DefaultMaxResults)
			}
		})
	}
}

// The step ordering decides ambiguous messages: directions beat geocode,
// geocode beats search.
func TestExtractPriorityOrdering(t *testing.T) {
	t.Run("Directions win over near clause", func(t *testing.T) {
		got := Extract("directions from the cafe near me to the address of my office", nil)
		if got.Kind != KindDirections {
			t.Errorf("Kind = %s, want %s", got.Kind, KindDirections)
		}
	})

	t.Run("Geocode wins over near clause", func(t *testing.T) {
		got := Extract("address of the cafe near the park", nil)
		if got.Kind != KindGeocode {
			t.Errorf("Kind = %s, want %s", got.Kind, KindGeocode)
		}
	})

	t.Run("Travel mode keywords alone do not trigger directions", func(t *testing.T) {
		got := Extract("walking trails near portland", nil)
		if got.Kind != KindSearchPlaces {
			t.Errorf("Kind = %s, want %s", got.Kind, KindSearchPlaces)
		}
	})
}

// Extraction is total: any input yields exactly one populated variant.
func TestExtractTotality(t *testing.T) {
	inputs := []string{"", "???", "   ", "zzzzz qqqq"}
	for _, in := range inputs {
		got := Extract(in, nil)
		if got.Kind != KindSearchPlaces || got.Search == nil {
			t.Errorf("Extract(%q) did not fall back to search", in)
		}
		if got.Search.Query == "" {
			t.Errorf("Extract(%q) produced empty query", in)
		}
	}
}

func TestExtractRadiusIdempotent(t *testing.T) {
	msg := "restaurants within 999 km"
	first := Extract(msg, nil).Search.RadiusMeters
	second := Extract(msg, nil).Search.RadiusMeters
	if first != second {
		t.Errorf("radius extraction not deterministic: %d vs %d", first, second)
	}
	if first != MaxRadiusMeters {
		t.Errorf("radius = %d, want cap %d", first, MaxRadiusMeters)
	}
}

func TestHasLocationIntent(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"find coffee near brooklyn", true},
		{"how to get to the airport", true},
		{"address of the empire state building", true},
		{"any good restaurant around here?", true},
		{"WHERE IS THE NEAREST GAS STATION", true},
		{"tell me a joke about penguins", false},
		{"what is the capital of france", false},
		{"help me write a poem", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasLocationIntent(tt.message); got != tt.want {
			t.Errorf("HasLocationIntent(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
