package llm

import (
	"strings"
	"testing"

	"github.com/geochat-ai/geochat/pkg/geo"
	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/intent"
)

func TestComposePromptNoMapData(t *testing.T) {
	prompt := ComposePrompt("hello there", nil)

	if !strings.Contains(prompt, "User: hello there") {
		t.Error("prompt should contain the user message")
	}
	if !strings.HasSuffix(prompt, "Assistant: ") {
		t.Error("prompt should end with the assistant cue")
	}
	if !strings.Contains(prompt, "Google Maps") {
		t.Error("prompt should carry the system preamble")
	}
}

func TestComposePromptPlaces(t *testing.T) {
	open := true
	data := &gmaps.MapData{
		Kind: intent.KindSearchPlaces,
		Search: &gmaps.SearchResult{
			Query: "coffee",
			Places: []geo.Place{
				{
					Name:             "Joe's Coffee",
					PlaceID:          "place-1",
					Address:          "123 Broadway",
					Rating:           4.5,
					UserRatingsTotal: 320,
					PriceLevel:       2,
					IsOpen:           &open,
				},
				{Name: "Plain Spot"},
			},
		},
	}

	prompt := ComposePrompt("find coffee", data)

	for _, want := range []string{
		"I found 2 places",
		"1. **Joe's Coffee**",
		"Address: 123 Broadway",
		"Rating: 4.5 (320 reviews)",
		"Price: $$",
		"Status: Open",
		"place_id:place-1",
		"2. **Plain Spot**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}
}

func TestComposePromptPlacesCap(t *testing.T) {
	places := make([]geo.Place, 10)
	for i := range places {
		places[i] = geo.Place{Name: "p"}
	}
	data := &gmaps.MapData{
		Kind:   intent.KindSearchPlaces,
		Search: &gmaps.SearchResult{Places: places},
	}

	prompt := ComposePrompt("find stuff", data)

	if strings.Contains(prompt, "9. **") {
		t.Error("digest should stop at 8 places")
	}
	if !strings.Contains(prompt, "8. **") {
		t.Error("digest should include the 8th place")
	}
	if !strings.Contains(prompt, "I found 10 places") {
		t.Error("count should reflect the full result list")
	}
}

func TestComposePromptRoute(t *testing.T) {
	data := &gmaps.MapData{
		Kind: intent.KindDirections,
		Directions: &gmaps.DirectionsResult{
			Origin:      "brooklyn",
			Destination: "manhattan",
			Routes: []geo.Route{{
				Distance: "11 km",
				Duration: "25 mins",
				Steps: []geo.Step{
					{Instruction: "Head north", Distance: "500 m"},
					{Instruction: "Take the bridge", Distance: "2 km"},
				},
				StepsOmitted: 7,
			}},
		},
	}

	prompt := ComposePrompt("directions brooklyn to manhattan", data)

	for _, want := range []string{
		"directions from brooklyn to manhattan",
		"Distance: 11 km | Duration: 25 mins",
		"1. Head north (500 m)",
		"2. Take the bridge (2 km)",
		"... and 7 more steps",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComposePromptGeocode(t *testing.T) {
	data := &gmaps.MapData{
		Kind: intent.KindGeocode,
		Geocode: &gmaps.GeocodedAddress{
			Query:            "empire state building",
			FormattedAddress: "350 5th Ave, New York, NY 10118",
			Location:         geo.Location{Lat: 40.7484, Lng: -73.9857},
		},
	}

	prompt := ComposePrompt("address of empire state building", data)

	if !strings.Contains(prompt, "350 5th Ave") {
		t.Error("prompt should contain the formatted address")
	}
	if !strings.Contains(prompt, "40.7484,-73.9857") {
		t.Error("prompt should contain the coordinates")
	}
}
