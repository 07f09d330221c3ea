package llm

import (
	"fmt"
	"strings"

	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/intent"
)

// maxPromptPlaces caps how many places the digest describes.
const maxPromptPlaces = 8

const systemPreamble = `You are a helpful assistant with access to Google Maps. When users ask about:
- Finding places (restaurants, coffee shops, gas stations, etc.)
- Getting directions between locations
- Location information or addresses

You should use the available Google Maps functions to provide accurate, real-time information.

Always format your responses with:
1. A brief introduction
2. The search results with details
3. Helpful suggestions or additional information

When displaying places, include:
- Name and address
- Ratings if available
- Whether it's open/closed
- Direct Google Maps links

Be conversational and helpful!`

// ComposePrompt builds the text sent to the model: the fixed preamble,
// the user's message, and, when map data is present, a readable digest
// of it. Pure string construction.
func ComposePrompt(message string, data *gmaps.MapData) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nUser: ")
	b.WriteString(message)
	b.WriteString("\n\n")

	if data != nil {
		switch data.Kind {
		case intent.KindSearchPlaces:
			if data.Search != nil {
				writePlacesDigest(&b, data.Search)
			}
		case intent.KindDirections:
			if data.Directions != nil {
				writeRouteDigest(&b, data.Directions)
			}
		case intent.KindGeocode:
			if data.Geocode != nil {
				writeGeocodeDigest(&b, data.Geocode)
			}
		}
	}

	b.WriteString("\nAssistant: ")
	return b.String()
}

func writePlacesDigest(b *strings.Builder, result *gmaps.SearchResult) {
	fmt.Fprintf(b, "I found %d places for your query:\n\n", len(result.Places))

	places := result.Places
	if len(places) > maxPromptPlaces {
		places = places[:maxPromptPlaces]
	}
	for i, p := range places {
		fmt.Fprintf(b, "%d. **%s**\n", i+1, p.Name)
		if p.Address != "" {
			fmt.Fprintf(b, "   Address: %s\n", p.Address)
		}
		if p.Rating > 0 {
			fmt.Fprintf(b, "   Rating: %.1f", p.Rating)
			if p.UserRatingsTotal > 0 {
				fmt.Fprintf(b, " (%d reviews)", p.UserRatingsTotal)
			}
			b.WriteString("\n")
		}
		if p.PriceLevel > 0 {
			fmt.Fprintf(b, "   Price: %s\n", strings.Repeat("$", p.PriceLevel))
		}
		if p.IsOpen != nil {
			status := "Open"
			if !*p.IsOpen {
				status = "Closed"
			}
			fmt.Fprintf(b, "   Status: %s\n", status)
		}
		if link := gmaps.PlaceLink(p.PlaceID); link != "" {
			fmt.Fprintf(b, "   Google Maps: %s\n", link)
		}
		b.WriteString("\n")
	}
}

func writeRouteDigest(b *strings.Builder, result *gmaps.DirectionsResult) {
	if len(result.Routes) == 0 {
		return
	}
	route := result.Routes[0]

	fmt.Fprintf(b, "I found directions from %s to %s:\n\n", result.Origin, result.Destination)
	fmt.Fprintf(b, "Distance: %s | Duration: %s\n\n", route.Distance, route.Duration)
	b.WriteString("Key directions:\n")
	for i, step := range route.Steps {
		fmt.Fprintf(b, "%d. %s (%s)\n", i+1, step.Instruction, step.Distance)
	}
	if route.StepsOmitted > 0 {
		fmt.Fprintf(b, "... and %d more steps\n", route.StepsOmitted)
	}
}

func writeGeocodeDigest(b *strings.Builder, result *gmaps.GeocodedAddress) {
	fmt.Fprintf(b, "I looked up %q:\n\n", result.Query)
	fmt.Fprintf(b, "Address: %s\n", result.FormattedAddress)
	fmt.Fprintf(b, "Coordinates: %s\n", result.Location.String())
}
