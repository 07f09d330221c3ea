package gmaps

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/geochat-ai/geochat/pkg/geo"
)

// MaxRoutes caps the alternative routes kept per directions query.
const MaxRoutes = 3

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// normalizePlaces converts raw place records into canonical Places.
// Records missing a name or coordinates are skipped rather than
// failing the whole list. When origin is set, each place is annotated
// with its straight-line distance from it.
func normalizePlaces(results []PlaceResult, origin *geo.Location, maxResults int) []geo.Place {
	places := make([]geo.Place, 0, len(results))
	for _, r := range results {
		if len(places) >= maxResults {
			break
		}
		if r.Name == "" || r.Geometry == nil || r.Geometry.Location == nil {
			continue
		}

		p := geo.Place{
			Name:             r.Name,
			PlaceID:          r.PlaceID,
			Address:          placeAddress(r),
			Location:         geo.Location{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
			Types:            r.Types,
			Phone:            r.Phone,
			Website:          r.Website,
		}
		if r.PriceLevel != nil {
			p.PriceLevel = *r.PriceLevel
		}
		if r.OpeningHours != nil && r.OpeningHours.OpenNow != nil {
			open := *r.OpeningHours.OpenNow
			p.IsOpen = &open
		}
		if len(r.Photos) > 0 {
			p.PhotoReference = r.Photos[0].PhotoReference
		}
		if origin != nil {
			p.DistanceMeters = geo.HaversineDistance(origin.Lat, origin.Lng, p.Location.Lat, p.Location.Lng)
		}
		places = append(places, p)
	}
	return places
}

func placeAddress(r PlaceResult) string {
	if r.FormattedAddress != "" {
		return r.FormattedAddress
	}
	return r.Vicinity
}

// normalizeRoutes converts raw routes into canonical Routes, keeping at
// most MaxRoutes alternatives and maxSteps steps per route. Truncated
// routes record how many steps were dropped.
func normalizeRoutes(results []RouteResult, maxSteps int) []geo.Route {
	routes := make([]geo.Route, 0, MaxRoutes)
	for _, r := range results {
		if len(routes) >= MaxRoutes {
			break
		}
		if len(r.Legs) == 0 {
			continue
		}
		// Origin-to-destination queries produce a single leg.
		leg := r.Legs[0]

		route := geo.Route{
			Summary:      r.Summary,
			Distance:     leg.Distance.Text,
			Duration:     leg.Duration.Text,
			StartAddress: leg.StartAddress,
			EndAddress:   leg.EndAddress,
			Polyline:     r.OverviewPolyline.Points,
		}

		steps := leg.Steps
		if len(steps) > maxSteps {
			route.StepsOmitted = len(steps) - maxSteps
			steps = steps[:maxSteps]
		}
		route.Steps = make([]geo.Step, 0, len(steps))
		for _, s := range steps {
			route.Steps = append(route.Steps, geo.Step{
				Instruction: CleanInstruction(s.HTMLInstructions),
				Distance:    s.Distance.Text,
				Duration:    s.Duration.Text,
				Maneuver:    s.Maneuver,
			})
		}
		routes = append(routes, route)
	}
	return routes
}

// normalizeGeocode takes the first geocoding result, or nil when the
// provider returned none or the record carries no coordinates.
func normalizeGeocode(results []GeocodeResult) *GeocodedAddress {
	for _, r := range results {
		if r.Geometry == nil || r.Geometry.Location == nil {
			continue
		}
		return &GeocodedAddress{
			FormattedAddress: r.FormattedAddress,
			Location:         geo.Location{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			PlaceID:          r.PlaceID,
		}
	}
	return nil
}

// CleanInstruction strips markup tags from a step instruction and
// collapses runs of whitespace to single spaces.
func CleanInstruction(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PlaceLink builds a shareable Google Maps URL for a place.
func PlaceLink(placeID string) string {
	if placeID == "" {
		return ""
	}
	return "https://www.google.com/maps/place/?q=place_id:" + url.QueryEscape(placeID)
}
