// Package geo provides common geographic types and calculations.
// It centralizes location-based data structures and algorithms to ensure
// consistency across the codebase.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadius is the mean radius of Earth according to WGS-84 in meters
const EarthRadius = 6371000.0

// Location represents a geographic coordinate (latitude and longitude)
// with standardized JSON field names.
//
// Example:
//
//	loc := geo.Location{Lat: 37.7749, Lng: -122.4194}
//	dist := geo.HaversineDistance(loc.Lat, loc.Lng, 34.0522, -118.2437)
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the location lies within the WGS-84 coordinate ranges.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// String formats the location as "lat,lng".
func (l Location) String() string {
	return fmt.Sprintf("%g,%g", l.Lat, l.Lng)
}

// ParseLatLng parses a "lat,lng" string into a Location. The string must
// contain exactly one comma, both halves must parse as numbers, and the
// numbers must lie within valid coordinate ranges. Anything else is
// free-form text as far as callers are concerned, so there is no error
// detail, just a false.
func ParseLatLng(s string) (Location, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Location{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Location{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Location{}, false
	}
	loc := Location{Lat: lat, Lng: lng}
	if !loc.Valid() {
		return Location{}, false
	}
	return loc, true
}

// Place represents a named location returned by the maps provider after
// normalization. Instances are never mutated once built.
type Place struct {
	Name             string   `json:"name"`
	PlaceID          string   `json:"place_id"`
	Address          string   `json:"address,omitempty"`
	Location         Location `json:"location"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       int      `json:"price_level,omitempty"`
	Types            []string `json:"types,omitempty"`
	// IsOpen is tri-state: nil when the provider carried no opening
	// hours information, never defaulted to false.
	IsOpen         *bool   `json:"is_open,omitempty"`
	PhotoReference string  `json:"photo_reference,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Website        string  `json:"website,omitempty"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

// Step is a single instruction within a route. Instruction text has all
// markup stripped and internal whitespace collapsed.
type Step struct {
	Instruction string `json:"instruction"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
	Maneuver    string `json:"maneuver,omitempty"`
}

// Route represents a single path between two addresses.
type Route struct {
	Summary      string `json:"summary"`
	Distance     string `json:"distance"`
	Duration     string `json:"duration"`
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	Steps        []Step `json:"steps"`
	// StepsOmitted counts steps dropped by the display cap; consumers
	// render it as a "+N more steps" marker.
	StepsOmitted int    `json:"steps_omitted,omitempty"`
	Polyline     string `json:"polyline"`
}

// HaversineDistance calculates the great-circle distance between two points
// on the Earth's surface given their latitude and longitude in degrees.
// The result is returned in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	// Haversine formula
	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadius * c
}

// Center returns the arithmetic mean of the given places' coordinates,
// or nil when the list is empty.
func Center(places []Place) *Location {
	if len(places) == 0 {
		return nil
	}
	var sumLat, sumLng float64
	for _, p := range places {
		sumLat += p.Location.Lat
		sumLng += p.Location.Lng
	}
	n := float64(len(places))
	return &Location{Lat: sumLat / n, Lng: sumLng / n}
}
