package gmaps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geochat-ai/geochat/pkg/cache"
	"github.com/geochat-ai/geochat/pkg/geo"
	"github.com/geochat-ai/geochat/pkg/intent"
)

// ErrNotFound reports that the provider returned no results for a
// directions or geocode query. Empty place searches are not errors.
var ErrNotFound = errors.New("no results found")

// Provider is the raw maps capability the gateway resolves against.
// *Client satisfies it; tests substitute fakes.
type Provider interface {
	TextSearch(ctx context.Context, query string, location *geo.Location, radiusMeters int) (*PlacesResponse, error)
	NearbySearch(ctx context.Context, location geo.Location, radiusMeters int, keyword string) (*PlacesResponse, error)
	Directions(ctx context.Context, origin, destination, mode string) (*DirectionsResponse, error)
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
}

// SearchResult is a normalized place search outcome.
type SearchResult struct {
	Query    string        `json:"query"`
	Location string        `json:"location,omitempty"`
	Center   *geo.Location `json:"center,omitempty"`
	Places   []geo.Place   `json:"places"`
}

// DirectionsResult is a normalized directions outcome.
type DirectionsResult struct {
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	TravelMode  string      `json:"travel_mode"`
	Routes      []geo.Route `json:"routes"`
}

// GeocodedAddress is a normalized geocoding outcome.
type GeocodedAddress struct {
	Query            string       `json:"query,omitempty"`
	FormattedAddress string       `json:"formatted_address"`
	Location         geo.Location `json:"location"`
	PlaceID          string       `json:"place_id,omitempty"`
}

// MapData is the tagged union handed to the response composer. Exactly
// one payload field matching Kind is non-nil.
type MapData struct {
	Kind       intent.Kind       `json:"kind"`
	Search     *SearchResult     `json:"search,omitempty"`
	Directions *DirectionsResult `json:"directions,omitempty"`
	Geocode    *GeocodedAddress  `json:"geocode,omitempty"`
}

// ServiceConfig carries the gateway tunables.
type ServiceConfig struct {
	PlacesTTL     time.Duration
	DirectionsTTL time.Duration
	GeocodeTTL    time.Duration
	MaxResults    int
	MaxRouteSteps int
}

// Service is the map gateway: it resolves intents against the provider,
// normalizes responses, and caches normalized results by fingerprint.
type Service struct {
	provider Provider
	store    *cache.TTLCache
	cfg      ServiceConfig
	logger   *slog.Logger
}

// NewService creates a map gateway.
func NewService(provider Provider, store *cache.TTLCache, cfg ServiceConfig, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Resolve routes an intent to the matching operation.
func (s *Service) Resolve(ctx context.Context, in intent.Intent) (*MapData, error) {
	switch in.Kind {
	case intent.KindSearchPlaces:
		result, err := s.SearchPlaces(ctx, *in.Search)
		if err != nil {
			return nil, err
		}
		return &MapData{Kind: in.Kind, Search: result}, nil
	case intent.KindDirections:
		result, err := s.GetDirections(ctx, *in.Directions)
		if err != nil {
			return nil, err
		}
		return &MapData{Kind: in.Kind, Directions: result}, nil
	case intent.KindGeocode:
		result, err := s.GeocodeAddress(ctx, in.Geocode.Address)
		if err != nil {
			return nil, err
		}
		return &MapData{Kind: in.Kind, Geocode: result}, nil
	default:
		return nil, fmt.Errorf("unknown intent kind %q", in.Kind)
	}
}

// SearchPlaces runs a place search. A location that parses as a raw
// coordinate pair becomes a nearby search around that point; any other
// location text is folded into the query for a text search.
func (s *Service) SearchPlaces(ctx context.Context, q intent.SearchPlaces) (*SearchResult, error) {
	if q.RadiusMeters <= 0 {
		q.RadiusMeters = intent.DefaultRadiusMeters
	}
	maxResults := s.cfg.MaxResults
	if q.MaxResults > 0 && q.MaxResults < maxResults {
		maxResults = q.MaxResults
	}

	key := cache.Fingerprint("search_places", map[string]interface{}{
		"query":    q.Query,
		"location": q.Location,
		"radius":   q.RadiusMeters,
		"type":     q.PlaceType,
		"max":      maxResults,
	})
	if hit, ok := s.store.Get(key); ok {
		if result, ok := hit.(*SearchResult); ok {
			s.logger.Debug("cache hit", "operation", "search_places")
			return result, nil
		}
	}

	var (
		resp   *PlacesResponse
		origin *geo.Location
		err    error
	)
	if loc, ok := geo.ParseLatLng(q.Location); ok {
		origin = &loc
		resp, err = s.provider.NearbySearch(ctx, loc, q.RadiusMeters, q.Query)
	} else {
		query := q.Query
		if q.Location != "" {
			query = q.Query + " near " + q.Location
		}
		resp, err = s.provider.TextSearch(ctx, query, nil, q.RadiusMeters)
	}
	if err != nil {
		return nil, err
	}

	places := normalizePlaces(resp.Results, origin, maxResults)
	center := origin
	if center == nil {
		center = geo.Center(places)
	}

	result := &SearchResult{
		Query:    q.Query,
		Location: q.Location,
		Center:   center,
		Places:   places,
	}
	s.store.SetWithTTL(key, result, s.cfg.PlacesTTL)
	return result, nil
}

// GetDirections fetches routes between two endpoints.
func (s *Service) GetDirections(ctx context.Context, q intent.Directions) (*DirectionsResult, error) {
	mode := q.TravelMode
	if mode == "" {
		mode = intent.ModeDriving
	}

	key := cache.Fingerprint("get_directions", map[string]interface{}{
		"origin":      q.Origin,
		"destination": q.Destination,
		"mode":        mode,
	})
	if hit, ok := s.store.Get(key); ok {
		if result, ok := hit.(*DirectionsResult); ok {
			s.logger.Debug("cache hit", "operation", "get_directions")
			return result, nil
		}
	}

	resp, err := s.provider.Directions(ctx, q.Origin, q.Destination, mode)
	if err != nil {
		return nil, err
	}
	routes := normalizeRoutes(resp.Routes, s.cfg.MaxRouteSteps)
	if len(routes) == 0 {
		return nil, ErrNotFound
	}

	result := &DirectionsResult{
		Origin:      q.Origin,
		Destination: q.Destination,
		TravelMode:  mode,
		Routes:      routes,
	}
	s.store.SetWithTTL(key, result, s.cfg.DirectionsTTL)
	return result, nil
}

// GeocodeAddress resolves an address to its first geocoding result.
func (s *Service) GeocodeAddress(ctx context.Context, address string) (*GeocodedAddress, error) {
	key := cache.Fingerprint("geocode", map[string]interface{}{
		"address": address,
	})
	if hit, ok := s.store.Get(key); ok {
		if result, ok := hit.(*GeocodedAddress); ok {
			s.logger.Debug("cache hit", "operation", "geocode")
			return result, nil
		}
	}

	resp, err := s.provider.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	result := normalizeGeocode(resp.Results)
	if result == nil {
		return nil, ErrNotFound
	}
	result.Query = address

	s.store.SetWithTTL(key, result, s.cfg.GeocodeTTL)
	return result, nil
}
