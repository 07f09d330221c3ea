// Package gmaps talks to the Google Maps web service APIs and
// normalizes their responses into the canonical place, route, and
// geocode records the rest of the service works with.
package gmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/geochat-ai/geochat/pkg/geo"
)

const (
	textSearchURL   = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	nearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	directionsURL   = "https://maps.googleapis.com/maps/api/directions/json"
	geocodeURL      = "https://maps.googleapis.com/maps/api/geocode/json"
	photoURL        = "https://maps.googleapis.com/maps/api/place/photo"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// StatusError reports a non-success status in a provider response body.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("maps api status %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("maps api status %s", e.Status)
}

// Client calls the Google Maps APIs. It applies per-endpoint politeness
// rate limiting on top of whatever admission control the caller runs.
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	placesLimiter     *rate.Limiter
	directionsLimiter *rate.Limiter
	geocodeLimiter    *rate.Limiter
}

// NewClient creates a maps client with pooled connections.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: 10 * time.Second,
		},
		logger:            logger,
		placesLimiter:     rate.NewLimiter(rate.Limit(10), 10),
		directionsLimiter: rate.NewLimiter(rate.Limit(5), 5),
		geocodeLimiter:    rate.NewLimiter(rate.Limit(10), 10),
	}
}

// TextSearch runs a free-text place search, optionally biased by a
// location and radius in meters.
func (c *Client) TextSearch(ctx context.Context, query string, location *geo.Location, radiusMeters int) (*PlacesResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	if location != nil {
		params.Set("location", location.String())
	}
	if radiusMeters > 0 {
		params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	}

	var out PlacesResponse
	if err := c.getJSON(ctx, c.placesLimiter, textSearchURL, params, &out); err != nil {
		return nil, err
	}
	if err := checkStatus(out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	return &out, nil
}

// NearbySearch lists places around a point. keyword narrows results the
// same way a text query would.
func (c *Client) NearbySearch(ctx context.Context, location geo.Location, radiusMeters int, keyword string) (*PlacesResponse, error) {
	params := url.Values{}
	params.Set("location", location.String())
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	if keyword != "" {
		params.Set("keyword", keyword)
	}

	var out PlacesResponse
	if err := c.getJSON(ctx, c.placesLimiter, nearbySearchURL, params, &out); err != nil {
		return nil, err
	}
	if err := checkStatus(out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	return &out, nil
}

// Directions fetches routes between two endpoints, with alternatives.
func (c *Client) Directions(ctx context.Context, origin, destination, mode string) (*DirectionsResponse, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", mode)
	params.Set("alternatives", "true")
	params.Set("units", "metric")

	var out DirectionsResponse
	if err := c.getJSON(ctx, c.directionsLimiter, directionsURL, params, &out); err != nil {
		return nil, err
	}
	if err := checkStatus(out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	return &out, nil
}

// Geocode resolves a free-text address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	params := url.Values{}
	params.Set("address", address)

	var out GeocodeResponse
	if err := c.getJSON(ctx, c.geocodeLimiter, geocodeURL, params, &out); err != nil {
		return nil, err
	}
	if err := checkStatus(out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	return &out, nil
}

// PhotoURL builds a fetchable URL for a photo reference. The key is
// embedded, so the result must never be logged.
func (c *Client) PhotoURL(photoReference string, maxWidth int) string {
	params := url.Values{}
	params.Set("photo_reference", photoReference)
	params.Set("maxwidth", fmt.Sprintf("%d", maxWidth))
	params.Set("key", c.apiKey)
	return photoURL + "?" + params.Encode()
}

// getJSON performs a rate-limited GET and decodes the JSON body. The
// API key is appended here and redacted from anything logged.
func (c *Client) getJSON(ctx context.Context, limiter *rate.Limiter, baseURL string, params url.Values, out interface{}) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.apiKey)
	reqURL := baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("maps request failed", "url", redactKey(reqURL), "error", err)
		return fmt.Errorf("maps request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("maps request",
		"url", redactKey(reqURL),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode maps response: %w", err)
	}
	return nil
}

// checkStatus maps a body status to an error. ZERO_RESULTS is not an
// error at this layer; the gateway decides whether emptiness matters.
func checkStatus(status, message string) error {
	if status == statusOK || status == statusZeroResults {
		return nil
	}
	return &StatusError{Status: status, Message: message}
}

// redactKey strips the API key from a request URL for logging.
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
