// Package config loads service configuration from the environment.
// A .env file is honored when present; explicit environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/geochat-ai/geochat/pkg/ratelimit"
)

// Config carries every tunable the core reads.
type Config struct {
	// ListenAddr is the HTTP/WebSocket bind address.
	ListenAddr string

	// GoogleMapsAPIKey authenticates outbound maps calls.
	GoogleMapsAPIKey string

	// OllamaURL is the base URL of the local model server.
	OllamaURL string
	// OllamaModel is the model name passed on every generate call.
	OllamaModel string

	// Cache TTLs per operation class.
	PlacesTTL     time.Duration
	DirectionsTTL time.Duration
	GeocodeTTL    time.Duration
	// CacheMaxItems bounds the shared cache before eviction kicks in.
	CacheMaxItems int

	// RateLimits maps endpoint classes to their ceilings.
	RateLimits map[string]ratelimit.Limit

	// DefaultRadiusMeters applies to searches naming no distance.
	DefaultRadiusMeters int
	// MaxResults caps places returned per search.
	MaxResults int
	// MaxRouteSteps caps steps shown per route across every surface.
	MaxRouteSteps int
}

// Default returns the configuration used when no environment overrides
// are present. TTLs match the upstream usage profile: place data churns
// fastest, geocodes barely move.
func Default() *Config {
	return &Config{
		ListenAddr:          ":8080",
		OllamaURL:           "http://localhost:11434",
		OllamaModel:         "llama3",
		PlacesTTL:           5 * time.Minute,
		DirectionsTTL:       10 * time.Minute,
		GeocodeTTL:          time.Hour,
		CacheMaxItems:       1000,
		RateLimits:          ratelimit.DefaultLimits(),
		DefaultRadiusMeters: 5000,
		MaxResults:          10,
		MaxRouteSteps:       8,
	}
}

// FromEnv builds a Config from defaults plus environment overrides.
// A missing maps API key is an error; everything else has a default.
func FromEnv() (*Config, error) {
	// Best-effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := Default()

	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	if cfg.GoogleMapsAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is not set")
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.OllamaModel = v
	}

	var err error
	if cfg.PlacesTTL, err = envDuration("CACHE_TTL_PLACES", cfg.PlacesTTL); err != nil {
		return nil, err
	}
	if cfg.DirectionsTTL, err = envDuration("CACHE_TTL_DIRECTIONS", cfg.DirectionsTTL); err != nil {
		return nil, err
	}
	if cfg.GeocodeTTL, err = envDuration("CACHE_TTL_GEOCODE", cfg.GeocodeTTL); err != nil {
		return nil, err
	}

	if cfg.CacheMaxItems, err = envInt("CACHE_MAX_ITEMS", cfg.CacheMaxItems); err != nil {
		return nil, err
	}
	if cfg.DefaultRadiusMeters, err = envInt("DEFAULT_RADIUS_METERS", cfg.DefaultRadiusMeters); err != nil {
		return nil, err
	}
	if cfg.MaxResults, err = envInt("MAX_RESULTS", cfg.MaxResults); err != nil {
		return nil, err
	}
	if cfg.MaxRouteSteps, err = envInt("MAX_ROUTE_STEPS", cfg.MaxRouteSteps); err != nil {
		return nil, err
	}

	for class, envName := range map[string]string{
		ratelimit.ClassDefault:    "RATE_LIMIT_DEFAULT",
		ratelimit.ClassMaps:       "RATE_LIMIT_MAPS",
		ratelimit.ClassDirections: "RATE_LIMIT_DIRECTIONS",
		ratelimit.ClassWebSocket:  "RATE_LIMIT_WEBSOCKET",
	} {
		lim := cfg.RateLimits[class]
		if lim.Requests, err = envInt(envName, lim.Requests); err != nil {
			return nil, err
		}
		cfg.RateLimits[class] = lim
	}

	return cfg, nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
