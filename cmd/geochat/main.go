// Command geochat runs the HTTP and WebSocket chat service.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/geochat-ai/geochat/pkg/cache"
	"github.com/geochat-ai/geochat/pkg/chat"
	"github.com/geochat-ai/geochat/pkg/config"
	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/llm"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
	"github.com/geochat-ai/geochat/pkg/server"
	"github.com/geochat-ai/geochat/pkg/version"
)

var (
	showVersion bool
	debug       bool
)

func init() {
	flag.BoolVar(&showVersion, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version.String())
		return
	}

	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store := cache.NewTTLCache(cfg.PlacesTTL, cfg.PlacesTTL, cfg.CacheMaxItems)
	defer store.Stop()

	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg.RateLimits, logger)

	mapsClient := gmaps.NewClient(cfg.GoogleMapsAPIKey, logger)
	mapsSvc := gmaps.NewService(mapsClient, store, gmaps.ServiceConfig{
		PlacesTTL:     cfg.PlacesTTL,
		DirectionsTTL: cfg.DirectionsTTL,
		GeocodeTTL:    cfg.GeocodeTTL,
		MaxResults:    cfg.MaxResults,
		MaxRouteSteps: cfg.MaxRouteSteps,
	}, logger)

	model := llm.NewClient(cfg.OllamaURL, cfg.OllamaModel, logger)
	chatSvc := chat.NewService(mapsSvc, model, limiter, logger)

	logger.Info("starting geochat",
		"version", version.BuildVersion,
		"addr", cfg.ListenAddr,
		"model", cfg.OllamaModel)

	srv := server.New(cfg, chatSvc, mapsSvc, model, limiter, logger)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
