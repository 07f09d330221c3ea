// Command geochat-mcp exposes the chat core and map gateway as MCP
// tools over stdio, for tool-calling clients such as Claude Desktop.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/geochat-ai/geochat/pkg/cache"
	"github.com/geochat-ai/geochat/pkg/chat"
	"github.com/geochat-ai/geochat/pkg/config"
	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/llm"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
	"github.com/geochat-ai/geochat/pkg/tools"
	"github.com/geochat-ai/geochat/pkg/version"
)

const serverName = "geochat-mcp"

var (
	showVersion    bool
	debug          bool
	generateConfig string
)

func init() {
	flag.BoolVar(&showVersion, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
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
	// stdout carries the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if generateConfig != "" {
		if err := generateClientConfig(generateConfig); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("generated Claude Desktop Client config", "path", generateConfig)
		return
	}

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

	logger.Info("starting MCP server",
		"name", serverName,
		"version", version.BuildVersion)

	srv := mcpserver.NewMCPServer(
		serverName,
		version.BuildVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	registry := tools.NewRegistry(chatSvc, mapsSvc, limiter, logger)
	registry.RegisterTools(srv)

	logger.Info("server initialized, waiting for requests")
	if err := mcpserver.ServeStdio(srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file, preserving any other servers already registered in it.
func generateClientConfig(outputPath string) error {
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	serverConfig := map[string]interface{}{
		"command": absExecPath,
		"args":    []string{},
	}

	config := make(map[string]interface{})
	if data, err := os.ReadFile(outputPath); err == nil {
		if err := json.Unmarshal(data, &config); err != nil {
			slog.Warn("existing config is not valid JSON, creating new", "error", err)
			config = make(map[string]interface{})
		}
	}

	mcpServers, ok := config["mcpServers"].(map[string]interface{})
	if !ok {
		mcpServers = make(map[string]interface{})
		config["mcpServers"] = mcpServers
	}
	mcpServers["GeoChat"] = serverConfig

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
