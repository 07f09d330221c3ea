// Package server exposes the chat core over HTTP and WebSocket. Both
// surfaces are thin adapters: parsing, admission class selection, and
// status-code mapping live here, everything else is the shared core.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geochat-ai/geochat/pkg/chat"
	"github.com/geochat-ai/geochat/pkg/config"
	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
	"github.com/geochat-ai/geochat/pkg/version"
)

// ModelBackend is the slice of the model client the server exposes
// directly (listing, health, pulls). Chat traffic goes through the core.
type ModelBackend interface {
	Models(ctx context.Context) ([]string, error)
	Healthy(ctx context.Context) bool
	Pull(ctx context.Context, model string) error
}

// Server holds the HTTP surface and its collaborators.
type Server struct {
	cfg     *config.Config
	chat    *chat.Service
	maps    *gmaps.Service
	models  ModelBackend
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	engine  *gin.Engine
}

// New wires the routes. Construction does not bind the listener; call
// Run for that.
func New(cfg *config.Config, chatSvc *chat.Service, mapsSvc *gmaps.Service, models ModelBackend, limiter *ratelimit.Limiter, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:     cfg,
		chat:    chatSvc,
		maps:    mapsSvc,
		models:  models,
		limiter: limiter,
		logger:  logger,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/maps/search", s.handleMapsSearch)
	api.POST("/maps/directions", s.handleMapsDirections)
	api.GET("/models", s.handleModels)
	api.POST("/models/:name/load", s.handleModelLoad)

	s.engine.GET("/ws/chat/:conversation_id", s.handleWebSocket)
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("http server listening", "addr", s.cfg.ListenAddr)
	return s.engine.Run(s.cfg.ListenAddr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "GeoChat API",
		"version":   version.BuildVersion,
		"status":    "operational",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	llmStatus := "unhealthy"
	if s.models.Healthy(ctx) {
		llmStatus = "healthy"
	}
	mapsStatus := "unconfigured"
	if s.cfg.GoogleMapsAPIKey != "" {
		mapsStatus = "configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"api":         "healthy",
		"llm":         llmStatus,
		"google_maps": mapsStatus,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError renders the caller-facing error shape with its stable
// type discriminant.
func writeError(c *gin.Context, err error) {
	typed := chat.Classify(err)
	c.JSON(statusFor(typed.Type), gin.H{
		"error":     typed.Message,
		"type":      string(typed.Type),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func statusFor(t chat.ErrorType) int {
	switch t {
	case chat.ErrTypeValidation:
		return http.StatusBadRequest
	case chat.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case chat.ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
