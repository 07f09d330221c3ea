package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geochat-ai/geochat/pkg/chat"
	"github.com/geochat-ai/geochat/pkg/geo"
	"github.com/geochat-ai/geochat/pkg/intent"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
)

// ChatRequest is the /api/chat body.
type ChatRequest struct {
	Message        string        `json:"message" binding:"required"`
	ConversationID string        `json:"conversation_id"`
	UserLocation   *geo.Location `json:"user_location"`
}

// MapsSearchRequest is the /api/maps/search body.
type MapsSearchRequest struct {
	Query      string `json:"query" binding:"required"`
	Location   string `json:"location"`
	Radius     int    `json:"radius"`
	PlaceType  string `json:"place_type"`
	MaxResults int    `json:"max_results"`
}

// DirectionsRequest is the /api/maps/directions body.
type DirectionsRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	TravelMode  string `json:"travel_mode"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, chat.NewValidationError("invalid request body"))
		return
	}

	resp, err := s.chat.Process(c.Request.Context(), chat.Request{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		UserLocation:   req.UserLocation,
		Identity:       c.ClientIP(),
		Class:          ratelimit.ClassDefault,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMapsSearch(c *gin.Context) {
	var req MapsSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, chat.NewValidationError("invalid request body"))
		return
	}
	if !s.limiter.Admit(c.ClientIP(), ratelimit.ClassMaps) {
		writeError(c, chat.NewRateLimitError())
		return
	}

	result, err := s.maps.SearchPlaces(c.Request.Context(), intent.SearchPlaces{
		Query:        req.Query,
		Location:     req.Location,
		RadiusMeters: req.Radius,
		PlaceType:    req.PlaceType,
		MaxResults:   req.MaxResults,
	})
	if err != nil {
		s.logger.Error("maps search failed", "query", req.Query, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"places":        result.Places,
		"total_results": len(result.Places),
		"search_query":  result.Query,
		"location":      result.Location,
		"map_center":    result.Center,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMapsDirections(c *gin.Context) {
	var req DirectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, chat.NewValidationError("invalid request body"))
		return
	}
	if !s.limiter.Admit(c.ClientIP(), ratelimit.ClassDirections) {
		writeError(c, chat.NewRateLimitError())
		return
	}

	result, err := s.maps.GetDirections(c.Request.Context(), intent.Directions{
		Origin:      req.Origin,
		Destination: req.Destination,
		TravelMode:  req.TravelMode,
	})
	if err != nil {
		s.logger.Error("directions failed",
			"origin", req.Origin,
			"destination", req.Destination,
			"error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routes":      result.Routes,
		"origin":      result.Origin,
		"destination": result.Destination,
		"travel_mode": result.TravelMode,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleModels(c *gin.Context) {
	models, err := s.models.Models(c.Request.Context())
	if err != nil {
		s.logger.Error("model listing failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"models": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (s *Server) handleModelLoad(c *gin.Context) {
	name := c.Param("name")
	if err := s.models.Pull(c.Request.Context(), name); err != nil {
		s.logger.Error("model load failed", "model", name, "error", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "loaded", "model": name})
}
