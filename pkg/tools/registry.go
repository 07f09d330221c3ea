// Package tools provides the MCP tool implementations, exposing the
// chat core and the map gateway to tool-calling clients.
package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/geochat-ai/geochat/pkg/chat"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
)

// mcpIdentity keys rate limiting for tool calls. Tool clients are a
// single local process, so they share one identity.
const mcpIdentity = "mcp"

// Registry holds all MCP tool registrations and their collaborators.
type Registry struct {
	chat    *chat.Service
	maps    chat.Resolver
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(chatSvc *chat.Service, maps chat.Resolver, limiter *ratelimit.Limiter, logger *slog.Logger) *Registry {
	return &Registry{
		chat:    chatSvc,
		maps:    maps,
		limiter: limiter,
		logger:  logger,
	}
}

// ToolDefinition represents one MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns all tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "maps_chat",
			Description: "Ask a natural-language location question and get a model answer grounded in map data",
			Tool:        MapsChatTool(),
			Handler:     r.HandleMapsChat,
		},
		{
			Name:        "search_places",
			Description: "Search for places matching a query, optionally near a location",
			Tool:        SearchPlacesTool(),
			Handler:     r.HandleSearchPlaces,
		},
		{
			Name:        "get_directions",
			Description: "Get directions between two locations",
			Tool:        GetDirectionsTool(),
			Handler:     r.HandleGetDirections,
		},
		{
			Name:        "geocode_address",
			Description: "Convert an address or place name to geographic coordinates",
			Tool:        GeocodeAddressTool(),
			Handler:     r.HandleGeocodeAddress,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}

// ErrorResponse returns a tool error result with the given message.
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}
