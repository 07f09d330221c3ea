package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/geochat-ai/geochat/pkg/chat"
	"github.com/geochat-ai/geochat/pkg/geo"
	"github.com/geochat-ai/geochat/pkg/intent"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
)

// MapsChatTool returns the tool definition for the full chat flow.
func MapsChatTool() mcp.Tool {
	return mcp.NewTool("maps_chat",
		mcp.WithDescription("Ask a natural-language location question and get a model answer grounded in map data"),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The question to ask, e.g. 'find coffee shops near Times Square'"),
		),
		mcp.WithNumber("latitude",
			mcp.Description("Caller latitude, used when the message names no location"),
		),
		mcp.WithNumber("longitude",
			mcp.Description("Caller longitude, used when the message names no location"),
		),
	)
}

// HandleMapsChat runs one full chat turn through the core.
func (r *Registry) HandleMapsChat(ctx context.Context, rawInput mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := mcp.ParseString(rawInput, "message", "")
	if message == "" {
		return ErrorResponse("Message must not be empty"), nil
	}

	var callerLocation *geo.Location
	lat := mcp.ParseFloat64(rawInput, "latitude", 0)
	lng := mcp.ParseFloat64(rawInput, "longitude", 0)
	if lat != 0 || lng != 0 {
		loc := geo.Location{Lat: lat, Lng: lng}
		if !loc.Valid() {
			return ErrorResponse("Coordinates out of range"), nil
		}
		callerLocation = &loc
	}

	resp, err := r.chat.Process(ctx, chat.Request{
		Message:      message,
		UserLocation: callerLocation,
		Identity:     mcpIdentity,
	})
	if err != nil {
		return ErrorResponse(chat.Classify(err).Message), nil
	}
	return marshalResult(r, resp)
}

// SearchPlacesTool returns the tool definition for place search.
func SearchPlacesTool() mcp.Tool {
	return mcp.NewTool("search_places",
		mcp.WithDescription("Search for places matching a query, optionally near a location"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to search for, e.g. 'coffee shops'"),
		),
		mcp.WithString("location",
			mcp.Description("Where to search: free text or 'lat,lng'"),
		),
		mcp.WithNumber("radius",
			mcp.Description("Search radius in meters (default 5000, max 50000)"),
		),
	)
}

// HandleSearchPlaces implements the place search tool.
func (r *Registry) HandleSearchPlaces(ctx context.Context, rawInput mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := mcp.ParseString(rawInput, "query", "")
	if query == "" {
		return ErrorResponse("Query must not be empty"), nil
	}
	radius := int(mcp.ParseFloat64(rawInput, "radius", 0))
	if radius > intent.MaxRadiusMeters {
		radius = intent.MaxRadiusMeters
	}

	if !r.limiter.Admit(mcpIdentity, ratelimit.ClassMaps) {
		return ErrorResponse(chat.NewRateLimitError().Message), nil
	}

	data, err := r.maps.Resolve(ctx, intent.Intent{
		Kind: intent.KindSearchPlaces,
		Search: &intent.SearchPlaces{
			Query:        query,
			Location:     mcp.ParseString(rawInput, "location", ""),
			RadiusMeters: radius,
		},
	})
	if err != nil {
		r.logger.Error("search_places failed", "query", query, "error", err)
		return ErrorResponse(chat.Classify(err).Message), nil
	}
	return marshalResult(r, data.Search)
}

// GetDirectionsTool returns the tool definition for directions.
func GetDirectionsTool() mcp.Tool {
	return mcp.NewTool("get_directions",
		mcp.WithDescription("Get directions between two locations"),
		mcp.WithString("origin",
			mcp.Required(),
			mcp.Description("Starting point: an address, place name, or 'lat,lng'"),
		),
		mcp.WithString("destination",
			mcp.Required(),
			mcp.Description("End point: an address, place name, or 'lat,lng'"),
		),
		mcp.WithString("travel_mode",
			mcp.Description("One of driving, walking, bicycling, transit (default driving)"),
		),
	)
}

// HandleGetDirections implements the directions tool.
func (r *Registry) HandleGetDirections(ctx context.Context, rawInput mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	origin := mcp.ParseString(rawInput, "origin", "")
	destination := mcp.ParseString(rawInput, "destination", "")
	if origin == "" || destination == "" {
		return ErrorResponse("Origin and destination must not be empty"), nil
	}

	if !r.limiter.Admit(mcpIdentity, ratelimit.ClassDirections) {
		return ErrorResponse(chat.NewRateLimitError().Message), nil
	}

	data, err := r.maps.Resolve(ctx, intent.Intent{
		Kind: intent.KindDirections,
		Directions: &intent.Directions{
			Origin:      origin,
			Destination: destination,
			TravelMode:  mcp.ParseString(rawInput, "travel_mode", intent.ModeDriving),
		},
	})
	if err != nil {
		r.logger.Error("get_directions failed",
			"origin", origin,
			"destination", destination,
			"error", err)
		return ErrorResponse(chat.Classify(err).Message), nil
	}
	return marshalResult(r, data.Directions)
}

// GeocodeAddressTool returns the tool definition for geocoding.
func GeocodeAddressTool() mcp.Tool {
	return mcp.NewTool("geocode_address",
		mcp.WithDescription("Convert an address or place name to geographic coordinates"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The address or place name to geocode"),
		),
	)
}

// HandleGeocodeAddress implements the geocoding tool.
func (r *Registry) HandleGeocodeAddress(ctx context.Context, rawInput mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address := mcp.ParseString(rawInput, "address", "")
	if address == "" {
		return ErrorResponse("Address must not be empty"), nil
	}

	if !r.limiter.Admit(mcpIdentity, ratelimit.ClassMaps) {
		return ErrorResponse(chat.NewRateLimitError().Message), nil
	}

	data, err := r.maps.Resolve(ctx, intent.Intent{
		Kind:    intent.KindGeocode,
		Geocode: &intent.Geocode{Address: address},
	})
	if err != nil {
		r.logger.Error("geocode_address failed", "address", address, "error", err)
		return ErrorResponse(chat.Classify(err).Message), nil
	}
	return marshalResult(r, data.Geocode)
}

func marshalResult(r *Registry, v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		r.logger.Error("failed to marshal tool result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
