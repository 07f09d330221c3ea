// Package chat is the shared core behind every delivery surface. It
// admits, validates, extracts an intent, resolves map data, and asks
// the model to answer. HTTP, WebSocket, and tool adapters all reduce
// to calls into this package.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/geochat-ai/geochat/pkg/geo"
	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/intent"
	"github.com/geochat-ai/geochat/pkg/llm"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
	"github.com/geochat-ai/geochat/pkg/safety"
)

// Resolver resolves an intent to normalized map data. *gmaps.Service
// satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, in intent.Intent) (*gmaps.MapData, error)
}

// Generator produces model completions. *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string) (<-chan llm.Chunk, error)
	Model() string
}

// Admitter gates requests per identity and endpoint class.
// *ratelimit.Limiter satisfies it.
type Admitter interface {
	Admit(identity, class string) bool
}

// Request is one user turn.
type Request struct {
	Message        string
	ConversationID string
	UserLocation   *geo.Location
	// Identity keys rate limiting: a user id or a client address.
	Identity string
	// Class is the rate-limit endpoint class; empty means the default.
	Class string
}

// Response is a completed turn.
type Response struct {
	Text           string         `json:"text"`
	MapData        *gmaps.MapData `json:"maps_data,omitempty"`
	Model          string         `json:"model"`
	ConversationID string         `json:"conversation_id"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Stream is an in-progress turn: map data is resolved up front, text
// arrives chunk by chunk. Chunks is closed when the model finishes.
type Stream struct {
	Chunks         <-chan llm.Chunk
	MapData        *gmaps.MapData
	ConversationID string
	Model          string
}

// Service wires the core together. All collaborators are injected.
type Service struct {
	resolver  Resolver
	generator Generator
	admitter  Admitter
	logger    *slog.Logger
}

// NewService creates the chat core.
func NewService(resolver Resolver, generator Generator, admitter Admitter, logger *slog.Logger) *Service {
	return &Service{
		resolver:  resolver,
		generator: generator,
		admitter:  admitter,
		logger:    logger,
	}
}

// Process handles one turn end to end and returns the full response.
func (s *Service) Process(ctx context.Context, req Request) (*Response, error) {
	message, convID, data, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt := llm.ComposePrompt(message, data)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("model generation failed", "error", err)
		return nil, NewProviderError()
	}

	return &Response{
		Text:           text,
		MapData:        data,
		Model:          s.generator.Model(),
		ConversationID: convID,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// ProcessStream handles one turn with a streaming completion.
func (s *Service) ProcessStream(ctx context.Context, req Request) (*Stream, error) {
	message, convID, data, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt := llm.ComposePrompt(message, data)
	chunks, err := s.generator.GenerateStream(ctx, prompt)
	if err != nil {
		s.logger.Error("model stream failed to start", "error", err)
		return nil, NewProviderError()
	}

	return &Stream{
		Chunks:         chunks,
		MapData:        data,
		ConversationID: convID,
		Model:          s.generator.Model(),
	}, nil
}

// prepare runs the shared front half of a turn: admission, validation,
// and, for messages that ask about locations, extraction and map
// resolution. Non-location messages skip the map backend entirely. Map
// failures degrade to a turn with no map data rather than failing the
// whole request; the model still answers from the message alone.
func (s *Service) prepare(ctx context.Context, req Request) (message, convID string, data *gmaps.MapData, err error) {
	class := req.Class
	if class == "" {
		class = ratelimit.ClassDefault
	}
	if !s.admitter.Admit(req.Identity, class) {
		return "", "", nil, NewRateLimitError()
	}

	if err := safety.Validate(req.Message); err != nil {
		return "", "", nil, Classify(err)
	}
	message = safety.Sanitize(req.Message)

	convID = req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	if !intent.HasLocationIntent(message) {
		return message, convID, nil, nil
	}

	in := intent.Extract(message, req.UserLocation)
	data, resolveErr := s.resolver.Resolve(ctx, in)
	if resolveErr != nil {
		s.logger.Warn("map resolution failed, continuing without map data",
			"kind", in.Kind,
			"error", resolveErr)
		data = nil
	}
	return message, convID, data, nil
}
