package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geochat-ai/geochat/pkg/geo"
	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/intent"
	"github.com/geochat-ai/geochat/pkg/llm"
	"github.com/geochat-ai/geochat/pkg/testutil"
)

type fakeResolver struct {
	data  *gmaps.MapData
	err   error
	calls int
	last  intent.Intent
}

func (f *fakeResolver) Resolve(ctx context.Context, in intent.Intent) (*gmaps.MapData, error) {
	f.calls++
	f.last = in
	return f.data, f.err
}

type fakeGenerator struct {
	text       string
	err        error
	lastPrompt string
	chunks     []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.text, f.err
}

func (f *fakeGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan llm.Chunk, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan llm.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- llm.Chunk{Text: c}
	}
	close(out)
	return out, nil
}

func (f *fakeGenerator) Model() string { return "test-model" }

type fakeAdmitter struct{ allow bool }

func (f *fakeAdmitter) Admit(identity, class string) bool { return f.allow }

func newTestChat(resolver *fakeResolver, generator *fakeGenerator, allow bool) *Service {
	return NewService(resolver, generator, &fakeAdmitter{allow: allow}, testutil.DiscardLogger())
}

func TestProcess(t *testing.T) {
	resolver := &fakeResolver{
		data: &gmaps.MapData{
			Kind: intent.KindSearchPlaces,
			Search: &gmaps.SearchResult{
				Places: []geo.Place{{Name: "Joe's"}},
			},
		},
	}
	generator := &fakeGenerator{text: "Here are some places."}
	svc := newTestChat(resolver, generator, true)

	resp, err := svc.Process(context.Background(), Request{
		Message:  "find coffee near brooklyn",
		Identity: "user-1",
	})
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if resp.Text != "Here are some places." {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.MapData == nil {
		t.Error("response should carry map data")
	}
	if resp.ConversationID == "" {
		t.Error("a conversation id should be assigned")
	}
	if resp.Model != "test-model" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resolver.last.Kind != intent.KindSearchPlaces {
		t.Errorf("extracted kind = %q", resolver.last.Kind)
	}
	if !strings.Contains(generator.lastPrompt, "Joe's") {
		t.Error("prompt should include the map digest")
	}
}

func TestProcessNonLocationMessage(t *testing.T) {
	resolver := &fakeResolver{}
	generator := &fakeGenerator{text: "Why did the penguin cross the ice?"}
	svc := newTestChat(resolver, generator, true)

	resp, err := svc.Process(context.Background(), Request{
		Message: "tell me a joke about penguins",
	})
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times for a non-location message, want 0", resolver.calls)
	}
	if resp.MapData != nil {
		t.Error("MapData should be nil for a non-location message")
	}
	if strings.Contains(generator.lastPrompt, "I found") {
		t.Error("prompt should carry no map digest")
	}
	if resp.Text != "Why did the penguin cross the ice?" {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestProcessKeepsConversationID(t *testing.T) {
	svc := newTestChat(&fakeResolver{}, &fakeGenerator{text: "ok"}, true)

	resp, err := svc.Process(context.Background(), Request{
		Message:        "find food",
		ConversationID: "conv-42",
	})
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if resp.ConversationID != "conv-42" {
		t.Errorf("ConversationID = %q, want conv-42", resp.ConversationID)
	}
}

func TestProcessRateLimited(t *testing.T) {
	resolver := &fakeResolver{}
	svc := newTestChat(resolver, &fakeGenerator{}, false)

	_, err := svc.Process(context.Background(), Request{Message: "find coffee"})

	var typed *Error
	if !errors.As(err, &typed) || typed.Type != ErrTypeRateLimit {
		t.Fatalf("error = %v, want rate_limit", err)
	}
	if resolver.calls != 0 {
		t.Error("denied requests must not reach the resolver")
	}
}

func TestProcessValidation(t *testing.T) {
	svc := newTestChat(&fakeResolver{}, &fakeGenerator{}, true)

	tests := []struct {
		name    string
		message string
	}{
		{"empty", ""},
		{"script tag", "<script>alert(1)</script> find coffee"},
		{"too long", strings.Repeat("a", 5001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(context.Background(), Request{Message: tt.message})
			var typed *Error
			if !errors.As(err, &typed) || typed.Type != ErrTypeValidation {
				t.Errorf("error = %v, want validation_error", err)
			}
		})
	}
}

func TestProcessDegradesOnResolveFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("maps down")}
	generator := &fakeGenerator{text: "answering anyway"}
	svc := newTestChat(resolver, generator, true)

	resp, err := svc.Process(context.Background(), Request{Message: "find coffee"})
	if err != nil {
		t.Fatalf("Process() error: %v, want degraded success", err)
	}
	if resp.MapData != nil {
		t.Error("MapData should be nil after a resolve failure")
	}
	if resp.Text != "answering anyway" {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestProcessProviderError(t *testing.T) {
	svc := newTestChat(&fakeResolver{}, &fakeGenerator{err: errors.New("ollama down")}, true)

	_, err := svc.Process(context.Background(), Request{Message: "find coffee"})

	var typed *Error
	if !errors.As(err, &typed) || typed.Type != ErrTypeProvider {
		t.Fatalf("error = %v, want provider_error", err)
	}
	if strings.Contains(typed.Message, "ollama") {
		t.Error("backend detail must not leak into the user-facing message")
	}
}

func TestProcessStream(t *testing.T) {
	generator := &fakeGenerator{chunks: []string{"Hel", "lo"}}
	svc := newTestChat(&fakeResolver{}, generator, true)

	stream, err := svc.ProcessStream(context.Background(), Request{Message: "find coffee"})
	if err != nil {
		t.Fatalf("ProcessStream() error: %v", err)
	}

	var got strings.Builder
	for chunk := range stream.Chunks {
		if chunk.Err != nil {
			t.Fatalf("chunk error: %v", chunk.Err)
		}
		got.WriteString(chunk.Text)
	}
	if got.String() != "Hello" {
		t.Errorf("streamed text = %q, want Hello", got.String())
	}
	if stream.ConversationID == "" {
		t.Error("stream should carry a conversation id")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", gmaps.ErrNotFound, ErrTypeNotFound},
		{"already typed", NewRateLimitError(), ErrTypeRateLimit},
		{"unknown", errors.New("boom"), ErrTypeProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got.Type != tt.want {
				t.Errorf("Classify() type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}
