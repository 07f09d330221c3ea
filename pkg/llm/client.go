// Package llm talks to a local Ollama-compatible model server and
// builds the prompts sent to it.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Generation defaults shared by the blocking and streaming paths.
const (
	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

// Client calls the Ollama HTTP API.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a model client. baseURL is the Ollama server root,
// typically http://localhost:11434.
func NewClient(baseURL, model string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func defaultOptions() map[string]interface{} {
	return map[string]interface{}{
		"temperature": defaultTemperature,
		"top_p":       defaultTopP,
	}
}

// Generate runs a blocking completion and returns the full response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: defaultOptions(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model server returned HTTP %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}
	return out.Response, nil
}

// Chunk is one piece of a streaming completion. Err is set on the final
// chunk when the stream failed partway.
type Chunk struct {
	Text string
	Err  error
}

// GenerateStream runs a streaming completion. The returned channel
// yields chunks as the model produces them and is closed when the
// server signals completion, the stream errors, or ctx is canceled.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  true,
		Options: defaultOptions(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("model server returned HTTP %d", resp.StatusCode)
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk generateResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				// Skip malformed lines rather than killing the stream.
				continue
			}
			if chunk.Response != "" {
				select {
				case out <- Chunk{Text: chunk.Response}:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case out <- Chunk{Err: fmt.Errorf("stream read failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models lists the model names available on the server.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned HTTP %d", resp.StatusCode)
	}

	var out tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}
	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Healthy reports whether the server is reachable and the configured
// model is present, either exactly or with the :latest tag.
func (c *Client) Healthy(ctx context.Context) bool {
	names, err := c.Models(ctx)
	if err != nil {
		c.logger.Warn("model server health check failed", "error", err)
		return false
	}
	for _, name := range names {
		if name == c.model || name == c.model+":latest" {
			return true
		}
	}
	return false
}

// Pull asks the server to download a model.
func (c *Client) Pull(ctx context.Context, model string) error {
	body, err := json.Marshal(map[string]string{"name": model})
	if err != nil {
		return fmt.Errorf("failed to marshal pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model pull failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned HTTP %d", resp.StatusCode)
	}
	return nil
}
