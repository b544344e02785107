// Package advisor implements the "Jomo" AI persona: chat, per-stock metric
// extraction, weight suggestions and verdict/strategy text, all backed by the
// Google Gemini generateContent API.
//
// The advisor is a soft dependency. Scoring never waits on it, and every
// operation has a deterministic fallback when the API is unreachable.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client is a minimal Gemini generateContent client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option customizes the client (used by tests to point at a fake server).
type Option func(*Client)

// WithBaseURL overrides the Gemini API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Gemini client for the given API key and model.
func NewClient(apiKey, model string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log.With().Str("component", "gemini_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// generateContent wire types (the subset we use)

type genPart struct {
	Text string `json:"text"`
}

type genContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []genPart `json:"parts"`
}

type genConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type genRequest struct {
	SystemInstruction *genContent  `json:"system_instruction,omitempty"`
	Contents          []genContent `json:"contents"`
	GenerationConfig  genConfig    `json:"generationConfig"`
}

type genResponse struct {
	Candidates []struct {
		Content genContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Turn is one prior conversation turn passed back to the model.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// Generate sends a prompt (with optional history) and returns the reply text.
func (c *Client) Generate(ctx context.Context, system, prompt string, history []Turn) (string, error) {
	return c.generate(ctx, system, prompt, history, "")
}

// GenerateJSON asks the model for a JSON-only reply and unmarshals it into out.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string, out interface{}) error {
	text, err := c.generate(ctx, system, prompt, nil, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("gemini returned invalid JSON: %w", err)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, system, prompt string, history []Turn, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini API key not configured")
	}

	req := genRequest{
		Contents: make([]genContent, 0, len(history)+1),
		GenerationConfig: genConfig{
			Temperature:      1,
			TopP:             0.95,
			TopK:             64,
			MaxOutputTokens:  8192,
			ResponseMimeType: mimeType,
		},
	}
	if system != "" {
		req.SystemInstruction = &genContent{Parts: []genPart{{Text: system}}}
	}
	for _, turn := range history {
		req.Contents = append(req.Contents, genContent{Role: turn.Role, Parts: []genPart{{Text: turn.Text}}})
	}
	req.Contents = append(req.Contents, genContent{Role: "user", Parts: []genPart{{Text: prompt}}})

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed genResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, msg)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
