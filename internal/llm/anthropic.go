package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/common"
)

const (
	anthropicEndpoint     = "https://api.anthropic.com/v1/messages"
	anthropicDefaultModel = "claude-3-sonnet-20240229"
	anthropicVersion      = "2023-06-01"
)

// anthropicClient implements the Client interface for the Anthropic messages API.
type anthropicClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	endpoint    string
	temperature float64
	maxTokens   int
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = anthropicEndpoint
	}

	return &anthropicClient{
		apiKey:      cfg.APIKey,
		model:       model,
		endpoint:    endpoint,
		temperature: cfg.temperature(),
		maxTokens:   cfg.MaxTokens,
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

type anthropicRequest struct {
	Model       string              `json:"model"`
	System      string              `json:"system,omitempty"`
	Messages    []map[string]string `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type anthropicResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Role         string `json:"role"`
	Model        string `json:"model"`
	StopReason   string `json:"stop_reason"`
	StopSequence string `json:"stop_sequence"`
	Content      []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Analyze sends a messages request and returns the concatenated text blocks.
func (c *anthropicClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	jsonBody, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		System:      systemPrompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" || block.Type == "" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return text.String(), nil
}
