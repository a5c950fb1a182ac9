package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Veraticus/ledgerguard/internal/common"
)

const customDefaultModel = "gpt-3.5-turbo"

// customClient talks to a self-hosted endpoint that accepts {"prompt", "model"}
// and answers with {"content"} or {"response"}.
type customClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string
}

func newCustomClient(cfg Config) (*customClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: custom provider requires an endpoint", common.ErrMissingConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: custom provider API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = customDefaultModel
	}

	return &customClient{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   cfg.Endpoint,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

type customRequest struct {
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Model  string `json:"model"`
}

type customResponse struct {
	Content  string `json:"content"`
	Response string `json:"response"`
}

// Analyze posts the prompt and returns the content or response field.
func (c *customClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	jsonBody, err := json.Marshal(customRequest{
		Prompt: prompt,
		System: systemPrompt,
		Model:  c.model,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return "", fmt.Errorf("custom API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response customResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Content != "" {
		return response.Content, nil
	}
	if response.Response != "" {
		return response.Response, nil
	}
	return "", fmt.Errorf("custom API returned neither content nor response: %w", common.ErrEmptyResponse)
}
