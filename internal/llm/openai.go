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

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4-turbo-preview"
)

// openAIClient implements the Client interface for the OpenAI chat completions API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	endpoint    string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = openAIEndpoint
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		endpoint:    endpoint,
		temperature: cfg.temperature(),
		maxTokens:   cfg.MaxTokens,
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
		Index        int           `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}

// Analyze sends a chat completion request and returns the first choice's content.
func (c *openAIClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	messages := make([]openAIMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt})

	jsonBody, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
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
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}
