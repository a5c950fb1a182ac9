package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/ledgerguard/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantModel string
		wantErr   bool
	}{
		{
			name:      "valid config",
			config:    Config{APIKey: "test-key"},
			wantModel: openAIDefaultModel,
		},
		{
			name:    "missing API key",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "gpt-4",
				Temperature: Float64(0.5),
				MaxTokens:   200,
			},
			wantModel: "gpt-4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config.withDefaults())
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrMissingConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, client.model)
			assert.Equal(t, openAIEndpoint, client.endpoint)
			assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
		})
	}
}

func openAIReply(content string) openAIResponse {
	var resp openAIResponse
	resp.Choices = append(resp.Choices, struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
		Index        int           `json:"index"`
	}{Message: openAIMessage{Role: "assistant", Content: content}, FinishReason: "stop"})
	return resp
}

func TestOpenAIClient_Analyze(t *testing.T) {
	tests := []struct {
		name       string
		response   any
		want       string
		statusCode int
		wantErr    bool
	}{
		{
			name:       "successful analysis",
			response:   openAIReply(`{"document_type":"credit_card"}`),
			statusCode: http.StatusOK,
			want:       `{"document_type":"credit_card"}`,
		},
		{
			name:       "no choices",
			response:   openAIResponse{},
			statusCode: http.StatusOK,
			wantErr:    true,
		},
		{
			name:       "API error",
			response:   map[string]any{"error": map[string]string{"message": "rate limited"}},
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received openAIRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

				w.WriteHeader(tt.statusCode)
				_ = json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{
				APIKey:   "test-key",
				Endpoint: server.URL + "/v1/chat/completions",
			}.withDefaults())
			require.NoError(t, err)

			got, err := client.Analyze(context.Background(), "文件內容", "system instructions")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.Len(t, received.Messages, 2)
			assert.Equal(t, "system", received.Messages[0].Role)
			assert.Equal(t, "system instructions", received.Messages[0].Content)
			assert.Equal(t, "文件內容", received.Messages[1].Content)
			assert.InDelta(t, DefaultTemperature, received.Temperature, 0.0001)
			assert.Equal(t, DefaultMaxTokens, received.MaxTokens)
		})
	}
}

func TestOpenAIClient_OmitsEmptySystemPrompt(t *testing.T) {
	var received openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(openAIReply("summary"))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", Endpoint: server.URL}.withDefaults())
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.Len(t, received.Messages, 1)
	assert.Equal(t, "user", received.Messages[0].Role)
}

func TestOpenAIClient_SendsExplicitZeroTemperature(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(openAIReply("ok"))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", Endpoint: server.URL, Temperature: Float64(0)}.withDefaults())
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	assert.Equal(t, float64(0), received["temperature"])
}
