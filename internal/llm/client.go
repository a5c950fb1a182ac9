package llm

import (
	"context"
	"net/http"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Analyze sends prompt with the given system instructions and returns the
	// model's raw text response.
	Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

// Provider defaults.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 60 * time.Second
	DefaultRateLimit   = 30
)

// Config holds provider settings for NewClient.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// Endpoint overrides the provider URL. Required for the custom provider.
	Endpoint string
	// Temperature is nil for the provider default. An explicit zero is kept.
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
	// RateLimit is the number of requests allowed per minute.
	RateLimit int
}

func (c Config) withDefaults() Config {
	if c.Temperature == nil {
		c.Temperature = Float64(DefaultTemperature)
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	return c
}

func (c Config) temperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Float64 returns a pointer to v, for Config.Temperature.
func Float64(v float64) *float64 {
	return &v
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
