package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/ledgerguard/internal/common"
)

// Provider names accepted by NewClient.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderClaude    = "claude"
	ProviderCustom    = "custom"
)

// Providers lists the accepted provider names.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderClaude, ProviderCustom}
}

// NewClient creates a rate-limited LLM client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	cfg = cfg.withDefaults()

	var (
		client Client
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		client, err = newOpenAIClient(cfg)
	case ProviderAnthropic, ProviderClaude:
		client, err = newAnthropicClient(cfg)
	case ProviderCustom:
		client, err = newCustomClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return newRateLimitedClient(client, cfg.RateLimit), nil
}
