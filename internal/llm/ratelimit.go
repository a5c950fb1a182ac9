package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// rateLimitedClient gates every call on a token bucket before delegating.
type rateLimitedClient struct {
	next    Client
	limiter *rate.Limiter
}

// newRateLimitedClient allows requestsPerMinute calls per minute with a burst of one.
func newRateLimitedClient(next Client, requestsPerMinute int) *rateLimitedClient {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRateLimit
	}
	return &rateLimitedClient{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// Analyze waits for a token and forwards the call.
func (c *rateLimitedClient) Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter canceled: %w", err)
	}
	return c.next.Analyze(ctx, prompt, systemPrompt)
}
