package provider

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrChainExhausted is returned when every provider in the chain failed or
// none is configured. Callers are expected to fall back to a local responder.
var ErrChainExhausted = errors.New("all generation providers failed")

const systemPrompt = "You are a mental health support system. Respond with " +
	"specific, actionable guidance. Reference the user's exact words. " +
	"Never use think blocks or meta-commentary."

// Chain tries generation providers in a fixed configured order. Each attempt
// runs under its own timeout; any failure advances to the next provider.
type Chain struct {
	providers      []Provider
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// NewChain creates a fallback chain over the given providers, tried in order.
func NewChain(providers []Provider, attemptTimeout time.Duration, logger *zap.Logger) *Chain {
	if attemptTimeout <= 0 {
		attemptTimeout = 20 * time.Second
	}
	return &Chain{
		providers:      providers,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Len returns the number of configured providers.
func (c *Chain) Len() int { return len(c.providers) }

// Health probes every provider in the chain and reports per-provider
// status, "ok" or the failure message.
func (c *Chain) Health(ctx context.Context) map[string]string {
	out := make(map[string]string, len(c.providers))
	for _, p := range c.providers {
		checkCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		err := p.HealthCheck(checkCtx)
		cancel()
		if err != nil {
			out[p.ID()] = err.Error()
			continue
		}
		out[p.ID()] = "ok"
	}
	return out
}

// Generate resolves a completion for the prompt through the chain.
// Returns ErrChainExhausted when no provider produced a usable reply.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	req := &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	}

	for _, p := range c.providers {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		resp, err := p.Chat(attemptCtx, req)
		cancel()
		if err != nil {
			c.logger.Warn("generation provider failed, advancing chain",
				zap.String("provider", p.ID()), zap.Error(err))
			continue
		}
		return resp.Content, nil
	}
	return "", ErrChainExhausted
}
