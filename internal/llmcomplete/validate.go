package llmcomplete

import (
	"context"
	"fmt"
)

// ValidationResult is the outcome of ValidateConfig. Message is for users; Details carries the technical error.
type ValidationResult struct {
	Success bool
	Message string
	Details string
}

// ValidateConfig runs CheckConfig and then one small live request (single attempt, no retry).
func (c *Client) ValidateConfig(ctx context.Context) ValidationResult {
	if err := c.CheckConfig(); err != nil {
		return ValidationResult{Message: UserMessage(err), Details: err.Error()}
	}

	reply, err := c.attempt(ctx, chatRequest{
		system:    "You are a connectivity check.",
		user:      "Reply with the single word OK.",
		model:     c.ep.model,
		maxTokens: 16,
	})
	if err != nil {
		return ValidationResult{Message: UserMessage(err), Details: err.Error()}
	}

	return ValidationResult{
		Success: true,
		Message: fmt.Sprintf("Connected to %s using model %s.", c.ep.provider.Name, c.ep.model),
		Details: "reply: " + CleanResponse(reply),
	}
}

// IsServiceAvailable reports whether the configuration is usable and the backend answers a model listing.
func (c *Client) IsServiceAvailable(ctx context.Context) bool {
	if c.CheckConfig() != nil {
		return false
	}
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}
	if err := c.sender.available(ctx); err != nil {
		c.cfg.Debug("service unavailable", "provider", c.ProviderID(), "err", err)
		return false
	}
	return true
}
