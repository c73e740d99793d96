// Package llmcomplete generates comment text for one documentation task by sending a chat completion to an OpenAI-compatible backend. It owns provider
// resolution, the error taxonomy, bounded retry with exponential backoff, and cleanup of the model's reply.
//
// It purposefully does only this one thing: there is no conversation state, streaming, or tool support.
package llmcomplete

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/codalotl/autodoc/internal/metrics"
	"github.com/codalotl/autodoc/internal/prompt"
	"github.com/codalotl/autodoc/internal/q/health"
	"github.com/codalotl/autodoc/internal/task"
)

const (
	DefaultMaxRetries  = 3
	DefaultBaseWait    = time.Second
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.2
)

// Config selects a provider and tunes requests. Zero values of MaxRetries, BaseWait, and MaxTokens mean the defaults.
type Config struct {
	health.Ctx

	Provider string // catalog ID; "" means DefaultProviderID
	Model    string // "" means the provider's default model
	BaseURL  string // overrides the provider's URL
	APIKey   string // overrides the provider's key env var

	Temperature float64
	MaxTokens   int

	MaxRetries int           // total attempts per Generate call
	BaseWait   time.Duration // wait after the first failed attempt; doubles each time

	RequestTimeout    time.Duration // per attempt; 0 means none
	RequestsPerMinute int           // client-side throttle; 0 means none

	HTTPClient *http.Client // optional; mainly for tests
	Metrics    *metrics.Metrics
}

// Request is the input of one generation.
type Request struct {
	Snippet         string
	Kind            task.Kind
	Language        string
	CommentLanguage string
}

// Client generates comments. It is safe for sequential use; a run uses one Client from one goroutine.
type Client struct {
	cfg     Config
	ep      endpoint
	epErr   error
	sender  sender
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// New builds a Client. Configuration problems are not returned here; they surface from CheckConfig and from every Generate call.
func New(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseWait == 0 {
		cfg.BaseWait = DefaultBaseWait
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	c := &Client{cfg: cfg, sleep: sleepCtx}
	c.ep, c.epErr = resolveEndpoint(cfg)
	if c.epErr == nil {
		_, f, _ := factoryFor(cfg.Provider)
		c.sender = f(c.ep)
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// ProviderID is the resolved provider ("" if the provider is unknown).
func (c *Client) ProviderID() string {
	return string(c.ep.provider.ID)
}

// Model is the resolved model ("" if configuration failed).
func (c *Client) Model() string {
	return c.ep.model
}

// CheckConfig runs the local checks only: known provider, usable base URL, API key present when required, model set, sane numeric limits. It never touches the
// network.
func (c *Client) CheckConfig() error {
	if c.epErr != nil {
		return c.epErr
	}
	switch {
	case c.cfg.MaxRetries < 1:
		return configErr(fmt.Sprintf("max retries must be at least 1, got %d", c.cfg.MaxRetries))
	case c.cfg.BaseWait < 0:
		return configErr("base wait must not be negative")
	case c.cfg.MaxTokens < 1:
		return configErr(fmt.Sprintf("max tokens must be positive, got %d", c.cfg.MaxTokens))
	case c.cfg.Temperature < 0 || c.cfg.Temperature > 2:
		return configErr(fmt.Sprintf("temperature must be within [0, 2], got %g", c.cfg.Temperature))
	case c.cfg.RequestTimeout < 0:
		return configErr("request timeout must not be negative")
	}
	return nil
}

// Generate returns the cleaned comment text for req. Retryable failures are retried up to MaxRetries attempts in total, waiting BaseWait*2^(n-1) after failed
// attempt n. The wait blocks the calling goroutine but ends early if ctx is done.
//
// Errors are *Error (with Attempts set), ErrEmptyGeneration, or a prompt rendering error.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.CheckConfig(); err != nil {
		return "", c.cfg.LogErr(err)
	}

	data := prompt.Data{Language: req.Language, CommentLanguage: req.CommentLanguage, Snippet: req.Snippet}
	system, err := prompt.System(data)
	if err != nil {
		return "", c.cfg.LogWrappedErr("llmcomplete: system prompt", err)
	}
	user, err := prompt.User(req.Kind, data)
	if err != nil {
		return "", c.cfg.LogWrappedErr("llmcomplete: user prompt", err, "kind", req.Kind)
	}

	c.cfg.Debug("generation request",
		"provider", c.ProviderID(),
		"model", c.ep.model,
		"kind", req.Kind,
		"prompt_tokens", CountTokens(system)+CountTokens(user),
	)

	chat := chatRequest{
		system:      system,
		user:        user,
		model:       c.ep.model,
		temperature: c.cfg.Temperature,
		maxTokens:   c.cfg.MaxTokens,
	}

	var lastErr *Error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		reply, err := c.attempt(ctx, chat)
		if err == nil {
			c.cfg.Debug("generation response", "attempt", attempt, "multiline", reply.text)
			if reply.refusal != "" {
				c.cfg.Warn("model refused", "provider", c.ProviderID(), "refusal", reply.refusal)
			}
			text := CleanResponse(reply.text)
			if text == "" {
				return "", ErrEmptyGeneration
			}
			return text, nil
		}

		lastErr = classify(err, nil)
		lastErr.Attempts = attempt
		if !lastErr.Kind.Retryable() || attempt == c.cfg.MaxRetries {
			break
		}

		wait := c.cfg.BaseWait << (attempt - 1)
		c.cfg.Warn("retrying generation", "attempt", attempt, "kind", lastErr.Kind.String(), "wait", wait, "err", lastErr.Error())
		c.cfg.Metrics.RecordRetry(lastErr.Kind.String())
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	return "", c.cfg.LogErr(lastErr, "provider", c.ProviderID())
}

// attempt sends one request, honoring the throttle and the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, req chatRequest) (chatReply, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return chatReply{}, err
		}
	}
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.sender.send(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	c.cfg.Metrics.RecordRequest(c.ProviderID(), outcome, time.Since(start))
	return reply, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
