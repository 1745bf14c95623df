// Package textgen calls an OpenAI-compatible chat completion endpoint to
// rewrite rule-based advisories.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/weather-fusion-service/internal/observability"
)

const (
	defaultModel = "gpt-4o-mini"
	defaultBurst = 5

	systemPrompt = "You write short, friendly, factual weather advisories. " +
		"Answer with a single JSON object and nothing else."
)

var (
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("text generation circuit open")
	// ErrEmptyResponse is returned when the completion has no choices.
	ErrEmptyResponse = errors.New("no choices in completion")
)

// Config configures the proxy client.
type Config struct {
	APIKey  string
	BaseURL string // empty uses the OpenAI default
	Model   string
	Timeout time.Duration
	// RatePerMinute caps outgoing requests; <= 0 means unlimited.
	RatePerMinute int
}

// Client implements enhance.Generator with rate limiting and circuit breaking.
type Client struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a text-generation client.
func NewClient(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Limit(float64(cfg.RatePerMinute) / 60)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:          "textgen",
		MaxRequests:   5,
		Interval:      1 * time.Minute,
		Timeout:       2 * time.Minute,
		IsSuccessful:  countsAsSuccess,
		OnStateChange: logStateChange(logger),
	})

	return &Client{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		limiter: rate.NewLimiter(limit, defaultBurst),
		circuit: cb,
		metrics: metrics,
		logger:  logger,
	}
}

// Generate sends prompt as the user message and returns the first choice's content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.TextgenRequests.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   400,
			Temperature: 0.4,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.metrics.TextgenRequests.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	c.metrics.TextgenDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.TextgenRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("chat completion: %w", err)
	}

	content, _ := result.(string)
	c.metrics.TextgenRequests.WithLabelValues("success").Inc()
	c.logger.Debug("chat completion", "model", c.model, "chars", len(content), "duration", time.Since(start))
	return content, nil
}

// countsAsSuccess treats calls abandoned by the caller as neutral for proxy health.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func logStateChange(logger *slog.Logger) func(string, gobreaker.State, gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
	}
}
