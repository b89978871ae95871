// Package openai implements the completion client against the OpenAI
// chat completions API (or any compatible endpoint).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gatechat/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatechat_provider_retries_total",
	Help: "Provider attempts beyond the first, across all requests.",
})

// Config holds provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	// MaxRetries is the total attempt budget, not the count of retries
	// after the first try. Zero means the default of 3.
	MaxRetries int
}

// Client calls the completion API with retry and failure classification.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

var _ domain.CompletionClient = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithSleep substitutes the backoff delay mechanism, letting tests drive
// the retry loop without real waiting.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(cl *Client) { cl.sleep = fn }
}

// New creates a completion client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	c := &Client{
		cfg: cfg,
		// A hung provider must not pin a handler past the retry budget.
		httpClient: &http.Client{Timeout: 60 * time.Second},
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// --- API request/response types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []domain.Turn `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete requests one assistant reply for the message sequence,
// retrying transient provider failures per the backoff policy.
func (c *Client) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			retriesTotal.Inc()
		}

		reply, err := c.attempt(ctx, turns)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		d := classify(err, attempt, c.cfg.MaxRetries)
		if d.terminal {
			return "", d.err
		}
		if d.delay > 0 {
			if err := c.sleep(ctx, d.delay); err != nil {
				return "", err
			}
		}
	}
	// Unreachable when classify is exhaustive, kept for safety.
	return "", fmt.Errorf("%w: %v", domain.ErrProvider, lastErr)
}

// attempt performs one HTTP round trip. Non-2xx responses come back as
// *statusError so the retry policy can classify them.
func (c *Client) attempt(ctx context.Context, turns []domain.Turn) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    turns,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newStatusError(resp)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("provider: %s: %s", cr.Error.Type, cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

// statusError carries the HTTP status of a failed provider call.
type statusError struct {
	status  int
	message string
}

func newStatusError(resp *http.Response) *statusError {
	msg := resp.Status
	var body chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Error != nil {
		msg = body.Error.Message
	}
	return &statusError{status: resp.StatusCode, message: msg}
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider HTTP %d: %s", e.status, e.message)
}
