// Package aiclient wraps the OpenAI API with the retry and timeout policy
// shared by every stage: bounded exponential backoff on transient failures,
// immediate permanent failure on client errors.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"jamesfarrell.me/youtube-ai-helper/internal/config"
)

const (
	defaultRequestTimeout = 10 * time.Minute
	defaultMaxRetries     = 5
)

// Client is a thin wrapper over the OpenAI client carrying the model
// parameters from the configuration folder.
type Client struct {
	api            *openai.Client
	model          string
	maxTokens      int
	temperature    float32
	topP           float32
	requestTimeout time.Duration
	maxRetries     uint64
}

// Option adjusts client construction.
type Option func(*Client)

// WithRequestTimeout bounds each individual API attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// WithMaxRetries bounds retry attempts on transient failures.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// New builds a client from the run configuration. A missing API key is a
// configuration error reported before any work starts.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is missing (set OPENAI_API_KEY)")
	}
	c := &Client{
		api:            openai.NewClient(cfg.OpenAIAPIKey),
		model:          cfg.DefaultModel,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		topP:           cfg.TopP,
		requestTimeout: defaultRequestTimeout,
		maxRetries:     defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewWithAPI builds a client around an existing openai.Client. Tests use it
// with a client pointed at a fake server.
func NewWithAPI(api *openai.Client, cfg config.Config, opts ...Option) *Client {
	c := &Client{
		api:            api,
		model:          cfg.DefaultModel,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		topP:           cfg.TopP,
		requestTimeout: defaultRequestTimeout,
		maxRetries:     defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatCompletion submits messages with the configured model parameters and
// returns the assistant's reply. responseFormat may be nil for free text.
func (c *Client) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, responseFormat *openai.ChatCompletionResponseFormat) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:          c.model,
		Messages:       messages,
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		TopP:           c.topP,
		ResponseFormat: responseFormat,
	}

	var resp openai.ChatCompletionResponse
	err := c.retry(ctx, "chat completion", func(ctx context.Context) error {
		var err error
		resp, err = c.api.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe submits one audio file to the Whisper API.
func (c *Client) Transcribe(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	if req.Model == "" {
		req.Model = openai.Whisper1
	}
	var resp openai.AudioResponse
	err := c.retry(ctx, "transcription", func(ctx context.Context) error {
		var err error
		resp, err = c.api.CreateTranscription(ctx, req)
		return err
	})
	return resp, err
}

// Embedding converts text into an embedding vector.
func (c *Client) Embedding(ctx context.Context, text string) ([]float32, error) {
	var resp openai.EmbeddingResponse
	err := c.retry(ctx, "embedding", func(ctx context.Context) error {
		var err error
		resp, err = c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.AdaEmbeddingV2,
			Input: []string{text},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response carried no data")
	}
	return resp.Data[0].Embedding, nil
}

// retry runs op with a per-attempt timeout under exponential backoff.
// Non-transient API errors abort immediately.
func (c *Client) retry(ctx context.Context, what string, op func(context.Context) error) error {
	attempt := 0
	run := func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()

		err := op(attemptCtx)
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			slog.Warn("transient API failure, will retry",
				"operation", what, "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(run, policy); err != nil {
		return fmt.Errorf("%s failed after %d attempt(s): %w", what, attempt, err)
	}
	return nil
}

// IsTransient reports whether an API failure is worth retrying: rate limits,
// server errors, and timeouts. Client-side errors (bad request, bad key) are
// permanent.
func IsTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return true
		case apiErr.HTTPStatusCode >= 500:
			return true
		default:
			return false
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode >= 400 && reqErr.HTTPStatusCode < 500 && reqErr.HTTPStatusCode != http.StatusTooManyRequests {
			return false
		}
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// Network-level failures come back as plain errors from the HTTP client.
	return !errors.Is(err, context.Canceled)
}
