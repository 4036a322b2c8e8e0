// Package oracle provides ScoringOracle adapters backed by hosted language models.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/example/pulse/internal/ports/secondary"
)

const (
	defaultAnthropicModel = "claude-3-5-haiku-20241022"
	defaultMaxRetries     = 3
	initialBackoff        = 1 * time.Second
	maxTokens             = 1024
)

// ErrAPIKeyRequired is returned when an API key is needed but not provided.
var ErrAPIKeyRequired = errors.New("API key required")

// Options configures an oracle client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
}

// AnthropicOracle scores check-ins with the Anthropic Messages API.
type AnthropicOracle struct {
	client         anthropic.Client
	model          anthropic.Model
	maxRetries     int
	initialBackoff time.Duration
}

// NewAnthropicOracle creates a new Anthropic-backed oracle.
func NewAnthropicOracle(opts Options) (*AnthropicOracle, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: set oracle.api_key or ANTHROPIC_API_KEY", ErrAPIKeyRequired)
	}

	// Retries are ours; the SDK's own retry loop is disabled so attempts are counted once.
	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}

	return &AnthropicOracle{
		client:         anthropic.NewClient(clientOpts...),
		model:          anthropic.Model(model),
		maxRetries:     retries,
		initialBackoff: initialBackoff,
	}, nil
}

// Score sends the prompt and returns the first text block of the reply.
func (o *AnthropicOracle) Score(ctx context.Context, req secondary.OracleRequest) (*secondary.OracleReply, error) {
	text, err := o.callWithRetry(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}
	return &secondary.OracleReply{Text: text, Model: string(o.model)}, nil
}

func (o *AnthropicOracle) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	params := anthropic.MessageNewParams{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, o.initialBackoff, attempt); err != nil {
				return "", err
			}
		}

		message, err := o.client.Messages.New(ctx, params)
		if err == nil {
			if len(message.Content) == 0 {
				return "", fmt.Errorf("unexpected response format: no content blocks")
			}
			content := message.Content[0]
			if content.Type != "text" {
				return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
			}
			return content.Text, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if !isRetryable(err) {
			return "", fmt.Errorf("non-retryable error: %w", err)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", o.maxRetries+1, lastErr)
}

func sleepBackoff(ctx context.Context, base time.Duration, attempt int) error {
	backoff := base * time.Duration(math.Pow(2, float64(attempt-1)))
	select {
	case <-time.After(backoff):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}

// Ensure AnthropicOracle implements the interface
var _ secondary.ScoringOracle = (*AnthropicOracle)(nil)
