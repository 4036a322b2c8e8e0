package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/example/pulse/internal/ports/secondary"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiOracle scores check-ins with the Gemini API.
type GeminiOracle struct {
	client         *genai.Client
	model          string
	maxRetries     int
	initialBackoff time.Duration
}

// NewGeminiOracle creates a new Gemini-backed oracle.
func NewGeminiOracle(ctx context.Context, opts Options) (*GeminiOracle, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: set oracle.api_key or GEMINI_API_KEY", ErrAPIKeyRequired)
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}

	return &GeminiOracle{
		client:         client,
		model:          model,
		maxRetries:     retries,
		initialBackoff: initialBackoff,
	}, nil
}

// Score sends the prompt and returns the concatenated text of the first candidate.
func (o *GeminiOracle) Score(ctx context.Context, req secondary.OracleRequest) (*secondary.OracleReply, error) {
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, o.initialBackoff, attempt); err != nil {
				return nil, err
			}
		}

		resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(req.Prompt), nil)
		if err == nil {
			text := resp.Text()
			if strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("unexpected response format: empty text")
			}
			return &secondary.OracleReply{Text: text, Model: o.model}, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if !isRetryableGemini(err) {
			return nil, fmt.Errorf("non-retryable error: %w", err)
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", o.maxRetries+1, lastErr)
}

func isRetryableGemini(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return isRetryable(err)
}

// Ensure GeminiOracle implements the interface
var _ secondary.ScoringOracle = (*GeminiOracle)(nil)
