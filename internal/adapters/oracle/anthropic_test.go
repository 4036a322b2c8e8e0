package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pulse/internal/ports/secondary"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

const messageReply = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-test",
	"content": [{"type": "text", "text": "{\"score\":\"green\",\"blocker\":\"NONE\",\"reason\":\"r\",\"message\":\"m\",\"nextStep\":\"n\"}"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 10, "output_tokens": 20}
}`

const overloadedReply = `{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicOracle {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	o, err := NewAnthropicOracle(Options{APIKey: "test-key", Model: "claude-test", BaseURL: srv.URL, MaxRetries: 2})
	require.NoError(t, err)
	o.initialBackoff = time.Millisecond
	return o
}

func TestNewAnthropicOracle_RequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicOracle(Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPIKeyRequired))
}

func TestAnthropicOracle_Score(t *testing.T) {
	o := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, messageReply)
	})

	reply, err := o.Score(context.Background(), secondary.OracleRequest{CheckInID: "CHK-1", Prompt: "score this"})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, `"score":"green"`)
	assert.Equal(t, "claude-test", reply.Model)
}

func TestAnthropicOracle_RetriesOverloaded(t *testing.T) {
	var calls atomic.Int32
	o := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, overloadedReply)
			return
		}
		fmt.Fprint(w, messageReply)
	})

	_, err := o.Score(context.Background(), secondary.OracleRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAnthropicOracle_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	o := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, overloadedReply)
	})

	_, err := o.Score(context.Background(), secondary.OracleRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestAnthropicOracle_DoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	o := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	})

	_, err := o.Score(context.Background(), secondary.OracleRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-retryable")
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropicOracle_ContextCancellation(t *testing.T) {
	o, err := NewAnthropicOracle(Options{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = o.Score(ctx, secondary.OracleRequest{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"generic error", errors.New("some error"), false},
		{"timeout error", timeoutErr{}, true},
		{"anthropic 429", &anthropic.Error{StatusCode: 429}, true},
		{"anthropic 529", &anthropic.Error{StatusCode: 529}, true},
		{"anthropic 400", &anthropic.Error{StatusCode: 400}, false},
		{"wrapped timeout", fmt.Errorf("wrap: %w", timeoutErr{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetryable(tt.err))
		})
	}
}
