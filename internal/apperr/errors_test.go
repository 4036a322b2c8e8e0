package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"authentication", Authentication("no principal"), KindAuthentication},
		{"authorization", Authorization("not a manager"), KindAuthorization},
		{"not found", NotFound("staff %s not found", "STAFF-001"), KindNotFound},
		{"conflict", Conflict("race lost"), KindConflict},
		{"validation", Validation("empty body"), KindValidation},
		{"upstream", Upstream(errors.New("timeout"), "oracle unavailable"), KindUpstream},
		{"parse", Parse("no json object"), KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if got := KindOf(wrapped); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream(cause, "oracle call failed")

	if !errors.Is(err, cause) {
		t.Error("expected cause to remain in the error chain")
	}
	if err.Error() != "oracle call failed: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsRetriable(t *testing.T) {
	if !IsRetriable(Parse("bad reply")) {
		t.Error("parse errors should be retriable")
	}
	if !IsRetriable(Upstream(nil, "down")) {
		t.Error("upstream errors should be retriable")
	}
	if IsRetriable(Validation("bad")) {
		t.Error("validation errors should not be retriable")
	}
	if IsRetriable(errors.New("plain")) {
		t.Error("unclassified errors should not be retriable")
	}
}
