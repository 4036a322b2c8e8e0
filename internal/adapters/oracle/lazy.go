package oracle

import (
	"context"
	"sync"

	"github.com/example/pulse/internal/ports/secondary"
)

// Builder constructs a ScoringOracle.
type Builder func(ctx context.Context) (secondary.ScoringOracle, error)

// LazyOracle defers building its oracle until the first Score call, so
// commands that never score do not need credentials. A failed build is
// retried on the next call.
type LazyOracle struct {
	build Builder

	mu     sync.Mutex
	oracle secondary.ScoringOracle
}

// NewLazyOracle wraps build.
func NewLazyOracle(build Builder) *LazyOracle {
	return &LazyOracle{build: build}
}

// Score builds the oracle if needed and delegates to it.
func (l *LazyOracle) Score(ctx context.Context, req secondary.OracleRequest) (*secondary.OracleReply, error) {
	o, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return o.Score(ctx, req)
}

func (l *LazyOracle) get(ctx context.Context) (secondary.ScoringOracle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.oracle != nil {
		return l.oracle, nil
	}
	o, err := l.build(ctx)
	if err != nil {
		return nil, err
	}
	l.oracle = o
	return o, nil
}

// Ensure LazyOracle implements the interface
var _ secondary.ScoringOracle = (*LazyOracle)(nil)
