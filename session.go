package physiomath

import (
	"context"
	"sync/atomic"
)

// Session admits at most one generation at a time. A submission made while
// another is in flight fails at once with ErrBusy; it is not queued.
// Cancellation is left to the caller's context.
type Session struct {
	gen  *Generator
	busy atomic.Bool
}

// NewSession creates a Session generating with g.
func NewSession(g *Generator) *Session {
	return &Session{gen: g}
}

// Busy reports whether a generation is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// MineTheories runs Generator.MineTheories unless the session is busy.
func (s *Session) MineTheories(ctx context.Context, req Request) (*Report, error) {
	return s.run(func() (*Report, error) {
		return s.gen.MineTheories(ctx, req)
	})
}

// GenerateArticle runs Generator.GenerateArticle unless the session is busy.
func (s *Session) GenerateArticle(ctx context.Context, req Request) (*Report, error) {
	return s.run(func() (*Report, error) {
		return s.gen.GenerateArticle(ctx, req)
	})
}

func (s *Session) run(fn func() (*Report, error)) (*Report, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.gen.metrics.IncBusyRejection()
		return nil, ErrBusy
	}
	defer s.busy.Store(false)
	return fn()
}
