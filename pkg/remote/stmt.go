package remote

import (
	"context"
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/result"
	"github.com/leapstack-labs/leapquery/pkg/wire"
)

// Stmt is a query template with bound parameter values. Each Run substitutes
// the current binding and sends the query through the owning Conn.
//
// A Stmt is not safe for concurrent use.
type Stmt struct {
	conn      *Conn
	query     string
	bound     []wire.Value
	destroyed bool
}

// Query returns the template text.
func (s *Stmt) Query() string { return s.query }

// Bound returns a copy of the current binding.
func (s *Stmt) Bound() []wire.Value { return slices.Clone(s.bound) }

// Bind replaces the bound values. If any value cannot be converted the
// previous binding is kept.
func (s *Stmt) Bind(values ...any) error {
	if s.destroyed {
		return ErrStatementDestroyed
	}
	converted, err := wire.FromAnySlice(values)
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	s.bound = converted
	return nil
}

// Run executes the statement with its current binding.
func (s *Stmt) Run(ctx context.Context) (*result.Result, error) {
	if s.destroyed {
		return nil, ErrStatementDestroyed
	}
	return s.conn.execute(ctx, s.query, s.bound)
}

// Stream executes the statement and returns a stream over its rows.
func (s *Stmt) Stream(ctx context.Context) (*result.Stream, error) {
	res, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return res.Stream(), nil
}

// DestroySync releases the binding. Later Bind, Run and Stream calls fail with
// ErrStatementDestroyed.
func (s *Stmt) DestroySync() {
	s.destroyed = true
	s.bound = nil
}
