package result

import (
	"context"
	"iter"

	"github.com/leapstack-labs/leapquery/pkg/wire"
)

// Stream yields the rows of a Result one at a time.
//
// All rows are fetched and decoded before the first one is yielded; the
// stream only replays a buffer. It exists for callers written against an
// iterator contract.
type Stream struct {
	result *Result
	pos    int
	err    error
	closed bool
}

// Columns returns the column names.
func (s *Stream) Columns() []string {
	return s.result.ColumnNames()
}

// Next advances to the next row. It returns false when the rows are
// exhausted, the stream is closed, or ctx is done; in the last case Err
// reports the context error.
func (s *Stream) Next(ctx context.Context) bool {
	if s.closed || s.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.pos+1 >= len(s.result.rows) {
		s.pos = len(s.result.rows)
		return false
	}
	s.pos++
	return true
}

// Row returns the current row. It is only valid after Next returned true.
func (s *Stream) Row() []wire.Value {
	if s.pos < 0 || s.pos >= len(s.result.rows) {
		return nil
	}
	return s.result.rows[s.pos]
}

// Err returns the error that stopped iteration, if any.
func (s *Stream) Err() error {
	return s.err
}

// Close stops iteration. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// All returns an iterator over the remaining rows and their indexes.
func (s *Stream) All(ctx context.Context) iter.Seq2[int, []wire.Value] {
	return func(yield func(int, []wire.Value) bool) {
		for s.Next(ctx) {
			if !yield(s.pos, s.Row()) {
				return
			}
		}
	}
}
