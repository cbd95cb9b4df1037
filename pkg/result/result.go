// Package result turns the engine's row objects into column-aligned typed
// rows.
package result

import (
	"slices"
	"strconv"

	"github.com/leapstack-labs/leapquery/pkg/wire"
)

// Result is a fully materialized query result. Every row has exactly one
// value per column.
type Result struct {
	columns []string
	rows    [][]wire.Value
}

// Translate aligns rows to columns, filling absent fields with Null and
// passing every cell through TransformValue.
func Translate(columns []string, rows []wire.Object) *Result {
	cols := make([]string, len(columns))
	copy(cols, columns)
	out := make([][]wire.Value, len(rows))

	for i, obj := range rows {
		row := make([]wire.Value, len(cols))
		for j, col := range cols {
			v, ok := obj.Get(col)
			if !ok || v == nil {
				row[j] = wire.Null{}
				continue
			}
			row[j] = TransformValue(v)
		}
		out[i] = row
	}

	return &Result{columns: cols, rows: out}
}

// ColumnNames returns the column names as the engine reported them.
func (r *Result) ColumnNames() []string {
	return slices.Clone(r.columns)
}

// DeduplicatedColumnNames returns the column names with repeats made unique:
// the second occurrence of a name gets the suffix _1, the third _2, and so on.
func (r *Result) DeduplicatedColumnNames() []string {
	return Deduplicate(r.columns)
}

// Deduplicate suffixes repeated names with their occurrence index.
func Deduplicate(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		n := seen[name]
		if n == 0 {
			out[i] = name
		} else {
			out[i] = name + "_" + strconv.Itoa(n)
		}
		seen[name] = n + 1
	}
	return out
}

// Rows returns every row.
func (r *Result) Rows() [][]wire.Value {
	return r.rows
}

// Row returns row i.
func (r *Result) Row(i int) []wire.Value {
	return r.rows[i]
}

// RowCount returns the number of rows.
func (r *Result) RowCount() int {
	return len(r.rows)
}

// Maps returns each row as an object keyed by the deduplicated column names.
func (r *Result) Maps() []wire.Object {
	names := r.DeduplicatedColumnNames()
	out := make([]wire.Object, len(r.rows))
	for i, row := range r.rows {
		obj := make(wire.Object, len(names))
		for j, name := range names {
			obj[j] = wire.Field{Name: name, Value: row[j]}
		}
		out[i] = obj
	}
	return out
}

// Stream returns a row iterator over the already materialized rows.
func (r *Result) Stream() *Stream {
	return &Stream{result: r, pos: -1}
}
