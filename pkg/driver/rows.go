package driver

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"

	"github.com/leapstack-labs/leapquery/pkg/wire"
)

type resultSet struct {
	columns []string
	rows    [][]wire.Value
}

type rows struct {
	set *resultSet
	pos int
}

var _ driver.Rows = (*rows)(nil)

func newRows(set *resultSet) *rows {
	return &rows{set: set}
}

func (r *rows) Columns() []string { return r.set.columns }

func (r *rows) Close() error {
	r.pos = len(r.set.rows)
	return nil
}

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.set.rows) {
		return io.EOF
	}
	row := r.set.rows[r.pos]
	r.pos++

	for i := range dest {
		if i >= len(row) {
			dest[i] = nil
			continue
		}
		v, err := driverValue(row[i])
		if err != nil {
			return fmt.Errorf("column %q: %w", r.set.columns[i], err)
		}
		dest[i] = v
	}
	return nil
}

// driverValue maps a wire value onto the types database/sql understands.
// Arrays and objects become their JSON encoding; integers too large for
// int64 become decimal strings.
func driverValue(v wire.Value) (driver.Value, error) {
	switch t := v.(type) {
	case nil, wire.Null:
		return nil, nil
	case wire.Bool:
		return bool(t), nil
	case wire.Int:
		return int64(t), nil
	case wire.BigInt:
		if t.V == nil {
			return nil, nil
		}
		return t.V.String(), nil
	case wire.Float:
		return float64(t), nil
	case wire.Text:
		return string(t), nil
	case wire.Bytes:
		return []byte(t), nil
	case wire.Time:
		return t.Time, nil
	case wire.Array, wire.Object:
		return json.Marshal(t)
	}
	return nil, fmt.Errorf("unsupported wire value %T", v)
}
