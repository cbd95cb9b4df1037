package server

import (
	"math/big"
	"testing"
	"time"

	"github.com/leapstack-labs/leapquery/pkg/wire"
	"github.com/stretchr/testify/assert"
)

type decimal struct{ f float64 }

func (d decimal) Float64() float64 { return d.f }

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		dbType string
		want   wire.Value
	}{
		{"nil", nil, "INTEGER", wire.Null{}},
		{"int", int64(5), "BIGINT", wire.Int(5)},
		{"int32", int32(5), "INTEGER", wire.Int(5)},
		{"string", "x", "VARCHAR", wire.Text("x")},
		{"bool", true, "BOOLEAN", wire.Bool(true)},
		{"float", 1.5, "DOUBLE", wire.Float(1.5)},
		{"decimal", decimal{2.25}, "DECIMAL(10,2)", wire.Float(2.25)},
		{"hugeint", new(big.Int).Lsh(big.NewInt(1), 100), "HUGEINT", wire.BigInt{V: new(big.Int).Lsh(big.NewInt(1), 100)}},
		{
			"date",
			time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
			"DATE",
			wire.Object{{Name: "days", Value: wire.Int(2)}},
		},
		{
			"date before epoch",
			time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC),
			"DATE",
			wire.Object{{Name: "days", Value: wire.Int(-1)}},
		},
		{
			"timestamp",
			time.Date(1970, 1, 1, 0, 0, 1, 500, time.UTC),
			"TIMESTAMP",
			wire.Object{{Name: "micros", Value: wire.Text("1000000")}},
		},
		{"blob", []byte("hi"), "BLOB", wire.Text("aGk=")},
		{"bytea", []byte("hi"), "BYTEA", wire.Text("aGk=")},
		{"text bytes", []byte("hi"), "TEXT", wire.Text("hi")},
		{
			"uuid",
			[]byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00},
			"UUID",
			wire.Text("123e4567-e89b-12d3-a456-426614174000"),
		},
		{
			"list",
			[]any{int32(1), nil},
			"INTEGER[]",
			wire.Array{wire.Int(1), wire.Null{}},
		},
		{
			"struct",
			map[string]any{"b": "x", "a": int64(1)},
			"STRUCT(a BIGINT, b VARCHAR)",
			wire.Object{{Name: "a", Value: wire.Int(1)}, {Name: "b", Value: wire.Text("x")}},
		},
		{
			"map with non-string keys",
			map[any]any{int32(2): "two", int32(1): "one"},
			"MAP(INTEGER, VARCHAR)",
			wire.Object{{Name: "1", Value: wire.Text("one")}, {Name: "2", Value: wire.Text("two")}},
		},
		{"unsupported falls back to text", struct{ A int }{1}, "STRUCT", wire.Text("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeValue(tt.value, tt.dbType))
		})
	}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(1), floorDiv(86400, 86400))
	assert.Equal(t, int64(0), floorDiv(86399, 86400))
	assert.Equal(t, int64(-1), floorDiv(-1, 86400))
	assert.Equal(t, int64(-1), floorDiv(-86400, 86400))
}
