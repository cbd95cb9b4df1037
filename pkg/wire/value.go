// Package wire defines Value, the closed set of values exchanged with the
// query engine: bound parameters on the way out and decoded cells on the way
// back.
//
// Value is a sealed interface. Every implementation lives in this package, so
// a type switch over Null, Bool, Int, BigInt, Float, Text, Bytes, Time, Array
// and Object is exhaustive.
package wire

import (
	"math/big"
	"time"
)

// Kind identifies the variant of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindBigInt
	KindFloat
	KindText
	KindBytes
	KindTime
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindBigInt: "bigint",
	KindFloat:  "float",
	KindText:   "text",
	KindBytes:  "bytes",
	KindTime:   "time",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is one wire value.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is SQL NULL / JSON null.
type Null struct{}

// Bool is a boolean.
type Bool bool

// Int is an integer that fits in 64 bits.
type Int int64

// BigInt is an integer outside the int64 range.
type BigInt struct {
	V *big.Int
}

// Float is a double precision number.
type Float float64

// Text is a string.
type Text string

// Bytes is binary data.
type Bytes []byte

// Time is a point in time.
type Time struct {
	time.Time
}

// Array is an ordered list of values.
type Array []Value

// Field is one named member of an Object.
type Field struct {
	Name  string
	Value Value
}

// Object is a keyed record that keeps the order its fields were decoded or
// built in.
type Object []Field

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (BigInt) Kind() Kind { return KindBigInt }
func (Float) Kind() Kind  { return KindFloat }
func (Text) Kind() Kind   { return KindText }
func (Bytes) Kind() Kind  { return KindBytes }
func (Time) Kind() Kind   { return KindTime }
func (Array) Kind() Kind  { return KindArray }
func (Object) Kind() Kind { return KindObject }

func (Null) sealed()   {}
func (Bool) sealed()   {}
func (Int) sealed()    {}
func (BigInt) sealed() {}
func (Float) sealed()  {}
func (Text) sealed()   {}
func (Bytes) sealed()  {}
func (Time) sealed()   {}
func (Array) sealed()  {}
func (Object) sealed() {}

// NewTime wraps t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// NewBigInt wraps a copy of n, collapsing it to Int when it fits.
func NewBigInt(n *big.Int) Value {
	if n.IsInt64() {
		return Int(n.Int64())
	}
	return BigInt{V: new(big.Int).Set(n)}
}

// Get returns the value of the first field called name.
func (o Object) Get(name string) (Value, bool) {
	for _, f := range o {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, f := range o {
		keys[i] = f.Name
	}
	return keys
}

// IsNumeric reports whether v is an Int, BigInt or Float.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case Int, BigInt, Float:
		return true
	}
	return false
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}
