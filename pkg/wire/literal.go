package wire

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Literal encodes v as SQL literal text for the engine's dialect.
//
// The result is spliced into query text, not bound server-side, so it is only
// as safe as the surrounding SQL: callers must validate the query before
// substituting into it.
func Literal(v Value) string {
	switch t := v.(type) {
	case nil, Null:
		return "NULL"
	case Bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case Int:
		return strconv.FormatInt(int64(t), 10)
	case BigInt:
		if t.V == nil {
			return "NULL"
		}
		return t.V.String()
	case Float:
		return floatLiteral(float64(t))
	case Text:
		return quote(string(t))
	case Time:
		return quote(t.UTC().Format(TimeLayout))
	case Bytes:
		return bytesLiteral(t)
	case Array:
		// A one-element numeric array stands for the bare number. Some query
		// builders emit [N] for LIMIT and OFFSET values.
		if len(t) == 1 && IsNumeric(t[0]) {
			return Literal(t[0])
		}
		parts := make([]string, len(t))
		for i, elem := range t {
			parts[i] = Literal(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Object:
		data, err := json.Marshal(t)
		if err != nil {
			return "NULL"
		}
		return quote(string(data)) + "::JSON"
	}
	return "NULL"
}

// quote wraps s in single quotes, doubling any embedded quote.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func floatLiteral(f float64) string {
	switch {
	case math.IsNaN(f):
		return "'NaN'::DOUBLE"
	case math.IsInf(f, 1):
		return "'Infinity'::DOUBLE"
	case math.IsInf(f, -1):
		return "'-Infinity'::DOUBLE"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

const hexDigits = "0123456789ABCDEF"

func bytesLiteral(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b)*4 + 10)
	sb.WriteByte('\'')
	for _, c := range b {
		sb.WriteString(`\x`)
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	sb.WriteString("'::BLOB")
	return sb.String()
}
