package result

import (
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/leapstack-labs/leapquery/pkg/wire"
)

const millisPerDay = 86_400_000

// TransformValue decodes the engine's special value encodings.
//
// An object whose only field is "micros" is a timestamp in microseconds since
// the epoch; an object whose only field is "days" is a date as a day count
// since the epoch. Both become wire.Time. The single-field match is strict:
// objects with any other field, and values that cannot be read as the
// expected number, are returned unchanged.
func TransformValue(v wire.Value) wire.Value {
	obj, ok := v.(wire.Object)
	if !ok || len(obj) != 1 {
		return v
	}

	switch obj[0].Name {
	case "micros":
		if ms, ok := microsToMillis(obj[0].Value); ok {
			return wire.NewTime(time.UnixMilli(ms).UTC())
		}
	case "days":
		if ms, ok := daysToMillis(obj[0].Value); ok {
			return wire.NewTime(time.UnixMilli(ms).UTC())
		}
	}
	return v
}

// microsToMillis converts an integral microsecond count to milliseconds,
// truncating toward zero.
func microsToMillis(v wire.Value) (int64, bool) {
	var micros *big.Int

	switch t := v.(type) {
	case wire.Int:
		return int64(t) / 1000, true
	case wire.BigInt:
		if t.V == nil {
			return 0, false
		}
		micros = t.V
	case wire.Float:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		micros, _ = new(big.Float).SetFloat64(f).Int(nil)
	case wire.Text:
		n, ok := new(big.Int).SetString(strings.TrimSpace(string(t)), 10)
		if !ok {
			return 0, false
		}
		micros = n
	default:
		return 0, false
	}

	ms := new(big.Int).Quo(micros, big.NewInt(1000))
	if !ms.IsInt64() {
		return 0, false
	}
	return ms.Int64(), true
}

// daysToMillis converts a day count to milliseconds. Counts whose millisecond
// value does not fit in an int64 are rejected.
func daysToMillis(v wire.Value) (int64, bool) {
	const maxDays = math.MaxInt64 / millisPerDay

	switch t := v.(type) {
	case wire.Int:
		if int64(t) > maxDays || int64(t) < -maxDays {
			return 0, false
		}
		return int64(t) * millisPerDay, true
	case wire.Float:
		ms := float64(t) * millisPerDay
		if math.IsNaN(ms) || ms >= math.MaxInt64 || ms < math.MinInt64 {
			return 0, false
		}
		return int64(ms), true
	}
	return 0, false
}
