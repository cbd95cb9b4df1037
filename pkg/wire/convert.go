package wire

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"time"
)

// UnsupportedTypeError is returned by FromAny for Go values with no wire
// representation.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("wire: unsupported value type %s", e.Type)
}

// FromAny converts a Go value into a Value. Maps become Objects with their
// keys sorted; slices and arrays (other than []byte) become Arrays.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int8:
		return Int(t), nil
	case int16:
		return Int(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Int(t), nil
	case uint16:
		return Int(t), nil
	case uint32:
		return Int(t), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case string:
		return Text(t), nil
	case []byte:
		return Bytes(t), nil
	case time.Time:
		return NewTime(t), nil
	case *time.Time:
		if t == nil {
			return Null{}, nil
		}
		return NewTime(*t), nil
	case *big.Int:
		if t == nil {
			return Null{}, nil
		}
		return NewBigInt(t), nil
	case json.Number:
		return parseNumber(t)
	case json.RawMessage:
		return DecodeJSON(t)
	case []any:
		arr := make(Array, len(t))
		for i, elem := range t {
			ev, err := FromAny(elem)
			if err != nil {
				return nil, err
			}
			arr[i] = ev
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(Object, 0, len(t))
		for _, k := range keys {
			ev, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			obj = append(obj, Field{Name: k, Value: ev})
		}
		return obj, nil
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil {
			return nil, err
		}
		return FromAny(dv)
	}

	return fromReflect(reflect.ValueOf(v))
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return BigInt{V: new(big.Int).SetUint64(u)}
	}
	return Int(int64(u))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null{}, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Bytes(b), nil
		}
		arr := make(Array, rv.Len())
		for i := range rv.Len() {
			ev, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			arr[i] = ev
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return Null{}, nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			ev, err := FromAny(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
			obj = append(obj, Field{Name: k, Value: ev})
		}
		return obj, nil
	}
	return nil, &UnsupportedTypeError{Type: rv.Type()}
}

// FromAnySlice converts each element with FromAny.
func FromAnySlice(values []any) ([]Value, error) {
	out := make([]Value, len(values))
	for i, v := range values {
		wv, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		out[i] = wv
	}
	return out, nil
}

// ToAny converts a Value into plain Go values: nil, bool, int64, *big.Int,
// float64, string, []byte, time.Time, []any and map[string]any.
func ToAny(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case BigInt:
		return t.V
	case Float:
		return float64(t)
	case Text:
		return string(t)
	case Bytes:
		return []byte(t)
	case Time:
		return t.Time
	case Array:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(t))
		for _, f := range t {
			out[f.Name] = ToAny(f.Value)
		}
		return out
	}
	return nil
}
