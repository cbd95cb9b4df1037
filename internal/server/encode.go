package server

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapquery/pkg/wire"
)

const secondsPerDay = 86400

// encodeValue converts a scanned database value into its wire form. Dates
// become {"days": n} and other times {"micros": "<n>"}, the shapes the client
// turns back into timestamps. Binary columns are base64 text, UUIDs their
// canonical string.
func encodeValue(v any, dbType string) wire.Value {
	switch t := v.(type) {
	case nil:
		return wire.Null{}
	case time.Time:
		if dbType == "DATE" {
			return wire.Object{{Name: "days", Value: wire.Int(floorDiv(t.Unix(), secondsPerDay))}}
		}
		return wire.Object{{Name: "micros", Value: wire.Text(strconv.FormatInt(t.UnixMicro(), 10))}}
	case []byte:
		return encodeBytes(t, dbType)
	case float32:
		return wire.Float(t)
	case float64:
		return wire.Float(t)
	case interface{ Float64() float64 }:
		// Fixed-point decimals from the database driver.
		return wire.Float(t.Float64())
	case []any:
		arr := make(wire.Array, len(t))
		for i, elem := range t {
			arr[i] = encodeValue(elem, "")
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(wire.Object, len(keys))
		for i, k := range keys {
			obj[i] = wire.Field{Name: k, Value: encodeValue(t[k], "")}
		}
		return obj
	case map[any]any:
		byName := make(map[string]any, len(t))
		for k, elem := range t {
			byName[fmt.Sprint(k)] = elem
		}
		return encodeValue(byName, "")
	}

	wv, err := wire.FromAny(v)
	if err != nil {
		return wire.Text(fmt.Sprint(v))
	}
	return wv
}

func encodeBytes(b []byte, dbType string) wire.Value {
	switch {
	case dbType == "UUID" && len(b) == 16:
		id, err := uuid.FromBytes(b)
		if err == nil {
			return wire.Text(id.String())
		}
	case strings.Contains(dbType, "BLOB"), dbType == "BYTEA", strings.Contains(dbType, "BINARY"):
		return wire.Text(base64.StdEncoding.EncodeToString(b))
	}
	return wire.Text(string(b))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
