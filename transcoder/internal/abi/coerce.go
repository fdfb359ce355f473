package abi

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// Result of a numeric coercion. A value that is numeric but does not fit the
// target is Range; a value that is not a number at all is Mismatch.
type Result uint8

const (
	OK Result = iota
	Range
	Mismatch
)

// CoerceToUint64 handles Go integers, integral floats (JSON numbers),
// *big.Int, json.Number and decimal strings.
func CoerceToUint64(value any) (uint64, Result) {
	switch v := value.(type) {
	case uint64:
		return v, OK
	case uint8:
		return uint64(v), OK
	case uint16:
		return uint64(v), OK
	case uint32:
		return uint64(v), OK
	case uint:
		return uint64(v), OK
	case int8:
		return fromInt64(int64(v))
	case int16:
		return fromInt64(int64(v))
	case int32:
		return fromInt64(int64(v))
	case int:
		return fromInt64(int64(v))
	case int64:
		return fromInt64(v)
	case float64:
		return fromFloat64(v)
	case float32:
		return fromFloat64(float64(v))
	case *big.Int:
		if v == nil {
			return 0, Mismatch
		}
		if v.Sign() < 0 || !v.IsUint64() {
			return 0, Range
		}
		return v.Uint64(), OK
	case json.Number:
		return fromDecimal(string(v))
	case string:
		return fromDecimal(v)
	case nil:
		return 0, Mismatch
	}
	return uint64FromKind(reflect.ValueOf(value))
}

// CoerceToUint8 accepts the same inputs as CoerceToUint64 and range-checks
// the result against a single byte.
func CoerceToUint8(value any) (uint8, Result) {
	v, res := CoerceToUint64(value)
	if res != OK {
		return 0, res
	}
	if v > math.MaxUint8 {
		return 0, Range
	}
	return uint8(v), OK
}

// CoerceToFloat64 handles Go floats and integers, json.Number and decimal
// strings. Integers are converted with float64 rounding.
func CoerceToFloat64(value any) (float64, Result) {
	switch v := value.(type) {
	case float64:
		return v, OK
	case float32:
		return float64(v), OK
	case int:
		return float64(v), OK
	case int8:
		return float64(v), OK
	case int16:
		return float64(v), OK
	case int32:
		return float64(v), OK
	case int64:
		return float64(v), OK
	case uint:
		return float64(v), OK
	case uint8:
		return float64(v), OK
	case uint16:
		return float64(v), OK
	case uint32:
		return float64(v), OK
	case uint64:
		return float64(v), OK
	case json.Number:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	case nil:
		return 0, Mismatch
	}
	return float64FromKind(reflect.ValueOf(value))
}

// uint64FromKind handles named types such as `type Instruction uint8`.
func uint64FromKind(rv reflect.Value) (uint64, Result) {
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), OK
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fromInt64(rv.Int())
	case reflect.Float32, reflect.Float64:
		return fromFloat64(rv.Float())
	case reflect.String:
		return fromDecimal(rv.String())
	}
	return 0, Mismatch
}

func float64FromKind(rv reflect.Value) (float64, Result) {
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), OK
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), OK
	case reflect.Float32, reflect.Float64:
		return rv.Float(), OK
	case reflect.String:
		return parseFloat(rv.String())
	}
	return 0, Mismatch
}

func fromInt64(v int64) (uint64, Result) {
	if v < 0 {
		return 0, Range
	}
	return uint64(v), OK
}

func fromFloat64(v float64) (uint64, Result) {
	// float64(MaxUint64) rounds up to 2^64, which is already out of range.
	if v != v || v != math.Trunc(v) || v < 0 || v >= float64(math.MaxUint64) {
		return 0, Range
	}
	return uint64(v), OK
}

func fromDecimal(s string) (uint64, Result) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, Mismatch
	}
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, Range
	}
	return n.Uint64(), OK
}

func parseFloat(s string) (float64, Result) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, Range
		}
		return 0, Mismatch
	}
	return f, OK
}
