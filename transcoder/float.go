package transcoder

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/transcoder/internal/abi"
)

// Float64Bytes returns the IEEE-754 binary64 bit pattern of f in
// little-endian order, independent of host byte order. NaN sign and payload
// bits are kept as given.
func Float64Bytes(f float64) [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], math.Float64bits(f))
	return out
}

// Float64FromBytes is the inverse of Float64Bytes.
func Float64FromBytes(b [8]byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
}

// Float64BytesOf coerces value (any Go float or integer, json.Number or
// decimal string) and returns its bytes. NaN is out of range: Borsh readers
// refuse NaN floats.
func Float64BytesOf(path []string, value any) ([8]byte, error) {
	f, res := abi.CoerceToFloat64(value)
	switch {
	case res == abi.Mismatch:
		return [8]byte{}, errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "f64")
	case res == abi.Range || math.IsNaN(f):
		return [8]byte{}, errors.Overflow(errors.PhaseEncode, path, value, "f64")
	}
	return Float64Bytes(f), nil
}
