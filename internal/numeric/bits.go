package numeric

import "math"

// IntBits and FloatBits pack/unpack the 8-byte value slots shared by
// internal/column.Descriptor.Values: a slot is either an int64 bit pattern
// or a float64 bit pattern depending on the column's type at the time it
// was written (fastcsv.c's shared int64_t/double LinkedBuf slot).

func IntBits(v int64) uint64 {
	return uint64(v)
}

func FloatBits(v float64) uint64 {
	return math.Float64bits(v)
}

func BitsToInt(b uint64) int64 {
	return int64(b)
}

func BitsToFloat(b uint64) float64 {
	return math.Float64frombits(b)
}

// PromoteIntBitsToFloat reinterprets a slot written as an int64 into the
// float64 bit pattern of its numeric value, the same conversion
// fastcsv.c's CHANGE_TYPE macro performs when a column is promoted from
// INT to DOUBLE: a real numeric cast, not a raw bit copy.
func PromoteIntBitsToFloat(b uint64) uint64 {
	return math.Float64bits(float64(int64(b)))
}
