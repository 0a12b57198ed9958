package numeric

import (
	"math"
	"math/big"
)

// Outcome classifies how a cell's bytes were decoded.
type Outcome int

const (
	// Fail means the bytes are not a well-formed number; the caller should
	// promote the owning column to STRING and re-scan the cell as a string.
	Fail Outcome = iota
	// Int means the bytes parsed as a signed integer with no fractional
	// or exponent part and a magnitude of at most math.MaxInt64.
	Int
	// Double means the bytes parsed as a floating-point value: a
	// fractional part, an exponent, a NaN/Inf token, or mantissa overflow.
	Double
)

// Result is the decoded value of one cell.
type Result struct {
	Outcome Outcome
	Int     int64
	Float   float64
}

// Decode scans data — the raw bytes of one cell with any surrounding quotes
// already stripped by the caller — as a signed integer or double, per
// spec §4.1. data must not contain the field separator, a newline, or an
// unescaped quote; the caller (internal/scanner) is responsible for having
// isolated exactly the numeric content.
//
// Decode never partially consumes data: either every byte belongs to a
// recognized numeral (or NaN/Inf token) and an Int/Double Result comes
// back, or the whole cell is rejected with Fail.
func Decode(data []byte) Result {
	if len(data) == 0 {
		return Result{Outcome: Fail}
	}

	i := 0
	sign := int64(1)
	if data[i] == '+' {
		i++
	} else if data[i] == '-' {
		sign = -1
		i++
	}

	if r, ok := decodeSpecialToken(data[i:], sign); ok {
		return r
	}

	// Digits that would push value past 64 bits are dropped: an integer-part
	// digit then only scales the value by ten (dropped), a fractional digit
	// is ignored.
	const maxMantissa = (math.MaxUint64 - 9) / 10
	var value uint64
	digits := 0
	dropped := 0
	for i < len(data) && isDigit(data[i]) {
		if value <= maxMantissa {
			value = value*10 + uint64(data[i]-'0')
		} else {
			dropped++
		}
		digits++
		i++
	}

	isFloat := false
	fracExpo := 0
	if i < len(data) && data[i] == '.' {
		isFloat = true
		i++
		for i < len(data) && isDigit(data[i]) {
			if value <= maxMantissa {
				value = value*10 + uint64(data[i]-'0')
				fracExpo++
			}
			digits++
			i++
		}
	}

	if digits == 0 {
		return Result{Outcome: Fail}
	}

	expo := 0
	expoSign := 1
	if i < len(data) && (data[i] == 'e' || data[i] == 'E') {
		j := i + 1
		sgn := 1
		if j < len(data) && (data[j] == '+' || data[j] == '-') {
			if data[j] == '-' {
				sgn = -1
			}
			j++
		}
		expStart := j
		e := 0
		for j < len(data) && isDigit(data[j]) {
			e = e*10 + int(data[j]-'0')
			j++
		}
		if j == expStart {
			// "e" with no following digits is not a valid exponent;
			// the whole cell fails rather than silently dropping it.
			return Result{Outcome: Fail}
		}
		isFloat = true
		expo = e
		expoSign = sgn
		i = j
	}

	if i != len(data) {
		// trailing garbage after the recognized numeral
		return Result{Outcome: Fail}
	}

	overflow := dropped > 0 || value > math.MaxInt64
	if !isFloat && !overflow {
		return Result{Outcome: Int, Int: sign * int64(value)}
	}

	decExpo := expo*expoSign - fracExpo + dropped
	v := math.Copysign(ToDouble(value, decExpo), float64(sign))
	return Result{Outcome: Double, Float: v}
}

// toDoublePrec is how many bits of big.Float precision ToDouble carries
// through the multiply. value never exceeds 64 bits; 10^decExpo is exact at
// this precision only up to about 10^86, and beyond that (and for every
// negative exponent) the power and the product are rounded to 200 bits.
// That intermediate error sits far below float64's 53-bit last place, so
// the Float64() conversion at the end is the only rounding to float64
// precision, per spec §4.1 / P2 (replaces fastcsv_todouble.h's long-double
// path, which got its extra mantissa bits from the CPU's 80-bit extended
// format).
const toDoublePrec = 200

// ToDouble computes value * 10^decExpo, correctly rounded to the nearest
// float64. Converting value to float64 before multiplying — or multiplying
// by a power of ten that was itself rounded to float64 first — rounds
// twice, and a cell whose mantissa exceeds 2^53 (up to 19 decimal digits)
// can come out on the wrong side of the last bit either way. Doing the
// whole product at extended precision and rounding once avoids that.
func ToDouble(value uint64, decExpo int) float64 {
	if value == 0 {
		return 0
	}
	if decExpo > maxExp {
		decExpo = maxExp
	}
	if decExpo < minExp {
		decExpo = minExp
	}

	v := new(big.Float).SetPrec(toDoublePrec).SetUint64(value)
	v.Mul(v, bigPowerOfTen(decExpo, toDoublePrec))
	f, _ := v.Float64()
	return f
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// decodeSpecialToken recognizes the NaN/Inf/Infinity literals spec §4.1
// calls out: treated as numeric, never as a parse failure, and always
// decoded as DOUBLE (an integer column promotes to DOUBLE on seeing one).
func decodeSpecialToken(rest []byte, sign int64) (Result, bool) {
	lower := func(b byte) byte {
		if b >= 'A' && b <= 'Z' {
			return b + ('a' - 'A')
		}
		return b
	}
	eq := func(tok string) bool {
		if len(rest) < len(tok) {
			return false
		}
		for i := 0; i < len(tok); i++ {
			if lower(rest[i]) != tok[i] {
				return false
			}
		}
		return true
	}

	switch {
	case eq("infinity"):
		if len(rest) != len("infinity") {
			return Result{}, false
		}
		return Result{Outcome: Double, Float: math.Copysign(math.Inf(1), float64(sign))}, true
	case eq("inf"):
		if len(rest) != len("inf") {
			return Result{}, false
		}
		return Result{Outcome: Double, Float: math.Copysign(math.Inf(1), float64(sign))}, true
	case eq("nan"):
		if len(rest) != len("nan") {
			return Result{}, false
		}
		return Result{Outcome: Double, Float: math.NaN()}, true
	}
	return Result{}, false
}
