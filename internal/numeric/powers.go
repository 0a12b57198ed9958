// Package numeric scans a single CSV cell as a signed integer or a
// floating-point value, matching the decimal-to-double conversion semantics
// of the engine this package was ported from (see fastcsv_todouble.h).
package numeric

import "math/big"

// minExp and maxExp bound the decimal exponent ToDouble accepts, matching
// the clamp documented in spec §4.1: values outside a double's representable
// range saturate to 0 or +Inf rather than over/underflowing big.Float math.
const (
	minExp = -340
	maxExp = 309
)

// bigPowerOfTen returns 10^exp as a big.Float carrying prec bits of
// precision, built by exponentiation by squaring (each step rounded to prec
// bits). Returning the power at prec bits rather than as a float64 lets
// callers multiply it against a mantissa and round the product to float64
// exactly once — rounding 10^exp to float64 first and the product a second
// time is the double-rounding spec §4.1 / P2 forbid.
func bigPowerOfTen(exp int, prec uint) *big.Float {
	n := exp
	if n < 0 {
		n = -n
	}
	base := new(big.Float).SetPrec(prec).SetInt64(10)
	result := new(big.Float).SetPrec(prec).SetInt64(1)
	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		n >>= 1
	}
	if exp < 0 {
		one := new(big.Float).SetPrec(prec).SetInt64(1)
		result = one.Quo(one, result)
	}
	return result
}
