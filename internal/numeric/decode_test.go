package numeric

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"testing"
)

func TestDecode_Integers(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1", 1},
		{"-1", -1},
		{"+42", 42},
		{"9223372036854775807", math.MaxInt64},
		{"-9223372036854775807", -math.MaxInt64},
	}
	for _, c := range cases {
		r := Decode([]byte(c.in))
		if r.Outcome != Int {
			t.Fatalf("Decode(%q) outcome = %v, want Int", c.in, r.Outcome)
		}
		if r.Int != c.want {
			t.Fatalf("Decode(%q) = %d, want %d", c.in, r.Int, c.want)
		}
	}
}

func TestDecode_Doubles(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2.5", 2.5},
		{"-4.0", -4.0},
		{"1e3", 1000},
		{"-1e-400", math.Copysign(0, -1)},
		{"1e400", math.Inf(1)},
	}
	for _, c := range cases {
		r := Decode([]byte(c.in))
		if r.Outcome != Double {
			t.Fatalf("Decode(%q) outcome = %v, want Double", c.in, r.Outcome)
		}
		if math.Signbit(c.want) != math.Signbit(r.Float) || (!math.IsInf(c.want, 0) && r.Float != c.want) {
			if !(math.IsInf(c.want, 1) && math.IsInf(r.Float, 1)) {
				t.Fatalf("Decode(%q) = %v, want %v", c.in, r.Float, c.want)
			}
		}
	}
}

func TestDecode_NaNInf(t *testing.T) {
	r := Decode([]byte("nan"))
	if r.Outcome != Double || !math.IsNaN(r.Float) {
		t.Fatalf("Decode(nan) = %+v", r)
	}
	r = Decode([]byte("-inf"))
	if r.Outcome != Double || !math.IsInf(r.Float, -1) {
		t.Fatalf("Decode(-inf) = %+v", r)
	}
	r = Decode([]byte("Infinity"))
	if r.Outcome != Double || !math.IsInf(r.Float, 1) {
		t.Fatalf("Decode(Infinity) = %+v", r)
	}
}

func TestDecode_Fail(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "1e", "12x", "-", "+"} {
		r := Decode([]byte(in))
		if r.Outcome != Fail {
			t.Fatalf("Decode(%q) = %+v, want Fail", in, r)
		}
	}
}

// TestDecode_DoubleRoundTrip is P2: formatting a finite double with 17
// significant digits and decoding it back must reproduce the exact bit
// pattern. These are the values most likely to expose a rounding slip in
// ToDouble: boundary magnitudes, subnormals, and mantissas that don't fit
// in 2^53 (so float64(mantissa) alone already loses bits).
func TestDecode_DoubleRoundTrip(t *testing.T) {
	values := []float64{
		0, 1, -1, 0.1, 1.0 / 3.0, math.Pi, math.E,
		math.MaxFloat64, -math.MaxFloat64,
		math.SmallestNonzeroFloat64, -math.SmallestNonzeroFloat64,
		1e300, 1e-300, 1e308, 1e-308, 123456789.123456,
		2.2250738585072014e-308, // smallest normal
	}
	for _, v := range values {
		checkDoubleRoundTrip(t, v)
	}
}

// TestDecode_DoubleRoundTripRandomSweep backs up P2's "for every finite
// double" claim with a large, seeded sweep over uniformly random bit
// patterns rather than a handful of hand-picked values: ToDouble has to get
// the rounding right for mantissas the hand-picked cases don't happen to
// hit, not just the ones above.
func TestDecode_DoubleRoundTripRandomSweep(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200000; i++ {
		bits := rng.Uint64()
		v := math.Float64frombits(bits)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		checkDoubleRoundTrip(t, v)
	}
}

// checkDoubleRoundTrip formats v with 17 significant digits and decodes it
// back, comparing the bit pattern of whatever numeric value comes out. A
// float that happens to have an exact integer value (1, -1, 1e16) formats
// without a '.' or exponent and so legitimately comes back as an Int
// Outcome — Decode has no way to know the cell came from a float column,
// and resolving that ambiguity is internal/reconcile's job, not this
// package's. P2 only requires the underlying value survive exactly.
func checkDoubleRoundTrip(t *testing.T, v float64) {
	t.Helper()
	s := strconv.FormatFloat(v, 'g', 17, 64)
	r := Decode([]byte(s))
	var got float64
	switch r.Outcome {
	case Double:
		got = r.Float
	case Int:
		got = float64(r.Int)
	default:
		t.Fatalf("round trip %s: outcome = %v", s, r.Outcome)
	}
	if math.Float64bits(got) != math.Float64bits(v) {
		t.Fatalf("round trip %s: got %v (%x), want %v (%x)",
			s, got, math.Float64bits(got), v, math.Float64bits(v))
	}
}

// TestDecode_IntegerRoundTrip is P3.
func TestDecode_IntegerRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, math.MaxInt64, math.MinInt64 + 1, 123456789}
	for _, v := range values {
		s := fmt.Sprintf("%d", v)
		r := Decode([]byte(s))
		if r.Outcome != Int || r.Int != v {
			t.Fatalf("round trip %d: got %+v", v, r)
		}
	}
}
