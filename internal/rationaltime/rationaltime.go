// Package rationaltime implements exact fractional-second time arithmetic
// and the Interpolatable contract used throughout the export core.
// RationalTime avoids the rounding drift a float64-seconds representation
// would accumulate across thousands of per-frame additions.
package rationaltime

import (
	"fmt"
	"math"
)

// DefaultTimescale is used when constructing a RationalTime from a float
// seconds value without an explicit timescale, and when reconstructing
// `timeSeconds`-encoded JSON.
const DefaultTimescale = 600

// RationalTime denotes Value/Timescale seconds exactly.
type RationalTime struct {
	Value     int64
	Timescale int32
}

// New constructs a RationalTime, panicking on a non-positive timescale
// since that would make every downstream arithmetic operation undefined.
func New(value int64, timescale int32) RationalTime {
	if timescale <= 0 {
		panic(fmt.Sprintf("rationaltime: timescale must be positive, got %d", timescale))
	}
	return RationalTime{Value: value, Timescale: timescale}
}

// FromSeconds approximates a seconds value at the given timescale, rounding
// half-away-from-zero. This is a lossy boundary conversion — never use it
// mid-pipeline where exactness matters.
func FromSeconds(seconds float64, timescale int32) RationalTime {
	if timescale <= 0 {
		timescale = DefaultTimescale
	}
	scaled := seconds * float64(timescale)
	var rounded float64
	if scaled < 0 {
		rounded = -math.Floor(-scaled + 0.5)
	} else {
		rounded = math.Floor(scaled + 0.5)
	}
	return RationalTime{Value: int64(rounded), Timescale: timescale}
}

// Zero is the additive identity at the default timescale.
func Zero() RationalTime { return RationalTime{Value: 0, Timescale: DefaultTimescale} }

// ToSeconds is the one lossy projection used at display/sample-grid
// boundaries; never feed its result back into exact arithmetic.
func (t RationalTime) ToSeconds() float64 {
	return float64(t.Value) / float64(t.Timescale)
}

// ToSampleIndex converts to the nearest integer sample index at sampleRate,
// rounding half-away-from-zero.
func (t RationalTime) ToSampleIndex(sampleRate int) int64 {
	seconds := t.ToSeconds()
	scaled := seconds * float64(sampleRate)
	if scaled < 0 {
		return -int64(math.Floor(-scaled + 0.5))
	}
	return int64(math.Floor(scaled + 0.5))
}

func lcm(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// commonTimescale returns a, b rescaled to a shared timescale via LCM so
// arithmetic never loses precision to an intermediate float.
func commonTimescale(a, b RationalTime) (av, bv int64, ts int64) {
	if a.Timescale == b.Timescale {
		return a.Value, b.Value, int64(a.Timescale)
	}
	ts = lcm(int64(a.Timescale), int64(b.Timescale))
	av = a.Value * (ts / int64(a.Timescale))
	bv = b.Value * (ts / int64(b.Timescale))
	return av, bv, ts
}

// Add returns a + b, exact under a shared timescale.
func Add(a, b RationalTime) RationalTime {
	av, bv, ts := commonTimescale(a, b)
	return normalize(RationalTime{Value: av + bv, Timescale: int32(ts)})
}

// Sub returns a - b, exact under a shared timescale.
func Sub(a, b RationalTime) RationalTime {
	av, bv, ts := commonTimescale(a, b)
	return normalize(RationalTime{Value: av - bv, Timescale: int32(ts)})
}

// Scale multiplies a by an integer factor.
func Scale(a RationalTime, factor int64) RationalTime {
	return RationalTime{Value: a.Value * factor, Timescale: a.Timescale}
}

// ScaleFraction multiplies a by a rational factor num/den (den > 0),
// keeping arithmetic exact by folding the denominator into the timescale.
func ScaleFraction(a RationalTime, num, den int64) RationalTime {
	if den <= 0 {
		panic("rationaltime: ScaleFraction denominator must be positive")
	}
	return normalize(RationalTime{Value: a.Value * num, Timescale: int32(int64(a.Timescale) * den)})
}

// Mod returns a modulo span, where span must be positive. Result is always
// in [0, span) under a shared timescale, matching typical modulo semantics
// for the loop extrapolation policy.
func Mod(a, span RationalTime) RationalTime {
	av, sv, ts := commonTimescale(a, span)
	if sv == 0 {
		return RationalTime{Value: 0, Timescale: int32(ts)}
	}
	r := av % sv
	if r < 0 {
		r += sv
	}
	return normalize(RationalTime{Value: r, Timescale: int32(ts)})
}

// reduce returns the lowest-terms form, used only by Equal/Compare so that
// (1,2) and (2,4) compare equal without altering stored values elsewhere.
func reduce(t RationalTime) (int64, int64) {
	v, ts := t.Value, int64(t.Timescale)
	if v == 0 {
		return 0, 1
	}
	g := gcd(v, ts)
	return v / g, ts / g
}

// normalize keeps timescales from growing unboundedly across long chains
// of Add/Sub by reducing to lowest terms when it doesn't lose information.
func normalize(t RationalTime) RationalTime {
	v, ts := reduce(t)
	return RationalTime{Value: v, Timescale: int32(ts)}
}

// Equal compares in reduced form, per spec: equality is by reduced form.
func Equal(a, b RationalTime) bool {
	av, ats := reduce(a)
	bv, bts := reduce(b)
	return av == bv && ats == bts
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than
// b, using cross-multiplication so no intermediate float appears.
func Compare(a, b RationalTime) int {
	lhs := int64(a.Value) * int64(b.Timescale)
	rhs := int64(b.Value) * int64(a.Timescale)
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

func Less(a, b RationalTime) bool         { return Compare(a, b) < 0 }
func LessOrEqual(a, b RationalTime) bool  { return Compare(a, b) <= 0 }
func Greater(a, b RationalTime) bool      { return Compare(a, b) > 0 }
func GreaterOrEqual(a, b RationalTime) bool { return Compare(a, b) >= 0 }

func (t RationalTime) String() string {
	return fmt.Sprintf("%d/%d", t.Value, t.Timescale)
}

// IsZero reports whether t is exactly zero, independent of timescale.
func (t RationalTime) IsZero() bool { return t.Value == 0 }

// Max returns the later of a, b.
func Max(a, b RationalTime) RationalTime {
	if Greater(a, b) {
		return a
	}
	return b
}

// Min returns the earlier of a, b.
func Min(a, b RationalTime) RationalTime {
	if Less(a, b) {
		return a
	}
	return b
}

// Abs returns the absolute value of t.
func Abs(t RationalTime) RationalTime {
	if t.Value < 0 {
		return RationalTime{Value: -t.Value, Timescale: t.Timescale}
	}
	return t
}
