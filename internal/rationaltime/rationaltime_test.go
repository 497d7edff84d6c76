package rationaltime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAddSubExact(t *testing.T) {
	a := New(1, 24)
	b := New(1, 30)
	sum := Add(a, b)
	assert.InDelta(t, 1.0/24+1.0/30, sum.ToSeconds(), 1e-12)

	diff := Sub(sum, b)
	assert.True(t, Equal(diff, normalize(a)))
}

func TestSelfSubtractIsExactZero(t *testing.T) {
	a := New(123, 48000)
	zero := Sub(a, a)
	assert.True(t, zero.IsZero())
	assert.Equal(t, 0.0, zero.ToSeconds())
}

func TestEqualityByReducedForm(t *testing.T) {
	a := New(1, 2)
	b := New(2, 4)
	assert.True(t, Equal(a, b))
}

func TestCompareCrossMultiplication(t *testing.T) {
	a := New(1, 3)  // 1/3
	b := New(1, 2)  // 1/2
	assert.True(t, Less(a, b))
	assert.True(t, Greater(b, a))
	assert.Equal(t, 0, Compare(a, a))
}

func TestFromSecondsRoundsHalfAwayFromZero(t *testing.T) {
	rt := FromSeconds(0.5/600, 600)
	require.Equal(t, int64(1), rt.Value)

	rtNeg := FromSeconds(-0.5/600, 600)
	require.Equal(t, int64(-1), rtNeg.Value)
}

func TestToSampleIndex(t *testing.T) {
	rt := New(48000, 48000) // exactly 1 second
	assert.Equal(t, int64(48000), rt.ToSampleIndex(48000))
}

func TestModPeriodic(t *testing.T) {
	span := New(10, 1)
	result := Mod(New(23, 1), span)
	assert.Equal(t, 3.0, result.ToSeconds())
}

// TestRationalExactnessProperty exercises spec.md §8's "for all a, b:
// RationalTime, seconds(a+b) equals seconds(a)+seconds(b) within <=1 ulp"
// invariant across random timescales and values.
func TestRationalExactnessProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		av := rapid.Int64Range(-1_000_000, 1_000_000).Draw(rt, "av")
		ats := rapid.Int32Range(1, 1_000_000).Draw(rt, "ats")
		bv := rapid.Int64Range(-1_000_000, 1_000_000).Draw(rt, "bv")
		bts := rapid.Int32Range(1, 1_000_000).Draw(rt, "bts")

		a := New(av, ats)
		b := New(bv, bts)

		sum := Add(a, b)
		assert.InDelta(rt, a.ToSeconds()+b.ToSeconds(), sum.ToSeconds(), 1e-6)

		diff := Sub(a, a)
		assert.True(rt, diff.IsZero())
	})
}
