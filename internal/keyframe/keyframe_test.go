package keyframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/rationaltime"
)

func scalarTrack() *Track[float64] {
	tr := NewTrack[float64](rationaltime.Float64Interpolator{})
	tr.Insert(Keyframe[float64]{Time: rationaltime.New(0, 1), Value: 0})
	tr.Insert(Keyframe[float64]{Time: rationaltime.New(1, 1), Value: 10})
	return tr
}

func TestEvaluateLinearMidpoint(t *testing.T) {
	tr := scalarTrack()
	v, err := tr.Evaluate(rationaltime.FromSeconds(0.5, 600))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-9)
}

// TestLoopExtrapolation exercises spec.md §8 scenario 3: kf(0)=0, kf(1)=10,
// post-extrapolation loop, evaluate(0.5)=5, evaluate(1.5)=5, evaluate(2.3)=3.
func TestLoopExtrapolation(t *testing.T) {
	tr := scalarTrack()
	tr.PostExtrap = Loop

	v, err := tr.Evaluate(rationaltime.FromSeconds(0.5, 600))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-9)

	v, err = tr.Evaluate(rationaltime.FromSeconds(1.5, 600))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-9)

	v, err = tr.Evaluate(rationaltime.FromSeconds(2.3, 600))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-6)
}

func TestPingPongExtrapolation(t *testing.T) {
	tr := scalarTrack()
	tr.PostExtrap = PingPong

	// One span past the end (t=2): delta=2, span=1, cycles=2 (even) -> remainder 0 -> value 0.
	v, err := tr.Evaluate(rationaltime.FromSeconds(2.0, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-6)

	// Half a span further into the reflected cycle (t=1.5): cycles=1 (odd) -> reflect.
	v, err = tr.Evaluate(rationaltime.FromSeconds(1.5, 600))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-6)
}

func TestHoldExtrapolationIsDefault(t *testing.T) {
	tr := scalarTrack()
	v, err := tr.Evaluate(rationaltime.FromSeconds(5.0, 1))
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	v, err = tr.Evaluate(rationaltime.FromSeconds(-5.0, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestEmptyTrackReturnsError(t *testing.T) {
	tr := NewTrack[float64](rationaltime.Float64Interpolator{})
	_, err := tr.Evaluate(rationaltime.Zero())
	require.Error(t, err)
}

func TestSingleKeyframeIsConstant(t *testing.T) {
	tr := NewTrack[float64](rationaltime.Float64Interpolator{})
	tr.Insert(Keyframe[float64]{Time: rationaltime.New(3, 1), Value: 42})
	v, err := tr.Evaluate(rationaltime.FromSeconds(100, 1))
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestStepHoldsLeftValue(t *testing.T) {
	tr := scalarTrack()
	tr.DefaultInterp = Step
	v, err := tr.Evaluate(rationaltime.FromSeconds(0.9, 600))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestBezierFallsBackToLinearWithoutTangents(t *testing.T) {
	tr := scalarTrack()
	tr.DefaultInterp = Bezier
	v, err := tr.Evaluate(rationaltime.FromSeconds(0.5, 600))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-9)
}

func TestBezierUsesTangentsWhenPresent(t *testing.T) {
	tr := NewTrack[float64](rationaltime.Float64Interpolator{})
	tr.DefaultInterp = Bezier
	outT, inT := 0.0, 0.0
	tr.Insert(Keyframe[float64]{Time: rationaltime.New(0, 1), Value: 0, OutTangent: &outT})
	tr.Insert(Keyframe[float64]{Time: rationaltime.New(1, 1), Value: 10, InTangent: &inT})

	v, err := tr.Evaluate(rationaltime.FromSeconds(0.5, 600))
	require.NoError(t, err)
	// Flat tangents at the midpoint of a Hermite curve land exactly halfway.
	assert.InDelta(t, 5.0, v, 1e-9)
}

func TestInsertReplacesExactDuplicateTime(t *testing.T) {
	tr := scalarTrack()
	tr.Insert(Keyframe[float64]{Time: rationaltime.New(0, 1), Value: 99})
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 99.0, tr.Keyframes()[0].Value)
}

func TestRemoveAt(t *testing.T) {
	tr := scalarTrack()
	tr.RemoveAt(0)
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, 10.0, tr.Keyframes()[0].Value)
}

// referenceEvaluate is a linear-scan reference for Evaluate, used to check
// the binary search in Track.search against strictly increasing keyframe
// sequences (spec.md §8's "binary search correctness" property).
func referenceEvaluate(tr *Track[float64], t rationaltime.RationalTime) (float64, error) {
	kfs := tr.Keyframes()
	n := len(kfs)
	if n == 0 {
		var zero float64
		return zero, errors.NewEmptyTrack()
	}
	if n == 1 {
		return kfs[0].Value, nil
	}
	first, last := kfs[0], kfs[n-1]
	if rationaltime.LessOrEqual(t, first.Time) {
		if rationaltime.Equal(t, first.Time) {
			return first.Value, nil
		}
		return tr.extrapolate(tr.PreExtrap, t, first, last)
	}
	if rationaltime.GreaterOrEqual(t, last.Time) {
		if rationaltime.Equal(t, last.Time) {
			return last.Value, nil
		}
		return tr.extrapolate(tr.PostExtrap, t, first, last)
	}
	for i := 0; i < n-1; i++ {
		if rationaltime.LessOrEqual(kfs[i].Time, t) && rationaltime.Less(t, kfs[i+1].Time) {
			return tr.interpolateBetween(kfs[i], kfs[i+1], t), nil
		}
	}
	panic("unreachable")
}

func TestBinarySearchMatchesLinearScan(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 20).Draw(rt, "n")
		tr := NewTrack[float64](rationaltime.Float64Interpolator{})
		times := make(map[int64]bool)
		cursor := int64(0)
		for i := 0; i < n; i++ {
			cursor += rapid.Int64Range(1, 50).Draw(rt, "gap")
			if times[cursor] {
				continue
			}
			times[cursor] = true
			tr.Insert(Keyframe[float64]{
				Time:  rationaltime.New(cursor, 1),
				Value: rapid.Float64Range(-1000, 1000).Draw(rt, "value"),
			})
		}
		if tr.Len() < 2 {
			return
		}
		last := tr.Keyframes()[tr.Len()-1].Time
		probe := rationaltime.New(rapid.Int64Range(0, last.Value).Draw(rt, "probe"), 1)

		got, err := tr.Evaluate(probe)
		require.NoError(rt, err)
		want, err := referenceEvaluate(tr, probe)
		require.NoError(rt, err)
		assert.InDelta(rt, want, got, 1e-9)
	})
}

// TestLoopIsPeriodic checks spec.md §8's "loop is periodic with period span"
// property across random offsets.
func TestLoopIsPeriodic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr := scalarTrack()
		tr.PostExtrap = Loop
		span := 1.0
		offset := rapid.Float64Range(0, 0.99).Draw(rt, "offset")
		cycles := rapid.IntRange(0, 5).Draw(rt, "cycles")

		base := rationaltime.FromSeconds(offset, 1000)
		shifted := rationaltime.FromSeconds(offset+float64(cycles)*span, 1000)

		v1, err := tr.Evaluate(base)
		require.NoError(rt, err)
		v2, err := tr.Evaluate(shifted)
		require.NoError(rt, err)
		assert.InDelta(rt, v1, v2, 1e-6)
	})
}

// TestPingPongSymmetricAroundEndpoints checks spec.md §8's "ping_pong is
// symmetric around both endpoints" property.
func TestPingPongSymmetricAroundEndpoints(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr := scalarTrack()
		tr.PostExtrap = PingPong
		delta := rapid.Float64Range(0, 0.99).Draw(rt, "delta")

		beforeEnd := rationaltime.FromSeconds(1.0-delta, 1000)
		afterEnd := rationaltime.FromSeconds(1.0+delta, 1000)

		vBefore, err := tr.Evaluate(beforeEnd)
		require.NoError(rt, err)
		vAfter, err := tr.Evaluate(afterEnd)
		require.NoError(rt, err)
		assert.InDelta(rt, vBefore, vAfter, 1e-6)
	})
}
