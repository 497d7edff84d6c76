// Package keyframe implements ordered keyframe tracks with linear/step/
// bezier interpolation and hold/loop/ping-pong extrapolation, evaluated in
// O(log n) via binary search over strictly-ascending keyframe times.
package keyframe

import (
	"sort"

	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/rationaltime"
)

// Interpolation selects how a keyframe pair blends between samples.
type Interpolation int

const (
	Linear Interpolation = iota
	Step
	Bezier
)

// Extrapolation selects the out-of-range evaluation policy.
type Extrapolation int

const (
	Hold Extrapolation = iota
	Loop
	PingPong
)

// Easing adjusts progress before interpolation. Identity leaves progress
// untouched; the others are the common ease curves.
type Easing int

const (
	EaseNone Easing = iota
	EaseInQuad
	EaseOutQuad
	EaseInOutQuad
)

func applyEasing(e Easing, p float64) float64 {
	switch e {
	case EaseInQuad:
		return p * p
	case EaseOutQuad:
		return p * (2 - p)
	case EaseInOutQuad:
		if p < 0.5 {
			return 2 * p * p
		}
		return -1 + (4-2*p)*p
	default:
		return p
	}
}

// Keyframe is one control point of a Track[T]. The interpolation mode is a
// track-level default (spec.md §4.2); a keyframe only carries the tangents
// and easing that mode consults.
type Keyframe[T any] struct {
	Time       rationaltime.RationalTime
	Value      T
	InTangent  *T
	OutTangent *T
	Easing     Easing
}

// Track is a sorted set of keyframes plus a default interpolation mode and
// pre/post extrapolation policies.
type Track[T any] struct {
	keyframes     []Keyframe[T]
	DefaultInterp Interpolation
	PreExtrap     Extrapolation
	PostExtrap    Extrapolation
	interp        rationaltime.Interpolatable[T]
}

// NewTrack creates an empty track backed by the given Interpolatable
// implementation for T.
func NewTrack[T any](interp rationaltime.Interpolatable[T]) *Track[T] {
	return &Track[T]{interp: interp}
}

// Len reports the number of keyframes.
func (tr *Track[T]) Len() int { return len(tr.keyframes) }

// Keyframes returns a read-only view of the sorted keyframes.
func (tr *Track[T]) Keyframes() []Keyframe[T] { return tr.keyframes }

// Insert adds kf in sorted order, replacing any existing keyframe at the
// exact same time (duplicate-time inserts replace, per spec invariant).
func (tr *Track[T]) Insert(kf Keyframe[T]) {
	idx := sort.Search(len(tr.keyframes), func(i int) bool {
		return rationaltime.GreaterOrEqual(tr.keyframes[i].Time, kf.Time)
	})
	if idx < len(tr.keyframes) && rationaltime.Equal(tr.keyframes[idx].Time, kf.Time) {
		tr.keyframes[idx] = kf
		return
	}
	tr.keyframes = append(tr.keyframes, Keyframe[T]{})
	copy(tr.keyframes[idx+1:], tr.keyframes[idx:])
	tr.keyframes[idx] = kf
}

// RemoveAt deletes the keyframe at index i.
func (tr *Track[T]) RemoveAt(i int) {
	if i < 0 || i >= len(tr.keyframes) {
		return
	}
	tr.keyframes = append(tr.keyframes[:i], tr.keyframes[i+1:]...)
}

// search returns the largest index i with keyframes[i].Time <= t, or -1 if
// t precedes every keyframe. O(log n).
func (tr *Track[T]) search(t rationaltime.RationalTime) int {
	n := len(tr.keyframes)
	idx := sort.Search(n, func(i int) bool {
		return rationaltime.Greater(tr.keyframes[i].Time, t)
	})
	return idx - 1
}

// Evaluate returns the track's value at t, applying extrapolation outside
// the keyframe span and interpolation within it.
func (tr *Track[T]) Evaluate(t rationaltime.RationalTime) (T, error) {
	var zero T
	n := len(tr.keyframes)
	if n == 0 {
		return zero, errors.NewEmptyTrack()
	}
	if n == 1 {
		return tr.keyframes[0].Value, nil
	}

	first := tr.keyframes[0]
	last := tr.keyframes[n-1]

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

	i := tr.search(t)
	return tr.interpolateBetween(tr.keyframes[i], tr.keyframes[i+1], t), nil
}

// progress computes (t - a.Time) / (b.Time - a.Time) using rational
// subtraction throughout and converting to float only at the very end, per
// spec.md §4.2's precision rule.
func progress(a, b, t rationaltime.RationalTime) float64 {
	span := rationaltime.Sub(b, a)
	elapsed := rationaltime.Sub(t, a)
	if span.IsZero() {
		return 0
	}
	return elapsed.ToSeconds() / span.ToSeconds()
}

func (tr *Track[T]) interpolateBetween(a, b Keyframe[T], t rationaltime.RationalTime) T {
	p := progress(a.Time, b.Time, t)

	switch tr.DefaultInterp {
	case Step:
		return a.Value
	case Bezier:
		if a.OutTangent != nil && b.InTangent != nil {
			eased := applyEasing(a.Easing, p)
			return tr.interp.InterpolateCubic(a.Value, *a.OutTangent, b.Value, *b.InTangent, eased)
		}
		fallthrough
	default: // Linear
		eased := applyEasing(a.Easing, p)
		return tr.interp.Interpolate(a.Value, b.Value, eased)
	}
}

func (tr *Track[T]) extrapolate(mode Extrapolation, t rationaltime.RationalTime, first, last Keyframe[T]) (T, error) {
	switch mode {
	case Loop:
		return tr.evaluateLoop(t, first, last)
	case PingPong:
		return tr.evaluatePingPong(t, first, last)
	default: // Hold
		if rationaltime.Less(t, first.Time) {
			return first.Value, nil
		}
		return last.Value, nil
	}
}

// evaluateLoop maps t into [first.Time, last.Time) by rational modulo of
// (t - first.Time) over the span, then recursively evaluates.
func (tr *Track[T]) evaluateLoop(t rationaltime.RationalTime, first, last Keyframe[T]) (T, error) {
	span := rationaltime.Sub(last.Time, first.Time)
	if span.IsZero() {
		return first.Value, nil
	}
	delta := rationaltime.Sub(t, first.Time)
	wrapped := rationaltime.Mod(delta, span)
	mapped := rationaltime.Add(first.Time, wrapped)
	return tr.Evaluate(mapped)
}

// evaluatePingPong computes cycle count c = floor(|delta|/span) and
// remainder r; if c is odd, reflects (span - r); evaluates at mapped time.
func (tr *Track[T]) evaluatePingPong(t rationaltime.RationalTime, first, last Keyframe[T]) (T, error) {
	span := rationaltime.Sub(last.Time, first.Time)
	if span.IsZero() {
		return first.Value, nil
	}
	delta := rationaltime.Abs(rationaltime.Sub(t, first.Time))
	spanSeconds := span.ToSeconds()
	deltaSeconds := delta.ToSeconds()

	cycles := int64(deltaSeconds / spanSeconds)
	remainder := rationaltime.Sub(delta, rationaltime.Scale(span, cycles))

	if cycles%2 != 0 {
		remainder = rationaltime.Sub(span, remainder)
	}
	mapped := rationaltime.Add(first.Time, remainder)
	return tr.Evaluate(mapped)
}
