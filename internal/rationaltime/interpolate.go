package rationaltime

import "github.com/golang/geo/r2"

// Interpolatable is implemented by every value type that can sit inside a
// KeyframeTrack: scalars, 2-vectors, colors. Linear and cubic Hermite are
// the two interpolation primitives the keyframe evaluator dispatches to;
// a type with no sensible cubic form (BoolInterpolator) implements
// InterpolateCubic by reusing its own Interpolate.
type Interpolatable[T any] interface {
	Interpolate(a, b T, t float64) T
	InterpolateCubic(a, outTangent, b, inTangent T, t float64) T
}

// hermiteBasis evaluates the four Hermite basis functions at t, per
// spec.md §4.1: (2t³−3t²+1, t³−2t²+t, −2t³+3t², t³−t²).
func hermiteBasis(t float64) (h00, h10, h01, h11 float64) {
	t2 := t * t
	t3 := t2 * t
	h00 = 2*t3 - 3*t2 + 1
	h10 = t3 - 2*t2 + t
	h01 = -2*t3 + 3*t2
	h11 = t3 - t2
	return
}

// Float64Interpolator interpolates plain scalars.
type Float64Interpolator struct{}

func (Float64Interpolator) Interpolate(a, b float64, t float64) float64 {
	return a + (b-a)*t
}

func (Float64Interpolator) InterpolateCubic(a, outTangent, b, inTangent float64, t float64) float64 {
	h00, h10, h01, h11 := hermiteBasis(t)
	return h00*a + h10*outTangent + h01*b + h11*inTangent
}

// Vector2Interpolator interpolates 2D points (crop centers, pan positions,
// reframe interest points) backed by golang/geo's r2.Point.
type Vector2Interpolator struct{}

func (Vector2Interpolator) Interpolate(a, b r2.Point, t float64) r2.Point {
	return r2.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func (Vector2Interpolator) InterpolateCubic(a, outTangent, b, inTangent r2.Point, t float64) r2.Point {
	h00, h10, h01, h11 := hermiteBasis(t)
	return r2.Point{
		X: h00*a.X + h10*outTangent.X + h01*b.X + h11*inTangent.X,
		Y: h00*a.Y + h10*outTangent.Y + h01*b.Y + h11*inTangent.Y,
	}
}

// BoolInterpolator implements the spec's "booleans interpolate as step at
// t=0.5" rule; it has no meaningful cubic form so InterpolateCubic falls
// back to the same step behavior.
type BoolInterpolator struct{}

func (BoolInterpolator) Interpolate(a, b bool, t float64) bool {
	if t < 0.5 {
		return a
	}
	return b
}

func (i BoolInterpolator) InterpolateCubic(a, _ bool, b, _ bool, t float64) bool {
	return i.Interpolate(a, b, t)
}

// Vector3 is a plain RGB/XYZ/LAB triplet, distinct from r3.Vector (which
// internal/colorspace works on directly).
type Vector3 struct{ X, Y, Z float64 }

// Vector3Interpolator interpolates 3-component color/spatial triplets.
type Vector3Interpolator struct{}

func (Vector3Interpolator) Interpolate(a, b Vector3, t float64) Vector3 {
	return Vector3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

func (Vector3Interpolator) InterpolateCubic(a, outTangent, b, inTangent Vector3, t float64) Vector3 {
	h00, h10, h01, h11 := hermiteBasis(t)
	return Vector3{
		X: h00*a.X + h10*outTangent.X + h01*b.X + h11*inTangent.X,
		Y: h00*a.Y + h10*outTangent.Y + h01*b.Y + h11*inTangent.Y,
		Z: h00*a.Z + h10*outTangent.Z + h01*b.Z + h11*inTangent.Z,
	}
}
