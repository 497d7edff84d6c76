// Package reframe computes a smoothed, subject-aware crop window for
// converting a frame from its source aspect ratio to a target aspect
// ratio without a human editor choosing the crop by hand.
package reframe

import "github.com/golang/geo/r2"

// Subject is one detected region of interest with a confidence score.
type Subject struct {
	Center     r2.Point // normalized [0,1]^2
	Confidence float64
	Bounds     Rect
}

// Rect is a normalized axis-aligned bounding box.
type Rect struct {
	X, Y, W, H float64
}

// Crop is a normalized crop window, always sized to preserve the target
// aspect ratio.
type Crop struct {
	X, Y, W, H float64
}

// CenterOfInterest computes the confidence-weighted mean of subject
// centers, defaulting to frame center when there are no subjects.
func CenterOfInterest(subjects []Subject) r2.Point {
	if len(subjects) == 0 {
		return r2.Point{X: 0.5, Y: 0.5}
	}
	var totalWeight, x, y float64
	for _, s := range subjects {
		x += s.Center.X * s.Confidence
		y += s.Center.Y * s.Confidence
		totalWeight += s.Confidence
	}
	if totalWeight == 0 {
		return r2.Point{X: 0.5, Y: 0.5}
	}
	return r2.Point{X: x / totalWeight, Y: y / totalWeight}
}

// rawCropSize computes a crop rectangle's width/height preserving the
// target aspect ratio, per spec.md §4.9.
func rawCropSize(sourceAspect, targetAspect float64) (w, h float64) {
	if sourceAspect > targetAspect {
		return targetAspect / sourceAspect, 1
	}
	return 1, sourceAspect / targetAspect
}

// Reframer holds the smoothing state carried between frames.
type Reframer struct {
	Smoothing float64 // alpha in [0,1]
	previous  *Crop
}

// NewReframer constructs a Reframer with the given exponential-smoothing
// factor.
func NewReframer(smoothing float64) *Reframer {
	return &Reframer{Smoothing: smoothing}
}

// Compute derives this frame's crop window: size it to the target aspect,
// center on the interest point, clamp to the frame, recenter on the union
// of high-confidence subject bounds if they all fit, then smooth against
// the previous frame's crop.
func (r *Reframer) Compute(subjects []Subject, sourceAspect, targetAspect float64, highConfidenceThreshold float64) Crop {
	interest := CenterOfInterest(subjects)
	w, h := rawCropSize(sourceAspect, targetAspect)

	x := interest.X - w/2
	y := interest.Y - h/2
	x = clamp(x, 0, 1-w)
	y = clamp(y, 0, 1-h)

	if union, ok := highConfidenceUnion(subjects, highConfidenceThreshold); ok {
		if fitsWithin(union, w, h) {
			cx := (union.X + union.X + union.W) / 2
			cy := (union.Y + union.Y + union.H) / 2
			x = clamp(cx-w/2, 0, 1-w)
			y = clamp(cy-h/2, 0, 1-h)
		}
	}

	crop := Crop{X: x, Y: y, W: w, H: h}
	if r.previous == nil {
		r.previous = &crop
		return crop
	}

	alpha := r.Smoothing
	smoothed := Crop{
		X: alpha*r.previous.X + (1-alpha)*crop.X,
		Y: alpha*r.previous.Y + (1-alpha)*crop.Y,
		W: alpha*r.previous.W + (1-alpha)*crop.W,
		H: alpha*r.previous.H + (1-alpha)*crop.H,
	}
	r.previous = &smoothed
	return smoothed
}

func highConfidenceUnion(subjects []Subject, threshold float64) (Rect, bool) {
	var union Rect
	found := false
	for _, s := range subjects {
		if s.Confidence < threshold {
			continue
		}
		if !found {
			union = s.Bounds
			found = true
			continue
		}
		minX := min(union.X, s.Bounds.X)
		minY := min(union.Y, s.Bounds.Y)
		maxX := max(union.X+union.W, s.Bounds.X+s.Bounds.W)
		maxY := max(union.Y+union.H, s.Bounds.Y+s.Bounds.H)
		union = Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	}
	return union, found
}

func fitsWithin(union Rect, w, h float64) bool {
	return union.W <= w && union.H <= h
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// IsValid mirrors frameproc.CropRegion.IsValid's containment check for the
// reframe clamp property in spec.md §8.
func (c Crop) IsValid() bool {
	return c.X >= 0 && c.Y >= 0 && c.X+c.W <= 1+1e-9 && c.Y+c.H <= 1+1e-9
}
