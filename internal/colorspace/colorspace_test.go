package colorspace

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
)

func TestDeltaE2000IdenticalIsZero(t *testing.T) {
	lab := LAB{L: 50, A: 10, B: -20}
	assert.InDelta(t, 0.0, DeltaE2000(lab, lab), 1e-9)
}

// TestDeltaE2000ReferencePair checks against one of the canonical
// Sharma et al. CIEDE2000 test-suite pairs.
func TestDeltaE2000ReferencePair(t *testing.T) {
	lab1 := LAB{L: 50.0000, A: 2.6772, B: -79.7751}
	lab2 := LAB{L: 50.0000, A: 0.0000, B: -82.7485}
	assert.InDelta(t, 2.0425, DeltaE2000(lab1, lab2), 1e-3)
}

func TestXYZLABRoundTrip(t *testing.T) {
	xyz := r3.Vector{X: 0.4, Y: 0.3, Z: 0.5}
	lab := XYZToLAB(xyz)
	back := LABToXYZ(lab)
	assert.InDelta(t, xyz.X, back.X, 1e-6)
	assert.InDelta(t, xyz.Y, back.Y, 1e-6)
	assert.InDelta(t, xyz.Z, back.Z, 1e-6)
}

func TestACEScgXYZRoundTrip(t *testing.T) {
	c := r3.Vector{X: 0.2, Y: 0.5, Z: 0.8}
	xyz := ACEScgToXYZ(c)
	back := XYZToACEScg(xyz)
	assert.InDelta(t, c.X, back.X, 1e-6)
	assert.InDelta(t, c.Y, back.Y, 1e-6)
	assert.InDelta(t, c.Z, back.Z, 1e-6)
}

func TestWhitePointMapsToL100(t *testing.T) {
	lab := XYZToLAB(d60WhitePoint)
	assert.InDelta(t, 100.0, lab.L, 1e-6)
	assert.InDelta(t, 0.0, lab.A, 1e-6)
	assert.InDelta(t, 0.0, lab.B, 1e-6)
}
