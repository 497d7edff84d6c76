package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStereoPanCenterIsEqual(t *testing.T) {
	left, right := StereoPan(0)
	assert.InDelta(t, left, right, 1e-9)
	assert.InDelta(t, math.Sqrt(0.5), left, 1e-9)
}

func TestStereoPanHardLeft(t *testing.T) {
	left, right := StereoPan(-1)
	assert.InDelta(t, 1.0, left, 1e-9)
	assert.InDelta(t, 0.0, right, 1e-9)
}

func TestVBAPOnAxisIsSingleSpeaker(t *testing.T) {
	gains := VBAPGains(Layout51, -30, 2)
	assert.InDelta(t, 1.0, gains["L"], 1e-9)
	assert.InDelta(t, 0.0, gains["R"], 1e-9)
}

func TestVBAPBetweenSpeakersBlends(t *testing.T) {
	gains := VBAPGains(Layout51, -15, 2)
	assert.Greater(t, gains["L"], 0.0)
	assert.Greater(t, gains["C"], 0.0)

	var sum float64
	for ch, g := range gains {
		if ch == "LFE" {
			continue
		}
		sum += g
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestVBAPLFEDerivedFromDistance(t *testing.T) {
	gains := VBAPGains(Layout51, 0, 2)
	assert.InDelta(t, 0.1, gains["LFE"], 1e-9)

	gainsFar := VBAPGains(Layout51, 0, 100)
	assert.InDelta(t, 0.15, gainsFar["LFE"], 1e-9)
}
