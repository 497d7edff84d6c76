// Package spatial computes speaker-gain panning laws: equal-power stereo
// pan and VBAP for 5.1/7.1 surround layouts.
package spatial

import (
	"math"
	"sort"
)

// StereoPan returns the equal-power left/right gains for pan in [-1, 1]
// (azimuth/90°).
func StereoPan(pan float64) (left, right float64) {
	left = math.Sqrt(0.5 * (1 - pan))
	right = math.Sqrt(0.5 * (1 + pan))
	return
}

// Speaker is one channel of a surround layout, placed by azimuth in
// degrees (0 = front center, positive clockwise) and distance in meters.
type Speaker struct {
	Channel  string
	Azimuth  float64
	Distance float64
}

// Layout51 is the standard ITU 5.1 layout (L, R, C, LFE, Ls, Rs); LFE's
// azimuth is unused since its gain is derived from distance instead.
var Layout51 = []Speaker{
	{Channel: "L", Azimuth: -30, Distance: 2},
	{Channel: "R", Azimuth: 30, Distance: 2},
	{Channel: "C", Azimuth: 0, Distance: 2},
	{Channel: "LFE", Azimuth: 0, Distance: 1},
	{Channel: "Ls", Azimuth: -110, Distance: 2},
	{Channel: "Rs", Azimuth: 110, Distance: 2},
}

// Layout71 extends Layout51 with side speakers.
var Layout71 = []Speaker{
	{Channel: "L", Azimuth: -30, Distance: 2},
	{Channel: "R", Azimuth: 30, Distance: 2},
	{Channel: "C", Azimuth: 0, Distance: 2},
	{Channel: "LFE", Azimuth: 0, Distance: 1},
	{Channel: "Ls", Azimuth: -110, Distance: 2},
	{Channel: "Rs", Azimuth: 110, Distance: 2},
	{Channel: "Lss", Azimuth: -150, Distance: 2},
	{Channel: "Rss", Azimuth: 150, Distance: 2},
}

// VBAPGains returns a gain per speaker in layout for a source at the
// given azimuth (degrees) and distance (meters). Non-LFE speakers are
// blended by piecewise triangular VBAP between the two adjacent azimuth
// speakers; the LFE gain is derived from distance alone and does not
// compete for the panning law's normalization share.
func VBAPGains(layout []Speaker, azimuth, distance float64) map[string]float64 {
	gains := make(map[string]float64, len(layout))

	var panSpeakers []Speaker
	var lfe *Speaker
	for i := range layout {
		if layout[i].Channel == "LFE" {
			lfe = &layout[i]
			continue
		}
		panSpeakers = append(panSpeakers, layout[i])
	}
	sort.Slice(panSpeakers, func(i, j int) bool { return panSpeakers[i].Azimuth < panSpeakers[j].Azimuth })

	left, right := adjacentSpeakers(panSpeakers, azimuth)
	if left.Channel == right.Channel {
		gains[left.Channel] = 1
	} else {
		span := right.Azimuth - left.Azimuth
		if span <= 0 {
			span += 360
		}
		frac := azimuth - left.Azimuth
		if frac < 0 {
			frac += 360
		}
		t := frac / span
		gains[left.Channel] += 1 - t
		gains[right.Channel] += t
	}

	if lfe != nil {
		gains[lfe.Channel] = minFloat(distance/10, 0.3) * 0.5
	}

	renormalize(gains, lfe)
	return gains
}

// adjacentSpeakers finds the pair of speakers (sorted by azimuth,
// wrapping around ±180°) bracketing the given azimuth.
func adjacentSpeakers(sorted []Speaker, azimuth float64) (left, right Speaker) {
	azimuth = wrapAzimuth(azimuth)
	n := len(sorted)
	for i := 0; i < n; i++ {
		a := wrapAzimuth(sorted[i].Azimuth)
		next := sorted[(i+1)%n]
		b := wrapAzimuth(next.Azimuth)
		if b <= a {
			b += 360
		}
		az := azimuth
		if az < a {
			az += 360
		}
		if az >= a && az <= b {
			return sorted[i], next
		}
	}
	return sorted[n-1], sorted[0]
}

func wrapAzimuth(deg float64) float64 {
	for deg < -180 {
		deg += 360
	}
	for deg > 180 {
		deg -= 360
	}
	return deg
}

// renormalize scales the panning-law gains (excluding LFE, which is
// derived independently from distance) so they sum to 1 when the total
// exceeds 0.
func renormalize(gains map[string]float64, lfe *Speaker) {
	var total float64
	for ch, g := range gains {
		if lfe != nil && ch == lfe.Channel {
			continue
		}
		total += g
	}
	if total <= 0 {
		return
	}
	for ch := range gains {
		if lfe != nil && ch == lfe.Channel {
			continue
		}
		gains[ch] /= total
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
