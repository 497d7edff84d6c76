package audiorender

import "math"

// pow10 is 10^x via the stdlib's general power function — kept as a named
// helper since the mastering formulas read as dB math, not generic pow.
func pow10(x float64) float64 { return math.Pow(10, x) }

// applySoftCompressor implements spec.md §4.7 step 4: samples over the
// threshold are compressed by ratio, with unity makeup gain (the spec
// names no separate makeup stage, so makeup is always 1 here).
func applySoftCompressor(channels [][]float64, frameCount int, thresholdDB, ratio float64) {
	threshold := pow10(thresholdDB / 20)
	for ch := range channels {
		for i := range channels[ch][:frameCount] {
			x := channels[ch][i]
			mag := math.Abs(x)
			if mag > threshold {
				sign := 1.0
				if x < 0 {
					sign = -1
				}
				channels[ch][i] = sign * (threshold + (mag-threshold)/ratio)
			}
		}
	}
}

// applySafetyLimiter scales every channel uniformly so the global peak
// magnitude across all channels never exceeds ceiling, per spec.md §4.7
// step 5.
func applySafetyLimiter(channels [][]float64, frameCount int, ceiling float64) {
	peak := 0.0
	for ch := range channels {
		for _, v := range channels[ch][:frameCount] {
			if m := math.Abs(v); m > peak {
				peak = m
			}
		}
	}
	if peak <= ceiling || peak == 0 {
		return
	}
	scale := ceiling / peak
	for ch := range channels {
		for i := range channels[ch][:frameCount] {
			channels[ch][i] *= scale
		}
	}
}

// LoudnessReading is the analyzer's output: an approximate LUFS figure
// (derived from RMS, not true ITU-R BS.1770) and the global peak in dB.
type LoudnessReading struct {
	ApproxLUFS float64
	PeakDB     float64
}

// Analyze computes per-channel RMS and the global peak magnitude, per
// spec.md §4.7's analyzer contract.
func Analyze(channels [][]float64, frameCount int) LoudnessReading {
	sumSquares := 0.0
	n := 0
	peak := 0.0
	for ch := range channels {
		for _, v := range channels[ch][:frameCount] {
			sumSquares += v * v
			n++
			if m := math.Abs(v); m > peak {
				peak = m
			}
		}
	}
	rms := 0.0
	if n > 0 {
		rms = math.Sqrt(sumSquares / float64(n))
	}
	return LoudnessReading{
		ApproxLUFS: 20 * log10Safe(rms),
		PeakDB:     20 * log10Safe(peak),
	}
}

func log10Safe(x float64) float64 {
	if x <= 0 {
		return -math.Inf(1)
	}
	return math.Log10(x)
}

// EngineerGain computes the gain adjustment to reach targetLUFS from the
// current reading, clamped to [-20,+12] dB, and decides whether the
// compressor should be enabled (|gain| >= 3 dB).
func EngineerGain(current LoudnessReading, targetLUFS float64) (gainDB float64, enableCompressor bool, threshold, ratio float64) {
	gain := targetLUFS - current.ApproxLUFS
	if gain < -20 {
		gain = -20
	}
	if gain > 12 {
		gain = 12
	}
	if math.Abs(gain) >= 3 {
		return gain, true, -12, 3
	}
	return gain, false, 0, 0
}

// DialogCleanupPreset returns the mastering configuration for spec.md
// §4.7 step 1's dialog-cleanup v1 preset, given the aggregated global gain.
func DialogCleanupPreset(globalGainDB float64) MasteringConfig {
	return MasteringConfig{
		DialogCleanupEnabled: true,
		GlobalGainDB:         globalGainDB,
		CompressorEnabled:    true,
		CompressorThreshold:  -16,
		CompressorRatio:      2.5,
		LimiterCeiling:       0.98,
	}
}
