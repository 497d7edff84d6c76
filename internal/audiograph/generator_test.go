package audiograph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSineSourceScenario reproduces spec.md §8 scenario 1: a 1 kHz sine over
// 1 second at 48 kHz yields exactly 48000 samples, peak magnitude ~0.1,
// ~2000 zero crossings, and a first sample of 0.
func TestSineSourceScenario(t *testing.T) {
	clip := ClipAudio{
		Name:            "tone",
		Source:          SourceSpec{Kind: KindSine, Freq: 1000},
		ClipStartSample: 0,
		ClipEndSample:   48000,
		SampleRate:      48000,
	}
	g := NewGenerator(clip, nil)

	buf := make([]float64, 48000)
	channels := [][]float64{buf}
	silent := g.Render(0, channels, 48000)

	require.False(t, silent)
	assert.InDelta(t, 0.0, buf[0], 1e-9)

	peak := 0.0
	crossings := 0
	for i := 1; i < len(buf); i++ {
		if math.Abs(buf[i]) > peak {
			peak = math.Abs(buf[i])
		}
		if (buf[i-1] < 0) != (buf[i] < 0) {
			crossings++
		}
	}
	assert.InDelta(t, 0.1, peak, 0.01)
	assert.InDelta(t, 2000, crossings, 50)
}

func TestOutsideClipRangeIsSilent(t *testing.T) {
	clip := ClipAudio{
		Source:          SourceSpec{Kind: KindSine, Freq: 440},
		ClipStartSample: 100,
		ClipEndSample:   200,
		SampleRate:      48000,
	}
	g := NewGenerator(clip, nil)
	buf := make([]float64, 10)
	silent := g.Render(0, [][]float64{buf}, 10)
	assert.True(t, silent)
	for _, v := range buf {
		assert.Equal(t, 0.0, v)
	}
}

func TestWhiteNoiseIsDeterministicAcrossRuns(t *testing.T) {
	clip := ClipAudio{
		Name:            "hiss",
		Source:          SourceSpec{Kind: KindWhiteNoise},
		ClipStartSample: 0,
		ClipEndSample:   1000,
		SampleRate:      48000,
	}
	run := func() []float64 {
		g := NewGenerator(clip, nil)
		buf := make([]float64, 1000)
		g.Render(0, [][]float64{buf}, 1000)
		return buf
	}
	a := run()
	b := run()
	assert.Equal(t, a, b)
}

func TestImpulseFiresAtInterval(t *testing.T) {
	clip := ClipAudio{
		Source:          SourceSpec{Kind: KindImpulse, ImpulseInterval: 1},
		ClipStartSample: 0,
		ClipEndSample:   100000,
		SampleRate:      48000,
	}
	g := NewGenerator(clip, nil)
	buf := make([]float64, 48001)
	g.Render(0, [][]float64{buf}, 48001)
	assert.Equal(t, 0.9, buf[0])
	assert.Equal(t, 0.9, buf[48000])
	assert.Equal(t, 0.0, buf[1])
}

func TestClipSeedStableAcrossCalls(t *testing.T) {
	clip := ClipAudio{Name: "a", Source: SourceSpec{Kind: KindWhiteNoise}, ClipStartSample: 0, ClipEndSample: 100}
	assert.Equal(t, clip.Seed(), clip.Seed())

	other := clip
	other.Name = "b"
	assert.NotEqual(t, clip.Seed(), other.Seed())
}

func TestPinkNoiseStaysBounded(t *testing.T) {
	clip := ClipAudio{
		Name:            "rumble",
		Source:          SourceSpec{Kind: KindPinkNoise},
		ClipStartSample: 0,
		ClipEndSample:   10000,
		SampleRate:      48000,
	}
	g := NewGenerator(clip, nil)
	buf := make([]float64, 10000)
	g.Render(0, [][]float64{buf}, 10000)
	for _, v := range buf {
		assert.Less(t, math.Abs(v), 1.0)
	}
}

func TestParseSourceURL(t *testing.T) {
	spec := ParseSourceURL("ligm://audio/sine?freq=440")
	assert.Equal(t, KindSine, spec.Kind)
	assert.Equal(t, 440.0, spec.Freq)

	fallback := ParseSourceURL("not-a-valid-url-at-all")
	assert.Equal(t, KindSine, fallback.Kind)
	assert.Equal(t, 1000.0, fallback.Freq)

	fallback2 := ParseSourceURL("ligm://audio/unknown_kind")
	assert.Equal(t, KindSine, fallback2.Kind)
}
