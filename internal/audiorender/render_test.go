package audiorender

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type constSource struct {
	value  float64
	status ChunkStatus
	err    error
}

func (s constSource) RenderChunk(startSample int64, channels [][]float64, frameCount int) (ChunkStatus, error) {
	if s.status != StatusOK {
		return s.status, s.err
	}
	for ch := range channels {
		for i := 0; i < frameCount; i++ {
			channels[ch][i] = s.value
		}
	}
	return StatusOK, nil
}

func TestRenderProducesExactTotalFrames(t *testing.T) {
	r := NewRenderer(constSource{value: 0.05, status: StatusOK}, MasteringConfig{LimiterCeiling: 0.98}, 2, 100, true)
	var total int64
	err := r.Render(350, func(c Chunk) error {
		total += int64(len(c.Channels[0]))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(350), total)
}

func TestInsufficientDataZeroFills(t *testing.T) {
	r := NewRenderer(constSource{status: StatusInsufficientData}, MasteringConfig{LimiterCeiling: 0.98}, 1, 50, false)
	err := r.Render(50, func(c Chunk) error {
		for _, v := range c.Channels[0] {
			assert.Equal(t, 0.0, v)
		}
		return nil
	})
	require.NoError(t, err)
}

// TestLimiterSafetyProperty exercises spec.md §8's "output peak magnitude
// <= 0.98 for every emitted chunk" invariant.
func TestLimiterSafetyProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		amplitude := rapid.Float64Range(0, 5).Draw(rt, "amplitude")
		r := NewRenderer(constSource{value: amplitude, status: StatusOK}, MasteringConfig{LimiterCeiling: 0.98}, 2, 64, true)
		err := r.Render(64, func(c Chunk) error {
			for ch := range c.Channels {
				for _, v := range c.Channels[ch] {
					assert.LessOrEqual(rt, math.Abs(v), 0.98+1e-9)
				}
			}
			return nil
		})
		require.NoError(rt, err)
	})
}

func TestSoftCompressorAttenuatesAboveThreshold(t *testing.T) {
	channels := [][]float64{{1.0, -1.0, 0.1}}
	applySoftCompressor(channels, 3, -6, 2)
	threshold := pow10(-6.0 / 20)
	assert.Less(t, channels[0][0], 1.0)
	assert.Greater(t, channels[0][0], threshold)
	assert.Equal(t, 0.1, channels[0][2])
}

func TestAggregateDialogCleanupGainClamps(t *testing.T) {
	assert.Equal(t, 0.0, AggregateDialogCleanupGain([]float64{-3, 2}))
	assert.Equal(t, 6.0, AggregateDialogCleanupGain([]float64{10, 8}))
	assert.Equal(t, 4.0, AggregateDialogCleanupGain([]float64{4, 5}))
}

func TestEngineerGainClampsAndEnablesCompressor(t *testing.T) {
	gain, enable, threshold, ratio := EngineerGain(LoudnessReading{ApproxLUFS: -30}, -14)
	assert.Equal(t, 12.0, gain)
	assert.True(t, enable)
	assert.Equal(t, -12.0, threshold)
	assert.Equal(t, 3.0, ratio)

	gain2, enable2, _, _ := EngineerGain(LoudnessReading{ApproxLUFS: -15}, -14)
	assert.InDelta(t, 1.0, gain2, 1e-9)
	assert.False(t, enable2)
}
