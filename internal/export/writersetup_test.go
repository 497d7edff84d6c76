package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxreel/corecut/internal/config"
	"github.com/fluxreel/corecut/internal/errors"
)

func TestExpectedFramesFloors(t *testing.T) {
	n, err := ExpectedFrames(2.9, 30)
	assert.NoError(t, err)
	assert.Equal(t, int64(87), n)
}

func TestExpectedFramesRejectsNonPositive(t *testing.T) {
	_, err := ExpectedFrames(0, 30)
	var coreErr *errors.CoreError
	assert.ErrorAs(t, err, &coreErr)
	assert.Equal(t, "InvalidFrameRate", coreErr.Code)
}

func TestBitrateFloorUsesConfiguredFloorWhenHigher(t *testing.T) {
	cfg := config.WriterConfig{MinBitrateFloor: 8_000_000, BitrateBudgetPerPxFPS: 0.08}
	got := BitrateFloor(320, 240, 24, cfg)
	assert.Equal(t, int64(8_000_000), got)
}

func TestBitrateFloorUsesComputedWhenHigher(t *testing.T) {
	cfg := config.WriterConfig{MinBitrateFloor: 1_000, BitrateBudgetPerPxFPS: 0.08}
	got := BitrateFloor(1920, 1080, 60, cfg)
	want := int64(0.08 * 1920 * 1080 * 60)
	assert.Equal(t, want, got)
}

func TestKeyframeIntervalRoundsFPS(t *testing.T) {
	assert.Equal(t, 30, KeyframeInterval(29.97))
	assert.Equal(t, 24, KeyframeInterval(24))
}

func TestWantsAudioInput(t *testing.T) {
	assert.True(t, WantsAudioInput(AudioRequired, false))
	assert.False(t, WantsAudioInput(AudioNever, true))
	assert.True(t, WantsAudioInput(AudioAuto, true))
	assert.False(t, WantsAudioInput(AudioAuto, false))
}
