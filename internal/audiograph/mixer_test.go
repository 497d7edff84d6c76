package audiograph

import (
	"testing"

	"github.com/fluxreel/corecut/internal/rationaltime"
	"github.com/fluxreel/corecut/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixerSumsActiveClips(t *testing.T) {
	tl := timeline.NewTimeline("tl", "test")
	tr := timeline.NewTrack("a0", timeline.KindAudio)

	rng := rationaltime.NewTimeRange(rationaltime.New(0, 48000), rationaltime.New(48000, 48000))
	c, err := timeline.NewClip("c0", "c0", "ligm://audio/sine?freq=1000", rng, rng)
	require.NoError(t, err)
	require.NoError(t, tr.AddClip(c))
	tl.Tracks = append(tl.Tracks, tr)

	mixer := NewMixer(tl, 48000, 2)
	channels := [][]float64{make([]float64, 480), make([]float64, 480)}
	status, err := mixer.RenderChunk(0, channels, 480)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.NotEqual(t, 0.0, channels[0][100])
}

func TestMixerSilentOutsideAnyClip(t *testing.T) {
	tl := timeline.NewTimeline("tl", "test")
	mixer := NewMixer(tl, 48000, 2)
	channels := [][]float64{make([]float64, 10), make([]float64, 10)}
	_, err := mixer.RenderChunk(0, channels, 10)
	require.NoError(t, err)
	for _, v := range channels[0] {
		assert.Equal(t, 0.0, v)
	}
}
