package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/rationaltime"
	"github.com/fluxreel/corecut/internal/timeline"
)

func buildVideoClipWithEffect(t *testing.T, eff timeline.Effect) *timeline.Timeline {
	t.Helper()
	tl := timeline.NewTimeline("tl", "test")
	track := timeline.NewTrack("v1", timeline.KindVideo)
	rng := rationaltime.NewTimeRange(rationaltime.Zero(), rationaltime.FromSeconds(60, rationaltime.DefaultTimescale))
	clip, err := timeline.NewClip("c1", "clip", "asset-1", rng, rng)
	require.NoError(t, err)
	clip.Effects = append(clip.Effects, eff)
	require.NoError(t, track.AddClip(clip))
	tl.Tracks = append(tl.Tracks, track)
	return tl
}

func TestPreflightPassesForRegisteredFeatureAndAllowedPort(t *testing.T) {
	tl := buildVideoClipWithEffect(t, timeline.Effect{FeatureID: "face_blur", Port: "source"})
	registry := FeatureRegistry{"face_blur": true}
	assert.NoError(t, Preflight(tl, registry))
}

func TestPreflightRejectsUnknownFeature(t *testing.T) {
	tl := buildVideoClipWithEffect(t, timeline.Effect{FeatureID: "face_blur", Port: "source"})
	err := Preflight(tl, FeatureRegistry{})
	var coreErr *errors.CoreError
	assert.ErrorAs(t, err, &coreErr)
	assert.Equal(t, "UnknownFeature", coreErr.Code)
}

func TestPreflightRejectsDisallowedPort(t *testing.T) {
	tl := buildVideoClipWithEffect(t, timeline.Effect{FeatureID: "face_blur", Port: "scratch"})
	registry := FeatureRegistry{"face_blur": true}
	err := Preflight(tl, registry)
	var coreErr *errors.CoreError
	assert.ErrorAs(t, err, &coreErr)
	assert.Equal(t, "UnsupportedEffectInputPort", coreErr.Code)
}

func TestPreflightIgnoresAudioTrackEffects(t *testing.T) {
	tl := timeline.NewTimeline("tl", "test")
	track := timeline.NewTrack("a1", timeline.KindAudio)
	rng := rationaltime.NewTimeRange(rationaltime.Zero(), rationaltime.FromSeconds(60, rationaltime.DefaultTimescale))
	clip, err := timeline.NewClip("c1", "clip", "asset-1", rng, rng)
	require.NoError(t, err)
	clip.Effects = append(clip.Effects, timeline.Effect{FeatureID: "nonexistent", Port: "whatever"})
	require.NoError(t, track.AddClip(clip))
	tl.Tracks = append(tl.Tracks, track)

	assert.NoError(t, Preflight(tl, FeatureRegistry{}))
}
