package timeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxreel/corecut/internal/rationaltime"
)

func rt(v int64) rationaltime.RationalTime { return rationaltime.New(v, 24) }

func TestNewClipRejectsDurationMismatch(t *testing.T) {
	_, err := NewClip("c1", "clip", "asset1",
		rationaltime.NewTimeRange(rt(0), rt(10)),
		rationaltime.NewTimeRange(rt(0), rt(5)))
	require.Error(t, err)
}

func TestMapTimeInsideRange(t *testing.T) {
	c, err := NewClip("c1", "clip", "asset1",
		rationaltime.NewTimeRange(rt(10), rt(20)),
		rationaltime.NewTimeRange(rt(100), rt(20)))
	require.NoError(t, err)

	mapped, ok := c.MapTime(rt(15))
	require.True(t, ok)
	assert.True(t, rationaltime.Equal(rt(105), mapped))

	_, ok = c.MapTime(rt(5))
	assert.False(t, ok)
}

func TestTrimStartShiftsBothRanges(t *testing.T) {
	c, _ := NewClip("c1", "clip", "asset1",
		rationaltime.NewTimeRange(rt(0), rt(20)),
		rationaltime.NewTimeRange(rt(0), rt(20)))

	require.NoError(t, c.TrimStart(rt(5)))
	assert.True(t, rationaltime.Equal(rt(5), c.Range.Start))
	assert.True(t, rationaltime.Equal(rt(15), c.Range.Duration))
	assert.True(t, rationaltime.Equal(rt(5), c.SourceRange.Start))
	assert.True(t, rationaltime.Equal(rt(15), c.SourceRange.Duration))
}

func TestTrimStartRejectsWhenDeltaExceedsDuration(t *testing.T) {
	c, _ := NewClip("c1", "clip", "asset1",
		rationaltime.NewTimeRange(rt(0), rt(10)),
		rationaltime.NewTimeRange(rt(0), rt(10)))
	err := c.TrimStart(rt(10))
	assert.Error(t, err)
}

func TestSlipShiftsOnlySourceRange(t *testing.T) {
	c, _ := NewClip("c1", "clip", "asset1",
		rationaltime.NewTimeRange(rt(10), rt(10)),
		rationaltime.NewTimeRange(rt(50), rt(10)))

	c.Slip(rt(-60))
	assert.True(t, rationaltime.Equal(rt(10), c.Range.Start), "range untouched by slip")
	assert.True(t, rationaltime.Equal(rt(-10), c.SourceRange.Start), "negative source start tolerated, clamping is the renderer's job")
}

func TestTrackAddClipRejectsOverlap(t *testing.T) {
	tr := NewTrack("v1", KindVideo)
	a, _ := NewClip("a", "a", "asset", rationaltime.NewTimeRange(rt(0), rt(10)), rationaltime.NewTimeRange(rt(0), rt(10)))
	b, _ := NewClip("b", "b", "asset", rationaltime.NewTimeRange(rt(5), rt(10)), rationaltime.NewTimeRange(rt(0), rt(10)))
	require.NoError(t, tr.AddClip(a))
	assert.Error(t, tr.AddClip(b))
}

func TestTrackAddClipAdjacentAllowed(t *testing.T) {
	tr := NewTrack("v1", KindVideo)
	a, _ := NewClip("a", "a", "asset", rationaltime.NewTimeRange(rt(0), rt(10)), rationaltime.NewTimeRange(rt(0), rt(10)))
	b, _ := NewClip("b", "b", "asset", rationaltime.NewTimeRange(rt(10), rt(10)), rationaltime.NewTimeRange(rt(0), rt(10)))
	require.NoError(t, tr.AddClip(a))
	require.NoError(t, tr.AddClip(b))
	assert.Equal(t, 2, len(tr.Clips))
}

func TestTimelineDurationIsMaxOverTracks(t *testing.T) {
	tl := NewTimeline("tl1", "test")
	v1 := NewTrack("v1", KindVideo)
	a, _ := NewClip("a", "a", "asset", rationaltime.NewTimeRange(rt(0), rt(100)), rationaltime.NewTimeRange(rt(0), rt(100)))
	require.NoError(t, v1.AddClip(a))

	a1 := NewTrack("a1", KindAudio)
	b, _ := NewClip("b", "b", "asset", rationaltime.NewTimeRange(rt(0), rt(40)), rationaltime.NewTimeRange(rt(0), rt(40)))
	require.NoError(t, a1.AddClip(b))

	tl.Tracks = append(tl.Tracks, v1, a1)
	assert.True(t, rationaltime.Equal(rt(100), tl.Duration()))
}

func TestJSONRoundTripPreservesDurationAndTransition(t *testing.T) {
	tl := NewTimeline("tl1", "roundtrip")
	v1 := NewTrack("v1", KindVideo)
	a, _ := NewClip("a", "clip-a", "asset1", rationaltime.NewTimeRange(rt(0), rt(24)), rationaltime.NewTimeRange(rt(0), rt(24)))
	require.NoError(t, a.SetOutTransition(&Transition{ID: "t1", Type: Dissolve, Duration: rt(12)}))
	require.NoError(t, v1.AddClip(a))
	tl.Tracks = append(tl.Tracks, v1)

	data, err := json.Marshal(tl)
	require.NoError(t, err)

	var loaded Timeline
	require.NoError(t, json.Unmarshal(data, &loaded))

	require.Len(t, loaded.Tracks, 1)
	require.Len(t, loaded.Tracks[0].Clips, 1)
	clip := loaded.Tracks[0].Clips[0]
	assert.True(t, rationaltime.Equal(clip.Range.Duration, clip.SourceRange.Duration))
	require.NotNil(t, clip.OutTransition)
	assert.True(t, rationaltime.Equal(rt(12), clip.OutTransition.Duration))
}

func TestJSONLoadRejectsDurationMismatch(t *testing.T) {
	raw := `{
		"id": "tl1", "name": "bad",
		"tracks": [{
			"id": "v1", "kind": "video",
			"clips": [{
				"id": "c1", "name": "c1", "assetId": "a1",
				"range": {"start": {"value": 0, "timescale": 24}, "duration": {"value": 24, "timescale": 24}},
				"sourceRange": {"start": {"value": 0, "timescale": 24}, "duration": {"value": 10, "timescale": 24}}
			}]
		}]
	}`
	var tl Timeline
	err := json.Unmarshal([]byte(raw), &tl)
	assert.Error(t, err)
}

func TestJSONAcceptsTimeSecondsField(t *testing.T) {
	raw := `{
		"id": "tl1", "name": "secs",
		"tracks": [{
			"id": "v1", "kind": "video",
			"clips": [{
				"id": "c1", "name": "c1", "assetId": "a1",
				"range": {"start": {"timeSeconds": 0}, "duration": {"timeSeconds": 1}},
				"sourceRange": {"start": {"timeSeconds": 0}, "duration": {"timeSeconds": 1}}
			}]
		}]
	}`
	var tl Timeline
	require.NoError(t, json.Unmarshal([]byte(raw), &tl))
	require.Len(t, tl.Tracks[0].Clips, 1)
	assert.InDelta(t, 1.0, tl.Tracks[0].Clips[0].Range.Duration.ToSeconds(), 1e-9)
}
