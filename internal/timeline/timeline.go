// Package timeline implements the clip/track/timeline data model: ordered,
// non-overlapping clips per track, duration-preserving mutations, and
// time-mapping from the timeline's timeline into a clip's source media.
package timeline

import (
	"sort"

	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/rationaltime"
)

// TransitionType selects the visual blend rendered at a clip boundary.
type TransitionType int

const (
	Dissolve TransitionType = iota
	Wipe
)

// Transition is attached as a clip's OutTransition and rendered centered on
// the clip boundary — the resolver extends each neighbor by the full
// Duration, so the overlap spans 2×Duration.
type Transition struct {
	ID       string
	Type     TransitionType
	Duration rationaltime.RationalTime
}

// ClipStatus tracks a clip's readiness for rendering; export preflight
// rejects clips not in StatusReady.
type ClipStatus int

const (
	StatusReady ClipStatus = iota
	StatusOffline
	StatusProxy
)

// Effect references a registered render feature applied to a clip, bound
// to one of the video graph's allowed input ports.
type Effect struct {
	FeatureID string
	Port      string
}

// Clip is a single piece of media placed on a track. Range and SourceRange
// must always carry equal duration — trim/slip operations either preserve
// that invariant or reject.
type Clip struct {
	ID            string
	Name          string
	AssetID       string
	Range         rationaltime.TimeRange
	SourceRange   rationaltime.TimeRange
	Status        ClipStatus
	OutTransition *Transition
	Effects       []Effect
}

// NewClip constructs a Clip, enforcing the duration invariant the way
// on-load validation does for serialized clips.
func NewClip(id, name, assetID string, rng, sourceRange rationaltime.TimeRange) (*Clip, error) {
	if !rationaltime.Equal(rng.Duration, sourceRange.Duration) {
		return nil, errors.NewInvalidDuration(rng.Duration.String(), sourceRange.Duration.String())
	}
	return &Clip{ID: id, Name: name, AssetID: assetID, Range: rng, SourceRange: sourceRange}, nil
}

// SetOutTransition attaches a transition, validating its duration is
// non-negative (RationalTime.Value < 0 can't occur via NewTimeRange's own
// panic, but a caller may hand us a raw value so we check defensively here
// since this is a load-time validation boundary, not an internal one).
func (c *Clip) SetOutTransition(t *Transition) error {
	if t != nil && t.Duration.Value < 0 {
		return errors.NewInvalidTransitionDuration(t.Duration.String())
	}
	c.OutTransition = t
	return nil
}

// MapTime returns the position within the clip's source media that
// corresponds to timeline instant t, or false if t falls outside the
// clip's range.
func (c *Clip) MapTime(t rationaltime.RationalTime) (rationaltime.RationalTime, bool) {
	if !c.Range.Contains(t) {
		return rationaltime.RationalTime{}, false
	}
	offset := rationaltime.Sub(t, c.Range.Start)
	return rationaltime.Add(c.SourceRange.Start, offset), true
}

// MapTimeExtrapolated performs the same offset arithmetic as MapTime but
// without the Contains check — used by the resolver to compute a segment's
// source range during the Duration-wide window a transition pushes outside
// the clip's own stored Range.
func (c *Clip) MapTimeExtrapolated(t rationaltime.RationalTime) rationaltime.RationalTime {
	offset := rationaltime.Sub(t, c.Range.Start)
	return rationaltime.Add(c.SourceRange.Start, offset)
}

// MoveTo relocates the clip to a new start time, keeping both ranges' shared
// duration and shifting SourceRange.Start along with it.
func (c *Clip) MoveTo(newStart rationaltime.RationalTime) {
	delta := rationaltime.Sub(newStart, c.Range.Start)
	c.Range = rationaltime.NewTimeRange(newStart, c.Range.Duration)
	c.SourceRange = rationaltime.NewTimeRange(rationaltime.Add(c.SourceRange.Start, delta), c.SourceRange.Duration)
}

// TrimStart shifts both Range and SourceRange forward by delta, shortening
// duration. Rejects when delta >= current duration (would collapse or
// invert the clip).
func (c *Clip) TrimStart(delta rationaltime.RationalTime) error {
	if rationaltime.GreaterOrEqual(delta, c.Range.Duration) {
		return errors.NewInvalidDuration(c.Range.Duration.String(), delta.String())
	}
	newDuration := rationaltime.Sub(c.Range.Duration, delta)
	c.Range = rationaltime.NewTimeRange(rationaltime.Add(c.Range.Start, delta), newDuration)
	c.SourceRange = rationaltime.NewTimeRange(rationaltime.Add(c.SourceRange.Start, delta), newDuration)
	return nil
}

// TrimEnd shortens both ranges from the tail by delta. Rejects when delta
// >= current duration.
func (c *Clip) TrimEnd(delta rationaltime.RationalTime) error {
	if rationaltime.GreaterOrEqual(delta, c.Range.Duration) {
		return errors.NewInvalidDuration(c.Range.Duration.String(), delta.String())
	}
	newDuration := rationaltime.Sub(c.Range.Duration, delta)
	c.Range = rationaltime.NewTimeRange(c.Range.Start, newDuration)
	c.SourceRange = rationaltime.NewTimeRange(c.SourceRange.Start, newDuration)
	return nil
}

// Slip shifts only SourceRange by delta, leaving the clip's position and
// duration on the timeline untouched. delta may be negative; the renderer
// (not this package) is responsible for clamping a resulting negative
// SourceRange.Start to zero or black-padding.
func (c *Clip) Slip(delta rationaltime.RationalTime) {
	c.SourceRange = rationaltime.NewTimeRange(rationaltime.Add(c.SourceRange.Start, delta), c.SourceRange.Duration)
}

// TrackKind distinguishes video from audio tracks for resolver/graph-builder
// dispatch.
type TrackKind int

const (
	KindVideo TrackKind = iota
	KindAudio
)

// Track holds clips ordered by Range.Start, non-overlapping: for
// consecutive clips A, B, A.Range.End() <= B.Range.Start().
type Track struct {
	ID    string
	Kind  TrackKind
	Clips []*Clip
}

// NewTrack creates an empty track of the given kind.
func NewTrack(id string, kind TrackKind) *Track {
	return &Track{ID: id, Kind: kind}
}

// AddClip inserts a clip in sorted position, rejecting placements that
// would overlap an existing clip.
func (tr *Track) AddClip(c *Clip) error {
	idx := sort.Search(len(tr.Clips), func(i int) bool {
		return rationaltime.GreaterOrEqual(tr.Clips[i].Range.Start, c.Range.Start)
	})
	if idx > 0 && rationaltime.Greater(tr.Clips[idx-1].Range.End(), c.Range.Start) {
		return errors.NewInvalidDuration(c.Range.Start.String(), tr.Clips[idx-1].Range.End().String())
	}
	if idx < len(tr.Clips) && rationaltime.Greater(c.Range.End(), tr.Clips[idx].Range.Start) {
		return errors.NewInvalidDuration(c.Range.End().String(), tr.Clips[idx].Range.Start.String())
	}
	tr.Clips = append(tr.Clips, nil)
	copy(tr.Clips[idx+1:], tr.Clips[idx:])
	tr.Clips[idx] = c
	return nil
}

// Duration is the end time of the track's last clip, or zero if empty.
func (tr *Track) Duration() rationaltime.RationalTime {
	if len(tr.Clips) == 0 {
		return rationaltime.Zero()
	}
	return tr.Clips[len(tr.Clips)-1].Range.End()
}

// ActiveClipsAt returns every clip on the track whose range contains t.
func (tr *Track) ActiveClipsAt(t rationaltime.RationalTime) []*Clip {
	var active []*Clip
	for _, c := range tr.Clips {
		if c.Range.Contains(t) {
			active = append(active, c)
		}
	}
	return active
}

// Timeline is an ordered collection of tracks sharing a single time axis.
type Timeline struct {
	ID     string
	Name   string
	Tracks []*Track
}

// NewTimeline constructs an empty timeline.
func NewTimeline(id, name string) *Timeline {
	return &Timeline{ID: id, Name: name}
}

// Duration is the maximum duration across all tracks.
func (t *Timeline) Duration() rationaltime.RationalTime {
	max := rationaltime.Zero()
	for _, tr := range t.Tracks {
		d := tr.Duration()
		if rationaltime.Greater(d, max) {
			max = d
		}
	}
	return max
}

// ActiveClipsAt returns, per track index, the clips active at instant t.
func (t *Timeline) ActiveClipsAt(instant rationaltime.RationalTime) map[int][]*Clip {
	result := make(map[int][]*Clip)
	for i, tr := range t.Tracks {
		if active := tr.ActiveClipsAt(instant); len(active) > 0 {
			result[i] = active
		}
	}
	return result
}
