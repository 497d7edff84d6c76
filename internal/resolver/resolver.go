// Package resolver turns a timeline into an ordered sequence of segments —
// contiguous spans over which the set of active clips is constant — via a
// sweep-line pass over clip start/end events.
package resolver

import (
	"sort"

	"github.com/fluxreel/corecut/internal/rationaltime"
	"github.com/fluxreel/corecut/internal/timeline"
)

// ResolvedClip is a clip's contribution to a Segment: the portion of its
// source media that maps to this segment's span.
type ResolvedClip struct {
	ClipID       string
	AssetID      string
	TrackIndex   int
	SegmentRange rationaltime.TimeRange
	SourceRange  rationaltime.TimeRange
}

// Segment is a span of the timeline over which the active-clip set does not
// change. Transition is non-nil when more than one clip is active on a
// track within the segment.
type Segment struct {
	Range       rationaltime.TimeRange
	ActiveClips []ResolvedClip
	Transition  *timeline.Transition
}

type eventKind int

const (
	eventEnd eventKind = iota // sorts before eventStart at equal timestamps
	eventStart
)

type event struct {
	time       rationaltime.RationalTime
	kind       eventKind
	trackIndex int
	clip       *timeline.Clip
}

// Resolve runs the sweep-line algorithm described for the timeline
// resolver: clips with an OutTransition push their end forward and the
// following clip's start backward by the transition's duration, producing
// a dedicated overlap segment in which both clips are active.
func Resolve(tl *timeline.Timeline) []Segment {
	events := buildEvents(tl)
	sort.Slice(events, func(i, j int) bool {
		if !rationaltime.Equal(events[i].time, events[j].time) {
			return rationaltime.Less(events[i].time, events[j].time)
		}
		return events[i].kind < events[j].kind
	})

	active := make(map[int]map[string]*timeline.Clip)
	var segments []Segment
	var cursor rationaltime.RationalTime
	haveCursor := false

	flush := func(end rationaltime.RationalTime) {
		if !haveCursor || !rationaltime.Less(cursor, end) {
			return
		}
		if totalActive(active) == 0 {
			return
		}
		segments = append(segments, buildSegment(rationaltime.NewTimeRange(cursor, rationaltime.Sub(end, cursor)), active))
	}

	i := 0
	for i < len(events) {
		t := events[i].time
		flush(t)
		for i < len(events) && rationaltime.Equal(events[i].time, t) {
			e := events[i]
			trackSet := active[e.trackIndex]
			if trackSet == nil {
				trackSet = make(map[string]*timeline.Clip)
				active[e.trackIndex] = trackSet
			}
			switch e.kind {
			case eventStart:
				trackSet[e.clip.ID] = e.clip
			case eventEnd:
				delete(trackSet, e.clip.ID)
			}
			i++
		}
		cursor = t
		haveCursor = true
	}

	return segments
}

func totalActive(active map[int]map[string]*timeline.Clip) int {
	n := 0
	for _, set := range active {
		n += len(set)
	}
	return n
}

// buildSegment materializes a Segment for the current active set, sorting
// track indices and clip IDs for deterministic output, and locating the
// transition (if any) from the earlier clip on a multi-clip track.
func buildSegment(rng rationaltime.TimeRange, active map[int]map[string]*timeline.Clip) Segment {
	seg := Segment{Range: rng}

	trackIndices := make([]int, 0, len(active))
	for idx := range active {
		if len(active[idx]) > 0 {
			trackIndices = append(trackIndices, idx)
		}
	}
	sort.Ints(trackIndices)

	for _, idx := range trackIndices {
		set := active[idx]
		clipIDs := make([]string, 0, len(set))
		for id := range set {
			clipIDs = append(clipIDs, id)
		}
		sort.Strings(clipIDs)

		if len(clipIDs) > 1 {
			for _, id := range clipIDs {
				c := set[id]
				if c.OutTransition != nil && seg.Transition == nil {
					seg.Transition = c.OutTransition
				}
			}
		}

		for _, id := range clipIDs {
			c := set[id]
			srcStart := c.MapTimeExtrapolated(rng.Start)
			seg.ActiveClips = append(seg.ActiveClips, ResolvedClip{
				ClipID:       c.ID,
				AssetID:      c.AssetID,
				TrackIndex:   idx,
				SegmentRange: rng,
				SourceRange:  rationaltime.NewTimeRange(srcStart, rng.Duration),
			})
		}
	}
	return seg
}

// buildEvents computes the push-adjusted start/end events for every clip on
// every track. A clip's own OutTransition pushes its end forward by the
// transition's stored Duration; the following clip on the same track has
// its start pushed backward by the same amount, producing a symmetric
// overlap window of width 2×Duration centered on the cut.
func buildEvents(tl *timeline.Timeline) []event {
	var events []event
	for trackIdx, tr := range tl.Tracks {
		for i, c := range tr.Clips {
			start := c.Range.Start
			end := c.Range.End()

			if i > 0 {
				prev := tr.Clips[i-1]
				if prev.OutTransition != nil {
					start = rationaltime.Sub(start, prev.OutTransition.Duration)
				}
			}
			if c.OutTransition != nil {
				end = rationaltime.Add(end, c.OutTransition.Duration)
			}

			events = append(events, event{time: start, kind: eventStart, trackIndex: trackIdx, clip: c})
			events = append(events, event{time: end, kind: eventEnd, trackIndex: trackIdx, clip: c})
		}
	}
	return events
}
