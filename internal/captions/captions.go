// Package captions selects and fades caption entries for burn-in, and
// parses SRT/WebVTT source files into the entry list the burner consumes.
package captions

import "sort"

// StyleOverride customizes one entry's rendering away from the default
// style.
type StyleOverride struct {
	FontScale        float64
	BackgroundBox    bool
	DropShadow       bool
	OutlineStroke    bool
	VerticalPosition float64 // fraction of frame height, default style's own
}

// CaptionEntry is one caption line with its active time window.
type CaptionEntry struct {
	ID            string
	Start         float64 // seconds
	End           float64 // seconds
	Text          string
	Speaker       string
	Position      string
	StyleOverride *StyleOverride
}

// SortEntries sorts captions ascending by start time, the canonical order
// the burner and parsers hand back.
func SortEntries(entries []CaptionEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
}

// ActiveAt returns every entry whose window contains t: start <= t < end.
func ActiveAt(entries []CaptionEntry, t float64) []CaptionEntry {
	var active []CaptionEntry
	for _, e := range entries {
		if e.Start <= t && t < e.End {
			active = append(active, e)
		}
	}
	return active
}

// FadeAlpha computes the linear fade-in/fade-out opacity for entry e at
// time t, given a symmetric fade duration. Returns 0 outside [start, end).
func FadeAlpha(e CaptionEntry, t, fade float64) float64 {
	if t < e.Start || t >= e.End {
		return 0
	}
	if fade <= 0 {
		return 1
	}
	if t < e.Start+fade {
		return clamp01((t - e.Start) / fade)
	}
	if t > e.End-fade {
		return clamp01((e.End - t) / fade)
	}
	return 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RenderCacheKey identifies a cached rendered text image: the same entry
// rendered at the same target dimensions is byte-identical, so render
// work is keyed and reused across frames.
type RenderCacheKey struct {
	EntryID string
	Width   int
	Height  int
}

// CompositePosition computes the top-left placement for a rendered
// caption image of the given size within a frame of width/height, using
// the entry's vertical_position fraction (default style's own if the
// entry carries none).
func CompositePosition(frameWidth, frameHeight, imageWidth, imageHeight int, verticalPosition float64) (x, y int) {
	x = (frameWidth - imageWidth) / 2
	y = int(verticalPosition*float64(frameHeight)) - imageHeight/2
	return
}
