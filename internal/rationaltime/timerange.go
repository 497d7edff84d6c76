package rationaltime

// TimeRange is a half-open interval [Start, Start+Duration) in exact
// rational time. Duration must never be negative.
type TimeRange struct {
	Start    RationalTime
	Duration RationalTime
}

// NewTimeRange constructs a TimeRange, panicking if duration is negative —
// callers at the API boundary should validate before construction so this
// panic only ever fires on an internal bug.
func NewTimeRange(start, duration RationalTime) TimeRange {
	if duration.Value < 0 {
		panic("rationaltime: TimeRange duration must be >= 0")
	}
	return TimeRange{Start: start, Duration: duration}
}

// End returns Start + Duration.
func (r TimeRange) End() RationalTime {
	return Add(r.Start, r.Duration)
}

// Contains reports whether t is in [Start, End).
func (r TimeRange) Contains(t RationalTime) bool {
	return GreaterOrEqual(t, r.Start) && Less(t, r.End())
}

// Overlaps reports whether r and o share any instant.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return Less(r.Start, o.End()) && Less(o.Start, r.End())
}

// IsEmpty reports whether the range spans zero duration.
func (r TimeRange) IsEmpty() bool { return r.Duration.IsZero() }

// Extended returns a range covering both r and o, assuming contiguity is
// not required (used when merging resolver event spans).
func Extended(r, o TimeRange) TimeRange {
	start := Min(r.Start, o.Start)
	end := Max(r.End(), o.End())
	return NewTimeRange(start, Sub(end, start))
}
