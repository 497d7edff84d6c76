package timeline

import (
	"encoding/json"

	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/rationaltime"
)

// rationalTimeJSON accepts either an exact {value,timescale} pair or an
// approximate {timeSeconds} field, rounding the latter to the default
// timescale on load — mirrors how OTIO-derived JSON sometimes carries plain
// float seconds for hand-authored fixtures.
type rationalTimeJSON struct {
	Value       *int64   `json:"value,omitempty"`
	Timescale   *int32   `json:"timescale,omitempty"`
	TimeSeconds *float64 `json:"timeSeconds,omitempty"`
}

func (r rationalTimeJSON) toRationalTime() rationaltime.RationalTime {
	if r.Value != nil && r.Timescale != nil {
		return rationaltime.New(*r.Value, *r.Timescale)
	}
	if r.TimeSeconds != nil {
		return rationaltime.FromSeconds(*r.TimeSeconds, rationaltime.DefaultTimescale)
	}
	return rationaltime.Zero()
}

func rationalTimeToJSON(t rationaltime.RationalTime) rationalTimeJSON {
	v, ts := t.Value, t.Timescale
	return rationalTimeJSON{Value: &v, Timescale: &ts}
}

type timeRangeJSON struct {
	Start    rationalTimeJSON `json:"start"`
	Duration rationalTimeJSON `json:"duration"`
}

func (r timeRangeJSON) toTimeRange() rationaltime.TimeRange {
	return rationaltime.NewTimeRange(r.Start.toRationalTime(), r.Duration.toRationalTime())
}

func timeRangeToJSON(r rationaltime.TimeRange) timeRangeJSON {
	return timeRangeJSON{Start: rationalTimeToJSON(r.Start), Duration: rationalTimeToJSON(r.Duration)}
}

type transitionJSON struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Duration rationalTimeJSON `json:"duration"`
}

type effectJSON struct {
	FeatureID string `json:"featureId"`
	Port      string `json:"port"`
}

type clipJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	AssetID       string          `json:"assetId"`
	Range         timeRangeJSON   `json:"range"`
	SourceRange   timeRangeJSON   `json:"sourceRange"`
	Status        string          `json:"status,omitempty"`
	OutTransition *transitionJSON `json:"outTransition,omitempty"`
	Effects       []effectJSON    `json:"effects,omitempty"`
}

type trackJSON struct {
	ID    string     `json:"id"`
	Kind  string     `json:"kind"`
	Clips []clipJSON `json:"clips"`
}

type timelineJSON struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Tracks []trackJSON `json:"tracks"`
}

func statusToString(s ClipStatus) string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusProxy:
		return "proxy"
	default:
		return "ready"
	}
}

func statusFromString(s string) ClipStatus {
	switch s {
	case "offline":
		return StatusOffline
	case "proxy":
		return StatusProxy
	default:
		return StatusReady
	}
}

func transitionTypeToString(t TransitionType) string {
	if t == Wipe {
		return "wipe"
	}
	return "dissolve"
}

func transitionTypeFromString(s string) TransitionType {
	if s == "wipe" {
		return Wipe
	}
	return Dissolve
}

// MarshalJSON serializes the timeline into the on-disk project format.
func (t *Timeline) MarshalJSON() ([]byte, error) {
	out := timelineJSON{ID: t.ID, Name: t.Name}
	for _, tr := range t.Tracks {
		trJSON := trackJSON{ID: tr.ID}
		if tr.Kind == KindAudio {
			trJSON.Kind = "audio"
		} else {
			trJSON.Kind = "video"
		}
		for _, c := range tr.Clips {
			cj := clipJSON{
				ID:          c.ID,
				Name:        c.Name,
				AssetID:     c.AssetID,
				Range:       timeRangeToJSON(c.Range),
				SourceRange: timeRangeToJSON(c.SourceRange),
				Status:      statusToString(c.Status),
			}
			if c.OutTransition != nil {
				cj.OutTransition = &transitionJSON{
					ID:       c.OutTransition.ID,
					Type:     transitionTypeToString(c.OutTransition.Type),
					Duration: rationalTimeToJSON(c.OutTransition.Duration),
				}
			}
			for _, eff := range c.Effects {
				cj.Effects = append(cj.Effects, effectJSON{FeatureID: eff.FeatureID, Port: eff.Port})
			}
			trJSON.Clips = append(trJSON.Clips, cj)
		}
		out.Tracks = append(out.Tracks, trJSON)
	}
	return json.Marshal(out)
}

// UnmarshalJSON loads a timeline from the on-disk project format, validating
// each clip's duration invariant and transition duration as it goes.
func (t *Timeline) UnmarshalJSON(data []byte) error {
	var in timelineJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.ID = in.ID
	t.Name = in.Name
	t.Tracks = nil

	for _, trJSON := range in.Tracks {
		kind := KindVideo
		if trJSON.Kind == "audio" {
			kind = KindAudio
		}
		tr := NewTrack(trJSON.ID, kind)
		for _, cj := range trJSON.Clips {
			rng := cj.Range.toTimeRange()
			srcRange := cj.SourceRange.toTimeRange()
			if !rationaltime.Equal(rng.Duration, srcRange.Duration) {
				return errors.NewInvalidDuration(rng.Duration.String(), srcRange.Duration.String())
			}
			c := &Clip{
				ID:          cj.ID,
				Name:        cj.Name,
				AssetID:     cj.AssetID,
				Range:       rng,
				SourceRange: srcRange,
				Status:      statusFromString(cj.Status),
			}
			if cj.OutTransition != nil {
				dur := cj.OutTransition.Duration.toRationalTime()
				if dur.Value < 0 {
					return errors.NewInvalidTransitionDuration(dur.String())
				}
				c.OutTransition = &Transition{
					ID:       cj.OutTransition.ID,
					Type:     transitionTypeFromString(cj.OutTransition.Type),
					Duration: dur,
				}
			}
			for _, eff := range cj.Effects {
				c.Effects = append(c.Effects, Effect{FeatureID: eff.FeatureID, Port: eff.Port})
			}
			tr.Clips = append(tr.Clips, c)
		}
		t.Tracks = append(t.Tracks, tr)
	}
	return nil
}
