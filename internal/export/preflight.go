package export

import (
	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/timeline"
)

// allowedEffectPorts is the fixed set of video-track effect input ports
// the render graph understands.
var allowedEffectPorts = map[string]bool{
	"source":    true,
	"input":     true,
	"face_mask": true,
	"mask":      true,
}

// FeatureRegistry names every render feature id the embedder has
// registered, for the preflight's UnknownFeature check.
type FeatureRegistry map[string]bool

// Preflight enumerates every effect referenced by tl's video tracks,
// failing with UnknownFeature for an unregistered feature id or
// UnsupportedEffectInputPort for a port outside the allowed set, per
// spec.md §4.10 step 2.
func Preflight(tl *timeline.Timeline, registry FeatureRegistry) error {
	for _, tr := range tl.Tracks {
		if tr.Kind != timeline.KindVideo {
			continue
		}
		for _, c := range tr.Clips {
			for _, eff := range c.Effects {
				if !registry[eff.FeatureID] {
					return errors.NewUnknownFeature(eff.FeatureID)
				}
				if !allowedEffectPorts[eff.Port] {
					return errors.NewUnsupportedEffectInputPort(eff.FeatureID, eff.Port)
				}
			}
		}
	}
	return nil
}
