package export

import (
	"math"

	"github.com/fluxreel/corecut/internal/config"
	"github.com/fluxreel/corecut/internal/errors"
)

// AudioPolicy selects whether the export attaches an audio input.
type AudioPolicy int

const (
	AudioAuto AudioPolicy = iota
	AudioRequired
	AudioNever
)

// ExpectedFrames computes floor(durationSeconds * fps), rejecting a
// non-positive result per spec.md §4.10 step 3.
func ExpectedFrames(durationSeconds, fps float64) (int64, error) {
	n := int64(math.Floor(durationSeconds * fps))
	if n <= 0 {
		return 0, errors.NewInvalidFrameRate(fps)
	}
	return n, nil
}

// BitrateFloor computes max(floor, budgetPerPxFPS * width * height * fps).
func BitrateFloor(width, height int, fps float64, cfg config.WriterConfig) int64 {
	computed := int64(cfg.BitrateBudgetPerPxFPS * float64(width) * float64(height) * fps)
	if computed < cfg.MinBitrateFloor {
		return cfg.MinBitrateFloor
	}
	return computed
}

// KeyframeInterval is fixed at one keyframe per second of video, i.e. fps.
func KeyframeInterval(fps float64) int {
	return int(math.Round(fps))
}

// WantsAudioInput decides whether to add an audio input to the writer,
// per spec.md §4.10 step 3's "required, or (auto and timeline has audio
// tracks)" rule.
func WantsAudioInput(policy AudioPolicy, timelineHasAudioTracks bool) bool {
	switch policy {
	case AudioRequired:
		return true
	case AudioNever:
		return false
	default:
		return timelineHasAudioTracks
	}
}
