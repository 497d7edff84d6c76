package audiograph

import "github.com/fluxreel/corecut/internal/timeline"

// ChunkStatus mirrors audiorender.ChunkStatus without importing it, so
// audiograph stays independent of the renderer package. It is a distinct
// type: the export package's mixerChunkSource adapter converts Mixer's
// RenderChunk statuses to audiorender.ChunkStatus.
type ChunkStatus int

const (
	StatusOK ChunkStatus = iota
	StatusInsufficientData
	StatusCannotDoNow
	StatusError
)

// Mixer sums every procedural generator active in a timeline's audio
// tracks into a single chunk buffer, in sample-index space at a fixed
// sample rate.
type Mixer struct {
	SampleRate int
	Channels   int
	generators []*Generator
}

// NewMixer builds one Generator per audio clip in tl, mapping each
// clip's timeline range to a sample range at sampleRate. Clips whose
// AssetID does not parse as a ligm://audio/ URL fall back to sine(1000)
// per ParseSourceURL's own determinism rule.
func NewMixer(tl *timeline.Timeline, sampleRate, channels int) *Mixer {
	m := &Mixer{SampleRate: sampleRate, Channels: channels}
	for _, tr := range tl.Tracks {
		if tr.Kind != timeline.KindAudio {
			continue
		}
		for _, c := range tr.Clips {
			startSample := c.Range.Start.ToSampleIndex(sampleRate)
			endSample := c.Range.End().ToSampleIndex(sampleRate)
			offsetSample := c.SourceRange.Start.ToSampleIndex(sampleRate)
			clip := ClipAudio{
				Name:            c.ID,
				Source:          ParseSourceURL(c.AssetID),
				ClipStartSample: startSample,
				ClipEndSample:   endSample,
				ClipOffset:      offsetSample,
				SampleRate:      sampleRate,
			}
			m.generators = append(m.generators, NewGenerator(clip, nil))
		}
	}
	return m
}

// RenderChunk sums every generator's contribution to [startSample,
// startSample+frameCount) across all requested channels.
func (m *Mixer) RenderChunk(startSample int64, channels [][]float64, frameCount int) (ChunkStatus, error) {
	for ch := range channels {
		for i := 0; i < frameCount && i < len(channels[ch]); i++ {
			channels[ch][i] = 0
		}
	}
	if len(m.generators) == 0 {
		return StatusOK, nil
	}

	scratch := make([][]float64, m.Channels)
	for ch := range scratch {
		scratch[ch] = make([]float64, frameCount)
	}
	for _, g := range m.generators {
		g.Render(startSample, scratch, frameCount)
		for ch := range channels {
			if ch >= len(scratch) {
				continue
			}
			for i := 0; i < frameCount && i < len(channels[ch]); i++ {
				channels[ch][i] += scratch[ch][i]
			}
		}
	}
	return StatusOK, nil
}
