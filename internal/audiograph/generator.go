// Package audiograph builds per-clip procedural source nodes, sums every
// clip's source directly into one mixed chunk buffer (there is no separate
// per-track bus stage), and exposes a deterministic pull-based sample
// generator for the audio renderer to drive.
package audiograph

import (
	"hash/fnv"
	"math"
)

// ClipAudio describes one audio clip's placement and source for sample
// generation, in integer sample-index space.
type ClipAudio struct {
	Name            string
	Source          SourceSpec
	ClipStartSample int64
	ClipEndSample   int64
	ClipOffset      int64 // sample offset into the source at ClipStartSample
	SampleRate      int
}

// Seed computes the deterministic FNV-64a clip seed per spec.md §4.6:
// hashed over (clip_name, 0, source_fn bytes, 0, clip_start_sample_le,
// clip_end_sample_le). Identical inputs must hash identically across runs,
// architectures, and thread counts.
func (c ClipAudio) Seed() uint64 {
	h := fnv.New64a()
	h.Write([]byte(c.Name))
	h.Write([]byte{0})
	h.Write([]byte(sourceFnName(c.Source.Kind)))
	h.Write([]byte{0})
	h.Write(leUint64(uint64(c.ClipStartSample)))
	h.Write(leUint64(uint64(c.ClipEndSample)))
	return h.Sum64()
}

func leUint64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func sourceFnName(k SourceKind) string {
	switch k {
	case KindSine:
		return "sine"
	case KindSweep:
		return "sweep"
	case KindWhiteNoise:
		return "white_noise"
	case KindPinkNoise:
		return "pink_noise"
	case KindImpulse:
		return "impulse"
	default:
		return "sine"
	}
}

// splitMix64 is the standard SplitMix64 step, used to hash a sample index
// plus clip seed into a pseudo-random 64-bit word.
func splitMix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// unitFloat maps a SplitMix64 output to [0,1).
func unitFloat(x uint64) float64 {
	return float64(x>>11) / float64(1<<53)
}

// pinkFilter is the fixed 7-pole IIR bank from spec.md §4.6, stateful per
// pink-noise stream.
type pinkFilter struct {
	b0, b1, b2, b3, b4, b5, b6 float64
}

func (p *pinkFilter) process(white float64) float64 {
	p.b0 = 0.99886*p.b0 + white*0.0555179
	p.b1 = 0.99332*p.b1 + white*0.0750759
	p.b2 = 0.96900*p.b2 + white*0.1538520
	p.b3 = 0.86650*p.b3 + white*0.3104856
	p.b4 = 0.55000*p.b4 + white*0.5329522
	p.b5 = -0.7616*p.b5 - white*0.0168980
	out := p.b0 + p.b1 + p.b2 + p.b3 + p.b4 + p.b5 + p.b6 + white*0.5362
	p.b6 = white * 0.115926
	return out * 0.11
}

// EnvelopeFunc returns the gain at an absolute timeline second, used for
// transition in/out fades. A nil EnvelopeFunc is treated as constant 1.
type EnvelopeFunc func(seconds float64) float64

// Generator produces samples for one clip, pull-style, into pre-allocated
// per-channel buffers.
type Generator struct {
	Clip     ClipAudio
	Envelope EnvelopeFunc
	seed     uint64
	pink     pinkFilter
}

// NewGenerator constructs a Generator for the given clip.
func NewGenerator(clip ClipAudio, envelope EnvelopeFunc) *Generator {
	return &Generator{Clip: clip, Envelope: envelope, seed: clip.Seed()}
}

// Render writes renderStart+n frames (for n in [0,count)) into every
// channel buffer, per spec.md §4.6's per-sample synthesis rules. Returns
// true if every written sample was exactly zero (the silence flag).
func (g *Generator) Render(renderStart int64, channels [][]float64, count int) bool {
	sampleRate := g.Clip.SampleRate
	silent := true

	for n := 0; n < count; n++ {
		absolute := renderStart + int64(n)
		var v float64
		if absolute < g.Clip.ClipStartSample || absolute >= g.Clip.ClipEndSample {
			v = 0
		} else {
			sourceSample := (absolute - g.Clip.ClipStartSample) + g.Clip.ClipOffset
			localSeconds := float64(sourceSample) / float64(sampleRate)
			v = g.synthesize(sourceSample, localSeconds)
			if g.Envelope != nil {
				v *= g.Envelope(float64(absolute) / float64(sampleRate))
			}
		}
		if v != 0 {
			silent = false
		}
		for ch := range channels {
			if n < len(channels[ch]) {
				channels[ch][n] = v
			}
		}
	}
	return silent
}

func (g *Generator) synthesize(sourceSample int64, localSeconds float64) float64 {
	spec := g.Clip.Source
	switch spec.Kind {
	case KindSine:
		return math.Sin(2*math.Pi*spec.Freq*localSeconds) * 0.1
	case KindWhiteNoise:
		x := splitMix64(uint64(sourceSample) ^ g.seed)
		return (unitFloat(x)*2 - 1) * 0.1
	case KindPinkNoise:
		x := splitMix64(uint64(sourceSample) ^ g.seed)
		white := unitFloat(x)*2 - 1
		return g.pink.process(white) * 0.1
	case KindSweep:
		progress := localSeconds / spec.SweepDuration
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
		freq := spec.SweepStart * math.Pow(spec.SweepEnd/spec.SweepStart, progress)
		return math.Sin(2*math.Pi*freq*localSeconds) * 0.1
	case KindImpulse:
		period := int64(spec.ImpulseInterval * float64(g.Clip.SampleRate))
		if period <= 0 {
			return 0
		}
		if ((sourceSample % period) + period) % period == 0 {
			return 0.9
		}
		return 0
	default:
		return 0
	}
}
