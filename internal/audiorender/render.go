// Package audiorender drives the audio graph in offline, chunked
// manual-render mode and applies the mastering chain (dialog-cleanup EQ,
// soft compressor, safety limiter) to every chunk before it is handed to
// the container writer.
package audiorender

import (
	"time"

	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/logger"
)

// ChunkStatus is the result of pulling one chunk from the audio graph.
type ChunkStatus int

const (
	StatusOK ChunkStatus = iota
	StatusInsufficientData
	StatusCannotDoNow
	StatusError
)

// ChunkSource pulls audio from the graph, chunk by chunk, in manual-render
// mode — the external collaborator this package drives.
type ChunkSource interface {
	RenderChunk(startSample int64, channels [][]float64, frameCount int) (ChunkStatus, error)
}

// MasteringConfig controls the dialog-cleanup preset and limiter ceiling.
type MasteringConfig struct {
	DialogCleanupEnabled bool
	GlobalGainDB         float64 // aggregated minimum across clips, clamped [0,6] before use
	CompressorEnabled    bool
	CompressorThreshold  float64
	CompressorRatio      float64
	LimiterCeiling       float64
}

// AggregateDialogCleanupGain clamps the minimum requested global gain
// across all dialog-cleanup clips to [0,6] dB, per spec.md §4.7 step 1.
func AggregateDialogCleanupGain(requestedDB []float64) float64 {
	if len(requestedDB) == 0 {
		return 0
	}
	min := requestedDB[0]
	for _, v := range requestedDB[1:] {
		if v < min {
			min = v
		}
	}
	if min < 0 {
		min = 0
	}
	if min > 6 {
		min = 6
	}
	return min
}

// Chunk is one rendered, mastered slice of interleaved-per-channel audio.
type Chunk struct {
	StartSample int64
	Channels    [][]float64
}

// Renderer pulls chunks from a ChunkSource and applies the mastering chain.
type Renderer struct {
	Source        ChunkSource
	Config        MasteringConfig
	Channels      int
	MaxFrameCount int
	ReuseScratch  bool

	scratch [][]float64
}

// NewRenderer constructs a Renderer with the given chunking parameters.
func NewRenderer(source ChunkSource, cfg MasteringConfig, channels, maxFrameCount int, reuseScratch bool) *Renderer {
	return &Renderer{Source: source, Config: cfg, Channels: channels, MaxFrameCount: maxFrameCount, ReuseScratch: reuseScratch}
}

func (r *Renderer) allocate(frameCount int) [][]float64 {
	if r.ReuseScratch && r.scratch != nil && len(r.scratch[0]) >= frameCount {
		for ch := range r.scratch {
			for i := range r.scratch[ch][:frameCount] {
				r.scratch[ch][i] = 0
			}
		}
		return r.scratch
	}
	buf := make([][]float64, r.Channels)
	for ch := range buf {
		buf[ch] = make([]float64, frameCount)
	}
	if r.ReuseScratch {
		r.scratch = buf
	}
	return buf
}

// Render runs the offline chunk loop until totalFrames samples have been
// produced, invoking emit for each mastered chunk. It implements spec.md
// §4.7's retry-on-cannot_do_now and zero-fill-on-insufficient-data rules.
func (r *Renderer) Render(totalFrames int64, emit func(Chunk) error) error {
	var rendered int64
	for rendered < totalFrames {
		frameCount := r.MaxFrameCount
		if remaining := totalFrames - rendered; int64(frameCount) > remaining {
			frameCount = int(remaining)
		}

		buf := r.allocate(frameCount)
		status, err := r.pullWithRetry(rendered, buf, frameCount)
		if err != nil {
			return err
		}
		if status == StatusInsufficientData {
			logger.Warn("audio chunk underfed, zero-filling", logger.Int64("start_sample", rendered), logger.Int("frame_count", frameCount))
			for ch := range buf {
				for i := range buf[ch][:frameCount] {
					buf[ch][i] = 0
				}
			}
		}

		applyMasteringChain(buf, frameCount, r.Config)

		out := make([][]float64, len(buf))
		for ch := range buf {
			out[ch] = append([]float64(nil), buf[ch][:frameCount]...)
		}
		if err := emit(Chunk{StartSample: rendered, Channels: out}); err != nil {
			return err
		}
		rendered += int64(frameCount)
	}
	return nil
}

func (r *Renderer) pullWithRetry(startSample int64, buf [][]float64, frameCount int) (ChunkStatus, error) {
	for {
		status, err := r.Source.RenderChunk(startSample, buf, frameCount)
		if err != nil {
			return status, errors.NewReadFailed(err)
		}
		switch status {
		case StatusCannotDoNow:
			time.Sleep(time.Millisecond)
			continue
		case StatusError:
			return status, errors.NewReadFailed(nil)
		default:
			return status, nil
		}
	}
}

// applyMasteringChain runs the optional dialog-cleanup EQ/compressor
// aggregate (applied upstream as a gain multiplier here, since this
// package has no biquad EQ stage of its own — the filter curve itself is
// the external render device's concern), the soft compressor, and the
// safety limiter, in that order.
func applyMasteringChain(channels [][]float64, frameCount int, cfg MasteringConfig) {
	if cfg.DialogCleanupEnabled && cfg.GlobalGainDB != 0 {
		gain := dbToLinear(cfg.GlobalGainDB)
		for ch := range channels {
			for i := range channels[ch][:frameCount] {
				channels[ch][i] *= gain
			}
		}
	}
	if cfg.CompressorEnabled {
		applySoftCompressor(channels, frameCount, cfg.CompressorThreshold, cfg.CompressorRatio)
	}
	ceiling := cfg.LimiterCeiling
	if ceiling <= 0 {
		ceiling = 0.98
	}
	applySafetyLimiter(channels, frameCount, ceiling)
}

func dbToLinear(db float64) float64 {
	return pow10(db / 20)
}
