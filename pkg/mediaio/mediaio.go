// Package mediaio defines the narrow interfaces through which the export
// core talks to the outside world: the GPU/software render device and the
// container writer. Nothing in internal/ imports a concrete encoder or GPU
// binding directly — every external collaborator crosses one of these
// interfaces. Audio has no external collaborator here: every in-scope
// audio source is procedurally synthesized by internal/audiograph, never
// decoded from a file, so there is no SampleReader-shaped boundary to
// cross.
package mediaio

import (
	"context"
	"image"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/fluxreel/corecut/internal/graphbuilder"
	"github.com/fluxreel/corecut/internal/rationaltime"
)

// Logger is the structured logger type threaded through every external
// collaborator boundary in this package — a RenderDevice or
// ContainerWriter implementation takes one at construction time rather
// than this package inventing its own logging interface, mirroring how
// the teacher's plugin SDK threads hclog.Logger into provider
// implementations.
type Logger = hclog.Logger

// NullLogger returns a Logger that discards everything, for collaborators
// constructed without an explicit one.
func NullLogger() Logger { return hclog.NewNullLogger() }

// RenderDevice compiles a render graph and renders it into a pixel buffer.
// Implementations may be a GPU backend, a CPU software rasterizer, or (in
// tests) a deterministic fake.
type RenderDevice interface {
	RenderFrame(ctx context.Context, g *graphbuilder.Graph, dst *image.RGBA) error
}

// PixelFormat names a frame's backing format.
type PixelFormat int

const (
	PixelFormatBGRA8 PixelFormat = iota
	PixelFormatRGBAFloat16
)

// VideoInputSpec configures the writer's video track.
type VideoInputSpec struct {
	Width, Height    int
	FrameRate        float64
	Format           PixelFormat
	BitrateFloor     int64
	KeyframeInterval int
}

// AudioInputSpec configures the writer's audio track.
type AudioInputSpec struct {
	SampleRate int
	Channels   int
}

// WriterStatus reports append readiness and terminal error state.
type WriterStatus struct {
	Ready bool
	Err   error
}

// ContainerWriter is the external collaborator that owns the output file's
// lifecycle: adding inputs, accepting appended frames/samples, and
// finishing or aborting the write.
type ContainerWriter interface {
	AddVideoInput(spec VideoInputSpec) error
	AddAudioInput(spec AudioInputSpec) error

	// VideoStatus/AudioStatus report whether the corresponding input is
	// ready to accept the next append, for the coordinator's backpressure
	// poll loop.
	VideoStatus() WriterStatus
	AudioStatus() WriterStatus

	AppendVideoFrame(buf *image.RGBA, pts rationaltime.RationalTime) error
	AppendAudioSamples(channels [][]float64, pts rationaltime.RationalTime) error

	FinishVideo() error
	FinishAudio() error

	// Finish blocks until both inputs are finalized and returns the number
	// of frames actually appended to the video track.
	Finish(ctx context.Context) (framesAppended int64, err error)
	Abort() error
}

// TexturePool acquires and releases pixel buffers keyed by shape, letting
// the coordinator avoid a fresh allocation per frame.
type TexturePool interface {
	Acquire(width, height int) *image.RGBA
	Release(buf *image.RGBA)
}

// DefaultReadyPollInterval is how long the coordinator sleeps between
// backpressure polls when a writer input is not yet ready.
const DefaultReadyPollInterval = 5 * time.Millisecond
