// Package fakewriter provides ContainerWriter implementations the
// Export Coordinator can be driven against without a real codec
// bitstream: an in-memory writer for unit tests, and an ffmpeg-process-
// backed writer (adapted from the teacher's transcode runner) for
// end-to-end smoke runs.
package fakewriter

import (
	"context"
	"image"
	"sync"

	"github.com/fluxreel/corecut/internal/rationaltime"
	"github.com/fluxreel/corecut/pkg/mediaio"
)

// VideoFrame is one appended, owned copy of a rendered frame.
type VideoFrame struct {
	PTS  rationaltime.RationalTime
	Data *image.RGBA
}

// AudioChunk is one appended, owned copy of a mastered audio chunk.
type AudioChunk struct {
	PTS      rationaltime.RationalTime
	Channels [][]float64
}

// MemoryWriter is a ContainerWriter that buffers every append in memory
// rather than muxing a real container — deterministic and fast, for
// tests that assert on exact append counts, PTS sequencing, and the
// underfeed/abort contract.
type MemoryWriter struct {
	mu sync.Mutex

	videoSpec  *mediaio.VideoInputSpec
	audioSpec  *mediaio.AudioInputSpec
	videoDone  bool
	audioDone  bool
	aborted    bool
	failVideo  error
	failAudio  error
	videoCap   int // InduceUnderfeed: cap video appends at this count, 0 = unlimited

	VideoFrames []VideoFrame
	AudioChunks []AudioChunk
}

// NewMemoryWriter constructs an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// InduceUnderfeed makes every append past the first n video frames a
// silent no-op (accepted but not stored), so Finish reports fewer frames
// than the render loop believes it appended — for exercising the
// coordinator's Underfeed guard deterministically.
func (w *MemoryWriter) InduceUnderfeed(n int) {
	w.mu.Lock()
	w.videoCap = n
	w.mu.Unlock()
}

func (w *MemoryWriter) AddVideoInput(spec mediaio.VideoInputSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.videoSpec = &spec
	return nil
}

func (w *MemoryWriter) AddAudioInput(spec mediaio.AudioInputSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.audioSpec = &spec
	return nil
}

func (w *MemoryWriter) VideoStatus() mediaio.WriterStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return mediaio.WriterStatus{Ready: w.videoSpec != nil && !w.aborted, Err: w.failVideo}
}

func (w *MemoryWriter) AudioStatus() mediaio.WriterStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return mediaio.WriterStatus{Ready: w.audioSpec != nil && !w.aborted, Err: w.failAudio}
}

func (w *MemoryWriter) AppendVideoFrame(buf *image.RGBA, pts rationaltime.RationalTime) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.videoCap > 0 && len(w.VideoFrames) >= w.videoCap {
		return nil
	}
	owned := image.NewRGBA(buf.Bounds())
	copy(owned.Pix, buf.Pix)
	w.VideoFrames = append(w.VideoFrames, VideoFrame{PTS: pts, Data: owned})
	return nil
}

func (w *MemoryWriter) AppendAudioSamples(channels [][]float64, pts rationaltime.RationalTime) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	owned := make([][]float64, len(channels))
	for i, ch := range channels {
		owned[i] = append([]float64(nil), ch...)
	}
	w.AudioChunks = append(w.AudioChunks, AudioChunk{PTS: pts, Channels: owned})
	return nil
}

func (w *MemoryWriter) FinishVideo() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.videoDone = true
	return nil
}

func (w *MemoryWriter) FinishAudio() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.audioDone = true
	return nil
}

func (w *MemoryWriter) Finish(ctx context.Context) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(len(w.VideoFrames)), nil
}

func (w *MemoryWriter) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.aborted = true
	w.VideoFrames = nil
	w.AudioChunks = nil
	return nil
}
