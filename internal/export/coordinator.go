// Package export is the Export Coordinator: governance validation,
// feature preflight, writer setup, and the parallel video/audio render
// tasks that drive a timeline to a finished container file.
package export

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fluxreel/corecut/internal/audiograph"
	"github.com/fluxreel/corecut/internal/audiorender"
	"github.com/fluxreel/corecut/internal/config"
	coreerrors "github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/graphbuilder"
	"github.com/fluxreel/corecut/internal/logger"
	"github.com/fluxreel/corecut/internal/rationaltime"
	"github.com/fluxreel/corecut/internal/resolver"
	"github.com/fluxreel/corecut/internal/timeline"
	"github.com/fluxreel/corecut/internal/trace"
	"github.com/fluxreel/corecut/pkg/mediaio"
)

// Request describes one export operation end to end.
type Request struct {
	Timeline    *timeline.Timeline
	OutputPath  string
	Width       int
	Height      int
	FPS         float64
	Codec       string
	AudioPolicy AudioPolicy
	Governance  GovernanceEnvelope

	// PostProcess optionally transforms a rendered frame (reframing,
	// caption burn-in, color grading) before it is appended to the
	// writer. Nil skips post-processing entirely.
	PostProcess func(frame *image.RGBA, frameIndex int64) (*image.RGBA, error)
}

// Coordinator owns the external collaborators and ambient services one
// export run is driven through.
type Coordinator struct {
	Device          mediaio.RenderDevice
	Writer          mediaio.ContainerWriter
	Pool            mediaio.TexturePool
	Assets          map[string]graphbuilder.AssetMeta
	FeatureRegistry FeatureRegistry
	Config          *config.Config
	Trace           *trace.Sink

	// Logger is handed to collaborators that accept one at construction
	// time (e.g. fakewriter.NewFFmpegWriter); the coordinator itself logs
	// through internal/logger like the rest of the core. A nil Logger is
	// replaced with mediaio.NullLogger() the first time it's read.
	Logger mediaio.Logger
}

// Result reports how many video frames were appended and how many were
// expected.
type Result struct {
	FramesAppended int64
	ExpectedFrames int64
}

// Run executes the full coordinator pipeline against req, returning a
// typed CoreError for pipeline failures and leaving no file at
// req.OutputPath. A cancelled context and an error from req.PostProcess
// are returned as they are, without wrapping.
func (c *Coordinator) Run(ctx context.Context, req Request) (Result, error) {
	if c.Trace == nil {
		c.Trace = trace.NewSink()
	}
	if c.Logger == nil {
		c.Logger = mediaio.NullLogger()
	}
	c.Trace.Emit("export.begin", trace.F("path", req.OutputPath))
	c.Logger.Debug("export starting", "path", req.OutputPath, "width", req.Width, "height", req.Height, "fps", req.FPS)

	if err := ValidateGovernance(req.Governance, req.Height); err != nil {
		c.Trace.Emit("export.error", trace.F("reason", err.Error()))
		return Result{}, err
	}
	if err := Preflight(req.Timeline, c.FeatureRegistry); err != nil {
		c.Trace.Emit("export.error", trace.F("reason", err.Error()))
		return Result{}, err
	}

	durationSeconds := req.Timeline.Duration().ToSeconds()
	expectedFrames, err := ExpectedFrames(durationSeconds, req.FPS)
	if err != nil {
		c.Trace.Emit("export.error", trace.F("reason", err.Error()))
		return Result{}, err
	}

	wantsAudio := WantsAudioInput(req.AudioPolicy, timelineHasAudioTracks(req.Timeline))

	videoSpec := mediaio.VideoInputSpec{
		Width:            req.Width,
		Height:           req.Height,
		FrameRate:        req.FPS,
		Format:           codecPixelFormat(req.Codec),
		BitrateFloor:     BitrateFloor(req.Width, req.Height, req.FPS, c.Config.Writer),
		KeyframeInterval: KeyframeInterval(req.FPS),
	}
	if err := c.Writer.AddVideoInput(videoSpec); err != nil {
		wrapped := coreerrors.NewWriterFailed("add_video_input", err)
		c.Trace.Emit("export.error", trace.F("reason", wrapped.Error()))
		return Result{}, wrapped
	}
	if wantsAudio {
		if err := c.Writer.AddAudioInput(mediaio.AudioInputSpec{SampleRate: c.Config.Audio.SampleRate, Channels: c.Config.Audio.Channels}); err != nil {
			wrapped := coreerrors.NewWriterFailed("add_audio_input", err)
			c.Trace.Emit("export.error", trace.F("reason", wrapped.Error()))
			return Result{}, wrapped
		}
	}

	segments := resolver.Resolve(req.Timeline)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return c.runVideoTask(groupCtx, req, segments, expectedFrames) })
	if wantsAudio {
		group.Go(func() error { return c.runAudioTask(groupCtx, req) })
	}

	if err := group.Wait(); err != nil {
		_ = c.Writer.Abort()
		c.Trace.Emit("export.error", trace.F("reason", err.Error()))
		return Result{}, err
	}

	if err := c.Writer.FinishVideo(); err != nil {
		_ = c.Writer.Abort()
		wrapped := coreerrors.NewWriterFailed("finish_video", err)
		c.Trace.Emit("export.error", trace.F("reason", wrapped.Error()))
		return Result{}, wrapped
	}
	if wantsAudio {
		if err := c.Writer.FinishAudio(); err != nil {
			_ = c.Writer.Abort()
			wrapped := coreerrors.NewWriterFailed("finish_audio", err)
			c.Trace.Emit("export.error", trace.F("reason", wrapped.Error()))
			return Result{}, wrapped
		}
	}

	framesAppended, err := c.Writer.Finish(ctx)
	if err != nil {
		_ = c.Writer.Abort()
		wrapped := coreerrors.NewWriterFailed("finish", err)
		c.Trace.Emit("export.error", trace.F("reason", wrapped.Error()))
		return Result{}, wrapped
	}

	minRequired := int64(c.Config.Writer.MinCompletionRatio * float64(expectedFrames))
	if framesAppended < minRequired {
		_ = c.Writer.Abort()
		underfeed := coreerrors.NewUnderfeed(framesAppended, expectedFrames)
		c.Trace.Emit("export.error", trace.F("reason", underfeed.Error()))
		return Result{}, underfeed
	}

	c.Trace.Emit("export.end", trace.F("frames_appended", fmt.Sprintf("%d", framesAppended)))
	logger.Info("export finished", logger.String("path", req.OutputPath), logger.Int64("frames_appended", framesAppended), logger.Int64("expected_frames", expectedFrames))
	return Result{FramesAppended: framesAppended, ExpectedFrames: expectedFrames}, nil
}

func timelineHasAudioTracks(tl *timeline.Timeline) bool {
	for _, tr := range tl.Tracks {
		if tr.Kind == timeline.KindAudio && len(tr.Clips) > 0 {
			return true
		}
	}
	return false
}

func fillBlack(img *image.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = 0
		img.Pix[i+1] = 0
		img.Pix[i+2] = 0
		img.Pix[i+3] = 255
	}
}

func codecPixelFormat(codec string) mediaio.PixelFormat {
	switch codec {
	case "hevc", "h265":
		return mediaio.PixelFormatBGRA8
	default:
		return mediaio.PixelFormatRGBAFloat16
	}
}

// runVideoTask renders every frame in [0, expectedFrames), appending each
// with PTS (i, fps), per spec.md §4.10 step 4.
func (c *Coordinator) runVideoTask(ctx context.Context, req Request, segments []resolver.Segment, expectedFrames int64) error {
	fpsTimescale := int32(req.FPS * 1000)
	if fpsTimescale <= 0 {
		fpsTimescale = 1
	}

	progressBudget := c.Config.Writer.ProgressEventBudget
	if progressBudget <= 0 {
		progressBudget = 1
	}
	progressStride := int64(expectedFrames) / int64(progressBudget)
	if progressStride < 1 {
		progressStride = 1
	}

	c.Trace.Emit("render.video.begin", trace.F("expected_frames", fmt.Sprintf("%d", expectedFrames)))

	for i := int64(0); i < expectedFrames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := rationaltime.FromSeconds(float64(i)/req.FPS, rationaltime.DefaultTimescale)
		seg := findSegment(segments, t)

		buf := c.Pool.Acquire(req.Width, req.Height)

		if len(seg.ActiveClips) == 0 {
			// No clip covers this instant (a gap between clips); per
			// spec.md §7's decode-failure policy, an unrenderable frame
			// becomes a black frame plus a trace warning, not an error.
			fillBlack(buf)
			c.Trace.Emit("render.video.progress", trace.F("frame", fmt.Sprintf("%d", i), "note", "gap_black_frame"))
		} else {
			if i == 0 {
				c.Trace.Emit("render.compile.begin", trace.F("frame", "0"))
			}
			graph, err := graphbuilder.Build(seg, c.Assets)
			if err != nil {
				c.Pool.Release(buf)
				return coreerrors.NewEngineFailed(err)
			}
			if i == expectedFrames-1 {
				c.Trace.Emit("render.compile.end", trace.F("frame", fmt.Sprintf("%d", i)))
			}

			c.Trace.Emit("render.dispatch.begin", trace.F("frame", fmt.Sprintf("%d", i)))
			if err := c.Device.RenderFrame(ctx, graph, buf); err != nil {
				c.Pool.Release(buf)
				return coreerrors.NewEngineFailed(err)
			}
			c.Trace.Emit("render.dispatch.end", trace.F("frame", fmt.Sprintf("%d", i)))
		}

		frame := buf
		if req.PostProcess != nil {
			processed, err := req.PostProcess(buf, i)
			if err != nil {
				c.Pool.Release(buf)
				return err
			}
			frame = processed
		}

		if err := c.waitForWriterReady(ctx, func() mediaio.WriterStatus { return c.Writer.VideoStatus() }); err != nil {
			c.Pool.Release(buf)
			return err
		}

		pts := rationaltime.New(i*1000, fpsTimescale)
		if err := c.Writer.AppendVideoFrame(frame, pts); err != nil {
			c.Pool.Release(buf)
			return coreerrors.NewAppendFailed(err)
		}
		c.Pool.Release(buf)

		if i%progressStride == 0 {
			c.Trace.Emit("render.video.progress", trace.F("frame", fmt.Sprintf("%d", i)))
		}
	}

	c.Trace.Emit("render.video.end", trace.F("frames_rendered", fmt.Sprintf("%d", expectedFrames)))
	return nil
}

// runAudioTask drives the offline audio renderer over the timeline's
// audio tracks, appending each mastered chunk with PTS (samples_written,
// sample_rate).
func (c *Coordinator) runAudioTask(ctx context.Context, req Request) error {
	cfg := c.Config.Audio
	totalFrames := req.Timeline.Duration().ToSampleIndex(cfg.SampleRate)

	mixer := audiograph.NewMixer(req.Timeline, cfg.SampleRate, cfg.Channels)
	source := &mixerChunkSource{mixer: mixer}
	renderer := audiorender.NewRenderer(source, audiorender.MasteringConfig{
		LimiterCeiling: cfg.LimiterCeiling,
	}, cfg.Channels, cfg.MaxFrameCount, cfg.ReuseScratchBuffer)

	return renderer.Render(totalFrames, func(chunk audiorender.Chunk) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.waitForWriterReady(ctx, func() mediaio.WriterStatus { return c.Writer.AudioStatus() }); err != nil {
			return err
		}
		pts := rationaltime.New(chunk.StartSample, int32(cfg.SampleRate))
		if err := c.Writer.AppendAudioSamples(chunk.Channels, pts); err != nil {
			return coreerrors.NewAppendFailed(err)
		}
		return nil
	})
}

// waitForWriterReady polls status at the configured interval, failing with
// Timeout after the configured deadline and propagating any writer error
// immediately.
func (c *Coordinator) waitForWriterReady(ctx context.Context, status func() mediaio.WriterStatus) error {
	deadline := time.Now().Add(c.Config.Writer.ReadyTimeout)
	poll := c.Config.Writer.ReadyPollInterval
	for {
		s := status()
		if s.Err != nil {
			return coreerrors.NewWriterFailed("status", s.Err)
		}
		if s.Ready {
			return nil
		}
		if time.Now().After(deadline) {
			return coreerrors.NewTimeout("writer_ready", c.Config.Writer.ReadyTimeout.Seconds())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

// findSegment returns the segment whose range contains t, or a zero
// Segment if t falls in a gap — before the first segment, between two
// segments, or past the last one. The resolver never emits a segment for
// a span with no active clips, so a gap is a real hole in segments, not
// an edge case to paper over.
func findSegment(segments []resolver.Segment, t rationaltime.RationalTime) resolver.Segment {
	if len(segments) == 0 {
		return resolver.Segment{}
	}
	lo, hi := 0, len(segments)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if rationaltime.GreaterOrEqual(t, segments[mid].Range.Start) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo < 0 || !segments[lo].Range.Contains(t) {
		return resolver.Segment{}
	}
	return segments[lo]
}

// mixerChunkSource adapts audiograph.Mixer to audiorender.ChunkSource —
// kept here rather than in audiograph so that package never needs to
// import audiorender's status enum.
type mixerChunkSource struct {
	mixer *audiograph.Mixer
}

func (m *mixerChunkSource) RenderChunk(startSample int64, channels [][]float64, frameCount int) (audiorender.ChunkStatus, error) {
	status, err := m.mixer.RenderChunk(startSample, channels, frameCount)
	switch status {
	case audiograph.StatusInsufficientData:
		return audiorender.StatusInsufficientData, err
	case audiograph.StatusCannotDoNow:
		return audiorender.StatusCannotDoNow, err
	case audiograph.StatusError:
		return audiorender.StatusError, err
	default:
		return audiorender.StatusOK, err
	}
}
