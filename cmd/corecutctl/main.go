// corecutctl is a runnable smoke path for the export core: it builds a
// small in-memory timeline, drives it through the resolver, graph
// builder, and Export Coordinator against the in-memory fakewriter
// collaborators, burning in a caption overlay via the coordinator's
// PostProcess hook. It is not a user-facing CLI — it exists so the
// module has an end-to-end entrypoint to run by hand, the way the
// teacher's cmd/viewra wires its module system together in one place.
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/fluxreel/corecut/internal/captions"
	"github.com/fluxreel/corecut/internal/config"
	"github.com/fluxreel/corecut/internal/export"
	"github.com/fluxreel/corecut/internal/export/fakewriter"
	"github.com/fluxreel/corecut/internal/graphbuilder"
	"github.com/fluxreel/corecut/internal/logger"
	"github.com/fluxreel/corecut/internal/rationaltime"
	"github.com/fluxreel/corecut/internal/timeline"
	"github.com/fluxreel/corecut/pkg/mediaio"
)

const (
	smokeWidth  = 320
	smokeHeight = 180
	smokeFPS    = 24
)

func buildSmokeTimeline() (*timeline.Timeline, error) {
	tl := timeline.NewTimeline("smoke", "corecutctl smoke timeline")

	video := timeline.NewTrack("v1", timeline.KindVideo)
	clipA, err := timeline.NewClip("clip-a", "intro", "asset-a",
		rationaltime.NewTimeRange(rationaltime.Zero(), rationaltime.FromSeconds(2, rationaltime.DefaultTimescale)),
		rationaltime.NewTimeRange(rationaltime.Zero(), rationaltime.FromSeconds(2, rationaltime.DefaultTimescale)))
	if err != nil {
		return nil, err
	}
	clipA.Effects = append(clipA.Effects, timeline.Effect{FeatureID: "vignette", Port: "source"})
	if err := video.AddClip(clipA); err != nil {
		return nil, err
	}

	clipB, err := timeline.NewClip("clip-b", "body", "asset-b",
		rationaltime.NewTimeRange(rationaltime.FromSeconds(2, rationaltime.DefaultTimescale), rationaltime.FromSeconds(2, rationaltime.DefaultTimescale)),
		rationaltime.NewTimeRange(rationaltime.Zero(), rationaltime.FromSeconds(2, rationaltime.DefaultTimescale)))
	if err != nil {
		return nil, err
	}
	if err := video.AddClip(clipB); err != nil {
		return nil, err
	}
	tl.Tracks = append(tl.Tracks, video)

	audio := timeline.NewTrack("a1", timeline.KindAudio)
	audioClip, err := timeline.NewClip("aclip", "tone", "ligm://audio/sine?freq=440",
		rationaltime.NewTimeRange(rationaltime.Zero(), rationaltime.FromSeconds(4, rationaltime.DefaultTimescale)),
		rationaltime.NewTimeRange(rationaltime.Zero(), rationaltime.FromSeconds(4, rationaltime.DefaultTimescale)))
	if err != nil {
		return nil, err
	}
	if err := audio.AddClip(audioClip); err != nil {
		return nil, err
	}
	tl.Tracks = append(tl.Tracks, audio)

	return tl, nil
}

func smokeCaptions() []captions.CaptionEntry {
	entries := []captions.CaptionEntry{
		{ID: "c1", Start: 0.5, End: 1.5, Text: "welcome", Position: "bottom"},
		{ID: "c2", Start: 2.5, End: 3.5, Text: "scene two", Position: "bottom"},
	}
	captions.SortEntries(entries)
	return entries
}

// burnCaptions draws a translucent strip across the bottom of the frame
// for every active caption, alpha-weighted by FadeAlpha — a stand-in for
// real glyph rendering, which needs a font rasterizer this module has no
// reason to carry.
func burnCaptions(entries []captions.CaptionEntry) func(frame *image.RGBA, frameIndex int64) (*image.RGBA, error) {
	const fade = 0.2
	return func(frame *image.RGBA, frameIndex int64) (*image.RGBA, error) {
		t := float64(frameIndex) / smokeFPS
		active := captions.ActiveAt(entries, t)
		if len(active) == 0 {
			return frame, nil
		}

		bounds := frame.Bounds()
		stripHeight := bounds.Dy() / 6
		x, y := captions.CompositePosition(bounds.Dx(), bounds.Dy(), bounds.Dx(), stripHeight, 0.92)

		for _, e := range active {
			alpha := captions.FadeAlpha(e, t, fade)
			if alpha <= 0 {
				continue
			}
			overlay := color.RGBA{R: 0, G: 0, B: 0, A: uint8(alpha * 160)}
			for py := y; py < y+stripHeight && py < bounds.Max.Y; py++ {
				for px := x; px < x+bounds.Dx() && px < bounds.Max.X; px++ {
					blendOver(frame, px, py, overlay)
				}
			}
		}
		return frame, nil
	}
}

func blendOver(img *image.RGBA, x, y int, src color.RGBA) {
	if x < img.Bounds().Min.X || y < img.Bounds().Min.Y {
		return
	}
	dst := img.RGBAAt(x, y)
	a := float64(src.A) / 255
	dst.R = uint8(float64(src.R)*a + float64(dst.R)*(1-a))
	dst.G = uint8(float64(src.G)*a + float64(dst.G)*(1-a))
	dst.B = uint8(float64(src.B)*a + float64(dst.B)*(1-a))
	img.SetRGBA(x, y, dst)
}

func run() error {
	tl, err := buildSmokeTimeline()
	if err != nil {
		return err
	}

	writer := fakewriter.NewMemoryWriter()
	coordinator := &export.Coordinator{
		Device:          fakewriter.Device{},
		Writer:          writer,
		Pool:            mediaio.NewBucketPool(),
		Assets:          map[string]graphbuilder.AssetMeta{},
		FeatureRegistry: export.FeatureRegistry{"vignette": true},
		Config:          config.Default(),
		Logger:          mediaio.NullLogger(),
	}

	req := export.Request{
		Timeline:   tl,
		OutputPath: "corecutctl-smoke.mov",
		Width:      smokeWidth,
		Height:     smokeHeight,
		FPS:        smokeFPS,
		Codec:      "h264",
		PostProcess: burnCaptions(smokeCaptions()),
	}

	result, err := coordinator.Run(context.Background(), req)
	if err != nil {
		return err
	}

	logger.Info("smoke export complete",
		logger.Int64("frames_appended", result.FramesAppended),
		logger.Int64("expected_frames", result.ExpectedFrames),
		logger.Int("audio_chunks", len(writer.AudioChunks)))
	fmt.Printf("corecutctl: appended %d/%d video frames, %d audio chunks\n",
		result.FramesAppended, result.ExpectedFrames, len(writer.AudioChunks))
	return nil
}

func main() {
	if err := run(); err != nil {
		logger.Error("smoke export failed", logger.Err("error", err))
		fmt.Fprintln(os.Stderr, "corecutctl:", err)
		os.Exit(1)
	}
}
