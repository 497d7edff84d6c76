package fakewriter

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"sync"

	"github.com/fluxreel/corecut/internal/errors"
	"github.com/fluxreel/corecut/internal/rationaltime"
	"github.com/fluxreel/corecut/pkg/mediaio"
)

// FFmpegWriter is a ContainerWriter backed by a real ffmpeg process,
// adapted from the teacher's transcode runner: video frames stream to an
// ffmpeg process's stdin as they're appended (process-lifecycle pattern),
// stderr is scraped for progress the way the teacher's monitorProgress
// does, and audio samples accumulate to a raw PCM side file muxed in at
// Finish. This is a demo/test writer — the in-scope contract never
// specifies a codec bitstream, so no attempt is made to match a
// production encoder ladder the way the teacher's selectBestH264Encoder
// does.
type FFmpegWriter struct {
	ffmpegPath string
	outputPath string
	videoPath  string
	audioPath  string
	logger     mediaio.Logger

	mu            sync.Mutex
	videoSpec     *mediaio.VideoInputSpec
	audioSpec     *mediaio.AudioInputSpec
	videoCmd      *exec.Cmd
	videoStdin    io.WriteCloser
	audioFile     *os.File
	framesWritten int64
	videoStarted  bool
	videoFinished bool
	audioFinished bool
	failed        error
	aborted       bool
}

// NewFFmpegWriter constructs a writer that produces outputPath, invoking
// ffmpegPath (or "ffmpeg" if empty). A nil logger is replaced with
// mediaio.NullLogger().
func NewFFmpegWriter(ffmpegPath, outputPath string, logger mediaio.Logger) *FFmpegWriter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = mediaio.NullLogger()
	}
	return &FFmpegWriter{
		ffmpegPath: ffmpegPath,
		outputPath: outputPath,
		videoPath:  outputPath + ".video.mov",
		audioPath:  outputPath + ".audio.f32le",
		logger:     logger,
	}
}

func (w *FFmpegWriter) AddVideoInput(spec mediaio.VideoInputSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.videoSpec = &spec
	return w.startVideoProcess()
}

func (w *FFmpegWriter) startVideoProcess() error {
	spec := w.videoSpec
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", fmt.Sprintf("%g", spec.FrameRate),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-g", strconv.Itoa(spec.KeyframeInterval),
		"-b:v", strconv.FormatInt(spec.BitrateFloor, 10),
		w.videoPath,
	}

	cmd := exec.Command(w.ffmpegPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.NewWriterFailed("stdin_pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.NewWriterFailed("stderr_pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return errors.NewWriterFailed("start", err)
	}

	go monitorProgress(stderr, w.logger)

	w.videoCmd = cmd
	w.videoStdin = stdin
	w.videoStarted = true
	return nil
}

func (w *FFmpegWriter) AddAudioInput(spec mediaio.AudioInputSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.audioSpec = &spec
	f, err := os.Create(w.audioPath)
	if err != nil {
		return errors.NewWriterFailed("create_audio_temp", err)
	}
	w.audioFile = f
	return nil
}

func (w *FFmpegWriter) VideoStatus() mediaio.WriterStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return mediaio.WriterStatus{Ready: w.videoStarted && !w.videoFinished && !w.aborted, Err: w.failed}
}

func (w *FFmpegWriter) AudioStatus() mediaio.WriterStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return mediaio.WriterStatus{Ready: w.audioFile != nil && !w.audioFinished && !w.aborted, Err: w.failed}
}

func (w *FFmpegWriter) AppendVideoFrame(buf *image.RGBA, pts rationaltime.RationalTime) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failed != nil {
		return w.failed
	}
	if _, err := w.videoStdin.Write(buf.Pix); err != nil {
		w.failed = errors.NewWriterFailed("video_write", err)
		return w.failed
	}
	w.framesWritten++
	return nil
}

func (w *FFmpegWriter) AppendAudioSamples(channels [][]float64, pts rationaltime.RationalTime) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failed != nil {
		return w.failed
	}
	if len(channels) == 0 {
		return nil
	}
	frameCount := len(channels[0])
	buf := make([]byte, frameCount*len(channels)*4)
	idx := 0
	for i := 0; i < frameCount; i++ {
		for ch := range channels {
			putFloat32LE(buf[idx:idx+4], float32(channels[ch][i]))
			idx += 4
		}
	}
	if _, err := w.audioFile.Write(buf); err != nil {
		w.failed = errors.NewWriterFailed("audio_write", err)
		return w.failed
	}
	return nil
}

func putFloat32LE(b []byte, f float32) {
	bits := math.Float32bits(f)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

func (w *FFmpegWriter) FinishVideo() error {
	w.mu.Lock()
	stdin := w.videoStdin
	cmd := w.videoCmd
	w.videoFinished = true
	w.mu.Unlock()

	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd != nil {
		if err := cmd.Wait(); err != nil {
			return errors.NewWriterFailed("ffmpeg_video_wait", err)
		}
	}
	return nil
}

func (w *FFmpegWriter) FinishAudio() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.audioFinished = true
	if w.audioFile != nil {
		return w.audioFile.Close()
	}
	return nil
}

// Finish muxes the intermediate video file with the accumulated raw audio
// (if any) into the final output path, then removes the intermediates.
func (w *FFmpegWriter) Finish(ctx context.Context) (int64, error) {
	w.mu.Lock()
	framesWritten := w.framesWritten
	hasAudio := w.audioSpec != nil
	audioSpec := w.audioSpec
	w.mu.Unlock()

	defer os.Remove(w.videoPath)
	if hasAudio {
		defer os.Remove(w.audioPath)
	}

	if !hasAudio {
		if err := os.Rename(w.videoPath, w.outputPath); err != nil {
			return framesWritten, errors.NewWriterFailed("finalize_rename", err)
		}
		return framesWritten, nil
	}

	args := []string{
		"-y",
		"-i", w.videoPath,
		"-f", "f32le",
		"-ar", strconv.Itoa(audioSpec.SampleRate),
		"-ac", strconv.Itoa(audioSpec.Channels),
		"-i", w.audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		w.outputPath,
	}
	cmd := exec.CommandContext(ctx, w.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return framesWritten, errors.NewWriterFailed("mux", fmt.Errorf("%w: %s", err, out))
	}
	return framesWritten, nil
}

// Abort kills any running ffmpeg process and deletes every file this
// writer may have produced, leaving nothing at the output path.
func (w *FFmpegWriter) Abort() error {
	w.mu.Lock()
	w.aborted = true
	cmd := w.videoCmd
	audioFile := w.audioFile
	w.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	if audioFile != nil {
		_ = audioFile.Close()
	}
	_ = os.Remove(w.videoPath)
	_ = os.Remove(w.audioPath)
	_ = os.Remove(w.outputPath)
	return nil
}

// monitorProgress scrapes ffmpeg's stderr for frame/fps markers, the
// same regex-per-field approach as the teacher's Runner.monitorProgress,
// trimmed to the fields worth logging for a batch export.
func monitorProgress(stderr io.ReadCloser, log mediaio.Logger) {
	defer stderr.Close()

	frameRegex := regexp.MustCompile(`frame=\s*(\d+)`)
	fpsRegex := regexp.MustCompile(`fps=\s*([\d.]+)`)

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		frameMatch := frameRegex.FindStringSubmatch(line)
		if frameMatch == nil {
			continue
		}
		frame, err := strconv.ParseInt(frameMatch[1], 10, 64)
		if err != nil {
			continue
		}
		var fps float64
		if fpsMatch := fpsRegex.FindStringSubmatch(line); fpsMatch != nil {
			fps, _ = strconv.ParseFloat(fpsMatch[1], 64)
		}
		log.Debug("ffmpeg writer progress", "frame", frame, "fps", fps)
	}
}
