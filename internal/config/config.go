// Package config holds the tunable defaults for the export core: quality
// profiles, mastering defaults, and coordinator timing. It mirrors presets a
// caller can load from YAML, but the pipeline itself never reads disk or env
// directly — loading is the embedder's job.
package config

import "time"

// Config is the top-level tunable surface for one export core instance.
type Config struct {
	Render RenderConfig `yaml:"render"`
	Audio  AudioConfig  `yaml:"audio"`
	Writer WriterConfig `yaml:"writer"`
	Debug  DebugConfig  `yaml:"debug"`
}

// RenderConfig controls per-frame compositor defaults.
type RenderConfig struct {
	DefaultTimescale     int     `yaml:"default_timescale" default:"600"`
	ToneMapGamma         float64 `yaml:"tone_map_gamma" default:"2.8"`
	ToneMapBlackMultiple float64 `yaml:"tone_map_black_multiple" default:"8"`
	ToneMapWhiteMultiple float64 `yaml:"tone_map_white_multiple" default:"8"`
	ReframeSmoothing     float64 `yaml:"reframe_smoothing" default:"0.85"`
}

// AudioConfig controls the offline audio renderer and mastering chain.
type AudioConfig struct {
	SampleRate         int     `yaml:"sample_rate" default:"48000"`
	Channels           int     `yaml:"channels" default:"2"`
	MaxFrameCount      int     `yaml:"max_frame_count" default:"4096"`
	ReuseScratchBuffer bool    `yaml:"reuse_scratch_buffer" default:"true"`
	LimiterCeiling     float64 `yaml:"limiter_ceiling" default:"0.98"`
	DialogCleanupMinDB float64 `yaml:"dialog_cleanup_min_db" default:"0"`
	DialogCleanupMaxDB float64 `yaml:"dialog_cleanup_max_db" default:"6"`
}

// WriterConfig controls the export coordinator's writer handshake.
type WriterConfig struct {
	ReadyPollInterval     time.Duration `yaml:"ready_poll_interval" default:"5ms"`
	ReadyTimeout          time.Duration `yaml:"ready_timeout" default:"60s"`
	CannotDoNowBackoff    time.Duration `yaml:"cannot_do_now_backoff" default:"1ms"`
	MinCompletionRatio    float64       `yaml:"min_completion_ratio" default:"0.85"`
	ProgressEventBudget   int           `yaml:"progress_event_budget" default:"120"`
	MinBitrateFloor       int64         `yaml:"min_bitrate_floor" default:"8000000"`
	BitrateBudgetPerPxFPS float64       `yaml:"bitrate_budget_per_pixel_fps" default:"0.08"`
}

// DebugConfig controls verbosity of ambient diagnostics.
type DebugConfig struct {
	EnableDebugLogs bool `yaml:"enable_debug_logs" default:"false"`
	TraceAllFrames  bool `yaml:"trace_all_frames" default:"false"`
}

// Default returns a Config with every field set to the documented default.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			DefaultTimescale:     600,
			ToneMapGamma:         2.8,
			ToneMapBlackMultiple: 8,
			ToneMapWhiteMultiple: 8,
			ReframeSmoothing:     0.85,
		},
		Audio: AudioConfig{
			SampleRate:         48000,
			Channels:           2,
			MaxFrameCount:      4096,
			ReuseScratchBuffer: true,
			LimiterCeiling:     0.98,
			DialogCleanupMinDB: 0,
			DialogCleanupMaxDB: 6,
		},
		Writer: WriterConfig{
			ReadyPollInterval:     5 * time.Millisecond,
			ReadyTimeout:          60 * time.Second,
			CannotDoNowBackoff:    time.Millisecond,
			MinCompletionRatio:    0.85,
			ProgressEventBudget:   120,
			MinBitrateFloor:       8_000_000,
			BitrateBudgetPerPxFPS: 0.08,
		},
		Debug: DebugConfig{},
	}
}

// ValidationError reports a single out-of-range configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error in field '" + e.Field + "': " + e.Message
}

// Validate checks invariants the rest of the core assumes hold.
func (c *Config) Validate() error {
	if c.Render.DefaultTimescale <= 0 {
		return &ValidationError{Field: "render.default_timescale", Message: "must be positive"}
	}
	if c.Audio.SampleRate <= 0 {
		return &ValidationError{Field: "audio.sample_rate", Message: "must be positive"}
	}
	if c.Audio.MaxFrameCount <= 0 {
		return &ValidationError{Field: "audio.max_frame_count", Message: "must be positive"}
	}
	if c.Audio.LimiterCeiling <= 0 || c.Audio.LimiterCeiling > 1 {
		return &ValidationError{Field: "audio.limiter_ceiling", Message: "must be in (0, 1]"}
	}
	if c.Writer.MinCompletionRatio <= 0 || c.Writer.MinCompletionRatio > 1 {
		return &ValidationError{Field: "writer.min_completion_ratio", Message: "must be in (0, 1]"}
	}
	if c.Writer.ReadyTimeout <= 0 {
		return &ValidationError{Field: "writer.ready_timeout", Message: "must be positive"}
	}
	return nil
}
