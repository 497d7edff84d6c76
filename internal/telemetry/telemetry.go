// Package telemetry wraps the export core's prometheus instruments.
// Counters and histograms are registered against an injected
// prometheus.Registerer rather than a self-hosted /metrics endpoint — the
// core is a library, not a service, so it never listens on a port.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the export core's instruments. Register creates them; the
// export coordinator and audio renderer do not update them.
type Metrics struct {
	FramesRendered      prometheus.Counter
	RenderLatency       prometheus.Histogram
	WriterWaitTime      prometheus.Histogram
	UnderfeedEvents     prometheus.Counter
	AudioChunksRendered prometheus.Counter
}

// Register creates and registers every instrument against reg. Safe to
// call once per process per registry; registering the same Metrics set
// twice against the same registry panics, matching prometheus's own
// double-registration behavior.
func Register(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corecut",
			Subsystem: "export",
			Name:      "frames_rendered_total",
			Help:      "Number of video frames rendered and appended to the container writer.",
		}),
		RenderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "corecut",
			Subsystem: "export",
			Name:      "frame_render_seconds",
			Help:      "Wall-clock time to compile and render a single frame.",
			Buckets:   prometheus.DefBuckets,
		}),
		WriterWaitTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "corecut",
			Subsystem: "export",
			Name:      "writer_backpressure_wait_seconds",
			Help:      "Time spent waiting for the container writer to become ready to accept the next append.",
			Buckets:   prometheus.DefBuckets,
		}),
		UnderfeedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corecut",
			Subsystem: "export",
			Name:      "underfeed_total",
			Help:      "Number of exports that failed the 0.85x expected-frames underfeed guard.",
		}),
		AudioChunksRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corecut",
			Subsystem: "audio",
			Name:      "chunks_rendered_total",
			Help:      "Number of offline audio chunks rendered by the mastering chain.",
		}),
	}

	reg.MustRegister(m.FramesRendered, m.RenderLatency, m.WriterWaitTime, m.UnderfeedEvents, m.AudioChunksRendered)
	return m
}
