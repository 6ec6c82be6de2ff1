// Package metrics exposes playback pipeline counters and gauges over a
// Prometheus /metrics endpoint. It is entirely optional: a nil *Recorder is
// safe to call every method on, so components can take a *Recorder without
// the caller needing to branch on whether metrics are enabled.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the pipeline's Prometheus collectors. The zero value is
// not usable; construct one with New. A nil *Recorder is usable: every
// method is a no-op in that case.
type Recorder struct {
	framesPresented    prometheus.Counter
	framesDroppedNoPTS prometheus.Counter
	decodeErrors       prometheus.Counter
	packetQueueDepth   prometheus.Gauge
	frameQueueDepth    prometheus.Gauge
	speedFactor        prometheus.Gauge
	playbackState      prometheus.Gauge
}

// New registers and returns a Recorder against the default Prometheus
// registry.
func New() *Recorder {
	return &Recorder{
		framesPresented: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "lcdplayer", Name: "frames_presented_total",
			Help: "Frames written to the panel.",
		}),
		framesDroppedNoPTS: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "lcdplayer", Name: "frames_dropped_no_pts_total",
			Help: "Decoded frames skipped for lacking a presentation timestamp.",
		}),
		decodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "lcdplayer", Name: "decode_errors_total",
			Help: "Errors returned while draining decoded frames.",
		}),
		packetQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "lcdplayer", Name: "packet_queue_depth",
			Help: "Current length of the packet queue.",
		}),
		frameQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "lcdplayer", Name: "frame_queue_depth",
			Help: "Current length of the frame queue.",
		}),
		speedFactor: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "lcdplayer", Name: "speed_factor",
			Help: "Current playback speed multiplier.",
		}),
		playbackState: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "lcdplayer", Name: "playback_state",
			Help: "0=Idle 1=Loaded 2=Playing 3=Paused 4=Stopped.",
		}),
	}
}

func (r *Recorder) IncPresented() {
	if r != nil {
		r.framesPresented.Inc()
	}
}

func (r *Recorder) IncDroppedNoPTS() {
	if r != nil {
		r.framesDroppedNoPTS.Inc()
	}
}

func (r *Recorder) IncDecodeError() {
	if r != nil {
		r.decodeErrors.Inc()
	}
}

func (r *Recorder) SetPacketQueueDepth(n int) {
	if r != nil {
		r.packetQueueDepth.Set(float64(n))
	}
}

func (r *Recorder) SetFrameQueueDepth(n int) {
	if r != nil {
		r.frameQueueDepth.Set(float64(n))
	}
}

func (r *Recorder) SetSpeed(v float64) {
	if r != nil {
		r.speedFactor.Set(v)
	}
}

func (r *Recorder) SetPlaybackState(v int) {
	if r != nil {
		r.playbackState.Set(float64(v))
	}
}

// StartServer starts an HTTP server exposing /metrics in the background and
// returns it so the caller can shut it down.
func StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
