// Package metrics exposes per-frame counters for Prometheus scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/fingerfold/internal/session"
)

// Metrics holds the Prometheus collectors for a running session.
type Metrics struct {
	registry        *prometheus.Registry
	framesTotal     prometheus.Counter
	captureFailures prometheus.Counter
	handsTotal      prometheus.Counter
	fingerStates    *prometheus.CounterVec
	frameDuration   prometheus.Histogram
	previewClients  prometheus.Gauge
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	framesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fingerfold_frames_total",
		Help: "Total number of frames processed",
	})
	captureFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fingerfold_capture_failures_total",
		Help: "Total number of failed frame reads",
	})
	handsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fingerfold_hands_detected_total",
		Help: "Total number of hands reported by the landmark provider",
	})
	fingerStates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fingerfold_finger_states_total",
		Help: "Fingertip classifications by finger and state",
	}, []string{"finger", "state"})
	frameDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fingerfold_frame_duration_seconds",
		Help:    "Time from mirroring a frame to finishing its overlay",
		Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1, 0.25, 0.5, 1},
	})
	previewClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fingerfold_preview_clients",
		Help: "Number of connected web preview clients",
	})

	registry.MustRegister(
		framesTotal,
		captureFailures,
		handsTotal,
		fingerStates,
		frameDuration,
		previewClients,
	)

	return &Metrics{
		registry:        registry,
		framesTotal:     framesTotal,
		captureFailures: captureFailures,
		handsTotal:      handsTotal,
		fingerStates:    fingerStates,
		frameDuration:   frameDuration,
		previewClients:  previewClients,
	}
}

// ObserveFrame records one processed frame.
func (m *Metrics) ObserveFrame(r session.FrameResult) {
	m.framesTotal.Inc()
	m.handsTotal.Add(float64(len(r.Hands)))
	m.frameDuration.Observe(r.Elapsed.Seconds())
	for _, h := range r.Hands {
		for _, reading := range h.Fingers {
			m.fingerStates.WithLabelValues(reading.Finger.String(), reading.State.String()).Inc()
		}
	}
}

// ObserveCaptureFailure increments the capture failure counter.
func (m *Metrics) ObserveCaptureFailure(error) {
	m.captureFailures.Inc()
}

// SetPreviewClients sets the connected preview clients gauge.
func (m *Metrics) SetPreviewClients(n int) {
	m.previewClients.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
