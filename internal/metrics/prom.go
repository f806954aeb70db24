package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "vizbridge_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vizbridge_messages_total",
			Help: "Inbound surface messages by event kind",
		},
		[]string{"kind", "outcome"},
	)

	callbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vizbridge_callbacks_invoked_total",
			Help: "Callback invocations per event kind",
		},
		[]string{"kind"},
	)

	sends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vizbridge_sends_total",
			Help: "Outbound envelopes by protocol name",
		},
		[]string{"name", "outcome"},
	)

	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vizbridge_dispatch_duration_seconds",
			Help:    "Time spent dispatching one inbound message",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	surfacesConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vizbridge_surfaces_connected",
			Help: "Embedded surfaces with a live channel",
		},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, messages, callbacks, sends, dispatchDuration, surfacesConnected)
}

// SetServerBuildInfo sets the build info metric for the server.
func SetServerBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordMessage counts one inbound message for an event kind.
func RecordMessage(kind string, dispatched bool) {
	outcome := "dispatched"
	if !dispatched {
		outcome = "unmatched"
	}
	messages.WithLabelValues(kind, outcome).Inc()
}

// RecordCallbacks counts callback invocations for an event kind.
func RecordCallbacks(kind string, n int) {
	callbacks.WithLabelValues(kind).Add(float64(n))
}

// RecordSend counts one outbound envelope.
func RecordSend(name string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	sends.WithLabelValues(name, outcome).Inc()
}

// ObserveDispatchDuration records how long one dispatch took.
func ObserveDispatchDuration(kind string, d time.Duration) {
	dispatchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// SurfaceConnected adjusts the connected surface gauge.
func SurfaceConnected(up bool) {
	if up {
		surfacesConnected.Inc()
	} else {
		surfacesConnected.Dec()
	}
}
