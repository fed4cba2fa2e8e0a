package live

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the live layer. A nil
// *Metrics is valid and records nothing, so instrumentation stays
// optional.
type Metrics struct {
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	eventsTotal    prometheus.Counter
	patchesTotal   prometheus.Counter
	patchBytes     prometheus.Counter
	renderSeconds  prometheus.Histogram
	handlerPanics  prometheus.Counter
	intakeBytes    prometheus.Counter
}

// NewMetrics registers the live metrics with reg (nil means the default
// registerer) under the "dropkit" namespace.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	const namespace = "dropkit"
	const subsystem = "live"

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_active",
			Help:      "Number of open WebSocket sessions",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Total number of sessions ever opened",
		}),
		eventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_total",
			Help:      "Total number of client events queued",
		}),
		patchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patches_total",
			Help:      "Total number of patch frames sent",
		}),
		patchBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patch_bytes_total",
			Help:      "Total HTML bytes shipped in patch frames",
		}),
		renderSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "render_duration_seconds",
			Help:      "Root render duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		handlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_panics_total",
			Help:      "Total number of recovered handler panics",
		}),
		intakeBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "intake_bytes_total",
			Help:      "Total payload bytes accepted by the intake endpoint",
		}),
	}
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

func (m *Metrics) EventQueued() {
	if m == nil {
		return
	}
	m.eventsTotal.Inc()
}

func (m *Metrics) PatchSent(bytes int) {
	if m == nil {
		return
	}
	m.patchesTotal.Inc()
	m.patchBytes.Add(float64(bytes))
}

func (m *Metrics) RenderDone(d time.Duration) {
	if m == nil {
		return
	}
	m.renderSeconds.Observe(d.Seconds())
}

func (m *Metrics) HandlerPanicked() {
	if m == nil {
		return
	}
	m.handlerPanics.Inc()
}

func (m *Metrics) IntakeAccepted(bytes int64) {
	if m == nil {
		return
	}
	m.intakeBytes.Add(float64(bytes))
}
