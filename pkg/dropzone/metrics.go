package dropzone

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the widget layer. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	filesAccepted prometheus.Counter
	filesRejected *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	uploadBytes   prometheus.Counter
}

// NewMetrics registers the widget metrics with reg (nil means the
// default registerer) under the "dropkit" namespace.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	const namespace = "dropkit"
	const subsystem = "dropzone"

	return &Metrics{
		filesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "files_accepted_total",
			Help:      "Total number of files accepted into the entry list",
		}),
		filesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "files_rejected_total",
			Help:      "Total number of files rejected at intake, by reason",
		}, []string{"reason"}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "uploads_total",
			Help:      "Total number of finished upload attempts, by terminal status",
		}, []string{"status"}),
		uploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upload_bytes_total",
			Help:      "Total payload bytes of completed uploads",
		}),
	}
}

func (m *Metrics) FileAccepted() {
	if m == nil {
		return
	}
	m.filesAccepted.Inc()
}

func (m *Metrics) FileRejected(reason string) {
	if m == nil {
		return
	}
	m.filesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) UploadFinished(status string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(status).Inc()
}

func (m *Metrics) BytesUploaded(bytes int64) {
	if m == nil {
		return
	}
	m.uploadBytes.Add(float64(bytes))
}
