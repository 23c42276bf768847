package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/termcore/internal/block"
)

// DefaultNamespace prefixes every metric name when none is given.
const DefaultNamespace = "termcore"

// Metrics collects frame, block and input statistics.
type Metrics struct {
	reg *prometheus.Registry

	frames       prometheus.Counter
	dirtySpans   prometheus.Counter
	dirtyCells   prometheus.Counter
	composeTime  prometheus.Histogram
	objects      *prometheus.GaugeVec
	created      *prometheus.CounterVec
	destroyed    *prometheus.CounterVec
	envelopes    *prometheus.CounterVec
	mouseReports *prometheus.CounterVec
	bytesFed     prometheus.Counter
}

// New creates a Metrics with a fresh registry. An empty namespace means
// DefaultNamespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "composed_total",
			Help:      "Total number of composition passes",
		}),
		dirtySpans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "dirty_spans_total",
			Help:      "Total number of changed row spans",
		}),
		dirtyCells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "dirty_cells_total",
			Help:      "Total number of cells inside changed spans",
		}),
		composeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "compose_seconds",
			Help:      "Time spent composing one frame",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		objects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "objects_active",
			Help:      "Number of live block display objects",
		}, []string{"kind"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "objects_created_total",
			Help:      "Total number of block display objects created",
		}, []string{"kind"}),
		destroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "objects_destroyed_total",
			Help:      "Total number of block display objects destroyed",
		}, []string{"kind"}),
		envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "envelopes_sent_total",
			Help:      "Total number of back-channel envelopes written to the program",
		}, []string{"type"}),
		mouseReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "mouse_reports_total",
			Help:      "Total number of mouse reports written to the program",
		}, []string{"kind"}),
		bytesFed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "bytes_fed_total",
			Help:      "Total number of program output bytes fed to the cell buffer",
		}),
	}
	m.reg.MustRegister(
		m.frames, m.dirtySpans, m.dirtyCells, m.composeTime,
		m.objects, m.created, m.destroyed, m.envelopes,
		m.mouseReports, m.bytesFed,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// FrameComposed records one composition pass.
func (m *Metrics) FrameComposed(spans, cells int, d time.Duration) {
	m.frames.Inc()
	m.dirtySpans.Add(float64(spans))
	m.dirtyCells.Add(float64(cells))
	m.composeTime.Observe(d.Seconds())
}

// ObjectCreated records a block display object coming alive.
func (m *Metrics) ObjectCreated(kind block.Kind) {
	m.created.WithLabelValues(kind.String()).Inc()
	m.objects.WithLabelValues(kind.String()).Inc()
}

// ObjectDestroyed records a block display object going away.
func (m *Metrics) ObjectDestroyed(kind block.Kind) {
	m.destroyed.WithLabelValues(kind.String()).Inc()
	m.objects.WithLabelValues(kind.String()).Dec()
}

// EnvelopeSent records a back-channel envelope of the given type.
func (m *Metrics) EnvelopeSent(kind string) {
	m.envelopes.WithLabelValues(kind).Inc()
}

// MouseReported records a mouse report of the given event kind.
func (m *Metrics) MouseReported(kind string) {
	m.mouseReports.WithLabelValues(kind).Inc()
}

// BytesFed records n bytes of program output.
func (m *Metrics) BytesFed(n int) {
	m.bytesFed.Add(float64(n))
}
