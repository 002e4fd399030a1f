package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/mcproto/pkg/protocol"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "mcproto").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for frame sizes in bytes.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the frame size histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "mcproto",
		Buckets:   prometheus.ExponentialBuckets(16, 4, 8), // 16B to 256KB
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the frame and packet counters. A nil *Metrics records
// nothing, so callers never need to check.
type Metrics struct {
	framesTotal  *prometheus.CounterVec
	bytesTotal   *prometheus.CounterVec
	frameSize    *prometheus.HistogramVec
	packetsTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	activeConns  prometheus.Gauge
}

// NewMetrics registers the transport metrics.
//
// Metrics collected:
//   - mcproto_frames_total: frames by direction
//   - mcproto_bytes_total: frame payload bytes by direction
//   - mcproto_frame_size_bytes: frame payload size by direction
//   - mcproto_packets_total: decoded packets by phase, direction and name
//   - mcproto_errors_total: codec and framing errors by kind
//   - mcproto_active_connections: open proxied connections
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Total number of frames read or written",
			ConstLabels: config.ConstLabels,
		}, []string{"direction"}),

		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_total",
			Help:        "Total frame payload bytes",
			ConstLabels: config.ConstLabels,
		}, []string{"direction"}),

		frameSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_size_bytes",
			Help:        "Frame payload size in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"direction"}),

		packetsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "packets_total",
			Help:        "Total number of decoded packets",
			ConstLabels: config.ConstLabels,
		}, []string{"phase", "direction", "packet"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total codec and framing errors by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		activeConns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connections",
			Help:        "Number of open proxied connections",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveFrame records one frame payload.
func (m *Metrics) ObserveFrame(direction string, size int) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(direction).Inc()
	m.bytesTotal.WithLabelValues(direction).Add(float64(size))
	m.frameSize.WithLabelValues(direction).Observe(float64(size))
}

// ObservePacket records one decoded packet.
func (m *Metrics) ObservePacket(phase, direction, packet string) {
	if m == nil {
		return
	}
	m.packetsTotal.WithLabelValues(phase, direction, packet).Inc()
}

// ObserveError records err under its protocol.ErrorKind.
func (m *Metrics) ObserveError(err error) {
	if m == nil || err == nil {
		return
	}
	m.errorsTotal.WithLabelValues(protocol.Classify(err).String()).Inc()
}

// ConnOpened increments the active connection gauge.
func (m *Metrics) ConnOpened() {
	if m != nil {
		m.activeConns.Inc()
	}
}

// ConnClosed decrements the active connection gauge.
func (m *Metrics) ConnClosed() {
	if m != nil {
		m.activeConns.Dec()
	}
}
