package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/zvue/pkg/reactive"
)

// MetricsConfig configures the Prometheus hooks.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "zvue").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus hooks.
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

// WithBuckets sets the duration histogram buckets.
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
		Namespace: "zvue",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records engine activity as Prometheus metrics.
// It implements reactive.Hooks.
type Metrics struct {
	watchesTotal   *prometheus.CounterVec
	writesTotal    *prometheus.CounterVec
	notifyDuration *prometheus.HistogramVec
	notifyReaders  prometheus.Histogram
	notifyErrors   *prometheus.CounterVec
	patchesSent    prometheus.Counter
	liveClients    prometheus.Gauge
}

var _ reactive.Hooks = (*Metrics)(nil)

// NewMetrics registers the metrics with the configured registry. Registering
// twice with the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		watchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watches_total",
			Help:        "Total number of watchers created",
			ConstLabels: config.ConstLabels,
		}, []string{"key"}),

		writesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of writes to reactive properties",
			ConstLabels: config.ConstLabels,
		}, []string{"key", "result"}),

		notifyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_duration_seconds",
			Help:        "Notification pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"key"}),

		notifyReaders: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_readers",
			Help:        "Number of readers per notification pass",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		notifyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_errors_total",
			Help:        "Total number of notification passes with failed readers",
			ConstLabels: config.ConstLabels,
		}, []string{"key"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches broadcast to live clients",
			ConstLabels: config.ConstLabels,
		}),

		liveClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_clients",
			Help:        "Number of connected live clients",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// OnWatch implements reactive.Hooks.
func (m *Metrics) OnWatch(key string) {
	m.watchesTotal.WithLabelValues(key).Inc()
}

// OnWrite implements reactive.Hooks.
func (m *Metrics) OnWrite(key string, changed bool) {
	result := "noop"
	if changed {
		result = "changed"
	}
	m.writesTotal.WithLabelValues(key, result).Inc()
}

// OnNotify implements reactive.Hooks.
func (m *Metrics) OnNotify(info reactive.NotifyInfo) {
	m.notifyDuration.WithLabelValues(info.Key).Observe(info.Duration.Seconds())
	m.notifyReaders.Observe(float64(info.Readers))
	if info.Err != nil {
		m.notifyErrors.WithLabelValues(info.Key).Inc()
	}
}

// RecordPatches adds n to the patches sent counter.
func (m *Metrics) RecordPatches(n int) {
	m.patchesSent.Add(float64(n))
}

// ClientConnected increments the live client gauge.
func (m *Metrics) ClientConnected() {
	m.liveClients.Inc()
}

// ClientDisconnected decrements the live client gauge.
func (m *Metrics) ClientDisconnected() {
	m.liveClients.Dec()
}
