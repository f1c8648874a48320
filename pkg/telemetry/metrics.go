package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reload outcomes used as the status label.
const (
	ReloadStatusPublished = "published"
	ReloadStatusRejected  = "rejected"
	ReloadStatusFailed    = "failed"
	ReloadStatusUnchanged = "unchanged"
)

// Metrics provides Prometheus metrics for refdata.
type Metrics struct {
	config MetricsConfig

	// Reload metrics
	reloads        *prometheus.CounterVec
	reloadDuration *prometheus.HistogramVec

	// Snapshot metrics
	records          *prometheus.GaugeVec
	publishes        prometheus.Counter
	lastPublish      prometheus.Gauge
	policyViolations *prometheus.CounterVec

	// Accessor metrics
	lookups *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
// A disabled configuration yields a collector whose methods do nothing.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Total number of seed reloads by outcome",
			},
			[]string{"status"},
		),
		reloadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reload_duration_seconds",
				Help:      "Duration of seed reloads in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "Number of records per collection in the current snapshot",
			},
			[]string{"kind"},
		),
		publishes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_publishes_total",
				Help:      "Total number of snapshots published",
			},
		),
		lastPublish: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshot_last_publish_timestamp_seconds",
				Help:      "Unix time of the last snapshot publish",
			},
		),
		policyViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total number of policy violations by policy and severity",
			},
			[]string{"policy", "severity"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Total number of keyed lookups by collection and result",
			},
			[]string{"kind", "result"},
		),
	}

	registry.MustRegister(
		m.reloads,
		m.reloadDuration,
		m.records,
		m.publishes,
		m.lastPublish,
		m.policyViolations,
		m.lookups,
	)

	return m, nil
}

// RecordReload records a reload outcome and its duration.
func (m *Metrics) RecordReload(status string, duration time.Duration) {
	if m.reloads == nil {
		return
	}
	m.reloads.WithLabelValues(status).Inc()
	m.reloadDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// SetRecordCount sets the number of records in a collection.
func (m *Metrics) SetRecordCount(kind string, count int) {
	if m.records == nil {
		return
	}
	m.records.WithLabelValues(kind).Set(float64(count))
}

// RecordPublish records a snapshot publish.
func (m *Metrics) RecordPublish(at time.Time) {
	if m.publishes == nil {
		return
	}
	m.publishes.Inc()
	m.lastPublish.Set(float64(at.Unix()))
}

// RecordPolicyViolation records a single policy violation.
func (m *Metrics) RecordPolicyViolation(policy, severity string) {
	if m.policyViolations == nil {
		return
	}
	m.policyViolations.WithLabelValues(policy, severity).Inc()
}

// RecordLookup records a keyed lookup against a collection.
func (m *Metrics) RecordLookup(kind string, hit bool) {
	if m.lookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(kind, result).Inc()
}

// Registry returns the private registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer binds the metrics endpoint and serves it until ctx is
// cancelled. Bind errors are returned; serve errors are sent to errc, which
// may be nil.
func (m *Metrics) StartMetricsServer(ctx context.Context, errc chan<- error) (net.Addr, error) {
	if !m.config.Enabled {
		return nil, nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	listener, err := net.Listen("tcp", m.config.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", m.config.ListenAddress, err)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) && errc != nil {
			errc <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	return listener.Addr(), nil
}
