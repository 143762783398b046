//go:build linux

package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ja7ad/mibtop/pkg/sampler"
)

const namespace = "mibtop"

// Metrics exports sampler cycles to Prometheus. It implements
// sampler.Recorder.
type Metrics struct {
	reg *prometheus.Registry

	cycles           prometheus.Counter
	cycleDuration    prometheus.Histogram
	processesScanned prometheus.Gauge
	cpuLines         prometheus.Gauge
	readFailures     prometheus.Counter
	snapshotFailures prometheus.Counter
	rootFailures     prometheus.Counter
	sinkErrors       prometheus.Counter
}

var _ sampler.Recorder = (*Metrics)(nil)

// New registers the sampler metrics, plus the Go and process collectors, on
// a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of sampling cycles written to the log",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent collecting and writing one cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		processesScanned: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processes_scanned",
			Help:      "Processes whose stat line was read in the last cycle",
		}),
		cpuLines: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_lines",
			Help:      "cpu lines written in the last cycle",
		}),
		readFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_read_failures_total",
			Help:      "Per-process stat files that could not be opened or read",
		}),
		snapshotFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_failures_total",
			Help:      "Cycles in which the statistics file could not be read",
		}),
		rootFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proc_root_failures_total",
			Help:      "Cycles in which the proc root could not be listed",
		}),
		sinkErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Cycles that could not be fully written to the log file",
		}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ObserveCycle(s sampler.CycleStats) {
	m.cycles.Inc()
	m.cycleDuration.Observe(s.Duration.Seconds())
	m.processesScanned.Set(float64(s.Processes))
	m.cpuLines.Set(float64(s.CPULines))
	m.readFailures.Add(float64(s.Failures))
	if s.SnapshotFailed {
		m.snapshotFailures.Inc()
	}
	if s.RootFailed {
		m.rootFailures.Inc()
	}
}

func (m *Metrics) ObserveSinkError() {
	m.sinkErrors.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
