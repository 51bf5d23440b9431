package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"stress/internal/benchmark"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus exports finished benchmark results as metrics.
type Prometheus struct {
	mu    sync.Mutex
	suite string

	Duration    *prometheus.GaugeVec
	Throughput  *prometheus.GaugeVec
	Runs        *prometheus.CounterVec
	Regressions *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		Duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stress_benchmark_duration_seconds",
				Help: "Median duration of the last run of each benchmark",
			},
			[]string{"suite", "benchmark"},
		),
		Throughput: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stress_benchmark_throughput",
				Help: "Throughput of the last run of each benchmark, per second",
			},
			[]string{"suite", "benchmark", "unit"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stress_benchmark_runs_total",
				Help: "Measured runs executed per benchmark",
			},
			[]string{"suite", "benchmark"},
		),
		Regressions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stress_regressions_total",
				Help: "Benchmarks found slower than their baseline",
			},
			[]string{"suite"},
		),
	}

	for _, c := range []prometheus.Collector{p.Duration, p.Throughput, p.Runs, p.Regressions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) SuiteStart(suite string, _ benchmark.RunConfig) error {
	p.mu.Lock()
	p.suite = suite
	p.mu.Unlock()
	return nil
}

func (p *Prometheus) BenchStart(string) error { return nil }

func (p *Prometheus) BenchEnd(r benchmark.Result) error {
	p.mu.Lock()
	suite := p.suite
	p.mu.Unlock()

	p.Duration.WithLabelValues(suite, r.Name).Set(r.Duration.Seconds())
	p.Runs.WithLabelValues(suite, r.Name).Add(float64(len(r.AllRuns)))
	if rate, ok := r.Throughput(); ok {
		p.Throughput.WithLabelValues(suite, r.Name, rate.Unit).Set(rate.PerSecond)
	}
	return nil
}

func (p *Prometheus) SuiteEnd(s *benchmark.Suite) error {
	p.Regressions.WithLabelValues(s.Name).Add(float64(len(s.Regressions)))
	return nil
}

// StartMetricsServer serves g on addr at /metrics until ctx is cancelled.
func StartMetricsServer(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting metrics server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
