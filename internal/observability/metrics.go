package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	registry *prometheus.Registry

	// Completed fetches by how the coordinator handled them (applied, failed, discarded)
	FetchOutcomesTotal *prometheus.CounterVec

	// Time from RequestRefresh to the worker delivering its completion
	FetchDuration prometheus.Histogram

	// Upstream forecast API calls by status (success, error, circuit_open, rate_limited)
	UpstreamCallsTotal *prometheus.CounterVec

	// Rows bound with a condition code that has no icon
	UnmappedConditionsTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	FetchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastFetchOutcomesTotal",
			Help: "Forecast fetch completions by outcome",
		},
		[]string{"outcome"},
	)
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecastFetchDurationSeconds",
			Help:    "Forecast fetch latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastUpstreamCallsTotal",
			Help: "Calls to the forecast API by status",
		},
		[]string{"status"},
	)
	UnmappedConditionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastUnmappedConditionsTotal",
			Help: "Rows rendered with the fallback icon",
		},
	)

	registry.MustRegister(
		FetchOutcomesTotal,
		FetchDuration,
		UpstreamCallsTotal,
		UnmappedConditionsTotal,
	)
}

// MetricsHandler serves the registry in Prometheus text format
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ServeMetrics exposes /metrics on addr in the background. The returned
// server should be shut down on exit.
func ServeMetrics(addr string, logger *zap.Logger) *http.Server {
	logger = OrNop(logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", addr))
	return srv
}
