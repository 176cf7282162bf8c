// Package metrics provides Prometheus instrumentation for the FinSight engine.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsight",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finsight",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ForecastsComputedTotal counts computed forecasts by kind and method.
	ForecastsComputedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsight",
			Name:      "forecasts_computed_total",
			Help:      "Total forecasts computed by kind and method.",
		},
		[]string{"kind", "method"},
	)

	// SimulationDuration observes Monte Carlo simulation run time.
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "finsight",
		Name:      "simulation_duration_seconds",
		Help:      "Monte Carlo cash flow simulation duration in seconds.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	})

	// RiskAssessmentsTotal counts risk assessments by type and severity.
	RiskAssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsight",
			Name:      "risk_assessments_total",
			Help:      "Total risk assessments by risk type and severity.",
		},
		[]string{"type", "severity"},
	)

	// QueriesRoutedTotal counts natural language queries by detected intent.
	QueriesRoutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsight",
			Name:      "queries_routed_total",
			Help:      "Total financial queries routed by detected intent.",
		},
		[]string{"intent"},
	)

	// BehaviorScoresTotal counts customer behavior scorings by analysis kind.
	BehaviorScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsight",
			Name:      "behavior_scores_total",
			Help:      "Total customer behavior scorings by analysis kind.",
		},
		[]string{"kind"},
	)

	// TextGenFallbacksTotal counts narrative generations that fell back to
	// static templates because the language model was unavailable.
	TextGenFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finsight",
		Name:      "textgen_fallbacks_total",
		Help:      "Total narrative generations served from static fallback.",
	})

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "finsight",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "finsight", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "finsight", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "finsight", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// DBWaitCount tracks the total number of connections waited for.
	DBWaitCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "finsight", Name: "db_wait_count_total",
		Help: "Total number of connections waited for.",
	})
	// DBWaitDuration tracks total time waited for connections.
	DBWaitDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "finsight", Name: "db_wait_duration_seconds_total",
		Help: "Total time waited for connections in seconds.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "finsight", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ForecastsComputedTotal,
		SimulationDuration,
		RiskAssessmentsTotal,
		QueriesRoutedTotal,
		BehaviorScoresTotal,
		TextGenFallbacksTotal,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		DBWaitCount,
		DBWaitDuration,
		GoroutineCount,
	)
}

// NewSimulationTimer returns a timer that observes into SimulationDuration
// when ObserveDuration is called.
func NewSimulationTimer() *prometheus.Timer {
	return prometheus.NewTimer(SimulationDuration)
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			DBWaitCount.Set(float64(stats.WaitCount))
			DBWaitDuration.Set(stats.WaitDuration.Seconds())
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
