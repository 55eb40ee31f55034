package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge
)

// MetricsConfig groups what /metrics needs. GlobalPool may be nil (memory store).
type MetricsConfig struct {
	Registry   prometheus.Registerer
	GlobalPool func() *pgxpool.Pool
}

// RegisterMetrics initializes the HTTP metrics and, when a pool getter is
// provided, a collector for pgxpool stats. Returns the /metrics handler.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	var regErr error
	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests currently being served",
		})

		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, httpInflight} {
			if err := registry.Register(c); err != nil {
				regErr = err
				return
			}
		}

		if cfg.GlobalPool != nil {
			regErr = registry.Register(&poolCollector{pool: cfg.GlobalPool})
		}
	})
	if regErr != nil {
		return nil, regErr
	}

	return promhttp.Handler(), nil
}

// WithMetrics instruments requests. routePattern extracts the route template
// (not the raw path) so ids don't explode label cardinality.
func WithMetrics(routePattern func(r *http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			httpInflight.Inc()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			httpInflight.Dec()

			path := r.URL.Path
			if routePattern != nil {
				if p := routePattern(r); p != "" {
					path = p
				}
			}
			httpRequestsTotal.WithLabelValues(r.Method, path, statusText(sr.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

func statusText(code int) string {
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

// poolCollector exports pgxpool stats.
type poolCollector struct {
	pool func() *pgxpool.Pool
}

var (
	descPoolTotal    = prometheus.NewDesc("pgxpool_total_conns", "Total connections in the pool", nil, nil)
	descPoolIdle     = prometheus.NewDesc("pgxpool_idle_conns", "Idle connections in the pool", nil, nil)
	descPoolAcquired = prometheus.NewDesc("pgxpool_acquired_conns", "Acquired connections in the pool", nil, nil)
)

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descPoolTotal
	ch <- descPoolIdle
	ch <- descPoolAcquired
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	p := c.pool()
	if p == nil {
		return
	}
	st := p.Stat()
	ch <- prometheus.MustNewConstMetric(descPoolTotal, prometheus.GaugeValue, float64(st.TotalConns()))
	ch <- prometheus.MustNewConstMetric(descPoolIdle, prometheus.GaugeValue, float64(st.IdleConns()))
	ch <- prometheus.MustNewConstMetric(descPoolAcquired, prometheus.GaugeValue, float64(st.AcquiredConns()))
}
