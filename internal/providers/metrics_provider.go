package providers

import (
	"time"
	"wagerd/internal/services"
	"wagerd/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsProviderInterface also satisfies services.LedgerObserver.
type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncCacheInvalidations()
	ObservePersistenceDuration(duration time.Duration)
	IncConfirmed(count int)
	IncSessions()
	IncSettled(outcome string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheInvalidations  prometheus.Counter
	persistenceDuration prometheus.Histogram
	confirmedTotal      prometheus.Counter
	sessionsTotal       prometheus.Counter
	settledTotal        *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncCacheInvalidations() {
	m.cacheInvalidations.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncConfirmed(count int) {
	m.confirmedTotal.Add(float64(count))
}

func (m *MetricsProvider) IncSessions() {
	m.sessionsTotal.Inc()
}

func (m *MetricsProvider) IncSettled(outcome string) {
	m.settledTotal.WithLabelValues(outcome).Inc()
}

func httpStatusBucket(code int) string {
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

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wagerd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wagerd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wagerd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wagerd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		cacheInvalidations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wagerd_cache_invalidations_total",
			Help: "Total number of deleted cache entries",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wagerd_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		confirmedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wagerd_confirmed_commitments_total",
			Help: "Total number of confirmed commitments",
		}),

		sessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wagerd_sessions_total",
			Help: "Total number of recorded reading sessions",
		}),

		settledTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wagerd_settled_total",
			Help: "Total number of settled commitments by outcome",
		}, []string{"outcome"}),
	}
}

// RegisterTrackerGauges exposes live tracker sizes. It is a no-op when
// metrics are disabled.
func RegisterTrackerGauges(conf *structures.Config, service services.TrackerServiceInterface) {
	if !conf.Metrics.Enabled {
		return
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wagerd_readers_total",
		Help: "Total number of readers with a ledger",
	}, func() float64 {
		return float64(len(service.GetReaders()))
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wagerd_active_commitments",
		Help: "Current number of active commitments across readers",
	}, func() float64 {
		return float64(service.GetActiveCount())
	})
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncCacheInvalidations()                           {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncConfirmed(_ int)                               {}
func (n *noopMetrics) IncSessions()                                     {}
func (n *noopMetrics) IncSettled(_ string)                              {}
