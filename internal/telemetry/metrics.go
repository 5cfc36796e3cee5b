package telemetry

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the registry's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec

	cacheLookupsTotal *prometheus.CounterVec
	importJobsTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers collectors; a nil registerer means the default one.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_registry_http_requests_total",
				Help: "Total HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_registry_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds by route and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_registry_http_requests_in_flight",
				Help: "Current number of in-flight HTTP requests.",
			},
		),
		dbQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_registry_db_queries_total",
				Help: "Total DB method calls by method and status.",
			},
			[]string{"method", "status"},
		),
		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_registry_db_query_duration_seconds",
				Help:    "DB method duration in seconds by method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_registry_cache_lookups_total",
				Help: "Customer cache lookups by result (hit, miss, error).",
			},
			[]string{"result"},
		),
		importJobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_registry_import_jobs_total",
				Help: "Processed import jobs by outcome.",
			},
			[]string{"outcome"},
		),
	}

	registerer.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
		m.dbQueriesTotal,
		m.dbQueryDuration,
		m.cacheLookupsTotal,
		m.importJobsTotal,
	)

	return m
}

func (m *Metrics) ObserveHTTP(route, method, status string, duration time.Duration) {
	if m == nil {
		return
	}

	m.httpRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (m *Metrics) IncHTTPInFlight() {
	if m == nil {
		return
	}

	m.httpRequestsInFlight.Inc()
}

func (m *Metrics) DecHTTPInFlight() {
	if m == nil {
		return
	}

	m.httpRequestsInFlight.Dec()
}

func (m *Metrics) ObserveDB(method, status string, duration time.Duration) {
	if m == nil {
		return
	}

	m.dbQueriesTotal.WithLabelValues(method, status).Inc()
	m.dbQueryDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}

	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveImport(outcome string) {
	if m == nil {
		return
	}

	m.importJobsTotal.WithLabelValues(outcome).Inc()
}

// RegisterDBPoolMetrics exposes sql.DBStats of the pool as gauges and counters.
func RegisterDBPoolMetrics(db *sqlx.DB, registerer prometheus.Registerer) error {
	if db == nil {
		return errors.New("db is nil")
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "customer_registry_db_pool_open_connections",
				Help: "Open database connections.",
			},
			func() float64 { return float64(db.Stats().OpenConnections) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "customer_registry_db_pool_in_use_connections",
				Help: "In-use database connections.",
			},
			func() float64 { return float64(db.Stats().InUse) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "customer_registry_db_pool_idle_connections",
				Help: "Idle database connections.",
			},
			func() float64 { return float64(db.Stats().Idle) },
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "customer_registry_db_pool_wait_count_total",
				Help: "Total number of waits for a free connection.",
			},
			func() float64 { return float64(db.Stats().WaitCount) },
		),
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}

	return nil
}
