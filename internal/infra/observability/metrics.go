package observability

import (
	"net/http"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the CRM API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	importsTotal    *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	activitiesTotal *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_external_errors_total",
				Help: "Total errors from the hosted backend.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_imports_total",
				Help: "Total CSV import batches by outcome.",
			},
			[]string{"outcome"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_import_rows_total",
				Help: "Total imported rows by result.",
			},
			[]string{"result"},
		),
		activitiesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_activities_logged_total",
				Help: "Total activity records written, by type.",
			},
			[]string{"type"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordImport records one import batch plus its per-row results.
func (m *Metrics) RecordImport(outcome string, submitted, failed int) {
	m.importsTotal.WithLabelValues(outcome).Inc()
	m.importRows.WithLabelValues("submitted").Add(float64(submitted))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

// IncrActivity increments the activity counter for a type tag.
func (m *Metrics) IncrActivity(activityType string) {
	m.activitiesTotal.WithLabelValues(activityType).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// MetricsMiddleware counts every request as success (<400) or error and
// records its duration under the routed pattern. These counters back the
// admin usage snapshot.
func MetricsMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				outcome := "success"
				if ww.Status() >= 400 {
					outcome = "error"
				}
				m.IncrRequest(outcome)

				op := r.Method + " " + r.URL.Path
				if rc := chi.RouteContext(r.Context()); rc != nil {
					if pattern := rc.RoutePattern(); pattern != "" {
						op = r.Method + " " + pattern
					}
				}
				m.RecordRequestDuration(op, time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// UsageSnapshot returns current counter values for the admin analytics
// endpoint. Prometheus counters are cumulative since process start.
func (m *Metrics) UsageSnapshot() *domain.UsageSnapshot {
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "leads") + getCounterValue(m.cacheHits, "profile")
	cacheMisses := getCounterValue(m.cacheMisses, "leads") + getCounterValue(m.cacheMisses, "profile")

	errorRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.UsageSnapshot{
		TotalRequests: int64(totalRequests),
		ErrorRate:     errorRate,
		CacheHitRate:  cacheHitRate,
		ImportBatches: int64(getCounterValue(m.importsTotal, "completed") + getCounterValue(m.importsTotal, "failed")),
		ImportedRows:  int64(getCounterValue(m.importRows, "submitted")),
		FailedRows:    int64(getCounterValue(m.importRows, "failed")),
		BackendErrors: int64(getCounterValue(m.externalErrors, "supabase")),
		Period:        "since_start",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
