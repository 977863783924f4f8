// Package metrics holds the Prometheus instruments of the API. Collectors are
// registered on the registry handed to New, so tests can use a private one.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fla7a"

// Guard outcomes as exported in the outcome label
const (
	OutcomeAllowed    = "allowed"
	OutcomeBypassed   = "bypassed"
	OutcomeMissing    = "missing_tenant"
	OutcomeAnonymous  = "unauthenticated"
	OutcomeMismatched = "tenant_mismatch"
)

// Metrics groups the application collectors
type Metrics struct {
	gatherer   prometheus.Gatherer
	registerer prometheus.Registerer

	TenantResolutions *prometheus.CounterVec
	GuardDecisions    *prometheus.CounterVec
	InvoicesIssued    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer:   reg,
		registerer: reg,
		TenantResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_resolution_total",
			Help:      "Requests by the source their tenant was resolved from.",
		}, []string{"source"}),
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_guard_decisions_total",
			Help:      "Tenant guard decisions by outcome.",
		}, []string{"outcome"}),
		InvoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_issued_total",
			Help:      "Invoices numbered and stored, by TVA rate.",
		}, []string{"tva_rate"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TenantResolutions,
		m.GuardDecisions,
		m.InvoicesIssued,
		m.RequestDuration,
	)
	return m
}

// RegisterDBStats exports the connection pool statistics of db under the
// go_sql_* metric family, labelled with dbName.
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registerer.Register(collectors.NewDBStatsCollector(db, dbName))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// GinMiddleware observes request latency. Unmatched routes share one label
// value to keep cardinality bounded.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
