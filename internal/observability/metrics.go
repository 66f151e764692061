package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compensation outcomes
const (
	CompensationRolledBack = "rolled_back"
	CompensationFailed     = "failed"
)

// Metrics holds the Prometheus registry and the application's collectors.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	saleOps         *prometheus.CounterVec
	compensations   *prometheus.CounterVec
}

// NewMetrics builds a private registry with the base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	saleOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_sale_operations_total",
		Help: "Sale record/edit/delete operations by result.",
	}, []string{"operation", "result"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_sale_compensations_total",
		Help: "Rollbacks of partially applied sale operations by outcome.",
	}, []string{"operation", "outcome"})
	registry.MustRegister(requests, duration, saleOps, compensations)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		saleOps:         saleOps,
		compensations:   compensations,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// SaleOperation counts one sale operation ("record", "edit", "delete") with
// its result ("ok" or an error kind).
func (m *Metrics) SaleOperation(operation, result string) {
	if m == nil {
		return
	}
	m.saleOps.WithLabelValues(operation, result).Inc()
}

// Compensation counts one rollback attempt.
func (m *Metrics) Compensation(operation, outcome string) {
	if m == nil {
		return
	}
	m.compensations.WithLabelValues(operation, outcome).Inc()
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}
