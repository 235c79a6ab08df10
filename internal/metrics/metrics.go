package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retailpulse"

// Metrics holds the service's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	InventoryMutations *prometheus.CounterVec
	LowStockItems      prometheus.Gauge
	SalesRecorded      prometheus.Counter
	IngestRows         *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.InventoryMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_mutations_total",
			Help:      "Inventory create/adjust/update operations by result",
		},
		[]string{"operation", "result"},
	)

	m.LowStockItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_low_stock_items",
			Help:      "Items at or below their low-stock threshold at the last scan",
		},
	)

	m.SalesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_recorded_total",
			Help:      "Sales appended to the ledger",
		},
	)

	m.IngestRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_total",
			Help:      "Sale rows read by the ingest service by result",
		},
		[]string{"source", "result"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.InventoryMutations,
		m.LowStockItems,
		m.SalesRecorded,
		m.IngestRows,
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncrementHTTPRequestsInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Inc()
	}
}

func (m *Metrics) DecrementHTTPRequestsInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Dec()
	}
}

// RecordInventoryMutation counts one ledger operation; result is "ok",
// "rejected" for client errors, or "error".
func (m *Metrics) RecordInventoryMutation(operation, result string) {
	if m != nil {
		m.InventoryMutations.WithLabelValues(operation, result).Inc()
	}
}

func (m *Metrics) SetLowStockItems(n int) {
	if m != nil {
		m.LowStockItems.Set(float64(n))
	}
}

func (m *Metrics) RecordSale() {
	if m != nil {
		m.SalesRecorded.Inc()
	}
}

func (m *Metrics) RecordIngestRows(source string, accepted, rejected int) {
	if m == nil {
		return
	}
	m.IngestRows.WithLabelValues(source, "accepted").Add(float64(accepted))
	m.IngestRows.WithLabelValues(source, "rejected").Add(float64(rejected))
}
