// Package metrics owns every Prometheus series the service exports.
//
// Each Collector has its own registry instead of the global default one, so
// tests can build as many collectors as they like without "duplicate metrics
// collector registration" panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartbio"

// Page view results.
const (
	ViewServed   = "served"
	ViewNotFound = "not_found"
	ViewError    = "error"
)

type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	BiosGenerated      prometheus.Counter
	GenerationFailures prometheus.Counter
	PageWritesFailed   prometheus.Counter
	PagesRepaired      prometheus.Counter
	PageViews          *prometheus.CounterVec
}

// New creates a Collector with a fresh registry. Go runtime and process
// metrics are included.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"server", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"server"}),
		BiosGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bios_generated_total",
			Help:      "Bios successfully generated and recorded",
		}),
		GenerationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Generation requests that failed at the model",
		}),
		PageWritesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_writes_failed_total",
			Help:      "Page artifacts that could not be written after all retries",
		}),
		PagesRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_repaired_total",
			Help:      "Missing page artifacts re-rendered by reconciliation",
		}),
		PageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_views_total",
			Help:      "Public page requests by result",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.BiosGenerated,
		c.GenerationFailures,
		c.PageWritesFailed,
		c.PagesRepaired,
		c.PageViews,
	)
	return c
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(server, method string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(server, method, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(server).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry is exposed for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
