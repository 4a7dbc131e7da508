package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "smartcloset"

// removal results
const (
	RemovalRemoved = "removed"
	RemovalMissing = "missing"
	RemovalFailed  = "failed"
)

// Metrics holds the catalog collectors and the registry they are registered on.
type Metrics struct {
	Registry *prometheus.Registry

	ItemsCreated      prometheus.Counter
	ItemsDeleted      prometheus.Counter
	ImageBytesWritten prometheus.Counter
	ImageRemovals     *prometheus.CounterVec
	Requests          *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ItemsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Clothing items created.",
		}),
		ItemsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_deleted_total",
			Help:      "Clothing item rows deleted.",
		}),
		ImageBytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_bytes_written_total",
			Help:      "Decoded image bytes written to the image store.",
		}),
		ImageRemovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_removals_total",
			Help:      "Image removal attempts by result.",
		}, []string{"result"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ItemsCreated,
		m.ItemsDeleted,
		m.ImageBytesWritten,
		m.ImageRemovals,
		m.Requests,
		m.RequestDuration,
	)

	return m
}
