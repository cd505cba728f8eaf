// Package metrics constructs the metrics the application will track.
package metrics

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The prometheus package registers these with the
// default registry so they are exposed by the debug /metrics endpoint.
var m *metrics

// metrics represents the set of metrics we gather.
type metrics struct {
	goroutines prometheus.Gauge
	requests   *prometheus.CounterVec
	errors     *prometheus.CounterVec
	panics     prometheus.Counter
	upstream   *prometheus.HistogramVec
	total      atomic.Int64
}

// init constructs the metrics value that will be used to capture metrics.
// The metrics value is stored in a package level variable since everything
// inside of metrics is registered as a singleton.
func init() {
	m = &metrics{
		goroutines: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "gateway",
			Name:      "goroutines",
			Help:      "Number of goroutines sampled on each request.",
		}),
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "requests_total",
			Help:      "Requests handled by route.",
		}, []string{"route"}),
		errors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "errors_total",
			Help:      "Failed requests by error kind.",
		}, []string{"kind"}),
		panics: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "panics_total",
			Help:      "Panics recovered by the middleware.",
		}),
		upstream: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Name:      "upstream_call_seconds",
			Help:      "Latency of calls to the node by RPC method and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
	}
}

// AddRequests increments the request count for the route and samples the
// number of goroutines every 100 requests.
func AddRequests(route string) {
	m.requests.WithLabelValues(route).Inc()

	if m.total.Add(1)%100 == 0 {
		m.goroutines.Set(float64(runtime.NumGoroutine()))
	}
}

// AddErrors increments the errors metric for the error kind.
func AddErrors(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

// AddPanics increments the panics metric.
func AddPanics() {
	m.panics.Inc()
}

// ObserveUpstream records the duration of a call to the node.
func ObserveUpstream(method string, outcome string, d time.Duration) {
	m.upstream.WithLabelValues(method, outcome).Observe(d.Seconds())
}
