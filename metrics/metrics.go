// Package metrics exposes Prometheus collectors for the console: calls to
// the tournament API, court reorder outcomes and the console's own HTTP
// traffic. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tournament_console"

type Recorder struct {
	registry prometheus.Gatherer

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	reorders         *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	liveClients      prometheus.Gauge
}

// New registers the console collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests sent to the tournament API by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of tournament API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		reorders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "court_reorders_total",
			Help:      "Court reorders by outcome (noop, confirmed, reverted).",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Console HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Console HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Websocket clients connected to tournament rooms.",
		}),
	}
	reg.MustRegister(
		r.upstreamRequests,
		r.upstreamDuration,
		r.reorders,
		r.httpRequests,
		r.httpDuration,
		r.liveClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveUpstream records one tournament API call. status 0 means the
// request never got a response.
func (r *Recorder) ObserveUpstream(endpoint string, status int, d time.Duration) {
	if r == nil {
		return
	}
	code := "transport_error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	r.upstreamRequests.WithLabelValues(endpoint, code).Inc()
	r.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (r *Recorder) ObserveReorder(outcome string) {
	if r == nil {
		return
	}
	r.reorders.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (r *Recorder) SetLiveClients(n int) {
	if r == nil {
		return
	}
	r.liveClients.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
