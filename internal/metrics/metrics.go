// Package metrics exposes Prometheus collectors for registry mutations,
// weather fetches and HTTP requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	mutations     *prometheus.CounterVec
	weatherTotal  *prometheus.CounterVec
	weatherDur    prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	entities      *prometheus.GaugeVec
	lastPersistTS prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{gatherer: reg}

	m.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shoresquad",
		Name:      "mutations_total",
		Help:      "Registry mutations by entity, action and outcome",
	}, []string{"entity", "action", "outcome"})
	m.weatherTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shoresquad",
		Name:      "weather_fetches_total",
		Help:      "Weather lookups by source and status",
	}, []string{"source", "status"})
	m.weatherDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shoresquad",
		Name:      "weather_fetch_duration_seconds",
		Help:      "Time spent calling the weather provider",
		Buckets:   prometheus.DefBuckets,
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shoresquad",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
	m.httpDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shoresquad",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	m.entities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shoresquad",
		Name:      "entities",
		Help:      "Current number of events and crew members",
	}, []string{"entity"})
	m.lastPersistTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "shoresquad",
		Name:      "last_persist_timestamp_seconds",
		Help:      "Unix timestamp of the last successful snapshot save",
	})

	reg.MustRegister(
		m.mutations, m.weatherTotal, m.weatherDur,
		m.httpRequests, m.httpDur, m.entities, m.lastPersistTS,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// ObserveMutation counts a registry operation. outcome is "ok", "noop" or "error".
func (m *Metrics) ObserveMutation(entity, action, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, action, outcome).Inc()
	if outcome == "ok" {
		m.lastPersistTS.Set(float64(time.Now().Unix()))
	}
}

// SetEntityCount records the current collection size.
func (m *Metrics) SetEntityCount(entity string, n int) {
	if m == nil {
		return
	}
	m.entities.WithLabelValues(entity).Set(float64(n))
}

// ObserveWeather counts a weather lookup. source is "cache" or "provider".
func (m *Metrics) ObserveWeather(source, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.weatherTotal.WithLabelValues(source, status).Inc()
	if source == "provider" {
		m.weatherDur.Observe(took.Seconds())
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, code int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDur.WithLabelValues(route).Observe(took.Seconds())
}
