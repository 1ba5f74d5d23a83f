package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "afr"

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics holds the application collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer       prometheus.Gatherer
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	authAttempts   *prometheus.CounterVec
	sessionChecks  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWith(reg, reg)
}

// NewWith registers the collectors on reg and serves them from g.
func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: g,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route"}),
		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		sessionChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_checks_total",
			Help:      "Session gate evaluations by result",
		}, []string{"result"}),
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// AuthAttempt counts a login attempt with result such as "ok" or "invalid".
func (m *Metrics) AuthAttempt(result string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(result).Inc()
}

// SessionCheck counts a session evaluation with result such as
// "authenticated", "no_cookie", "invalid_token" or "user_missing".
func (m *Metrics) SessionCheck(result string) {
	if m == nil {
		return
	}
	m.sessionChecks.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
