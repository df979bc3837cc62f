package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry. Every method is safe on a nil receiver so
// packages can take an optional *Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	leaveSubmitted  *prometheus.CounterVec
	leaveDecided    *prometheus.CounterVec
	slipsGenerated  *prometheus.CounterVec
	outboxPublished *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by cache name and result",
	}, []string{"cache", "result"})

	leaveSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_submissions_total",
		Help: "Leave submissions by outcome",
	}, []string{"result"})

	leaveDecided := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_decisions_total",
		Help: "Leave status decisions by resulting status",
	}, []string{"status"})

	slipsGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salary_slips_generated_total",
		Help: "Generated salary slips by outcome",
	}, []string{"result"})

	outboxPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events pushed to kafka by outcome",
	}, []string{"result"})

	registry.MustRegister(
		requestDuration, requestTotal, cacheLookups,
		leaveSubmitted, leaveDecided, slipsGenerated, outboxPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLookups:    cacheLookups,
		leaveSubmitted:  leaveSubmitted,
		leaveDecided:    leaveDecided,
		slipsGenerated:  slipsGenerated,
		outboxPublished: outboxPublished,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, s).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, s).Inc()
}

func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, outcome(hit, "hit", "miss")).Inc()
}

func (m *Metrics) LeaveSubmitted(ok bool) {
	if m == nil {
		return
	}
	m.leaveSubmitted.WithLabelValues(outcome(ok, "created", "rejected")).Inc()
}

func (m *Metrics) LeaveDecided(status string) {
	if m == nil {
		return
	}
	m.leaveDecided.WithLabelValues(status).Inc()
}

func (m *Metrics) SlipGenerated(ok bool) {
	if m == nil {
		return
	}
	m.slipsGenerated.WithLabelValues(outcome(ok, "success", "failed")).Inc()
}

func (m *Metrics) OutboxPublished(ok bool) {
	if m == nil {
		return
	}
	m.outboxPublished.WithLabelValues(outcome(ok, "sent", "failed")).Inc()
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
