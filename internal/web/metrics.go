package web

import (
	"net/http"
	"strconv"
	"time"

	"inkwell-cli/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	saves    *prometheus.CounterVec
	git      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, dirty *store.Dirty) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkwell",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inkwell",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkwell",
			Name:      "saves_total",
			Help:      "Collection saves by resource and result.",
		}, []string{"resource", "result"}),
		git: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkwell",
			Name:      "git_operations_total",
			Help:      "Publish and pull attempts by operation and result.",
		}, []string{"op", "result"}),
	}
	dirtyGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "inkwell",
		Name:      "unpublished_changes",
		Help:      "1 while saved changes have not been published.",
	}, func() float64 {
		if dirty.Dirty() {
			return 1
		}
		return 0
	})
	for _, c := range []prometheus.Collector{m.requests, m.latency, m.saves, m.git, dirtyGauge} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *metrics) observeSave(resource string, err error) {
	m.saves.WithLabelValues(resource, result(err)).Inc()
}

func (m *metrics) observeGit(op string, err error) {
	m.git.WithLabelValues(op, result(err)).Inc()
}

// instrument records every request under its mux pattern, so path
// parameters do not explode label cardinality.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
