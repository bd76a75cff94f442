package server

import (
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics owns a private registry so handler tests never trip duplicate
// registration in the global one.
type metrics struct {
    registry        *prometheus.Registry
    requestsTotal   *prometheus.CounterVec
    requestDuration *prometheus.HistogramVec
    inFlight        prometheus.Gauge
}

func newMetrics() *metrics {
    registry := prometheus.NewRegistry()
    m := &metrics{
        registry: registry,
        requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "shipquote",
            Name:      "http_requests_total",
            Help:      "Total HTTP requests by method, route and status.",
        }, []string{"method", "route", "status"}),
        requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
            Namespace: "shipquote",
            Name:      "http_request_duration_seconds",
            Help:      "HTTP request latency by method and route.",
            Buckets:   prometheus.DefBuckets,
        }, []string{"method", "route"}),
        inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "shipquote",
            Name:      "http_requests_in_flight",
            Help:      "HTTP requests currently being served.",
        }),
    }
    registry.MustRegister(m.requestsTotal, m.requestDuration, m.inFlight)
    return m
}

func (m *metrics) handler() http.Handler {
    return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument records count, latency and in-flight gauge per request.
// The route label uses the chi pattern, not the raw path, to keep
// cardinality bounded.
func (m *metrics) instrument(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path == "/metrics" {
            next.ServeHTTP(w, r)
            return
        }
        m.inFlight.Inc()
        defer m.inFlight.Dec()

        start := time.Now()
        ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
        next.ServeHTTP(ww, r)

        route := chi.RouteContext(r.Context()).RoutePattern()
        if route == "" {
            route = "unmatched"
        }
        status := ww.Status()
        if status == 0 {
            status = http.StatusOK
        }
        m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
        m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
    })
}
