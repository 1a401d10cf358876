package service

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the generation
// pipeline and the HTTP surface.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	solveTotal      *prometheus.CounterVec

	requestCount uint64
	solveCount   uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
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

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_solve_duration_seconds",
		Help:    "Wall-clock duration of timetable solves",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 120, 300},
	}, []string{"strategy"})

	solveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_solves_total",
		Help: "Total number of timetable solves by terminal status",
	}, []string{"strategy", "status"})

	registry.MustRegister(requestDuration, requestTotal, solveDuration, solveTotal)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		solveDuration:   solveDuration,
		solveTotal:      solveTotal,
	}
}

// ObserveRequest records one HTTP request.
func (m *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, status).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveSolve records one solve with its terminal status.
func (m *MetricsService) ObserveSolve(strategy, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.solveDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.solveTotal.WithLabelValues(strategy, status).Inc()
	atomic.AddUint64(&m.solveCount, 1)
}

// Prometheus exposes the registry in Prometheus exposition format.
func (m *MetricsService) Prometheus(c *gin.Context) {
	m.handler.ServeHTTP(c.Writer, c.Request)
}

// HealthSnapshot is a lightweight liveness payload.
type HealthSnapshot struct {
	Status     string `json:"status"`
	Goroutines int    `json:"goroutines"`
	Requests   uint64 `json:"requests"`
	Solves     uint64 `json:"solves"`
}

// Health reports process liveness counters.
func (m *MetricsService) Health() HealthSnapshot {
	return HealthSnapshot{
		Status:     "ok",
		Goroutines: runtime.NumGoroutine(),
		Requests:   atomic.LoadUint64(&m.requestCount),
		Solves:     atomic.LoadUint64(&m.solveCount),
	}
}
