package metrics

import (
	"net/http"
	"strconv"
	"time"

	"SugarMill.twin/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects scheduler, twin and HTTP metrics on its own registry.
type Metrics struct {
	registry      *prometheus.Registry
	ticksTotal    *prometheus.CounterVec
	tickFailures  *prometheus.CounterVec
	tickDuration  *prometheus.HistogramVec
	systemHealth  prometheus.Gauge
	readingsTotal *prometheus.GaugeVec
	sinkFailures  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	totalCapacity prometheus.Gauge
	avgEfficiency prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twin_ticks_total",
			Help: "Total scheduler ticks by task.",
		}, []string{"task"}),
		tickFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twin_tick_failures_total",
			Help: "Total failed scheduler ticks by task.",
		}, []string{"task"}),
		tickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twin_tick_duration_seconds",
			Help:    "Histogram of scheduler tick durations by task.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
		systemHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_system_health_percent",
			Help: "Share of readings with normal status.",
		}),
		readingsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "twin_readings",
			Help: "Current readings by status.",
		}, []string{"status"}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twin_sink_failures_total",
			Help: "Total failed snapshot publications by sink.",
		}, []string{"sink"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		totalCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_total_capacity_tons_per_hour",
			Help: "Summed capacity of all stations.",
		}),
		avgEfficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "twin_average_efficiency_percent",
			Help: "Mean station efficiency.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ticksTotal,
		m.tickFailures,
		m.tickDuration,
		m.systemHealth,
		m.readingsTotal,
		m.sinkFailures,
		m.httpRequests,
		m.httpDuration,
		m.totalCapacity,
		m.avgEfficiency,
	)
	return m
}

// TickCompleted records one scheduler tick.
func (m *Metrics) TickCompleted(task string, took time.Duration, err error) {
	m.ticksTotal.WithLabelValues(task).Inc()
	m.tickDuration.WithLabelValues(task).Observe(took.Seconds())
	if err != nil {
		m.tickFailures.WithLabelValues(task).Inc()
	}
}

// ObserveSummary publishes the latest aggregate as gauges.
func (m *Metrics) ObserveSummary(s models.Summary) {
	m.systemHealth.Set(s.SystemHealthPercent)
	m.readingsTotal.WithLabelValues(string(models.StatusNormal)).Set(float64(s.Normal))
	m.readingsTotal.WithLabelValues(string(models.StatusWarning)).Set(float64(s.Warning))
	m.readingsTotal.WithLabelValues(string(models.StatusCritical)).Set(float64(s.Critical))
	m.totalCapacity.Set(s.TotalCapacity)
	m.avgEfficiency.Set(s.AverageEfficiency)
}

func (m *Metrics) SinkFailed(sink string) {
	m.sinkFailures.WithLabelValues(sink).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests and their latency under route. It must not wrap
// handlers that hijack the connection.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
