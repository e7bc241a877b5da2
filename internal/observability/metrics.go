package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: trigger frequency, unexpected callers.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. For /run this is full batch wall time.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: overlapping batch triggers.
	HTTPRequestsInFlight prometheus.Gauge

	// Weather API call rate by status. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// Weather API latency per call. Watch for: upstream degradation.
	WeatherAPIDuration *prometheus.HistogramVec

	// Batch executions. rate() gives trigger cadence.
	BatchRunsTotal prometheus.Counter

	// Wall time of a full batch (all cities joined).
	BatchDurationSeconds prometheus.Histogram

	// Per-city outcomes. outcome=failure carries the error category label.
	CityIngestTotal *prometheus.CounterVec

	// Document writes by status. Watch for: store availability.
	StoreWritesTotal *prometheus.CounterVec

	// Document write latency by status.
	StoreWriteDurationSeconds *prometheus.HistogramVec

	// Records classified as rainy. Ratio to successful ingests = rain share.
	RainyRecordsTotal prometheus.Counter

	// Kafka publishes by status. Only moves when event publishing is enabled.
	EventPublishTotal *prometheus.CounterVec

	// Trigger requests denied by the rate limiter (429).
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of weather API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "Weather API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	BatchRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batchRunsTotal",
			Help: "Total number of ingestion batch executions",
		},
	)
	BatchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batchDurationSeconds",
			Help:    "Wall time of a full ingestion batch in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	CityIngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityIngestTotal",
			Help: "Per-city ingestion outcomes; category set on failure only",
		},
		[]string{"outcome", "category"},
	)
	StoreWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storeWritesTotal",
			Help: "Total number of document store writes",
		},
		[]string{"status"},
	)
	StoreWriteDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storeWriteDurationSeconds",
			Help:    "Document store write latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"status"},
	)
	RainyRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rainyRecordsTotal",
			Help: "Total number of stored records classified as rainy",
		},
	)
	EventPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventPublishTotal",
			Help: "Total number of record events published to Kafka",
		},
		[]string{"status"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		BatchRunsTotal, BatchDurationSeconds, CityIngestTotal,
		StoreWritesTotal, StoreWriteDurationSeconds, RainyRecordsTotal,
		EventPublishTotal, RateLimitDeniedTotal,
	)
}

// MetricsHandler returns the /metrics handler backed by the service registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
