package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Submission results used as metric labels
const (
	resultAccepted  = "accepted"
	resultInvalid   = "invalid"
	resultDuplicate = "duplicate"
	resultAborted   = "aborted"
)

// Registry holds the server metrics exposed on /metrics
var Registry = prometheus.NewRegistry()

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "midnightbrew",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "midnightbrew",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 13), // 1ms to ~4s
		},
		[]string{"route"},
	)

	// Form metrics
	signupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "midnightbrew",
			Subsystem: "signup",
			Name:      "applications_total",
			Help:      "Total number of signup applications by result",
		},
		[]string{"result"},
	)

	contactMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "midnightbrew",
			Subsystem: "contact",
			Name:      "messages_total",
			Help:      "Total number of contact messages by result",
		},
		[]string{"result"},
	)

	// Testimonial stream metrics
	websocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "midnightbrew",
			Subsystem: "testimonials",
			Name:      "clients",
			Help:      "Number of connected testimonial stream clients",
		},
	)

	carouselCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "midnightbrew",
			Subsystem: "testimonials",
			Name:      "commands_total",
			Help:      "Total number of carousel commands by command and result",
		},
		[]string{"command", "result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		signupsTotal,
		contactMessagesTotal,
		websocketClients,
		carouselCommandsTotal,
	)
}

// recordHTTPRequestMetric records a completed HTTP request.
func recordHTTPRequestMetric(route string, status int, duration float64) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration)
}

// recordSignupMetric records the outcome of a signup application.
func recordSignupMetric(result string) {
	signupsTotal.WithLabelValues(result).Inc()
}

// recordContactMetric records the outcome of a contact message.
func recordContactMetric(result string) {
	contactMessagesTotal.WithLabelValues(result).Inc()
}

// recordCarouselCommandMetric records a carousel command from a client.
func recordCarouselCommandMetric(command, result string) {
	carouselCommandsTotal.WithLabelValues(command, result).Inc()
}
