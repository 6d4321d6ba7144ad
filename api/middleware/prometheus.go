package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	chatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of chat message operations processed",
		},
		[]string{"operation", "status", "service"},
	)

	chatMessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_message_duration_seconds",
			Help:    "Duration of chat message operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "service"},
	)

	otpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_requests_total",
			Help: "Total number of OTP issue/verify requests",
		},
		[]string{"operation", "status", "service"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

// RecordChatOperation tracks a single chat core operation (send, list,
// create, summary).
func RecordChatOperation(operation, status, serviceName string, duration time.Duration) {
	chatMessagesTotal.WithLabelValues(operation, status, serviceName).Inc()
	chatMessageDuration.WithLabelValues(operation, serviceName).Observe(duration.Seconds())
}

// RecordOTPOperation tracks an OTP issue or verify request.
func RecordOTPOperation(operation, status, serviceName string) {
	otpRequestsTotal.WithLabelValues(operation, status, serviceName).Inc()
}
