package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reservation",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation",
			Name:      "bookings_created_total",
			Help:      "Bookings created, by initial status.",
		},
		[]string{"status"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reservation",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because the window was taken.",
		},
	)

	bookingsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reservation",
			Name:      "bookings_expired_total",
			Help:      "Pending bookings expired by the sweeper.",
		},
	)

	extensionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation",
			Name:      "extension_outcomes_total",
			Help:      "Extension request outcomes.",
		},
		[]string{"outcome"},
	)

	availabilityCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservation",
			Name:      "availability_cache_requests_total",
			Help:      "Availability cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers all collectors. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingsCreated,
			bookingConflicts,
			bookingsExpired,
			extensionOutcomes,
			availabilityCacheHits,
		)
	})
}

// Handler returns the scrape endpoint handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// IncBookingCreated counts a successful booking creation.
func IncBookingCreated(status string) {
	bookingsCreated.WithLabelValues(status).Inc()
}

// IncBookingConflict counts a create rejected on overlap.
func IncBookingConflict() {
	bookingConflicts.Inc()
}

// IncBookingExpired counts a sweeper expiry.
func IncBookingExpired() {
	bookingsExpired.Inc()
}

// IncExtensionOutcome counts an extension resolution.
func IncExtensionOutcome(outcome string) {
	extensionOutcomes.WithLabelValues(outcome).Inc()
}

// IncAvailabilityCache counts a cache lookup result (hit or miss).
func IncAvailabilityCache(result string) {
	availabilityCacheHits.WithLabelValues(result).Inc()
}
