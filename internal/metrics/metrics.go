package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetcal",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	slotQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetcal",
			Name:      "slot_queries_total",
			Help:      "Count of slot listing queries by result.",
		},
		[]string{"result"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetcal",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by status.",
		},
		[]string{"status"},
	)

	invalidRulesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meetcal",
			Name:      "invalid_rules_skipped_total",
			Help:      "Count of malformed availability rules skipped during resolution.",
		},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetcal",
			Name:      "notifications_sent_total",
			Help:      "Count of booking notifications by channel and result.",
		},
		[]string{"channel", "result"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetcal",
			Name:      "cache_lookups_total",
			Help:      "Count of day-availability cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, slotQueries, bookingCreated,
			invalidRulesSkipped, notificationsSent, cacheLookups,
		)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncSlotQuery(result string) {
	slotQueries.WithLabelValues(result).Inc()
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func AddInvalidRulesSkipped(n int) {
	invalidRulesSkipped.Add(float64(n))
}

func IncNotification(channel, result string) {
	notificationsSent.WithLabelValues(channel, result).Inc()
}

func IncCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}
