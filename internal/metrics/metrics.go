package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtslot_bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_booking_transitions_total",
			Help: "Total number of booking status transitions",
		},
		[]string{"to"},
	)

	ReservationConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtslot_reservation_conflicts_total",
			Help: "Total number of booking attempts rejected by the conflict guard",
		},
	)

	RefundsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_refunds_issued_total",
			Help: "Total number of cancellation outcomes by kind",
		},
		[]string{"outcome"},
	)

	AvailabilityCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtslot_availability_cache_total",
			Help: "Availability cache lookups by result",
		},
		[]string{"result"},
	)

	ActiveExpiryTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtslot_active_expiry_timers",
			Help: "Number of armed payment-deadline timers",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingCreated() {
	BookingsCreatedTotal.Inc()
}

func RecordTransition(to string) {
	BookingTransitionsTotal.WithLabelValues(to).Inc()
}

func RecordConflict() {
	ReservationConflictsTotal.Inc()
}

func RecordRefund(outcome string) {
	RefundsIssuedTotal.WithLabelValues(outcome).Inc()
}

func RecordCacheLookup(result string) {
	AvailabilityCacheTotal.WithLabelValues(result).Inc()
}
