package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointly_bookings_created_total",
		Help: "Bookings successfully created",
	})

	// reason: capacity / duplicate / not_found
	BookingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appointly_bookings_rejected_total",
		Help: "Booking attempts rejected by the ledger",
	}, []string{"reason"})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appointly_booking_transitions_total",
		Help: "Booking status transitions",
	}, []string{"to"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appointly_notifications_sent_total",
		Help: "Notifications delivered per sink",
	}, []string{"sink", "kind"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appointly_notifications_failed_total",
		Help: "Notification deliveries that returned an error",
	}, []string{"sink", "kind"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointly_notifications_dropped_total",
		Help: "Notifications dropped because the queue was full or closed",
	})

	NotifyQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "appointly_notify_queue_depth",
		Help: "Pending notifications in the in-process queue",
	})
)
