package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RegistrationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "registrations_created_total", Help: "Total registrations created"},
	)
	QRAllocations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "qr_allocations_total", Help: "Total successful QR code allocations"},
	)
	QRNoCapacity = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "qr_no_capacity_total", Help: "Total allocations rejected for lack of capacity"},
	)
	Verifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "payment_verifications_total", Help: "Total payment verification decisions"},
		[]string{"decision"},
	)
	LeaksDetected = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "leaks_detected_total", Help: "Total ordering violations flagged by the monitor"},
	)
	ProcessedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outbox_processed_total", Help: "Total processed outbox events"},
	)
	FailedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outbox_failed_total", Help: "Total failed outbox events"},
	)
	DLQEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "outbox_dlq_total", Help: "Total events inserted into DLQ"},
	)
)

func Register() {
	prometheus.MustRegister(
		RegistrationsCreated, QRAllocations, QRNoCapacity, Verifications,
		LeaksDetected, ProcessedEvents, FailedEvents, DLQEvents,
	)
}
