package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters for the order lifecycle and billing flow.
type OrderMetrics struct {
	created             *prometheus.CounterVec
	payments            *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	computeDuration     *prometheus.HistogramVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, by discount type applied.",
	}, []string{"discount_type"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_payments_recorded_total",
		Help: "Payments recorded against orders, by resulting payment status.",
	}, []string{"payment_status"})
	transitionsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_rejected_total",
		Help: "Status transitions rejected by the lifecycle rules.",
	}, []string{"from", "to"})
	computeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_bill_compute_seconds",
		Help:    "Duration of bill recomputation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(created, payments, transitionsRejected, computeDuration)
	return &OrderMetrics{
		created:             created,
		payments:            payments,
		transitionsRejected: transitionsRejected,
		computeDuration:     computeDuration,
	}
}

// IncCreated increments the created counter for the given discount type label.
func (m *OrderMetrics) IncCreated(discountType string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(discountType)).Inc()
}

// IncPaymentRecorded increments the payments counter for the resulting status.
func (m *OrderMetrics) IncPaymentRecorded(paymentStatus string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(paymentStatus)).Inc()
}

// IncTransitionRejected increments the rejected-transition counter.
func (m *OrderMetrics) IncTransitionRejected(from, to string) {
	if m == nil || m.transitionsRejected == nil {
		return
	}
	m.transitionsRejected.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveCompute records the duration of one bill recomputation.
func (m *OrderMetrics) ObserveCompute(operation string, duration time.Duration) {
	if m == nil || m.computeDuration == nil {
		return
	}
	m.computeDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
