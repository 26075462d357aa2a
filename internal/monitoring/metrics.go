package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks order lifecycle and reconciliation activity.
type OrderMetrics struct {
	ordersCreated *prometheus.CounterVec
	ordersPaid    *prometheus.CounterVec
	ordersExpired *prometheus.CounterVec

	disbursementFailures prometheus.Counter
	disbursementRetries  prometheus.Counter
	disbursementsGivenUp prometheus.Counter

	tickDuration prometheus.Histogram

	poolAvailable *prometheus.GaugeVec
}

func NewOrderMetrics() *OrderMetrics {
	return &OrderMetrics{
		ordersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vpc_backend_orders_created_total",
				Help: "Total number of orders created",
			},
			[]string{"method"},
		),
		ordersPaid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vpc_backend_orders_paid_total",
				Help: "Total number of orders confirmed paid",
			},
			[]string{"method"},
		),
		ordersExpired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vpc_backend_orders_expired_total",
				Help: "Total number of orders expired unpaid",
			},
			[]string{"method"},
		),
		disbursementFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vpc_backend_disbursement_failures_total",
				Help: "Total number of failed VPC disbursement attempts",
			},
		),
		disbursementRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vpc_backend_disbursement_retries_total",
				Help: "Total number of disbursement retries for PAID orders",
			},
		),
		disbursementsGivenUp: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vpc_backend_disbursements_given_up_total",
				Help: "PAID orders whose disbursement exhausted its retry budget",
			},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vpc_backend_reconcile_tick_duration_seconds",
				Help:    "Duration of reconciliation ticks in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		poolAvailable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vpc_backend_pool_available_slots",
				Help: "Available deposit address slots per pool",
			},
			[]string{"pool_key"},
		),
	}
}

func (m *OrderMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.ordersCreated,
		m.ordersPaid,
		m.ordersExpired,
		m.disbursementFailures,
		m.disbursementRetries,
		m.disbursementsGivenUp,
		m.tickDuration,
		m.poolAvailable,
	)
}

func (m *OrderMetrics) RecordOrderCreated(method string) {
	m.ordersCreated.WithLabelValues(method).Inc()
}

func (m *OrderMetrics) RecordOrderPaid(method string) {
	m.ordersPaid.WithLabelValues(method).Inc()
}

func (m *OrderMetrics) RecordOrderExpired(method string) {
	m.ordersExpired.WithLabelValues(method).Inc()
}

func (m *OrderMetrics) RecordDisbursementFailure() {
	m.disbursementFailures.Inc()
}

func (m *OrderMetrics) RecordDisbursementRetry() {
	m.disbursementRetries.Inc()
}

func (m *OrderMetrics) RecordDisbursementGivenUp() {
	m.disbursementsGivenUp.Inc()
}

func (m *OrderMetrics) ObserveTickDuration(seconds float64) {
	m.tickDuration.Observe(seconds)
}

func (m *OrderMetrics) SetPoolAvailable(poolKey string, available int) {
	m.poolAvailable.WithLabelValues(poolKey).Set(float64(available))
}
