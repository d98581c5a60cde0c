package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Menu engagement
	DishViews       *prometheus.CounterVec
	SelectionPriced *prometheus.CounterVec

	// Cart
	CartCreated  prometheus.Counter
	CartLineAdds *prometheus.CounterVec
	CartValue    prometheus.Histogram

	// Orders
	OrdersPlaced      *prometheus.CounterVec
	OrderValue        prometheus.Histogram
	OrderLineCount    prometheus.Histogram
	OrderTransitions  *prometheus.CounterVec
	CustomizationRows prometheus.Histogram

	// Manual payment verification
	ProofsSubmitted prometheus.Counter
	ProofsReviewed  *prometheus.CounterVec

	// Email delivery
	EmailSent   *prometheus.CounterVec
	EmailFailed *prometheus.CounterVec

	// Event bus
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
}

// Business is the global business metrics instance, initialized in main.
var Business *BusinessMetrics

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "tavola"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		DishViews: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dish_views_total",
				Help:      "Total dish detail views",
			},
			[]string{"dish_slug"},
		),
		SelectionPriced: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "selection_priced_total",
				Help:      "Total customization pricing requests",
			},
			[]string{"result"}, // ok, invalid
		),
		CartCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "carts_created_total",
				Help:      "Total carts created",
			},
		),
		CartLineAdds: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_line_adds_total",
				Help:      "Total cart line additions",
			},
			[]string{"dish_slug"},
		),
		CartValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value_cents",
				Help:      "Cart subtotal at checkout in cents",
				Buckets:   prometheus.ExponentialBuckets(500, 2, 12),
			},
		),
		OrdersPlaced: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_placed_total",
				Help:      "Total orders placed",
			},
			[]string{"order_type"},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_cents",
				Help:      "Order total in cents",
				Buckets:   prometheus.ExponentialBuckets(500, 2, 12),
			},
		),
		OrderLineCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_line_count",
				Help:      "Number of lines per order",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		OrderTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_transitions_total",
				Help:      "Total order status transitions",
			},
			[]string{"from", "to", "role"},
		),
		CustomizationRows: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "customization_rows_per_line",
				Help:      "Customization audit rows recorded per order line",
				Buckets:   []float64{0, 1, 2, 3, 5, 8},
			},
		),
		ProofsSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_proofs_submitted_total",
				Help:      "Total payment proofs submitted",
			},
		),
		ProofsReviewed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_proofs_reviewed_total",
				Help:      "Total payment proof reviews",
			},
			[]string{"outcome"}, // approved, rejected
		),
		EmailSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_sent_total",
				Help:      "Total emails sent",
			},
			[]string{"kind"},
		),
		EmailFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "emails_failed_total",
				Help:      "Total email send failures",
			},
			[]string{"kind"},
		),
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Total events published to the bus",
			},
			[]string{"subject"},
		),
		EventsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_publish_failures_total",
				Help:      "Total event publish failures",
			},
			[]string{"subject"},
		),
	}

	Business = m
	return m
}
