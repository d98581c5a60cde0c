// Package events publishes order and payment lifecycle events for the
// reactive dashboards. The platform only emits; subscription and fan-out to
// clients belong to the external realtime collaborator.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
)

// Subjects for lifecycle events.
const (
	SubjectOrderPlaced        = "orders.placed"
	SubjectOrderStatusChanged = "orders.status_changed"
	SubjectPaymentSubmitted   = "payments.submitted"
	SubjectPaymentReviewed    = "payments.reviewed"
)

// Event type discriminators carried inside payloads.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentSubmitted   = "payment.proof_submitted"
	EventPaymentReviewed    = "payment.reviewed"
)

// OrderEvent is the payload for order lifecycle subjects.
type OrderEvent struct {
	EventType   string             `json:"event_type"`
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	OldStatus   domain.OrderStatus `json:"old_status,omitempty"`
	NewStatus   domain.OrderStatus `json:"new_status"`
	TotalCents  int64              `json:"total_cents"`
	Timestamp   time.Time          `json:"timestamp"`
}

// PaymentEvent is the payload for payment lifecycle subjects.
type PaymentEvent struct {
	EventType string             `json:"event_type"`
	ProofID   uuid.UUID          `json:"proof_id"`
	OrderID   uuid.UUID          `json:"order_id"`
	Status    domain.ProofStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

// Publisher is the event publication boundary.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close()
}

// Noop is a Publisher that drops everything. Used in tests and when no
// broker is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, string, any) error { return nil }

// Close implements Publisher.
func (Noop) Close() {}
