package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/events"
)

// OrderStore is the persistence boundary for orders.
type OrderStore interface {
	// CreateOrder persists the order with its lines and customization audit
	// rows and marks the source cart converted, all in one transaction.
	// Returns domain.ErrCartAlreadyConverted when the cart was converted by
	// a concurrent checkout.
	CreateOrder(ctx context.Context, order *domain.Order, cartID uuid.UUID) (*domain.Order, error)

	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)

	// UpdateOrderStatus moves an order from one status to another with an
	// optimistic guard on the expected current status. Returns false when
	// the order was not in the expected status.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error)

	UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error
}

// OrderFilter narrows order listings. Zero fields match everything.
type OrderFilter struct {
	CustomerID uuid.UUID
	Statuses   []domain.OrderStatus
	Types      []domain.OrderType
}

type orderService struct {
	store            OrderStore
	carts            CartStore
	publisher        events.Publisher
	notifier         Notifier
	deliveryFeeCents domain.Cents
	logger           *slog.Logger
}

// Notifier sends customer-facing notifications. Failures are logged, never
// propagated: notifications are best-effort.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error
	SendPaymentResult(ctx context.Context, order *domain.Order, approved bool, note string) error
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(store OrderStore, carts CartStore, publisher events.Publisher, notifier Notifier, deliveryFeeCents domain.Cents, logger *slog.Logger) domain.OrderService {
	return &orderService{
		store:            store,
		carts:            carts,
		publisher:        publisher,
		notifier:         notifier,
		deliveryFeeCents: deliveryFeeCents,
		logger:           logger,
	}
}

// PlaceOrder converts a cart into an order.
//
// Flow: validate fulfillment details, snapshot the cart lines, compute
// totals, generate the order number, persist atomically (which also marks
// the cart converted, making the operation idempotent per cart), then
// publish the placed event and send the confirmation email.
func (s *orderService) PlaceOrder(ctx context.Context, params domain.PlaceOrderParams) (*domain.Order, error) {
	switch params.Type {
	case domain.OrderTypeDineIn:
		if params.TableNumber == "" {
			return nil, domain.ErrMissingTableNumber
		}
	case domain.OrderTypeDelivery:
		if params.DeliveryAddress == "" {
			return nil, domain.ErrMissingAddress
		}
	case domain.OrderTypePickup:
	default:
		return nil, ErrInvalidOrderType
	}

	cart, err := s.carts.GetCartByID(ctx, params.CartID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, ErrCartNotFound
		}
		return nil, domain.Internal(err, "order.place", "failed to load cart")
	}
	if cart.Converted {
		return nil, ErrCartAlreadyConverted
	}

	cartLines, err := s.carts.GetCartLines(ctx, params.CartID)
	if err != nil {
		return nil, domain.Internal(err, "order.place", "failed to load cart lines")
	}
	if len(cartLines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		OrderNumber:     generateOrderNumber(),
		CustomerID:      params.CustomerID,
		CustomerEmail:   params.CustomerEmail,
		Type:            params.Type,
		Status:          domain.OrderStatusPlaced,
		PaymentStatus:   domain.PaymentStatusUnpaid,
		TableNumber:     params.TableNumber,
		DeliveryAddress: params.DeliveryAddress,
		CustomerNotes:   params.CustomerNotes,
	}

	for _, cl := range cartLines {
		line := domain.OrderLine{
			DishID:         cl.DishID,
			DishName:       cl.DishName,
			Quantity:       cl.Quantity,
			UnitPriceCents: cl.UnitPriceCents,
			LineTotalCents: cl.UnitPriceCents * domain.Cents(cl.Quantity),
			Customizations: cl.Customizations,
		}
		order.SubtotalCents += line.LineTotalCents
		order.Lines = append(order.Lines, line)
	}

	if params.Type == domain.OrderTypeDelivery {
		order.DeliveryFeeCents = s.deliveryFeeCents
	}
	order.TotalCents = order.SubtotalCents + order.DeliveryFeeCents

	created, err := s.store.CreateOrder(ctx, order, params.CartID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.SubjectOrderPlaced, events.OrderEvent{
		EventType:   events.EventOrderPlaced,
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		CustomerID:  created.CustomerID,
		NewStatus:   created.Status,
		TotalCents:  int64(created.TotalCents),
		Timestamp:   time.Now().UTC(),
	})

	if err := s.notifier.SendOrderConfirmation(ctx, created); err != nil {
		s.logger.Warn("order confirmation email failed", "order", created.OrderNumber, "error", err)
	}

	return created, nil
}

// GetOrder retrieves an order with lines and customization audit rows.
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListForCustomer returns a customer's orders, newest first.
func (s *orderService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return s.store.ListOrders(ctx, OrderFilter{CustomerID: customerID})
}

// ListForKitchen returns orders the kitchen still has to act on.
func (s *orderService) ListForKitchen(ctx context.Context) ([]domain.Order, error) {
	return s.store.ListOrders(ctx, OrderFilter{
		Statuses: []domain.OrderStatus{
			domain.OrderStatusPlaced,
			domain.OrderStatusAccepted,
			domain.OrderStatusPreparing,
			domain.OrderStatusReady,
		},
	})
}

// ListForDelivery returns delivery orders that are ready or en route.
func (s *orderService) ListForDelivery(ctx context.Context) ([]domain.Order, error) {
	return s.store.ListOrders(ctx, OrderFilter{
		Types: []domain.OrderType{domain.OrderTypeDelivery},
		Statuses: []domain.OrderStatus{
			domain.OrderStatusReady,
			domain.OrderStatusOutForDelivery,
		},
	})
}

// ListAll returns all orders for the admin dashboard.
func (s *orderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.store.ListOrders(ctx, OrderFilter{})
}

// Transition moves an order to a new status on behalf of a principal.
//
// The status machine and role guard live in the domain; this layer adds
// ownership (customers touch only their own orders) and an optimistic
// concurrency guard so two staff members racing on the same order cannot
// both win.
func (s *orderService) Transition(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, principal domain.Principal) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if principal.Role == domain.RoleCustomer && order.CustomerID != principal.UserID {
		return nil, domain.ErrNotOrderOwner
	}

	if err := domain.AuthorizeTransition(order.Status, to, principal.Role); err != nil {
		return nil, err
	}

	moved, err := s.store.UpdateOrderStatus(ctx, orderID, order.Status, to)
	if err != nil {
		return nil, domain.Internal(err, "order.transition", "failed to update order status")
	}
	if !moved {
		return nil, domain.Conflict("order.transition", "order status changed concurrently, reload and retry")
	}

	from := order.Status
	order.Status = to

	s.publish(ctx, events.SubjectOrderStatusChanged, events.OrderEvent{
		EventType:   events.EventOrderStatusChanged,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		OldStatus:   from,
		NewStatus:   to,
		TotalCents:  int64(order.TotalCents),
		Timestamp:   time.Now().UTC(),
	})

	return order, nil
}

func (s *orderService) publish(ctx context.Context, subject string, event any) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}

// generateOrderNumber builds a short human-readable order number:
// ORD-{yyyymmdd}-{4 random base32 chars}.
func generateOrderNumber() string {
	const alphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable anyway; fall back to time
		return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000)
	}
	suffix := make([]byte, 4)
	for i, v := range b {
		suffix[i] = alphabet[int(v)%len(alphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
