package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ORDER DOMAIN TYPES
// =============================================================================

// Role identifies which actor class a principal belongs to.
// Authentication itself is delegated to the gateway; handlers receive the
// already-verified role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWaiter   Role = "waiter"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleWaiter, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// OrderType distinguishes fulfillment flows.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusAccepted       OrderStatus = "accepted"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// PaymentStatus tracks manual payment verification on an order.
// The platform records proof of payment; it never processes payment.
type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "unpaid"
	PaymentStatusSubmitted PaymentStatus = "proof_submitted"
	PaymentStatusVerified  PaymentStatus = "verified"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// Order is one placed order with its priced lines.
type Order struct {
	ID            uuid.UUID
	OrderNumber   string
	CustomerID    uuid.UUID
	CustomerEmail string
	Type          OrderType
	Status        OrderStatus
	PaymentStatus PaymentStatus

	TableNumber     string // dine_in only
	DeliveryAddress string // delivery only
	CustomerNotes   string

	SubtotalCents    Cents
	DeliveryFeeCents Cents
	TotalCents       Cents

	Lines []OrderLine

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLine is one customized dish within an order. The customization
// collapses into a single unit price; the audit rows preserve how that price
// came to be. Lines are immutable history, decoupled from later catalog edits.
type OrderLine struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	DishID         uuid.UUID
	DishName       string
	Quantity       int32
	UnitPriceCents Cents
	LineTotalCents Cents

	Customizations []LineCustomization
}

// LineCustomization is one audit row for an optional element whose final
// state differed from the dish default: included when not default, excluded
// when default, or replaced.
type LineCustomization struct {
	ID                  uuid.UUID
	ElementID           uuid.UUID
	ElementName         string
	Included            bool
	ReplacementItemID   uuid.UUID // zero UUID when no replacement
	ReplacementItemName string
	AdjustmentCents     Cents
}

// =============================================================================
// STATUS MACHINE
// =============================================================================

// orderTransitions maps each status to the set of statuses it may move to.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:       {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusReady},
	OrderStatusReady:          {OrderStatusOutForDelivery, OrderStatusDelivered},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      nil,
	OrderStatusCancelled:      nil,
}

// statusOwners maps each target status to the roles allowed to move an order
// into it. Admin is implicitly allowed everywhere.
var statusOwners = map[OrderStatus][]Role{
	OrderStatusAccepted:       {RoleWaiter},
	OrderStatusPreparing:      {RoleWaiter},
	OrderStatusReady:          {RoleWaiter},
	OrderStatusOutForDelivery: {RoleDriver},
	OrderStatusDelivered:      {RoleWaiter, RoleDriver},
	OrderStatusCancelled:      {RoleCustomer, RoleWaiter},
}

// CanTransition reports whether an order may move from one status to another,
// ignoring roles.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AuthorizeTransition checks both the status machine and the acting role.
// Customers may only cancel their own still-placed orders; kitchen states
// belong to waiters and delivery states to drivers.
func AuthorizeTransition(from, to OrderStatus, role Role) error {
	if !CanTransition(from, to) {
		return Errorf(ECONFLICT, "order.transition", "cannot move order from %s to %s", from, to)
	}
	if role == RoleAdmin {
		return nil
	}
	if role == RoleCustomer && !(from == OrderStatusPlaced && to == OrderStatusCancelled) {
		return Forbidden("order.transition", "customers may only cancel orders that have not been accepted")
	}
	for _, allowed := range statusOwners[to] {
		if allowed == role {
			return nil
		}
	}
	return Forbidden("order.transition", "role not permitted to perform this transition")
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// =============================================================================
// SERVICE INTERFACE
// =============================================================================

// OrderService provides business logic for order lifecycle operations.
type OrderService interface {
	// PlaceOrder converts a cart into an order in one transaction. Idempotent
	// per cart: a cart already converted returns ErrCartAlreadyConverted.
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error)

	// GetOrder retrieves an order with lines and customization audit rows.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)

	// ListForCustomer returns a customer's orders, newest first.
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error)

	// ListForKitchen returns orders the kitchen still has to act on.
	ListForKitchen(ctx context.Context) ([]Order, error)

	// ListForDelivery returns delivery orders that are ready or en route.
	ListForDelivery(ctx context.Context) ([]Order, error)

	// ListAll returns all orders for the admin dashboard.
	ListAll(ctx context.Context) ([]Order, error)

	// Transition moves an order to a new status on behalf of a principal,
	// enforcing the role-guarded status machine.
	Transition(ctx context.Context, orderID uuid.UUID, to OrderStatus, principal Principal) (*Order, error)
}

// Principal is the already-authenticated actor on a request, as asserted by
// the external auth gateway.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// PlaceOrderParams contains parameters for converting a cart into an order.
type PlaceOrderParams struct {
	CartID          uuid.UUID
	CustomerID      uuid.UUID
	CustomerEmail   string
	Type            OrderType
	TableNumber     string
	DeliveryAddress string
	CustomerNotes   string
}

// =============================================================================
// DOMAIN ERRORS
// =============================================================================

// Order-related domain errors.
var (
	ErrOrderNotFound        = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart            = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrCartAlreadyConverted = &Error{Code: ECONFLICT, Message: "Cart already converted to order"}
	ErrMissingTableNumber   = &Error{Code: EINVALID, Message: "Table number required for dine-in orders"}
	ErrMissingAddress       = &Error{Code: EINVALID, Message: "Delivery address required for delivery orders"}
	ErrNotOrderOwner        = &Error{Code: EFORBIDDEN, Message: "Order belongs to a different customer"}
)
