package storefront

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/cookie"
	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/service"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// OrderHandler exposes checkout and the customer's own orders.
type OrderHandler struct {
	orders  domain.OrderService
	carts   service.CartService
	cookies *cookie.Config
	logger  *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders domain.OrderService, carts service.CartService, cookies *cookie.Config, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{orders: orders, carts: carts, cookies: cookies, logger: logger}
}

// checkoutRequest converts the session cart into an order.
type checkoutRequest struct {
	Type            string `json:"type" validate:"required,oneof=dine_in pickup delivery"`
	TableNumber     string `json:"table_number" validate:"max=20"`
	DeliveryAddress string `json:"delivery_address" validate:"max=500"`
	CustomerNotes   string `json:"customer_notes" validate:"max=1000"`
	CartID          string `json:"cart_id"`
}

// Checkout handles POST /checkout
//
// Requires an authenticated customer. The cart comes from the session
// cookie; clients that manage carts themselves may pass cart_id explicitly.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handler.Error(w, r, domain.Unauthorized("order.checkout", "sign in to place an order"))
		return
	}

	var req checkoutRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	cartID, err := h.resolveCartID(r, req.CartID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), domain.PlaceOrderParams{
		CartID:          cartID,
		CustomerID:      principal.UserID,
		CustomerEmail:   principal.Email,
		Type:            domain.OrderType(req.Type),
		TableNumber:     req.TableNumber,
		DeliveryAddress: req.DeliveryAddress,
		CustomerNotes:   req.CustomerNotes,
	})
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	// The cart is converted; drop the session so the next visit starts fresh.
	h.cookies.ClearSession(w, cookie.CartCookieName)

	if telemetry.Business != nil {
		telemetry.Business.OrdersPlaced.WithLabelValues(string(order.Type)).Inc()
		telemetry.Business.OrderValue.Observe(float64(order.TotalCents) / 100)
		telemetry.Business.OrderLineCount.Observe(float64(len(order.Lines)))
		rows := 0
		for _, l := range order.Lines {
			rows += len(l.Customizations)
		}
		telemetry.Business.CustomizationRows.Observe(float64(rows))
	}

	handler.JSON(w, http.StatusCreated, Order(order))
}

// resolveCartID picks the explicit cart over the cookie-bound one.
func (h *OrderHandler) resolveCartID(r *http.Request, explicit string) (uuid.UUID, error) {
	if explicit != "" {
		id, err := uuid.Parse(explicit)
		if err != nil {
			return uuid.Nil, domain.Invalid("order.checkout", "invalid cart id")
		}
		return id, nil
	}

	cart, err := h.carts.GetCartByToken(r.Context(), cookie.Get(r, cookie.CartCookieName))
	if err != nil {
		return uuid.Nil, err
	}
	return cart.ID, nil
}

// List handles GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handler.Error(w, r, domain.Unauthorized("order.list", "sign in to view orders"))
		return
	}

	orders, err := h.orders.ListForCustomer(r.Context(), principal.UserID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]any{"orders": Orders(orders)})
}

// Get handles GET /orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.ownedOrder(r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, Order(order))
}

// Cancel handles POST /orders/{id}/cancel
//
// Customers may cancel only while the order is still placed; the status
// machine enforces that.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handler.Error(w, r, domain.Unauthorized("order.cancel", "sign in to cancel an order"))
		return
	}

	order, err := h.ownedOrder(r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	updated, err := h.orders.Transition(r.Context(), order.ID, domain.OrderStatusCancelled, principal)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, Order(updated))
}

// ownedOrder loads the order in the path and checks it belongs to the
// requesting customer. Admins see every order.
func (h *OrderHandler) ownedOrder(r *http.Request) (*domain.Order, error) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		return nil, domain.Unauthorized("order.get", "sign in to view orders")
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, domain.Invalid("order.get", "invalid order id")
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		return nil, err
	}

	if principal.Role != domain.RoleAdmin && order.CustomerID != principal.UserID {
		return nil, domain.ErrNotOrderOwner
	}
	return order, nil
}
