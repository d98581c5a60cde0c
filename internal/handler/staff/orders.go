// Package staff exposes the kitchen and delivery queues plus order status
// transitions for waiters and drivers.
package staff

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/handler/storefront"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// OrderHandler serves the staff order queues.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new staff order handler.
func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

// Kitchen handles GET /staff/kitchen
//
// Orders the kitchen still has to act on, oldest first.
func (h *OrderHandler) Kitchen(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListForKitchen(r.Context())
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]any{"orders": storefront.Orders(orders)})
}

// Delivery handles GET /staff/delivery
//
// Delivery orders that are ready to go out or already en route.
func (h *OrderHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListForDelivery(r.Context())
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]any{"orders": storefront.Orders(orders)})
}

// transitionRequest moves an order to a new status.
type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted preparing ready out_for_delivery delivered cancelled"`
}

// Transition handles POST /staff/orders/{id}/status
//
// The status machine decides which role may perform which move; this
// handler only carries the principal through.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handler.Error(w, r, domain.Unauthorized("staff.transition", "authentication required"))
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("staff.transition", "invalid order id"))
		return
	}

	var req transitionRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	current, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	from := current.Status

	order, err := h.orders.Transition(r.Context(), orderID, domain.OrderStatus(req.Status), principal)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.OrderTransitions.
			WithLabelValues(string(from), string(order.Status), string(principal.Role)).Inc()
	}

	handler.JSON(w, http.StatusOK, storefront.Order(order))
}
