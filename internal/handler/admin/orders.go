package admin

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

// OrderHandler serves the admin order dashboard.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new admin order handler.
func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

// List handles GET /admin/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, map[string]any{"orders": storefront.Orders(orders)})
}

// Get handles GET /admin/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.get_order", "invalid order id"))
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, storefront.Order(order))
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted preparing ready out_for_delivery delivered cancelled"`
}

// Transition handles POST /admin/orders/{id}/status
//
// Admins bypass the role ownership rules but not the status machine itself.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handler.Error(w, r, domain.Unauthorized("admin.transition", "authentication required"))
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.transition", "invalid order id"))
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
