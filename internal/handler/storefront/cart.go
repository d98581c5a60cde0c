package storefront

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/cookie"
	"github.com/tavolaworks/tavola/internal/customize"
	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/service"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// cartCookieMaxAge keeps an abandoned cart recoverable for a week.
const cartCookieMaxAge = 7 * 24 * 60 * 60

// CartHandler manages the anonymous session cart. The cart is bound to a
// token in an HttpOnly cookie; no login is needed until checkout.
type CartHandler struct {
	carts   service.CartService
	catalog domain.CatalogService
	cookies *cookie.Config
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, catalog domain.CatalogService, cookies *cookie.Config, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{carts: carts, catalog: catalog, cookies: cookies, logger: logger}
}

// resolveCart finds or creates the cart for this session and refreshes the
// cookie when a new token was issued.
func (h *CartHandler) resolveCart(w http.ResponseWriter, r *http.Request) (*service.Cart, error) {
	token := cookie.Get(r, cookie.CartCookieName)

	cart, newToken, err := h.carts.GetOrCreateCart(r.Context(), token)
	if err != nil {
		return nil, err
	}

	if newToken != token {
		h.cookies.SetSession(w, cookie.CartCookieName, newToken, cartCookieMaxAge)
		if telemetry.Business != nil {
			telemetry.Business.CartCreated.Inc()
		}
	}
	return cart, nil
}

// Get handles GET /cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.resolveCart(w, r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	summary, err := h.carts.GetCartSummary(r.Context(), c.ID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, cart(summary))
}

// addLineRequest adds one customized dish to the cart.
type addLineRequest struct {
	DishID     uuid.UUID        `json:"dish_id" validate:"required"`
	Quantity   int32            `json:"quantity" validate:"required,min=1"`
	Selections []selectionInput `json:"selections" validate:"dive"`
}

// AddLine handles POST /cart/lines
//
// The customization is finalized here: the selection is replayed, validated
// against the live catalog, priced, and collapsed into a draft line. Catalog
// edits after this point do not touch the stored line.
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	dish, err := h.catalog.Load(r.Context(), req.DishID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	sel, err := buildSelection(dish, req.Selections)
	if err != nil {
		handler.Error(w, r, err)
		return
	}
	if err := customize.Validate(dish, sel); err != nil {
		handler.Error(w, r, err)
		return
	}

	draft := customize.Materialize(dish, sel, customize.Resolve(dish, sel))

	c, err := h.resolveCart(w, r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	summary, err := h.carts.AddLine(r.Context(), c.ID, draft, req.Quantity)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CartLineAdds.WithLabelValues(dish.Slug).Inc()
		telemetry.Business.CartValue.Observe(float64(summary.SubtotalCents) / 100)
	}

	handler.JSON(w, http.StatusCreated, cart(summary))
}

// updateLineRequest changes a line's quantity. Zero removes the line.
type updateLineRequest struct {
	Quantity int32 `json:"quantity" validate:"min=0"`
}

// UpdateLine handles PATCH /cart/lines/{id}
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("cart.update_line", "invalid cart line id"))
		return
	}

	var req updateLineRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	c, err := h.resolveCart(w, r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	summary, err := h.carts.UpdateLineQuantity(r.Context(), c.ID, lineID, req.Quantity)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, cart(summary))
}

// RemoveLine handles DELETE /cart/lines/{id}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("cart.remove_line", "invalid cart line id"))
		return
	}

	c, err := h.resolveCart(w, r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	summary, err := h.carts.RemoveLine(r.Context(), c.ID, lineID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, cart(summary))
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, err := h.resolveCart(w, r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	if err := h.carts.ClearCart(r.Context(), c.ID); err != nil {
		handler.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
