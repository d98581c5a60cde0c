package storefront

import (
	"log/slog"
	"net/http"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// MenuHandler serves the public menu and the customization pricing endpoint.
type MenuHandler struct {
	catalog domain.CatalogService
	logger  *slog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(catalog domain.CatalogService, logger *slog.Logger) *MenuHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuHandler{catalog: catalog, logger: logger}
}

// List handles GET /menu
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.catalog.ListAvailable(r.Context())
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	views := make([]dishListView, 0, len(dishes))
	for _, d := range dishes {
		views = append(views, dishListView{
			ID:           d.ID,
			Name:         d.Name,
			Slug:         d.Slug,
			Description:  d.Description,
			BasePrice:    money(d.BasePriceCents),
			ImageURL:     d.ImageURL,
			ElementCount: d.ElementCount,
		})
	}

	handler.JSON(w, http.StatusOK, map[string]any{"dishes": views})
}

// Detail handles GET /menu/{slug}
//
// The response carries the full customization graph plus the default
// selection already priced, so a client can render the customization screen
// from this one call.
func (h *MenuHandler) Detail(w http.ResponseWriter, r *http.Request) {
	dish, err := h.catalog.LoadBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.DishViews.WithLabelValues(dish.Slug).Inc()
	}

	sel := customizeDefaults(dish)
	handler.JSON(w, http.StatusOK, map[string]any{
		"dish":    Dish(dish),
		"pricing": priced(sel),
	})
}

// priceRequest is the payload for pricing a selection.
type priceRequest struct {
	Selections []selectionInput `json:"selections" validate:"dive"`
}

// Price handles POST /menu/{slug}/price
//
// Stateless pricing: the client sends its element choices, the server
// replays them through the engine and returns the itemized breakdown, or the
// per-element validation problems when catalog edits invalidated the
// selection mid-session.
func (h *MenuHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	dish, err := h.catalog.LoadBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	priceSelection(w, r, dish, req.Selections)
}
