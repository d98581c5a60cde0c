// Package admin exposes catalog management, the full order dashboard, and
// payment proof review. Every route in here sits behind the admin role guard.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/handler/storefront"
)

// DishHandler manages the composite-dish catalog.
type DishHandler struct {
	catalog domain.CatalogService
	logger  *slog.Logger
}

// NewDishHandler creates a new admin dish handler.
func NewDishHandler(catalog domain.CatalogService, logger *slog.Logger) *DishHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DishHandler{catalog: catalog, logger: logger}
}

type baseComponentInput struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int32     `json:"quantity" validate:"required,min=1"`
}

// createDishRequest creates a dish. Money fields are decimal strings,
// e.g. "12.50".
type createDishRequest struct {
	Name           string               `json:"name" validate:"required,max=200"`
	Slug           string               `json:"slug" validate:"required,max=100"`
	Description    string               `json:"description" validate:"max=2000"`
	BasePrice      string               `json:"base_price" validate:"required"`
	IsAvailable    bool                 `json:"is_available"`
	ImageURL       string               `json:"image_url" validate:"omitempty,url"`
	BaseComponents []baseComponentInput `json:"base_components" validate:"dive"`
}

// Create handles POST /admin/dishes
func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDishRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	basePrice, err := domain.ParseAmount(req.BasePrice)
	if err != nil {
		handler.Error(w, r, domain.NewValidationError("admin.create_dish", "base_price", "must be a decimal amount"))
		return
	}

	params := domain.CreateDishParams{
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		BasePriceCents: basePrice,
		IsAvailable:    req.IsAvailable,
		ImageURL:       req.ImageURL,
	}
	for _, bc := range req.BaseComponents {
		params.BaseComponents = append(params.BaseComponents, domain.CreateBaseComponentParams{
			ItemID:   bc.ItemID,
			Quantity: bc.Quantity,
		})
	}

	dish, err := h.catalog.CreateDish(r.Context(), params)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, storefront.Dish(dish))
}

// Get handles GET /admin/dishes/{id}
//
// Unlike the public menu, unavailable dishes are visible here.
func (h *DishHandler) Get(w http.ResponseWriter, r *http.Request) {
	dishID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.get_dish", "invalid dish id"))
		return
	}

	dish, err := h.catalog.GetDish(r.Context(), dishID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, storefront.Dish(dish))
}

// updateDishRequest carries partial dish updates. Absent fields are left
// unchanged.
type updateDishRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	BasePrice   *string `json:"base_price"`
	IsAvailable *bool   `json:"is_available"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// Update handles PATCH /admin/dishes/{id}
func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	dishID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.update_dish", "invalid dish id"))
		return
	}

	var req updateDishRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	params := domain.UpdateDishParams{
		Name:        req.Name,
		Description: req.Description,
		IsAvailable: req.IsAvailable,
		ImageURL:    req.ImageURL,
	}
	if req.BasePrice != nil {
		basePrice, err := domain.ParseAmount(*req.BasePrice)
		if err != nil {
			handler.Error(w, r, domain.NewValidationError("admin.update_dish", "base_price", "must be a decimal amount"))
			return
		}
		params.BasePriceCents = &basePrice
	}

	if err := h.catalog.UpdateDish(r.Context(), dishID, params); err != nil {
		handler.Error(w, r, err)
		return
	}

	dish, err := h.catalog.GetDish(r.Context(), dishID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, storefront.Dish(dish))
}

// addElementRequest attaches an optional element to a dish.
type addElementRequest struct {
	ItemID            uuid.UUID `json:"item_id" validate:"required"`
	IncludedByDefault bool      `json:"included_by_default"`
	AdditionalPrice   string    `json:"additional_price" validate:"required"`
	Type              string    `json:"type" validate:"required,oneof=drink side bread sauce dessert other"`
}

// AddElement handles POST /admin/dishes/{id}/elements
func (h *DishHandler) AddElement(w http.ResponseWriter, r *http.Request) {
	dishID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.add_element", "invalid dish id"))
		return
	}

	var req addElementRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	// Signed on purpose; an element priced below zero acts as a discount.
	additional, err := domain.ParseAmount(req.AdditionalPrice)
	if err != nil {
		handler.Error(w, r, domain.NewValidationError("admin.add_element", "additional_price", "must be a decimal amount"))
		return
	}

	element, err := h.catalog.AddElement(r.Context(), domain.AddElementParams{
		DishID:               dishID,
		ItemID:               req.ItemID,
		IncludedByDefault:    req.IncludedByDefault,
		AdditionalPriceCents: additional,
		Type:                 domain.ElementType(req.Type),
	})
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, storefront.Element(element))
}

// RemoveElement handles DELETE /admin/dishes/{id}/elements/{element_id}
func (h *DishHandler) RemoveElement(w http.ResponseWriter, r *http.Request) {
	dishID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.remove_element", "invalid dish id"))
		return
	}
	elementID, err := uuid.Parse(r.PathValue("element_id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.remove_element", "invalid element id"))
		return
	}

	if err := h.catalog.RemoveElement(r.Context(), dishID, elementID); err != nil {
		handler.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// addReplacementRequest attaches a replacement option to an element.
type addReplacementRequest struct {
	ItemID          uuid.UUID `json:"item_id" validate:"required"`
	PriceDifference string    `json:"price_difference" validate:"required"`
}

// AddReplacement handles POST /admin/elements/{id}/replacements
func (h *DishHandler) AddReplacement(w http.ResponseWriter, r *http.Request) {
	elementID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.add_replacement", "invalid element id"))
		return
	}

	var req addReplacementRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	diff, err := domain.ParseAmount(req.PriceDifference)
	if err != nil {
		handler.Error(w, r, domain.NewValidationError("admin.add_replacement", "price_difference", "must be a decimal amount"))
		return
	}

	replacement, err := h.catalog.AddReplacement(r.Context(), domain.AddReplacementParams{
		ElementID:            elementID,
		ItemID:               req.ItemID,
		PriceDifferenceCents: diff,
	})
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, storefront.Replacement(replacement))
}

// RemoveReplacement handles DELETE /admin/elements/{id}/replacements/{replacement_id}
func (h *DishHandler) RemoveReplacement(w http.ResponseWriter, r *http.Request) {
	elementID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.remove_replacement", "invalid element id"))
		return
	}
	replacementID, err := uuid.Parse(r.PathValue("replacement_id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.remove_replacement", "invalid replacement id"))
		return
	}

	if err := h.catalog.RemoveReplacement(r.Context(), elementID, replacementID); err != nil {
		handler.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
