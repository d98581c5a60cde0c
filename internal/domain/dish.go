package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// ElementType tags what kind of part an optional element is.
// This is a free-form classification for menu grouping, not an exhaustive set.
type ElementType string

const (
	ElementTypeDrink   ElementType = "drink"
	ElementTypeSide    ElementType = "side"
	ElementTypeBread   ElementType = "bread"
	ElementTypeSauce   ElementType = "sauce"
	ElementTypeDessert ElementType = "dessert"
	ElementTypeOther   ElementType = "other"
)

// MenuItem is an atomic ingredient or product. Dishes assemble them: base
// components, optional elements, and replacement options all reference a
// menu item by ID and display its name.
type MenuItem struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompositeDish is a purchasable menu item assembled from a fixed base plus
// customer-selectable optional parts. Instances returned by the catalog are
// stable snapshots: later admin edits never mutate a loaded dish.
type CompositeDish struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Description    string
	BasePriceCents Cents
	IsAvailable    bool
	ImageURL       string

	BaseComponents   []BaseComponent
	OptionalElements []OptionalElement

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseComponent is a mandatory part of a composite dish. It carries no price
// effect beyond its inclusion in the dish base price and is not subject to
// selection logic.
type BaseComponent struct {
	ID       uuid.UUID
	ItemID   uuid.UUID
	ItemName string
	Quantity int32
}

// OptionalElement is a customizable part of a composite dish. It may be
// included or excluded, and when included its referenced item may be swapped
// for one of its replacement options.
type OptionalElement struct {
	ID                   uuid.UUID
	ItemID               uuid.UUID
	ItemName             string
	IncludedByDefault    bool
	AdditionalPriceCents Cents // signed; a discount element is negative
	Type                 ElementType

	Replacements []ReplacementOption
}

// ReplacementOption is an alternative item that may stand in for an optional
// element's default item. PriceDifferenceCents is relative to the element's
// AdditionalPriceCents, not to zero.
type ReplacementOption struct {
	ID                   uuid.UUID
	ItemID               uuid.UUID
	ItemName             string
	PriceDifferenceCents Cents
}

// Replacement looks up a replacement option on the element by the replacement
// item ID. Returns false when no option references that item.
func (e *OptionalElement) Replacement(itemID uuid.UUID) (ReplacementOption, bool) {
	for _, r := range e.Replacements {
		if r.ItemID == itemID {
			return r, true
		}
	}
	return ReplacementOption{}, false
}

// Element looks up an optional element on the dish by element ID.
func (d *CompositeDish) Element(elementID uuid.UUID) (OptionalElement, bool) {
	for _, e := range d.OptionalElements {
		if e.ID == elementID {
			return e, true
		}
	}
	return OptionalElement{}, false
}

// DishListItem represents a dish in a public menu listing with minimal info.
type DishListItem struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Description    string
	BasePriceCents Cents
	ImageURL       string
	ElementCount   int32
}

// =============================================================================
// SERVICE INTERFACE
// =============================================================================

// CatalogService provides access to the composite-dish catalog.
type CatalogService interface {
	// Load returns a stable snapshot of a dish with its full element and
	// replacement graph. Returns ErrDishNotFound when the dish does not exist
	// or is currently unavailable.
	Load(ctx context.Context, dishID uuid.UUID) (*CompositeDish, error)

	// LoadBySlug is Load keyed by the public menu slug.
	LoadBySlug(ctx context.Context, slug string) (*CompositeDish, error)

	// ListAvailable returns all available dishes for public menu display.
	ListAvailable(ctx context.Context) ([]DishListItem, error)

	// ---------------------------------------------------------------------
	// Admin operations
	// ---------------------------------------------------------------------

	// CreateMenuItem registers an atomic item for dishes to reference.
	CreateMenuItem(ctx context.Context, name string) (*MenuItem, error)

	// ListMenuItems returns every menu item, ordered by name.
	ListMenuItems(ctx context.Context) ([]MenuItem, error)

	// GetDish retrieves a dish by ID regardless of availability.
	GetDish(ctx context.Context, dishID uuid.UUID) (*CompositeDish, error)

	// CreateDish creates a new composite dish.
	CreateDish(ctx context.Context, params CreateDishParams) (*CompositeDish, error)

	// UpdateDish updates dish attributes. Nil pointer fields are unchanged.
	UpdateDish(ctx context.Context, dishID uuid.UUID, params UpdateDishParams) error

	// AddElement attaches an optional element to a dish.
	AddElement(ctx context.Context, params AddElementParams) (*OptionalElement, error)

	// RemoveElement detaches an optional element and its replacement options.
	RemoveElement(ctx context.Context, dishID, elementID uuid.UUID) error

	// AddReplacement attaches a replacement option to an element. Rejects
	// options whose item is the element's own referenced item.
	AddReplacement(ctx context.Context, params AddReplacementParams) (*ReplacementOption, error)

	// RemoveReplacement detaches a replacement option from an element.
	RemoveReplacement(ctx context.Context, elementID, replacementID uuid.UUID) error
}

// =============================================================================
// PARAMETER TYPES
// =============================================================================

// CreateDishParams contains parameters for creating a composite dish.
type CreateDishParams struct {
	Name           string
	Slug           string
	Description    string
	BasePriceCents Cents
	IsAvailable    bool
	ImageURL       string
	BaseComponents []CreateBaseComponentParams
}

// CreateBaseComponentParams describes one mandatory part of a new dish.
type CreateBaseComponentParams struct {
	ItemID   uuid.UUID
	Quantity int32
}

// UpdateDishParams contains parameters for updating a dish.
// Pointer fields indicate optional updates (nil = no change).
type UpdateDishParams struct {
	Name           *string
	Description    *string
	BasePriceCents *Cents
	IsAvailable    *bool
	ImageURL       *string
}

// AddElementParams contains parameters for attaching an optional element.
type AddElementParams struct {
	DishID               uuid.UUID
	ItemID               uuid.UUID
	IncludedByDefault    bool
	AdditionalPriceCents Cents
	Type                 ElementType
}

// AddReplacementParams contains parameters for attaching a replacement option.
type AddReplacementParams struct {
	ElementID            uuid.UUID
	ItemID               uuid.UUID
	PriceDifferenceCents Cents
}

// =============================================================================
// DOMAIN ERRORS
// =============================================================================

// Catalog-specific errors.
var (
	ErrDishNotFound        = &Error{Code: ENOTFOUND, Message: "Dish not found"}
	ErrDishUnavailable     = &Error{Code: ENOTFOUND, Message: "Dish is currently unavailable"}
	ErrElementNotFound     = &Error{Code: ENOTFOUND, Message: "Optional element not found"}
	ErrReplacementNotFound = &Error{Code: ENOTFOUND, Message: "Replacement option not found"}
	ErrItemNotFound        = &Error{Code: ENOTFOUND, Message: "Menu item not found"}

	ErrDuplicateDishSlug = &Error{Code: ECONFLICT, Message: "Dish slug already exists"}
	ErrSelfReplacement   = &Error{Code: EINVALID, Message: "Replacement cannot reference the element's own item"}
	ErrInvalidPrice      = &Error{Code: EINVALID, Message: "Base price must not be negative"}
)
