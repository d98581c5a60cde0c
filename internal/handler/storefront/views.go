package storefront

import (
	"time"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/customize"
	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/service"
)

// View models for the storefront JSON API. Every money field carries both
// the integer cents and a formatted decimal string.

type moneyView struct {
	Cents  int64  `json:"cents"`
	Amount string `json:"amount"`
}

func money(c domain.Cents) moneyView {
	return moneyView{Cents: int64(c), Amount: c.String()}
}

type dishListView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	BasePrice    moneyView `json:"base_price"`
	ImageURL     string    `json:"image_url,omitempty"`
	ElementCount int32     `json:"element_count"`
}

type dishDetailView struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	BasePrice   moneyView           `json:"base_price"`
	ImageURL    string              `json:"image_url,omitempty"`
	Base        []baseComponentView `json:"base_components"`
	Elements    []elementView       `json:"optional_elements"`
}

type baseComponentView struct {
	ItemID   uuid.UUID `json:"item_id"`
	ItemName string    `json:"item_name"`
	Quantity int32     `json:"quantity"`
}

type elementView struct {
	ID                uuid.UUID         `json:"id"`
	ItemID            uuid.UUID         `json:"item_id"`
	ItemName          string            `json:"item_name"`
	IncludedByDefault bool              `json:"included_by_default"`
	AdditionalPrice   moneyView         `json:"additional_price"`
	Type              string            `json:"type"`
	Replacements      []replacementView `json:"replacements,omitempty"`
}

type replacementView struct {
	ID              uuid.UUID `json:"id"`
	ItemID          uuid.UUID `json:"item_id"`
	ItemName        string    `json:"item_name"`
	PriceDifference moneyView `json:"price_difference"`
}

// Dish converts a dish with its full customization graph to its JSON view.
// Exported because the admin catalog endpoints render the same shape.
func Dish(dish *domain.CompositeDish) dishDetailView {
	view := dishDetailView{
		ID:          dish.ID,
		Name:        dish.Name,
		Slug:        dish.Slug,
		Description: dish.Description,
		BasePrice:   money(dish.BasePriceCents),
		ImageURL:    dish.ImageURL,
		Base:        make([]baseComponentView, 0, len(dish.BaseComponents)),
		Elements:    make([]elementView, 0, len(dish.OptionalElements)),
	}
	for _, bc := range dish.BaseComponents {
		view.Base = append(view.Base, baseComponentView{
			ItemID:   bc.ItemID,
			ItemName: bc.ItemName,
			Quantity: bc.Quantity,
		})
	}
	for i := range dish.OptionalElements {
		view.Elements = append(view.Elements, Element(&dish.OptionalElements[i]))
	}
	return view
}

// Element converts one optional element with its replacement options.
func Element(e *domain.OptionalElement) elementView {
	ev := elementView{
		ID:                e.ID,
		ItemID:            e.ItemID,
		ItemName:          e.ItemName,
		IncludedByDefault: e.IncludedByDefault,
		AdditionalPrice:   money(e.AdditionalPriceCents),
		Type:              string(e.Type),
	}
	for i := range e.Replacements {
		ev.Replacements = append(ev.Replacements, Replacement(&e.Replacements[i]))
	}
	return ev
}

// Replacement converts one replacement option.
func Replacement(r *domain.ReplacementOption) replacementView {
	return replacementView{
		ID:              r.ID,
		ItemID:          r.ItemID,
		ItemName:        r.ItemName,
		PriceDifference: money(r.PriceDifferenceCents),
	}
}

type priceLineView struct {
	Label  string    `json:"label"`
	Amount moneyView `json:"amount"`
}

type pricedView struct {
	BasePrice moneyView       `json:"base_price"`
	Lines     []priceLineView `json:"lines"`
	Total     moneyView       `json:"total"`
}

func priced(p customize.PricedSelection) pricedView {
	view := pricedView{
		BasePrice: money(p.BasePriceCents),
		Lines:     make([]priceLineView, 0, len(p.Lines)),
		Total:     money(p.TotalCents),
	}
	for _, l := range p.Lines {
		view.Lines = append(view.Lines, priceLineView{Label: l.Label, Amount: money(l.AmountCents)})
	}
	return view
}

type customizationView struct {
	ElementID           uuid.UUID `json:"element_id"`
	ElementName         string    `json:"element_name"`
	Included            bool      `json:"included"`
	ReplacementItemID   uuid.UUID `json:"replacement_item_id,omitempty"`
	ReplacementItemName string    `json:"replacement_item_name,omitempty"`
	Adjustment          moneyView `json:"adjustment"`
}

func customizations(records []domain.LineCustomization) []customizationView {
	views := make([]customizationView, 0, len(records))
	for _, c := range records {
		views = append(views, customizationView{
			ElementID:           c.ElementID,
			ElementName:         c.ElementName,
			Included:            c.Included,
			ReplacementItemID:   c.ReplacementItemID,
			ReplacementItemName: c.ReplacementItemName,
			Adjustment:          money(c.AdjustmentCents),
		})
	}
	return views
}

type cartLineView struct {
	ID             uuid.UUID           `json:"id"`
	DishID         uuid.UUID           `json:"dish_id"`
	DishName       string              `json:"dish_name"`
	Quantity       int32               `json:"quantity"`
	UnitPrice      moneyView           `json:"unit_price"`
	LineTotal      moneyView           `json:"line_total"`
	Customizations []customizationView `json:"customizations,omitempty"`
}

type cartView struct {
	ID        uuid.UUID      `json:"id"`
	Lines     []cartLineView `json:"lines"`
	Subtotal  moneyView      `json:"subtotal"`
	ItemCount int32          `json:"item_count"`
}

func cart(summary *service.CartSummary) cartView {
	view := cartView{
		ID:        summary.Cart.ID,
		Lines:     make([]cartLineView, 0, len(summary.Lines)),
		Subtotal:  money(summary.SubtotalCents),
		ItemCount: summary.ItemCount,
	}
	for _, l := range summary.Lines {
		view.Lines = append(view.Lines, cartLineView{
			ID:             l.ID,
			DishID:         l.DishID,
			DishName:       l.DishName,
			Quantity:       l.Quantity,
			UnitPrice:      money(l.UnitPriceCents),
			LineTotal:      money(l.LineTotalCents),
			Customizations: customizations(l.Customizations),
		})
	}
	return view
}

type orderLineView struct {
	ID             uuid.UUID           `json:"id"`
	DishID         uuid.UUID           `json:"dish_id"`
	DishName       string              `json:"dish_name"`
	Quantity       int32               `json:"quantity"`
	UnitPrice      moneyView           `json:"unit_price"`
	LineTotal      moneyView           `json:"line_total"`
	Customizations []customizationView `json:"customizations,omitempty"`
}

type orderView struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Type            string          `json:"type"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	TableNumber     string          `json:"table_number,omitempty"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	CustomerNotes   string          `json:"customer_notes,omitempty"`
	Subtotal        moneyView       `json:"subtotal"`
	DeliveryFee     moneyView       `json:"delivery_fee"`
	Total           moneyView       `json:"total"`
	Lines           []orderLineView `json:"lines"`
	CreatedAt       string          `json:"created_at"`
}

// Order converts an order to its public JSON view. Exported because the
// staff and admin handlers render the same shape.
func Order(o *domain.Order) orderView {
	view := orderView{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Type:            string(o.Type),
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		TableNumber:     o.TableNumber,
		DeliveryAddress: o.DeliveryAddress,
		CustomerNotes:   o.CustomerNotes,
		Subtotal:        money(o.SubtotalCents),
		DeliveryFee:     money(o.DeliveryFeeCents),
		Total:           money(o.TotalCents),
		Lines:           make([]orderLineView, 0, len(o.Lines)),
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, l := range o.Lines {
		view.Lines = append(view.Lines, orderLineView{
			ID:             l.ID,
			DishID:         l.DishID,
			DishName:       l.DishName,
			Quantity:       l.Quantity,
			UnitPrice:      money(l.UnitPriceCents),
			LineTotal:      money(l.LineTotalCents),
			Customizations: customizations(l.Customizations),
		})
	}
	return view
}

// Orders maps a slice of orders to views.
func Orders(orders []domain.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, Order(&orders[i]))
	}
	return views
}
