package customize

import (
	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
)

// OrderLineDraft is the finalized, ready-to-persist representation of one
// customized dish. The whole customization collapses into a single unit
// price; the audit records preserve every non-default choice for later
// redisplay. Producing a draft has no side effects; persistence belongs to
// the order service.
type OrderLineDraft struct {
	DishID         uuid.UUID
	DishName       string
	UnitPriceCents domain.Cents
	Customizations []domain.LineCustomization
}

// Materialize converts a validated, priced selection into an order-line
// draft. One audit record is emitted per optional element left in a
// non-default state: included when not default, excluded when default, or
// carrying a replacement.
//
// Callers must run Validate first; Materialize assumes every entry resolves
// against the dish.
func Materialize(dish *domain.CompositeDish, sel Selection, priced PricedSelection) OrderLineDraft {
	draft := OrderLineDraft{
		DishID:         dish.ID,
		DishName:       dish.Name,
		UnitPriceCents: priced.TotalCents,
	}

	for _, elem := range dish.OptionalElements {
		entry, ok := sel.Entry(elem.ID)
		if !ok {
			continue
		}

		defaultState := entry.Included == elem.IncludedByDefault && entry.ReplacementItemID == uuid.Nil
		if defaultState {
			continue
		}

		record := domain.LineCustomization{
			ElementID:       elem.ID,
			ElementName:     elem.ItemName,
			Included:        entry.Included,
			AdjustmentCents: entry.AdjustmentCents,
		}
		if entry.ReplacementItemID != uuid.Nil {
			record.ReplacementItemID = entry.ReplacementItemID
			if option, found := elem.Replacement(entry.ReplacementItemID); found {
				record.ReplacementItemName = option.ItemName
			}
		}
		draft.Customizations = append(draft.Customizations, record)
	}

	return draft
}
