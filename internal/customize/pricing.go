package customize

import (
	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
)

// PriceLine is one itemized adjustment on a priced selection.
type PriceLine struct {
	Label       string
	AmountCents domain.Cents
}

// PricedSelection is the resolved price of a selection: the dish base price,
// the itemized non-zero adjustments in dish element order, and the total.
type PricedSelection struct {
	BasePriceCents domain.Cents
	Lines          []PriceLine
	TotalCents     domain.Cents
}

// Resolve folds a selection over its dish into a priced selection.
//
// The total is the base price plus the adjustment of every included entry.
// A line is emitted per included entry with a non-zero adjustment, labeled
// with the active replacement item's name when one is chosen, else with the
// element's own item name. Resolution is deterministic: same dish and
// selection in, bit-identical result out.
func Resolve(dish *domain.CompositeDish, sel Selection) PricedSelection {
	priced := PricedSelection{
		BasePriceCents: dish.BasePriceCents,
		TotalCents:     dish.BasePriceCents,
	}

	for _, elem := range dish.OptionalElements {
		entry, ok := sel.Entry(elem.ID)
		if !ok || !entry.Included {
			continue
		}

		priced.TotalCents += entry.AdjustmentCents
		if entry.AdjustmentCents == 0 {
			continue
		}

		label := elem.ItemName
		if entry.ReplacementItemID != uuid.Nil {
			if option, found := elem.Replacement(entry.ReplacementItemID); found {
				label = option.ItemName
			}
		}
		priced.Lines = append(priced.Lines, PriceLine{Label: label, AmountCents: entry.AdjustmentCents})
	}

	return priced
}
