package storefront

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/customize"
	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// selectionInput is the wire form of one element choice. The client sends
// the full desired state for each element it touched; untouched elements
// keep their dish defaults.
type selectionInput struct {
	ElementID         uuid.UUID `json:"element_id" validate:"required"`
	Included          bool      `json:"included"`
	ReplacementItemID uuid.UUID `json:"replacement_item_id"`
}

// buildSelection replays the client's choices over a fresh default selection
// through the engine mutators, so every engine rule (replacement forcing
// inclusion, toggling discarding replacements, unknown IDs rejected) applies
// to API input exactly as it does in a stateful session.
func buildSelection(dish *domain.CompositeDish, inputs []selectionInput) (customize.Selection, error) {
	sel := customize.Initialize(dish)

	for _, in := range inputs {
		entry, ok := sel.Entry(in.ElementID)
		if !ok {
			return sel, customize.ErrUnknownElement
		}

		var err error
		switch {
		case !in.Included:
			if entry.Included {
				sel, err = customize.Toggle(dish, sel, in.ElementID)
			}
		case in.ReplacementItemID != uuid.Nil:
			sel, err = customize.Replace(dish, sel, in.ElementID, in.ReplacementItemID)
		default:
			if !entry.Included {
				sel, err = customize.Toggle(dish, sel, in.ElementID)
			}
		}
		if err != nil {
			return sel, err
		}
	}

	return sel, nil
}

// customizeDefaults prices the dish with every element in its default state.
func customizeDefaults(dish *domain.CompositeDish) customize.PricedSelection {
	return customize.Resolve(dish, customize.Initialize(dish))
}

// priceSelection runs the build, validate, resolve sequence shared by the
// stateless pricing endpoint and the add-to-cart flow, writing either the
// itemized breakdown or the error.
func priceSelection(w http.ResponseWriter, r *http.Request, dish *domain.CompositeDish, inputs []selectionInput) {
	sel, err := buildSelection(dish, inputs)
	if err != nil {
		recordSelectionPriced("invalid")
		handler.Error(w, r, err)
		return
	}

	if err := customize.Validate(dish, sel); err != nil {
		recordSelectionPriced("invalid")
		handler.Error(w, r, err)
		return
	}

	recordSelectionPriced("ok")
	handler.JSON(w, http.StatusOK, map[string]any{
		"pricing": priced(customize.Resolve(dish, sel)),
	})
}

func recordSelectionPriced(result string) {
	if telemetry.Business != nil {
		telemetry.Business.SelectionPriced.WithLabelValues(result).Inc()
	}
}
