// Package customize implements the dish customization and pricing engine:
// selection state for one customization session, the pricing resolver, the
// pre-persistence validator, and the order-line materializer.
//
// Everything here is pure. Mutators return a new Selection and never touch
// the dish snapshot, so a session can be abandoned at any point with nothing
// to clean up, and resolving the same inputs twice yields identical output.
package customize

import (
	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
)

// Engine errors.
var (
	// ErrUnknownElement is returned when an element ID does not exist on the
	// dish the selection was opened for.
	ErrUnknownElement = &domain.Error{Code: domain.EINVALID, Message: "Optional element does not belong to this dish"}

	// ErrUnknownReplacement is returned when a replacement item is not among
	// the element's replacement options. The prior selection state is left
	// unchanged; this is a data-integrity error, never silently defaulted.
	ErrUnknownReplacement = &domain.Error{Code: domain.EINVALID, Message: "Replacement option does not exist for this element"}
)

// Entry is the selection state for one optional element.
type Entry struct {
	ElementID uuid.UUID

	// Included reports whether the element is currently part of the dish.
	Included bool

	// ReplacementItemID is the chosen stand-in item, zero when the element's
	// own item is kept. Only ever set while Included is true.
	ReplacementItemID uuid.UUID

	// AdjustmentCents is the cached price effect of this entry. It is always
	// derived from the element's additional price and the chosen replacement
	// difference, never mutated independently: 0 when excluded, the
	// additional price when included, additional price plus replacement
	// difference when replaced.
	AdjustmentCents domain.Cents
}

// Selection is the customer's in-progress choices for one dish instance.
// It is a value: mutators copy, so older states remain valid.
type Selection struct {
	DishID  uuid.UUID
	Entries []Entry
}

// Initialize seeds a selection from the dish defaults: one entry per optional
// element, included per IncludedByDefault, no replacement.
func Initialize(dish *domain.CompositeDish) Selection {
	entries := make([]Entry, len(dish.OptionalElements))
	for i, e := range dish.OptionalElements {
		entry := Entry{ElementID: e.ID, Included: e.IncludedByDefault}
		if entry.Included {
			entry.AdjustmentCents = e.AdditionalPriceCents
		}
		entries[i] = entry
	}
	return Selection{DishID: dish.ID, Entries: entries}
}

// Toggle flips inclusion of the element. Toggling always discards any chosen
// replacement, so off-then-on lands back on the element's own item. That
// matches the observed reference behavior and callers must not compensate
// for it.
func Toggle(dish *domain.CompositeDish, sel Selection, elementID uuid.UUID) (Selection, error) {
	elem, ok := dish.Element(elementID)
	if !ok {
		return sel, ErrUnknownElement
	}

	return sel.update(elementID, func(entry Entry) Entry {
		entry.Included = !entry.Included
		entry.ReplacementItemID = uuid.Nil
		if entry.Included {
			entry.AdjustmentCents = elem.AdditionalPriceCents
		} else {
			entry.AdjustmentCents = 0
		}
		return entry
	})
}

// Replace selects a replacement item for the element. Replacing implies
// including: an excluded element is forced back in. Returns
// ErrUnknownReplacement, leaving the selection unchanged, when the item is
// not among the element's replacement options.
func Replace(dish *domain.CompositeDish, sel Selection, elementID, replacementItemID uuid.UUID) (Selection, error) {
	elem, ok := dish.Element(elementID)
	if !ok {
		return sel, ErrUnknownElement
	}

	option, ok := elem.Replacement(replacementItemID)
	if !ok {
		return sel, ErrUnknownReplacement
	}

	return sel.update(elementID, func(entry Entry) Entry {
		entry.Included = true
		entry.ReplacementItemID = option.ItemID
		entry.AdjustmentCents = elem.AdditionalPriceCents + option.PriceDifferenceCents
		return entry
	})
}

// ClearReplacement reverts the element to its own item. Inclusion is
// untouched; the adjustment falls back to the element's additional price
// while included, zero otherwise.
func ClearReplacement(dish *domain.CompositeDish, sel Selection, elementID uuid.UUID) (Selection, error) {
	elem, ok := dish.Element(elementID)
	if !ok {
		return sel, ErrUnknownElement
	}

	return sel.update(elementID, func(entry Entry) Entry {
		entry.ReplacementItemID = uuid.Nil
		if entry.Included {
			entry.AdjustmentCents = elem.AdditionalPriceCents
		} else {
			entry.AdjustmentCents = 0
		}
		return entry
	})
}

// Entry returns the entry for an element ID.
func (s Selection) Entry(elementID uuid.UUID) (Entry, bool) {
	for _, e := range s.Entries {
		if e.ElementID == elementID {
			return e, true
		}
	}
	return Entry{}, false
}

// update applies fn to the matching entry in a copied entry slice.
func (s Selection) update(elementID uuid.UUID, fn func(Entry) Entry) (Selection, error) {
	entries := make([]Entry, len(s.Entries))
	copy(entries, s.Entries)
	for i, e := range entries {
		if e.ElementID == elementID {
			entries[i] = fn(e)
			return Selection{DishID: s.DishID, Entries: entries}, nil
		}
	}
	return s, ErrUnknownElement
}
