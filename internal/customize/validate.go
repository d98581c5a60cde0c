package customize

import (
	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
)

// Validation reason messages, keyed per element in the returned
// ValidationError fields map.
const (
	reasonUnavailable        = "dish is no longer available"
	reasonUnknownElement     = "element no longer exists on this dish"
	reasonMissingElement     = "dish gained an element this selection does not cover"
	reasonUnknownReplacement = "chosen replacement no longer exists for this element"
)

// Validate gates a selection before it becomes a persisted order line.
//
// It rejects selections made stale by catalog edits mid-session, in both
// directions: entries whose element vanished from the dish, elements the
// dish gained that the selection does not cover, and replacements that no
// longer exist. Availability is re-checked here too, closing the race where
// the dish is withdrawn after the session was opened.
//
// Violations are reported as a *domain.ValidationError value, one field per
// offending entry (keyed by element ID, or "dish" for availability), so the
// caller can send the user back to customizing with the problems marked.
func Validate(dish *domain.CompositeDish, sel Selection) error {
	var err error

	if !dish.IsAvailable {
		err = domain.AddFieldError(err, "dish", reasonUnavailable)
	}

	seen := make(map[string]bool, len(sel.Entries))
	for _, entry := range sel.Entries {
		key := entry.ElementID.String()
		seen[key] = true

		elem, ok := dish.Element(entry.ElementID)
		if !ok {
			err = domain.AddFieldError(err, key, reasonUnknownElement)
			continue
		}

		if entry.ReplacementItemID == uuid.Nil {
			continue
		}
		if _, found := elem.Replacement(entry.ReplacementItemID); !found {
			err = domain.AddFieldError(err, key, reasonUnknownReplacement)
		}
	}

	for _, elem := range dish.OptionalElements {
		if !seen[elem.ID.String()] {
			err = domain.AddFieldError(err, elem.ID.String(), reasonMissingElement)
		}
	}

	if err != nil {
		if ve, ok := err.(*domain.ValidationError); ok {
			ve.Op = "customize.validate"
		}
		return err
	}
	return nil
}
