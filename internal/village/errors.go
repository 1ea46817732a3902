package village

import "errors"

// Store error taxonomy. Callers match with errors.Is; messages carry the
// offending field or id via fmt.Errorf("%w: ...") wrapping.
var (
	// ErrValidation covers malformed or empty required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers references to a missing primary entity, e.g.
	// toggling a like on a deleted post. Deletes by id are deliberately
	// NOT errors on missing ids.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate unique keys, e.g. username at registration.
	ErrConflict = errors.New("conflict")
)
