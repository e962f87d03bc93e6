package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a list position, record id or template id no longer resolves.
	ErrNotFound = errors.New("form not found")
	// ErrFormDeleted is returned by Commit when the record being edited was deleted elsewhere.
	// The draft has already been turned into a new unsaved form carrying the same contents.
	ErrFormDeleted = fmt.Errorf("%w: it was deleted, contents kept as a new unsaved form", ErrNotFound)
	// ErrTemplateNotFound is returned by ApplyTemplate for an unknown template id.
	ErrTemplateNotFound = fmt.Errorf("template: %w", ErrNotFound)
	// ErrLocked is returned when a field edit arrives while the draft is read-only.
	ErrLocked = errors.New("form is locked for editing")
	// ErrReadOnlyField is returned for fields that are captured or derived, never typed in.
	ErrReadOnlyField = errors.New("field is not editable")
	// ErrUnknownField is returned for field names the form does not have.
	ErrUnknownField = errors.New("unknown field")

	ErrNoMoreForms  = errors.New("no more forms")
	ErrNoNewerForms = fmt.Errorf("%w: no newer forms available", ErrNoMoreForms)
	ErrNoOlderForms = fmt.Errorf("%w: no older forms available", ErrNoMoreForms)
)

// Violation is one field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found on a candidate record.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// StoreError wraps a persistence failure. The session state is left as it was before the call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
