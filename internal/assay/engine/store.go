package engine

import (
	"context"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
)

// FormStore is the persistence contract the session drives. Each call either fully
// succeeds or fails without observable partial writes.
type FormStore interface {
	// NextFormNumber returns max existing form number + 1, or 1 when the user has none.
	NextFormNumber(ctx context.Context, userID string) (int, error)
	// ListForms returns the user's forms, newest form number first.
	ListForms(ctx context.Context, userID string) ([]entity.Form, error)
	// UpsertForm inserts when form.ID is empty, else updates in place keeping id and owner.
	// On insert a form number not above the owner's current maximum is replaced with the
	// next one and written back to form.FormNumber, so numbers stay unique and increasing. Updating a record that no longer exists returns an
	// error wrapping ErrNotFound.
	UpsertForm(ctx context.Context, form *entity.Form) (string, error)
	DeleteForm(ctx context.Context, id string) error
	ListTemplates(ctx context.Context, userID string) ([]entity.Template, error)
	InsertTemplate(ctx context.Context, tmpl *entity.Template) (string, error)
	// RecordAudit is fire-and-forget for the session: its error is logged, never returned.
	RecordAudit(ctx context.Context, action, userID, subject string, at time.Time) error
}

// ErrorSink receives best-effort error reports. Implementations must not block for long.
type ErrorSink interface {
	LogError(ctx context.Context, message string, at time.Time)
}
