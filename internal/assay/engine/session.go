package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"go.uber.org/zap"
)

// NotPositioned is the list index of an unsaved draft.
const NotPositioned = -1

const (
	dateLayout = "02-01-2006"
	timeLayout = "15:04:05"
)

// Notices attached to a View when a fallback happened instead of an error.
const (
	NoticeNoMatches       = "no forms match the search; showing a new form"
	NoticeSelectionLost   = "selected form is no longer in the list; showing a new form"
	NoticeListStale       = "saved, but the form list could not be refreshed"
	NoticeTemplatesStale  = "template saved, but the template list could not be refreshed"
	NoticeNewFormDeferred = "saved and printed, but a new form could not be opened"
	NoticeRenumbered      = "form number was taken by another save; saved under the next free number"
)

// Intent selects what Commit does after a successful save.
type Intent int

const (
	IntentSave Intent = iota
	IntentSaveAndPrint
)

func (i Intent) String() string {
	if i == IntentSaveAndPrint {
		return "save_and_print"
	}
	return "save"
}

// Draft is the form being displayed or edited, plus its display-only gold purity.
type Draft struct {
	entity.Form
	GoldPurity *float64 `json:"gold_purity"`
}

// View is the state returned by every session operation for the presentation layer to draw.
type View struct {
	Draft          Draft             `json:"draft"`
	Editable       bool              `json:"editable"`
	CurrentFormID  string            `json:"current_form_id"`
	CurrentIndex   int               `json:"current_index"`
	Query          string            `json:"query"`
	Forms          []Summary         `json:"forms"`
	Templates      []TemplateSummary `json:"templates"`
	LastTemplateID string            `json:"last_template_id"`
	Notice         string            `json:"notice,omitempty"`
}

// CommitResult is returned by a successful Commit.
type CommitResult struct {
	View    *View          `json:"view"`
	FormID  string         `json:"form_id"`
	Created bool           `json:"created"`
	Print   *PrintSnapshot `json:"print,omitempty"`
}

// Session owns one user's current draft, edit lock, active list and cursor.
// Operations are serialized; each one runs to completion before the next starts, and a
// failed store call leaves every field exactly as it was.
type Session struct {
	mu sync.Mutex

	userID  string
	store   FormStore
	errSink ErrorSink
	logger  *zap.Logger
	now     func() time.Time

	draft          entity.Form
	currentFormID  string
	currentIndex   int
	editing        bool
	forms          []entity.Form
	active         []entity.Form
	query          string
	templates      []entity.Template
	lastTemplateID string
}

// NewSession creates a session for userID. Call Start before any other operation.
func NewSession(store FormStore, userID string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		userID:       userID,
		store:        store,
		logger:       logger.With(zap.String("user_id", userID)),
		now:          time.Now,
		currentIndex: NotPositioned,
	}
}

// SetErrorSink routes store failures to sink as well as the logger.
func (s *Session) SetErrorSink(sink ErrorSink) {
	s.errSink = sink
}

// SetClock overrides time.Now, for tests.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

// UserID returns the owning user.
func (s *Session) UserID() string {
	return s.userID
}

// Start loads the user's forms and templates and opens a blank form.
func (s *Session) Start(ctx context.Context) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	forms, err := s.store.ListForms(ctx, s.userID)
	if err != nil {
		return nil, s.storeFailure(ctx, "list forms", err)
	}
	templates, err := s.store.ListTemplates(ctx, s.userID)
	if err != nil {
		return nil, s.storeFailure(ctx, "list templates", err)
	}
	blank, err := s.blankForm(ctx)
	if err != nil {
		return nil, err
	}

	s.forms = forms
	s.active = forms
	s.templates = templates
	s.resetTo(blank)
	return s.view(""), nil
}

// NewForm replaces the draft with a blank, editable form numbered after the user's latest.
func (s *Session) NewForm(ctx context.Context) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blank, err := s.blankForm(ctx)
	if err != nil {
		return nil, err
	}
	s.resetTo(blank)
	return s.view(""), nil
}

// LoadAt shows the active list entry at index, read-only.
func (s *Session) LoadAt(index int) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadAt(index); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

// Select shows the first active list entry with the given id. When the id is gone the
// session falls back to a new form and says so in the view's notice.
func (s *Session) Select(ctx context.Context, id string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := indexOf(s.active, id); idx != NotPositioned {
		_ = s.loadAt(idx)
		return s.view(""), nil
	}

	blank, err := s.blankForm(ctx)
	if err != nil {
		return nil, err
	}
	s.resetTo(blank)
	return s.view(NoticeSelectionLost), nil
}

// Next moves toward newer forms (index - 1).
func (s *Session) Next() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.active) == 0 || s.currentIndex <= 0 {
		return nil, ErrNoNewerForms
	}
	if err := s.loadAt(s.currentIndex - 1); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

// Previous moves toward older forms (index + 1). From an unsaved draft it opens the newest form.
func (s *Session) Previous() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.currentIndex + 1
	if s.currentIndex == NotPositioned {
		next = 0
	}
	if next >= len(s.active) {
		return nil, ErrNoOlderForms
	}
	if err := s.loadAt(next); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

// ApplyTemplate copies a saved template onto the draft and unlocks it.
func (s *Session) ApplyTemplate(templateID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.templates {
		if s.templates[i].ID == templateID {
			BindTemplate(&s.draft, &s.templates[i])
			s.editing = true
			s.lastTemplateID = templateID
			return s.view(""), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
}

// UpdateField edits one field of the draft. Rejected with ErrLocked while viewing.
func (s *Session) UpdateField(name Field, value string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.editing {
		return nil, ErrLocked
	}
	next := cloneForm(s.draft)
	if err := applyField(&next, name, value); err != nil {
		return nil, err
	}
	s.draft = next
	return s.view(""), nil
}

// Search re-reads the user's forms and narrows the active list to those matching query.
// An empty match opens a new form; a current form that no longer matches does too.
func (s *Session) Search(ctx context.Context, query string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reload(ctx, query)
}

// Refresh re-reads forms and templates under the current query.
func (s *Session) Refresh(ctx context.Context) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.store.ListTemplates(ctx, s.userID)
	if err != nil {
		return nil, s.storeFailure(ctx, "list templates", err)
	}
	view, err := s.reload(ctx, s.query)
	if err != nil {
		return nil, err
	}
	s.templates = templates
	view.Templates = summarizeTemplates(templates)
	return view, nil
}

// Commit validates and persists the draft. With IntentSaveAndPrint it also returns the
// certificate snapshot and resets the session to a blank form with no search filter.
func (s *Session) Commit(ctx context.Context, intent Intent) (*CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v := Validate(&s.draft); len(v) > 0 {
		return nil, &ValidationError{Violations: v}
	}

	rec := cloneForm(s.draft)
	rec.ID = s.currentFormID
	rec.UserID = s.userID
	rec.NetWeight = ComputeNetWeight(rec.GrossWeight)
	rec.Karat = ComputeKarat(rec.Gold)

	var snapshot *PrintSnapshot
	if intent == IntentSaveAndPrint {
		var err error
		if snapshot, err = PreparePrint(&rec); err != nil {
			return nil, err
		}
	}

	shownNumber := rec.FormNumber
	id, err := s.store.UpsertForm(ctx, &rec)
	if err != nil {
		if errors.Is(err, ErrNotFound) && s.currentFormID != "" {
			return nil, s.detachDeleted(ctx)
		}
		return nil, s.storeFailure(ctx, "upsert form", err)
	}

	created := s.currentFormID == ""
	rec.ID = id
	s.currentFormID = id
	s.draft = rec

	action := entity.AuditActionUpdateForm
	if created {
		action = entity.AuditActionCreateForm
	}
	s.audit(ctx, action, fmt.Sprintf("Form %d", rec.FormNumber))

	notice := ""
	if rec.FormNumber != shownNumber {
		notice = NoticeRenumbered
	}
	if forms, err := s.store.ListForms(ctx, s.userID); err != nil {
		s.reportError(ctx, "list forms after commit", err)
		notice = NoticeListStale
	} else {
		s.forms = forms
		s.active = FilterForms(forms, s.query)
	}
	s.currentIndex = indexOf(s.active, id)

	s.logger.Info("Form committed",
		zap.String("form_id", id),
		zap.Int("form_number", rec.FormNumber),
		zap.Bool("created", created),
		zap.Stringer("intent", intent),
	)

	if snapshot != nil {
		snapshot.FormID = id
		snapshot.FormNumber = rec.FormNumber
		s.query = ""
		s.active = s.forms
		if blank, err := s.blankForm(ctx); err != nil {
			notice = NoticeNewFormDeferred
			s.currentIndex = indexOf(s.active, id)
		} else {
			s.resetTo(blank)
		}
	}

	return &CommitResult{View: s.view(notice), FormID: id, Created: created, Print: snapshot}, nil
}

// SaveTemplate validates and stores a template candidate. The draft is not changed.
func (s *Session) SaveTemplate(ctx context.Context, candidate *entity.Template) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveTemplate(ctx, candidate)
}

// SaveDraftAsTemplate stores the draft's item, weight and gold as a new template.
func (s *Session) SaveDraftAsTemplate(ctx context.Context) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveTemplate(ctx, TemplateFromForm(&s.draft))
}

// View returns the current state without changing it.
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view("")
}

// Draft returns a copy of the current draft with its gold purity.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view("").Draft
}

// IsEditable reports whether the draft accepts field edits.
func (s *Session) IsEditable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// ActiveList returns summaries of the navigable forms.
func (s *Session) ActiveList() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.active)
}

func (s *Session) loadAt(index int) error {
	if index < 0 || index >= len(s.active) {
		return fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	s.draft = cloneForm(s.active[index])
	s.currentIndex = index
	s.currentFormID = s.draft.ID
	s.editing = false
	return nil
}

// blankForm asks the store for the next number; nothing in the session changes.
func (s *Session) blankForm(ctx context.Context) (entity.Form, error) {
	n, err := s.store.NextFormNumber(ctx, s.userID)
	if err != nil {
		return entity.Form{}, s.storeFailure(ctx, "next form number", err)
	}
	now := s.now()
	return entity.Form{
		FormNumber: n,
		Date:       now.Format(dateLayout),
		Time:       now.Format(timeLayout),
		UserID:     s.userID,
	}, nil
}

func (s *Session) resetTo(blank entity.Form) {
	s.draft = blank
	s.currentFormID = ""
	s.currentIndex = NotPositioned
	s.editing = true
	s.lastTemplateID = ""
}

func (s *Session) reload(ctx context.Context, query string) (*View, error) {
	forms, err := s.store.ListForms(ctx, s.userID)
	if err != nil {
		return nil, s.storeFailure(ctx, "list forms", err)
	}
	query = strings.TrimSpace(query)
	active := FilterForms(forms, query)

	notice := ""
	idx := indexOf(active, s.currentFormID)
	switch {
	case len(active) == 0 && query != "":
		notice = NoticeNoMatches
	case s.currentFormID != "" && idx == NotPositioned:
		notice = NoticeSelectionLost
	}

	var blank entity.Form
	if notice != "" {
		if blank, err = s.blankForm(ctx); err != nil {
			return nil, err
		}
	}

	s.forms = forms
	s.active = active
	s.query = query
	if notice != "" {
		s.resetTo(blank)
	} else {
		s.currentIndex = idx
	}
	return s.view(notice), nil
}

func (s *Session) saveTemplate(ctx context.Context, candidate *entity.Template) (*View, error) {
	t := *candidate
	t.ID = ""
	t.UserID = s.userID
	t.GrossWeight = cloneFloat(candidate.GrossWeight)
	t.NetWeight = ComputeNetWeight(candidate.GrossWeight)
	t.Gold = cloneFloat(candidate.Gold)
	t.Karat = ComputeKarat(candidate.Gold)

	if v := ValidateTemplate(&t); len(v) > 0 {
		return nil, &ValidationError{Violations: v}
	}
	if _, err := s.store.InsertTemplate(ctx, &t); err != nil {
		return nil, s.storeFailure(ctx, "insert template", err)
	}
	s.audit(ctx, entity.AuditActionCreateTemplate, t.ItemName)

	notice := ""
	if templates, err := s.store.ListTemplates(ctx, s.userID); err != nil {
		s.reportError(ctx, "list templates after insert", err)
		notice = NoticeTemplatesStale
	} else {
		s.templates = templates
	}
	return s.view(notice), nil
}

// detachDeleted keeps the draft's contents as a new unsaved form under the next free number
// after its record disappeared from the store.
func (s *Session) detachDeleted(ctx context.Context) error {
	blank, err := s.blankForm(ctx)
	if err != nil {
		return err
	}
	forms, err := s.store.ListForms(ctx, s.userID)
	if err != nil {
		return s.storeFailure(ctx, "list forms", err)
	}

	deletedID := s.currentFormID
	d := cloneForm(s.draft)
	d.ID = ""
	d.FormNumber = blank.FormNumber
	d.Date = blank.Date
	d.Time = blank.Time

	s.forms = forms
	s.active = FilterForms(forms, s.query)
	s.draft = d
	s.currentFormID = ""
	s.currentIndex = NotPositioned
	s.editing = true
	s.logger.Warn("Edited form was deleted, draft detached", zap.String("form_id", deletedID))
	return ErrFormDeleted
}

func (s *Session) audit(ctx context.Context, action, subject string) {
	if err := s.store.RecordAudit(ctx, action, s.userID, subject, s.now()); err != nil {
		s.logger.Warn("Record audit failed",
			zap.String("action", action),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func (s *Session) storeFailure(ctx context.Context, op string, err error) error {
	s.reportError(ctx, op, err)
	return &StoreError{Op: op, Err: err}
}

func (s *Session) reportError(ctx context.Context, op string, err error) {
	s.logger.Error("Form store failure", zap.String("op", op), zap.Error(err))
	if s.errSink != nil {
		s.errSink.LogError(ctx, fmt.Sprintf("%s: %v", op, err), s.now())
	}
}

func (s *Session) view(notice string) *View {
	d := cloneForm(s.draft)
	return &View{
		Draft:          Draft{Form: d, GoldPurity: ComputeGoldPurity(d.Gold, d.GrossWeight)},
		Editable:       s.editing,
		CurrentFormID:  s.currentFormID,
		CurrentIndex:   s.currentIndex,
		Query:          s.query,
		Forms:          summarize(s.active),
		Templates:      summarizeTemplates(s.templates),
		LastTemplateID: s.lastTemplateID,
		Notice:         notice,
	}
}
