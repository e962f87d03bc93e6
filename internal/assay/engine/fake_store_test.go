package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
)

var errStoreDown = errors.New("store down")

type auditEntry struct {
	Action  string
	UserID  string
	Subject string
}

// memStore is an in-memory FormStore; fail* flags inject failures per operation.
type memStore struct {
	forms     []entity.Form
	templates []entity.Template
	audits    []auditEntry
	errors    []string
	seq       int

	upserts int

	failNext      bool
	failList      bool
	failUpsert    bool
	failTemplates bool
	failAudit     bool
}

func newMemStore(forms ...entity.Form) *memStore {
	return &memStore{forms: forms}
}

func (m *memStore) NextFormNumber(ctx context.Context, userID string) (int, error) {
	if m.failNext {
		return 0, errStoreDown
	}
	max := 0
	for _, f := range m.forms {
		if f.UserID == userID && f.FormNumber > max {
			max = f.FormNumber
		}
	}
	return max + 1, nil
}

func (m *memStore) ListForms(ctx context.Context, userID string) ([]entity.Form, error) {
	if m.failList {
		return nil, errStoreDown
	}
	var out []entity.Form
	for _, f := range m.forms {
		if f.UserID == userID {
			out = append(out, cloneForm(f))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FormNumber > out[j].FormNumber })
	return out, nil
}

func (m *memStore) UpsertForm(ctx context.Context, form *entity.Form) (string, error) {
	if m.failUpsert {
		return "", errStoreDown
	}
	m.upserts++
	if form.ID == "" {
		max := 0
		for _, f := range m.forms {
			if f.UserID == form.UserID && f.FormNumber > max {
				max = f.FormNumber
			}
		}
		if form.FormNumber <= max {
			form.FormNumber = max + 1
		}
		m.seq++
		form.ID = fmt.Sprintf("form-%03d", m.seq)
		m.forms = append(m.forms, cloneForm(*form))
		return form.ID, nil
	}
	for i := range m.forms {
		if m.forms[i].ID == form.ID {
			owner := m.forms[i].UserID
			m.forms[i] = cloneForm(*form)
			m.forms[i].UserID = owner
			return form.ID, nil
		}
	}
	return "", fmt.Errorf("update %s: %w", form.ID, ErrNotFound)
}

func (m *memStore) DeleteForm(ctx context.Context, id string) error {
	for i := range m.forms {
		if m.forms[i].ID == id {
			m.forms = append(m.forms[:i], m.forms[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) ListTemplates(ctx context.Context, userID string) ([]entity.Template, error) {
	if m.failTemplates {
		return nil, errStoreDown
	}
	var out []entity.Template
	for _, t := range m.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) InsertTemplate(ctx context.Context, tmpl *entity.Template) (string, error) {
	if m.failTemplates {
		return "", errStoreDown
	}
	m.seq++
	tmpl.ID = fmt.Sprintf("tmpl-%03d", m.seq)
	m.templates = append(m.templates, *tmpl)
	return tmpl.ID, nil
}

func (m *memStore) RecordAudit(ctx context.Context, action, userID, subject string, at time.Time) error {
	if m.failAudit {
		return errStoreDown
	}
	m.audits = append(m.audits, auditEntry{Action: action, UserID: userID, Subject: subject})
	return nil
}

func (m *memStore) LogError(ctx context.Context, message string, at time.Time) {
	m.errors = append(m.errors, message)
}

func f64(v float64) *float64 { return &v }

func savedForm(id string, number int, customer string) entity.Form {
	return entity.Form{
		ID:           id,
		FormNumber:   number,
		Date:         "01-02-2026",
		Time:         "10:00:00",
		CustomerName: customer,
		ItemName:     "Chain",
		GrossWeight:  f64(10),
		NetWeight:    f64(10),
		Gold:         f64(75),
		Karat:        f64(18),
		UserID:       "user-1",
	}
}
