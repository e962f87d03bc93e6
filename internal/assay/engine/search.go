package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"golang.org/x/text/cases"
)

// FilterForms keeps forms whose customer name contains query (case-insensitively) or whose
// form number's decimal text contains it. An empty query keeps everything.
func FilterForms(forms []entity.Form, query string) []entity.Form {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]entity.Form(nil), forms...)
	}

	fold := cases.Fold()
	needle := fold.String(query)
	out := make([]entity.Form, 0, len(forms))
	for _, f := range forms {
		if strings.Contains(fold.String(f.CustomerName), needle) ||
			strings.Contains(strconv.Itoa(f.FormNumber), query) {
			out = append(out, f)
		}
	}
	return out
}

// Summary is one entry of the form selection control.
type Summary struct {
	ID           string `json:"id"`
	FormNumber   int    `json:"form_number"`
	CustomerName string `json:"customer_name"`
	Label        string `json:"label"`
}

// TemplateSummary is one entry of the template selection control.
type TemplateSummary struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func summarize(forms []entity.Form) []Summary {
	out := make([]Summary, 0, len(forms))
	for _, f := range forms {
		name := f.CustomerName
		if name == "" {
			name = "No Customer"
		}
		out = append(out, Summary{
			ID:           f.ID,
			FormNumber:   f.FormNumber,
			CustomerName: f.CustomerName,
			Label:        fmt.Sprintf("Form %d - %s", f.FormNumber, name),
		})
	}
	return out
}

func summarizeTemplates(templates []entity.Template) []TemplateSummary {
	out := make([]TemplateSummary, 0, len(templates))
	for i, t := range templates {
		label := t.ItemName
		if label == "" {
			label = fmt.Sprintf("Template %d", i+1)
		}
		out = append(out, TemplateSummary{ID: t.ID, Label: label})
	}
	return out
}

func indexOf(forms []entity.Form, id string) int {
	if id == "" {
		return NotPositioned
	}
	for i := range forms {
		if forms[i].ID == id {
			return i
		}
	}
	return NotPositioned
}
