package engine

import "github.com/bitfantasy/goldassay/internal/assay/entity"

// BindTemplate copies a template's item, weight and purity fields onto a draft.
// Customer name, mobile number and photo are not touched. Karat is always re-derived from gold.
func BindTemplate(draft *entity.Form, t *entity.Template) {
	draft.ItemName = t.ItemName
	draft.GrossWeight = cloneFloat(t.GrossWeight)
	draft.NetWeight = ComputeNetWeight(t.GrossWeight)
	draft.Gold = cloneFloat(t.Gold)
	draft.Karat = ComputeKarat(t.Gold)
}

// TemplateFromForm builds a template candidate from a form's item and purity fields.
func TemplateFromForm(f *entity.Form) *entity.Template {
	return &entity.Template{
		ItemName:    f.ItemName,
		GrossWeight: cloneFloat(f.GrossWeight),
		NetWeight:   ComputeNetWeight(f.GrossWeight),
		Gold:        cloneFloat(f.Gold),
		Karat:       ComputeKarat(f.Gold),
		UserID:      f.UserID,
	}
}
