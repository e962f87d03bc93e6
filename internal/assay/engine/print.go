package engine

import "github.com/bitfantasy/goldassay/internal/assay/entity"

// PrintSnapshot is the certificate payload handed to the renderer. Every numeric display
// field is filled; text fields are pre-formatted for the fixed certificate layout.
type PrintSnapshot struct {
	FormID       string  `json:"form_id"`
	FormNumber   int     `json:"form_number"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	CustomerName string  `json:"customer_name"`
	ItemName     string  `json:"item_name"`
	MobileNumber string  `json:"mobile_number"`
	SampleWeight float64 `json:"sample_weight"`
	NetWeight    float64 `json:"net_weight"`
	Fineness     float64 `json:"fineness"`
	GoldPurity   float64 `json:"gold_purity"`
	Karat        float64 `json:"karat"`
	Photo        string  `json:"photo,omitempty"`

	SampleWeightText string `json:"sample_weight_text"`
	FinenessText     string `json:"fineness_text"`
	GoldPurityText   string `json:"gold_purity_text"`
	KaratText        string `json:"karat_text"`
}

// PreparePrint validates f and builds its certificate snapshot with all derived fields final.
func PreparePrint(f *entity.Form) (*PrintSnapshot, error) {
	if v := Validate(f); len(v) > 0 {
		return nil, &ValidationError{Violations: v}
	}

	gross := *f.GrossWeight
	gold := *f.Gold
	karat := *ComputeKarat(f.Gold)
	purity := *ComputeGoldPurity(f.Gold, f.GrossWeight)

	return &PrintSnapshot{
		FormID:       f.ID,
		FormNumber:   f.FormNumber,
		Date:         f.Date,
		Time:         f.Time,
		CustomerName: f.CustomerName,
		ItemName:     f.ItemName,
		MobileNumber: f.MobileNumber,
		SampleWeight: gross,
		NetWeight:    gross,
		Fineness:     gold,
		GoldPurity:   purity,
		Karat:        karat,
		Photo:        f.Photo,

		SampleWeightText: fixed(gross, 3) + " g",
		FinenessText:     fixed(gold, 3) + " %",
		GoldPurityText:   fixed(purity, 3) + " g",
		KaratText:        fixed(karat, 2),
	}, nil
}
