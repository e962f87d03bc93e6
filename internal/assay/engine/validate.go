package engine

import (
	"math"
	"strings"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
)

// Violation messages.
const (
	MsgInvalidMobile   = "invalid mobile number"
	MsgNegativeWeight  = "gross weight must be non-negative"
	MsgGoldOutOfRange  = "gold percent out of range"
	MsgMissingRequired = "missing required field(s)"
	MsgInvalidNumber   = "invalid number"
	MsgInvalidPhoto    = "photo must be an uploaded png or jpeg"
)

const mobileNumberDigits = 10

// Validate checks a form for commit. All rules run; none short-circuits another.
func Validate(f *entity.Form) []Violation {
	var out []Violation

	if f.MobileNumber != "" && !isMobileNumber(f.MobileNumber) {
		out = append(out, Violation{Field: string(FieldMobileNumber), Message: MsgInvalidMobile})
	}
	out = append(out, checkWeightAndGold(f.GrossWeight, f.Gold)...)

	var missing []string
	if strings.TrimSpace(f.CustomerName) == "" {
		missing = append(missing, string(FieldCustomerName))
	}
	if strings.TrimSpace(f.ItemName) == "" {
		missing = append(missing, string(FieldItemName))
	}
	if f.GrossWeight == nil {
		missing = append(missing, string(FieldGrossWeight))
	}
	if f.Gold == nil {
		missing = append(missing, string(FieldGold))
	}
	if len(missing) > 0 {
		out = append(out, Violation{Field: strings.Join(missing, ", "), Message: MsgMissingRequired})
	}
	return out
}

// ValidateTemplate applies the narrower template rules: no customer or mobile checks.
func ValidateTemplate(t *entity.Template) []Violation {
	out := checkWeightAndGold(t.GrossWeight, t.Gold)

	var missing []string
	if strings.TrimSpace(t.ItemName) == "" {
		missing = append(missing, string(FieldItemName))
	}
	if t.GrossWeight == nil {
		missing = append(missing, string(FieldGrossWeight))
	}
	if t.Gold == nil {
		missing = append(missing, string(FieldGold))
	}
	if len(missing) > 0 {
		out = append(out, Violation{Field: strings.Join(missing, ", "), Message: MsgMissingRequired})
	}
	return out
}

func checkWeightAndGold(gross, gold *float64) []Violation {
	var out []Violation
	if gross != nil && (math.IsNaN(*gross) || math.IsInf(*gross, 0) || *gross < 0) {
		out = append(out, Violation{Field: string(FieldGrossWeight), Message: MsgNegativeWeight})
	}
	if gold != nil && (math.IsNaN(*gold) || *gold < 0 || *gold > 100) {
		out = append(out, Violation{Field: string(FieldGold), Message: MsgGoldOutOfRange})
	}
	return out
}

func isMobileNumber(s string) bool {
	if len(s) != mobileNumberDigits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
