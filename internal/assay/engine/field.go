package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
)

// Field names a form field as the presentation layer addresses it.
type Field string

const (
	FieldFormNumber   Field = "form_number"
	FieldDate         Field = "date"
	FieldTime         Field = "time"
	FieldCustomerName Field = "customer_name"
	FieldItemName     Field = "item_name"
	FieldMobileNumber Field = "mobile_number"
	FieldGrossWeight  Field = "gross_weight"
	FieldNetWeight    Field = "net_weight"
	FieldGold         Field = "gold"
	FieldKarat        Field = "karat"
	FieldPhoto        Field = "photo"
)

// PhotoURLPrefix is where stored photo objects are served from.
const PhotoURLPrefix = "/api/v1/photos/"

// inline photos are only accepted in these encodings
var inlinePhotoPrefixes = []string{
	"data:image/png;base64,",
	"data:image/jpeg;base64,",
}

// applyField sets one editable field on f, re-deriving net weight and karat in the same step.
// f is left untouched when an error is returned.
func applyField(f *entity.Form, name Field, value string) error {
	switch name {
	case FieldCustomerName:
		f.CustomerName = value
	case FieldItemName:
		f.ItemName = value
	case FieldMobileNumber:
		f.MobileNumber = strings.TrimSpace(value)
	case FieldPhoto:
		if !ValidPhotoRef(value) {
			return &ValidationError{Violations: []Violation{{Field: string(name), Message: MsgInvalidPhoto}}}
		}
		f.Photo = value
	case FieldGrossWeight:
		v, err := parseNumber(name, value)
		if err != nil {
			return err
		}
		f.GrossWeight = v
		f.NetWeight = ComputeNetWeight(v)
	case FieldGold:
		v, err := parseNumber(name, value)
		if err != nil {
			return err
		}
		f.Gold = v
		f.Karat = ComputeKarat(v)
	case FieldFormNumber, FieldDate, FieldTime, FieldNetWeight, FieldKarat:
		return fmt.Errorf("%w: %s", ErrReadOnlyField, name)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// parseNumber maps "" to nil so a numeric field can be cleared.
func parseNumber(name Field, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ValidationError{Violations: []Violation{{Field: string(name), Message: MsgInvalidNumber}}}
	}
	return &v, nil
}

// ValidPhotoRef reports whether ref is empty, a stored photo object URL or an inline png/jpeg.
func ValidPhotoRef(ref string) bool {
	if ref == "" {
		return true
	}
	if strings.HasPrefix(ref, PhotoURLPrefix+"photos/") {
		return !strings.Contains(ref, "..")
	}
	for _, p := range inlinePhotoPrefixes {
		if strings.HasPrefix(ref, p) {
			return true
		}
	}
	return false
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneForm(f entity.Form) entity.Form {
	f.GrossWeight = cloneFloat(f.GrossWeight)
	f.NetWeight = cloneFloat(f.NetWeight)
	f.Gold = cloneFloat(f.Gold)
	f.Karat = cloneFloat(f.Karat)
	return f
}
