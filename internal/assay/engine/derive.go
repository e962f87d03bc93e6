package engine

import "github.com/shopspring/decimal"

var (
	hundred   = decimal.NewFromInt(100)
	karatFull = decimal.NewFromInt(24)
)

// ComputeKarat converts a gold percentage to karat: gold/100*24, half-up to 2 places.
func ComputeKarat(gold *float64) *float64 {
	if gold == nil {
		return nil
	}
	k := decimal.NewFromFloat(*gold).Div(hundred).Mul(karatFull).Round(2).InexactFloat64()
	return &k
}

// ComputeNetWeight returns a copy of the gross weight. Net weight is never edited on its own.
func ComputeNetWeight(gross *float64) *float64 {
	if gross == nil {
		return nil
	}
	n := *gross
	return &n
}

// ComputeGoldPurity returns the fine gold weight gold*gross/100, half-up to 3 places.
func ComputeGoldPurity(gold, gross *float64) *float64 {
	if gold == nil || gross == nil {
		return nil
	}
	p := decimal.NewFromFloat(*gold).Mul(decimal.NewFromFloat(*gross)).Div(hundred).Round(3).InexactFloat64()
	return &p
}

// fixed formats v with exactly places decimals, rounding half-up.
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
