package currency

import (
	"math"

	"github.com/shopspring/decimal"
)

// Rounding precision
const (
	// RatePlaces is the precision of converted amounts; later 2-place rounding depends on it
	RatePlaces = 4
	// PricePlaces is the precision of final sale prices
	PricePlaces = 2
)

// Round rounds value half away from zero using fixed-point arithmetic
func Round(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return rounded
}

// RoundDecimal rounds d half away from zero and returns it as a float64
func RoundDecimal(d decimal.Decimal, places int32) float64 {
	rounded, _ := d.Round(places).Float64()
	return rounded
}

// ConvertAmount converts amount from one currency to another and rounds the
// result to RatePlaces.
func ConvertAmount(amount float64, from, to Code, store *RateStore) (float64, error) {
	if !finite(amount) {
		return 0, ErrInvalidAmount
	}

	converted, err := ConvertDecimal(decimal.NewFromFloat(amount), from, to, store)
	if err != nil {
		return 0, err
	}
	return RoundDecimal(converted, RatePlaces), nil
}

// ConvertDecimal multiplies amount by the resolved rate without rounding
func ConvertDecimal(amount decimal.Decimal, from, to Code, store *RateStore) (decimal.Decimal, error) {
	rate, err := ResolveRate(from, to, store)
	if err != nil {
		return decimal.Zero, &ConversionError{From: from, To: to, Err: err}
	}
	return amount.Mul(decimal.NewFromFloat(rate)), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
