package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
)

var (
	// ErrInvalidCost rejects negative or non-finite costs
	ErrInvalidCost = errors.New("cost must be a finite number greater than or equal to zero")
	// ErrInvalidMargin rejects negative or non-finite profit percentages
	ErrInvalidMargin = errors.New("profit percentage must be a finite number greater than or equal to zero")
	// ErrPricingFailed wraps a sale price that could not be computed
	ErrPricingFailed = errors.New("pricing failed")
	// ErrMissingRateConfiguration means the owner has no rate store to price against
	ErrMissingRateConfiguration = errors.New("missing rate configuration")
)

// PricingError describes which entity failed to price and why.
// errors.Is matches both ErrPricingFailed and the underlying cause.
type PricingError struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	Variant   string
	From      currency.Code
	To        currency.Code
	Err       error
}

func (e *PricingError) Error() string {
	var b strings.Builder
	b.WriteString("pricing failed")
	if e.ProductID != uuid.Nil {
		fmt.Fprintf(&b, " for product %s", e.ProductID)
	}
	if e.VariantID != uuid.Nil || e.Variant != "" {
		b.WriteString(" variant")
		if e.Variant != "" {
			fmt.Fprintf(&b, " %q", e.Variant)
		}
		if e.VariantID != uuid.Nil {
			fmt.Fprintf(&b, " (%s)", e.VariantID)
		}
	}
	if e.From != "" && e.To != "" {
		fmt.Fprintf(&b, " from %s to %s", e.From, e.To)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap exposes the failure category and its cause
func (e *PricingError) Unwrap() []error {
	return []error{ErrPricingFailed, e.Err}
}

// IsValidationError reports whether err is caused by the caller's input or
// configuration rather than by an infrastructure failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidCost,
		ErrInvalidMargin,
		ErrMissingRateConfiguration,
		ErrPricingFailed,
		currency.ErrInvalidAmount,
		currency.ErrUnsupportedCurrency,
		currency.ErrConversionFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
