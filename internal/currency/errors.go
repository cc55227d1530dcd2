package currency

import (
	"errors"
	"fmt"
)

var (
	// ErrRateNotFound means neither the pair nor its inverse is stored
	ErrRateNotFound = errors.New("exchange rate not found")
	// ErrConversionFailed wraps any failure to convert an amount
	ErrConversionFailed = errors.New("currency conversion failed")
	// ErrInvalidAmount rejects NaN and infinite amounts
	ErrInvalidAmount = errors.New("amount must be a finite number")
	// ErrUnsupportedCurrency rejects codes outside the supported universe
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrInvalidRate rejects non-positive or non-finite rates
	ErrInvalidRate = errors.New("rate must be a finite number greater than zero")
	// ErrDuplicatePair rejects a conversion list with the same (from,to) twice
	ErrDuplicatePair = errors.New("duplicate currency pair")
	// ErrInvalidConfiguration rejects out-of-range rate store metadata
	ErrInvalidConfiguration = errors.New("invalid rate configuration")
	// ErrRateStoreNotFound means the tenant has no rate configuration yet
	ErrRateStoreNotFound = errors.New("rate configuration not found")
	// ErrRateStoreExists means the tenant already has a rate configuration
	ErrRateStoreExists = errors.New("rate configuration already exists")
	// ErrFeedUnavailable means the external quote feed could not be used
	ErrFeedUnavailable = errors.New("exchange rate feed unavailable")
)

// ConversionError describes a failed conversion between two currencies.
// errors.Is matches both ErrConversionFailed and the underlying cause.
type ConversionError struct {
	From Code
	To   Code
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s to %s: %v", e.From, e.To, e.Err)
}

// Unwrap exposes the failure category and its cause
func (e *ConversionError) Unwrap() []error {
	return []error{ErrConversionFailed, e.Err}
}

func rateNotFound(from, to Code) error {
	return fmt.Errorf("%w: %s to %s", ErrRateNotFound, from, to)
}
