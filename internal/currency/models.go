package currency

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Code is an ISO 4217 currency code from the supported universe
type Code string

// Supported currency codes
const (
	USD Code = "USD"
	EUR Code = "EUR"
	VES Code = "VES"
	COP Code = "COP"
	ARS Code = "ARS"
	BRL Code = "BRL"
	CLP Code = "CLP"
	MXN Code = "MXN"
	PEN Code = "PEN"
)

// DefaultAnchor is the currency the external feed quotes against
const DefaultAnchor = USD

// Supported is the closed, ordered universe of currencies the service prices in.
// Validation, the expansion job and the data model all read from this list.
var Supported = []Code{USD, EUR, VES, COP, ARS, BRL, CLP, MXN, PEN}

var supportedSet = func() map[Code]struct{} {
	set := make(map[Code]struct{}, len(Supported))
	for _, c := range Supported {
		set[c] = struct{}{}
	}
	return set
}()

// Valid reports whether c belongs to the supported universe
func (c Code) Valid() bool {
	_, ok := supportedSet[c]
	return ok
}

func (c Code) String() string {
	return string(c)
}

// ParseCode normalises s and checks it against the supported universe
func ParseCode(s string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !code.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	return code, nil
}

// UpdateConfigRequest replaces a tenant's rate configuration wholesale
type UpdateConfigRequest struct {
	Conversions                     []ConversionInput `json:"conversions" binding:"dive"`
	DefaultProfitPercentage         *float64          `json:"default_profit_percentage" binding:"omitempty,gte=0,lte=500"`
	PersonalRateThresholdPercentage *float64          `json:"personal_rate_threshold_percentage" binding:"omitempty,gte=0,lte=100"`
	PersonalRate                    *float64          `json:"personal_rate" binding:"omitempty,gte=0"`
}

// ConversionInput is a single directed rate supplied by a client
type ConversionInput struct {
	From string  `json:"from" binding:"required,currency"`
	To   string  `json:"to" binding:"required,currency,nefield=From"`
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

// ResolveQuery selects the pair to resolve
type ResolveQuery struct {
	From string `form:"from" binding:"required,currency"`
	To   string `form:"to" binding:"required,currency"`
}

// ResolveResponse is the API response for a resolved rate
type ResolveResponse struct {
	From Code    `json:"from"`
	To   Code    `json:"to"`
	Rate float64 `json:"rate"`
}

// ConvertRequest is the API request for conversion
type ConvertRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
	From   string   `json:"from" binding:"required,currency"`
	To     string   `json:"to" binding:"required,currency"`
}

// ConvertResponse is the API response for conversion
type ConvertResponse struct {
	OriginalAmount  float64 `json:"original_amount"`
	From            Code    `json:"from"`
	ConvertedAmount float64 `json:"converted_amount"`
	To              Code    `json:"to"`
	Rate            float64 `json:"rate"`
}

// RefreshResult summarises a feed refresh
type RefreshResult struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Conversions int       `json:"conversions"`
	Skipped     []Code    `json:"skipped,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}
