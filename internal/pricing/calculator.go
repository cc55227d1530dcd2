package pricing

import (
	"math"

	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input holds the pricing fields shared by products and variants
type Input struct {
	Cost             float64
	CostCurrency     currency.Code
	ProfitPercentage float64
	SaleCurrency     currency.Code
}

// DisplayResult is a best-effort price preview in another currency.
// SalePrice and ProfitAmount are nil when the preview could not be computed.
type DisplayResult struct {
	SalePrice        *float64      `json:"sale_price"`
	ProfitAmount     *float64      `json:"profit_amount"`
	ProfitPercentage float64       `json:"profit_percentage"`
	Currency         currency.Code `json:"currency"`
}

// CalculateSalePrice applies a simple markup to cost and converts the result
// into the sale currency. Only the final value is rounded to two places.
func CalculateSalePrice(cost float64, costCurrency currency.Code, profitPercentage float64, store *currency.RateStore, saleCurrency currency.Code) (float64, error) {
	base, err := markup(cost, profitPercentage)
	if err != nil {
		return 0, err
	}

	if costCurrency != saleCurrency {
		base, err = convert(base, costCurrency, saleCurrency, store)
		if err != nil {
			return 0, &PricingError{From: costCurrency, To: saleCurrency, Err: err}
		}
	}

	return currency.RoundDecimal(base, currency.PricePlaces), nil
}

// Price is CalculateSalePrice over an Input
func Price(in Input, store *currency.RateStore) (float64, error) {
	return CalculateSalePrice(in.Cost, in.CostCurrency, in.ProfitPercentage, store, in.SaleCurrency)
}

// CalculateProfitAndPriceForDisplay computes the sale price and profit in the
// cost currency and converts each into displayCurrency. It never fails.
func CalculateProfitAndPriceForDisplay(cost float64, costCurrency currency.Code, profitPercentage float64, store *currency.RateStore, displayCurrency currency.Code) DisplayResult {
	result := DisplayResult{ProfitPercentage: profitPercentage, Currency: displayCurrency}

	sale, err := markup(cost, profitPercentage)
	if err != nil {
		return result
	}
	profit := sale.Sub(decimal.NewFromFloat(cost))

	if costCurrency != displayCurrency {
		if sale, err = convert(sale, costCurrency, displayCurrency, store); err != nil {
			return result
		}
		if profit, err = convert(profit, costCurrency, displayCurrency, store); err != nil {
			return result
		}
	}

	salePrice := currency.RoundDecimal(sale, currency.PricePlaces)
	profitAmount := currency.RoundDecimal(profit, currency.PricePlaces)
	result.SalePrice = &salePrice
	result.ProfitAmount = &profitAmount
	return result
}

func markup(cost, profitPercentage float64) (decimal.Decimal, error) {
	if !finite(cost) || cost < 0 {
		return decimal.Zero, ErrInvalidCost
	}
	if !finite(profitPercentage) || profitPercentage < 0 {
		return decimal.Zero, ErrInvalidMargin
	}

	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(profitPercentage).Div(hundred))
	return decimal.NewFromFloat(cost).Mul(factor), nil
}

// convert follows currency.ConvertAmount: the converted amount is held at four places.
func convert(amount decimal.Decimal, from, to currency.Code, store *currency.RateStore) (decimal.Decimal, error) {
	converted, err := currency.ConvertDecimal(amount, from, to, store)
	if err != nil {
		return decimal.Zero, err
	}
	return converted.Round(currency.RatePlaces), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
