package products

import (
	"errors"

	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/internal/pricing"
)

// RepriceEntity recomputes the derived prices of product against one rate
// store snapshot. With variants, every variant is priced before any price is
// written, so a single failure leaves the product exactly as it was; on success
// the product's stock becomes the sum of its variant stocks.
func RepriceEntity(product *Product, store *currency.RateStore) error {
	if store == nil {
		return pricing.ErrMissingRateConfiguration
	}

	if !product.HasVariants() {
		price, err := pricing.Price(product.pricingInput(), store)
		if err != nil {
			return withEntity(err, product, nil)
		}
		product.Price = price
		return nil
	}

	prices := make([]float64, len(product.Variants))
	stock := 0
	for i := range product.Variants {
		v := &product.Variants[i]
		price, err := pricing.Price(v.pricingInput(), store)
		if err != nil {
			return withEntity(err, product, v)
		}
		prices[i] = price
		stock += v.Stock
	}

	for i := range product.Variants {
		product.Variants[i].Price = prices[i]
	}
	product.Stock = stock
	return nil
}

func withEntity(err error, product *Product, variant *Variant) error {
	pe := &pricing.PricingError{ProductID: product.ID, Err: err}

	var inner *pricing.PricingError
	if errors.As(err, &inner) {
		pe.From, pe.To, pe.Err = inner.From, inner.To, inner.Err
	}
	if variant != nil {
		pe.VariantID = variant.ID
		pe.Variant = variant.Name
	}
	return pe
}
