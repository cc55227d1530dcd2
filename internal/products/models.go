package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/internal/pricing"
	"github.com/richxcame/pos-pricing/pkg/pagination"
)

// Product is a sellable item. When it owns variants, its own cost and price
// are inert and its stock is the sum of the variant stocks.
type Product struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	OwnerID          uuid.UUID     `json:"owner_id" db:"owner_id"`
	Name             string        `json:"name" db:"name"`
	SKU              string        `json:"sku" db:"sku"`
	CostPrice        float64       `json:"cost_price" db:"cost_price"`
	CostCurrency     currency.Code `json:"cost_currency" db:"cost_currency"`
	SaleCurrency     currency.Code `json:"sale_currency" db:"sale_currency"`
	ProfitPercentage float64       `json:"profit_percentage" db:"profit_percentage"`
	Price            float64       `json:"price" db:"price"`
	Stock            int           `json:"stock" db:"stock"`
	Variants         []Variant     `json:"variants"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// Variant is a priced option of a product, such as a size or colour
type Variant struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	ProductID        uuid.UUID     `json:"product_id" db:"product_id"`
	Name             string        `json:"name" db:"name"`
	SKU              string        `json:"sku" db:"sku"`
	CostPrice        float64       `json:"cost_price" db:"cost_price"`
	CostCurrency     currency.Code `json:"cost_currency" db:"cost_currency"`
	SaleCurrency     currency.Code `json:"sale_currency" db:"sale_currency"`
	ProfitPercentage float64       `json:"profit_percentage" db:"profit_percentage"`
	Price            float64       `json:"price" db:"price"`
	Stock            int           `json:"stock" db:"stock"`
}

// HasVariants reports whether pricing is carried by the variants
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

func (p *Product) pricingInput() pricing.Input {
	return pricing.Input{
		Cost:             p.CostPrice,
		CostCurrency:     p.CostCurrency,
		ProfitPercentage: p.ProfitPercentage,
		SaleCurrency:     p.SaleCurrency,
	}
}

func (v *Variant) pricingInput() pricing.Input {
	return pricing.Input{
		Cost:             v.CostPrice,
		CostCurrency:     v.CostCurrency,
		ProfitPercentage: v.ProfitPercentage,
		SaleCurrency:     v.SaleCurrency,
	}
}

// CreateProductRequest creates a product with optional variants.
// A missing profit percentage takes the tenant's default.
type CreateProductRequest struct {
	Name             string           `json:"name" binding:"required,max=255"`
	SKU              string           `json:"sku" binding:"max=100"`
	CostPrice        *float64         `json:"cost_price" binding:"omitempty,gte=0"`
	CostCurrency     string           `json:"cost_currency" binding:"required,currency"`
	SaleCurrency     string           `json:"sale_currency" binding:"required,currency"`
	ProfitPercentage *float64         `json:"profit_percentage" binding:"omitempty,gte=0"`
	Stock            int              `json:"stock" binding:"gte=0"`
	Variants         []VariantRequest `json:"variants" binding:"omitempty,dive"`
}

// VariantRequest describes one variant. Missing currencies and margin fall
// back to the parent product's values.
type VariantRequest struct {
	Name             string   `json:"name" binding:"required,max=255"`
	SKU              string   `json:"sku" binding:"max=100"`
	CostPrice        *float64 `json:"cost_price" binding:"omitempty,gte=0"`
	CostCurrency     string   `json:"cost_currency" binding:"omitempty,currency"`
	SaleCurrency     string   `json:"sale_currency" binding:"omitempty,currency"`
	ProfitPercentage *float64 `json:"profit_percentage" binding:"omitempty,gte=0"`
	Stock            int      `json:"stock" binding:"gte=0"`
}

// UpdatePricingRequest changes the pricing inputs of a product without variants
type UpdatePricingRequest struct {
	CostPrice        *float64 `json:"cost_price" binding:"omitempty,gte=0"`
	CostCurrency     *string  `json:"cost_currency" binding:"omitempty,currency"`
	SaleCurrency     *string  `json:"sale_currency" binding:"omitempty,currency"`
	ProfitPercentage *float64 `json:"profit_percentage" binding:"omitempty,gte=0"`
	Stock            *int     `json:"stock" binding:"omitempty,gte=0"`
}

// ReplaceVariantsRequest swaps a product's variants wholesale
type ReplaceVariantsRequest struct {
	Variants []VariantRequest `json:"variants" binding:"dive"`
}

// DisplayQuery selects the preview currency
type DisplayQuery struct {
	Currency string `form:"currency" binding:"required,currency"`
}

// DisplayPrice previews a product, or each of its variants, in another currency
type DisplayPrice struct {
	ProductID uuid.UUID             `json:"product_id"`
	VariantID *uuid.UUID            `json:"variant_id,omitempty"`
	Name      string                `json:"name"`
	Display   pricing.DisplayResult `json:"display"`
}

// ListResponse is a page of products
type ListResponse struct {
	Products   []*Product      `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}
