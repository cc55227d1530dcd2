package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/internal/pricing"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"github.com/richxcame/pos-pricing/pkg/pagination"
	"github.com/richxcame/pos-pricing/pkg/security"
	"go.uber.org/zap"
)

var (
	// ErrProductNotFound means the product does not exist for this owner
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidName means a product or variant name is empty once sanitised
	ErrInvalidName = errors.New("name must contain printable text")
)

const (
	maxNameLength = 255
	maxSKULength  = 100
)

// Service handles product business logic. Every mutation of pricing inputs
// reprices the product before it is persisted.
type Service struct {
	repo  RepositoryInterface
	rates RateStoreProvider
}

// NewService creates a new products service
func NewService(repo RepositoryInterface, rates RateStoreProvider) *Service {
	return &Service{repo: repo, rates: rates}
}

// CreateProduct builds, prices and stores a new product
func (s *Service) CreateProduct(ctx context.Context, ownerID uuid.UUID, req *CreateProductRequest) (*Product, error) {
	store, err := s.rateStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	costCurrency, err := currency.ParseCode(req.CostCurrency)
	if err != nil {
		return nil, err
	}
	saleCurrency, err := currency.ParseCode(req.SaleCurrency)
	if err != nil {
		return nil, err
	}

	name := security.SanitizeInput(req.Name, maxNameLength)
	if name == "" {
		return nil, ErrInvalidName
	}

	product := &Product{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         name,
		SKU:          security.SanitizeInput(req.SKU, maxSKULength),
		CostCurrency: costCurrency,
		SaleCurrency: saleCurrency,
		Stock:        req.Stock,
	}
	product.ProfitPercentage = valueOr(req.ProfitPercentage, store.DefaultProfitPercentage)

	if len(req.Variants) == 0 {
		if req.CostPrice == nil {
			return nil, &pricing.PricingError{ProductID: product.ID, Err: pricing.ErrInvalidCost}
		}
		product.CostPrice = *req.CostPrice
	} else {
		product.CostPrice = valueOr(req.CostPrice, 0)
		variants, err := buildVariants(product, req.Variants)
		if err != nil {
			return nil, err
		}
		product.Variants = variants
	}

	if err := RepriceEntity(product, store); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Int("variants", len(product.Variants)),
		zap.Float64("price", product.Price),
	)
	return product, nil
}

// GetProduct returns one of the owner's products
func (s *Service) GetProduct(ctx context.Context, ownerID, productID uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, ownerID, productID)
}

// ListProducts returns a page of the owner's products
func (s *Service) ListProducts(ctx context.Context, ownerID uuid.UUID, limit, offset int) (*ListResponse, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	if offset < 0 {
		offset = pagination.DefaultOffset
	}

	products, total, err := s.repo.ListProducts(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Products:   products,
		Pagination: pagination.BuildMeta(limit, offset, int64(total)),
	}, nil
}

// UpdatePricing applies new pricing inputs and reprices the product
func (s *Service) UpdatePricing(ctx context.Context, ownerID, productID uuid.UUID, req *UpdatePricingRequest) (*Product, error) {
	product, err := s.repo.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}
	store, err := s.rateStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.CostCurrency != nil {
		if product.CostCurrency, err = currency.ParseCode(*req.CostCurrency); err != nil {
			return nil, err
		}
	}
	if req.SaleCurrency != nil {
		if product.SaleCurrency, err = currency.ParseCode(*req.SaleCurrency); err != nil {
			return nil, err
		}
	}
	if req.ProfitPercentage != nil {
		product.ProfitPercentage = *req.ProfitPercentage
	}
	if req.Stock != nil && !product.HasVariants() {
		product.Stock = *req.Stock
	}

	if err := RepriceEntity(product, store); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceVariants swaps the product's variants and reprices it.
// An empty list turns the product back into a single-priced item.
func (s *Service) ReplaceVariants(ctx context.Context, ownerID, productID uuid.UUID, req *ReplaceVariantsRequest) (*Product, error) {
	product, err := s.repo.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}
	store, err := s.rateStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	variants, err := buildVariants(product, req.Variants)
	if err != nil {
		return nil, err
	}
	product.Variants = variants

	if err := RepriceEntity(product, store); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DisplayPrices previews the product, or each variant, in displayCurrency
func (s *Service) DisplayPrices(ctx context.Context, ownerID, productID uuid.UUID, displayCurrency currency.Code) ([]DisplayPrice, error) {
	product, err := s.repo.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	// A missing store still yields a degraded preview.
	store, err := s.rateStore(ctx, ownerID)
	if err != nil && !errors.Is(err, pricing.ErrMissingRateConfiguration) {
		return nil, err
	}

	if !product.HasVariants() {
		return []DisplayPrice{{
			ProductID: product.ID,
			Name:      product.Name,
			Display: pricing.CalculateProfitAndPriceForDisplay(
				product.CostPrice, product.CostCurrency, product.ProfitPercentage, store, displayCurrency),
		}}, nil
	}

	out := make([]DisplayPrice, 0, len(product.Variants))
	for i := range product.Variants {
		v := product.Variants[i]
		out = append(out, DisplayPrice{
			ProductID: product.ID,
			VariantID: &v.ID,
			Name:      v.Name,
			Display: pricing.CalculateProfitAndPriceForDisplay(
				v.CostPrice, v.CostCurrency, v.ProfitPercentage, store, displayCurrency),
		})
	}
	return out, nil
}

// RepriceAll reprices every product of the owner against one rate store
// snapshot. Products that fail to price keep their previous prices.
func (s *Service) RepriceAll(ctx context.Context, ownerID uuid.UUID) (repriced, failed int, err error) {
	store, err := s.rateStore(ctx, ownerID)
	if err != nil {
		return 0, 0, err
	}

	products, err := s.repo.ListAllProducts(ctx, ownerID)
	if err != nil {
		return 0, 0, err
	}

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return repriced, failed, err
		}

		if err := RepriceEntity(product, store); err != nil {
			failed++
			repriceTotal.WithLabelValues("failed").Inc()
			logger.WithContext(ctx).Warn("product could not be repriced",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if err := s.repo.UpdateProduct(ctx, product); err != nil {
			failed++
			repriceTotal.WithLabelValues("error").Inc()
			logger.WithContext(ctx).Error("failed to save repriced product",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
			continue
		}
		repriced++
		repriceTotal.WithLabelValues("repriced").Inc()
	}

	return repriced, failed, nil
}

func (s *Service) rateStore(ctx context.Context, ownerID uuid.UUID) (*currency.RateStore, error) {
	store, err := s.rates.GetRateStore(ctx, ownerID)
	if errors.Is(err, currency.ErrRateStoreNotFound) {
		return nil, fmt.Errorf("%w for owner %s", pricing.ErrMissingRateConfiguration, ownerID)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

func buildVariants(product *Product, reqs []VariantRequest) ([]Variant, error) {
	variants := make([]Variant, 0, len(reqs))
	for _, vr := range reqs {
		name := security.SanitizeInput(vr.Name, maxNameLength)
		if name == "" {
			return nil, ErrInvalidName
		}

		v := Variant{
			ID:               uuid.New(),
			ProductID:        product.ID,
			Name:             name,
			SKU:              security.SanitizeInput(vr.SKU, maxSKULength),
			CostCurrency:     product.CostCurrency,
			SaleCurrency:     product.SaleCurrency,
			ProfitPercentage: valueOr(vr.ProfitPercentage, product.ProfitPercentage),
			Stock:            vr.Stock,
		}
		if vr.CostPrice == nil {
			return nil, &pricing.PricingError{ProductID: product.ID, Variant: vr.Name, Err: pricing.ErrInvalidCost}
		}
		v.CostPrice = *vr.CostPrice

		var err error
		if vr.CostCurrency != "" {
			if v.CostCurrency, err = currency.ParseCode(vr.CostCurrency); err != nil {
				return nil, err
			}
		}
		if vr.SaleCurrency != "" {
			if v.SaleCurrency, err = currency.ParseCode(vr.SaleCurrency); err != nil {
				return nil, err
			}
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
