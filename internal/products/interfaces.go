package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
)

// RepositoryInterface defines the interface for product persistence
type RepositoryInterface interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, ownerID, productID uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Product, int, error)
	ListAllProducts(ctx context.Context, ownerID uuid.UUID) ([]*Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
}

// RateStoreProvider supplies the rate store snapshot used to price a tenant's products
type RateStoreProvider interface {
	GetRateStore(ctx context.Context, ownerID uuid.UUID) (*currency.RateStore, error)
}
