package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/pos-pricing/internal/currency"
)

// Repository handles database operations for products
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new products repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, owner_id, name, sku, cost_price, cost_currency, sale_currency,
	profit_percentage, price, stock, created_at, updated_at`

// CreateProduct inserts a product and its variants
func (r *Repository) CreateProduct(ctx context.Context, product *Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO products (id, owner_id, name, sku, cost_price, cost_currency, sale_currency,
		                      profit_percentage, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`,
		product.ID, product.OwnerID, product.Name, product.SKU, product.CostPrice,
		string(product.CostCurrency), string(product.SaleCurrency), product.ProfitPercentage,
		product.Price, product.Stock,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := insertVariants(ctx, tx, product); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetProduct loads one of the owner's products with its variants
func (r *Repository) GetProduct(ctx context.Context, ownerID, productID uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND owner_id = $2`

	product, err := scanProduct(r.db.QueryRow(ctx, query, productID, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := r.loadVariants(ctx, []*Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns a page of the owner's products, newest first, and the total count
func (r *Repository) ListProducts(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Product, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListAllProducts returns every product of the owner
func (r *Repository) ListAllProducts(ctx context.Context, ownerID uuid.UUID) ([]*Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct saves the product's fields and replaces its variants in one transaction
func (r *Repository) UpdateProduct(ctx context.Context, product *Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE products
		SET name = $3, sku = $4, cost_price = $5, cost_currency = $6, sale_currency = $7,
		    profit_percentage = $8, price = $9, stock = $10, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING updated_at
	`,
		product.ID, product.OwnerID, product.Name, product.SKU, product.CostPrice,
		string(product.CostCurrency), string(product.SaleCurrency), product.ProfitPercentage,
		product.Price, product.Stock,
	).Scan(&product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear variants: %w", err)
	}
	if err := insertVariants(ctx, tx, product); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) loadVariants(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(products))
	byID := make(map[uuid.UUID]*Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, name, sku, cost_price, cost_currency, sale_currency,
		       profit_percentage, price, stock
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to get variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		var costCurrency, saleCurrency string
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.CostPrice, &costCurrency,
			&saleCurrency, &v.ProfitPercentage, &v.Price, &v.Stock); err != nil {
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		v.CostCurrency, v.SaleCurrency = currency.Code(costCurrency), currency.Code(saleCurrency)
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}

	return rows.Err()
}

func insertVariants(ctx context.Context, tx pgx.Tx, product *Product) error {
	if len(product.Variants) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, v := range product.Variants {
		batch.Queue(`
			INSERT INTO product_variants (id, product_id, position, name, sku, cost_price, cost_currency,
			                              sale_currency, profit_percentage, price, stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, v.ID, product.ID, i, v.Name, v.SKU, v.CostPrice, string(v.CostCurrency),
			string(v.SaleCurrency), v.ProfitPercentage, v.Price, v.Stock)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert variants: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	var costCurrency, saleCurrency string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.SKU, &p.CostPrice, &costCurrency, &saleCurrency,
		&p.ProfitPercentage, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CostCurrency, p.SaleCurrency = currency.Code(costCurrency), currency.Code(saleCurrency)
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]*Product, error) {
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
