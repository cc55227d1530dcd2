package currency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository handles database operations for rate stores
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new currency repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetRateStore loads a tenant's rate store with its conversions
func (r *Repository) GetRateStore(ctx context.Context, ownerID uuid.UUID) (*RateStore, error) {
	query := `
		SELECT default_profit_percentage, personal_rate_threshold_percentage,
		       personal_rate, official_rate, last_official_update, created_at, updated_at
		FROM rate_stores
		WHERE owner_id = $1
	`

	store := NewRateStore(ownerID)
	var lastOfficial *time.Time
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&store.DefaultProfitPercentage, &store.PersonalRateThresholdPercentage,
		&store.PersonalRate, &store.OfficialRate, &lastOfficial,
		&store.CreatedAt, &store.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRateStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate store: %w", err)
	}
	if lastOfficial != nil {
		store.LastOfficialUpdate = *lastOfficial
	}

	rows, err := r.db.Query(ctx, `
		SELECT from_currency, to_currency, rate, last_updated
		FROM rate_conversions
		WHERE owner_id = $1
		ORDER BY position
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversions: %w", err)
	}
	defer rows.Close()

	edges := make([]ConversionEdge, 0)
	for rows.Next() {
		var e ConversionEdge
		var from, to string
		if err := rows.Scan(&from, &to, &e.Rate, &e.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		e.From, e.To = Code(from), Code(to)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversions: %w", err)
	}

	if err := store.ReplaceConversions(edges); err != nil {
		return nil, fmt.Errorf("stored conversions for %s are invalid: %w", ownerID, err)
	}

	return store, nil
}

// CreateRateStore inserts a new rate store and its seed conversions
func (r *Repository) CreateRateStore(ctx context.Context, store *RateStore) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO rate_stores (owner_id, default_profit_percentage, personal_rate_threshold_percentage,
		                         personal_rate, official_rate, last_official_update)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`,
		store.OwnerID, store.DefaultProfitPercentage, store.PersonalRateThresholdPercentage,
		store.PersonalRate, store.OfficialRate, nullableTime(store.LastOfficialUpdate),
	).Scan(&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrRateStoreExists
		}
		return fmt.Errorf("failed to create rate store: %w", err)
	}

	if err := copyConversions(ctx, tx, store.OwnerID, store.Conversions()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SaveRateStore replaces metadata and conversions of an existing store
func (r *Repository) SaveRateStore(ctx context.Context, store *RateStore) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE rate_stores
		SET default_profit_percentage = $2,
		    personal_rate_threshold_percentage = $3,
		    personal_rate = $4,
		    official_rate = $5,
		    last_official_update = $6,
		    updated_at = NOW()
		WHERE owner_id = $1
		RETURNING updated_at
	`,
		store.OwnerID, store.DefaultProfitPercentage, store.PersonalRateThresholdPercentage,
		store.PersonalRate, store.OfficialRate, nullableTime(store.LastOfficialUpdate),
	).Scan(&store.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRateStoreNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update rate store: %w", err)
	}

	if err := replaceConversions(ctx, tx, store.OwnerID, store.Conversions()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReplaceConversions swaps a tenant's conversions for a feed snapshot and records the official rate
func (r *Repository) ReplaceConversions(ctx context.Context, ownerID uuid.UUID, edges []ConversionEdge, official OfficialRateUpdate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE rate_stores
		SET official_rate = CASE WHEN $2::float8 > 0 THEN $2::float8 ELSE official_rate END,
		    last_official_update = CASE WHEN $2::float8 > 0 THEN $3::timestamptz ELSE last_official_update END,
		    updated_at = NOW()
		WHERE owner_id = $1
	`, ownerID, official.Rate, nullableTime(official.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to update official rate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRateStoreNotFound
	}

	if err := replaceConversions(ctx, tx, ownerID, edges); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListOwners returns every tenant with a rate store
func (r *Repository) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT owner_id FROM rate_stores ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate store owners: %w", err)
	}
	defer rows.Close()

	owners := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}

	return owners, rows.Err()
}

func replaceConversions(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, edges []ConversionEdge) error {
	if _, err := tx.Exec(ctx, `DELETE FROM rate_conversions WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("failed to clear conversions: %w", err)
	}
	return copyConversions(ctx, tx, ownerID, edges)
}

func copyConversions(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, edges []ConversionEdge) error {
	if len(edges) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"rate_conversions"},
		[]string{"owner_id", "position", "from_currency", "to_currency", "rate", "last_updated"},
		pgx.CopyFromSlice(len(edges), func(i int) ([]any, error) {
			e := edges[i]
			return []any{ownerID, i, string(e.From), string(e.To), e.Rate, e.LastUpdated}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy conversions: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
