package currency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/pkg/eventbus"
)

// RepositoryInterface defines the interface for rate store persistence
type RepositoryInterface interface {
	GetRateStore(ctx context.Context, ownerID uuid.UUID) (*RateStore, error)
	CreateRateStore(ctx context.Context, store *RateStore) error
	SaveRateStore(ctx context.Context, store *RateStore) error
	ReplaceConversions(ctx context.Context, ownerID uuid.UUID, edges []ConversionEdge, official OfficialRateUpdate) error
	ListOwners(ctx context.Context) ([]uuid.UUID, error)
}

// CacheInterface caches rate store snapshots per tenant
type CacheInterface interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*RateStore, bool)
	Set(ctx context.Context, store *RateStore)
	Invalidate(ctx context.Context, ownerID uuid.UUID)
}

// FeedInterface fetches anchor-relative quotes from the external provider
type FeedInterface interface {
	Latest(ctx context.Context, anchor Code) (*Quotes, error)
}

// EventPublisher publishes rate change notifications
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}

// Quotes is one feed snapshot: 1 Anchor = Rates[X] X
type Quotes struct {
	Anchor    Code
	Rates     map[Code]float64
	FetchedAt time.Time
}

// OfficialRateUpdate carries the official rate captured alongside a feed refresh.
// A zero Rate leaves the stored official rate unchanged.
type OfficialRateUpdate struct {
	Rate      float64
	UpdatedAt time.Time
}
