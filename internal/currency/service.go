package currency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/pkg/eventbus"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"go.uber.org/zap"
)

// ServiceConfig tunes the rate service
type ServiceConfig struct {
	Anchor                  Code
	OfficialCurrency        Code
	DefaultProfitPercentage float64
	EventSource             string
}

// Service handles rate store business logic
type Service struct {
	repo      RepositoryInterface
	feed      FeedInterface
	cache     CacheInterface
	publisher EventPublisher
	config    ServiceConfig
	now       func() time.Time

	mu           sync.RWMutex
	lastExpanded []ConversionEdge
	lastOfficial OfficialRateUpdate
}

// NewService creates a new rate service. feed, cache and publisher are optional.
func NewService(repo RepositoryInterface, feed FeedInterface, cache CacheInterface, publisher EventPublisher, cfg ServiceConfig) *Service {
	if cfg.Anchor == "" {
		cfg.Anchor = DefaultAnchor
	}
	if cfg.EventSource == "" {
		cfg.EventSource = "pricing-service"
	}

	return &Service{
		repo:      repo,
		feed:      feed,
		cache:     cache,
		publisher: publisher,
		config:    cfg,
		now:       time.Now,
	}
}

// Anchor returns the configured anchor currency
func (s *Service) Anchor() Code {
	return s.config.Anchor
}

// GetRateStore returns a snapshot of the tenant's rate store
func (s *Service) GetRateStore(ctx context.Context, ownerID uuid.UUID) (*RateStore, error) {
	if s.cache != nil {
		if store, ok := s.cache.Get(ctx, ownerID); ok {
			return store, nil
		}
	}

	store, err := s.repo.GetRateStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, store)
	}
	return store, nil
}

// CreateRateStore bootstraps a tenant with the most recent expanded feed edges
func (s *Service) CreateRateStore(ctx context.Context, ownerID uuid.UUID) (*RateStore, error) {
	store := NewRateStore(ownerID)
	store.DefaultProfitPercentage = s.config.DefaultProfitPercentage

	s.mu.RLock()
	seed := s.lastExpanded
	official := s.lastOfficial
	s.mu.RUnlock()

	if err := store.ReplaceConversions(seed); err != nil {
		return nil, fmt.Errorf("failed to seed rate store: %w", err)
	}
	store.OfficialRate = official.Rate
	store.LastOfficialUpdate = official.UpdatedAt

	if err := store.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateRateStore(ctx, store); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("rate store created",
		zap.String("owner_id", ownerID.String()),
		zap.Int("conversions", store.Len()),
	)
	return store, nil
}

// UpdateConfiguration replaces the tenant's conversions and applies metadata changes
func (s *Service) UpdateConfiguration(ctx context.Context, ownerID uuid.UUID, req *UpdateConfigRequest) (*RateStore, error) {
	current, err := s.GetRateStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	edges := make([]ConversionEdge, 0, len(req.Conversions))
	for _, in := range req.Conversions {
		from, err := ParseCode(in.From)
		if err != nil {
			return nil, err
		}
		to, err := ParseCode(in.To)
		if err != nil {
			return nil, err
		}
		edges = append(edges, ConversionEdge{From: from, To: to, Rate: in.Rate, LastUpdated: now})
	}

	store := current.Clone()
	if err := store.ReplaceConversions(edges); err != nil {
		return nil, err
	}
	if req.DefaultProfitPercentage != nil {
		store.DefaultProfitPercentage = *req.DefaultProfitPercentage
	}
	if req.PersonalRateThresholdPercentage != nil {
		store.PersonalRateThresholdPercentage = *req.PersonalRateThresholdPercentage
	}
	if req.PersonalRate != nil {
		store.PersonalRate = *req.PersonalRate
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.SaveRateStore(ctx, store); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)

	if store.PersonalRateExceedsThreshold() {
		logger.WithContext(ctx).Warn("personal rate deviates from official rate beyond threshold",
			zap.String("owner_id", ownerID.String()),
			zap.Float64("deviation_pct", store.PersonalRateDeviation()),
			zap.Float64("threshold_pct", store.PersonalRateThresholdPercentage),
		)
	}

	s.publishRatesUpdated(ctx, ownerID, eventbus.RatesSourceManual, store.Len(), now)
	return store, nil
}

// RefreshFromFeed pulls the feed, expands it and replaces the tenant's conversions
func (s *Service) RefreshFromFeed(ctx context.Context, ownerID uuid.UUID) (*RefreshResult, error) {
	snapshot, err := s.fetchExpanded(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceConversions(ctx, ownerID, snapshot.edges, snapshot.official); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	s.publishRatesUpdated(ctx, ownerID, eventbus.RatesSourceFeed, len(snapshot.edges), snapshot.fetchedAt)

	return &RefreshResult{
		OwnerID:     ownerID,
		Conversions: len(snapshot.edges),
		Skipped:     snapshot.skipped,
		FetchedAt:   snapshot.fetchedAt,
	}, nil
}

// RefreshAll fetches the feed once and replaces every tenant's conversions.
// A failure for one tenant is logged and does not stop the others.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	snapshot, err := s.fetchExpanded(ctx)
	if err != nil {
		return 0, err
	}

	owners, err := s.repo.ListOwners(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, ownerID := range owners {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if err := s.repo.ReplaceConversions(ctx, ownerID, snapshot.edges, snapshot.official); err != nil {
			logger.WithContext(ctx).Error("failed to refresh tenant rates",
				zap.String("owner_id", ownerID.String()),
				zap.Error(err),
			)
			continue
		}
		s.invalidate(ctx, ownerID)
		s.publishRatesUpdated(ctx, ownerID, eventbus.RatesSourceFeed, len(snapshot.edges), snapshot.fetchedAt)
		refreshed++
	}

	logger.WithContext(ctx).Info("exchange rates refreshed",
		zap.Int("tenants", len(owners)),
		zap.Int("refreshed", refreshed),
		zap.Int("conversions", len(snapshot.edges)),
	)
	return refreshed, nil
}

// ResolveRate resolves a pair against the tenant's store
func (s *Service) ResolveRate(ctx context.Context, ownerID uuid.UUID, from, to Code) (float64, error) {
	store, err := s.GetRateStore(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return ResolveRate(from, to, store)
}

// Convert converts amount between currencies using the tenant's store
func (s *Service) Convert(ctx context.Context, ownerID uuid.UUID, amount float64, from, to Code) (*ConvertResponse, error) {
	store, err := s.GetRateStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	converted, err := ConvertAmount(amount, from, to, store)
	if err != nil {
		return nil, err
	}
	rate, _ := ResolveRate(from, to, store)

	return &ConvertResponse{
		OriginalAmount:  amount,
		From:            from,
		ConvertedAmount: converted,
		To:              to,
		Rate:            rate,
	}, nil
}

type expandedSnapshot struct {
	edges     []ConversionEdge
	official  OfficialRateUpdate
	skipped   []Code
	fetchedAt time.Time
}

func (s *Service) fetchExpanded(ctx context.Context) (*expandedSnapshot, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("%w: no feed configured", ErrFeedUnavailable)
	}

	start := s.now()
	quotes, err := s.feed.Latest(ctx, s.config.Anchor)
	feedRefreshDuration.Observe(s.now().Sub(start).Seconds())
	if err != nil {
		feedRefreshTotal.WithLabelValues("error").Inc()
		if !errors.Is(err, ErrFeedUnavailable) {
			err = fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
		}
		return nil, err
	}

	snapshot := &expandedSnapshot{
		edges:     ExpandRates(s.config.Anchor, quotes.Rates, Supported, quotes.FetchedAt),
		skipped:   SkippedQuotes(s.config.Anchor, quotes.Rates, Supported),
		fetchedAt: quotes.FetchedAt,
	}
	if s.config.OfficialCurrency != "" && s.config.OfficialCurrency != s.config.Anchor {
		if rate, ok := quotes.Rates[s.config.OfficialCurrency]; ok && validRate(rate) {
			snapshot.official = OfficialRateUpdate{Rate: rate, UpdatedAt: quotes.FetchedAt}
		}
	}

	if len(snapshot.edges) == 0 {
		feedRefreshTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: feed produced no usable quotes", ErrFeedUnavailable)
	}
	feedRefreshTotal.WithLabelValues("success").Inc()

	s.mu.Lock()
	s.lastExpanded = snapshot.edges
	if snapshot.official.Rate > 0 {
		s.lastOfficial = snapshot.official
	}
	s.mu.Unlock()

	return snapshot, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownerID)
	}
}

func (s *Service) publishRatesUpdated(ctx context.Context, ownerID uuid.UUID, source string, conversions int, updatedAt time.Time) {
	if s.publisher == nil {
		return
	}

	event, err := eventbus.NewEvent(eventbus.EventTypeRatesUpdated, s.config.EventSource, eventbus.RatesUpdatedData{
		OwnerID:     ownerID,
		Source:      source,
		Conversions: conversions,
		UpdatedAt:   updatedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, eventbus.SubjectRatesUpdated, event)
	}
	if err != nil {
		logger.WithContext(ctx).Warn("failed to publish rates updated event",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
	}
}
