package products

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richxcame/pos-pricing/pkg/eventbus"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"go.uber.org/zap"
)

// EventHandler reprices products when a tenant's rates change
type EventHandler struct {
	service *Service
}

// NewEventHandler creates an event handler backed by the products service.
func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterSubscriptions subscribes to rate update events on the bus.
func (h *EventHandler) RegisterSubscriptions(ctx context.Context, bus *eventbus.Bus) error {
	if err := bus.Subscribe(ctx, eventbus.SubjectRatesUpdated, "products-reprice", h.handleRatesUpdated); err != nil {
		return fmt.Errorf("subscribe to %s: %w", eventbus.SubjectRatesUpdated, err)
	}
	logger.Info("products: subscribed to rate updates for repricing")
	return nil
}

func (h *EventHandler) handleRatesUpdated(ctx context.Context, event *eventbus.Event) error {
	var data eventbus.RatesUpdatedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal rates updated: %w", err)
	}

	repriced, failed, err := h.service.RepriceAll(ctx, data.OwnerID)
	if err != nil {
		logger.Error("products: failed to reprice after rate update",
			zap.String("owner_id", data.OwnerID.String()),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return fmt.Errorf("reprice products: %w", err)
	}

	logger.Info("products: repriced after rate update",
		zap.String("owner_id", data.OwnerID.String()),
		zap.String("source", data.Source),
		zap.Int("repriced", repriced),
		zap.Int("failed", failed),
	)
	return nil
}
