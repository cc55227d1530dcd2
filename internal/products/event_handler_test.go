package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/pkg/eventbus"
	"github.com/richxcame/pos-pricing/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func makeEvent(t *testing.T, data interface{}) *eventbus.Event {
	t.Helper()
	evt, err := eventbus.NewEvent(eventbus.EventTypeRatesUpdated, "pricing-service", data)
	require.NoError(t, err)
	return evt
}

func TestEventHandler_RepricesOwnerProducts(t *testing.T) {
	svc, repo, rates := newTestService()
	h := NewEventHandler(svc)
	ctx := context.Background()
	owner := uuid.New()
	product := simpleProduct()

	rates.On("GetRateStore", ctx, owner).Return(helpers.CreateTestRateStore(owner), nil)
	repo.On("ListAllProducts", ctx, owner).Return([]*Product{product}, nil)
	repo.On("UpdateProduct", ctx, product).Return(nil)

	err := h.handleRatesUpdated(ctx, makeEvent(t, eventbus.RatesUpdatedData{
		OwnerID:     owner,
		Source:      eventbus.RatesSourceFeed,
		Conversions: 2,
		UpdatedAt:   time.Now(),
	}))

	require.NoError(t, err)
	assert.Equal(t, 4800.0, product.Price)
	repo.AssertExpectations(t)
}

func TestEventHandler_MissingRateStore(t *testing.T) {
	svc, repo, rates := newTestService()
	h := NewEventHandler(svc)
	ctx := context.Background()
	owner := uuid.New()

	rates.On("GetRateStore", ctx, owner).Return(nil, currency.ErrRateStoreNotFound)

	err := h.handleRatesUpdated(ctx, makeEvent(t, eventbus.RatesUpdatedData{OwnerID: owner}))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "ListAllProducts", mock.Anything, mock.Anything)
}

func TestEventHandler_MalformedPayload(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewEventHandler(svc)

	evt := makeEvent(t, map[string]string{})
	evt.Data = []byte(`{"owner_id": 42`)

	assert.Error(t, h.handleRatesUpdated(context.Background(), evt))
}
