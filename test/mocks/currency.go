package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/stretchr/testify/mock"
)

// MockRateStoreProvider is a mock source of tenant rate stores
type MockRateStoreProvider struct {
	mock.Mock
}

func (m *MockRateStoreProvider) GetRateStore(ctx context.Context, ownerID uuid.UUID) (*currency.RateStore, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.RateStore), args.Error(1)
}

// MockRateRefresher is a mock of the periodic rate refresh job
type MockRateRefresher struct {
	mock.Mock
}

func (m *MockRateRefresher) RefreshAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
