package helpers

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
)

// FixtureTime is the timestamp stamped on fixture rates
var FixtureTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// CreateTestRateStore creates a rate store for owner holding USD->VES 40 and
// USD->EUR 0.9, and nothing bridging VES and EUR.
func CreateTestRateStore(ownerID uuid.UUID) *currency.RateStore {
	store := currency.NewRateStore(ownerID)
	store.DefaultProfitPercentage = 30
	store.CreatedAt = FixtureTime
	store.UpdatedAt = FixtureTime
	mustSet(store, currency.USD, currency.VES, 40)
	mustSet(store, currency.USD, currency.EUR, 0.9)
	return store
}

// CreateExpandedRateStore creates a rate store populated by expanding a feed snapshot over the whole universe
func CreateExpandedRateStore(ownerID uuid.UUID) *currency.RateStore {
	store := currency.NewRateStore(ownerID)
	store.DefaultProfitPercentage = 30
	quotes := map[currency.Code]float64{
		currency.EUR: 0.92, currency.VES: 36.5, currency.COP: 3950, currency.ARS: 870,
		currency.BRL: 4.95, currency.CLP: 930, currency.MXN: 17.1, currency.PEN: 3.72,
	}
	edges := currency.ExpandRates(currency.USD, quotes, currency.Supported, FixtureTime)
	if err := store.ReplaceConversions(edges); err != nil {
		panic(err)
	}
	return store
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string {
	return &v
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

func mustSet(store *currency.RateStore, from, to currency.Code, rate float64) {
	if err := store.Set(currency.ConversionEdge{From: from, To: to, Rate: rate, LastUpdated: FixtureTime}); err != nil {
		panic(err)
	}
}
