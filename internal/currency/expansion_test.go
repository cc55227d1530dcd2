package currency

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRates_ThreeCurrencies(t *testing.T) {
	got := ExpandRates(USD, map[Code]float64{VES: 40.0, EUR: 0.9}, []Code{USD, VES, EUR}, testTime)

	want := []struct {
		from, to Code
		rate     float64
	}{
		{EUR, USD, 1 / 0.9},
		{EUR, VES, (1 / 0.9) * 40.0},
		{USD, EUR, 0.9},
		{USD, VES, 40.0},
		{VES, EUR, 0.0225},
		{VES, USD, 0.025},
	}

	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.from, got[i].From, "edge %d", i)
		assert.Equal(t, w.to, got[i].To, "edge %d", i)
		assert.InDelta(t, w.rate, got[i].Rate, 1e-9, "%s->%s", w.from, w.to)
		assert.Equal(t, testTime, got[i].LastUpdated)
	}

	assert.InDelta(t, 1.1111, got[0].Rate, 1e-4)
	assert.InDelta(t, 44.444, got[1].Rate, 1e-3)
}

func TestExpandRates_FullUniverseIsDense(t *testing.T) {
	quotes := map[Code]float64{
		EUR: 0.92, VES: 36.5, COP: 3950, ARS: 870, BRL: 4.95, CLP: 930, MXN: 17.1, PEN: 3.72,
	}

	got := ExpandRates(USD, quotes, Supported, testTime)
	assert.Len(t, got, len(Supported)*(len(Supported)-1))

	store := NewRateStore(uuid.New())
	require.NoError(t, store.ReplaceConversions(got), "expansion must never emit duplicate pairs")

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		assert.True(t, prev.From < cur.From || (prev.From == cur.From && prev.To < cur.To), "unsorted at %d", i)
	}
}

func TestExpandRates_SkipsUnusableQuotes(t *testing.T) {
	tests := []struct {
		name   string
		quotes map[Code]float64
	}{
		{"missing", map[Code]float64{VES: 40, EUR: 0.9}},
		{"zero", map[Code]float64{VES: 40, EUR: 0.9, COP: 0}},
		{"negative", map[Code]float64{VES: 40, EUR: 0.9, COP: -3950}},
		{"NaN", map[Code]float64{VES: 40, EUR: 0.9, COP: math.NaN()}},
	}

	universe := []Code{USD, VES, EUR, COP}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []ConversionEdge
			require.NotPanics(t, func() {
				got = ExpandRates(USD, tt.quotes, universe, testTime)
			})

			assert.Len(t, got, 6)
			for _, e := range got {
				assert.NotEqual(t, COP, e.From)
				assert.NotEqual(t, COP, e.To)
			}
			assert.Equal(t, []Code{COP}, SkippedQuotes(USD, tt.quotes, universe))
		})
	}
}

func TestExpandRates_NoQuotes(t *testing.T) {
	got := ExpandRates(USD, nil, Supported, testTime)
	assert.Empty(t, got)
}

func TestExpandRates_IgnoresAnchorQuote(t *testing.T) {
	got := ExpandRates(USD, map[Code]float64{USD: 1, EUR: 0.9}, []Code{USD, EUR}, testTime)

	require.Len(t, got, 2)
	for _, e := range got {
		assert.NotEqual(t, e.From, e.To)
	}
}

func TestExpandRates_CrossRatesMatchResolverThroughAnchor(t *testing.T) {
	quotes := map[Code]float64{VES: 36.5, COP: 3950}
	got := ExpandRates(USD, quotes, []Code{USD, VES, COP}, testTime)

	store := NewRateStore(uuid.New())
	require.NoError(t, store.ReplaceConversions(got))

	vesToCop, err := ResolveRate(VES, COP, store)
	require.NoError(t, err)
	assert.InDelta(t, 3950/36.5, vesToCop, 1e-9)

	copToVes, err := ResolveRate(COP, VES, store)
	require.NoError(t, err)
	assert.InDelta(t, 36.5/3950, copToVes, 1e-12)
}
