package currency

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWith(t *testing.T, edges ...ConversionEdge) *RateStore {
	t.Helper()
	store := NewRateStore(uuid.New())
	require.NoError(t, store.ReplaceConversions(edges))
	return store
}

func TestResolveRate_Identity(t *testing.T) {
	empty := NewRateStore(uuid.New())
	for _, code := range Supported {
		rate, err := ResolveRate(code, code, empty)
		require.NoError(t, err)
		assert.Equal(t, 1.0, rate)

		rate, err = ResolveRate(code, code, nil)
		require.NoError(t, err)
		assert.Equal(t, 1.0, rate)
	}
}

func TestResolveRate_DirectAndInverse(t *testing.T) {
	store := storeWith(t, edge(USD, VES, 40), edge(EUR, COP, 4400))

	tests := []struct {
		name     string
		from, to Code
		want     float64
	}{
		{"direct", USD, VES, 40},
		{"inverse", VES, USD, 0.025},
		{"second direct", EUR, COP, 4400},
		{"second inverse", COP, EUR, 1.0 / 4400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := ResolveRate(tt.from, tt.to, store)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate)
		})
	}
}

func TestResolveRate_PrefersDirectOverInverse(t *testing.T) {
	store := storeWith(t, edge(USD, EUR, 0.9), edge(EUR, USD, 1.12))

	rate, err := ResolveRate(EUR, USD, store)
	require.NoError(t, err)
	assert.Equal(t, 1.12, rate)
}

func TestResolveRate_NotFound(t *testing.T) {
	store := storeWith(t, edge(USD, VES, 40), edge(USD, EUR, 0.9))

	// No multi-hop through USD.
	rate, err := ResolveRate(VES, EUR, store)
	assert.ErrorIs(t, err, ErrRateNotFound)
	assert.Zero(t, rate)
	assert.Contains(t, err.Error(), "VES to EUR")

	_, err = ResolveRate(USD, VES, nil)
	assert.ErrorIs(t, err, ErrRateNotFound)
}
