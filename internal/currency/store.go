package currency

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ConversionEdge is a directed one-hop rate: 1 From = Rate To
type ConversionEdge struct {
	From        Code      `json:"from"`
	To          Code      `json:"to"`
	Rate        float64   `json:"rate"`
	LastUpdated time.Time `json:"last_updated"`
}

// Validate checks both currencies and the rate
func (e ConversionEdge) Validate() error {
	if !e.From.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, e.From)
	}
	if !e.To.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, e.To)
	}
	if !validRate(e.Rate) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidRate, e.From, e.To)
	}
	return nil
}

type pairKey struct {
	from Code
	to   Code
}

// RateStore is one tenant's rate configuration. It holds at most one edge per
// (from,to) pair. A RateStore is not safe for concurrent mutation; services
// hand out clones and treat loaded stores as read-only snapshots.
type RateStore struct {
	OwnerID                         uuid.UUID
	DefaultProfitPercentage         float64
	PersonalRateThresholdPercentage float64
	PersonalRate                    float64
	OfficialRate                    float64
	LastOfficialUpdate              time.Time
	CreatedAt                       time.Time
	UpdatedAt                       time.Time

	edges map[pairKey]ConversionEdge
}

// NewRateStore returns an empty store for owner
func NewRateStore(owner uuid.UUID) *RateStore {
	return &RateStore{
		OwnerID: owner,
		edges:   make(map[pairKey]ConversionEdge),
	}
}

// Set inserts or replaces the edge for its pair
func (s *RateStore) Set(edge ConversionEdge) error {
	if err := edge.Validate(); err != nil {
		return err
	}
	if s.edges == nil {
		s.edges = make(map[pairKey]ConversionEdge)
	}
	s.edges[pairKey{edge.From, edge.To}] = edge
	return nil
}

// Edge returns the stored edge for (from,to), if any
func (s *RateStore) Edge(from, to Code) (ConversionEdge, bool) {
	if s == nil {
		return ConversionEdge{}, false
	}
	edge, ok := s.edges[pairKey{from, to}]
	return edge, ok
}

// Len returns the number of stored edges
func (s *RateStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.edges)
}

// Conversions returns the edges sorted by from, then to
func (s *RateStore) Conversions() []ConversionEdge {
	if s == nil {
		return nil
	}
	out := make([]ConversionEdge, 0, len(s.edges))
	for _, edge := range s.edges {
		out = append(out, edge)
	}
	sortEdges(out)
	return out
}

// ReplaceConversions swaps the whole conversion list. On error the store is left untouched.
func (s *RateStore) ReplaceConversions(edges []ConversionEdge) error {
	next := make(map[pairKey]ConversionEdge, len(edges))
	for _, edge := range edges {
		if err := edge.Validate(); err != nil {
			return err
		}
		key := pairKey{edge.From, edge.To}
		if _, dup := next[key]; dup {
			return fmt.Errorf("%w: %s to %s", ErrDuplicatePair, edge.From, edge.To)
		}
		next[key] = edge
	}
	s.edges = next
	return nil
}

// Validate checks the metadata ranges
func (s *RateStore) Validate() error {
	switch {
	case !inRange(s.DefaultProfitPercentage, 0, 500):
		return fmt.Errorf("%w: default profit percentage must be between 0 and 500", ErrInvalidConfiguration)
	case !inRange(s.PersonalRateThresholdPercentage, 0, 100):
		return fmt.Errorf("%w: personal rate threshold must be between 0 and 100", ErrInvalidConfiguration)
	case !inRange(s.PersonalRate, 0, math.MaxFloat64):
		return fmt.Errorf("%w: personal rate must not be negative", ErrInvalidConfiguration)
	case !inRange(s.OfficialRate, 0, math.MaxFloat64):
		return fmt.Errorf("%w: official rate must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

// Clone returns an independent copy
func (s *RateStore) Clone() *RateStore {
	if s == nil {
		return nil
	}
	clone := *s
	clone.edges = make(map[pairKey]ConversionEdge, len(s.edges))
	for k, v := range s.edges {
		clone.edges[k] = v
	}
	return &clone
}

// PersonalRateDeviation is the signed percentage by which the personal rate
// differs from the official rate. It is zero when either rate is unset.
func (s *RateStore) PersonalRateDeviation() float64 {
	if s.PersonalRate <= 0 || s.OfficialRate <= 0 {
		return 0
	}
	return (s.PersonalRate - s.OfficialRate) / s.OfficialRate * 100
}

// PersonalRateExceedsThreshold reports whether the personal rate drifted further
// from the official rate than the configured threshold allows.
func (s *RateStore) PersonalRateExceedsThreshold() bool {
	if s.PersonalRate <= 0 || s.OfficialRate <= 0 {
		return false
	}
	return math.Abs(s.PersonalRateDeviation()) > s.PersonalRateThresholdPercentage
}

type rateStoreJSON struct {
	OwnerID                         uuid.UUID        `json:"owner_id"`
	Conversions                     []ConversionEdge `json:"conversions"`
	DefaultProfitPercentage         float64          `json:"default_profit_percentage"`
	PersonalRateThresholdPercentage float64          `json:"personal_rate_threshold_percentage"`
	PersonalRate                    float64          `json:"personal_rate"`
	OfficialRate                    float64          `json:"official_rate"`
	LastOfficialUpdate              time.Time        `json:"last_official_update"`
	CreatedAt                       time.Time        `json:"created_at"`
	UpdatedAt                       time.Time        `json:"updated_at"`
}

// MarshalJSON writes conversions as an ordered list
func (s *RateStore) MarshalJSON() ([]byte, error) {
	conversions := s.Conversions()
	if conversions == nil {
		conversions = []ConversionEdge{}
	}
	return json.Marshal(rateStoreJSON{
		OwnerID:                         s.OwnerID,
		Conversions:                     conversions,
		DefaultProfitPercentage:         s.DefaultProfitPercentage,
		PersonalRateThresholdPercentage: s.PersonalRateThresholdPercentage,
		PersonalRate:                    s.PersonalRate,
		OfficialRate:                    s.OfficialRate,
		LastOfficialUpdate:              s.LastOfficialUpdate,
		CreatedAt:                       s.CreatedAt,
		UpdatedAt:                       s.UpdatedAt,
	})
}

// UnmarshalJSON rebuilds the store, rejecting invalid or duplicate edges
func (s *RateStore) UnmarshalJSON(data []byte) error {
	var raw rateStoreJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	store := NewRateStore(raw.OwnerID)
	if err := store.ReplaceConversions(raw.Conversions); err != nil {
		return err
	}
	store.DefaultProfitPercentage = raw.DefaultProfitPercentage
	store.PersonalRateThresholdPercentage = raw.PersonalRateThresholdPercentage
	store.PersonalRate = raw.PersonalRate
	store.OfficialRate = raw.OfficialRate
	store.LastOfficialUpdate = raw.LastOfficialUpdate
	store.CreatedAt = raw.CreatedAt
	store.UpdatedAt = raw.UpdatedAt

	*s = *store
	return nil
}

func sortEdges(edges []ConversionEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
