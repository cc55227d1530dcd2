package scheduler

import "context"

// RateRefresher refreshes every tenant's rate store from the external feed.
// It returns the number of tenants refreshed.
type RateRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}
