package currency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Name:      "rate_quotes_skipped_total",
		Help:      "Feed quotes skipped during cross-rate expansion because they were missing or not positive",
	}, []string{"currency"})

	feedRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Name:      "rate_feed_refresh_total",
		Help:      "Exchange rate feed refresh attempts by outcome",
	}, []string{"outcome"})

	feedRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pricing",
		Name:      "rate_feed_refresh_duration_seconds",
		Help:      "Time spent fetching and expanding the exchange rate feed",
		Buckets:   prometheus.DefBuckets,
	})

	expandedEdgesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pricing",
		Name:      "rate_expanded_edges",
		Help:      "Number of directed edges produced by the last successful expansion",
	})

	rateCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Name:      "rate_store_cache_total",
		Help:      "Rate store cache lookups by result",
	}, []string{"result"})
)
