package products

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var repriceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pricing",
	Name:      "products_repriced_total",
	Help:      "Products processed by rate-change repricing, by outcome",
}, []string{"outcome"})
