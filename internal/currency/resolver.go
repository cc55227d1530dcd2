package currency

// ResolveRate returns how many units of to one unit of from buys.
// It tries identity, the stored pair, then the stored inverse. Bridged pairs
// are only resolvable if the expansion job stored them.
func ResolveRate(from, to Code, store *RateStore) (float64, error) {
	if from == to {
		return 1, nil
	}

	if edge, ok := store.Edge(from, to); ok && validRate(edge.Rate) {
		return edge.Rate, nil
	}

	if edge, ok := store.Edge(to, from); ok && validRate(edge.Rate) {
		return 1 / edge.Rate, nil
	}

	return 0, rateNotFound(from, to)
}
