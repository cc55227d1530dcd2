package currency

import (
	"time"

	"github.com/richxcame/pos-pricing/pkg/logger"
	"go.uber.org/zap"
)

// ExpandRates turns anchor-relative quotes ("1 anchor = quotes[X] X") into the
// full directed pair matrix over universe.
//
// Every currency with a usable quote gets anchor->X and X->anchor edges. Every
// other ordered pair is bridged through the anchor when both legs exist. A
// missing, zero, negative or non-finite quote only drops the edges that touch
// that currency. Output is sorted by from, then to, and stamped with fetchedAt.
func ExpandRates(anchor Code, quotes map[Code]float64, universe []Code, fetchedAt time.Time) []ConversionEdge {
	toAnchor := make(map[Code]float64, len(universe))
	fromAnchor := make(map[Code]float64, len(universe))
	emitted := make(map[pairKey]struct{}, len(universe)*len(universe))
	edges := make([]ConversionEdge, 0, len(universe)*len(universe))

	emit := func(from, to Code, rate float64) {
		key := pairKey{from, to}
		if _, seen := emitted[key]; seen {
			return
		}
		emitted[key] = struct{}{}
		edges = append(edges, ConversionEdge{From: from, To: to, Rate: rate, LastUpdated: fetchedAt})
	}

	for _, code := range universe {
		if code == anchor {
			continue
		}
		quote, ok := quotes[code]
		if !ok || !validRate(quote) {
			quotesSkippedTotal.WithLabelValues(string(code)).Inc()
			logger.Warn("skipping currency without a usable feed quote",
				zap.String("anchor", string(anchor)),
				zap.String("currency", string(code)),
				zap.Bool("present", ok),
				zap.Float64("quote", quote),
			)
			continue
		}

		fromAnchor[code] = quote
		toAnchor[code] = 1 / quote
		emit(anchor, code, quote)
		emit(code, anchor, 1/quote)
	}

	for _, a := range universe {
		for _, b := range universe {
			if a == b {
				continue
			}
			if _, seen := emitted[pairKey{a, b}]; seen {
				continue
			}
			aToAnchor, okA := toAnchor[a]
			anchorToB, okB := fromAnchor[b]
			if !okA || !okB {
				continue
			}
			emit(a, b, aToAnchor*anchorToB)
		}
	}

	sortEdges(edges)
	expandedEdgesGauge.Set(float64(len(edges)))
	return edges
}

// SkippedQuotes lists universe members other than anchor that ExpandRates would skip
func SkippedQuotes(anchor Code, quotes map[Code]float64, universe []Code) []Code {
	var skipped []Code
	for _, code := range universe {
		if code == anchor {
			continue
		}
		if quote, ok := quotes[code]; !ok || !validRate(quote) {
			skipped = append(skipped, code)
		}
	}
	return skipped
}
