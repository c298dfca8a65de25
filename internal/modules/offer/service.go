// README: Pairer combines outbound and return offers into priced round-trip pairs.
package offer

import (
	"tailwind/internal/logger"
	"tailwind/internal/types"
)

type Pairer struct {
	log logger.Logger
}

func NewPairer(log logger.Logger) *Pairer {
	return &Pairer{log: log}
}

// PairOutboundOnly wraps outbound offers as pairs with no return leg yet.
// In the round-trip flow, offers without a continuation token cannot chain a
// return search; they are dropped and logged, never surfaced as errors.
// One-way offers pass through with their own price untouched.
func (p *Pairer) PairOutboundOnly(offers []Offer, tripType types.TripType) []RoundTripPair {
	pairs := make([]RoundTripPair, 0, len(offers))
	for _, o := range offers {
		if tripType == types.TripRoundTrip && o.ContinuationToken == "" {
			p.log.Info("dropping outbound offer without continuation token",
				"airline", legAirline(o), "price", o.Price.Amount)
			continue
		}
		pairs = append(pairs, RoundTripPair{
			Outbound:          o,
			Total:             o.Price,
			ContinuationToken: o.ContinuationToken,
		})
	}
	return pairs
}

// PairWithReturns pairs one selected outbound offer with each return
// candidate fetched via that offer's continuation token. The provider prices
// the return phase as the whole round trip; the combined figure is split
// evenly across the two legs for display while the pair total keeps the
// provider's exact price.
func (p *Pairer) PairWithReturns(outbound Offer, returns []Offer) []RoundTripPair {
	pairs := make([]RoundTripPair, 0, len(returns))
	for _, ret := range returns {
		combined := ret.Price
		parts := combined.SplitEven(2)

		out := outbound
		out.Price = parts[0]
		r := ret
		r.Price = parts[1]

		pairs = append(pairs, RoundTripPair{
			Outbound:          out,
			Return:            &r,
			Total:             combined,
			ContinuationToken: outbound.ContinuationToken,
		})
	}
	return pairs
}

func legAirline(o Offer) string {
	if len(o.Legs) == 0 {
		return "unknown"
	}
	return o.Legs[0].Airline
}
