// README: Pairing and price-split tests.
package offer

import (
	"testing"

	"tailwind/internal/logger"
	"tailwind/internal/types"
)

func money(n int64) types.Money { return types.Money{Amount: n, Currency: "USD"} }

func TestPairOutboundOnlyDropsTokenlessForRoundTrips(t *testing.T) {
	p := NewPairer(logger.NewNop())
	offers := []Offer{
		{ContinuationToken: "tok-1", Price: money(400)},
		{Price: money(350)}, // not chainable
		{ContinuationToken: "tok-3", Price: money(500)},
	}

	pairs := p.PairOutboundOnly(offers, types.TripRoundTrip)
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}
	for _, pair := range pairs {
		if pair.Return != nil {
			t.Error("outbound-only pair must have no return leg")
		}
		if pair.ContinuationToken == "" {
			t.Error("round-trip pair must keep its continuation token")
		}
	}
}

func TestPairOutboundOnlyPassesOneWayThrough(t *testing.T) {
	p := NewPairer(logger.NewNop())
	offers := []Offer{
		{Price: money(350), BookingToken: "b1"},
		{Price: money(420), BookingToken: "b2"},
	}

	pairs := p.PairOutboundOnly(offers, types.TripOneWay)
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2 (one-way offers are never dropped)", len(pairs))
	}
	if pairs[0].Total != money(350) {
		t.Errorf("one-way price changed: %+v", pairs[0].Total)
	}
}

func TestPairWithReturnsSplitsCombinedPriceExactly(t *testing.T) {
	p := NewPairer(logger.NewNop())
	outbound := Offer{ContinuationToken: "tok-1", Price: money(0)}

	cases := []struct {
		name         string
		combined     int64
		wantOutbound int64
		wantReturn   int64
	}{
		{name: "even total", combined: 1000, wantOutbound: 500, wantReturn: 500},
		{name: "odd total keeps exact sum", combined: 1001, wantOutbound: 501, wantReturn: 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pairs := p.PairWithReturns(outbound, []Offer{{Price: money(tc.combined), BookingToken: "b"}})
			if len(pairs) != 1 {
				t.Fatalf("pairs = %d", len(pairs))
			}
			pair := pairs[0]
			if pair.Total.Amount != tc.combined {
				t.Errorf("total = %d, want provider combined %d", pair.Total.Amount, tc.combined)
			}
			if pair.Outbound.Price.Amount != tc.wantOutbound || pair.Return.Price.Amount != tc.wantReturn {
				t.Errorf("split = %d + %d, want %d + %d",
					pair.Outbound.Price.Amount, pair.Return.Price.Amount, tc.wantOutbound, tc.wantReturn)
			}
			if got := pair.Outbound.Price.Amount + pair.Return.Price.Amount; got != tc.combined {
				t.Errorf("leg prices sum to %d, want %d", got, tc.combined)
			}
		})
	}
}

func TestPairWithReturnsStampsTokenProvenance(t *testing.T) {
	p := NewPairer(logger.NewNop())
	outbound := Offer{ContinuationToken: "tok-owner"}

	pairs := p.PairWithReturns(outbound, []Offer{{Price: money(800)}, {Price: money(950)}})
	for _, pair := range pairs {
		if pair.ContinuationToken != "tok-owner" {
			t.Errorf("pair token = %q, want the outbound offer's own token", pair.ContinuationToken)
		}
	}
}
