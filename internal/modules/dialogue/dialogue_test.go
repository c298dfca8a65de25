// README: Dialogue state machine and search-flow tests.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tailwind/internal/ai"
	"tailwind/internal/flights"
	"tailwind/internal/logger"
	"tailwind/internal/modules/booking"
	"tailwind/internal/modules/offer"
	"tailwind/internal/modules/trip"
	"tailwind/internal/types"
)

type fakeFiller struct {
	next func(userMessage string) (*ai.TripUpdate, error)
}

func (f *fakeFiller) NextUpdate(_ context.Context, userMessage, _ string, _ []ai.Turn) (*ai.TripUpdate, error) {
	return f.next(userMessage)
}

type fakeSearcher struct {
	outbound      []offer.Offer
	outboundErr   error
	returns       []offer.Offer
	returnsErr    error
	gotToken      string
	returnCalls   int
	outboundCalls int
}

func (f *fakeSearcher) SearchOutbound(_ context.Context, _ trip.Request) ([]offer.Offer, error) {
	f.outboundCalls++
	return f.outbound, f.outboundErr
}

func (f *fakeSearcher) SearchReturn(_ context.Context, _ trip.Request, token string) ([]offer.Offer, error) {
	f.returnCalls++
	f.gotToken = token
	return f.returns, f.returnsErr
}

type fakeBooker struct {
	ref   booking.Reference
	err   error
	calls int
}

func (f *fakeBooker) Resolve(_ context.Context, _ trip.Request, _ string) (booking.Reference, error) {
	f.calls++
	return f.ref, f.err
}

func strPtr(s string) *string                       { return &s }
func intPtr(n int) *int                             { return &n }
func tripPtr(t types.TripType) *types.TripType      { return &t }
func classPtr(c types.CabinClass) *types.CabinClass { return &c }
func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return &d
}

func fullUpdate(t *testing.T) *ai.TripUpdate {
	return &ai.TripUpdate{
		DepartureAirport: strPtr("CDG"),
		ArrivalAirport:   strPtr("AUS"),
		TripType:         tripPtr(types.TripRoundTrip),
		OutboundDate:     datePtr(t, "2025-06-01"),
		ReturnDate:       datePtr(t, "2025-06-08"),
		Adults:           intPtr(2),
		TravelClass:      classPtr(types.CabinBusiness),
		Message:          "All set.",
	}
}

func newTestController(filler ai.SlotFiller, searcher Searcher, booker Booker) *Controller {
	log := logger.NewNop()
	return NewController(filler, searcher, offer.NewPairer(log), booker, log)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StateCollecting, StateReady, true},
		{StateCollecting, StateExited, true},
		{StateReady, StateSearching, true},
		{StateReady, StateCollecting, true},
		{StateSearching, StateResults, true},
		{StateSearching, StateCollecting, true},
		{StateResults, StateCollecting, true},
		{StateResults, StateExited, true},
		// searching is never entered without completion
		{StateCollecting, StateSearching, false},
		// results require a search first
		{StateCollecting, StateResults, false},
		{StateReady, StateResults, false},
		// exited is terminal
		{StateExited, StateCollecting, false},
		{StateExited, StateReady, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestHandleTurnAccumulatesFieldsAcrossTurns(t *testing.T) {
	updates := []*ai.TripUpdate{
		{DepartureAirport: strPtr("CDG"), Message: "Where to?"},
		{ArrivalAirport: strPtr("AUS"), Message: "When?"},
	}
	i := 0
	filler := &fakeFiller{next: func(string) (*ai.TripUpdate, error) {
		upd := updates[i]
		i++
		return upd, nil
	}}
	ctrl := newTestController(filler, &fakeSearcher{}, &fakeBooker{})
	conv := newConversation("c1")
	ctx := context.Background()

	if _, err := ctrl.HandleTurn(ctx, conv, "from Paris"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if _, err := ctrl.HandleTurn(ctx, conv, "to Austin"); err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if conv.Request.DepartureAirport != "CDG" || conv.Request.ArrivalAirport != "AUS" {
		t.Errorf("request = %+v, lost accumulated fields", conv.Request)
	}
	if conv.State != StateCollecting {
		t.Errorf("state = %s, want collecting while incomplete", conv.State)
	}
}

func TestHandleTurnReachesReadyOnCompletion(t *testing.T) {
	filler := &fakeFiller{next: func(string) (*ai.TripUpdate, error) { return fullUpdate(t), nil }}
	ctrl := newTestController(filler, &fakeSearcher{}, &fakeBooker{})
	conv := newConversation("c1")

	res, err := ctrl.HandleTurn(context.Background(), conv, "book me the whole thing")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if conv.State != StateReady || !res.Complete {
		t.Errorf("state = %s complete = %v, want ready/true", conv.State, res.Complete)
	}
}

func TestHandleTurnIgnoresModelCompletionClaim(t *testing.T) {
	filler := &fakeFiller{next: func(string) (*ai.TripUpdate, error) {
		return &ai.TripUpdate{DepartureAirport: strPtr("CDG"), Completion: true}, nil
	}}
	ctrl := newTestController(filler, &fakeSearcher{}, &fakeBooker{})
	conv := newConversation("c1")

	res, err := ctrl.HandleTurn(context.Background(), conv, "CDG please")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if conv.State != StateCollecting || res.Complete {
		t.Errorf("model's completion claim leaked: state=%s complete=%v", conv.State, res.Complete)
	}
}

func TestHandleTurnRecoversFromExtractionFailure(t *testing.T) {
	filler := &fakeFiller{next: func(string) (*ai.TripUpdate, error) {
		return nil, fmt.Errorf("wrapped: %w", ai.ErrExtractionFailed)
	}}
	ctrl := newTestController(filler, &fakeSearcher{}, &fakeBooker{})
	conv := newConversation("c1")
	conv.Request.DepartureAirport = "CDG"

	res, err := ctrl.HandleTurn(context.Background(), conv, "garbled")
	if err != nil {
		t.Fatalf("extraction failure must not be fatal: %v", err)
	}
	if res.Message == "" {
		t.Error("user must get an explanation")
	}
	if conv.State != StateCollecting || conv.Request.DepartureAirport != "CDG" {
		t.Errorf("state/request disturbed by failed extraction: %s %+v", conv.State, conv.Request)
	}
}

func TestHandleTurnSurfacesValidationError(t *testing.T) {
	turnNo := 0
	filler := &fakeFiller{next: func(string) (*ai.TripUpdate, error) {
		turnNo++
		if turnNo == 1 {
			return &ai.TripUpdate{
				TripType:     tripPtr(types.TripRoundTrip),
				OutboundDate: datePtr(t, "2025-06-01"),
			}, nil
		}
		return &ai.TripUpdate{ReturnDate: datePtr(t, "2025-05-20")}, nil
	}}
	ctrl := newTestController(filler, &fakeSearcher{}, &fakeBooker{})
	conv := newConversation("c1")
	ctx := context.Background()

	if _, err := ctrl.HandleTurn(ctx, conv, "round trip june 1st"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	before := conv.Request

	res, err := ctrl.HandleTurn(ctx, conv, "coming back may 20")
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if conv.Request.Version != before.Version || !conv.Request.ReturnDate.IsZero() {
		t.Errorf("request changed by invalid merge: %+v", conv.Request)
	}
	if res.Message == "" || conv.State != StateCollecting {
		t.Errorf("validation failure must re-prompt in collecting: %q %s", res.Message, conv.State)
	}
}

func TestHandleTurnCancellation(t *testing.T) {
	for _, token := range []string{"quit", "EXIT", "  Quit  "} {
		ctrl := newTestController(&fakeFiller{}, &fakeSearcher{}, &fakeBooker{})
		conv := newConversation("c1")
		if _, err := ctrl.HandleTurn(context.Background(), conv, token); err != nil {
			t.Fatalf("cancel %q: %v", token, err)
		}
		if conv.State != StateExited {
			t.Errorf("cancel %q: state = %s, want exited", token, conv.State)
		}
	}
}

func readyConversation(t *testing.T, ctrl *Controller) *Conversation {
	t.Helper()
	conv := newConversation("c1")
	req, err := trip.Merge(trip.Request{}, *fullUpdate(t))
	if err != nil {
		t.Fatalf("setup merge: %v", err)
	}
	conv.Request = req
	conv.State = StateReady
	return conv
}

func TestStartSearchHappyPath(t *testing.T) {
	searcher := &fakeSearcher{outbound: []offer.Offer{
		{ContinuationToken: "tok-1", Price: types.Money{Amount: 400, Currency: "USD"}},
		{ContinuationToken: "tok-2", Price: types.Money{Amount: 500, Currency: "USD"}},
	}}
	ctrl := newTestController(&fakeFiller{}, searcher, &fakeBooker{})
	conv := readyConversation(t, ctrl)

	res, err := ctrl.StartSearch(context.Background(), conv)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if conv.State != StateResults || len(res.Pairs) != 2 {
		t.Errorf("state = %s pairs = %d", conv.State, len(res.Pairs))
	}
	for _, p := range res.Pairs {
		if p.Return != nil {
			t.Error("stage-1 pairs must be outbound-only")
		}
	}
}

func TestStartSearchRequiresReady(t *testing.T) {
	ctrl := newTestController(&fakeFiller{}, &fakeSearcher{}, &fakeBooker{})
	conv := newConversation("c1")

	if _, err := ctrl.StartSearch(context.Background(), conv); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestStartSearchFailureKeepsParameters(t *testing.T) {
	searcher := &fakeSearcher{outboundErr: fmt.Errorf("%w: 502", flights.ErrProvider)}
	ctrl := newTestController(&fakeFiller{}, searcher, &fakeBooker{})
	conv := readyConversation(t, ctrl)

	res, err := ctrl.StartSearch(context.Background(), conv)
	if err != nil {
		t.Fatalf("provider failure must surface as message: %v", err)
	}
	if conv.State != StateCollecting || res.Message == "" {
		t.Errorf("state = %s message = %q", conv.State, res.Message)
	}
	if conv.Request.DepartureAirport != "CDG" {
		t.Error("search failure must not lose collected parameters")
	}
}

func TestStartSearchEmptyResultExplains(t *testing.T) {
	ctrl := newTestController(&fakeFiller{}, &fakeSearcher{}, &fakeBooker{})
	conv := readyConversation(t, ctrl)

	res, err := ctrl.StartSearch(context.Background(), conv)
	if err != nil {
		t.Fatalf("empty result must not error: %v", err)
	}
	if conv.State != StateCollecting || res.Message == "" {
		t.Errorf("state = %s message = %q", conv.State, res.Message)
	}
}

func TestSelectOutboundChainsReturnSearch(t *testing.T) {
	searcher := &fakeSearcher{
		outbound: []offer.Offer{{ContinuationToken: "tok-1"}, {ContinuationToken: "tok-2"}},
		returns: []offer.Offer{
			{Price: types.Money{Amount: 1001, Currency: "USD"}, BookingToken: "book-1"},
		},
	}
	ctrl := newTestController(&fakeFiller{}, searcher, &fakeBooker{})
	conv := readyConversation(t, ctrl)
	ctx := context.Background()

	if _, err := ctrl.StartSearch(ctx, conv); err != nil {
		t.Fatalf("search: %v", err)
	}
	res, err := ctrl.SelectOutbound(ctx, conv, 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if searcher.gotToken != "tok-2" {
		t.Errorf("return search token = %q, want the selected offer's tok-2", searcher.gotToken)
	}
	if len(res.Pairs) != 1 || res.Pairs[0].Return == nil {
		t.Fatalf("pairs = %+v", res.Pairs)
	}
	if res.Pairs[0].ContinuationToken != "tok-2" {
		t.Error("pair references a token not issued by its outbound offer")
	}
	if res.Pairs[0].Total.Amount != 1001 {
		t.Errorf("pair total = %d, want provider combined 1001", res.Pairs[0].Total.Amount)
	}
}

func TestSelectOutboundReturnFailureKeepsSelection(t *testing.T) {
	searcher := &fakeSearcher{
		outbound:   []offer.Offer{{ContinuationToken: "tok-1"}},
		returnsErr: fmt.Errorf("%w: timeout", flights.ErrProvider),
	}
	ctrl := newTestController(&fakeFiller{}, searcher, &fakeBooker{})
	conv := readyConversation(t, ctrl)
	ctx := context.Background()

	if _, err := ctrl.StartSearch(ctx, conv); err != nil {
		t.Fatalf("search: %v", err)
	}
	res, err := ctrl.SelectOutbound(ctx, conv, 0)
	if err != nil {
		t.Fatalf("return failure must surface as message: %v", err)
	}
	if res.Message == "" || conv.State != StateResults || conv.Selected != 0 {
		t.Errorf("selection lost: message=%q state=%s selected=%d", res.Message, conv.State, conv.Selected)
	}

	// Retry succeeds without restarting the whole flow.
	searcher.returnsErr = nil
	searcher.returns = []offer.Offer{{Price: types.Money{Amount: 900, Currency: "USD"}}}
	if res, err = ctrl.SelectOutbound(ctx, conv, 0); err != nil || len(res.Pairs) != 1 {
		t.Fatalf("retry: pairs=%d err=%v", len(res.Pairs), err)
	}
}

func TestSelectOutboundOneWayIsDirectlyBookable(t *testing.T) {
	searcher := &fakeSearcher{outbound: []offer.Offer{{BookingToken: "book-1"}}}
	booker := &fakeBooker{ref: booking.Reference{URL: "https://example.com/book"}}
	ctrl := newTestController(&fakeFiller{}, searcher, booker)

	conv := newConversation("c1")
	upd := fullUpdate(t)
	upd.TripType = tripPtr(types.TripOneWay)
	upd.ReturnDate = nil
	req, err := trip.Merge(trip.Request{}, *upd)
	if err != nil {
		t.Fatalf("setup merge: %v", err)
	}
	conv.Request = req
	conv.State = StateReady
	ctx := context.Background()

	if _, err := ctrl.StartSearch(ctx, conv); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := ctrl.SelectOutbound(ctx, conv, 0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if searcher.returnCalls != 0 {
		t.Error("one-way selection must not trigger a return search")
	}
	ref, err := ctrl.ResolveBooking(ctx, conv, 0)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if ref.URL != "https://example.com/book" {
		t.Errorf("reference = %+v", ref)
	}
}

func TestResolveBookingSoftFailureKeepsSelection(t *testing.T) {
	searcher := &fakeSearcher{
		outbound: []offer.Offer{{ContinuationToken: "tok-1"}},
		returns:  []offer.Offer{{Price: types.Money{Amount: 800, Currency: "USD"}, BookingToken: "book-1"}},
	}
	booker := &fakeBooker{err: fmt.Errorf("%w: token expired", booking.ErrUnavailable)}
	ctrl := newTestController(&fakeFiller{}, searcher, booker)
	conv := readyConversation(t, ctrl)
	ctx := context.Background()

	if _, err := ctrl.StartSearch(ctx, conv); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := ctrl.SelectOutbound(ctx, conv, 0); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err := ctrl.ResolveBooking(ctx, conv, 0)
	if !errors.Is(err, booking.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if conv.Selected != 0 || len(conv.Paired) != 1 || conv.State != StateResults {
		t.Error("soft booking failure must preserve the selection for retry")
	}

	// Retry after the provider recovers.
	booker.err = nil
	booker.ref = booking.Reference{URL: "https://example.com/retry"}
	if ref, err := ctrl.ResolveBooking(ctx, conv, 0); err != nil || ref.URL == "" {
		t.Fatalf("retry: %v", err)
	}
}

func TestResetStartsFresh(t *testing.T) {
	ctrl := newTestController(&fakeFiller{}, &fakeSearcher{}, &fakeBooker{})
	conv := readyConversation(t, ctrl)
	conv.State = StateResults
	conv.Outbound = []offer.RoundTripPair{{}}
	conv.Selected = 0

	ctrl.Reset(conv)
	if conv.State != StateCollecting || conv.Request.Version != 0 || conv.Outbound != nil || conv.Selected != -1 {
		t.Errorf("reset left residue: %+v", conv)
	}
}
