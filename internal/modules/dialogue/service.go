// README: Dialogue controller: extract-merge-completion loop and search flow.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tailwind/internal/ai"
	"tailwind/internal/logger"
	"tailwind/internal/modules/booking"
	"tailwind/internal/modules/offer"
	"tailwind/internal/modules/trip"
	"tailwind/internal/types"
)

var (
	ErrInvalidState = errors.New("action not allowed in current dialogue state")
	ErrNoSuchOffer  = errors.New("no offer at that position")
)

// cancellation tokens recognized case-insensitively on any turn.
var cancelTokens = map[string]bool{"quit": true, "exit": true}

// Searcher is the two-phase search surface the controller drives.
type Searcher interface {
	SearchOutbound(ctx context.Context, req trip.Request) ([]offer.Offer, error)
	SearchReturn(ctx context.Context, req trip.Request, continuationToken string) ([]offer.Offer, error)
}

// Booker resolves a selected offer's booking token.
type Booker interface {
	Resolve(ctx context.Context, req trip.Request, bookingToken string) (booking.Reference, error)
}

type Controller struct {
	filler ai.SlotFiller
	search Searcher
	pairer *offer.Pairer
	booker Booker
	log    logger.Logger
}

func NewController(filler ai.SlotFiller, search Searcher, pairer *offer.Pairer, booker Booker, log logger.Logger) *Controller {
	return &Controller{filler: filler, search: search, pairer: pairer, booker: booker, log: log}
}

// TurnResult is what one processed user turn reports back to the boundary.
type TurnResult struct {
	Message  string
	Snapshot string
	State    State
	Complete bool
}

// HandleTurn runs one extract-merge-completion cycle. Extraction and merge
// failures are non-fatal: they surface as assistant messages and the state
// stays in collecting for the next attempt. Previously confirmed fields are
// never lost on a turn that only supplies a subset.
func (c *Controller) HandleTurn(ctx context.Context, conv *Conversation, text string) (TurnResult, error) {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if cancelTokens[strings.ToLower(strings.TrimSpace(text))] {
		conv.State = StateExited
		return c.result(conv, "Okay, stopping here. Come back any time."), nil
	}

	switch conv.State {
	case StateCollecting, StateReady:
	case StateExited:
		return TurnResult{}, ErrInvalidState
	default:
		return c.result(conv, "We already have results on screen. Select an offer, book it, or start a new search."), nil
	}

	conv.Transcript = append(conv.Transcript, ai.Turn{Role: "user", Content: text})

	upd, err := c.filler.NextUpdate(ctx, text, conv.Request.SnapshotJSON(), conv.Transcript)
	if err != nil {
		c.log.Warn("slot extraction failed", "conversation", conv.ID, "error", err)
		return c.reply(conv, "Sorry, I didn't catch that. Could you say it another way?"), nil
	}

	merged, err := trip.Merge(conv.Request, *upd)
	if err != nil {
		// state unchanged, user gets the validation detail
		return c.reply(conv, validationMessage(err)), nil
	}
	conv.Request = merged

	// The transition to ready depends solely on the recomputed completion
	// flag; the model's own claim never short-circuits it.
	if conv.Request.Complete && conv.State == StateCollecting {
		conv.State = StateReady
	}
	if !conv.Request.Complete && conv.State == StateReady {
		conv.State = StateCollecting
	}

	msg := upd.Message
	if msg == "" {
		msg = c.promptFor(conv.Request)
	}
	return c.reply(conv, msg), nil
}

// SearchResult reports the outcome of a search or selection action.
type SearchResult struct {
	Pairs   []offer.RoundTripPair
	Message string
	State   State
}

// StartSearch runs the outbound phase. It is only triggered explicitly, so a
// user may keep revising parameters after completion. Provider failure or an
// empty result set drops the dialogue back to collecting with an explanation;
// it never loses collected parameters.
func (c *Controller) StartSearch(ctx context.Context, conv *Conversation) (SearchResult, error) {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if !CanTransition(conv.State, StateSearching) {
		return SearchResult{}, fmt.Errorf("%w: state %s", ErrInvalidState, conv.State)
	}
	conv.State = StateSearching

	offers, err := c.search.SearchOutbound(ctx, conv.Request)
	if err != nil {
		c.log.Warn("outbound search failed", "conversation", conv.ID, "error", err)
		conv.State = StateCollecting
		return SearchResult{
			Message: "The flight search did not go through. Your trip details are saved; try again in a moment.",
			State:   conv.State,
		}, nil
	}

	pairs := c.pairer.PairOutboundOnly(offers, conv.Request.TripType)
	if len(pairs) == 0 {
		conv.State = StateCollecting
		return SearchResult{
			Message: "No flights matched those criteria. Want to adjust the dates or airports?",
			State:   conv.State,
		}, nil
	}

	conv.State = StateResults
	conv.Outbound = pairs
	conv.Selected = -1
	conv.Paired = nil
	return SearchResult{Pairs: pairs, State: conv.State}, nil
}

// SelectOutbound records the user's choice among the stage-1 offers. For
// round trips it triggers the dependent return search with the chosen offer's
// continuation token; one-way selections are immediately bookable. A failed
// return search keeps the selection so the user can retry.
func (c *Controller) SelectOutbound(ctx context.Context, conv *Conversation, index int) (SearchResult, error) {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.State != StateResults {
		return SearchResult{}, fmt.Errorf("%w: state %s", ErrInvalidState, conv.State)
	}
	if index < 0 || index >= len(conv.Outbound) {
		return SearchResult{}, fmt.Errorf("%w: index %d of %d", ErrNoSuchOffer, index, len(conv.Outbound))
	}

	conv.Selected = index
	conv.Paired = nil
	selected := conv.Outbound[index]

	if conv.Request.TripType != types.TripRoundTrip {
		return SearchResult{
			Pairs:   []offer.RoundTripPair{selected},
			Message: "Ready to book this flight whenever you are.",
			State:   conv.State,
		}, nil
	}

	returns, err := c.search.SearchReturn(ctx, conv.Request, selected.ContinuationToken)
	if err != nil {
		c.log.Warn("return search failed", "conversation", conv.ID, "error", err)
		return SearchResult{
			Message: "Couldn't fetch return flights for that option. Your selection is kept; try again.",
			State:   conv.State,
		}, nil
	}

	pairs := c.pairer.PairWithReturns(selected.Outbound, returns)
	if len(pairs) == 0 {
		return SearchResult{
			Message: "No return flights matched. Pick a different outbound option or adjust the return date.",
			State:   conv.State,
		}, nil
	}
	conv.Paired = pairs
	return SearchResult{Pairs: pairs, State: conv.State}, nil
}

// ResolveBooking books either a stage-2 pair (round trip) or the selected
// one-way offer. booking.ErrUnavailable is soft: the selection stays intact
// for a retry or re-search.
func (c *Controller) ResolveBooking(ctx context.Context, conv *Conversation, index int) (booking.Reference, error) {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if conv.State != StateResults {
		return booking.Reference{}, fmt.Errorf("%w: state %s", ErrInvalidState, conv.State)
	}

	token, err := c.bookingToken(conv, index)
	if err != nil {
		return booking.Reference{}, err
	}
	return c.booker.Resolve(ctx, conv.Request, token)
}

func (c *Controller) bookingToken(conv *Conversation, index int) (string, error) {
	if len(conv.Paired) > 0 {
		if index < 0 || index >= len(conv.Paired) {
			return "", fmt.Errorf("%w: index %d of %d", ErrNoSuchOffer, index, len(conv.Paired))
		}
		pair := conv.Paired[index]
		if pair.Return != nil && pair.Return.BookingToken != "" {
			return pair.Return.BookingToken, nil
		}
		return pair.Outbound.BookingToken, nil
	}
	if conv.Selected < 0 {
		return "", fmt.Errorf("%w: nothing selected yet", ErrInvalidState)
	}
	return conv.Outbound[conv.Selected].Outbound.BookingToken, nil
}

// Reset starts a new search: fresh request, empty transcript, collecting.
func (c *Controller) Reset(conv *Conversation) {
	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.reset()
}

func (c *Controller) reply(conv *Conversation, msg string) TurnResult {
	conv.Transcript = append(conv.Transcript, ai.Turn{Role: "assistant", Content: msg})
	return c.result(conv, msg)
}

func (c *Controller) result(conv *Conversation, msg string) TurnResult {
	return TurnResult{
		Message:  msg,
		Snapshot: conv.Request.SnapshotJSON(),
		State:    conv.State,
		Complete: conv.Request.Complete,
	}
}

func (c *Controller) promptFor(req trip.Request) string {
	if req.Complete {
		return "I have everything I need. Say the word and I'll search for flights."
	}
	missing := req.RequiredMissing()
	return "Got it. I still need: " + strings.Join(missing, ", ") + "."
}

func validationMessage(err error) string {
	msg := err.Error()
	if cut, ok := strings.CutPrefix(msg, trip.ErrValidation.Error()+": "); ok {
		msg = cut
	}
	return "That doesn't quite work: " + msg + " Could you correct it?"
}
