// README: Conversation aggregate and dialogue state definitions.
package dialogue

import (
	"sync"

	"tailwind/internal/ai"
	"tailwind/internal/modules/offer"
	"tailwind/internal/modules/trip"
)

type State string

const (
	StateCollecting State = "collecting"
	StateReady      State = "ready"
	StateSearching  State = "searching"
	StateResults    State = "results"
	StateExited     State = "exited"
)

// AllowedTransitions represents the dialogue state flow (diagram) as code.
var AllowedTransitions = map[State][]State{
	StateCollecting: {StateReady, StateExited},
	StateReady:      {StateCollecting, StateSearching, StateExited},
	StateSearching:  {StateResults, StateCollecting, StateExited},
	StateResults:    {StateCollecting, StateExited},
}

func CanTransition(from, to State) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Conversation is one user's booking dialogue. Turns are processed one at a
// time; the mutex serializes the HTTP boundary onto that contract.
type Conversation struct {
	mu sync.Mutex

	ID         string
	State      State
	Request    trip.Request
	Transcript []ai.Turn

	// Outbound holds the stage-1 outbound-only pairs shown to the user.
	Outbound []offer.RoundTripPair
	// Selected is the index into Outbound chosen by the user, -1 if none.
	Selected int
	// Paired holds the stage-2 round-trip pairs for the selected outbound.
	Paired []offer.RoundTripPair
}

func newConversation(id string) *Conversation {
	return &Conversation{ID: id, State: StateCollecting, Selected: -1}
}

// Status reads the state and collected request under the conversation lock.
func (c *Conversation) Status() (State, trip.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.State, c.Request
}

// reset discards all collected state for a fresh search. Caller holds mu.
func (c *Conversation) reset() {
	c.State = StateCollecting
	c.Request = trip.Request{}
	c.Transcript = nil
	c.Outbound = nil
	c.Selected = -1
	c.Paired = nil
}
