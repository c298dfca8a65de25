// README: Structured slot update produced from one model turn.
package ai

import (
	"time"

	"tailwind/internal/types"
)

// TripUpdate captures the fields the model extracted from one user turn.
// Nil/zero fields mean "not mentioned this turn" and must leave the stored
// request untouched when merged.
type TripUpdate struct {
	DepartureAirport *string
	ArrivalAirport   *string
	TripType         *types.TripType
	OutboundDate     *time.Time
	ReturnDate       *time.Time
	Adults           *int
	TravelClass      *types.CabinClass
	OutboundTimes    types.TimeWindow
	ReturnTimes      types.TimeWindow

	// Message is the user-facing prompt accompanying the update. It is routed
	// to the transcript, never into the stored request.
	Message string

	// Completion is the model's own claim that every slot is filled. Advisory
	// only; the trip module recomputes completeness from its invariants.
	Completion bool
}

// Turn is one entry of the conversation transcript sent back to the model.
type Turn struct {
	Role    string
	Content string
}
