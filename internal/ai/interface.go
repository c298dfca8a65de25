// README: Provider interface for the slot-filling model.
package ai

import (
	"context"
)

// SlotFiller turns a free-text user message into a structured TripUpdate.
// currentParams is the JSON snapshot of the request collected so far, so the
// model only has to fill the gaps. Implementations may be swapped (Gemini
// today, others later).
type SlotFiller interface {
	NextUpdate(ctx context.Context, userMessage string, currentParams string, transcript []Turn) (*TripUpdate, error)
}
