// README: Validated merge of extracted updates into the trip request.
package trip

import (
	"errors"
	"fmt"
	"time"

	"tailwind/internal/ai"
	"tailwind/internal/types"
)

// ErrValidation marks merges that would violate a hard invariant. The prior
// request is kept; the wrapped detail is safe to show the user.
var ErrValidation = errors.New("validation failed")

// Merge applies the fields present in upd onto cur and returns the next
// version. Absent fields never touch existing values; the model's message and
// completion claim are never merged. The merge is atomic: any invariant
// violation returns cur unchanged.
func Merge(cur Request, upd ai.TripUpdate) (Request, error) {
	next := cur

	if upd.DepartureAirport != nil {
		next.DepartureAirport = *upd.DepartureAirport
	}
	if upd.ArrivalAirport != nil {
		next.ArrivalAirport = *upd.ArrivalAirport
	}
	if upd.TripType != nil {
		next.TripType = *upd.TripType
	}
	if upd.OutboundDate != nil {
		next.OutboundDate = *upd.OutboundDate
	}
	if upd.ReturnDate != nil {
		next.ReturnDate = *upd.ReturnDate
	}
	if upd.Adults != nil {
		next.Adults = *upd.Adults
	}
	if upd.TravelClass != nil {
		next.TravelClass = *upd.TravelClass
	}
	if upd.OutboundTimes != nil {
		next.OutboundTimes = upd.OutboundTimes
	}
	if upd.ReturnTimes != nil {
		next.ReturnTimes = upd.ReturnTimes
	}

	// Switching to one-way retires any return-leg fields collected earlier,
	// so a stale return date cannot re-surface at search time.
	if next.TripType == types.TripOneWay {
		next.ReturnDate = time.Time{}
		next.ReturnTimes = nil
	}

	if err := validate(next); err != nil {
		return cur, err
	}

	next.recomputeComplete()
	next.Version = cur.Version + 1
	return next, nil
}

func validate(r Request) error {
	if !r.ReturnDate.IsZero() && !r.OutboundDate.IsZero() && r.ReturnDate.Before(r.OutboundDate) {
		return fmt.Errorf("%w: return date %s is before the outbound date %s",
			ErrValidation, r.ReturnDate.Format(dateLayout), r.OutboundDate.Format(dateLayout))
	}
	if r.Adults < 0 {
		return fmt.Errorf("%w: adults must be at least 1", ErrValidation)
	}
	if r.OutboundTimes != nil {
		if err := r.OutboundTimes.Validate(); err != nil {
			return fmt.Errorf("%w: outbound %v", ErrValidation, err)
		}
	}
	if r.ReturnTimes != nil {
		if err := r.ReturnTimes.Validate(); err != nil {
			return fmt.Errorf("%w: return %v", ErrValidation, err)
		}
	}
	return nil
}
