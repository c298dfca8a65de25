// README: Trip request aggregate: collected slots plus derived completeness.
package trip

import (
	"encoding/json"
	"time"

	"tailwind/internal/types"
)

// Request is the canonical, validated state of one conversation's trip
// parameters. It is a value: every successful merge yields the next version,
// the previous one stays intact.
type Request struct {
	DepartureAirport string
	ArrivalAirport   string
	TripType         types.TripType
	OutboundDate     time.Time
	ReturnDate       time.Time
	Adults           int
	TravelClass      types.CabinClass
	OutboundTimes    types.TimeWindow
	ReturnTimes      types.TimeWindow

	// Complete is derived from the required-field rule after every merge.
	// Untrusted input never sets it directly.
	Complete bool

	// Version counts successful merges applied to reach this state.
	Version int
}

const dateLayout = "2006-01-02"

// RequiredMissing lists the required fields not yet collected, in a stable
// order suitable for prompting.
func (r Request) RequiredMissing() []string {
	var missing []string
	if r.DepartureAirport == "" {
		missing = append(missing, "departure airport")
	}
	if r.ArrivalAirport == "" {
		missing = append(missing, "arrival airport")
	}
	if r.TripType == "" {
		missing = append(missing, "trip type")
	}
	if r.OutboundDate.IsZero() {
		missing = append(missing, "outbound date")
	}
	if r.TripType == types.TripRoundTrip && r.ReturnDate.IsZero() {
		missing = append(missing, "return date")
	}
	if r.Adults < 1 {
		missing = append(missing, "number of adults")
	}
	if r.TravelClass == "" {
		missing = append(missing, "travel class")
	}
	return missing
}

// recomputeComplete applies the completion rule: every field required by the
// current trip type present and individually valid.
func (r *Request) recomputeComplete() {
	r.Complete = len(r.RequiredMissing()) == 0 &&
		(r.TripType != types.TripRoundTrip || !r.ReturnDate.Before(r.OutboundDate))
}

// snapshot is the wire form shown to the user and fed back to the model.
type snapshot struct {
	DepartureAirport string `json:"departure_id,omitempty"`
	ArrivalAirport   string `json:"arrival_id,omitempty"`
	TripType         string `json:"trip_type,omitempty"`
	OutboundDate     string `json:"outbound_date,omitempty"`
	ReturnDate       string `json:"return_date,omitempty"`
	Adults           int    `json:"adults,omitempty"`
	TravelClass      string `json:"travel_class,omitempty"`
	OutboundTimes    string `json:"outbound_times,omitempty"`
	ReturnTimes      string `json:"return_times,omitempty"`
	Complete         bool   `json:"completion"`
}

// SnapshotJSON serializes the collected (non-empty) fields.
func (r Request) SnapshotJSON() string {
	s := snapshot{
		DepartureAirport: r.DepartureAirport,
		ArrivalAirport:   r.ArrivalAirport,
		TripType:         string(r.TripType),
		Adults:           r.Adults,
		TravelClass:      string(r.TravelClass),
		Complete:         r.Complete,
	}
	if !r.OutboundDate.IsZero() {
		s.OutboundDate = r.OutboundDate.Format(dateLayout)
	}
	if !r.ReturnDate.IsZero() {
		s.ReturnDate = r.ReturnDate.Format(dateLayout)
	}
	if r.OutboundTimes != nil {
		s.OutboundTimes = r.OutboundTimes.String()
	}
	if r.ReturnTimes != nil {
		s.ReturnTimes = r.ReturnTimes.String()
	}
	b, _ := json.Marshal(s)
	return string(b)
}
