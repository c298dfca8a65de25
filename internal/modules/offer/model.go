// README: Priced itinerary models: legs, one-direction offers, round-trip pairs.
package offer

import (
	"tailwind/internal/flights"
	"tailwind/internal/types"
)

// FlightLeg is one flight segment of an offer. Times are the provider's
// local-time strings for the airports involved.
type FlightLeg struct {
	Airline          string
	FlightNumber     string
	DepartureAirport string
	DepartureName    string
	DepartureTime    string
	ArrivalAirport   string
	ArrivalName      string
	ArrivalTime      string
	DurationMinutes  int
	CabinClass       string
}

type Layover struct {
	Airport string
	Name    string
	Minutes int
}

// Offer is a priced, bookable itinerary in one direction. ContinuationToken
// is present only on outbound offers eligible for the dependent return
// search; BookingToken on offers resolvable to a booking. Offers are never
// mutated after creation.
type Offer struct {
	Legs              []FlightLeg
	Layovers          []Layover
	Price             types.Money
	DurationMinutes   int
	ContinuationToken string
	BookingToken      string
}

// RoundTripPair couples an outbound offer with an optional return offer. A
// nil Return marks an outbound-only candidate awaiting user selection.
// ContinuationToken records which outbound token produced the return leg.
type RoundTripPair struct {
	Outbound          Offer
	Return            *Offer
	Total             types.Money
	ContinuationToken string
}

const priceCurrency = "USD"

// FromItinerary converts a provider itinerary into an immutable Offer.
func FromItinerary(it flights.Itinerary) Offer {
	legs := make([]FlightLeg, len(it.Flights))
	for i, seg := range it.Flights {
		legs[i] = FlightLeg{
			Airline:          seg.Airline,
			FlightNumber:     seg.FlightNumber,
			DepartureAirport: seg.DepartureAirport.ID,
			DepartureName:    seg.DepartureAirport.Name,
			DepartureTime:    seg.DepartureAirport.Time,
			ArrivalAirport:   seg.ArrivalAirport.ID,
			ArrivalName:      seg.ArrivalAirport.Name,
			ArrivalTime:      seg.ArrivalAirport.Time,
			DurationMinutes:  seg.Duration,
			CabinClass:       seg.TravelClass,
		}
	}
	var layovers []Layover
	for _, l := range it.Layovers {
		layovers = append(layovers, Layover{Airport: l.ID, Name: l.Name, Minutes: l.Duration})
	}
	return Offer{
		Legs:              legs,
		Layovers:          layovers,
		Price:             types.Money{Amount: it.Price, Currency: priceCurrency},
		DurationMinutes:   it.TotalDuration,
		ContinuationToken: it.DepartureToken,
		BookingToken:      it.BookingToken,
	}
}
