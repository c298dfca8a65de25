// README: Wire models for the Google Flights search provider.
package flights

// Airport is one endpoint of a segment, with the provider's local time string.
type Airport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// Segment is a single flight within an itinerary.
type Segment struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Duration         int     `json:"duration"`
	Airline          string  `json:"airline"`
	FlightNumber     string  `json:"flight_number"`
	TravelClass      string  `json:"travel_class"`
	Airplane         string  `json:"airplane,omitempty"`
}

// Layover is the ground time between two segments.
type Layover struct {
	Duration int    `json:"duration"`
	Name     string `json:"name"`
	ID       string `json:"id"`
}

// Itinerary is one priced option in a result bucket. DepartureToken chains
// the dependent return search; BookingToken resolves a booking.
type Itinerary struct {
	Flights        []Segment `json:"flights"`
	Layovers       []Layover `json:"layovers,omitempty"`
	TotalDuration  int       `json:"total_duration"`
	Price          int64     `json:"price"`
	Type           string    `json:"type,omitempty"`
	DepartureToken string    `json:"departure_token,omitempty"`
	BookingToken   string    `json:"booking_token,omitempty"`
}

type searchMetadata struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	GoogleFlightsURL string `json:"google_flights_url,omitempty"`
}

// SearchResponse is the provider's result envelope. The best bucket carries
// the provider's preferred ranking; other fills the remainder.
type SearchResponse struct {
	SearchMetadata searchMetadata `json:"search_metadata"`
	BestFlights    []Itinerary    `json:"best_flights"`
	OtherFlights   []Itinerary    `json:"other_flights"`
	Error          string         `json:"error,omitempty"`
}

// BookingRequest is the provider's handoff for completing a booking.
type BookingRequest struct {
	URL      string `json:"url"`
	PostData string `json:"post_data,omitempty"`
}

type BookingOffer struct {
	BookWith       string         `json:"book_with"`
	Price          int64          `json:"price"`
	BookingRequest BookingRequest `json:"booking_request"`
}

type BookingOption struct {
	Together *BookingOffer `json:"together,omitempty"`
}

// BookingResponse resolves a booking token into concrete booking options.
type BookingResponse struct {
	SearchMetadata searchMetadata  `json:"search_metadata"`
	BookingOptions []BookingOption `json:"booking_options"`
	Error          string          `json:"error,omitempty"`
}
