// README: JSON view shapes for offers and round-trip pairs.
package http

import (
	"tailwind/internal/modules/dialogue"
	"tailwind/internal/modules/offer"
	"tailwind/internal/types"
)

type moneyView struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type legView struct {
	Airline          string `json:"airline"`
	FlightNumber     string `json:"flight_number"`
	DepartureAirport string `json:"departure_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalAirport   string `json:"arrival_airport"`
	ArrivalTime      string `json:"arrival_time"`
	DurationMinutes  int    `json:"duration_minutes"`
	CabinClass       string `json:"cabin_class,omitempty"`
}

type layoverView struct {
	Airport string `json:"airport"`
	Minutes int    `json:"minutes"`
}

type offerView struct {
	Legs            []legView     `json:"legs"`
	Layovers        []layoverView `json:"layovers,omitempty"`
	Price           moneyView     `json:"price"`
	DurationMinutes int           `json:"duration_minutes"`
}

type pairView struct {
	Index    int        `json:"index"`
	Outbound offerView  `json:"outbound"`
	Return   *offerView `json:"return,omitempty"`
	Total    moneyView  `json:"total"`
}

type searchResponse struct {
	State   dialogue.State `json:"state"`
	Message string         `json:"message,omitempty"`
	Offers  []pairView     `json:"offers,omitempty"`
}

func money(m types.Money) moneyView {
	return moneyView{Amount: m.Amount, Currency: m.Currency}
}

func viewOffer(o offer.Offer) offerView {
	legs := make([]legView, len(o.Legs))
	for i, l := range o.Legs {
		legs[i] = legView{
			Airline:          l.Airline,
			FlightNumber:     l.FlightNumber,
			DepartureAirport: l.DepartureAirport,
			DepartureTime:    l.DepartureTime,
			ArrivalAirport:   l.ArrivalAirport,
			ArrivalTime:      l.ArrivalTime,
			DurationMinutes:  l.DurationMinutes,
			CabinClass:       l.CabinClass,
		}
	}
	var layovers []layoverView
	for _, l := range o.Layovers {
		layovers = append(layovers, layoverView{Airport: l.Airport, Minutes: l.Minutes})
	}
	return offerView{
		Legs:            legs,
		Layovers:        layovers,
		Price:           money(o.Price),
		DurationMinutes: o.DurationMinutes,
	}
}

func searchView(res dialogue.SearchResult) searchResponse {
	out := searchResponse{State: res.State, Message: res.Message}
	for i, p := range res.Pairs {
		pv := pairView{Index: i, Outbound: viewOffer(p.Outbound), Total: money(p.Total)}
		if p.Return != nil {
			rv := viewOffer(*p.Return)
			pv.Return = &rv
		}
		out.Offers = append(out.Offers, pv)
	}
	return out
}
