// README: Resolving a selected offer's booking token into a booking reference.
package booking

import (
	"context"
	"errors"
	"fmt"

	"tailwind/internal/flights"
	"tailwind/internal/logger"
	"tailwind/internal/modules/search"
	"tailwind/internal/modules/trip"
	"tailwind/internal/types"
)

// ErrUnavailable means the provider could not resolve the booking token
// (typically expired). Soft failure: the caller keeps the selection so the
// user can retry or re-search.
var ErrUnavailable = errors.New("booking unavailable")

// Provider is the slice of the flights client the resolver needs.
type Provider interface {
	ResolveBooking(ctx context.Context, q flights.SearchQuery, bookingToken string) (*flights.BookingResponse, error)
}

// Reference is a resolved, actionable booking handoff.
type Reference struct {
	BookWith    string
	Price       types.Money
	URL         string
	FallbackURL string
}

type Service struct {
	provider        Provider
	includeAirlines string
	log             logger.Logger
}

func NewService(provider Provider, includeAirlines string, log logger.Logger) *Service {
	return &Service{provider: provider, includeAirlines: includeAirlines, log: log}
}

// Resolve exchanges the selected offer's booking token plus the original trip
// parameters for a provider booking reference.
func (s *Service) Resolve(ctx context.Context, req trip.Request, bookingToken string) (Reference, error) {
	if bookingToken == "" {
		return Reference{}, fmt.Errorf("%w: offer carries no booking token", ErrUnavailable)
	}

	resp, err := s.provider.ResolveBooking(ctx, search.BuildQuery(req, s.includeAirlines, ""), bookingToken)
	if err != nil {
		s.log.Warn("booking resolution failed", "error", err)
		return Reference{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.BookingOptions) == 0 {
		return Reference{}, fmt.Errorf("%w: provider returned no booking options", ErrUnavailable)
	}

	// The provider ranks options; take the first bookable one.
	for _, opt := range resp.BookingOptions {
		if opt.Together == nil || opt.Together.BookingRequest.URL == "" {
			continue
		}
		return Reference{
			BookWith:    opt.Together.BookWith,
			Price:       types.Money{Amount: opt.Together.Price, Currency: "USD"},
			URL:         opt.Together.BookingRequest.URL,
			FallbackURL: resp.SearchMetadata.GoogleFlightsURL,
		}, nil
	}
	return Reference{}, fmt.Errorf("%w: no bookable option in provider response", ErrUnavailable)
}
