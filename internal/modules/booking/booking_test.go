// README: Booking resolution tests.
package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tailwind/internal/flights"
	"tailwind/internal/logger"
	"tailwind/internal/modules/trip"
)

type fakeResolver struct {
	gotToken string
	resp     *flights.BookingResponse
	err      error
}

func (f *fakeResolver) ResolveBooking(ctx context.Context, q flights.SearchQuery, token string) (*flights.BookingResponse, error) {
	f.gotToken = token
	return f.resp, f.err
}

func TestResolveReturnsReference(t *testing.T) {
	resolver := &fakeResolver{resp: &flights.BookingResponse{
		BookingOptions: []flights.BookingOption{
			{Together: &flights.BookingOffer{
				BookWith:       "Delta",
				Price:          1250,
				BookingRequest: flights.BookingRequest{URL: "https://www.delta.com/book"},
			}},
		},
	}}
	svc := NewService(resolver, "SKYTEAM", logger.NewNop())

	ref, err := svc.Resolve(context.Background(), trip.Request{DepartureAirport: "CDG", ArrivalAirport: "AUS"}, "tok")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolver.gotToken != "tok" {
		t.Errorf("token sent = %q", resolver.gotToken)
	}
	if ref.BookWith != "Delta" || ref.URL != "https://www.delta.com/book" || ref.Price.Amount != 1250 {
		t.Errorf("reference = %+v", ref)
	}
}

func TestResolveUnavailable(t *testing.T) {
	cases := []struct {
		name     string
		resolver *fakeResolver
		token    string
	}{
		{
			name:     "provider error",
			resolver: &fakeResolver{err: fmt.Errorf("%w: token expired", flights.ErrProvider)},
			token:    "tok",
		},
		{
			name:     "no options",
			resolver: &fakeResolver{resp: &flights.BookingResponse{}},
			token:    "tok",
		},
		{
			name:     "missing token",
			resolver: &fakeResolver{},
			token:    "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.resolver, "SKYTEAM", logger.NewNop())
			_, err := svc.Resolve(context.Background(), trip.Request{}, tc.token)
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}
