// README: HTTP client for the Google Flights search provider.
package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tailwind/internal/logger"
)

// ErrProvider wraps every transport or provider-side failure. Callers treat
// it as retryable and keep their own state intact.
var ErrProvider = errors.New("flight provider error")

const engine = "google_flights"

// SearchQuery carries the provider's query parameters for one search call.
// ReturnDate must always be set, even for one-way trips (provider quirk);
// DepartureToken switches the call to the dependent return-leg phase.
type SearchQuery struct {
	DepartureID     string
	ArrivalID       string
	OutboundDate    string
	ReturnDate      string
	Adults          int
	TravelClass     int
	OutboundTimes   string
	ReturnTimes     string
	IncludeAirlines string
	DepartureToken  string
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logger.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Search runs one provider search call. Transport failures get a single
// immediate retry; the call is a read-only GET so repeating it is safe.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResponse, error) {
	params := c.queryParams(q)

	var resp SearchResponse
	if err := c.getWithRetry(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProvider, resp.Error)
	}
	return &resp, nil
}

// ResolveBooking exchanges a booking token plus the original trip parameters
// for the provider's booking options.
func (c *Client) ResolveBooking(ctx context.Context, q SearchQuery, bookingToken string) (*BookingResponse, error) {
	params := c.queryParams(q)
	params.Del("departure_token")
	params.Set("booking_token", bookingToken)

	var resp BookingResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProvider, resp.Error)
	}
	return &resp, nil
}

func (c *Client) queryParams(q SearchQuery) url.Values {
	params := url.Values{}
	params.Set("engine", engine)
	params.Set("api_key", c.apiKey)
	params.Set("hl", "en")
	params.Set("departure_id", q.DepartureID)
	params.Set("arrival_id", q.ArrivalID)
	params.Set("outbound_date", q.OutboundDate)
	// The provider requires a return date on every search, one-way included;
	// the orchestrator substitutes the outbound date in that case.
	params.Set("return_date", q.ReturnDate)
	params.Set("type", "1")
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("travel_class", strconv.Itoa(q.TravelClass))
	if q.IncludeAirlines != "" {
		params.Set("include_airlines", q.IncludeAirlines)
	}
	if q.OutboundTimes != "" {
		params.Set("outbound_times", q.OutboundTimes)
	}
	if q.ReturnTimes != "" {
		params.Set("return_times", q.ReturnTimes)
	}
	if q.DepartureToken != "" {
		params.Set("departure_token", q.DepartureToken)
	}
	return params
}

func (c *Client) getWithRetry(ctx context.Context, params url.Values, out any) error {
	err := c.get(ctx, params, out)
	if err == nil || ctx.Err() != nil {
		return err
	}
	c.log.Warn("provider call failed, retrying once", "error", err)
	return c.get(ctx, params, out)
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrProvider, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
