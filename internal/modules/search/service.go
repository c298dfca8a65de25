// README: Two-phase search orchestration: outbound, then token-chained returns.
package search

import (
	"context"
	"sync"

	"tailwind/internal/config"
	"tailwind/internal/flights"
	"tailwind/internal/logger"
	"tailwind/internal/modules/offer"
	"tailwind/internal/modules/trip"
)

// Provider is the slice of the flights client the orchestrator needs.
type Provider interface {
	Search(ctx context.Context, q flights.SearchQuery) (*flights.SearchResponse, error)
}

type Service struct {
	provider Provider
	cache    Cache
	cfg      config.SearchConfig
	log      logger.Logger
}

func NewService(provider Provider, cache Cache, cfg config.SearchConfig, log logger.Logger) *Service {
	return &Service{provider: provider, cache: cache, cfg: cfg, log: log}
}

// SearchOutbound runs the first search phase for a complete trip request.
// An empty result is not an error; the dialogue layer decides how to react.
func (s *Service) SearchOutbound(ctx context.Context, req trip.Request) ([]offer.Offer, error) {
	return s.search(ctx, s.buildQuery(req, ""))
}

// SearchReturn runs the dependent second phase for one selected outbound
// offer, keyed by its continuation token. It is never issued eagerly for all
// outbound offers; user selection bounds the provider call volume.
func (s *Service) SearchReturn(ctx context.Context, req trip.Request, continuationToken string) ([]offer.Offer, error) {
	return s.search(ctx, s.buildQuery(req, continuationToken))
}

// ReturnResult is the outcome of one return search in a batch.
type ReturnResult struct {
	Token  string
	Offers []offer.Offer
	Err    error
}

// SearchReturnsBatch issues return searches for several distinct outbound
// tokens with bounded concurrency. A failure on one token never cancels the
// others and never touches already-cached outbound results.
func (s *Service) SearchReturnsBatch(ctx context.Context, req trip.Request, tokens []string) []ReturnResult {
	limit := s.cfg.ReturnParallelism
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	results := make([]ReturnResult, len(tokens))

	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			offers, err := s.SearchReturn(ctx, req, token)
			results[i] = ReturnResult{Token: token, Offers: offers, Err: err}
			if err != nil {
				s.log.Warn("return search failed", "token", token, "error", err)
			}
		}(i, token)
	}
	wg.Wait()
	return results
}

func (s *Service) search(ctx context.Context, q flights.SearchQuery) ([]offer.Offer, error) {
	key := Fingerprint(q)
	if cached, hit := s.cache.Get(ctx, key); hit {
		s.log.Debug("search cache hit", "key", key)
		return cached, nil
	}

	resp, err := s.provider.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	offers := s.collect(resp)
	s.cache.Set(ctx, key, offers)
	return offers, nil
}

// collect truncates the provider's buckets to the offer cap: the best bucket
// first, remaining slots filled from the other bucket, provider ranking
// preserved throughout.
func (s *Service) collect(resp *flights.SearchResponse) []offer.Offer {
	max := s.cfg.MaxOffers
	if max < 1 {
		max = 1
	}

	offers := make([]offer.Offer, 0, max)
	for _, it := range resp.BestFlights {
		if len(offers) == max {
			break
		}
		offers = append(offers, offer.FromItinerary(it))
	}
	for _, it := range resp.OtherFlights {
		if len(offers) == max {
			break
		}
		offers = append(offers, offer.FromItinerary(it))
	}
	return offers
}

func (s *Service) buildQuery(req trip.Request, continuationToken string) flights.SearchQuery {
	return BuildQuery(req, s.cfg.IncludeAirlines, continuationToken)
}

// BuildQuery maps a trip request onto the provider's query form. The provider
// demands a return date on every search, so one-way trips send the outbound
// date in its place.
func BuildQuery(req trip.Request, includeAirlines, continuationToken string) flights.SearchQuery {
	const dateLayout = "2006-01-02"

	returnDate := req.ReturnDate
	if returnDate.IsZero() {
		returnDate = req.OutboundDate
	}

	q := flights.SearchQuery{
		DepartureID:     req.DepartureAirport,
		ArrivalID:       req.ArrivalAirport,
		OutboundDate:    req.OutboundDate.Format(dateLayout),
		ReturnDate:      returnDate.Format(dateLayout),
		Adults:          req.Adults,
		TravelClass:     req.TravelClass.ProviderCode(),
		IncludeAirlines: includeAirlines,
		DepartureToken:  continuationToken,
	}
	if req.OutboundTimes != nil {
		q.OutboundTimes = req.OutboundTimes.String()
	}
	if req.ReturnTimes != nil {
		q.ReturnTimes = req.ReturnTimes.String()
	}
	return q
}
