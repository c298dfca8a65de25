// README: TTL result cache keyed by a deterministic search fingerprint.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"tailwind/internal/flights"
	"tailwind/internal/modules/offer"
)

// Cache stores immutable search results for the TTL window. Entries are
// never updated in place; concurrent insert-if-absent races are benign
// because both writers hold the same provider result shape.
type Cache interface {
	Get(ctx context.Context, key string) ([]offer.Offer, bool)
	Set(ctx context.Context, key string, offers []offer.Offer)
}

// Fingerprint derives the deterministic cache key for one (parameters, token)
// pair. Identical inputs always hash identically, so repeated searches hit
// the same entry.
func Fingerprint(q flights.SearchQuery) string {
	canonical := strings.Join([]string{
		q.DepartureID,
		q.ArrivalID,
		q.OutboundDate,
		q.ReturnDate,
		strconv.Itoa(q.Adults),
		strconv.Itoa(q.TravelClass),
		q.OutboundTimes,
		q.ReturnTimes,
		q.IncludeAirlines,
		q.DepartureToken,
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return "search:" + hex.EncodeToString(sum[:])
}

// MemoryCache is the default in-process backend.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]offer.Offer, bool) {
	v, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	offers, ok := v.([]offer.Offer)
	return offers, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, offers []offer.Offer) {
	c.store.SetDefault(key, offers)
}
