package googleplaces

import (
	"context"

	"github.com/couchcryptid/dish-discovery-service/internal/adapter/placecache"
	"github.com/couchcryptid/dish-discovery-service/internal/domain"
	"github.com/couchcryptid/dish-discovery-service/internal/observability"
)

// CachedSearcher wraps a PlaceSearcher with a detail-lookup cache.
// Nearby searches are never cached; discovery results stay fresh per request.
type CachedSearcher struct {
	inner   domain.PlaceSearcher
	cache   placecache.Cache
	metrics *observability.Metrics
}

// NewCachedSearcher creates a cache decorator around a searcher.
func NewCachedSearcher(inner domain.PlaceSearcher, cache placecache.Cache, metrics *observability.Metrics) *CachedSearcher {
	return &CachedSearcher{inner: inner, cache: cache, metrics: metrics}
}

func (c *CachedSearcher) NearbySearch(ctx context.Context, center domain.LatLng, radiusMeters int, language string, limit int, categories []string) ([]domain.PlaceSummary, error) {
	return c.inner.NearbySearch(ctx, center, radiusMeters, language, limit, categories)
}

func (c *CachedSearcher) PlaceDetails(ctx context.Context, placeID, language string) (domain.PlaceDetail, error) {
	key := language + ":" + placeID
	if detail, ok := c.cache.Get(ctx, key); ok {
		c.metrics.PlaceCache.WithLabelValues("hit").Inc()
		return detail, nil
	}
	c.metrics.PlaceCache.WithLabelValues("miss").Inc()

	detail, err := c.inner.PlaceDetails(ctx, placeID, language)
	if err != nil {
		return detail, err
	}
	c.cache.Put(ctx, key, detail)
	return detail, nil
}
