// Package placecache caches place-detail lookups so repeated discovery
// requests in the same area do not re-fetch unchanged provider data.
// Discovery results themselves are never cached.
package placecache

import (
	"context"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

// Cache stores place details keyed by language-qualified place ID.
// Implementations must treat storage errors as misses.
type Cache interface {
	Get(ctx context.Context, key string) (domain.PlaceDetail, bool)
	Put(ctx context.Context, key string, detail domain.PlaceDetail)
}
