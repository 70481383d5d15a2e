// Package discovery orchestrates the nearby-dish aggregation pipeline:
// nearby search, per-place detail enrichment, distance computation, and
// response shaping.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
	"github.com/couchcryptid/dish-discovery-service/internal/observability"
)

// Aggregator fans a discovery query out to the places provider and shapes
// the response.
type Aggregator struct {
	searcher    domain.PlaceSearcher
	logger      *slog.Logger
	metrics     *observability.Metrics
	concurrency int
}

// New creates an Aggregator. concurrency bounds the per-place detail fan-out.
func New(searcher domain.PlaceSearcher, logger *slog.Logger, metrics *observability.Metrics, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		searcher:    searcher,
		logger:      logger,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// CheckReadiness reports whether the aggregator can serve traffic.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if a.searcher == nil {
		return errors.New("places searcher not configured")
	}
	return nil
}

type detailResult struct {
	detail domain.PlaceDetail
	err    error
}

// Discover runs one discovery request. A failed nearby search fails the whole
// call; a failed detail lookup drops only that place. Provider order is
// preserved and the result is capped at the query limit. Zero results is a
// valid, non-error outcome.
func (a *Aggregator) Discover(ctx context.Context, query domain.DiscoveryQuery) ([]domain.DishMediaItem, error) {
	center := query.Center()

	summaries, err := a.searcher.NearbySearch(ctx, center, query.RadiusMeters, query.Language, query.Limit, query.Categories)
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	details := a.fetchDetails(ctx, summaries, query.Language)

	items := make([]domain.DishMediaItem, 0, len(summaries))
	for i, summary := range summaries {
		if details[i].err != nil {
			a.logger.Warn("place detail lookup failed, dropping place",
				"place_id", summary.ID,
				"error", details[i].err,
			)
			a.metrics.DetailDrops.Inc()
			continue
		}
		items = append(items, a.assemble(center, query, summary, details[i].detail))
		if len(items) == query.Limit {
			break
		}
	}

	a.metrics.ResultSize.Observe(float64(len(items)))
	return items, nil
}

// fetchDetails looks up details for every summary concurrently, bounded by
// the configured fan-out. Results are joined before returning so any place
// may fail independently without aborting its siblings.
func (a *Aggregator) fetchDetails(ctx context.Context, summaries []domain.PlaceSummary, language string) []detailResult {
	results := make([]detailResult, len(summaries))
	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for i, summary := range summaries {
		wg.Add(1)
		go func(i int, placeID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			detail, err := a.searcher.PlaceDetails(ctx, placeID, language)
			results[i] = detailResult{detail: detail, err: err}
		}(i, summary.ID)
	}

	wg.Wait()
	return results
}

func (a *Aggregator) assemble(center domain.LatLng, query domain.DiscoveryQuery, summary domain.PlaceSummary, detail domain.PlaceDetail) domain.DishMediaItem {
	location := summary.Location
	if location == (domain.LatLng{}) {
		location = detail.Location
	}

	name := detail.Name
	if name == "" {
		name = summary.Name
	}
	vicinity := detail.Vicinity
	if vicinity == "" {
		vicinity = summary.Vicinity
	}

	reviews := detail.Reviews
	if reviews == nil {
		reviews = []domain.Review{}
	}

	return domain.DishMediaItem{
		DishID:         domain.DishID(summary.ID),
		DishName:       name,
		Category:       deriveCategory(query, summary, detail),
		PhotoURL:       detail.PhotoURL,
		Rating:         detail.Rating,
		ReviewCount:    detail.ReviewCount,
		DistanceMeters: domain.DistanceMeters(center, location),
		Place: domain.PlaceInfo{
			PlaceID:      summary.ID,
			Name:         name,
			Vicinity:     vicinity,
			Location:     location,
			GoogleMapURL: detail.GoogleMapURL,
		},
		Reviews: reviews,
	}
}

// deriveCategory picks the item category: the place's explicit primary type
// wins, then the first place type that matched the search's included set,
// then the base category.
func deriveCategory(query domain.DiscoveryQuery, summary domain.PlaceSummary, detail domain.PlaceDetail) string {
	if detail.PrimaryType != "" {
		return detail.PrimaryType
	}

	included := make(map[string]bool, len(query.Categories)+1)
	included[domain.BaseCategory] = true
	for _, c := range query.Categories {
		included[c] = true
	}
	for _, t := range summary.Types {
		if included[t] {
			return t
		}
	}
	return domain.BaseCategory
}
