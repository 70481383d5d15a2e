package domain

import (
	"context"
	"fmt"
)

// BaseCategory is always the first entry of a nearby search's included types;
// the caller's category filter extends it.
const BaseCategory = "restaurant"

// ProviderMaxResults is the hard per-request ceiling of the places provider.
// Enforced locally so callers never over-request.
const ProviderMaxResults = 20

// PlaceSummary is a nearby-search hit.
type PlaceSummary struct {
	ID       string
	Name     string
	Vicinity string
	Location LatLng
	Types    []string
}

// PlaceDetail extends a summary with rating, review, and media attributes
// from a place-detail lookup.
type PlaceDetail struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Vicinity     string   `json:"vicinity"`
	Location     LatLng   `json:"location"`
	PrimaryType  string   `json:"primary_type"`
	Types        []string `json:"types,omitempty"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"review_count"`
	PhotoURL     string   `json:"photo_url"`
	GoogleMapURL string   `json:"google_map_url"`
	Reviews      []Review `json:"reviews,omitempty"`
}

// PlaceSearcher is the places-provider boundary. Implementations must not
// retry failed calls; retry policy belongs to the caller.
type PlaceSearcher interface {
	// NearbySearch returns place summaries within radiusMeters of center.
	// The included type list is seeded with BaseCategory and extended with
	// categories; limit is capped at ProviderMaxResults.
	NearbySearch(ctx context.Context, center LatLng, radiusMeters int, language string, limit int, categories []string) ([]PlaceSummary, error)

	// PlaceDetails returns extended attributes for one place.
	PlaceDetails(ctx context.Context, placeID, language string) (PlaceDetail, error)
}

// ProviderError carries the provider's HTTP status and a human message.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("places provider error: status %d: %s", e.Status, e.Message)
}
