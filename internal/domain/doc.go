// Package domain models nearby-dish discovery for the mobile client.
//
// # Discovery flow
//
// A discovery request carries a coordinate, a search radius, a result limit,
// a BCP-47 language tag, and an optional comma-separated category filter.
// Validation rejects (never clamps) out-of-range values:
//
//	radius: 1–5000 meters, default 1000
//	limit:  1–40 items, default 20
//	lang:   default "ja"
//
// The aggregator asks the places provider for nearby restaurant summaries,
// enriches each with a per-place detail lookup, and shapes the response as a
// list of dish media items. Distance is always computed server-side with the
// haversine formula from the query center to the place's reported location;
// provider-supplied distances are never trusted.
//
// # Partial failure
//
// A failed nearby search fails the whole discovery call. A failed detail
// lookup only drops that place from the result; the drop is logged and
// counted, never surfaced to the caller. This asymmetry is intentional:
// partial results beat total failure for detail-level errors, but a dead
// search means there is nothing worth returning.
//
// # ID generation
//
// Dish IDs are deterministic SHA-256 short hashes of the place ID, so the
// same place yields the same dish ID across requests without any storage.
// See [DishID].
package domain
