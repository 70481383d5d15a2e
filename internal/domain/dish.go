package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// LatLng is a WGS-84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceInfo identifies a place for navigation and booking links.
// GoogleMapURL is derived locally, never taken from the provider verbatim.
type PlaceInfo struct {
	PlaceID      string `json:"placeId"`
	Name         string `json:"name"`
	Vicinity     string `json:"vicinity"`
	Location     LatLng `json:"location"`
	GoogleMapURL string `json:"googleMapUrl"`
}

// Review is a single place review in the requested language.
// Translated is true when the text was machine-translated by the provider.
type Review struct {
	Author     string  `json:"author"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Translated bool    `json:"translated"`
}

// DishMediaItem is one unit of the discovery response.
type DishMediaItem struct {
	DishID         string    `json:"dishId"`
	DishName       string    `json:"dishName"`
	Category       string    `json:"category"`
	PhotoURL       string    `json:"photoUrl"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"reviewCount"`
	DistanceMeters float64   `json:"distanceMeters"`
	Place          PlaceInfo `json:"place"`
	Reviews        []Review  `json:"reviews"`
}

// DishID derives a deterministic dish identifier from a place ID.
// The same place always maps to the same dish ID, enabling stable client-side
// keys without any persistence.
func DishID(placeID string) string {
	hash := sha256.Sum256([]byte(placeID))
	return "dish-" + hex.EncodeToString(hash[:8])
}
