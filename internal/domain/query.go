package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	MinRadiusMeters     = 1
	MaxRadiusMeters     = 5000
	DefaultRadiusMeters = 1000

	MinLimit     = 1
	MaxLimit     = 40
	DefaultLimit = 20

	DefaultLanguage = "ja"
)

// DiscoveryQuery is a validated discovery request.
type DiscoveryQuery struct {
	Lat          float64
	Lng          float64
	RadiusMeters int
	Limit        int
	Language     string
	Categories   []string
}

// Center returns the query coordinate.
func (q DiscoveryQuery) Center() LatLng {
	return LatLng{Lat: q.Lat, Lng: q.Lng}
}

// ValidationError names the query field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query field %q: %s", e.Field, e.Message)
}

// ParseDiscoveryQuery validates and normalizes raw query parameters.
// Out-of-range values are rejected, not clamped; defaults are applied exactly
// once. No network calls or side effects happen here.
func ParseDiscoveryQuery(values url.Values) (DiscoveryQuery, error) {
	lat, err := parseFloat(values, "lat")
	if err != nil {
		return DiscoveryQuery{}, err
	}
	lng, err := parseFloat(values, "lng")
	if err != nil {
		return DiscoveryQuery{}, err
	}

	radius, err := parseBoundedInt(values, "radius", MinRadiusMeters, MaxRadiusMeters, DefaultRadiusMeters)
	if err != nil {
		return DiscoveryQuery{}, err
	}
	limit, err := parseBoundedInt(values, "limit", MinLimit, MaxLimit, DefaultLimit)
	if err != nil {
		return DiscoveryQuery{}, err
	}

	lang := strings.TrimSpace(values.Get("lang"))
	if lang == "" {
		lang = DefaultLanguage
	}

	return DiscoveryQuery{
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: radius,
		Limit:        limit,
		Language:     lang,
		Categories:   parseCategories(values.Get("category")),
	}, nil
}

func parseFloat(values url.Values, field string) (float64, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return 0, &ValidationError{Field: field, Message: "required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Message: "must be a number"}
	}
	return v, nil
}

func parseBoundedInt(values url.Values, field string, minVal, maxVal, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Message: "must be an integer"}
	}
	if v < minVal || v > maxVal {
		return 0, &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d", minVal, maxVal),
		}
	}
	return v, nil
}

// parseCategories splits a comma-separated category filter, dropping blank
// entries. An empty input yields a nil slice.
func parseCategories(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
