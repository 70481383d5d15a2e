package googleplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
	"github.com/couchcryptid/dish-discovery-service/internal/observability"
)

const (
	searchFieldMask = "places.id,places.displayName,places.shortFormattedAddress,places.location,places.types,places.primaryType"
	detailFieldMask = "id,displayName,shortFormattedAddress,location,types,primaryType,rating,userRatingCount,googleMapsUri,photos,reviews"
)

// Client implements domain.PlaceSearcher using the Google Places API (New).
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Google Places client.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// NearbySearch queries places:searchNearby within radiusMeters of center.
// The included type list is seeded with the base category first, then the
// caller's category filter; the result count is capped at the provider's
// hard ceiling regardless of the requested limit.
func (c *Client) NearbySearch(ctx context.Context, center domain.LatLng, radiusMeters int, language string, limit int, categories []string) ([]domain.PlaceSummary, error) {
	if limit > domain.ProviderMaxResults {
		limit = domain.ProviderMaxResults
	}

	includedTypes := make([]string, 0, len(categories)+1)
	includedTypes = append(includedTypes, domain.BaseCategory)
	includedTypes = append(includedTypes, categories...)

	reqBody := searchNearbyRequest{
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: latLng{Latitude: center.Lat, Longitude: center.Lng},
				Radius: float64(radiusMeters),
			},
		},
		LanguageCode:   language,
		IncludedTypes:  includedTypes,
		MaxResultCount: limit,
	}

	var resp searchNearbyResponse
	if err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/places:searchNearby", searchFieldMask, reqBody, &resp, "search"); err != nil {
		return nil, err
	}

	summaries := make([]domain.PlaceSummary, 0, len(resp.Places))
	for _, p := range resp.Places {
		summaries = append(summaries, domain.PlaceSummary{
			ID:       p.ID,
			Name:     p.DisplayName.Text,
			Vicinity: p.ShortFormattedAddress,
			Location: domain.LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude},
			Types:    p.Types,
		})
	}
	return summaries, nil
}

// PlaceDetails fetches extended attributes for one place in the requested
// language. The translated flag on each review reflects the provider's
// language conversion, compared here against the review's original text.
func (c *Client) PlaceDetails(ctx context.Context, placeID, language string) (domain.PlaceDetail, error) {
	u := fmt.Sprintf("%s/places/%s?languageCode=%s", c.baseURL, url.PathEscape(placeID), url.QueryEscape(language))

	var p place
	if err := c.doRequest(ctx, http.MethodGet, u, detailFieldMask, nil, &p, "details"); err != nil {
		return domain.PlaceDetail{}, err
	}

	detail := domain.PlaceDetail{
		ID:           p.ID,
		Name:         p.DisplayName.Text,
		Vicinity:     p.ShortFormattedAddress,
		Location:     domain.LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude},
		PrimaryType:  p.PrimaryType,
		Types:        p.Types,
		Rating:       p.Rating,
		ReviewCount:  p.UserRatingCount,
		GoogleMapURL: c.mapURL(p),
		Reviews:      make([]domain.Review, 0, len(p.Reviews)),
	}
	if len(p.Photos) > 0 {
		detail.PhotoURL = fmt.Sprintf("%s/%s/media?maxWidthPx=800&key=%s", c.baseURL, p.Photos[0].Name, url.QueryEscape(c.apiKey))
	}
	for _, r := range p.Reviews {
		detail.Reviews = append(detail.Reviews, domain.Review{
			Author:     r.AuthorAttribution.DisplayName,
			Rating:     r.Rating,
			Text:       r.Text.Text,
			Translated: isTranslated(r),
		})
	}
	return detail, nil
}

// mapURL derives a maps link; the provider URI is preferred but a place_id
// query URL always works as a fallback.
func (c *Client) mapURL(p place) string {
	if p.GoogleMapsURI != "" {
		return p.GoogleMapsURI
	}
	return "https://www.google.com/maps/place/?q=place_id:" + url.QueryEscape(p.ID)
}

func isTranslated(r review) bool {
	return r.OriginalText.LanguageCode != "" &&
		r.Text.LanguageCode != "" &&
		r.Text.LanguageCode != r.OriginalText.LanguageCode
}

// doRequest issues one provider call. Failures are never retried here; retry
// policy, if any, belongs to the caller.
func (c *Client) doRequest(ctx context.Context, method, fullURL, fieldMask string, body, out any, metricMethod string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", metricMethod, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", metricMethod, err)
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues(metricMethod).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(metricMethod, "error").Inc()
		return fmt.Errorf("places %s request: %w", metricMethod, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.metrics.ProviderRequests.WithLabelValues(metricMethod, "error").Inc()
		return &domain.ProviderError{
			Status:  resp.StatusCode,
			Message: providerMessage(respBody),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.ProviderRequests.WithLabelValues(metricMethod, "error").Inc()
		return fmt.Errorf("decode %s response: %w", metricMethod, err)
	}

	c.metrics.ProviderRequests.WithLabelValues(metricMethod, "success").Inc()
	return nil
}

// providerMessage extracts the error message from a Places API error body,
// falling back to the raw body when it is not the documented shape.
func providerMessage(body []byte) string {
	var wrapper struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error.Message != "" {
		return wrapper.Error.Message
	}
	return string(body)
}

// Places API (New) wire types.

type searchNearbyRequest struct {
	LocationRestriction locationRestriction `json:"locationRestriction"`
	LanguageCode        string              `json:"languageCode,omitempty"`
	IncludedTypes       []string            `json:"includedTypes,omitempty"`
	MaxResultCount      int                 `json:"maxResultCount"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchNearbyResponse struct {
	Places []place `json:"places"`
}

type place struct {
	ID                    string        `json:"id"`
	DisplayName           localizedText `json:"displayName"`
	ShortFormattedAddress string        `json:"shortFormattedAddress"`
	Location              latLng        `json:"location"`
	Types                 []string      `json:"types"`
	PrimaryType           string        `json:"primaryType"`
	Rating                float64       `json:"rating"`
	UserRatingCount       int           `json:"userRatingCount"`
	GoogleMapsURI         string        `json:"googleMapsUri"`
	Photos                []photo       `json:"photos"`
	Reviews               []review      `json:"reviews"`
}

type localizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

type photo struct {
	Name string `json:"name"`
}

type review struct {
	Rating            float64           `json:"rating"`
	Text              localizedText     `json:"text"`
	OriginalText      localizedText     `json:"originalText"`
	AuthorAttribution authorAttribution `json:"authorAttribution"`
}

type authorAttribution struct {
	DisplayName string `json:"displayName"`
}
