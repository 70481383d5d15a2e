package googleplaces

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
	"github.com/couchcryptid/dish-discovery-service/internal/observability"
)

const testAPIKey = "test-api-key"

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_NearbySearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		assert.Equal(t, testAPIKey, r.Header.Get("X-Goog-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Goog-FieldMask"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req searchNearbyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 35.0, req.LocationRestriction.Circle.Center.Latitude)
		assert.Equal(t, 139.0, req.LocationRestriction.Circle.Center.Longitude)
		assert.Equal(t, 1000.0, req.LocationRestriction.Circle.Radius)
		assert.Equal(t, "en", req.LanguageCode)
		assert.Equal(t, []string{"restaurant", "ramen_restaurant"}, req.IncludedTypes)
		assert.Equal(t, 5, req.MaxResultCount)

		resp := searchNearbyResponse{
			Places: []place{
				{
					ID:                    "ChIJ001",
					DisplayName:           localizedText{Text: "Menya Taro", LanguageCode: "en"},
					ShortFormattedAddress: "1-2-3 Yurakucho, Chiyoda",
					Location:              latLng{Latitude: 35.001, Longitude: 139.001},
					Types:                 []string{"ramen_restaurant", "restaurant"},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	summaries, err := c.NearbySearch(context.Background(), domain.LatLng{Lat: 35.0, Lng: 139.0}, 1000, "en", 5, []string{"ramen_restaurant"})
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "ChIJ001", summaries[0].ID)
	assert.Equal(t, "Menya Taro", summaries[0].Name)
	assert.Equal(t, "1-2-3 Yurakucho, Chiyoda", summaries[0].Vicinity)
	assert.Equal(t, 35.001, summaries[0].Location.Lat)
	assert.Equal(t, 139.001, summaries[0].Location.Lng)
}

// The provider ceiling is enforced locally: a limit of 40 must go out as 20.
func TestClient_NearbySearch_CapsLimitAtProviderMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchNearbyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.ProviderMaxResults, req.MaxResultCount)
		assert.Equal(t, []string{"restaurant"}, req.IncludedTypes)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(searchNearbyResponse{}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	summaries, err := c.NearbySearch(context.Background(), domain.LatLng{Lat: 35.0, Lng: 139.0}, 1000, "ja", 40, nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestClient_PlaceDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/places/ChIJ001", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("languageCode"))
		assert.Equal(t, testAPIKey, r.Header.Get("X-Goog-Api-Key"))

		resp := place{
			ID:                    "ChIJ001",
			DisplayName:           localizedText{Text: "Menya Taro", LanguageCode: "en"},
			ShortFormattedAddress: "1-2-3 Yurakucho, Chiyoda",
			Location:              latLng{Latitude: 35.001, Longitude: 139.001},
			Types:                 []string{"ramen_restaurant", "restaurant"},
			PrimaryType:           "ramen_restaurant",
			Rating:                4.4,
			UserRatingCount:       321,
			GoogleMapsURI:         "https://maps.google.com/?cid=123",
			Photos:                []photo{{Name: "places/ChIJ001/photos/abc"}},
			Reviews: []review{
				{
					Rating:            5,
					Text:              localizedText{Text: "Great noodles", LanguageCode: "en"},
					OriginalText:      localizedText{Text: "麺が最高", LanguageCode: "ja"},
					AuthorAttribution: authorAttribution{DisplayName: "Hanako"},
				},
				{
					Rating:            4,
					Text:              localizedText{Text: "Solid bowl", LanguageCode: "en"},
					OriginalText:      localizedText{Text: "Solid bowl", LanguageCode: "en"},
					AuthorAttribution: authorAttribution{DisplayName: "Taro"},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	detail, err := c.PlaceDetails(context.Background(), "ChIJ001", "en")
	require.NoError(t, err)

	assert.Equal(t, "ChIJ001", detail.ID)
	assert.Equal(t, "Menya Taro", detail.Name)
	assert.Equal(t, "ramen_restaurant", detail.PrimaryType)
	assert.Equal(t, 4.4, detail.Rating)
	assert.Equal(t, 321, detail.ReviewCount)
	assert.Equal(t, "https://maps.google.com/?cid=123", detail.GoogleMapURL)
	assert.Equal(t, srv.URL+"/places/ChIJ001/photos/abc/media?maxWidthPx=800&key="+testAPIKey, detail.PhotoURL)

	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "Hanako", detail.Reviews[0].Author)
	assert.True(t, detail.Reviews[0].Translated, "language differs from original, should be translated")
	assert.False(t, detail.Reviews[1].Translated, "same language as original, not translated")
}

func TestClient_PlaceDetails_MapURLFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(place{ID: "ChIJ002"}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	detail, err := c.PlaceDetails(context.Background(), "ChIJ002", "ja")
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:ChIJ002", detail.GoogleMapURL)
	assert.Empty(t, detail.PhotoURL)
}

func TestClient_NearbySearch_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.NearbySearch(context.Background(), domain.LatLng{Lat: 35.0, Lng: 139.0}, 1000, "ja", 5, nil)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Equal(t, "Quota exceeded", perr.Message)
}

func TestClient_PlaceDetails_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.PlaceDetails(context.Background(), "ChIJ001", "ja")

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadGateway, perr.Status)
	assert.Equal(t, "upstream unavailable", perr.Message)
}

func TestClient_NearbySearch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.NearbySearch(context.Background(), domain.LatLng{Lat: 35.0, Lng: 139.0}, 1000, "ja", 5, nil)
	require.Error(t, err)
}
