// Command discover queries a running backend for nearby dishes from the
// terminal, going through the same dispatch layer the mobile clients use.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/dish-discovery-service/internal/apiclient"
	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

type envSession struct{}

func (envSession) AccessToken() string { return os.Getenv("ACCESS_TOKEN") }

// stdoutNotifier prints gate notices instead of showing in-app dialogs.
type stdoutNotifier struct{}

func (stdoutNotifier) ShowNotice(message string) {
	fmt.Fprintln(os.Stderr, "NOTICE:", message)
}

func (stdoutNotifier) ShowStoreNotice(message, storeURL string) {
	fmt.Fprintln(os.Stderr, "NOTICE:", message)
	fmt.Fprintln(os.Stderr, "Update at:", storeURL)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	lat := flag.Float64("lat", 0, "latitude of the search center (required)")
	lng := flag.Float64("lng", 0, "longitude of the search center (required)")
	radius := flag.Int("radius", 0, "search radius in meters")
	limit := flag.Int("limit", 0, "maximum number of results")
	lang := flag.String("lang", "", "response language code")
	category := flag.String("category", "", "comma-separated place categories")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client := apiclient.New(apiclient.Options{
		BaseURL:      envOr("BACKEND_BASE_URL", "http://localhost:8080"),
		AppVersion:   envOr("APP_VERSION", "0.0.0"),
		Platform:     envOr("PLATFORM", "android"),
		AppStoreURL:  os.Getenv("APP_STORE_URL"),
		PlayStoreURL: os.Getenv("PLAY_STORE_URL"),
		Session:      envSession{},
		Notifier:     stdoutNotifier{},
		Logger:       logger,
	})

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(*lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(*lng, 'f', -1, 64))
	if *radius > 0 {
		query.Set("radius", strconv.Itoa(*radius))
	}
	if *limit > 0 {
		query.Set("limit", strconv.Itoa(*limit))
	}
	if *lang != "" {
		query.Set("lang", *lang)
	}
	if *category != "" {
		query.Set("category", *category)
	}

	var items []domain.DishMediaItem
	err := client.Call(context.Background(), "dish-media", apiclient.V1,
		apiclient.CallOptions{Query: query}, &items)
	if err != nil {
		fmt.Fprintln(os.Stderr, "discover failed:", err)
		os.Exit(1)
	}

	if len(items) == 0 {
		fmt.Println("no dishes found")
		return
	}
	for _, item := range items {
		fmt.Printf("%-30s %-24s %6.0fm  %.1f★ (%d reviews)\n",
			item.DishName, item.Category, item.DistanceMeters, item.Rating, item.ReviewCount)
	}
}
