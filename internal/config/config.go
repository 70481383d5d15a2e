package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Google Places (New) provider configuration.
	PlacesAPIKey  string
	PlacesBaseURL string
	PlacesTimeout time.Duration

	// Place-detail cache. Redis is used when RedisAddr is set, otherwise an
	// in-memory LRU of PlaceCacheSize entries.
	PlaceCacheSize int
	PlaceCacheTTL  time.Duration
	RedisAddr      string

	// Fan-out bound for per-place detail lookups.
	DetailConcurrency int

	// Bearer-token verification and client gating.
	JWTSigningKey   string
	MaintenanceMode bool
	MinAppVersion   string

	// Audit event sink (enabled when both brokers and topic are set).
	KafkaBrokers    []string
	KafkaAuditTopic string

	CORSAllowedOrigins []string

	// Base URL for issued upload URLs.
	UploadBaseURL string
}

// AuditEnabled reports whether the Kafka audit sink is configured.
func (c *Config) AuditEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaAuditTopic != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	placesTimeoutStr := sharedcfg.EnvOrDefault("GOOGLE_PLACES_TIMEOUT", "10s")
	placesTimeout, err := time.ParseDuration(placesTimeoutStr)
	if err != nil || placesTimeout <= 0 {
		return nil, errors.New("invalid GOOGLE_PLACES_TIMEOUT")
	}

	cacheTTLStr := sharedcfg.EnvOrDefault("PLACE_CACHE_TTL", "15m")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil || cacheTTL <= 0 {
		return nil, errors.New("invalid PLACE_CACHE_TTL")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PlacesAPIKey:  os.Getenv("GOOGLE_PLACES_API_KEY"),
		PlacesBaseURL: sharedcfg.EnvOrDefault("GOOGLE_PLACES_BASE_URL", "https://places.googleapis.com/v1"),
		PlacesTimeout: placesTimeout,

		PlaceCacheSize: parsePositiveInt("PLACE_CACHE_SIZE", 1000),
		PlaceCacheTTL:  cacheTTL,
		RedisAddr:      os.Getenv("REDIS_ADDR"),

		DetailConcurrency: parsePositiveInt("DETAIL_CONCURRENCY", 8),

		JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
		MaintenanceMode: os.Getenv("MAINTENANCE_MODE") == "true",
		MinAppVersion:   os.Getenv("MIN_APP_VERSION"),

		KafkaBrokers:    brokers,
		KafkaAuditTopic: os.Getenv("KAFKA_AUDIT_TOPIC"),

		CORSAllowedOrigins: splitCSV(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		UploadBaseURL: sharedcfg.EnvOrDefault("UPLOAD_BASE_URL", "https://uploads.example.com"),
	}

	if cfg.PlacesAPIKey == "" {
		return nil, errors.New("GOOGLE_PLACES_API_KEY is required")
	}
	if cfg.JWTSigningKey == "" {
		return nil, errors.New("JWT_SIGNING_KEY is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAuditTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_AUDIT_TOPIC is not")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
