package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Sightings repository behind /api.
	StoreDriver string
	StorePath   string

	// Optional remote data source for sessions. Empty reads from the repository.
	SourceURL     string
	SourceTimeout time.Duration
	SourceRetries int

	SessionTTL time.Duration

	// Map position for locations missing from the coordinate table. When
	// disabled, such locations get no marker.
	MarkerFallbackEnabled bool
	MarkerFallbackLat     float64
	MarkerFallbackLon     float64

	WriteRateLimit float64
	WriteRateBurst int

	// Kafka publishing of recorded sightings; disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := parsePositiveDuration("SOURCE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	sessionTTL, err := parsePositiveDuration("SESSION_TTL", "30m")
	if err != nil {
		return nil, err
	}

	sourceRetries, err := parseInt("SOURCE_RETRIES", 3, 0)
	if err != nil {
		return nil, err
	}

	rateBurst, err := parseInt("WRITE_RATE_BURST", 10, 1)
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("WRITE_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid WRITE_RATE_LIMIT")
	}

	driver := sharedcfg.EnvOrDefault("STORE_DRIVER", StoreDriverFile)
	if driver != StoreDriverFile && driver != StoreDriverSQLite {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %q or %q", driver, StoreDriverFile, StoreDriverSQLite)
	}

	fallbackLat, fallbackLon, fallbackEnabled, err := parseLatLon("MARKER_FALLBACK")
	if err != nil {
		return nil, err
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

		StoreDriver: driver,
		StorePath:   sharedcfg.EnvOrDefault("STORE_PATH", defaultStorePath(driver)),

		SourceURL:     os.Getenv("SOURCE_URL"),
		SourceTimeout: sourceTimeout,
		SourceRetries: sourceRetries,

		SessionTTL: sessionTTL,

		MarkerFallbackEnabled: fallbackEnabled,
		MarkerFallbackLat:     fallbackLat,
		MarkerFallbackLon:     fallbackLon,

		WriteRateLimit: rateLimit,
		WriteRateBurst: rateBurst,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "sightings-recorded"),
		KafkaEnabled: len(brokers) > 0,
	}

	if cfg.StorePath == "" {
		return nil, errors.New("STORE_PATH is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func defaultStorePath(driver string) string {
	if driver == StoreDriverSQLite {
		return "data/sightings.db"
	}
	return "data/sightings.json"
}

// parseLatLon reads a "lat,lon" pair. An unset variable reports ok=false.
func parseLatLon(key string) (lat, lon float64, ok bool, err error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, 0, false, nil
	}
	latStr, lonStr, found := strings.Cut(v, ",")
	if !found {
		return 0, 0, false, fmt.Errorf("invalid %s: want lat,lon", key)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false, fmt.Errorf("invalid %s: want lat,lon within -90..90 and -180..180", key)
	}
	return lat, lon, true, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, minimum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, minimum)
	}
	return n, nil
}
