package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the spotter backend.
type Config struct {
	Addr        string
	DatabaseDSN string

	// Blob storage. Backend is "disk" or "minio".
	StorageBackend string
	StorageDir     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret     string
	TokenValidity time.Duration

	// Optional species-identification API. Empty disables the lookup.
	SpeciesAPIURL     string
	SpeciesAPITimeout time.Duration
}

// Load builds a Config from development defaults, an optional .env file,
// and environment variables, in that order.
func Load() *Config {
	// Missing .env is fine, env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:              ":8080",
		DatabaseDSN:       "spotter.db",
		StorageBackend:    "disk",
		StorageDir:        "./uploads",
		MinioEndpoint:     "localhost:9000",
		MinioAccessKey:    "minioadmin",
		MinioSecretKey:    "minioadmin",
		MinioBucket:       "sightings",
		MinioUseSSL:       false,
		JWTSecret:         "dev-secret-change-me",
		TokenValidity:     30 * 24 * time.Hour,
		SpeciesAPITimeout: 5 * time.Second,
	}

	overrideString(&cfg.Addr, "SPOTTER_ADDR")
	overrideString(&cfg.DatabaseDSN, "SPOTTER_DB")
	overrideString(&cfg.StorageBackend, "SPOTTER_STORAGE_BACKEND")
	overrideString(&cfg.StorageDir, "SPOTTER_STORAGE_DIR")
	overrideString(&cfg.MinioEndpoint, "MINIO_HOST")
	overrideString(&cfg.MinioAccessKey, "MINIO_ACCESS_KEY")
	overrideString(&cfg.MinioSecretKey, "MINIO_SECRET_KEY")
	overrideString(&cfg.MinioBucket, "MINIO_BUCKET")
	overrideBool(&cfg.MinioUseSSL, "MINIO_USE_SSL")
	overrideString(&cfg.JWTSecret, "SPOTTER_JWT_SECRET")
	overrideDuration(&cfg.TokenValidity, "SPOTTER_TOKEN_VALIDITY")
	overrideString(&cfg.SpeciesAPIURL, "SPOTTER_SPECIES_API_URL")
	overrideDuration(&cfg.SpeciesAPITimeout, "SPOTTER_SPECIES_API_TIMEOUT")

	return cfg
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func overrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
