package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the Ideaboard API.
type Config struct {
	Environment    string
	HTTPPort       int
	LogLevel       string
	AllowedOrigins []string

	// Relational data store.
	DataStore    string
	DatabaseURL  string
	ProfileTable string

	// Identity provider (hosted GoTrue-compatible auth).
	IdentityURL string
	IdentityKey string
	JWTSecret   string

	// Token authorizing the pipeline's ingestion endpoints.
	ServiceToken string

	// Named operation timeouts. Every auth-provider call uses AuthTimeout,
	// every data-store call uses StoreTimeout.
	AuthTimeout  time.Duration
	StoreTimeout time.Duration

	// Profile cache bounds.
	ProfileCacheTTL  time.Duration
	ProfileCacheSize int
}

// Load reads configuration from environment variables with sensible defaults
// for local development.
func Load() (Config, error) {
	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/ideaboard_database_url")
	if err != nil {
		return Config{}, err
	}

	jwtSecret, err := getEnvOrFile("SUPABASE_JWT_SECRET", "/run/secrets/ideaboard_jwt_secret")
	if err != nil {
		return Config{}, err
	}

	serviceToken, err := getEnvOrFile("SERVICE_TOKEN", "/run/secrets/ideaboard_service_token")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:    getEnv("APP_ENV", "development"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins: parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		DataStore:      strings.ToLower(getEnv("DATA_STORE", "memory")),
		DatabaseURL:    databaseURL,
		ProfileTable:   getEnv("PROFILE_TABLE", "user_profiles"),
		IdentityURL:    strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		IdentityKey:    os.Getenv("SUPABASE_ANON_KEY"),
		JWTSecret:      strings.TrimSpace(jwtSecret),
		ServiceToken:   strings.TrimSpace(serviceToken),
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	if cfg.AuthTimeout, err = getDuration("AUTH_TIMEOUT", 8*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 4*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProfileCacheTTL, err = getDuration("PROFILE_CACHE_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}

	sizeValue := getEnv("PROFILE_CACHE_SIZE", "256")
	size, err := strconv.Atoi(sizeValue)
	if err != nil || size <= 0 {
		return Config{}, fmt.Errorf("invalid PROFILE_CACHE_SIZE %q", sizeValue)
	}
	cfg.ProfileCacheSize = size

	if cfg.DataStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
	}
	if strings.ContainsAny(cfg.ProfileTable, `"'; `) {
		return Config{}, fmt.Errorf("invalid PROFILE_TABLE %q", cfg.ProfileTable)
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory repositories should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, value)
	}
	return d, nil
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
