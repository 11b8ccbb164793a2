package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	ModelsPath     string
	StorageBaseURL string
	StoragePath    string

	// StorageProvider selects the active upload backend: "local" or "r2".
	StorageProvider string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3PublicBaseURL string
	S3PathStyle     bool

	RateLimitWindow time.Duration
	RateLimitMax    int
	RedisURL        string

	// UnlimitedAccounts lists email addresses that bypass rate limits and
	// variation clamping.
	UnlimitedAccounts []string

	DiagramCredits int

	GeoIPDBPath    string
	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ModelsPath:       getEnv("MODELS_CONFIG_PATH", "config/models.json"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage/generated"),
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Region:         getEnv("S3_REGION", "auto"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3AccessKeyID:    os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:      os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicBaseURL:  os.Getenv("S3_PUBLIC_BASE_URL"),
		S3PathStyle:      getEnvBool("S3_FORCE_PATH_STYLE", false),
		RateLimitWindow:  time.Millisecond * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 60_000)),
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10),
		RedisURL:         os.Getenv("REDIS_URL"),
		DiagramCredits:   getEnvInt("DIAGRAM_CREDITS_REQUIRED", 3),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}
	cfg.UnlimitedAccounts = getEnvList("UNLIMITED_ACCOUNTS")
	cfg.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.StorageProvider {
	case "local", "r2":
	default:
		return nil, fmt.Errorf("STORAGE_PROVIDER must be 'local' or 'r2', got %q", cfg.StorageProvider)
	}

	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
