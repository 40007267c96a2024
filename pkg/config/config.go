package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port        string
	Environment string
	LogLevel    string

	GeminiAPIKey    string
	GeminiModel     string
	SlackWebhookURL string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	DatabaseURL  string
	DatabasePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	CORSAllowedOrigin string
	EnforceHTTPS      bool

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	MetricsPort  string
	OTLPEndpoint string
	LokiURL      string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:              "3000",
		Environment:       "development",
		LogLevel:          "info",
		GeminiModel:       "gemini-2.5-flash",
		DatabasePath:      "todos.db",
		CacheTTL:          30 * time.Second,
		CORSAllowedOrigin: "http://localhost:5173",
		EnforceHTTPS:      false,
		RateLimitEnabled:  true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"GET /todos":        {Requests: 100, Window: time.Minute},
			"POST /todos":       {Requests: 30, Window: time.Minute},
			"PUT /todos/:id":    {Requests: 60, Window: time.Minute},
			"DELETE /todos/:id": {Requests: 60, Window: time.Minute},
			"POST /summarize":   {Requests: 5, Window: time.Minute},
		},
		MetricsPort: "9091",
	}
}

// Load reads the process environment, after merging a .env file when one exists.
// Missing credentials are reported together.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := GetDefaultConfig()

	get := func(key string, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return fallback
	}

	cfg.Port = get("PORT", cfg.Port)
	cfg.LogLevel = get("LOG_LEVEL", cfg.LogLevel)
	if getenv("GIN_MODE") == "release" {
		cfg.Environment = "production"
	}

	cfg.GeminiAPIKey = get("GEMINI_API_KEY", "")
	cfg.GeminiModel = get("GEMINI_MODEL", cfg.GeminiModel)
	cfg.SlackWebhookURL = get("SLACK_WEBHOOK_URL", "")

	cfg.JWTSecret = get("JWT_SECRET", "")
	cfg.JWTIssuer = get("JWT_ISSUER", "")
	cfg.JWTAudience = get("JWT_AUDIENCE", "")

	cfg.DatabaseURL = get("DATABASE_URL", "")
	cfg.DatabasePath = get("DATABASE_PATH", cfg.DatabasePath)

	cfg.RedisAddr = get("REDIS_ADDR", "")
	cfg.RedisPassword = get("REDIS_PASSWORD", "")
	cfg.CORSAllowedOrigin = get("CORS_ALLOWED_ORIGIN", cfg.CORSAllowedOrigin)
	cfg.MetricsPort = get("METRICS_PORT", cfg.MetricsPort)
	cfg.OTLPEndpoint = get("OTLP_ENDPOINT", "")
	cfg.LokiURL = get("LOKI_URL", "")

	var errs []error

	if raw := get("REDIS_DB", ""); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDIS_DB must be an integer: %w", err))
		}
		cfg.RedisDB = db
	}

	if raw := get("CACHE_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("CACHE_TTL must be a duration: %w", err))
		}
		cfg.CacheTTL = ttl
	}

	if raw := get("ENFORCE_HTTPS", ""); raw != "" {
		enforce, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("ENFORCE_HTTPS must be a boolean: %w", err))
		}
		cfg.EnforceHTTPS = enforce
	}

	required := []struct{ key, value string }{
		{"GEMINI_API_KEY", cfg.GeminiAPIKey},
		{"SLACK_WEBHOOK_URL", cfg.SlackWebhookURL},
		{"JWT_SECRET", cfg.JWTSecret},
	}

	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.key))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
