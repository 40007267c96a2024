package config

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	RegisterTestingT(t)

	cfg, err := FromEnv(envOf(map[string]string{
		"GEMINI_API_KEY":    "g",
		"SLACK_WEBHOOK_URL": "https://hooks.slack.test/x",
		"JWT_SECRET":        "s",
	}))

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal("3000"))
	Expect(cfg.CORSAllowedOrigin).To(Equal("http://localhost:5173"))
	Expect(cfg.GeminiModel).To(Equal("gemini-2.5-flash"))
	Expect(cfg.DatabasePath).To(Equal("todos.db"))
	Expect(cfg.CacheTTL).To(Equal(30 * time.Second))
	Expect(cfg.MetricsPort).To(Equal("9091"))
	Expect(cfg.IsProduction()).To(BeFalse())
}

func TestFromEnvOverrides(t *testing.T) {
	RegisterTestingT(t)

	cfg, err := FromEnv(envOf(map[string]string{
		"GEMINI_API_KEY":      "g",
		"SLACK_WEBHOOK_URL":   "https://hooks.slack.test/x",
		"JWT_SECRET":          "s",
		"PORT":                "8080",
		"GIN_MODE":            "release",
		"REDIS_ADDR":          "localhost:6379",
		"REDIS_DB":            "2",
		"CACHE_TTL":           "2m",
		"ENFORCE_HTTPS":       "true",
		"CORS_ALLOWED_ORIGIN": "https://todos.example.com",
	}))

	Expect(err).To(BeNil())
	Expect(cfg.Port).To(Equal("8080"))
	Expect(cfg.IsProduction()).To(BeTrue())
	Expect(cfg.RedisDB).To(Equal(2))
	Expect(cfg.CacheTTL).To(Equal(2 * time.Minute))
	Expect(cfg.EnforceHTTPS).To(BeTrue())
	Expect(cfg.CORSAllowedOrigin).To(Equal("https://todos.example.com"))
}

func TestFromEnvMissingCredentials(t *testing.T) {
	RegisterTestingT(t)

	_, err := FromEnv(envOf(map[string]string{"CACHE_TTL": "soon"}))

	Expect(err).To(MatchError(ContainSubstring("GEMINI_API_KEY is required")))
	Expect(err).To(MatchError(ContainSubstring("SLACK_WEBHOOK_URL is required")))
	Expect(err).To(MatchError(ContainSubstring("JWT_SECRET is required")))
	Expect(err).To(MatchError(ContainSubstring("CACHE_TTL")))
}

func TestNewLokiLogger(t *testing.T) {
	RegisterTestingT(t)

	logger, err := NewLokiLogger("todosync", "", "debug")
	Expect(err).To(BeNil())
	Expect(logger.lokiURL).To(BeEmpty())

	_, err = NewLokiLogger("todosync", "", "loud")
	Expect(err).To(HaveOccurred())
}
