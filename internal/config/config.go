package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"httpAddr"`
	LogLevel string `yaml:"logLevel"`

	// DBDriver selects the gorm dialect: "sqlite" or "mysql".
	DBDriver string `yaml:"dbDriver"`
	DBDSN    string `yaml:"dbDSN"`

	JWTSecret    string        `yaml:"jwtSecret"`
	JWTTTL       time.Duration `yaml:"jwtTTL"`
	CookieSecure bool          `yaml:"cookieSecure"`

	SessionBackend string        `yaml:"sessionBackend"`
	SessionTTL     time.Duration `yaml:"sessionTTL"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	RedisPrefix   string `yaml:"redisPrefix"`

	TranscriptBackend string        `yaml:"transcriptBackend"`
	TranscriptDir     string        `yaml:"transcriptDir"`
	TranscriptTTL     time.Duration `yaml:"transcriptTTL"`

	ChatContextWindowSize int    `yaml:"chatContextWindowSize"`
	ChatHistoryLimit      int    `yaml:"chatHistoryLimit"`
	FallbackRepliesPath   string `yaml:"fallbackRepliesPath"`

	// AI provider
	AIProvider        string        `yaml:"aiProvider"`
	AITimeout         time.Duration `yaml:"aiTimeout"`
	OllamaBaseURL     string        `yaml:"ollamaBaseURL"`
	OllamaModel       string        `yaml:"ollamaModel"`
	OpenRouterBaseURL string        `yaml:"openRouterBaseURL"`
	OpenRouterAPIKey  string        `yaml:"openRouterAPIKey"`
	OpenRouterModel   string        `yaml:"openRouterModel"`
	OpenRouterSiteURL string        `yaml:"openRouterSiteURL"`
	OpenRouterAppName string        `yaml:"openRouterAppName"`
	GeminiAPIKey      string        `yaml:"geminiAPIKey"`
	GeminiModel       string        `yaml:"geminiModel"`
}

// DefaultJWTSecret is only fit for local development; anyone who knows it can
// mint bearer tokens.
const DefaultJWTSecret = "dev-secret-change-me"

// UsesDefaultJWTSecret reports whether tokens are signed with DefaultJWTSecret.
func (c Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func defaults() Config {
	return Config{
		HTTPAddr: ":8080",
		LogLevel: "info",

		DBDriver: "sqlite",
		DBDSN:    "diy_projects.db",

		JWTSecret: DefaultJWTSecret,
		JWTTTL:    24 * time.Hour,

		SessionTTL: 7 * 24 * time.Hour,

		RedisPrefix: "diy",

		TranscriptDir: "data/transcripts",
		TranscriptTTL: 30 * 24 * time.Hour,

		ChatContextWindowSize: 5,
		ChatHistoryLimit:      100,

		AIProvider:        "ollama",
		AITimeout:         30 * time.Second,
		OllamaBaseURL:     "http://localhost:11434",
		OllamaModel:       "llama3:latest",
		OpenRouterBaseURL: "https://openrouter.ai/api/v1",
		OpenRouterModel:   "openrouter/auto",
		GeminiModel:       "gemini-2.0-flash",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_PATH, and finally environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	envString(&cfg.HTTPAddr, "HTTP_ADDR")
	envString(&cfg.LogLevel, "LOG_LEVEL")

	// DSN demo (mysql):
	// app:apppass@tcp(127.0.0.1:3306)/diy?charset=utf8mb4&parseTime=true&loc=Local
	envString(&cfg.DBDriver, "DB_DRIVER")
	envString(&cfg.DBDSN, "DB_DSN")

	envString(&cfg.JWTSecret, "JWT_SECRET")
	envDuration(&cfg.JWTTTL, "JWT_TTL")
	envBool(&cfg.CookieSecure, "COOKIE_SECURE")

	envString(&cfg.SessionBackend, "SESSION_BACKEND")
	envDuration(&cfg.SessionTTL, "SESSION_TTL")

	envString(&cfg.RedisAddr, "REDIS_ADDR")
	envString(&cfg.RedisPassword, "REDIS_PASSWORD")
	envInt(&cfg.RedisDB, "REDIS_DB")
	envString(&cfg.RedisPrefix, "REDIS_PREFIX")

	envString(&cfg.TranscriptBackend, "TRANSCRIPT_BACKEND")
	envString(&cfg.TranscriptDir, "TRANSCRIPT_DIR")
	envDuration(&cfg.TranscriptTTL, "TRANSCRIPT_TTL")

	envInt(&cfg.ChatContextWindowSize, "CHAT_CONTEXT_WINDOW_SIZE")
	envInt(&cfg.ChatHistoryLimit, "CHAT_HISTORY_LIMIT")
	envString(&cfg.FallbackRepliesPath, "FALLBACK_REPLIES_PATH")

	envString(&cfg.AIProvider, "AI_PROVIDER")
	envDuration(&cfg.AITimeout, "AI_TIMEOUT")
	envString(&cfg.OllamaBaseURL, "OLLAMA_BASE_URL")
	envString(&cfg.OllamaModel, "OLLAMA_MODEL")
	envString(&cfg.OpenRouterBaseURL, "OPENROUTER_BASE_URL")
	envString(&cfg.OpenRouterAPIKey, "OPENROUTER_API_KEY")
	envString(&cfg.OpenRouterModel, "OPENROUTER_MODEL")
	envString(&cfg.OpenRouterSiteURL, "OPENROUTER_SITE_URL")
	envString(&cfg.OpenRouterAppName, "OPENROUTER_APP_NAME")
	envString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	envString(&cfg.GeminiModel, "GEMINI_MODEL")

	// redis is the default backend whenever an address is configured
	if cfg.SessionBackend == "" {
		cfg.SessionBackend = backendFor(cfg.RedisAddr, "memory")
	}
	if cfg.TranscriptBackend == "" {
		cfg.TranscriptBackend = backendFor(cfg.RedisAddr, "file")
	}
	cfg.SessionBackend = strings.ToLower(cfg.SessionBackend)
	cfg.TranscriptBackend = strings.ToLower(cfg.TranscriptBackend)
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)

	if cfg.ChatContextWindowSize <= 0 {
		cfg.ChatContextWindowSize = 5
	}
	if cfg.ChatHistoryLimit < cfg.ChatContextWindowSize {
		cfg.ChatHistoryLimit = cfg.ChatContextWindowSize
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 30 * time.Second
	}
	// secure cookies mean a real deployment
	if cfg.CookieSecure && (cfg.UsesDefaultJWTSecret() || strings.TrimSpace(cfg.JWTSecret) == "") {
		return cfg, fmt.Errorf("JWT_SECRET must be set when COOKIE_SECURE is enabled")
	}
	return cfg, nil
}

func backendFor(redisAddr, fallback string) string {
	if strings.TrimSpace(redisAddr) != "" {
		return "redis"
	}
	return fallback
}

func envString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			*dst = d
		}
	}
}
