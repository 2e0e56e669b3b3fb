// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/akozlov/scormgen/internal/course"
)

type Config struct {
	Port string

	// Auth for the HTTP API. Empty disables auth (local use).
	APIKey string

	// LLM backend. The base URL may point at any OpenAI-compatible server;
	// the API key is only required for the hosted default.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Generation defaults, overridable per request.
	Temperature        float64
	MaxTokens          int
	DefaultModules     int
	SectionsPerModule  int
	UnitsPerSection    int
	ScreensPerUnit     int
	QuestionsPerUnit   int
	FinalTestQuestions int

	// SCORM runtime defaults stamped into the manifest.
	PassingScore   int
	MaxAttempts    int
	MaxTimeMinutes int

	// Filesystem
	OutputDir string
	CacheDir  string

	// Upload limits
	MaxUploadBytes int64

	// Task state
	TaskTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("SCORMGEN_API_KEY"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),

		Temperature:        envFloat("LLM_TEMPERATURE", 0.7),
		MaxTokens:          envInt("LLM_MAX_TOKENS", 4096),
		DefaultModules:     envInt("DEFAULT_MODULES", 3),
		SectionsPerModule:  envInt("DEFAULT_SECTIONS_PER_MODULE", 2),
		UnitsPerSection:    envInt("DEFAULT_UNITS_PER_SECTION", 2),
		ScreensPerUnit:     envInt("DEFAULT_SCREENS_PER_UNIT", 2),
		QuestionsPerUnit:   envInt("DEFAULT_QUESTIONS_PER_UNIT", 1),
		FinalTestQuestions: envInt("DEFAULT_FINAL_TEST_QUESTIONS", 5),

		PassingScore:   envInt("PASSING_SCORE", course.DefaultPassingScore),
		MaxAttempts:    envInt("MAX_ATTEMPTS", course.DefaultMaxAttempts),
		MaxTimeMinutes: envInt("MAX_TIME_MINUTES", course.DefaultMaxTimeMinutes),

		OutputDir: envOr("OUTPUT_DIR", "output"),
		CacheDir:  envOr("CACHE_DIR", ".cache"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		TaskTTL: envDuration("TASK_TTL", 1*time.Hour),
	}

	if cfg.Temperature < 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Temperature > 1.5 {
		cfg.Temperature = 1.5
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.DefaultModules <= 0 {
		cfg.DefaultModules = 3
	}
	if cfg.SectionsPerModule <= 0 {
		cfg.SectionsPerModule = 2
	}
	if cfg.UnitsPerSection <= 0 {
		cfg.UnitsPerSection = 2
	}
	if cfg.ScreensPerUnit <= 0 {
		cfg.ScreensPerUnit = 2
	}
	if cfg.QuestionsPerUnit <= 0 {
		cfg.QuestionsPerUnit = 1
	}
	if cfg.FinalTestQuestions < 0 {
		cfg.FinalTestQuestions = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.TaskTTL <= 0 {
		cfg.TaskTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "https://api.openai.com/v1" {
		return fmt.Errorf("OPENAI_API_KEY is required when using the default endpoint")
	}
	return nil
}

// Settings returns the configured SCORM runtime defaults.
func (c Config) Settings() course.Settings {
	return course.Settings{
		PassingScore:   c.PassingScore,
		MaxAttempts:    c.MaxAttempts,
		MaxTimeMinutes: c.MaxTimeMinutes,
	}.WithDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
