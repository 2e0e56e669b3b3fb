package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the test sees pure defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SCORMGEN_API_KEY",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"LLM_TEMPERATURE", "LLM_MAX_TOKENS",
		"DEFAULT_MODULES", "DEFAULT_SECTIONS_PER_MODULE",
		"DEFAULT_UNITS_PER_SECTION", "DEFAULT_SCREENS_PER_UNIT",
		"DEFAULT_QUESTIONS_PER_UNIT", "DEFAULT_FINAL_TEST_QUESTIONS",
		"PASSING_SCORE", "MAX_ATTEMPTS", "MAX_TIME_MINUTES",
		"OUTPUT_DIR", "CACHE_DIR", "MAX_UPLOAD_BYTES", "TASK_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d", cfg.MaxTokens)
	}
	if cfg.FinalTestQuestions != 5 {
		t.Errorf("FinalTestQuestions = %d", cfg.FinalTestQuestions)
	}
	if cfg.TaskTTL != time.Hour {
		t.Errorf("TaskTTL = %v", cfg.TaskTTL)
	}
}

func TestLoadTemperatureBounds(t *testing.T) {
	tests := []struct {
		env  string
		want float64
	}{
		{"1.2", 1.2},
		{"1.5", 1.5},
		{"1.9", 1.5},
		{"-0.3", 0.7},
		{"not-a-number", 0.7},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv("LLM_TEMPERATURE", tt.env)
		if got := Load().Temperature; got != tt.want {
			t.Errorf("LLM_TEMPERATURE=%q: Temperature = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("hosted default endpoint accepted without an api key")
	}

	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	if err := Load().Validate(); err != nil {
		t.Errorf("local endpoint rejected: %v", err)
	}
}

func TestSettings(t *testing.T) {
	clearEnv(t)
	if got := Load().Settings(); got.PassingScore != 80 || got.MaxAttempts != 3 || got.MaxTimeMinutes != 60 {
		t.Errorf("default settings = %+v", got)
	}

	t.Setenv("PASSING_SCORE", "90")
	if got := Load().Settings(); got.PassingScore != 90 {
		t.Errorf("PassingScore = %d, want 90", got.PassingScore)
	}
}
