// Package config loads and validates the process configuration from the
// environment. Everything is read once at startup; a missing required
// setting is fatal there, never a per-message error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ExtractorMode selects which of the two event extraction strategies the
// pipeline runs. The choice is made once at startup; the two modes are never
// combined in a single run.
type ExtractorMode string

const (
	ExtractorPattern ExtractorMode = "pattern"
	ExtractorLLM     ExtractorMode = "llm"
)

// IsValid reports whether m is a recognised extractor mode.
func (m ExtractorMode) IsValid() bool {
	return m == ExtractorPattern || m == ExtractorLLM
}

type Config struct {
	TelegramToken   string
	OpenAIKey       string
	CalendarID      string
	CredentialsFile string
	TokenFile       string

	TimezoneName    string
	Location        *time.Location
	ActiveStartHour int
	ActiveEndHour   int

	Extractor    ExtractorMode
	LanguageHint string
	LLMModel     string
	WhisperModel string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		CalendarID:      envOr("GOOGLE_CALENDAR_ID", "primary"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		TokenFile:       os.Getenv("GOOGLE_TOKEN_FILE"),
		TimezoneName:    envOr("TIMEZONE", "Europe/Kyiv"),
		Extractor:       ExtractorMode(envOr("EXTRACTOR", string(ExtractorLLM))),
		LanguageHint:    envOr("LANGUAGE_HINT", "uk"),
		LLMModel:        envOr("LLM_MODEL", "gpt-4o-mini"),
		WhisperModel:    envOr("WHISPER_MODEL", "whisper-1"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS_FILE not set")
	}
	if cfg.TokenFile == "" {
		return nil, fmt.Errorf("GOOGLE_TOKEN_FILE not set")
	}
	if !cfg.Extractor.IsValid() {
		return nil, fmt.Errorf("EXTRACTOR must be %q or %q, got %q",
			ExtractorPattern, ExtractorLLM, cfg.Extractor)
	}

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", cfg.TimezoneName, err)
	}
	cfg.Location = loc

	cfg.ActiveStartHour, err = envHour("ACTIVE_START_HOUR", 8)
	if err != nil {
		return nil, err
	}
	cfg.ActiveEndHour, err = envHour("ACTIVE_END_HOUR", 24)
	if err != nil {
		return nil, err
	}
	if cfg.ActiveStartHour >= cfg.ActiveEndHour {
		return nil, fmt.Errorf("ACTIVE_START_HOUR (%d) must be before ACTIVE_END_HOUR (%d)",
			cfg.ActiveStartHour, cfg.ActiveEndHour)
	}

	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envHour(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("%s must be an hour in [0,24], got %q", k, v)
	}
	return h, nil
}
