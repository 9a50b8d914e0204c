// Package config provides configuration management for plantae.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for values not set in the settings file or environment.
const (
	DefaultPort         = 8321
	DefaultGeminiModel  = "gemini-2.0-flash"
	DefaultGeminiURL    = "https://generativelanguage.googleapis.com"
	DefaultGBIFURL      = "https://api.gbif.org"
	DefaultCacheTTL     = 24 * time.Hour
	DefaultSuggestDelay = 300 * time.Millisecond
)

// Config holds all runtime settings.
type Config struct {
	Port          int
	DBPath        string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GBIFBaseURL   string
	CacheTTL      time.Duration
	SuggestDelay  time.Duration
}

// fileSettings is the YAML shape of the settings file. Durations are plain
// integers (hours / milliseconds) to keep the file hand-editable.
type fileSettings struct {
	Port           int    `yaml:"port"`
	DBPath         string `yaml:"db_path"`
	GeminiAPIKey   string `yaml:"gemini_api_key"`
	GeminiModel    string `yaml:"gemini_model"`
	GeminiBaseURL  string `yaml:"gemini_base_url"`
	GBIFBaseURL    string `yaml:"gbif_base_url"`
	CacheTTLHours  int    `yaml:"cache_ttl_hours"`
	SuggestDelayMS int    `yaml:"suggest_delay_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:          DefaultPort,
		DBPath:        DBPath(),
		GeminiModel:   DefaultGeminiModel,
		GeminiBaseURL: DefaultGeminiURL,
		GBIFBaseURL:   DefaultGBIFURL,
		CacheTTL:      DefaultCacheTTL,
		SuggestDelay:  DefaultSuggestDelay,
	}
}

// Load reads the settings file if present and applies environment overrides.
// A missing settings file is not an error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		var fs fileSettings
		if err := yaml.Unmarshal(data, &fs); err != nil {
			return nil, err
		}
		applyFile(cfg, &fs)
	}

	cfg.Port = getEnvAsInt("PORT", cfg.Port)
	cfg.DBPath = getEnv("PLANTAE_DB_PATH", cfg.DBPath)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiBaseURL = getEnv("GEMINI_BASE_URL", cfg.GeminiBaseURL)
	cfg.GBIFBaseURL = getEnv("GBIF_BASE_URL", cfg.GBIFBaseURL)

	return cfg, nil
}

func applyFile(cfg *Config, fs *fileSettings) {
	if fs.Port > 0 {
		cfg.Port = fs.Port
	}
	if fs.DBPath != "" {
		cfg.DBPath = fs.DBPath
	}
	if fs.GeminiAPIKey != "" {
		cfg.GeminiAPIKey = fs.GeminiAPIKey
	}
	if fs.GeminiModel != "" {
		cfg.GeminiModel = fs.GeminiModel
	}
	if fs.GeminiBaseURL != "" {
		cfg.GeminiBaseURL = fs.GeminiBaseURL
	}
	if fs.GBIFBaseURL != "" {
		cfg.GBIFBaseURL = fs.GBIFBaseURL
	}
	if fs.CacheTTLHours > 0 {
		cfg.CacheTTL = time.Duration(fs.CacheTTLHours) * time.Hour
	}
	if fs.SuggestDelayMS > 0 {
		cfg.SuggestDelay = time.Duration(fs.SuggestDelayMS) * time.Millisecond
	}
}

// DataDir returns the plantae data directory (~/.plantae).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".plantae")
}

// DBPath returns the default SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "plantae.db")
}

// SettingsPath returns the YAML settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "plantae.yaml")
}

// EnsureDataDir creates the data directory if it does not exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0o755)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
