// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultInputMaxRunes is the maximum accepted input length.
	DefaultInputMaxRunes = 25

	// DefaultInterpretedMaxRunes is the interpreted field length cap.
	DefaultInterpretedMaxRunes = 102

	// DefaultOfficialMaxRunes is the official field length cap.
	DefaultOfficialMaxRunes = 123

	// DefaultCombinedMaxRunes is the combined output budget.
	DefaultCombinedMaxRunes = 210

	// DefaultMinInterpretedTokens is the minimum token count for a present
	// interpreted field.
	DefaultMinInterpretedTokens = 5

	// DefaultClientHourlyCap is the per-client request cap per window.
	DefaultClientHourlyCap = 20

	// DefaultGlobalHourlyCap is the all-clients request cap per window.
	DefaultGlobalHourlyCap = 100

	// DefaultPromptMaxExamples is the number of store examples rendered
	// into the prompt.
	DefaultPromptMaxExamples = 2

	// DefaultModelMaxTokens is the completion token cap.
	DefaultModelMaxTokens = 150

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Ops       OpsConfig       `koanf:"ops"`
	Limits    LimitsConfig    `koanf:"limits"    validate:"required"`
	RateLimit RateLimitConfig `koanf:"ratelimit" validate:"required"`
	Prompt    PromptConfig    `koanf:"prompt"    validate:"required"`
	Model     ModelConfig     `koanf:"model"     validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// OpsConfig contains the operational HTTP listener settings used in daemon
// mode for health and Prometheus metrics.
type OpsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
}

// LimitsConfig contains the length governance budgets, counted in runes.
type LimitsConfig struct {
	InputMax             int `koanf:"input_max"              validate:"required,min=1,max=500"`
	InterpretedMax       int `koanf:"interpreted_max"        validate:"required,min=1"`
	OfficialMax          int `koanf:"official_max"           validate:"required,min=1"`
	CombinedMax          int `koanf:"combined_max"           validate:"required,min=1"`
	MinInterpretedTokens int `koanf:"min_interpreted_tokens" validate:"required,min=1"`
}

// RateLimitConfig contains the dual-gate rate limiter settings.
type RateLimitConfig struct {
	ClientMax      int           `koanf:"client_max"      validate:"required,min=1"`
	GlobalMax      int           `koanf:"global_max"      validate:"required,min=1"`
	Window         time.Duration `koanf:"window"          validate:"required,min=1s"`
	PurgeThreshold int           `koanf:"purge_threshold" validate:"required,min=1"`
}

// PromptConfig contains few-shot example selection settings.
type PromptConfig struct {
	MaxExamples int `koanf:"max_examples" validate:"required,min=1,max=20"`
}

// ModelConfig contains the completion backend settings.
type ModelConfig struct {
	BaseURL     string        `koanf:"base_url"    validate:"required,url"`
	APIKey      string        `koanf:"api_key"`
	Name        string        `koanf:"name"        validate:"required"`
	Temperature float64       `koanf:"temperature" validate:"min=0,max=2"`
	MaxTokens   int           `koanf:"max_tokens"  validate:"required,min=1"`
	TopP        float64       `koanf:"top_p"       validate:"min=0,max=1"`
	Timeout     time.Duration `koanf:"timeout"     validate:"required,min=1s"`
}

// StorageConfig selects and configures the quote store backend.
type StorageConfig struct {
	Backend  string `koanf:"backend"   validate:"required,oneof=file sqlite postgres"`
	Path     string `koanf:"path"`
	BasePath string `koanf:"base_path"`
	DSN      string `koanf:"dsn"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "goroku",
		"app.version":     "dev",
		"app.environment": "local",

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/goroku.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "goroku",
		"telemetry.sampling_rate": 1.0,

		"ops.enabled": false,
		"ops.addr":    ":9090",

		"limits.input_max":              DefaultInputMaxRunes,
		"limits.interpreted_max":        DefaultInterpretedMaxRunes,
		"limits.official_max":           DefaultOfficialMaxRunes,
		"limits.combined_max":           DefaultCombinedMaxRunes,
		"limits.min_interpreted_tokens": DefaultMinInterpretedTokens,

		"ratelimit.client_max":      DefaultClientHourlyCap,
		"ratelimit.global_max":      DefaultGlobalHourlyCap,
		"ratelimit.window":          "1h",
		"ratelimit.purge_threshold": 10000,

		"prompt.max_examples": DefaultPromptMaxExamples,

		"model.base_url":    "https://api.openai.com/v1",
		"model.api_key":     "",
		"model.name":        "gpt-4o-mini",
		"model.temperature": 0.7,
		"model.max_tokens":  DefaultModelMaxTokens,
		"model.top_p":       0.9,
		"model.timeout":     "60s",

		"storage.backend":   "file",
		"storage.path":      "./data/quotes.json",
		"storage.base_path": "",
		"storage.dsn":       "",
	}
}

// envTransform maps environment variable names back to config keys using
// the set of known keys. A blind underscore-to-dot replacement cannot tell
// section delimiters from underscores inside key names (GOROKU_MODEL_API_KEY
// must become model.api_key, not model.api.key), so the known keys decide.
// Unrecognized variables are ignored.
func envTransform(keys []string) func(string) string {
	byEnv := make(map[string]string, len(keys))
	for _, key := range keys {
		name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		byEnv[name] = key
	}

	return func(s string) string {
		return byEnv[strings.TrimPrefix(s, "GOROKU_")]
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (GOROKU_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("GOROKU_", ".", envTransform(k.Keys())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
