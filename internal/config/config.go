// Package config provides application configuration with multi-source priority.
//
// Sources (highest to lowest priority):
//  1. Environment variables (SHIRAJI_* overrides)
//  2. Config file (./config.yaml or ~/.shiraji/config.yaml)
//  3. Default values
//
// Validation is fail-fast: Load returns a wrapped sentinel error for the
// first invalid value so callers can check with errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidOllamaHost indicates the completion API base URL is invalid.
	ErrInvalidOllamaHost = errors.New("invalid ollama host")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTopP indicates the top_p value is out of range.
	ErrInvalidTopP = errors.New("invalid top_p")

	// ErrInvalidPenalty indicates a repetition penalty is out of range.
	ErrInvalidPenalty = errors.New("invalid penalty")

	// ErrInvalidHistoryLimit indicates the conversation cap is too small.
	ErrInvalidHistoryLimit = errors.New("invalid history limit")

	// ErrInvalidTimeout indicates a non-positive timeout.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidListenAddr indicates the listen address is empty.
	ErrInvalidListenAddr = errors.New("invalid listen address")
)

// Defaults for the completion request options. These match the values the
// production assistant has always sent to the generate endpoint.
const (
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 200
	DefaultTopP             = 0.9
	DefaultFrequencyPenalty = 0.8
	DefaultPresencePenalty  = 0.6

	// DefaultHistoryLimit caps each conversation at its most recent turns.
	DefaultHistoryLimit = 20
)

// Config stores application configuration.
type Config struct {
	// Completion API
	OllamaHost string `mapstructure:"ollama_host"`
	ModelName  string `mapstructure:"model_name"`

	// Generation options sent with every completion request
	Temperature      float64 `mapstructure:"temperature"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	TopP             float64 `mapstructure:"top_p"`
	FrequencyPenalty float64 `mapstructure:"frequency_penalty"`
	PresencePenalty  float64 `mapstructure:"presence_penalty"`

	// Conversation retention
	HistoryLimit int `mapstructure:"history_limit"`

	// Upstream call ceilings
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
	StreamTimeout   time.Duration `mapstructure:"stream_timeout"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout"`

	// HTTP server
	ListenAddr  string   `mapstructure:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy"`
	RateBurst   int      `mapstructure:"rate_burst"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".shiraji"))
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ollama_host", "https://llm.shiraji.ae")
	v.SetDefault("model_name", "mistral")

	v.SetDefault("temperature", DefaultTemperature)
	v.SetDefault("max_tokens", DefaultMaxTokens)
	v.SetDefault("top_p", DefaultTopP)
	v.SetDefault("frequency_penalty", DefaultFrequencyPenalty)
	v.SetDefault("presence_penalty", DefaultPresencePenalty)

	v.SetDefault("history_limit", DefaultHistoryLimit)

	v.SetDefault("generate_timeout", 30*time.Second)
	v.SetDefault("stream_timeout", 60*time.Second)
	v.SetDefault("probe_timeout", 5*time.Second)

	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("cors_origins", []string{"https://shiraji.ae"})
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_burst", 60)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", true)
}

// bindEnvVariables binds environment overrides explicitly. Hardcoded keys
// cannot fail to bind; a bind error here is a bug, not a runtime condition.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("ollama_host", "OLLAMA_BASE_URL")
	mustBind("model_name", "OLLAMA_MODEL")
	mustBind("listen_addr", "SHIRAJI_LISTEN_ADDR")
	mustBind("cors_origins", "SHIRAJI_CORS_ORIGINS")
	mustBind("trust_proxy", "SHIRAJI_TRUST_PROXY")
	mustBind("rate_burst", "SHIRAJI_RATE_BURST")
	mustBind("log_level", "SHIRAJI_LOG_LEVEL")
	mustBind("log_json", "SHIRAJI_LOG_JSON")
}
