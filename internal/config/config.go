// Package config handles configuration loading and management for the
// kaizen AI core. It supports XDG config paths, project-level overrides,
// and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// Config holds all configuration for the AI core.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tokens    TokensConfig    `mapstructure:"tokens"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Retries   RetriesConfig   `mapstructure:"retries"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// UseBedrock switches to the AWS Bedrock auth path.
	UseBedrock bool `mapstructure:"use_bedrock"`
	// AWSRegion is the Bedrock region (e.g., "us-west-2").
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS profile name.
	AWSProfile string `mapstructure:"aws_profile"`
}

// RateLimitConfig holds request throttling settings.
type RateLimitConfig struct {
	// RequestsPerMinute is the per-user admission ceiling.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// TokensConfig holds the monthly token caps per plan and model.
type TokensConfig struct {
	// Free maps model id to the free-tier monthly cap.
	Free map[string]int64 `mapstructure:"free"`
	// Pro maps model id to the pro-tier monthly cap.
	Pro map[string]int64 `mapstructure:"pro"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	// Backend selects the store: "memory" or "sqlite".
	Backend string `mapstructure:"backend"`
	// TTLHours is the entry lifetime in hours.
	TTLHours int `mapstructure:"ttl_hours"`
	// MaxEntries bounds the in-memory store.
	MaxEntries int `mapstructure:"max_entries"`
	// Path is the SQLite database location for the durable backend.
	Path string `mapstructure:"path"`
}

// TTL returns the configured entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// RetriesConfig holds the advisory retry budget for callers. The
// orchestrator itself never retries.
type RetriesConfig struct {
	Max int `mapstructure:"max"`
}

// LoggingConfig holds diagnostic logging settings.
type LoggingConfig struct {
	// DebugLog is the debug log file path; empty disables logging.
	DebugLog string `mapstructure:"debug_log"`
}

// Limits overlays the configured caps onto the given defaults and returns
// the tracker's quota table. Models absent from the config keep their
// built-in caps.
func (t TokensConfig) Limits(defaults map[models.Plan]map[models.Model]int64) map[models.Plan]map[models.Model]int64 {
	limits := make(map[models.Plan]map[models.Model]int64, len(defaults))
	for plan, perModel := range defaults {
		limits[plan] = make(map[models.Model]int64, len(perModel))
		for model, limit := range perModel {
			limits[plan][model] = limit
		}
	}
	for model, limit := range t.Free {
		limits[models.PlanFree][models.Model(model)] = limit
	}
	for model, limit := range t.Pro {
		limits[models.PlanPro][models.Model(model)] = limit
	}
	return limits
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.kaizen.yaml in current directory or parent)
// 3. User config (~/.config/kaizen/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFile loads configuration from a single explicit file over the
// built-in defaults. Used by the config watcher on reload.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// DefaultCachePath returns the XDG data location for the SQLite cache.
func DefaultCachePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "kaizen", "cache.db")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("rate_limit.requests_per_minute", 30)

	v.SetDefault("tokens.free", map[string]int64{})
	v.SetDefault("tokens.pro", map[string]int64{})

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.path", DefaultCachePath())

	v.SetDefault("retries.max", 2)

	v.SetDefault("logging.debug_log", "")
}

// getUserConfigDir returns the XDG config directory for kaizen.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "kaizen")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "kaizen")
	}
	return filepath.Join(home, ".config", "kaizen")
}

// findProjectConfig searches for .kaizen.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".kaizen.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
