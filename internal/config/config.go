// Package config loads server configuration from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver        string `mapstructure:"driver" yaml:"driver"`
	DatabaseURL   string `mapstructure:"database_url" yaml:"database_url"`
	MongoURL      string `mapstructure:"mongo_url" yaml:"mongo_url"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	SecretKey  string        `mapstructure:"secret_key" yaml:"secret_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// OpenAIConfig holds the completion service settings. Analysis stays on the
// local heuristic while APIKey is empty.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Model       string        `mapstructure:"model" yaml:"model"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OIDCConfig enables single sign-on when Issuer is set.
type OIDCConfig struct {
	Issuer       string `mapstructure:"issuer" yaml:"issuer"`
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url" yaml:"redirect_url"`
}

// Enabled reports whether SSO is configured.
func (o OIDCConfig) Enabled() bool { return o.Issuer != "" }

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Config is the top-level server configuration.
type Config struct {
	Addr   string       `mapstructure:"addr" yaml:"addr"`
	WebDir string       `mapstructure:"web_dir" yaml:"web_dir"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Auth   AuthConfig   `mapstructure:"auth" yaml:"auth"`
	OpenAI OpenAIConfig `mapstructure:"openai" yaml:"openai"`
	OIDC   OIDCConfig   `mapstructure:"oidc" yaml:"oidc"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

var defaults = map[string]any{
	"addr":                 ":8001",
	"web_dir":              "",
	"store.driver":         DriverMemory,
	"store.database_url":   "",
	"store.mongo_url":      "mongodb://localhost:27017",
	"store.mongo_database": "saas_blueprint",
	"auth.secret_key":      "",
	"auth.token_ttl":       "30m",
	"auth.bcrypt_cost":     10,
	"openai.api_key":       "",
	"openai.base_url":      "",
	"openai.model":         "gpt-3.5-turbo",
	"openai.max_tokens":    500,
	"openai.temperature":   0.7,
	"openai.timeout":       "20s",
	"oidc.issuer":          "",
	"oidc.client_id":       "",
	"oidc.client_secret":   "",
	"oidc.redirect_url":    "",
	"log.level":            "info",
	"log.format":           "text",
}

// envNames maps keys to the environment variables that override them. Keys
// not listed use BLUEPRINT_ plus the upper-cased key with dots as
// underscores, e.g. BLUEPRINT_LOG_LEVEL.
var envNames = map[string]string{
	"addr":                 "ADDR",
	"web_dir":              "WEB_DIR",
	"store.driver":         "STORE_DRIVER",
	"store.database_url":   "DATABASE_URL",
	"store.mongo_url":      "MONGO_URL",
	"store.mongo_database": "MONGO_DATABASE",
	"auth.secret_key":      "SECRET_KEY",
	"auth.token_ttl":       "TOKEN_TTL",
	"openai.api_key":       "OPENAI_API_KEY",
	"openai.base_url":      "OPENAI_BASE_URL",
	"oidc.issuer":          "OIDC_ISSUER",
	"oidc.client_id":       "OIDC_CLIENT_ID",
	"oidc.client_secret":   "OIDC_CLIENT_SECRET",
	"oidc.redirect_url":    "OIDC_REDIRECT_URL",
}

// Load reads configuration. path may be empty; a missing file falls back to
// defaults and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("blueprint")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envNames {
		if err := v.BindEnv(key, "BLUEPRINT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case DriverMongo:
		if c.Store.MongoURL == "" {
			return errors.New("config: MONGO_URL is required for the mongo store")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	if c.OIDC.Enabled() && (c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "") {
		return errors.New("config: OIDC_CLIENT_ID and OIDC_REDIRECT_URL are required when OIDC_ISSUER is set")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
