package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.Addr)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "saas_blueprint", cfg.Store.MongoDatabase)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, 500, cfg.OpenAI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 1e-6)
	assert.Equal(t, 20*time.Second, cfg.OpenAI.Timeout)
	assert.False(t, cfg.OIDC.Enabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/blueprint")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("BLUEPRINT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.SecretKey)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/blueprint", cfg.Store.DatabaseURL)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	content := `
addr: ":7000"
store:
  driver: mongo
  mongo_database: ideas
openai:
  model: gpt-4o-mini
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "ideas", cfg.Store.MongoDatabase)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURL)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8001", cfg.Addr)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Store: StoreConfig{Driver: DriverMemory}, Auth: AuthConfig{TokenTTL: time.Minute}}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"memory", func(*Config) {}, true},
		{"postgres without url", func(c *Config) { c.Store.Driver = DriverPostgres }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, false},
		{"oidc without client", func(c *Config) { c.OIDC.Issuer = "https://accounts.example.com" }, false},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
