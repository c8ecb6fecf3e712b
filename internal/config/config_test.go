package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsLegacyVariables(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("GROQ_ENDPOINT", "https://api.groq.com/openai/v1/chat/completions")
	t.Setenv("MONGO_URI", "mongodb://db:27017")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "gsk-test", cfg.LLM.APIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "health_ai", cfg.Mongo.Database)
	assert.Equal(t, "meta-llama/llama-4-maverick-17b-128e-instruct", cfg.LLM.Model)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnLifetime)
}

func TestLoadStructuredVariablesAndIndirection(t *testing.T) {
	t.Setenv("LLM_MODEL", "llama-3.1-8b-instant")
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("REAL_DB_PASSWORD", "s3cret")
	t.Setenv("DB_PASSWORD", "${REAL_DB_PASSWORD}")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "s3cret", cfg.DB.Password)
	assert.Contains(t, cfg.PostgresDSN(), "password=s3cret")
	assert.Contains(t, cfg.PostgresDSN(), "pool_max_conns=20")
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.EqualError(t, cfg.Validate(), "LLM API key is not configured")

	cfg.LLM.APIKey = "k"
	cfg.LLM.BaseURL = "https://example.com/v1"
	cfg.Store.Driver = "redis"
	assert.EqualError(t, cfg.Validate(), `unknown store driver "redis"`)

	cfg.Store.Driver = DriverMemory
	assert.NoError(t, cfg.Validate())

	cfg.Store.Driver = DriverMongo
	assert.EqualError(t, cfg.Validate(), "mongo URI is not configured")
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.groq.com/openai/v1", normalizeBaseURL(" https://api.groq.com/openai/v1/ "))
	assert.Equal(t, "https://api.groq.com/openai/v1", normalizeBaseURL("https://api.groq.com/openai/v1/chat/completions"))
	assert.Equal(t, "", normalizeBaseURL(""))
}
