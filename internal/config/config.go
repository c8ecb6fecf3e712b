// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	LLM struct {
		APIKey      string
		BaseURL     string
		Model       string
		Temperature float32
	}
	Store struct {
		Driver string
	}
	Mongo struct {
		URI      string
		Database string
	}
	DB struct {
		Host         string
		Port         string
		User         string
		Password     string
		DBName       string
		SSLMode      string
		MaxOpenConns int
		MaxIdleConns int
		ConnLifetime time.Duration
	}
	Telegram struct {
		Token string
	}
	Server struct {
		Port string
	}
	Log struct {
		Mode string
	}
	ShutdownTimeout time.Duration
}

// legacyEnv maps config keys to the variable names the service was first
// deployed with.
var legacyEnv = map[string]string{
	"llm.apikey":     "GROQ_API_KEY",
	"llm.baseurl":    "GROQ_ENDPOINT",
	"mongo.uri":      "MONGO_URI",
	"telegram.token": "TELEGRAM_TOKEN",
	"server.port":    "PORT",
}

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.health-ai")

	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("LLM.BaseURL", "https://api.groq.com/openai/v1")
	v.SetDefault("LLM.Model", "meta-llama/llama-4-maverick-17b-128e-instruct")
	v.SetDefault("LLM.Temperature", 0.5)
	v.SetDefault("Store.Driver", DriverMongo)
	v.SetDefault("Mongo.URI", "mongodb://localhost:27017")
	v.SetDefault("Mongo.Database", "health_ai")
	v.SetDefault("DB.Host", "localhost")
	v.SetDefault("DB.Port", "5432")
	v.SetDefault("DB.User", "postgres")
	v.SetDefault("DB.Password", "")
	v.SetDefault("DB.DBName", "health_ai")
	v.SetDefault("DB.SSLMode", "disable")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("Log.Mode", "production")

	// LLM.APIKey <- LLM_APIKEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.LLM.BaseURL = normalizeBaseURL(cfg.LLM.BaseURL)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	return &cfg, nil
}

// Validate reports the first missing value the service cannot start without.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("LLM API key is not configured")
	}
	if c.LLM.BaseURL == "" {
		return errors.New("LLM endpoint is not configured")
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo URI is not configured")
		}
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.DBName == "" {
			return errors.New("postgres configuration is incomplete")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// PostgresDSN renders the key/value connection string pgx expects.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode, c.DB.MaxOpenConns,
	)
}

// normalizeBaseURL accepts either the API root or the full chat completions
// endpoint, which is how the Groq URL is usually copied around.
func normalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return u
}
