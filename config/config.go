package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Sankhya  SankhyaConfig
	OpenAI   OpenAIConfig
	Matching MatchingConfig
	Cache    CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig holds the sqlite catalog location
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SankhyaConfig holds ERP gateway configuration
type SankhyaConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	XToken       string        `mapstructure:"x_token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Rate         float64       `mapstructure:"rate"` // gateway requests per second
}

// OpenAIConfig holds the budget-parser API configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// MatchingConfig tunes the import resolver and search engine
type MatchingConfig struct {
	ResultLimit   int           `mapstructure:"result_limit"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	DebugLogging  bool          `mapstructure:"debug_logging"`
}

// CacheConfig holds search-cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/eletrohub/")

	// Environment variable settings
	v.SetEnvPrefix("ELETROHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Store defaults
	v.SetDefault("store.path", "./data/eletrohub.db")

	// Sankhya defaults
	v.SetDefault("sankhya.base_url", "https://api.sankhya.com.br")
	v.SetDefault("sankhya.timeout", "30s")
	v.SetDefault("sankhya.rate", 2.0)

	// OpenAI defaults
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")

	// Matching defaults
	v.SetDefault("matching.result_limit", 3)
	v.SetDefault("matching.lookup_timeout", "5s")
	v.SetDefault("matching.debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.ttl", "10m")
}

// loadEnvFile reads a .env file from the working directory into the
// environment. Existing variables win over file values.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		os.Setenv(key, strings.TrimSpace(value))
	}
	return scanner.Err()
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.Path == "" {
		return fmt.Errorf("store path is required (set ELETROHUB_STORE_PATH)")
	}

	if config.Matching.ResultLimit < 1 {
		return fmt.Errorf("matching result limit must be at least 1, got: %d", config.Matching.ResultLimit)
	}

	if config.Matching.LookupTimeout <= 0 {
		return fmt.Errorf("matching lookup timeout must be positive, got: %s", config.Matching.LookupTimeout)
	}

	if config.Sankhya.Rate <= 0 {
		return fmt.Errorf("sankhya rate must be positive, got: %f", config.Sankhya.Rate)
	}

	return nil
}
