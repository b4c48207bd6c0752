package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/datasync/internal/core"
)

// Config holds the application's configuration values.
type Config struct {
	Endpoint       string
	Token          string
	TokenHeader    string
	RepoPath       string
	DataRoot       string
	FilePattern    string
	MaxBatchSize   int
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	FailFast       bool
	StateDBPath    string
	LogLevel       string
	LogFormat      string
}

// LoadConfig reads configuration from environment variables and a .env
// file, sets sensible defaults, and validates required fields. It uses the
// Viper library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SYNC_TOKEN_HEADER", "X-Datasync-Sync-Token")
	viper.SetDefault("REPO_PATH", ".")
	viper.SetDefault("DATA_ROOT", "by_created")
	viper.SetDefault("FILE_PATTERN", "**/*.json")
	viper.SetDefault("MAX_BATCH_SIZE", 200)
	viper.SetDefault("REQUEST_TIMEOUT", "30s")
	viper.SetDefault("MAX_RETRIES", 0)
	viper.SetDefault("RETRY_BASE_DELAY", "2s")
	viper.SetDefault("FAIL_FAST", false)
	viper.SetDefault("STATE_DB_PATH", ".datasync/state.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file found, using environment only", "error", err)
		}
	}

	cfg := &Config{
		Endpoint:       viper.GetString("SYNC_ENDPOINT"),
		Token:          viper.GetString("SYNC_TOKEN"),
		TokenHeader:    viper.GetString("SYNC_TOKEN_HEADER"),
		RepoPath:       viper.GetString("REPO_PATH"),
		DataRoot:       viper.GetString("DATA_ROOT"),
		FilePattern:    viper.GetString("FILE_PATTERN"),
		MaxBatchSize:   viper.GetInt("MAX_BATCH_SIZE"),
		RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
		MaxRetries:     viper.GetInt("MAX_RETRIES"),
		RetryBaseDelay: viper.GetDuration("RETRY_BASE_DELAY"),
		FailFast:       viper.GetBool("FAIL_FAST"),
		StateDBPath:    viper.GetString("STATE_DB_PATH"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		LogFormat:      viper.GetString("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("SYNC_ENDPOINT must be set")
	}
	if c.Token == "" {
		return fmt.Errorf("SYNC_TOKEN must be set")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: MAX_BATCH_SIZE must be positive, got %d", core.ErrValidation, c.MaxBatchSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be positive, got %s", core.ErrValidation, c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: MAX_RETRIES must not be negative, got %d", core.ErrValidation, c.MaxRetries)
	}
	return nil
}
