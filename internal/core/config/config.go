package config

import (
	"github.com/vietddude/keapsync/internal/infra/rediscache"
	"github.com/vietddude/keapsync/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	API      APIConfig         `yaml:"api"`
	Database postgres.Config   `yaml:"database"`
	Redis    rediscache.Config `yaml:"redis"`
	Load     LoadConfig        `yaml:"load"`
	State    StateConfig       `yaml:"state"`
	Logging  LoggingConfig     `yaml:"logging"`
	Metrics  MetricsConfig     `yaml:"metrics"`
}

// APIConfig holds upstream Keap REST API settings. The key is normally
// injected as ${KEAP_API_KEY} and expanded from the environment at load time.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoadConfig holds batch and retry settings.
type LoadConfig struct {
	BatchSize  int `yaml:"batch_size"`
	MaxRetries int `yaml:"max_retries"`
}

// StateConfig holds locations of the durable on-disk state.
type StateConfig struct {
	CheckpointFile string `yaml:"checkpoint_file"`
	ErrorLogDir    string `yaml:"error_log_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// MetricsConfig holds the optional prometheus listen address. Empty disables
// the metrics endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}
