package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if cfg.API.APIKey == "" {
		cfg.API.APIKey = os.Getenv("KEAP_API_KEY")
	}

	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.keap.com/crm/rest/v1"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.Load.BatchSize == 0 {
		cfg.Load.BatchSize = 50
	}
	if cfg.Load.MaxRetries == 0 {
		cfg.Load.MaxRetries = 5
	}
	if cfg.State.CheckpointFile == "" {
		cfg.State.CheckpointFile = "checkpoints/load_progress.json"
	}
	if cfg.State.ErrorLogDir == "" {
		cfg.State.ErrorLogDir = "logs/errors"
	}
}
