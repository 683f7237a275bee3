// Package config loads deployment-helper defaults from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds defaults for the helper commands. Everything here can be
// overridden per invocation by flags, and credentials additionally by the
// ARTIFACTORY_* environment variables.
type Config struct {
	// Artifactory
	ArtifactoryHost   string `yaml:"artifactory_host"`
	ArtifactoryAPIKey string `yaml:"artifactory_api_key"`
	UseParameterStore bool   `yaml:"use_parameter_store"`
	FetchTimeout      int    `yaml:"fetch_timeout"` // seconds
	FetchRetries      int    `yaml:"fetch_retries"`

	// Monitoring agent
	MonitoringConfigDest string `yaml:"monitoring_config_dest"`
	MonitoringService    string `yaml:"monitoring_service"`

	// Database checks
	DatabaseServer string `yaml:"database_server"`
}

// DefaultConfig returns a config with sane defaults.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:         60,
		FetchRetries:         0,
		MonitoringConfigDest: `C:\ProgramData\Datadog\datadog.yaml`,
		MonitoringService:    "DatadogAgent",
	}
}

// Load reads the YAML file at path if it exists. An empty path or an absent
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Clamp to sane ranges.
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 60
	}
	if cfg.FetchTimeout > 3600 {
		cfg.FetchTimeout = 3600
	}
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.FetchRetries > 10 {
		cfg.FetchRetries = 10
	}

	return &cfg, nil
}
