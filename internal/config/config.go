package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the health check engine.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Salesforce  SalesforceConfig  `yaml:"salesforce"`
	Checks      ChecksConfig      `yaml:"checks"`
	Logging     LoggingConfig     `yaml:"logging"`
	Remediation RemediationConfig `yaml:"remediation"`
}

// ServerConfig controls listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	OpsAddress      string        `yaml:"opsAddress"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// SalesforceConfig configures the org connection. The access token is never
// read from the config file; it comes from the environment only.
type SalesforceConfig struct {
	InstanceURL  string        `yaml:"instanceURL"`
	APIVersion   string        `yaml:"apiVersion"`
	QueryTimeout time.Duration `yaml:"queryTimeout"`
	HTTPTimeout  time.Duration `yaml:"httpTimeout"`
	AccessToken  string        `yaml:"-"`
}

// ChecksConfig tunes the analyzer thresholds.
type ChecksConfig struct {
	MaxBundleDepth        int `yaml:"maxBundleDepth"`
	MaxComponents         int `yaml:"maxComponents"`
	ComponentWarning      int `yaml:"componentWarning"`
	MaxAttributeOverrides int `yaml:"maxAttributeOverrides"`
	OverrideWorkers       int `yaml:"overrideWorkers"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// RemediationConfig controls remediation catalog loading.
type RemediationConfig struct {
	Path string `yaml:"path"`
}

// Load initialises Config from a YAML file and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("REVHEALTH_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Validate checks that the connection settings are complete enough to run.
func (c *Config) Validate() error {
	if c.Salesforce.InstanceURL == "" {
		return errors.New("salesforce instance URL is required (SALESFORCE_INSTANCE_URL)")
	}
	if c.Salesforce.AccessToken == "" {
		return errors.New("salesforce access token is required (SALESFORCE_ACCESS_TOKEN)")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			OpsAddress:      ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Salesforce: SalesforceConfig{
			APIVersion:   "v64.0",
			QueryTimeout: 30 * time.Second,
			HTTPTimeout:  60 * time.Second,
		},
		Checks: ChecksConfig{
			MaxBundleDepth:        5,
			MaxComponents:         200,
			ComponentWarning:      180,
			MaxAttributeOverrides: 600,
			OverrideWorkers:       3,
		},
		Logging:     LoggingConfig{Level: "info", JSON: false},
		Remediation: RemediationConfig{Path: "configs/remediations.yaml"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REVHEALTH_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("REVHEALTH_OPS_ADDRESS"); v != "" {
		cfg.Server.OpsAddress = v
	}
	if v := os.Getenv("REVHEALTH_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SALESFORCE_INSTANCE_URL"); v != "" {
		cfg.Salesforce.InstanceURL = v
	}
	if v := os.Getenv("SALESFORCE_API_VERSION"); v != "" {
		cfg.Salesforce.APIVersion = v
	}
	if v := os.Getenv("SALESFORCE_ACCESS_TOKEN"); v != "" {
		cfg.Salesforce.AccessToken = v
	}
	if v := os.Getenv("REVHEALTH_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Salesforce.QueryTimeout = d
		}
	}
	if v := os.Getenv("REVHEALTH_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Salesforce.HTTPTimeout = d
		}
	}
	if v := os.Getenv("REVHEALTH_MAX_BUNDLE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Checks.MaxBundleDepth = n
		}
	}
	if v := os.Getenv("REVHEALTH_MAX_COMPONENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Checks.MaxComponents = n
		}
	}
	if v := os.Getenv("REVHEALTH_COMPONENT_WARNING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Checks.ComponentWarning = n
		}
	}
	if v := os.Getenv("REVHEALTH_MAX_ATTRIBUTE_OVERRIDES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Checks.MaxAttributeOverrides = n
		}
	}
	if v := os.Getenv("REVHEALTH_OVERRIDE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Checks.OverrideWorkers = n
		}
	}
	if v := os.Getenv("REVHEALTH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("REVHEALTH_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("REVHEALTH_REMEDIATION_PATH"); v != "" {
		cfg.Remediation.Path = v
	}
}
