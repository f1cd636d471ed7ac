package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that behavior.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention CAPOLICY_SECTION_FIELD (e.g. CAPOLICY_DEPLOY_PREFIX)
// and always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply environment variable overrides
//  3. Apply default values (so prefix-derived group names honor an
//     overridden prefix)
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format CAPOLICY_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Tenant overrides
	if val := os.Getenv("CAPOLICY_TENANT_TENANT_ID"); val != "" {
		cfg.Tenant.TenantID = val
	}
	if val := os.Getenv("CAPOLICY_TENANT_CLIENT_ID"); val != "" {
		cfg.Tenant.ClientID = val
	}
	if val := os.Getenv("CAPOLICY_TENANT_AUTH_METHOD"); val != "" {
		cfg.Tenant.AuthMethod = val
	}
	if val := os.Getenv("CAPOLICY_TENANT_CLIENT_SECRET"); val != "" {
		cfg.Tenant.ClientSecret = val
	}

	// Deploy overrides
	if val := os.Getenv("CAPOLICY_DEPLOY_PREFIX"); val != "" {
		cfg.Deploy.Prefix = val
	}
	if val := os.Getenv("CAPOLICY_DEPLOY_TEMPLATES_DIR"); val != "" {
		cfg.Deploy.TemplatesDir = val
	}
	if val := os.Getenv("CAPOLICY_DEPLOY_PACING"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Deploy.Pacing = d
		}
	}
	if val := os.Getenv("CAPOLICY_DEPLOY_ON_ERROR"); val != "" {
		cfg.Deploy.OnError = val
	}
	if val := os.Getenv("CAPOLICY_DEPLOY_START_SEQUENCE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Deploy.StartSequence = i
		}
	}

	// Groups overrides
	if val := os.Getenv("CAPOLICY_GROUPS_AADP2_NAME"); val != "" {
		cfg.Groups.AADP2Name = val
	}
	if val := os.Getenv("CAPOLICY_GROUPS_EXCLUSION_PREFIX"); val != "" {
		cfg.Groups.ExclusionPrefix = val
	}
	if val := os.Getenv("CAPOLICY_GROUPS_SYNC_ACCOUNTS_NAME"); val != "" {
		cfg.Groups.SyncAccountsName = val
	}
	if val := os.Getenv("CAPOLICY_GROUPS_EMERGENCY_ACCESS_NAME"); val != "" {
		cfg.Groups.EmergencyAccessName = val
	}

	// Graph overrides
	if val := os.Getenv("CAPOLICY_GRAPH_BASE_URL"); val != "" {
		cfg.Graph.BaseURL = val
	}
	if val := os.Getenv("CAPOLICY_GRAPH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Graph.Timeout = d
		}
	}
	if val := os.Getenv("CAPOLICY_GRAPH_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Graph.MaxRetries = i
		}
	}

	// History overrides
	if val := os.Getenv("CAPOLICY_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("CAPOLICY_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("CAPOLICY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CAPOLICY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CAPOLICY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CAPOLICY_TELEMETRY_METRICS_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.Address = val
	}
}
