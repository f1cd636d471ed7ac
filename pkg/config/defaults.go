package config

import "time"

// Default values applied to unset configuration fields.
const (
	DefaultAuthMethod      = "device_code"
	DefaultPacing          = 2 * time.Second
	DefaultOnError         = "continue"
	DefaultStartSequence   = 1
	DefaultMailNickname    = "NotSet"
	DefaultGraphBaseURL    = "https://graph.microsoft.com/v1.0"
	DefaultGraphTimeout    = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultMaxIdleConns    = 10
	DefaultIdleConnTimeout = 90 * time.Second
	DefaultHistoryPath     = "./capolicy-history.db"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultMetricsAddress  = "127.0.0.1:9464"
	DefaultMetricsPath     = "/metrics"
)

// DefaultAADP2MembershipRule is the dynamic membership rule for the AADP2
// group created by the setup command. It matches users with an enabled
// Azure AD Premium P2 service plan assignment.
const DefaultAADP2MembershipRule = `user.assignedPlans -any (assignedPlan.servicePlanId -eq "eec0eb4f-6444-4f95-aba0-50c24d67f998" -and assignedPlan.capabilityStatus -eq "Enabled")`

// ApplyDefaults fills in default values for any configuration fields that
// were not set. Group display names default to values derived from the
// deploy prefix, so defaults for the Groups section are applied after the
// Deploy section.
func ApplyDefaults(cfg *Config) {
	// Tenant defaults
	if cfg.Tenant.AuthMethod == "" {
		cfg.Tenant.AuthMethod = DefaultAuthMethod
	}

	// Deploy defaults
	if cfg.Deploy.Pacing == 0 {
		cfg.Deploy.Pacing = DefaultPacing
	}
	if cfg.Deploy.OnError == "" {
		cfg.Deploy.OnError = DefaultOnError
	}
	if cfg.Deploy.StartSequence == 0 {
		cfg.Deploy.StartSequence = DefaultStartSequence
	}

	// Group names derive from the prefix when unset
	prefix := cfg.Deploy.Prefix
	if cfg.Groups.AADP2Name == "" {
		cfg.Groups.AADP2Name = prefix + "_AADP2"
	}
	if cfg.Groups.ExclusionPrefix == "" {
		cfg.Groups.ExclusionPrefix = prefix + "_Exclusion_"
	}
	if cfg.Groups.SyncAccountsName == "" {
		cfg.Groups.SyncAccountsName = prefix + "_Exclusion_SynchronizationServiceAccounts"
	}
	if cfg.Groups.EmergencyAccessName == "" {
		cfg.Groups.EmergencyAccessName = prefix + "_Exclusion_EmergencyAccessAccounts"
	}
	if cfg.Groups.MailNickname == "" {
		cfg.Groups.MailNickname = DefaultMailNickname
	}
	if cfg.Groups.AADP2MembershipRule == "" {
		cfg.Groups.AADP2MembershipRule = DefaultAADP2MembershipRule
	}

	// Graph client defaults
	if cfg.Graph.BaseURL == "" {
		cfg.Graph.BaseURL = DefaultGraphBaseURL
	}
	if cfg.Graph.Timeout == 0 {
		cfg.Graph.Timeout = DefaultGraphTimeout
	}
	if cfg.Graph.MaxRetries == 0 {
		cfg.Graph.MaxRetries = DefaultMaxRetries
	}
	if cfg.Graph.MaxIdleConns == 0 {
		cfg.Graph.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Graph.IdleConnTimeout == 0 {
		cfg.Graph.IdleConnTimeout = DefaultIdleConnTimeout
	}

	// History defaults
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Address == "" {
		cfg.Telemetry.Metrics.Address = DefaultMetricsAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// NewDefaultConfig returns a configuration populated entirely with defaults.
// Required fields (tenant, prefix, templates folder) remain empty and fail
// validation until the caller sets them.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
