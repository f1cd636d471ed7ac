package config

import "time"

// Config is the root configuration structure for capolicy.
// It contains all configuration sections for tenant authentication, the
// deployment run, directory group naming, the Graph HTTP client, the run
// history store, and telemetry.
type Config struct {
	// Tenant contains identity tenant and authentication settings.
	Tenant TenantConfig `yaml:"tenant"`

	// Deploy contains settings for the deployment run itself: the run
	// prefix, template folder, pacing, and failure policy.
	Deploy DeployConfig `yaml:"deploy"`

	// Groups contains display names for the directory groups referenced by
	// policy templates. Empty values are derived from the run prefix.
	Groups GroupsConfig `yaml:"groups"`

	// Graph contains HTTP client settings for the Microsoft Graph API.
	Graph GraphConfig `yaml:"graph"`

	// History contains configuration for the run history store.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TenantConfig contains tenant and authentication settings.
type TenantConfig struct {
	// TenantID is the directory (tenant) identifier. Required.
	TenantID string `yaml:"tenant_id"`

	// ClientID is the application (client) identifier used for
	// authentication. Required.
	ClientID string `yaml:"client_id"`

	// AuthMethod selects the credential flow: "device_code" (interactive)
	// or "client_secret" (unattended).
	// Default: "device_code"
	AuthMethod string `yaml:"auth_method"`

	// ClientSecret is the client secret for the client_secret flow.
	// Required only when AuthMethod is "client_secret".
	ClientSecret string `yaml:"client_secret"`
}

// DeployConfig contains settings for a deployment run.
type DeployConfig struct {
	// Prefix is the run prefix combined with the sequence number to form
	// policy display names (e.g. prefix "CA" yields "CA01", "CA02", ...).
	// Required.
	Prefix string `yaml:"prefix"`

	// TemplatesDir is the folder containing JSON policy templates.
	// Required.
	TemplatesDir string `yaml:"templates_dir"`

	// Pacing is the delay between template iterations. It exists to avoid
	// Graph throttling and should not be set to zero against a live tenant.
	// Default: 2s
	Pacing time.Duration `yaml:"pacing"`

	// OnError selects the failure policy for per-template errors:
	// "continue" (skip the template, report, and keep going) or "abort"
	// (stop the run at the first error). Global failures such as
	// authentication always abort.
	// Default: "continue"
	OnError string `yaml:"on_error"`

	// StartSequence is the first sequence number assigned to a template.
	// Default: 1
	StartSequence int `yaml:"start_sequence"`
}

// GroupsConfig contains display names for the directory groups referenced
// by templates. Any empty value is derived from the deploy prefix; see
// ApplyDefaults.
type GroupsConfig struct {
	// AADP2Name is the display name of the group holding Azure AD Premium
	// P2 licensed users.
	// Default: prefix + "_AADP2"
	AADP2Name string `yaml:"aadp2_name"`

	// ExclusionPrefix is prepended to the prefix-and-number to name the
	// per-policy exclusion group (e.g. "CA_Exclusion_" + "CA01").
	// Default: prefix + "_Exclusion_"
	ExclusionPrefix string `yaml:"exclusion_prefix"`

	// SyncAccountsName is the display name of the group holding directory
	// synchronization service accounts.
	// Default: prefix + "_Exclusion_SynchronizationServiceAccounts"
	SyncAccountsName string `yaml:"sync_accounts_name"`

	// EmergencyAccessName is the display name of the group holding
	// emergency access (break-glass) accounts.
	// Default: prefix + "_Exclusion_EmergencyAccessAccounts"
	EmergencyAccessName string `yaml:"emergency_access_name"`

	// MailNickname is the mail nickname assigned to groups created by this
	// tool. Graph requires the field even for non-mail-enabled groups.
	// Default: "NotSet"
	MailNickname string `yaml:"mail_nickname"`

	// AADP2MembershipRule is the dynamic membership rule used when the
	// setup command creates the AADP2 group.
	// Default: a rule matching assigned AAD_PREMIUM_P2 service plans.
	AADP2MembershipRule string `yaml:"aadp2_membership_rule"`
}

// GraphConfig contains HTTP client settings for the Graph API.
type GraphConfig struct {
	// BaseURL is the Graph API base URL including the version segment.
	// Default: "https://graph.microsoft.com/v1.0"
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for transient failures
	// (HTTP 429 and 5xx). Retries use exponential backoff and honor
	// Retry-After headers.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns is the maximum number of idle connections in the pool.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long idle connections are kept open.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// HistoryConfig contains configuration for the run history store.
type HistoryConfig struct {
	// Enabled enables recording of run outcomes to the history store.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "./capolicy-history.db"
	Path string `yaml:"path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings. The metrics endpoint
	// is only served in daemon modes (watch or schedule).
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled enables the metrics endpoint in daemon modes.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Address is the listen address for the metrics endpoint.
	// Default: "127.0.0.1:9464"
	Address string `yaml:"address"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
