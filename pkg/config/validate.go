package config

import (
	"fmt"
	"strings"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects all validation failures found in a configuration.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Add appends a validation error for the given field.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any validation errors were collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the configuration for missing required fields and invalid
// values. All problems are collected and returned together so the operator
// can fix them in one pass.
func Validate(cfg *Config) error {
	errs := &ValidationErrors{}

	// Tenant section
	if cfg.Tenant.TenantID == "" {
		errs.Add("tenant.tenant_id", "is required")
	}
	if cfg.Tenant.ClientID == "" {
		errs.Add("tenant.client_id", "is required")
	}
	switch cfg.Tenant.AuthMethod {
	case "device_code":
	case "client_secret":
		if cfg.Tenant.ClientSecret == "" {
			errs.Add("tenant.client_secret", "is required when auth_method is client_secret")
		}
	default:
		errs.Add("tenant.auth_method", fmt.Sprintf("must be device_code or client_secret, got %q", cfg.Tenant.AuthMethod))
	}

	// Deploy section
	if cfg.Deploy.Prefix == "" {
		errs.Add("deploy.prefix", "is required")
	}
	if cfg.Deploy.TemplatesDir == "" {
		errs.Add("deploy.templates_dir", "is required")
	}
	if cfg.Deploy.Pacing < 0 {
		errs.Add("deploy.pacing", "must not be negative")
	}
	if cfg.Deploy.OnError != "continue" && cfg.Deploy.OnError != "abort" {
		errs.Add("deploy.on_error", fmt.Sprintf("must be continue or abort, got %q", cfg.Deploy.OnError))
	}
	if cfg.Deploy.StartSequence < 1 {
		errs.Add("deploy.start_sequence", "must be at least 1")
	}

	// Graph section
	if cfg.Graph.BaseURL == "" {
		errs.Add("graph.base_url", "is required")
	}
	if cfg.Graph.Timeout <= 0 {
		errs.Add("graph.timeout", "must be positive")
	}
	if cfg.Graph.MaxRetries < 0 {
		errs.Add("graph.max_retries", "must not be negative")
	}

	// Telemetry section
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs.Add("telemetry.logging.level", fmt.Sprintf("must be debug, info, warn, or error, got %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		errs.Add("telemetry.logging.format", fmt.Sprintf("must be json or text, got %q", cfg.Telemetry.Logging.Format))
	}
	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.Address == "" {
		errs.Add("telemetry.metrics.address", "is required when metrics are enabled")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
