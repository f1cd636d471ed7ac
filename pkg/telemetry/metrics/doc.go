// Package metrics provides Prometheus metrics for deployment runs and
// Graph API traffic.
//
// Metrics are registered on a dedicated registry so tests can create
// independent instances. In daemon modes (watch or schedule) the metrics
// are exposed over HTTP; in one-shot runs they still back the end-of-run
// summary counters.
package metrics
