// Package history persists deployment runs to a local SQLite database.
//
// Every run records its summary plus one row per template, so operators
// can answer "what did the tool do to this tenant, and when" without
// trawling logs. History is optional; the deploy command works without it.
package history
