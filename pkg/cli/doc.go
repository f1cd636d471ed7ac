// Package cli provides shared helpers for the capolicy command line:
// typed command errors, signal-aware contexts, and result printing.
package cli
