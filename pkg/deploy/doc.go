// Package deploy implements the template resolution and idempotent sync
// engine.
//
// A deployment run walks an ordered sequence of policy templates. Each
// template receives a prefix-and-number ("CA01", "CA02", ...) from an
// injectable sequence generator, has its placeholder tokens substituted
// with resolved directory group identifiers, and is then created or
// updated remotely depending on whether a policy with the same derived
// match name already exists. Matching strips the prefix-and-number
// segment, so re-running with a different prefix or ordering updates the
// same logical policies instead of duplicating them.
//
// Substitution is pure: it operates on a deep copy of the template
// document, so the unresolved template catalog can be reused across runs
// and modes.
package deploy
