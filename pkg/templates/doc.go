// Package templates loads Conditional Access policy templates from a
// folder of JSON documents.
//
// A template is an ordinary policy payload whose display name and group
// reference lists may contain placeholder tokens; everything else is
// opaque to this tool and passes through to the API unmodified. Files are
// enumerated in sorted order so sequence-number assignment is reproducible
// across platforms. Malformed files are reported and skipped without
// aborting the run.
package templates
