// Package graph is a minimal Microsoft Graph REST client covering the
// directory surface capolicy needs: group search and creation, and
// Conditional Access policy lookup, creation, and update.
//
// The client adds what the Graph SDK would otherwise provide for free but
// at far greater surface area: bearer-token injection with per-request
// refresh, request timeouts, and bounded exponential backoff for transient
// failures (HTTP 429 honoring Retry-After, and 5xx). Errors are typed per
// failure class so callers can distinguish authentication failures from
// throttling and remote write rejections.
package graph
