package deploy

import (
	"fmt"
	"strings"

	"entraops/capolicy/pkg/templates"
)

// Placeholder is a symbolic token recognized in policy templates. The set
// is closed: anything else that looks like a token is reported as a
// warning and passed through, so template typos surface instead of
// silently reaching the API.
type Placeholder string

const (
	// PlaceholderPrefix in a display name is replaced by the
	// prefix-and-number for the template's sequence position.
	PlaceholderPrefix Placeholder = "<PREFIX>"

	// PlaceholderAADP2 in includeGroups is replaced by the identifier of
	// the AADP2 licensed-users group.
	PlaceholderAADP2 Placeholder = "<AADP2Group>"

	// PlaceholderExclusion in excludeGroups is replaced by the identifier
	// of the template's own exclusion group.
	PlaceholderExclusion Placeholder = "<ExclusionGroup>"

	// PlaceholderSyncAccounts in excludeGroups is replaced by the
	// identifier of the synchronization service accounts group.
	PlaceholderSyncAccounts Placeholder = "<SynchronizationServiceAccountsGroup>"

	// PlaceholderEmergencyAccess in excludeGroups is replaced by the
	// identifier of the emergency access accounts group.
	PlaceholderEmergencyAccess Placeholder = "<EmergencyAccessAccountsGroup>"
)

// Resolution carries the concrete values substituted into one template at
// one sequence position. Group identifiers may be empty when the template
// does not reference the corresponding token.
type Resolution struct {
	// PrefixAndNumber replaces PlaceholderPrefix, e.g. "CA01".
	PrefixAndNumber string

	// AADP2GroupID replaces PlaceholderAADP2.
	AADP2GroupID string

	// ExclusionGroupID replaces PlaceholderExclusion.
	ExclusionGroupID string

	// SyncAccountsGroupID replaces PlaceholderSyncAccounts.
	SyncAccountsGroupID string

	// EmergencyAccessGroupID replaces PlaceholderEmergencyAccess.
	EmergencyAccessGroupID string
}

// Substitute produces the concrete API payload for a template. It never
// mutates the template: the returned payload is a deep copy with the
// display name and group lists rewritten.
//
// Tokens absent from a template are simply not substituted; templates
// vary in which placeholders they use. A display name without the
// <PREFIX> token passes through unchanged and is reported as a warning,
// as are unrecognized <...> tokens in group lists.
func Substitute(tmpl templates.Template, res Resolution) (map[string]any, []string) {
	payload := deepCopyMap(tmpl.Document)
	var warnings []string

	// Display name
	if name, ok := payload["displayName"].(string); ok {
		if strings.Contains(name, string(PlaceholderPrefix)) {
			payload["displayName"] = strings.ReplaceAll(name, string(PlaceholderPrefix), res.PrefixAndNumber)
		} else {
			warnings = append(warnings, fmt.Sprintf("displayName %q has no %s token", name, PlaceholderPrefix))
		}
	} else {
		warnings = append(warnings, "template has no displayName")
	}

	// Group lists
	warnings = append(warnings, rewriteGroupList(payload, "includeGroups", map[Placeholder]string{
		PlaceholderAADP2: res.AADP2GroupID,
	})...)
	warnings = append(warnings, rewriteGroupList(payload, "excludeGroups", map[Placeholder]string{
		PlaceholderExclusion:       res.ExclusionGroupID,
		PlaceholderSyncAccounts:    res.SyncAccountsGroupID,
		PlaceholderEmergencyAccess: res.EmergencyAccessGroupID,
	})...)

	return payload, warnings
}

// rewriteGroupList rewrites conditions.users.<key> in place on the copied
// payload: each recognized token is removed and its resolved identifier
// appended once. Entries that are not recognized tokens pass through, so
// templates may mix tokens with concrete identifiers.
func rewriteGroupList(payload map[string]any, key string, resolved map[Placeholder]string) []string {
	conditions, ok := payload["conditions"].(map[string]any)
	if !ok {
		return nil
	}
	users, ok := conditions["users"].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := users[key].([]any)
	if !ok {
		return nil
	}

	var warnings []string
	rewritten := make([]any, 0, len(list))
	seen := make(map[Placeholder]bool)

	for _, entry := range list {
		s, isString := entry.(string)
		if !isString {
			rewritten = append(rewritten, entry)
			continue
		}

		if _, known := resolved[Placeholder(s)]; known {
			// Drop the token; the identifier is appended below. A token
			// repeated in the same list resolves to one identifier.
			seen[Placeholder(s)] = true
			continue
		}

		if looksLikeToken(s) {
			warnings = append(warnings, fmt.Sprintf("unrecognized token %q in %s", s, key))
		}
		rewritten = append(rewritten, entry)
	}

	// Append identifiers in a fixed order so output is deterministic.
	for _, ph := range []Placeholder{PlaceholderAADP2, PlaceholderExclusion, PlaceholderSyncAccounts, PlaceholderEmergencyAccess} {
		if seen[ph] {
			rewritten = append(rewritten, resolved[ph])
		}
	}

	users[key] = rewritten
	return warnings
}

// looksLikeToken reports whether a group list entry has placeholder shape.
func looksLikeToken(s string) bool {
	return strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")
}

// MatchName derives the name used to find an existing remote policy: the
// substring after the first "-" separator, trimmed. Stripping the
// prefix-and-number segment keeps matching stable when a later run uses a
// different prefix or template order. A display name without a separator
// matches on the whole trimmed name.
func MatchName(displayName string) string {
	_, after, found := strings.Cut(displayName, "-")
	if !found {
		return strings.TrimSpace(displayName)
	}
	return strings.TrimSpace(after)
}

// ReferencedPlaceholders reports which group placeholders a template
// uses, so the driver only resolves the groups a template actually needs.
func ReferencedPlaceholders(tmpl templates.Template) map[Placeholder]bool {
	refs := make(map[Placeholder]bool)
	for _, entry := range tmpl.IncludeGroups() {
		if s, ok := entry.(string); ok && Placeholder(s) == PlaceholderAADP2 {
			refs[PlaceholderAADP2] = true
		}
	}
	for _, entry := range tmpl.ExcludeGroups() {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		switch Placeholder(s) {
		case PlaceholderExclusion, PlaceholderSyncAccounts, PlaceholderEmergencyAccess:
			refs[Placeholder(s)] = true
		}
	}
	return refs
}

// deepCopyMap returns a recursive copy of a parsed JSON document.
func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		// JSON scalars are immutable.
		return val
	}
}
