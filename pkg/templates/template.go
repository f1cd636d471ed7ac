package templates

// Template is a parsed policy template. The document is kept as a generic
// map so fields this tool does not understand survive the round trip to
// the API untouched.
type Template struct {
	// FileName is the base name of the source file, used in reporting.
	FileName string

	// Document is the parsed policy document.
	Document map[string]any
}

// DisplayName returns the template's displayName field, or "" if absent
// or not a string.
func (t Template) DisplayName() string {
	name, _ := t.Document["displayName"].(string)
	return name
}

// IncludeGroups returns conditions.users.includeGroups, or nil if the
// path is absent.
func (t Template) IncludeGroups() []any {
	return userGroupList(t.Document, "includeGroups")
}

// ExcludeGroups returns conditions.users.excludeGroups, or nil if the
// path is absent.
func (t Template) ExcludeGroups() []any {
	return userGroupList(t.Document, "excludeGroups")
}

// userGroupList walks conditions.users.<key> in a parsed document.
func userGroupList(doc map[string]any, key string) []any {
	conditions, ok := doc["conditions"].(map[string]any)
	if !ok {
		return nil
	}
	users, ok := conditions["users"].(map[string]any)
	if !ok {
		return nil
	}
	list, _ := users[key].([]any)
	return list
}
