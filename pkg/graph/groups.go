package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SearchGroups returns all groups whose display name starts with the given
// name. Graph group queries are prefix searches; callers needing an exact
// match filter the result.
func (c *Client) SearchGroups(ctx context.Context, name string) ([]Group, error) {
	filter := fmt.Sprintf("startswith(displayName,'%s')", escapeODataLiteral(name))
	endpoint := "/groups?$filter=" + url.QueryEscape(filter)

	var list listResponse[Group]
	if err := c.doJSON(ctx, "group search", http.MethodGet, c.url(endpoint), nil, &list, nil); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// CreateGroup creates a directory group and returns it with the
// server-assigned identifier.
func (c *Client) CreateGroup(ctx context.Context, group Group) (Group, error) {
	var created Group
	if err := c.doJSON(ctx, "group create", http.MethodPost, c.url("/groups"), group, &created, nil); err != nil {
		return Group{}, err
	}
	return created, nil
}

// EnsureGroup finds the group whose display name exactly matches name,
// creating a non-mail-enabled security group if none exists. An existing
// group is returned unchanged; its settings are never modified. The second
// return value reports whether a group was created.
//
// Multiple groups with the same display name cannot be disambiguated and
// are returned as an error rather than picking one arbitrarily.
func (c *Client) EnsureGroup(ctx context.Context, name, mailNickname string) (Group, bool, error) {
	candidates, err := c.SearchGroups(ctx, name)
	if err != nil {
		return Group{}, false, err
	}

	var matches []Group
	for _, g := range candidates {
		if g.DisplayName == name {
			matches = append(matches, g)
		}
	}

	switch len(matches) {
	case 0:
		created, err := c.CreateGroup(ctx, Group{
			DisplayName:     name,
			MailEnabled:     false,
			MailNickname:    mailNickname,
			SecurityEnabled: true,
		})
		if err != nil {
			return Group{}, false, err
		}
		c.logger.Info("created group", "name", name, "id", created.ID)
		return created, true, nil
	case 1:
		return matches[0], false, nil
	default:
		return Group{}, false, &GraphError{
			Operation: "group resolve",
			Message:   fmt.Sprintf("display name %q matches %d groups; cannot disambiguate", name, len(matches)),
		}
	}
}

// EnsureDynamicGroup finds or creates a security group with a dynamic
// membership rule. Like EnsureGroup, an existing group of the same display
// name is returned as-is even if its rule differs; this tool never mutates
// groups it did not just create.
func (c *Client) EnsureDynamicGroup(ctx context.Context, name, mailNickname, membershipRule string) (Group, bool, error) {
	candidates, err := c.SearchGroups(ctx, name)
	if err != nil {
		return Group{}, false, err
	}

	var matches []Group
	for _, g := range candidates {
		if g.DisplayName == name {
			matches = append(matches, g)
		}
	}

	switch len(matches) {
	case 0:
		created, err := c.CreateGroup(ctx, Group{
			DisplayName:                   name,
			MailEnabled:                   false,
			MailNickname:                  mailNickname,
			SecurityEnabled:               true,
			GroupTypes:                    []string{"DynamicMembership"},
			MembershipRule:                membershipRule,
			MembershipRuleProcessingState: "On",
		})
		if err != nil {
			return Group{}, false, err
		}
		c.logger.Info("created dynamic group", "name", name, "id", created.ID)
		return created, true, nil
	case 1:
		return matches[0], false, nil
	default:
		return Group{}, false, &GraphError{
			Operation: "group resolve",
			Message:   fmt.Sprintf("display name %q matches %d groups; cannot disambiguate", name, len(matches)),
		}
	}
}
