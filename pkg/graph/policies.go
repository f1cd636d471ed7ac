package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const policiesPath = "/identity/conditionalAccess/policies"

// FindPoliciesByMatchName returns every Conditional Access policy whose
// display name ends with matchName. Advanced queries on directory objects
// require the eventual consistency header.
func (c *Client) FindPoliciesByMatchName(ctx context.Context, matchName string) ([]Policy, error) {
	filter := fmt.Sprintf("endswith(displayName,'%s')", escapeODataLiteral(matchName))
	endpoint := policiesPath + "?$filter=" + url.QueryEscape(filter) + "&$count=true"

	headers := map[string]string{"ConsistencyLevel": "eventual"}

	var list listResponse[Policy]
	if err := c.doJSON(ctx, "policy lookup", http.MethodGet, c.url(endpoint), nil, &list, headers); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// CreatePolicy creates a Conditional Access policy from the given payload
// and returns the server-assigned identity.
func (c *Client) CreatePolicy(ctx context.Context, payload map[string]any) (Policy, error) {
	var created Policy
	if err := c.doJSON(ctx, "policy create", http.MethodPost, c.url(policiesPath), payload, &created, nil); err != nil {
		return Policy{}, err
	}
	return created, nil
}

// UpdatePolicy applies the payload to an existing policy as a partial
// update. Graph returns 204 No Content on success.
func (c *Client) UpdatePolicy(ctx context.Context, id string, payload map[string]any) error {
	endpoint := fmt.Sprintf("%s/%s", policiesPath, url.PathEscape(id))
	return c.doJSON(ctx, "policy update", http.MethodPatch, c.url(endpoint), payload, nil, nil)
}
