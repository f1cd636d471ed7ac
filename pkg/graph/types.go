package graph

// Group represents a directory group.
type Group struct {
	ID              string   `json:"id,omitempty"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description,omitempty"`
	MailEnabled     bool     `json:"mailEnabled"`
	MailNickname    string   `json:"mailNickname,omitempty"`
	SecurityEnabled bool     `json:"securityEnabled"`
	GroupTypes      []string `json:"groupTypes,omitempty"`

	// Dynamic membership fields, set only for dynamic groups.
	MembershipRule                string `json:"membershipRule,omitempty"`
	MembershipRuleProcessingState string `json:"membershipRuleProcessingState,omitempty"`
}

// Policy identifies a remote Conditional Access policy. Only the fields the
// sync engine needs are decoded; the full policy document is opaque to this
// client.
type Policy struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	State       string `json:"state,omitempty"`
}

// listResponse is the Graph collection envelope.
type listResponse[T any] struct {
	Value []T `json:"value"`
}
