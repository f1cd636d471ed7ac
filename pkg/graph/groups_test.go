package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// groupServer fakes the Graph groups surface: GET search and POST create.
type groupServer struct {
	groups  []Group
	created []Group
}

func (s *groupServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			// Prefix search semantics, like Graph's startswith filter.
			filter := r.URL.Query().Get("$filter")
			var matched []Group
			for _, g := range s.groups {
				prefix := filterPrefix(filter)
				if strings.HasPrefix(g.DisplayName, prefix) {
					matched = append(matched, g)
				}
			}
			json.NewEncoder(w).Encode(map[string]any{"value": matched})
		case http.MethodPost:
			var g Group
			json.NewDecoder(r.Body).Decode(&g)
			g.ID = "created-id"
			s.created = append(s.created, g)
			s.groups = append(s.groups, g)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(g)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// filterPrefix extracts the literal from a startswith displayName filter.
func filterPrefix(filter string) string {
	start := strings.Index(filter, "'")
	end := strings.LastIndex(filter, "'")
	if start < 0 || end <= start {
		return ""
	}
	return strings.ReplaceAll(filter[start+1:end], "''", "'")
}

func TestEnsureGroup_CreatesWhenAbsent(t *testing.T) {
	fake := &groupServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	group, created, err := c.EnsureGroup(context.Background(), "CA_Exclusion_CA01", "NotSet")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	if !created {
		t.Error("expected group to be created")
	}
	if group.ID != "created-id" {
		t.Errorf("expected server-assigned id, got %q", group.ID)
	}
	if len(fake.created) != 1 {
		t.Fatalf("expected exactly one create call, got %d", len(fake.created))
	}
	if fake.created[0].MailEnabled {
		t.Error("expected non-mail-enabled group")
	}
	if !fake.created[0].SecurityEnabled {
		t.Error("expected security-enabled group")
	}
	if fake.created[0].MailNickname != "NotSet" {
		t.Errorf("expected placeholder mail nickname, got %q", fake.created[0].MailNickname)
	}
}

func TestEnsureGroup_ReturnsExistingUnchanged(t *testing.T) {
	fake := &groupServer{groups: []Group{
		{ID: "existing-id", DisplayName: "CA_AADP2"},
		{ID: "other-id", DisplayName: "CA_AADP2_Other"},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	group, created, err := c.EnsureGroup(context.Background(), "CA_AADP2", "NotSet")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	if created {
		t.Error("expected no creation for existing group")
	}
	if group.ID != "existing-id" {
		t.Errorf("expected exact-match group, got %q", group.ID)
	}
	if len(fake.created) != 0 {
		t.Errorf("expected no create calls, got %d", len(fake.created))
	}
}

func TestEnsureGroup_Idempotent(t *testing.T) {
	fake := &groupServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	first, _, err := c.EnsureGroup(context.Background(), "CA_Exclusion_CA01", "NotSet")
	if err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	second, created, err := c.EnsureGroup(context.Background(), "CA_Exclusion_CA01", "NotSet")
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}

	if created {
		t.Error("second resolution must not create a duplicate group")
	}
	if first.ID != second.ID {
		t.Errorf("expected same identifier across resolutions, got %q and %q", first.ID, second.ID)
	}
	if len(fake.created) != 1 {
		t.Errorf("expected exactly one remote create, got %d", len(fake.created))
	}
}

func TestEnsureGroup_AmbiguousName(t *testing.T) {
	fake := &groupServer{groups: []Group{
		{ID: "a", DisplayName: "CA_AADP2"},
		{ID: "b", DisplayName: "CA_AADP2"},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, _, err := c.EnsureGroup(context.Background(), "CA_AADP2", "NotSet")
	if err == nil {
		t.Fatal("expected error for ambiguous group name")
	}
}

func TestEnsureDynamicGroup_CreatesWithRule(t *testing.T) {
	fake := &groupServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	rule := `user.assignedPlans -any (assignedPlan.capabilityStatus -eq "Enabled")`

	c := newTestClient(t, srv.URL)
	_, created, err := c.EnsureDynamicGroup(context.Background(), "CA_AADP2", "NotSet", rule)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	if !created {
		t.Error("expected dynamic group to be created")
	}
	g := fake.created[0]
	if g.MembershipRule != rule {
		t.Errorf("expected membership rule to be set, got %q", g.MembershipRule)
	}
	if g.MembershipRuleProcessingState != "On" {
		t.Errorf("expected rule processing on, got %q", g.MembershipRuleProcessingState)
	}
	if len(g.GroupTypes) != 1 || g.GroupTypes[0] != "DynamicMembership" {
		t.Errorf("expected DynamicMembership group type, got %v", g.GroupTypes)
	}
}
