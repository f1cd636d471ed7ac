package deploy

import (
	"context"
	"fmt"

	"entraops/capolicy/pkg/graph"
)

// fakeDirectory is an in-memory GroupEnsurer keyed by display name.
type fakeDirectory struct {
	groups      map[string]graph.Group
	ensureCalls []string
	err         error
	nextID      int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{groups: make(map[string]graph.Group)}
}

func (f *fakeDirectory) ensure(name, rule string) (graph.Group, bool, error) {
	f.ensureCalls = append(f.ensureCalls, name)
	if f.err != nil {
		return graph.Group{}, false, f.err
	}
	if g, ok := f.groups[name]; ok {
		return g, false, nil
	}
	f.nextID++
	g := graph.Group{
		ID:             fmt.Sprintf("g-%d", f.nextID),
		DisplayName:    name,
		MembershipRule: rule,
	}
	f.groups[name] = g
	return g, true, nil
}

func (f *fakeDirectory) EnsureGroup(_ context.Context, name, _ string) (graph.Group, bool, error) {
	return f.ensure(name, "")
}

func (f *fakeDirectory) EnsureDynamicGroup(_ context.Context, name, _, rule string) (graph.Group, bool, error) {
	return f.ensure(name, rule)
}

// fakePolicies is an in-memory PolicyService keyed by match name.
type fakePolicies struct {
	existing  map[string][]graph.Policy
	created   []map[string]any
	updated   map[string]map[string]any
	findErr   error
	createErr error
	updateErr error
	nextID    int
}

func (f *fakePolicies) FindPoliciesByMatchName(_ context.Context, matchName string) ([]graph.Policy, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.existing[matchName], nil
}

func (f *fakePolicies) CreatePolicy(_ context.Context, payload map[string]any) (graph.Policy, error) {
	if f.createErr != nil {
		return graph.Policy{}, f.createErr
	}
	f.nextID++
	f.created = append(f.created, payload)
	name, _ := payload["displayName"].(string)
	return graph.Policy{ID: fmt.Sprintf("p-%d", f.nextID), DisplayName: name}, nil
}

func (f *fakePolicies) UpdatePolicy(_ context.Context, id string, payload map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updated == nil {
		f.updated = make(map[string]map[string]any)
	}
	f.updated[id] = payload
	return nil
}
