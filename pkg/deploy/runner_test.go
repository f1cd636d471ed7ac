package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"entraops/capolicy/pkg/graph"
	"entraops/capolicy/pkg/templates"
)

func testRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Prefix:          "CA",
		StartSequence:   1,
		ExclusionPrefix: "CA_Exclusion_",
	}
}

func newTestRunner(policies *fakePolicies, dir *fakeDirectory, cfg RunnerConfig) *Runner {
	r := NewRunner(policies, NewResolver(dir, testResolverConfig(), nil, nil), cfg, nil, nil)
	r.wait = func(context.Context, time.Duration) error { return nil }
	return r
}

func namedTemplate(file, name string) templates.Template {
	return templates.Template{
		FileName: file,
		Document: map[string]any{
			"displayName": name,
			"state":       "enabledForReportingButNotEnforced",
			"conditions": map[string]any{
				"users": map[string]any{
					"includeGroups": []any{"<AADP2Group>"},
					"excludeGroups": []any{"<ExclusionGroup>"},
				},
			},
		},
	}
}

func TestRunnerFreshTenantCreatesEverything(t *testing.T) {
	policies := &fakePolicies{}
	dir := newFakeDirectory()
	r := newTestRunner(policies, dir, testRunnerConfig())

	tmpls := []templates.Template{
		namedTemplate("01-block-legacy.json", "<PREFIX> - Block legacy authentication"),
		namedTemplate("02-require-mfa.json", "<PREFIX> - Require MFA for all users"),
	}

	results, err := r.Run(context.Background(), tmpls)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := Summarize(results)
	if s.Created != 2 || s.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 created", s)
	}

	if results[0].Sequence != "CA01" || results[1].Sequence != "CA02" {
		t.Errorf("sequences = %q, %q", results[0].Sequence, results[1].Sequence)
	}
	if results[0].DisplayName != "CA01 - Block legacy authentication" {
		t.Errorf("displayName = %q", results[0].DisplayName)
	}

	// Each template gets its own exclusion group; the shared AADP2 group
	// is resolved once.
	for _, name := range []string{"CA_Exclusion_CA01", "CA_Exclusion_CA02", "CA_AADP2"} {
		if _, ok := dir.groups[name]; !ok {
			t.Errorf("group %q was not ensured", name)
		}
	}
	aadp2Hits := 0
	for _, call := range dir.ensureCalls {
		if call == "CA_AADP2" {
			aadp2Hits++
		}
	}
	if aadp2Hits != 1 {
		t.Errorf("AADP2 group ensured %d times, want 1", aadp2Hits)
	}
}

func TestRunnerSecondRunUpdates(t *testing.T) {
	policies := &fakePolicies{
		existing: map[string][]graph.Policy{
			"Block legacy authentication": {{ID: "p-old", DisplayName: "OLD03 - Block legacy authentication"}},
		},
	}
	r := newTestRunner(policies, newFakeDirectory(), testRunnerConfig())

	results, err := r.Run(context.Background(), []templates.Template{
		namedTemplate("01-block-legacy.json", "<PREFIX> - Block legacy authentication"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if results[0].Action != ActionUpdate || results[0].PolicyID != "p-old" {
		t.Fatalf("result = %+v, want update of p-old", results[0])
	}
	if len(policies.created) != 0 {
		t.Errorf("created %d policies on an update run", len(policies.created))
	}
	if got := policies.updated["p-old"]["displayName"]; got != "CA01 - Block legacy authentication" {
		t.Errorf("updated displayName = %v", got)
	}
}

func TestRunnerAmbiguousMatchContinues(t *testing.T) {
	policies := &fakePolicies{
		existing: map[string][]graph.Policy{
			"Block legacy authentication": {{ID: "a"}, {ID: "b"}},
		},
	}
	r := newTestRunner(policies, newFakeDirectory(), testRunnerConfig())

	results, err := r.Run(context.Background(), []templates.Template{
		namedTemplate("01-block-legacy.json", "<PREFIX> - Block legacy authentication"),
		namedTemplate("02-require-mfa.json", "<PREFIX> - Require MFA for all users"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var ambiguous *AmbiguousMatchError
	if results[0].Action != ActionError || !errors.As(results[0].Err, &ambiguous) {
		t.Fatalf("result[0] = %+v, want ambiguous match error", results[0])
	}
	if results[1].Action != ActionCreate {
		t.Errorf("result[1].Action = %v, want create after continuing", results[1].Action)
	}
}

func TestRunnerAbortOnError(t *testing.T) {
	policies := &fakePolicies{createErr: errors.New("policy quota exceeded")}
	cfg := testRunnerConfig()
	cfg.AbortOnError = true
	r := newTestRunner(policies, newFakeDirectory(), cfg)

	results, err := r.Run(context.Background(), []templates.Template{
		namedTemplate("01-block-legacy.json", "<PREFIX> - Block legacy authentication"),
		namedTemplate("02-require-mfa.json", "<PREFIX> - Require MFA for all users"),
	})
	if err == nil {
		t.Fatalf("expected run to abort")
	}
	if len(results) != 1 {
		t.Errorf("got %d results after abort, want 1", len(results))
	}
}

func TestRunnerAuthErrorAlwaysAborts(t *testing.T) {
	policies := &fakePolicies{
		findErr: &graph.AuthError{Operation: "policy lookup", Message: "token expired"},
	}
	r := newTestRunner(policies, newFakeDirectory(), testRunnerConfig())

	results, err := r.Run(context.Background(), []templates.Template{
		namedTemplate("01-block-legacy.json", "<PREFIX> - Block legacy authentication"),
		namedTemplate("02-require-mfa.json", "<PREFIX> - Require MFA for all users"),
	})

	var authErr *graph.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want auth error even without AbortOnError", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestRunnerDryRun(t *testing.T) {
	policies := &fakePolicies{
		existing: map[string][]graph.Policy{
			"Block legacy authentication": {{ID: "p-old"}},
		},
	}
	dir := newFakeDirectory()
	cfg := testRunnerConfig()
	cfg.DryRun = true
	r := NewRunner(policies, NewResolver(dir, func() ResolverConfig {
		rc := testResolverConfig()
		rc.DryRun = true
		return rc
	}(), nil, nil), cfg, nil, nil)
	r.wait = func(context.Context, time.Duration) error { return nil }

	results, err := r.Run(context.Background(), []templates.Template{
		namedTemplate("01-block-legacy.json", "<PREFIX> - Block legacy authentication"),
		namedTemplate("02-require-mfa.json", "<PREFIX> - Require MFA for all users"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := Summarize(results)
	if s.Skipped != 2 {
		t.Fatalf("summary = %+v, want 2 skipped", s)
	}
	if results[0].PolicyID != "p-old" {
		t.Errorf("dry run did not report the policy it would update")
	}
	if len(policies.created) != 0 || len(policies.updated) != 0 {
		t.Errorf("dry run wrote policies")
	}
	if len(dir.ensureCalls) != 0 {
		t.Errorf("dry run touched the directory: %v", dir.ensureCalls)
	}
}

func TestRunnerPacingSkipsLastTemplate(t *testing.T) {
	policies := &fakePolicies{}
	cfg := testRunnerConfig()
	cfg.Pacing = 30 * time.Second

	r := NewRunner(policies, NewResolver(newFakeDirectory(), testResolverConfig(), nil, nil), cfg, nil, nil)
	waits := 0
	r.wait = func(_ context.Context, d time.Duration) error {
		if d != 30*time.Second {
			t.Errorf("wait duration = %v", d)
		}
		waits++
		return nil
	}

	_, err := r.Run(context.Background(), []templates.Template{
		namedTemplate("01-a.json", "<PREFIX> - A"),
		namedTemplate("02-b.json", "<PREFIX> - B"),
		namedTemplate("03-c.json", "<PREFIX> - C"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if waits != 2 {
		t.Errorf("waited %d times for 3 templates, want 2", waits)
	}
}

func TestRunnerRecordsActions(t *testing.T) {
	policies := &fakePolicies{}
	var actions []Action
	r := NewRunner(policies, NewResolver(newFakeDirectory(), testResolverConfig(), nil, nil), testRunnerConfig(), nil, func(a Action) {
		actions = append(actions, a)
	})
	r.wait = func(context.Context, time.Duration) error { return nil }

	if _, err := r.Run(context.Background(), []templates.Template{
		namedTemplate("01-a.json", "<PREFIX> - A"),
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(actions) != 1 || actions[0] != ActionCreate {
		t.Errorf("actions = %v", actions)
	}
}
