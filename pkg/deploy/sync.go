package deploy

import (
	"context"

	"entraops/capolicy/pkg/graph"
)

// PolicyService is the Conditional Access surface the sync engine needs.
// *graph.Client satisfies it; tests substitute fakes.
type PolicyService interface {
	FindPoliciesByMatchName(ctx context.Context, matchName string) ([]graph.Policy, error)
	CreatePolicy(ctx context.Context, payload map[string]any) (graph.Policy, error)
	UpdatePolicy(ctx context.Context, id string, payload map[string]any) error
}

// Decide maps lookup results onto a sync action: no match means create,
// exactly one means update that policy, more than one is refused. Keeping
// this pure lets the decision table be tested without a directory.
func Decide(matchName string, matches []graph.Policy) (Action, *graph.Policy, error) {
	switch len(matches) {
	case 0:
		return ActionCreate, nil, nil
	case 1:
		return ActionUpdate, &matches[0], nil
	default:
		return ActionError, nil, &AmbiguousMatchError{MatchName: matchName, Count: len(matches)}
	}
}

// Apply performs the decided action against the policy service and
// returns the affected policy identifier.
func Apply(ctx context.Context, svc PolicyService, action Action, existing *graph.Policy, payload map[string]any) (string, error) {
	switch action {
	case ActionCreate:
		created, err := svc.CreatePolicy(ctx, payload)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	case ActionUpdate:
		if err := svc.UpdatePolicy(ctx, existing.ID, payload); err != nil {
			return "", err
		}
		return existing.ID, nil
	default:
		return "", nil
	}
}
