package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"entraops/capolicy/pkg/graph"
)

// GroupEnsurer is the directory surface the resolver needs. *graph.Client
// satisfies it; tests substitute fakes.
type GroupEnsurer interface {
	EnsureGroup(ctx context.Context, name, mailNickname string) (graph.Group, bool, error)
	EnsureDynamicGroup(ctx context.Context, name, mailNickname, membershipRule string) (graph.Group, bool, error)
}

// ResolverConfig names the shared groups a run substitutes into templates.
type ResolverConfig struct {
	// AADP2Name is the display name of the dynamic group holding AADP2
	// licensed users.
	AADP2Name string

	// AADP2MembershipRule is the dynamic membership rule applied when the
	// AADP2 group has to be created.
	AADP2MembershipRule string

	// SyncAccountsName is the display name of the synchronization service
	// accounts group.
	SyncAccountsName string

	// EmergencyAccessName is the display name of the emergency access
	// accounts group.
	EmergencyAccessName string

	// MailNickname is assigned to every group this tool creates.
	MailNickname string

	// DryRun makes the resolver return synthetic identifiers without
	// touching the directory.
	DryRun bool
}

// Resolver turns group display names into identifiers, creating missing
// groups on the way. Shared groups are resolved once per run; per-template
// exclusion groups are ensured on every call so a deleted group reappears.
type Resolver struct {
	directory GroupEnsurer
	cfg       ResolverConfig
	logger    *slog.Logger

	// onCreate is invoked once per group actually created, for counters.
	onCreate func(name string)

	cache map[string]string
}

// NewResolver builds a resolver over the given directory surface. onCreate
// may be nil.
func NewResolver(directory GroupEnsurer, cfg ResolverConfig, logger *slog.Logger, onCreate func(name string)) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		directory: directory,
		cfg:       cfg,
		logger:    logger.With("component", "resolver"),
		onCreate:  onCreate,
		cache:     make(map[string]string),
	}
}

// SharedGroupID resolves one of the run-wide groups referenced by a
// placeholder. The first resolution of each group hits the directory;
// later calls are served from cache.
func (r *Resolver) SharedGroupID(ctx context.Context, ph Placeholder) (string, error) {
	switch ph {
	case PlaceholderAADP2:
		return r.resolve(ctx, r.cfg.AADP2Name, true)
	case PlaceholderSyncAccounts:
		return r.resolve(ctx, r.cfg.SyncAccountsName, false)
	case PlaceholderEmergencyAccess:
		return r.resolve(ctx, r.cfg.EmergencyAccessName, false)
	default:
		return "", fmt.Errorf("placeholder %s is not a shared group", ph)
	}
}

// ExclusionGroupID ensures the per-template exclusion group exists and
// returns its identifier. Unlike shared groups this runs unconditionally:
// every template gets its exclusion group even if the template never
// references it, so operators always have a per-policy escape hatch.
func (r *Resolver) ExclusionGroupID(ctx context.Context, name string) (string, error) {
	return r.resolve(ctx, name, false)
}

func (r *Resolver) resolve(ctx context.Context, name string, dynamic bool) (string, error) {
	if id, ok := r.cache[name]; ok {
		return id, nil
	}

	if r.cfg.DryRun {
		id := "dry-run:" + name
		r.cache[name] = id
		r.logger.Info("dry run: would ensure group", "name", name)
		return id, nil
	}

	var (
		group   graph.Group
		created bool
		err     error
	)
	if dynamic {
		group, created, err = r.directory.EnsureDynamicGroup(ctx, name, r.cfg.MailNickname, r.cfg.AADP2MembershipRule)
	} else {
		group, created, err = r.directory.EnsureGroup(ctx, name, r.cfg.MailNickname)
	}
	if err != nil {
		return "", &GroupResolutionError{GroupName: name, Cause: err}
	}

	if created {
		r.logger.Info("created group", "name", name, "id", group.ID)
		if r.onCreate != nil {
			r.onCreate(name)
		}
	} else {
		r.logger.Debug("resolved existing group", "name", name, "id", group.ID)
	}

	r.cache[name] = group.ID
	return group.ID, nil
}
