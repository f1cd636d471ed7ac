package deploy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"entraops/capolicy/pkg/graph"
	"entraops/capolicy/pkg/templates"
)

// RunnerConfig controls one deployment run.
type RunnerConfig struct {
	// Prefix is the run prefix, e.g. "CA".
	Prefix string

	// StartSequence is the first sequence number assigned (normally 1).
	StartSequence int

	// ExclusionPrefix is prepended to the prefix-and-number to form each
	// template's exclusion group name, e.g. "CA_Exclusion_".
	ExclusionPrefix string

	// Pacing is the wait between templates, giving the directory time to
	// settle between writes. No wait follows the last template.
	Pacing time.Duration

	// AbortOnError stops the run at the first failed template. When false
	// the failure is recorded and the run continues. Authentication
	// failures abort regardless: every later template would fail the same
	// way.
	AbortOnError bool

	// DryRun reports what each template would do without writing policies.
	DryRun bool
}

// Runner drives the deployment of a template set: sequence assignment,
// group resolution, substitution, lookup, and create-or-update, one
// template at a time in file-name order.
type Runner struct {
	policies PolicyService
	resolver *Resolver
	cfg      RunnerConfig
	logger   *slog.Logger

	// onAction is invoked with each template's final action, for counters.
	// May be nil.
	onAction func(action Action)

	// wait paces between templates and is injectable for tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewRunner builds a runner. onAction may be nil.
func NewRunner(policies PolicyService, resolver *Resolver, cfg RunnerConfig, logger *slog.Logger, onAction func(Action)) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		policies: policies,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.With("component", "runner"),
		onAction: onAction,
		wait:     sleepContext,
	}
}

// Run deploys the templates in order and returns one Result per template.
// The returned error is non-nil only when the run stopped early; per-
// template failures live in the results.
func (r *Runner) Run(ctx context.Context, tmpls []templates.Template) ([]Result, error) {
	seq := NewSequencer(r.cfg.Prefix, r.cfg.StartSequence)
	results := make([]Result, 0, len(tmpls))

	for i, tmpl := range tmpls {
		result := r.syncOne(ctx, tmpl, seq.Next())
		results = append(results, result)

		if r.onAction != nil {
			r.onAction(result.Action)
		}
		for _, w := range result.Warnings {
			r.logger.Warn("substitution warning", "file", tmpl.FileName, "warning", w)
		}

		if result.Err != nil {
			r.logger.Error("template failed", "file", tmpl.FileName, "error", result.Err)

			var authErr *graph.AuthError
			if errors.As(result.Err, &authErr) {
				return results, result.Err
			}
			if r.cfg.AbortOnError {
				return results, result.Err
			}
		} else {
			r.logger.Info("template synced",
				"file", tmpl.FileName,
				"name", result.DisplayName,
				"action", result.Action,
				"policy_id", result.PolicyID)
		}

		if i < len(tmpls)-1 && r.cfg.Pacing > 0 {
			if err := r.wait(ctx, r.cfg.Pacing); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}

func (r *Runner) syncOne(ctx context.Context, tmpl templates.Template, sequence string) Result {
	result := Result{
		Sequence:     sequence,
		TemplateFile: tmpl.FileName,
		Action:       ActionError,
	}

	// The exclusion group is ensured for every template, referenced or
	// not, so each deployed policy has an exclusion group standing by.
	exclusionName := r.cfg.ExclusionPrefix + sequence
	exclusionID, err := r.resolver.ExclusionGroupID(ctx, exclusionName)
	if err != nil {
		result.Err = err
		return result
	}

	res := Resolution{
		PrefixAndNumber:  sequence,
		ExclusionGroupID: exclusionID,
	}
	for ph := range ReferencedPlaceholders(tmpl) {
		if ph == PlaceholderExclusion {
			continue
		}
		id, err := r.resolver.SharedGroupID(ctx, ph)
		if err != nil {
			result.Err = err
			return result
		}
		switch ph {
		case PlaceholderAADP2:
			res.AADP2GroupID = id
		case PlaceholderSyncAccounts:
			res.SyncAccountsGroupID = id
		case PlaceholderEmergencyAccess:
			res.EmergencyAccessGroupID = id
		}
	}

	payload, warnings := Substitute(tmpl, res)
	result.Warnings = warnings

	name, _ := payload["displayName"].(string)
	result.DisplayName = name
	result.MatchName = MatchName(name)

	matches, err := r.policies.FindPoliciesByMatchName(ctx, result.MatchName)
	if err != nil {
		result.Err = err
		return result
	}

	action, existing, err := Decide(result.MatchName, matches)
	if err != nil {
		result.Err = err
		return result
	}

	if r.cfg.DryRun {
		result.Action = ActionSkip
		if existing != nil {
			result.PolicyID = existing.ID
		}
		r.logger.Info("dry run", "file", tmpl.FileName, "name", name, "would", action)
		return result
	}

	id, err := Apply(ctx, r.policies, action, existing, payload)
	if err != nil {
		result.Err = err
		return result
	}

	result.Action = action
	result.PolicyID = id
	return result
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
