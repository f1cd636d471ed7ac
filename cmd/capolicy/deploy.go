package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"entraops/capolicy/pkg/cli"
	"entraops/capolicy/pkg/config"
	"entraops/capolicy/pkg/deploy"
	"entraops/capolicy/pkg/graph"
	"entraops/capolicy/pkg/history"
	"entraops/capolicy/pkg/telemetry/logging"
	"entraops/capolicy/pkg/telemetry/metrics"
	"entraops/capolicy/pkg/templates"
)

var deployFlags struct {
	prefix   string
	onError  string
	dryRun   bool
	watch    bool
	schedule string
	output   string
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy policy templates to the tenant",
	Long: `Deploy every JSON template in the configured templates directory.

Templates are processed in file-name order. Each one is assigned a
prefix-and-number, its placeholder tokens are substituted with resolved
group identifiers, and the matching tenant policy is created or updated.

Examples:
  # Deploy with the configured prefix
  capolicy deploy

  # Preview without writing anything
  capolicy deploy --dry-run

  # Redeploy whenever a template file changes
  capolicy deploy --watch

  # Converge daily at 3 AM
  capolicy deploy --schedule "0 3 * * *"`,
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVar(&deployFlags.prefix, "prefix", "", "override the configured run prefix")
	deployCmd.Flags().StringVar(&deployFlags.onError, "on-error", "", "override error handling (continue, abort)")
	deployCmd.Flags().BoolVar(&deployFlags.dryRun, "dry-run", false, "report what would change without writing")
	deployCmd.Flags().BoolVar(&deployFlags.watch, "watch", false, "keep running and redeploy on template changes")
	deployCmd.Flags().StringVar(&deployFlags.schedule, "schedule", "", "keep running and redeploy on a cron schedule")
	deployCmd.Flags().StringVarP(&deployFlags.output, "output", "o", "text", "output format (text, json)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	if deployFlags.watch && deployFlags.schedule != "" {
		return cli.NewConfigError("", "--watch and --schedule are mutually exclusive")
	}

	format, err := cli.ParseOutputFormat(deployFlags.output)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if deployFlags.prefix != "" {
		// Re-derive prefix-dependent group names unless they were set
		// explicitly in the config file.
		old := cfg.Deploy.Prefix
		clearDerivedGroupNames(cfg, old)
		cfg.Deploy.Prefix = deployFlags.prefix
		config.ApplyDefaults(cfg)
	}
	if deployFlags.onError != "" {
		cfg.Deploy.OnError = deployFlags.onError
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	m := metrics.New()
	client, err := buildGraphClient(ctx, cfg, m)
	if err != nil {
		return cli.NewCommandError("deploy", err)
	}

	daemon := deployFlags.watch || deployFlags.schedule != ""
	if daemon && cfg.Telemetry.Metrics.Enabled {
		metrics.NewServer(m, cfg.Telemetry.Metrics.Address, cfg.Telemetry.Metrics.Path).Start(ctx)
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return cli.NewCommandError("deploy", err)
		}
		defer store.Close()
	}

	resolver := deploy.NewResolver(client, resolverConfig(cfg, deployFlags.dryRun), slog.Default(), func(string) {
		m.RecordGroupCreated()
	})
	runner := deploy.NewRunner(client, resolver, deploy.RunnerConfig{
		Prefix:          cfg.Deploy.Prefix,
		StartSequence:   cfg.Deploy.StartSequence,
		ExclusionPrefix: cfg.Groups.ExclusionPrefix,
		Pacing:          cfg.Deploy.Pacing,
		AbortOnError:    cfg.Deploy.OnError == "abort",
		DryRun:          deployFlags.dryRun,
	}, slog.Default(), func(a deploy.Action) {
		m.RecordSyncAction(string(a))
	})

	runOnce := func(ctx context.Context) error {
		return deployOnce(ctx, cfg, runner, store, m, format)
	}

	switch {
	case deployFlags.watch:
		if err := runOnce(ctx); err != nil {
			return err
		}
		watcher := deploy.NewTemplateWatcher(cfg.Deploy.TemplatesDir, time.Second, slog.Default())
		if err := watcher.Watch(ctx, runOnce); err != nil {
			return cli.NewCommandError("deploy", err)
		}
		return nil

	case deployFlags.schedule != "":
		scheduler := deploy.NewScheduler(deployFlags.schedule, runOnce)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("deploy", err)
		}
		<-ctx.Done()
		return nil

	default:
		return runOnce(ctx)
	}
}

// deployOnce runs a single deployment pass and records its outcome.
func deployOnce(ctx context.Context, cfg *config.Config, runner *deploy.Runner, store *history.Store, m *metrics.Metrics, format cli.OutputFormat) error {
	tmpls, loadErrs, err := templates.LoadDir(cfg.Deploy.TemplatesDir)
	if err != nil {
		return cli.NewCommandError("deploy", err)
	}
	for _, le := range loadErrs {
		slog.Warn("skipping malformed template", "file", le.FileName, "error", le.Err)
	}
	if len(tmpls) == 0 {
		slog.Warn("no templates found", "dir", cfg.Deploy.TemplatesDir)
		return nil
	}

	started := time.Now()
	results, runErr := runner.Run(ctx, tmpls)
	m.RecordRunDuration(time.Since(started))

	summary := deploy.Summarize(results)
	if store != nil {
		if _, err := store.RecordRun(ctx, history.Run{
			StartedAt:  started,
			FinishedAt: time.Now(),
			Prefix:     cfg.Deploy.Prefix,
			DryRun:     deployFlags.dryRun,
			Summary:    summary,
		}, results); err != nil {
			slog.Error("failed to record run history", "error", err)
		}
	}

	if err := cli.PrintResults(os.Stdout, format, results); err != nil {
		return err
	}
	if format == cli.FormatText {
		cli.PrintSummary(os.Stdout, summary)
	}

	if runErr != nil {
		return cli.NewCommandError("deploy", runErr)
	}
	if summary.Failed > 0 {
		return cli.NewCommandError("deploy", fmt.Errorf("%d of %d templates failed", summary.Failed, summary.Total()))
	}
	return nil
}

// loadConfig initializes configuration and logging for a command.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return cfg, nil
}

// buildGraphClient authenticates against the tenant and returns a ready
// Graph client. The token's tenant claim is checked against the configured
// tenant so a stale cached login cannot write into the wrong directory.
func buildGraphClient(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*graph.Client, error) {
	cred, err := graph.NewCredential(graph.CredentialConfig{
		TenantID:     cfg.Tenant.TenantID,
		ClientID:     cfg.Tenant.ClientID,
		AuthMethod:   cfg.Tenant.AuthMethod,
		ClientSecret: cfg.Tenant.ClientSecret,
	})
	if err != nil {
		return nil, err
	}
	tokens := graph.NewCredentialTokenSource(cred)

	raw, err := tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if tid, err := graph.TenantIDFromToken(raw); err != nil {
		slog.Warn("could not read tenant from token", "error", err)
	} else if tid != cfg.Tenant.TenantID {
		return nil, fmt.Errorf("token is for tenant %s, config expects %s", tid, cfg.Tenant.TenantID)
	} else {
		slog.Info("authenticated", "tenant_id", tid)
	}

	return graph.NewClient(graph.ClientConfig{
		BaseURL:         cfg.Graph.BaseURL,
		Tokens:          tokens,
		Timeout:         cfg.Graph.Timeout,
		MaxRetries:      cfg.Graph.MaxRetries,
		MaxIdleConns:    cfg.Graph.MaxIdleConns,
		IdleConnTimeout: cfg.Graph.IdleConnTimeout,
		Recorder:        m,
	})
}

// clearDerivedGroupNames blanks any group name still carrying its derived
// default for the old prefix, so ApplyDefaults can re-derive it from a new
// one. Names the operator set explicitly do not match and are kept.
func clearDerivedGroupNames(cfg *config.Config, oldPrefix string) {
	if cfg.Groups.AADP2Name == oldPrefix+"_AADP2" {
		cfg.Groups.AADP2Name = ""
	}
	if cfg.Groups.ExclusionPrefix == oldPrefix+"_Exclusion_" {
		cfg.Groups.ExclusionPrefix = ""
	}
	if cfg.Groups.SyncAccountsName == oldPrefix+"_Exclusion_SynchronizationServiceAccounts" {
		cfg.Groups.SyncAccountsName = ""
	}
	if cfg.Groups.EmergencyAccessName == oldPrefix+"_Exclusion_EmergencyAccessAccounts" {
		cfg.Groups.EmergencyAccessName = ""
	}
}

// resolverConfig maps group configuration onto the resolver.
func resolverConfig(cfg *config.Config, dryRun bool) deploy.ResolverConfig {
	return deploy.ResolverConfig{
		AADP2Name:           cfg.Groups.AADP2Name,
		AADP2MembershipRule: cfg.Groups.AADP2MembershipRule,
		SyncAccountsName:    cfg.Groups.SyncAccountsName,
		EmergencyAccessName: cfg.Groups.EmergencyAccessName,
		MailNickname:        cfg.Groups.MailNickname,
		DryRun:              dryRun,
	}
}
