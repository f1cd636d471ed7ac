package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"entraops/capolicy/pkg/cli"
	"entraops/capolicy/pkg/graph"
	"entraops/capolicy/pkg/telemetry/metrics"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the shared groups used by every deployment",
	Long: `Setup ensures the run-wide groups exist ahead of the first deployment:

  - The AADP2 dynamic group, membership-ruled to licensed users
  - The synchronization service accounts exclusion group
  - The emergency access accounts exclusion group

Groups that already exist are left untouched. Deploy creates these groups
on demand too; setup just front-loads the work so the first deployment
run is only about policies.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := cli.SetupSignalHandler()
	defer cancel()

	client, err := buildGraphClient(ctx, cfg, metrics.New())
	if err != nil {
		return cli.NewCommandError("setup", err)
	}

	group, created, err := client.EnsureDynamicGroup(ctx, cfg.Groups.AADP2Name, cfg.Groups.MailNickname, cfg.Groups.AADP2MembershipRule)
	if err != nil {
		return cli.NewCommandError("setup", err)
	}
	reportGroup(group, created)

	for _, name := range []string{cfg.Groups.SyncAccountsName, cfg.Groups.EmergencyAccessName} {
		group, created, err := client.EnsureGroup(ctx, name, cfg.Groups.MailNickname)
		if err != nil {
			return cli.NewCommandError("setup", err)
		}
		reportGroup(group, created)
	}

	return nil
}

func reportGroup(group graph.Group, created bool) {
	if created {
		fmt.Printf("✓ created %s (%s)\n", group.DisplayName, group.ID)
	} else {
		fmt.Printf("✓ exists  %s (%s)\n", group.DisplayName, group.ID)
	}
}
