package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entraops/capolicy/pkg/cli"
	"entraops/capolicy/pkg/deploy"
	"entraops/capolicy/pkg/templates"
)

var validateFlags struct {
	dir string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate policy templates without contacting the tenant",
	Long: `Validate parses every template in the templates directory and reports
malformed files, missing display names, and unrecognized placeholder
tokens. Nothing is sent to the tenant; this is safe to run in CI.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "templates directory (default: from config)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := validateFlags.dir
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir = cfg.Deploy.TemplatesDir
	}

	tmpls, loadErrs, err := templates.LoadDir(dir)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	problems := 0
	for _, le := range loadErrs {
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", le.FileName, le.Err)
		problems++
	}

	for _, tmpl := range tmpls {
		issues := validateTemplate(tmpl)
		if len(issues) == 0 {
			fmt.Printf("✓ %s\n", tmpl.FileName)
			continue
		}
		problems++
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", tmpl.FileName, issue)
		}
	}

	if problems > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("%d of %d templates have problems", problems, len(tmpls)+len(loadErrs)))
	}
	fmt.Printf("%d templates valid\n", len(tmpls))
	return nil
}

// validateTemplate runs a substitution against placeholder-shaped values
// and reports everything a live deployment would warn about.
func validateTemplate(tmpl templates.Template) []string {
	var issues []string

	if tmpl.DisplayName() == "" {
		issues = append(issues, "missing displayName")
	}
	if _, ok := tmpl.Document["state"]; !ok {
		issues = append(issues, "missing state")
	}

	_, warnings := deploy.Substitute(tmpl, deploy.Resolution{
		PrefixAndNumber:        "CA00",
		AADP2GroupID:           "validate",
		ExclusionGroupID:       "validate",
		SyncAccountsGroupID:    "validate",
		EmergencyAccessGroupID: "validate",
	})
	return append(issues, warnings...)
}
