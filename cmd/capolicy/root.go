package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "capolicy",
	Short: "Deploy Conditional Access policies from JSON templates",
	Long: `Capolicy keeps an identity tenant's Conditional Access policies in sync
with a directory of versioned JSON templates.

Each deployment run:
  - Assigns a prefix-and-number to every template in file-name order
  - Resolves or creates the groups the templates reference
  - Substitutes placeholder tokens with concrete group identifiers
  - Creates new policies and updates existing ones in place`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
