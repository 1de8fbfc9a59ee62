// Package main provides the entry point for the linksleuth CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linksleuth.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linksleuth",
		Short: "Risk assessment tool for suspicious links",
		Long: `linksleuth assesses how risky a URL is before anyone clicks it.

It queries real-time threat sources (reputation lists, multi-engine scans,
phishing blacklists), inspects the hosting infrastructure (TLS, geolocation,
domain age), analyzes the link itself (masking, punycode, redirect chains),
and combines everything into a weighted risk score with an explanation.

Results are cached locally and revalidated by a daily background sweep.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAssessCmd())
	cmd.AddCommand(NewSweepCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
