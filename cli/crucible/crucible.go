package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cruciblepm/crucible/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	verbose      bool
	noColor      bool
	outputFormat string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crucible",
		Short: "A lightweight personal pkg manager",
		Long: `crucible is a lightweight personal artifact manager (like apt) with:
- CLI: apply (install/upgrade), remove, search
- Library: download index and packages
- Tooling: create packages and manage repositories`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (json, yaml, table)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.NoColor = &noColor
	cli.OutputFormat = &outputFormat

	// Add subcommands. apply/remove drive the solution application engine
	// (spec §4.1) and are the install/update/remove surface; uninstall is
	// the legacy pkg/pkg-backed command kept alongside it.
	cmd.AddCommand(
		cli.NewUninstallCmd(),
		cli.NewSearchCmd(),
		cli.NewListCmd(),
		cli.NewConfigCmd(),
		cli.NewCacheCmd(),
		cli.NewArtifactCmd(),
		cli.NewIndexCmd(),
		cli.NewVersionCmd(),
		cli.NewApplyCmd(),
		cli.NewEngineRemoveCmd(),
	)

	return cmd
}
