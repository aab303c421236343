package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/jbweber/geodr/internal/config"
	"github.com/jbweber/geodr/internal/journal"
	"github.com/jbweber/geodr/internal/logging"
	"github.com/jbweber/geodr/internal/output"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Set up by the root command before any subcommand runs.
var (
	settings config.Settings
	logger   = logr.Discard()
	store    *journal.Store
)

// Global flags
var (
	configPath   string
	verbosity    int
	outputFormat string
	noHeaders    bool
	wide         bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "geodr",
	Short: "geodr - Event Hubs geo-disaster-recovery walkthrough",
	Long: `geodr provisions two Azure Event Hubs namespaces in different regions,
pairs them under a geo-disaster-recovery alias, checks that event hub
metadata replicates to the secondary, fails over, and tears everything
down again.

Every run is journaled under the state directory so resources left by an
interrupted run can be removed with 'geodr cleanup'.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = s

		if cmd.Flags().Changed("verbosity") {
			settings.LogVerbosity = verbosity
		}
		if outputFormat == "" {
			outputFormat = settings.Output
		}
		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		logger = logging.New(os.Stderr, settings.LogVerbosity)
		store = journal.New(settings.StateDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default $"+config.ConfigFileEnv+")")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "Log verbosity, 1 shows poll attempts")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: table, yaml or json (default from settings)")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false, "Omit table headers")
	rootCmd.PersistentFlags().BoolVar(&wide, "wide", false, "Show resource names and messages in table output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(envCmd)
}

// newFormatter builds the formatter selected by the global flags.
func newFormatter() (output.Formatter, error) {
	return output.NewFormatter(output.Options{
		Format:    output.Format(outputFormat),
		NoHeaders: noHeaders,
		Wide:      wide,
	})
}
