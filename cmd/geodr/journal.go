package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/geodr/internal/azure"
	"github.com/jbweber/geodr/internal/geodr"
)

var forceCleanup bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <run-name>",
	Short: "Tear down the resources of a journaled run",
	Long: `Replay the teardown of a run found in the journal.

Use this after a run was killed, or after 'geodr run --keep'. The pairing is
broken unless the run failed over, then the resource group is deleted.
The journal entry is removed once teardown succeeds.

A run whose record is still in progress is refused, since its process may
still be running. Pass --force when that process is gone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.RequireSubscription(); err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := azure.Connect(ctx, settings.SubscriptionID)
		if err != nil {
			return err
		}

		run, cleanupErr := geodr.Cleanup(ctx, args[0], client, store, logger, geodr.CleanupOptions{Force: forceCleanup})
		if run == nil || errors.Is(cleanupErr, geodr.ErrInProgress) {
			return cleanupErr
		}
		if err := printRun(cmd.OutOrStdout(), run); err != nil {
			return err
		}
		if cleanupErr != nil {
			return fmt.Errorf("cleanup of %s incomplete: %w", run.Name, cleanupErr)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled runs",
	Long: `List runs in the journal.

A run stays in the journal while it is in progress, when it ran with --keep,
or when its teardown failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := store.List()
		if err != nil {
			return err
		}

		formatter, err := newFormatter()
		if err != nil {
			return err
		}

		result, err := formatter.FormatRunList(runs)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), result)
		return err
	},
}

var getCmd = &cobra.Command{
	Use:   "get <run-name>",
	Short: "Get details about a journaled run",
	Long: `Display the full GeoRecoveryRun record of a journaled run, including
the created resource IDs, conditions and alias connection strings.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   Full YAML resource definition
  -o json   Full JSON resource definition`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := store.Load(args[0])
		if err != nil {
			return err
		}
		return printRun(cmd.OutOrStdout(), run)
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&forceCleanup, "force", false, "Tear down a run whose record is still in progress")
}
