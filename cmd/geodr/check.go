package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jbweber/geodr/internal/azure"
	"github.com/jbweber/geodr/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test Azure credentials",
	Long:  `Resolve credentials through the default Azure credential chain and request a management token.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.RequireSubscription(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, "Testing Azure credentials...")

		ctx := cmd.Context()
		client, err := azure.Connect(ctx, settings.SubscriptionID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "✓ Credential chain resolved")

		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("credential test failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, "✓ Management token acquired")
		_, _ = fmt.Fprintf(out, "✓ Subscription: %s\n", client.SubscriptionID())

		_, _ = fmt.Fprintln(out, "\nCredential test successful!")
		return nil
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show settings and where they come from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "subscription_id\t%s\n", dashIfEmpty(settings.SubscriptionID))
		_, _ = fmt.Fprintf(w, "state_dir\t%s\n", settings.StateDir)
		_, _ = fmt.Fprintf(w, "log_verbosity\t%d\n", settings.LogVerbosity)
		_, _ = fmt.Fprintf(w, "output\t%s\n", settings.Output)
		_ = w.Flush()

		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprint(out, config.Usage())
		return nil
	},
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
