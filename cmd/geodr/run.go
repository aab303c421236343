package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jbweber/geodr/api/v1alpha1"
	"github.com/jbweber/geodr/internal/azure"
	"github.com/jbweber/geodr/internal/geodr"
	"github.com/jbweber/geodr/internal/loader"
)

// Plan flags shared by run and plan
var (
	planFile     string
	syncStrategy string
	syncDelay    time.Duration
	skipFailover bool
)

// run-only flags
var (
	keepResources bool
	strict        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the geo-disaster-recovery walkthrough",
	Long: `Run the full walkthrough against the subscription in AZURE_SUBSCRIPTION_ID.

This will:
- Create a resource group and two namespaces in different regions
- Pair the namespaces under a disaster-recovery alias
- Create an event hub and a consumer group in the primary
- Wait until the event hub is readable from the secondary
- Log the alias connection strings
- Fail over to the secondary
- Break the pairing if needed and delete the resource group

Without -f the default plan is used: southcentralus to northcentralus with
generated names. A failing step is logged and ends the run, teardown still
happens. The exit code is 0 unless --strict is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadPlan()
		if err != nil {
			return err
		}

		if err := settings.RequireSubscription(); err != nil {
			return err
		}

		if store.Exists(run.Name) {
			return fmt.Errorf("run %s is already in the journal at %s; set another metadata.name, or remove it with 'geodr cleanup %s'", run.Name, store.Dir(), run.Name)
		}

		ctx := cmd.Context()
		client, err := azure.Connect(ctx, settings.SubscriptionID)
		if err != nil {
			return err
		}

		logger.Info("Starting run", "name", run.Name, "subscription", client.SubscriptionID(), "journal", store.Dir())
		result, runErr := geodr.Run(ctx, run, client, store, logger, geodr.Options{Keep: keepResources})

		if err := printRun(cmd.OutOrStdout(), result); err != nil {
			return err
		}

		if runErr != nil {
			logger.Error(runErr, "Run finished with errors", "name", result.Name)
			if strict {
				return fmt.Errorf("run %s failed: %w", result.Name, runErr)
			}
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the plan a run would execute",
	Long: `Print the defaulted plan with generated resource names without calling Azure.

Use --save to write it to a file that 'geodr run -f' accepts, which pins the
generated names.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadPlan()
		if err != nil {
			return err
		}

		savePath, _ := cmd.Flags().GetString("save")
		if savePath != "" {
			if err := loader.SaveToFile(run, savePath); err != nil {
				return err
			}
			logger.Info("Saved plan", "path", savePath)
		}

		return printRun(cmd.OutOrStdout(), run)
	},
}

func init() {
	addPlanFlags(runCmd.Flags())
	addPlanFlags(planCmd.Flags())

	runCmd.Flags().BoolVar(&keepResources, "keep", false, "Do not tear down; remove later with 'geodr cleanup'")
	runCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when a step or the teardown failed")

	planCmd.Flags().String("save", "", "Write the plan to this file")
}

func addPlanFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&planFile, "file", "f", "", "Plan file (GeoRecoveryRun YAML)")
	fs.StringVar(&syncStrategy, "sync-strategy", "", "Override spec.sync.strategy: fixed or poll")
	fs.DurationVar(&syncDelay, "sync-delay", 0, "Override spec.sync.delay for the fixed strategy")
	fs.BoolVar(&skipFailover, "skip-failover", false, "Leave the pairing in place instead of failing over")
}

// loadPlan reads the plan file, or the default plan, and applies flag
// overrides.
func loadPlan() (*v1alpha1.GeoRecoveryRun, error) {
	var (
		run *v1alpha1.GeoRecoveryRun
		err error
	)
	if planFile != "" {
		run, err = loader.LoadFromFile(planFile)
	} else {
		run, err = loader.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	applyOverrides(run, planOverrides{
		strategy:     syncStrategy,
		delay:        syncDelay,
		skipFailover: skipFailover,
	})

	if err := loader.Prepare(run); err != nil {
		return nil, err
	}
	return run, nil
}

type planOverrides struct {
	strategy     string
	delay        time.Duration
	skipFailover bool
}

func applyOverrides(run *v1alpha1.GeoRecoveryRun, o planOverrides) {
	if o.strategy != "" {
		run.Spec.Sync.Strategy = v1alpha1.SyncStrategy(o.strategy)
	}
	if o.delay > 0 {
		run.Spec.Sync.Delay.Duration = o.delay
	}
	if o.skipFailover {
		run.Spec.SkipFailover = true
	}
}

func printRun(w io.Writer, run *v1alpha1.GeoRecoveryRun) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	result, err := formatter.FormatRun(run)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	_, err = fmt.Fprint(w, result)
	return err
}
