package geodr

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/jbweber/geodr/api/v1alpha1"
	"github.com/jbweber/geodr/internal/azure"
	"github.com/jbweber/geodr/internal/journal"
	"github.com/jbweber/geodr/internal/status"
)

// NothingToCleanUp is logged when a run never acquired an Azure resource.
const NothingToCleanUp = "Did not create any resources in Azure. No clean up is necessary"

// ErrInProgress is returned by Cleanup for a journaled run that is still in
// a transitioning phase, unless CleanupOptions.Force is set.
var ErrInProgress = errors.New("run is still in progress")

// CleanupOptions change how a journaled run is torn down.
type CleanupOptions struct {
	// Force tears down a run whose record says it is still in progress. Use
	// it when the process that owned the run is gone.
	Force bool
}

// Cleanup tears down the resources of a journaled run, typically one that
// was interrupted or ran with Options.Keep. The journal entry is removed
// when teardown succeeds.
func Cleanup(ctx context.Context, name string, client *azure.Client, store *journal.Store, log logr.Logger, opts CleanupOptions) (*v1alpha1.GeoRecoveryRun, error) {
	return cleanupJournaledWithDeps(ctx, name, client, store, log, opts)
}

// cleanupJournaledWithDeps replays teardown for a journaled run. A step
// error recorded by the run is kept; a run that never reached a terminal
// phase is recorded as interrupted.
func cleanupJournaledWithDeps(ctx context.Context, name string, client managementClient, j runJournal, log logr.Logger, opts CleanupOptions) (*v1alpha1.GeoRecoveryRun, error) {
	run, err := j.Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", name, err)
	}

	phase := run.GetPhase()
	if status.IsTransitioning(phase) && !opts.Force {
		return run, fmt.Errorf("%w: %s is in phase %s, use --force if its process is gone", ErrInProgress, run.Name, phase)
	}

	var runErr error
	if status.IsTransitioning(phase) {
		runErr = fmt.Errorf("run interrupted in phase %s", phase)
	}

	log = log.WithValues("run", run.Name)
	d := deps{client: client, journal: j, log: log}

	cleanupErr := cleanupWithDeps(ctx, run, client, log)
	status.Finish(run, runErr, cleanupErr)
	settle(d, run, cleanupErr, log)
	return run, cleanupErr
}

// cleanupWithDeps tears down what the run recorded as created.
//
// Every step is attempted regardless of earlier failures. The pairing is
// broken before the resource group is deleted unless a failover already
// dissolved it. Resources found missing count as removed, so teardown can be
// replayed. Recorded resource IDs are kept for the report. The joined step
// errors are returned for the journal decision; callers inside a run only
// log them.
func cleanupWithDeps(ctx context.Context, run *v1alpha1.GeoRecoveryRun, client managementClient, log logr.Logger) error {
	status.TransitionToCleaningUp(run)

	res := run.Status.Resources
	if !run.HasResources() {
		log.Info(NothingToCleanUp)
		status.MarkCleanedUp(run, NothingToCleanUp)
		return nil
	}

	names := run.Spec.Names
	var errs []error

	if res.PairingID != "" && !run.Status.FailedOver {
		log.Info("Breaking disaster recovery pairing", "alias", names.Alias, "namespace", names.PrimaryNamespace)
		err := client.BreakPairing(ctx, names.ResourceGroup, names.PrimaryNamespace, names.Alias)
		switch {
		case err == nil:
			log.Info("Broke disaster recovery pairing", "alias", names.Alias)
		case azure.IsNotFound(err):
			log.Info("Pairing already gone", "alias", names.Alias)
		default:
			log.Error(err, "Failed to break pairing", "alias", names.Alias, "code", azure.ErrorCode(err))
			errs = append(errs, fmt.Errorf("break pairing %s: %w", names.Alias, err))
		}
	}

	if res.ResourceGroupID != "" {
		log.Info("Deleting resource group", "name", names.ResourceGroup)
		err := client.DeleteResourceGroup(ctx, names.ResourceGroup)
		switch {
		case err == nil || azure.IsNotFound(err):
			log.Info("Deleted resource group", "name", names.ResourceGroup)
		default:
			log.Error(err, "Failed to delete resource group", "name", names.ResourceGroup, "code", azure.ErrorCode(err))
			errs = append(errs, fmt.Errorf("delete resource group %s: %w", names.ResourceGroup, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		status.MarkCleanupFailed(run, err)
		return err
	}

	status.MarkCleanedUp(run, "Resource group "+names.ResourceGroup+" deleted")
	return nil
}
