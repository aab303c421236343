package geodr

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/jbweber/geodr/api/v1alpha1"
	"github.com/jbweber/geodr/internal/azure"
	"github.com/jbweber/geodr/internal/journal"
	"github.com/jbweber/geodr/internal/propagation"
	"github.com/jbweber/geodr/internal/status"
)

var (
	// ErrNotPending is returned when a run record that already started, or
	// that carries recorded resources, is passed to Run.
	ErrNotPending = errors.New("run is not pending")

	// ErrResourceGroupExists is returned when the planned resource group is
	// already present. A run only tears down what it created itself.
	ErrResourceGroupExists = errors.New("resource group already exists")
)

// Options change how a run ends.
type Options struct {
	// Keep skips teardown. The journal entry stays so the resources can be
	// removed later with Cleanup.
	Keep bool
}

// deps are the collaborators of a run.
type deps struct {
	client  managementClient
	journal runJournal
	sync    propagation.Waiter
	pairing propagation.Waiter
	log     logr.Logger
}

// Run executes a prepared plan against Azure and tears the resources down
// afterwards.
//
// The returned run record is always non-nil. Its phase is Completed when
// every step and the teardown succeeded and Failed otherwise, with the reason
// in status.message. The returned error carries the same failure for callers
// that want to act on it.
func Run(ctx context.Context, run *v1alpha1.GeoRecoveryRun, client *azure.Client, store *journal.Store, log logr.Logger, opts Options) (*v1alpha1.GeoRecoveryRun, error) {
	syncWaiter, err := propagation.New(run.Spec.Sync, log.WithName("sync"))
	if err != nil {
		return run, err
	}

	d := deps{
		client:  client,
		sync:    syncWaiter,
		pairing: pairingWaiter(run, log.WithName("pairing")),
		log:     log,
	}
	if store != nil {
		d.journal = store
	}
	return runWithDeps(ctx, run, d, opts)
}

// pairingWaiter polls the alias with the sync intervals, bounded by the
// pairing timeout.
func pairingWaiter(run *v1alpha1.GeoRecoveryRun, log logr.Logger) propagation.Waiter {
	return &propagation.Poller{
		InitialInterval: run.Spec.Sync.InitialInterval.Duration,
		MaxInterval:     run.Spec.Sync.MaxInterval.Duration,
		Timeout:         run.Spec.PairingTimeout.Duration,
		Log:             log,
	}
}

// runWithDeps runs the sequence with injected dependencies and always tears
// down afterwards, unless opts.Keep is set. A run that is not pending is
// rejected before anything is created or deleted.
func runWithDeps(ctx context.Context, run *v1alpha1.GeoRecoveryRun, d deps, opts Options) (out *v1alpha1.GeoRecoveryRun, err error) {
	log := d.log.WithValues("run", run.Name)

	if run.GetPhase() != v1alpha1.RunPhasePending || run.HasResources() {
		return run, fmt.Errorf("%w: %s is in phase %s, resource group id %q", ErrNotPending, run.Name, run.GetPhase(), run.Status.Resources.ResourceGroupID)
	}

	var runErr error
	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("run panicked: %v", r)
			log.Error(runErr, "Run failed, cleaning up")
		}
		out = run

		if opts.Keep {
			log.Info("Keeping resources, remove them with 'geodr cleanup'", "name", run.Name)
			status.MarkKept(run)
			status.Finish(run, runErr, nil)
			record(d, run, log)
			err = runErr
			return
		}

		cleanupErr := cleanupWithDeps(context.WithoutCancel(ctx), run, d.client, log)
		status.Finish(run, runErr, cleanupErr)
		settle(d, run, cleanupErr, log)
		err = errors.Join(runErr, cleanupErr)
	}()

	runErr = sequence(ctx, run, d, log)
	if runErr != nil {
		log.Error(runErr, "Run failed, cleaning up")
	}
	return run, runErr
}

// sequence performs every step in order and stops at the first failure.
func sequence(ctx context.Context, run *v1alpha1.GeoRecoveryRun, d deps, log logr.Logger) error {
	if err := provision(ctx, run, d, log); err != nil {
		return err
	}

	if err := status.TransitionToSyncing(run); err != nil {
		return err
	}
	record(d, run, log)

	if err := awaitPropagation(ctx, run, d, log); err != nil {
		return err
	}

	if err := status.TransitionToFailingOver(run); err != nil {
		return err
	}
	record(d, run, log)

	if err := readAccessKeys(ctx, run, d.client, log); err != nil {
		return err
	}

	return failOver(ctx, run, d.client, log)
}

// provision creates the group, both namespaces, the alias, the event hub and
// the consumer group. Each acquired resource is journaled right away.
func provision(ctx context.Context, run *v1alpha1.GeoRecoveryRun, d deps, log logr.Logger) error {
	if err := status.TransitionToProvisioning(run); err != nil {
		return err
	}
	record(d, run, log)

	spec := run.Spec
	names := spec.Names
	res := &run.Status.Resources

	// Step 1: Resource group, which must be new
	exists, err := d.client.ResourceGroupExists(ctx, names.ResourceGroup)
	if err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionResourcesProvisioned, "ResourceGroupFailed", err)
		return err
	}
	if exists {
		err := fmt.Errorf("%w: %s", ErrResourceGroupExists, names.ResourceGroup)
		status.MarkStepFailed(run, v1alpha1.ConditionResourcesProvisioned, "ResourceGroupExists", err)
		return err
	}

	log.Info("Creating resource group", "name", names.ResourceGroup, "location", spec.PrimaryLocation)
	rg, err := d.client.CreateResourceGroup(ctx, names.ResourceGroup, spec.PrimaryLocation, run.ResourceGroupTags())
	if err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionResourcesProvisioned, "ResourceGroupFailed", err)
		return fmt.Errorf("failed to create resource group %s: %w", names.ResourceGroup, err)
	}
	res.ResourceGroupID = rg.ID
	record(d, run, log)
	log.Info("Created resource group", "id", rg.ID)

	// Step 2: Primary namespace
	log.Info("Creating primary namespace", "name", names.PrimaryNamespace, "location", spec.PrimaryLocation)
	primary, err := d.client.CreateNamespace(ctx, names.ResourceGroup, names.PrimaryNamespace, spec.PrimaryLocation, spec.SKU)
	if err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionResourcesProvisioned, "PrimaryNamespaceFailed", err)
		return fmt.Errorf("failed to create primary namespace %s: %w", names.PrimaryNamespace, err)
	}
	res.PrimaryNamespaceID = primary.ID
	record(d, run, log)
	log.Info("Created primary namespace", "id", primary.ID)

	// Step 3: Secondary namespace
	log.Info("Creating secondary namespace", "name", names.SecondaryNamespace, "location", spec.SecondaryLocation)
	secondary, err := d.client.CreateNamespace(ctx, names.ResourceGroup, names.SecondaryNamespace, spec.SecondaryLocation, spec.SKU)
	if err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionResourcesProvisioned, "SecondaryNamespaceFailed", err)
		return fmt.Errorf("failed to create secondary namespace %s: %w", names.SecondaryNamespace, err)
	}
	res.SecondaryNamespaceID = secondary.ID
	status.MarkResourcesProvisioned(run)
	record(d, run, log)
	log.Info("Created secondary namespace", "id", secondary.ID)

	// Step 4: Pairing
	log.Info("Creating disaster recovery pairing", "alias", names.Alias, "primary", names.PrimaryNamespace, "secondary", names.SecondaryNamespace)
	pairing, err := d.client.CreatePairing(ctx, names.ResourceGroup, names.PrimaryNamespace, names.Alias, secondary.ID)
	if err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionPaired, "PairingFailed", err)
		return fmt.Errorf("failed to create pairing %s: %w", names.Alias, err)
	}
	res.PairingID = pairing.ID
	record(d, run, log)
	log.Info("Created disaster recovery pairing", "id", pairing.ID, "state", pairing.State)

	if err := awaitPairing(ctx, run, d, log); err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionPaired, "PairingNotReady", err)
		return err
	}
	status.MarkPaired(run)

	// Step 5: Event hub
	log.Info("Creating event hub", "name", names.EventHub, "partitions", spec.PartitionCount)
	hub, err := d.client.CreateEventHub(ctx, names.ResourceGroup, names.PrimaryNamespace, names.EventHub, spec.PartitionCount)
	if err != nil {
		return fmt.Errorf("failed to create event hub %s: %w", names.EventHub, err)
	}
	res.EventHubID = hub.ID
	record(d, run, log)
	log.Info("Created event hub", "id", hub.ID)

	// Step 6: Consumer group with metadata
	log.Info("Creating consumer group", "name", spec.ConsumerGroup, "userMetadata", spec.ConsumerGroupMetadata)
	cg, err := d.client.CreateConsumerGroup(ctx, names.ResourceGroup, names.PrimaryNamespace, names.EventHub, spec.ConsumerGroup, spec.ConsumerGroupMetadata)
	if err != nil {
		return fmt.Errorf("failed to create consumer group %s: %w", spec.ConsumerGroup, err)
	}
	res.ConsumerGroupID = cg.ID
	record(d, run, log)
	log.Info("Created consumer group", "id", cg.ID)

	return nil
}

// awaitPairing polls the alias until its provisioning state is Succeeded.
// A Failed state ends the wait at once.
func awaitPairing(ctx context.Context, run *v1alpha1.GeoRecoveryRun, d deps, log logr.Logger) error {
	names := run.Spec.Names
	err := d.pairing.Wait(ctx, func(ctx context.Context) (bool, error) {
		p, err := d.client.GetPairing(ctx, names.ResourceGroup, names.PrimaryNamespace, names.Alias)
		if err != nil {
			if azure.IsNotFound(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to read pairing %s: %w", names.Alias, err)
		}

		log.V(1).Info("Pairing state", "alias", p.Name, "state", p.State, "role", p.Role)
		switch p.State {
		case azure.PairingStateSucceeded:
			return true, nil
		case azure.PairingStateFailed:
			return false, fmt.Errorf("pairing %s provisioning failed", names.Alias)
		default:
			return false, nil
		}
	})
	if err != nil {
		return fmt.Errorf("pairing %s did not become ready: %w", names.Alias, err)
	}
	log.Info("Pairing is ready", "alias", names.Alias)
	return nil
}

// awaitPropagation waits until the event hub can be read from the secondary
// namespace and logs what was read.
func awaitPropagation(ctx context.Context, run *v1alpha1.GeoRecoveryRun, d deps, log logr.Logger) error {
	names := run.Spec.Names

	var hub azure.EventHub
	err := d.sync.Wait(ctx, func(ctx context.Context) (bool, error) {
		got, err := d.client.GetEventHub(ctx, names.ResourceGroup, names.SecondaryNamespace, names.EventHub)
		if err != nil {
			if azure.IsNotFound(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to read event hub %s from %s: %w", names.EventHub, names.SecondaryNamespace, err)
		}
		hub = got
		return true, nil
	})
	if err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionMetadataPropagated, "NotPropagated", err)
		return fmt.Errorf("event hub %s not readable from secondary: %w", names.EventHub, err)
	}

	status.MarkPropagated(run)
	log.Info("Read event hub from secondary namespace", "namespace", names.SecondaryNamespace, "id", hub.ID, "partitions", hub.PartitionCount)
	return nil
}

// readAccessKeys lists the alias authorization rules and logs the alias
// primary connection string of each.
func readAccessKeys(ctx context.Context, run *v1alpha1.GeoRecoveryRun, client managementClient, log logr.Logger) error {
	names := run.Spec.Names

	rules, err := client.ListPairingRules(ctx, names.ResourceGroup, names.PrimaryNamespace, names.Alias)
	if err != nil {
		return fmt.Errorf("failed to list authorization rules of %s: %w", names.Alias, err)
	}

	run.Status.AccessKeys = run.Status.AccessKeys[:0]
	for _, rule := range rules {
		keys, err := client.GetPairingKeys(ctx, names.ResourceGroup, names.PrimaryNamespace, names.Alias, rule)
		if err != nil {
			return fmt.Errorf("failed to get keys of rule %s: %w", rule, err)
		}
		log.Info("Alias connection string", "rule", rule, "aliasPrimaryConnectionString", keys.AliasPrimaryConnectionString)
		run.Status.AccessKeys = append(run.Status.AccessKeys, v1alpha1.AccessKeyStatus{
			Rule:                         rule,
			AliasPrimaryConnectionString: keys.AliasPrimaryConnectionString,
		})
	}
	return nil
}

// failOver promotes the secondary. The request is addressed to the alias as
// seen from the secondary namespace.
func failOver(ctx context.Context, run *v1alpha1.GeoRecoveryRun, client managementClient, log logr.Logger) error {
	names := run.Spec.Names

	if run.Spec.SkipFailover {
		log.Info("Skipping failover", "alias", names.Alias)
		status.MarkFailoverSkipped(run)
		return nil
	}

	log.Info("Failing over", "alias", names.Alias, "to", names.SecondaryNamespace)
	if err := client.FailOver(ctx, names.ResourceGroup, names.SecondaryNamespace, names.Alias); err != nil {
		status.MarkStepFailed(run, v1alpha1.ConditionFailedOver, "FailoverFailed", err)
		return fmt.Errorf("failover of %s failed: %w", names.Alias, err)
	}

	status.MarkFailedOver(run)
	log.Info("Failed over", "alias", names.Alias, "primary", names.SecondaryNamespace)
	return nil
}

// record journals the run. A journal failure does not stop the run; the
// resources are still torn down at the end.
func record(d deps, run *v1alpha1.GeoRecoveryRun, log logr.Logger) {
	if d.journal == nil {
		return
	}
	if err := d.journal.Save(run); err != nil {
		log.Error(err, "Failed to journal run")
	}
}

// settle removes the journal entry once nothing is left in Azure, and keeps
// an updated entry otherwise.
func settle(d deps, run *v1alpha1.GeoRecoveryRun, cleanupErr error, log logr.Logger) {
	if d.journal == nil {
		return
	}
	if cleanupErr != nil {
		record(d, run, log)
		return
	}
	if err := d.journal.Delete(run.Name); err != nil {
		log.Error(err, "Failed to remove journal entry")
	}
}
