package status

import (
	"fmt"
	"strings"

	"github.com/jbweber/geodr/api/v1alpha1"
)

// TransitionToProvisioning moves a run from Pending to Provisioning and
// stamps its start time.
func TransitionToProvisioning(run *v1alpha1.GeoRecoveryRun) error {
	if run.GetPhase() != v1alpha1.RunPhasePending {
		return fmt.Errorf("cannot transition to Provisioning from phase %s", run.GetPhase())
	}

	run.SetPhase(v1alpha1.RunPhaseProvisioning)
	run.Status.StartTime = v1alpha1.Now()
	SetCondition(run, v1alpha1.ConditionResourcesProvisioned, v1alpha1.ConditionUnknown, "Creating", "Creating resource group and namespaces")
	return nil
}

// TransitionToSyncing moves a run from Provisioning to Syncing.
func TransitionToSyncing(run *v1alpha1.GeoRecoveryRun) error {
	if run.GetPhase() != v1alpha1.RunPhaseProvisioning {
		return fmt.Errorf("cannot transition to Syncing from phase %s", run.GetPhase())
	}

	run.SetPhase(v1alpha1.RunPhaseSyncing)
	SetCondition(run, v1alpha1.ConditionMetadataPropagated, v1alpha1.ConditionUnknown, "Waiting",
		fmt.Sprintf("Waiting for metadata to reach %s (%s)", run.Spec.Names.SecondaryNamespace, run.Spec.Sync.Strategy))
	return nil
}

// TransitionToFailingOver moves a run from Syncing to FailingOver.
func TransitionToFailingOver(run *v1alpha1.GeoRecoveryRun) error {
	if run.GetPhase() != v1alpha1.RunPhaseSyncing {
		return fmt.Errorf("cannot transition to FailingOver from phase %s", run.GetPhase())
	}

	run.SetPhase(v1alpha1.RunPhaseFailingOver)
	return nil
}

// TransitionToCleaningUp moves a run to CleaningUp. Teardown may start from
// any phase: after success, after a failure mid-sequence, or when a journaled
// run is cleaned up later.
func TransitionToCleaningUp(run *v1alpha1.GeoRecoveryRun) {
	run.SetPhase(v1alpha1.RunPhaseCleaningUp)
	SetCondition(run, v1alpha1.ConditionCleanedUp, v1alpha1.ConditionUnknown, "CleaningUp", "Teardown in progress")
}

// Finish moves a run to its terminal phase. runErr is the step that stopped
// the sequence, if any; it is kept in status.stepError. A later Finish with a
// nil runErr, as done when teardown is replayed, keeps the recorded step
// error. The run is Completed only when no step failed and the teardown did
// not fail.
func Finish(run *v1alpha1.GeoRecoveryRun, runErr, cleanupErr error) {
	run.Status.CompletionTime = v1alpha1.Now()
	run.UpdateObservedGeneration()

	if runErr != nil {
		run.Status.StepError = runErr.Error()
	}

	var msgs []string
	if run.Status.StepError != "" {
		msgs = append(msgs, run.Status.StepError)
	}
	if cleanupErr != nil {
		msgs = append(msgs, "cleanup: "+cleanupErr.Error())
	}

	if len(msgs) == 0 {
		run.SetPhase(v1alpha1.RunPhaseCompleted)
		run.Status.Message = ""
		return
	}

	run.SetPhase(v1alpha1.RunPhaseFailed)
	run.Status.Message = strings.Join(msgs, "; ")
}

// IsTerminal returns true if the phase is Completed or Failed.
func IsTerminal(phase v1alpha1.RunPhase) bool {
	return phase == v1alpha1.RunPhaseCompleted || phase == v1alpha1.RunPhaseFailed
}

// IsTransitioning returns true while the run is creating, waiting, failing
// over or tearing down. A journaled run in one of these phases either still
// has a live process or was killed.
func IsTransitioning(phase v1alpha1.RunPhase) bool {
	return phase != "" && phase != v1alpha1.RunPhasePending && !IsTerminal(phase)
}
