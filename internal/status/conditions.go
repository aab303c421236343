// Package status manages GeoRecoveryRun status fields: phase transitions and
// conditions.
package status

import (
	"github.com/jbweber/geodr/api/v1alpha1"
)

// SetCondition adds or updates a condition in the run status.
// LastTransitionTime only changes when the status changes.
func SetCondition(run *v1alpha1.GeoRecoveryRun, condType string, status v1alpha1.ConditionStatus, reason, message string) {
	now := v1alpha1.Now()

	for i := range run.Status.Conditions {
		if run.Status.Conditions[i].Type == condType {
			existing := &run.Status.Conditions[i]

			if existing.Status != status {
				existing.LastTransitionTime = now
			}

			existing.Status = status
			existing.Reason = reason
			existing.Message = message
			existing.ObservedGeneration = run.Generation
			return
		}
	}

	run.Status.Conditions = append(run.Status.Conditions, v1alpha1.Condition{
		Type:               condType,
		Status:             status,
		ObservedGeneration: run.Generation,
		LastTransitionTime: now,
		Reason:             reason,
		Message:            message,
	})
}

// GetCondition returns a condition by type, or nil if not found.
func GetCondition(run *v1alpha1.GeoRecoveryRun, condType string) *v1alpha1.Condition {
	for i := range run.Status.Conditions {
		if run.Status.Conditions[i].Type == condType {
			return &run.Status.Conditions[i]
		}
	}
	return nil
}

// IsConditionTrue returns true if the condition exists and has status True.
func IsConditionTrue(run *v1alpha1.GeoRecoveryRun, condType string) bool {
	cond := GetCondition(run, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionTrue
}

// IsConditionFalse returns true if the condition exists and has status False.
func IsConditionFalse(run *v1alpha1.GeoRecoveryRun, condType string) bool {
	cond := GetCondition(run, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionFalse
}

// MarkResourcesProvisioned marks the group and both namespaces as created.
func MarkResourcesProvisioned(run *v1alpha1.GeoRecoveryRun) {
	SetCondition(run, v1alpha1.ConditionResourcesProvisioned, v1alpha1.ConditionTrue, "Created", "Resource group and both namespaces created")
}

// MarkPaired marks the alias as provisioned.
func MarkPaired(run *v1alpha1.GeoRecoveryRun) {
	SetCondition(run, v1alpha1.ConditionPaired, v1alpha1.ConditionTrue, "PairingSucceeded",
		"Alias "+run.Spec.Names.Alias+" pairs "+run.Spec.Names.PrimaryNamespace+" with "+run.Spec.Names.SecondaryNamespace)
}

// MarkPropagated marks the event hub as visible on the secondary.
func MarkPropagated(run *v1alpha1.GeoRecoveryRun) {
	SetCondition(run, v1alpha1.ConditionMetadataPropagated, v1alpha1.ConditionTrue, "EventHubVisible",
		"Event hub "+run.Spec.Names.EventHub+" is readable from "+run.Spec.Names.SecondaryNamespace)
}

// MarkFailedOver records a successful failover.
func MarkFailedOver(run *v1alpha1.GeoRecoveryRun) {
	run.Status.FailedOver = true
	SetCondition(run, v1alpha1.ConditionFailedOver, v1alpha1.ConditionTrue, "FailoverSucceeded",
		run.Spec.Names.SecondaryNamespace+" is now the primary of "+run.Spec.Names.Alias)
}

// MarkFailoverSkipped records that failover was not requested.
func MarkFailoverSkipped(run *v1alpha1.GeoRecoveryRun) {
	SetCondition(run, v1alpha1.ConditionFailedOver, v1alpha1.ConditionFalse, "Skipped", "Failover disabled by spec.skipFailover")
}

// MarkCleanedUp marks teardown as complete.
func MarkCleanedUp(run *v1alpha1.GeoRecoveryRun, message string) {
	SetCondition(run, v1alpha1.ConditionCleanedUp, v1alpha1.ConditionTrue, "CleanedUp", message)
}

// MarkKept records that teardown was skipped and the resources still exist.
func MarkKept(run *v1alpha1.GeoRecoveryRun) {
	SetCondition(run, v1alpha1.ConditionCleanedUp, v1alpha1.ConditionFalse, "Kept",
		"Resources kept, remove them with 'geodr cleanup "+run.Name+"'")
}

// MarkCleanupFailed marks teardown as incomplete.
func MarkCleanupFailed(run *v1alpha1.GeoRecoveryRun, err error) {
	SetCondition(run, v1alpha1.ConditionCleanedUp, v1alpha1.ConditionFalse, "CleanupFailed", err.Error())
}

// MarkStepFailed sets condType to False with the step error.
func MarkStepFailed(run *v1alpha1.GeoRecoveryRun, condType, reason string, err error) {
	SetCondition(run, condType, v1alpha1.ConditionFalse, reason, err.Error())
}
