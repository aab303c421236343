package status

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/geodr/api/v1alpha1"
)

func TestSetCondition_AddsAndUpdates(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("test")

	SetCondition(run, "Custom", v1alpha1.ConditionFalse, "Initial", "first")
	require.Len(t, run.Status.Conditions, 1)

	first := GetCondition(run, "Custom")
	require.NotNil(t, first)
	assert.Equal(t, "Initial", first.Reason)
	assert.Equal(t, int64(1), first.ObservedGeneration)

	SetCondition(run, "Custom", v1alpha1.ConditionTrue, "Done", "second")
	require.Len(t, run.Status.Conditions, 1)
	assert.Equal(t, v1alpha1.ConditionTrue, GetCondition(run, "Custom").Status)
	assert.Equal(t, "second", GetCondition(run, "Custom").Message)
}

func TestSetCondition_KeepsTransitionTimeWhenStatusUnchanged(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("test")
	past := v1alpha1.Time{Time: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	run.Status.Conditions = []v1alpha1.Condition{{
		Type:               "Custom",
		Status:             v1alpha1.ConditionTrue,
		LastTransitionTime: past,
	}}

	SetCondition(run, "Custom", v1alpha1.ConditionTrue, "Again", "same status")
	assert.Equal(t, past, GetCondition(run, "Custom").LastTransitionTime)

	SetCondition(run, "Custom", v1alpha1.ConditionFalse, "Flipped", "new status")
	assert.NotEqual(t, past, GetCondition(run, "Custom").LastTransitionTime)
}

func TestGetCondition_Missing(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("test")
	assert.Nil(t, GetCondition(run, v1alpha1.ConditionPaired))
	assert.False(t, IsConditionTrue(run, v1alpha1.ConditionPaired))
	assert.False(t, IsConditionFalse(run, v1alpha1.ConditionPaired))
}

func TestMarkHelpers(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("test")
	run.Spec.Names = v1alpha1.ResourceNames{
		PrimaryNamespace:   "nsprimary0001",
		SecondaryNamespace: "nssecondary01",
		Alias:              "geodralias001",
		EventHub:           "ehhub00000001",
	}

	MarkResourcesProvisioned(run)
	MarkPaired(run)
	MarkPropagated(run)
	MarkFailedOver(run)
	MarkCleanedUp(run, "resource group deleted")

	for _, c := range []string{
		v1alpha1.ConditionResourcesProvisioned,
		v1alpha1.ConditionPaired,
		v1alpha1.ConditionMetadataPropagated,
		v1alpha1.ConditionFailedOver,
		v1alpha1.ConditionCleanedUp,
	} {
		assert.True(t, IsConditionTrue(run, c), c)
	}
	assert.True(t, run.Status.FailedOver)
	assert.Contains(t, GetCondition(run, v1alpha1.ConditionPaired).Message, "geodralias001")
	assert.Contains(t, GetCondition(run, v1alpha1.ConditionMetadataPropagated).Message, "nssecondary01")
}

func TestMarkFailures(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("test")

	MarkFailoverSkipped(run)
	assert.True(t, IsConditionFalse(run, v1alpha1.ConditionFailedOver))
	assert.False(t, run.Status.FailedOver)

	MarkCleanupFailed(run, errors.New("delete failed"))
	cond := GetCondition(run, v1alpha1.ConditionCleanedUp)
	require.NotNil(t, cond)
	assert.Equal(t, v1alpha1.ConditionFalse, cond.Status)
	assert.Equal(t, "delete failed", cond.Message)

	MarkStepFailed(run, v1alpha1.ConditionPaired, "PairingFailed", errors.New("state Failed"))
	assert.Equal(t, "PairingFailed", GetCondition(run, v1alpha1.ConditionPaired).Reason)
}

func TestMarkKept(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("drill-1")

	MarkKept(run)

	cond := GetCondition(run, v1alpha1.ConditionCleanedUp)
	require.NotNil(t, cond)
	assert.Equal(t, v1alpha1.ConditionFalse, cond.Status)
	assert.Equal(t, "Kept", cond.Reason)
	assert.Contains(t, cond.Message, "geodr cleanup drill-1")
}
