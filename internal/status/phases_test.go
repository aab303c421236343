package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/geodr/api/v1alpha1"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       v1alpha1.RunPhase
		transition func(*v1alpha1.GeoRecoveryRun) error
		want       v1alpha1.RunPhase
		wantErr    bool
	}{
		{"pending to provisioning", v1alpha1.RunPhasePending, TransitionToProvisioning, v1alpha1.RunPhaseProvisioning, false},
		{"provisioning twice", v1alpha1.RunPhaseProvisioning, TransitionToProvisioning, v1alpha1.RunPhaseProvisioning, true},
		{"provisioning to syncing", v1alpha1.RunPhaseProvisioning, TransitionToSyncing, v1alpha1.RunPhaseSyncing, false},
		{"pending to syncing", v1alpha1.RunPhasePending, TransitionToSyncing, v1alpha1.RunPhasePending, true},
		{"syncing to failing over", v1alpha1.RunPhaseSyncing, TransitionToFailingOver, v1alpha1.RunPhaseFailingOver, false},
		{"provisioning to failing over", v1alpha1.RunPhaseProvisioning, TransitionToFailingOver, v1alpha1.RunPhaseProvisioning, true},
		{"completed to provisioning", v1alpha1.RunPhaseCompleted, TransitionToProvisioning, v1alpha1.RunPhaseCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := v1alpha1.NewGeoRecoveryRun("test")
			run.SetPhase(tt.from)

			err := tt.transition(run)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, run.GetPhase())
		})
	}
}

func TestTransitionToProvisioning_StampsStart(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("test")
	require.NoError(t, TransitionToProvisioning(run))

	assert.False(t, run.Status.StartTime.IsZero())
	cond := GetCondition(run, v1alpha1.ConditionResourcesProvisioned)
	require.NotNil(t, cond)
	assert.Equal(t, v1alpha1.ConditionUnknown, cond.Status)
}

func TestTransitionToCleaningUp_FromAnyPhase(t *testing.T) {
	for _, phase := range []v1alpha1.RunPhase{
		v1alpha1.RunPhasePending,
		v1alpha1.RunPhaseSyncing,
		v1alpha1.RunPhaseFailed,
		v1alpha1.RunPhaseCompleted,
	} {
		run := v1alpha1.NewGeoRecoveryRun("test")
		run.SetPhase(phase)

		TransitionToCleaningUp(run)

		assert.Equal(t, v1alpha1.RunPhaseCleaningUp, run.GetPhase(), "from %s", phase)
		assert.Equal(t, v1alpha1.ConditionUnknown, GetCondition(run, v1alpha1.ConditionCleanedUp).Status)
	}
}

func TestFinish(t *testing.T) {
	tests := []struct {
		name        string
		runErr      error
		cleanupErr  error
		wantPhase   v1alpha1.RunPhase
		wantMessage string
	}{
		{"success", nil, nil, v1alpha1.RunPhaseCompleted, ""},
		{"step failed", errors.New("failover: conflict"), nil, v1alpha1.RunPhaseFailed, "failover: conflict"},
		{"cleanup failed", nil, errors.New("delete rg: 500"), v1alpha1.RunPhaseFailed, "cleanup: delete rg: 500"},
		{"both failed", errors.New("a"), errors.New("b"), v1alpha1.RunPhaseFailed, "a; cleanup: b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := v1alpha1.NewGeoRecoveryRun("test")
			run.Generation = 3
			run.SetPhase(v1alpha1.RunPhaseCleaningUp)

			Finish(run, tt.runErr, tt.cleanupErr)

			assert.Equal(t, tt.wantPhase, run.GetPhase())
			assert.Equal(t, tt.wantMessage, run.Status.Message)
			assert.False(t, run.Status.CompletionTime.IsZero())
			assert.Equal(t, int64(3), run.Status.ObservedGeneration)
			assert.True(t, IsTerminal(run.GetPhase()))
		})
	}
}

func TestFinish_ReplayKeepsStepError(t *testing.T) {
	run := v1alpha1.NewGeoRecoveryRun("test")
	run.SetPhase(v1alpha1.RunPhaseCleaningUp)
	Finish(run, errors.New("failover of alias failed: conflict"), errors.New("delete rg: 500"))
	require.Equal(t, "failover of alias failed: conflict; cleanup: delete rg: 500", run.Status.Message)

	// Replayed teardown succeeds: the step failure stays on record
	TransitionToCleaningUp(run)
	Finish(run, nil, nil)

	assert.Equal(t, v1alpha1.RunPhaseFailed, run.GetPhase())
	assert.Equal(t, "failover of alias failed: conflict", run.Status.StepError)
	assert.Equal(t, "failover of alias failed: conflict", run.Status.Message)
}

func TestPhasePredicates(t *testing.T) {
	assert.True(t, IsTerminal(v1alpha1.RunPhaseCompleted))
	assert.True(t, IsTerminal(v1alpha1.RunPhaseFailed))
	assert.False(t, IsTerminal(v1alpha1.RunPhaseSyncing))

	assert.True(t, IsTransitioning(v1alpha1.RunPhaseProvisioning))
	assert.True(t, IsTransitioning(v1alpha1.RunPhaseCleaningUp))
	assert.False(t, IsTransitioning(v1alpha1.RunPhasePending))
	assert.False(t, IsTransitioning(v1alpha1.RunPhaseCompleted))
	assert.False(t, IsTransitioning(v1alpha1.RunPhaseFailed))
	assert.False(t, IsTransitioning(""))
}
