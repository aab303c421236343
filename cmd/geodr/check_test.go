package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommand_RequiresSubscription(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_SUBSCRIPTION_ID")
	assert.Empty(t, out)
}

func TestEnvCommand(t *testing.T) {
	stateDir := setupEnv(t)
	t.Setenv("GEODR_OUTPUT", "yaml")

	out, err := execute(t, "env")
	require.NoError(t, err)

	assert.Contains(t, out, "subscription_id")
	assert.Contains(t, out, stateDir)
	assert.Contains(t, out, "yaml")
	assert.Contains(t, out, "GEODR_STATE_DIR")
	assert.Contains(t, out, "AZURE_SUBSCRIPTION_ID")
}
