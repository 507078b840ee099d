package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCmd_NoChangesReportsZero(t *testing.T) {
	projectDir := t.TempDir()
	createTestProject(t, projectDir)
	storeDir := t.TempDir()

	first, _ := newTestRootCmd(t)
	first.SetArgs([]string{"--base-dir", storeDir, "index", projectDir})
	require.NoError(t, first.Execute())

	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", storeDir, "update", projectDir})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "updated 0 files, removed 0")
}

func TestUpdateCmd_BeforeIndexFails(t *testing.T) {
	projectDir := t.TempDir()
	createTestProject(t, projectDir)

	cmd, _ := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", t.TempDir(), "update", projectDir})

	err := cmd.Execute()

	assert.Error(t, err)
}
