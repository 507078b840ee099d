package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCmd_Success(t *testing.T) {
	projectDir := t.TempDir()
	createTestProject(t, projectDir)

	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", t.TempDir(), "index", projectDir})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "indexed 2 files")
}

func TestIndexCmd_MissingPathFails(t *testing.T) {
	cmd, _ := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", t.TempDir(), "index", "/does/not/exist"})

	err := cmd.Execute()

	assert.Error(t, err)
}
