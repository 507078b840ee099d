package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectsCmd_ListsIndexedProjects(t *testing.T) {
	storeDir := t.TempDir()
	projectDir := t.TempDir()
	createTestProject(t, projectDir)

	index, _ := newTestRootCmd(t)
	index.SetArgs([]string{"--base-dir", storeDir, "index", projectDir})
	require.NoError(t, index.Execute())

	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", storeDir, "projects"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 indexed projects")
}

func TestProjectsCmd_EmptyStoreWarns(t *testing.T) {
	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", t.TempDir(), "projects"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no indexed projects")
}
