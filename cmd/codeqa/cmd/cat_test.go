package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatCmd_PrintsIndexedFile(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "a.go"),
		[]byte("package a\n\nfunc Hello() {}\n"), 0o644))
	storeDir := t.TempDir()

	index, _ := newTestRootCmd(t)
	index.SetArgs([]string{"--base-dir", storeDir, "index", projectDir})
	require.NoError(t, index.Execute())

	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", storeDir, "cat", "--project", projectDir, "a.go"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hello")
}

func TestCatCmd_UnknownFileFails(t *testing.T) {
	projectDir := t.TempDir()
	createTestProject(t, projectDir)
	storeDir := t.TempDir()

	index, _ := newTestRootCmd(t)
	index.SetArgs([]string{"--base-dir", storeDir, "index", projectDir})
	require.NoError(t, index.Execute())

	cmd, _ := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", storeDir, "cat", "--project", projectDir, "missing.go"})

	err := cmd.Execute()

	assert.Error(t, err)
}
