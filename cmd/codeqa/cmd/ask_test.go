package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_ReturnsContextForIndexedProject(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "auth.py"),
		[]byte("def authenticate(user, password):\n    return True\n"), 0o644))
	storeDir := t.TempDir()

	index, _ := newTestRootCmd(t)
	index.SetArgs([]string{"--base-dir", storeDir, "index", projectDir})
	require.NoError(t, index.Execute())

	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", storeDir, "ask", "--project", projectDir, "authenticate"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "authenticate")
	assert.Contains(t, buf.String(), "confidence:")
}

func TestAskCmd_NoIndexReturnsMessage(t *testing.T) {
	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", t.TempDir(), "ask", "--project", t.TempDir(), "what does this do?"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "confidence: low")
}
