package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func createTestProject(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.py"), []byte("def helper():\n    return 1\n"), 0o644))
}

// newTestRootCmd returns a root command wired to an isolated store under
// t.TempDir(), so tests never touch the real $HOME/.codebase-qa-agent.
func newTestRootCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func TestRootCmd_RegistersAllSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{
		"init", "index", "update", "watch", "unwatch", "clone", "delete-project",
		"ask", "find", "projects", "cat", "serve", "logs", "version",
	} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "subcommand %q should exist", name)
		require.Equal(t, name, sub.Name())
	}
}
