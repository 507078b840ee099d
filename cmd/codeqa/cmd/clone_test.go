package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneCmd_InvalidURLFails(t *testing.T) {
	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", t.TempDir(), "clone", "not a url"})

	err := cmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "invalid GitHub URL")
}
