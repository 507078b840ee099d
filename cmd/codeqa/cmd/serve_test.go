package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeCmd_UnknownTransportFails(t *testing.T) {
	cmd, _ := newTestRootCmd(t)
	cmd.SetArgs([]string{"--base-dir", t.TempDir(), "serve", "--transport", "carrier-pigeon"})

	err := cmd.Execute()

	assert.Error(t, err)
}

func TestServeCmd_RegisteredOnRoot(t *testing.T) {
	cmd := NewRootCmd()

	sub, _, err := cmd.Find([]string{"serve"})

	assert.NoError(t, err)
	assert.Equal(t, "serve", sub.Name())
}
