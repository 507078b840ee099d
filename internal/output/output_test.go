package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("🔍", "checking index...")

	output := buf.String()
	assert.Contains(t, output, "🔍")
	assert.Contains(t, output, "checking index...")
}

func TestWriter_Success_PrintsCheckmark(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("index complete")

	output := buf.String()
	assert.Contains(t, output, "✔")
	assert.Contains(t, output, "index complete")
}

func TestWriter_Warning_PrintsWarningIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warning("watcher not available")

	output := buf.String()
	assert.Contains(t, output, "⚠")
	assert.Contains(t, output, "watcher not available")
}

func TestWriter_Error_PrintsErrorIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Error("failed to clone")

	output := buf.String()
	assert.Contains(t, output, "✘")
	assert.Contains(t, output, "failed to clone")
}

func TestWriter_Successf_FormatsMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Successf("indexed %d files in %s", 42, "/path/to/project")

	output := buf.String()
	assert.Contains(t, output, "indexed 42 files in /path/to/project")
}

func TestWriter_Code_PrintsIndentedBlock(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Code("func Hello() {}")

	output := buf.String()
	assert.Contains(t, output, "  func Hello() {}")
}

func TestWriter_Dim_PrintsDeemphasizedLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Dimf("%d projects total", 3)

	output := buf.String()
	assert.Contains(t, output, "3 projects total")
}

func TestWriter_Newline_PrintsEmptyLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Newline()

	assert.Equal(t, "\n", buf.String())
}

func TestNew_BufferIsNotATTY_NoColor(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	assert.NotNil(t, w)
	// A bytes.Buffer is never a *os.File, so color auto-detection must fall
	// back to plain styles regardless of the environment running the test.
	assert.Equal(t, NoColorStyles(), w.styles)
}

func TestNewWithColor_OverridesAutoDetection(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWithColor(buf, true)

	assert.Equal(t, DefaultStyles(), w.styles)
}

func TestGetStyles_NoColorIsUnstyled(t *testing.T) {
	styles := GetStyles(true)

	assert.Equal(t, "plain", styles.Success.Render("plain"))
}
