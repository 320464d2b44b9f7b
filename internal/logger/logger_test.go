package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	SetVerbose(false)

	Debug("hidden %s", "message")
	Info("shown %s", "message")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "INFO shown message")
}

func TestSetVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	SetVerbose(true)

	Debug("now %s", "visible")

	assert.Contains(t, buf.String(), "DEBUG now visible")
}

func TestWarnAndErrorAlwaysLogged(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	SetVerbose(false)

	Warn("warn %d", 1)
	Error("error %d", 2)

	out := buf.String()
	assert.Contains(t, out, "WARN warn 1")
	assert.Contains(t, out, "ERROR error 2")
}
