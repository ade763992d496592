package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsolePlainWriterGetsNoColor(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Printf("hello %s", "world")
	assert.Equal(t, "hello world\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestConsoleBanner(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Banner("OCR Benchmark")
	out := buf.String()
	assert.Contains(t, out, "OCR Benchmark")
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("=", ruleWidth)))
}

func TestConsoleField(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Field("Mode", "%s", "stress")
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Mode:"))
	assert.True(t, strings.HasSuffix(out, " stress\n"))
	// The label column is padded to a fixed width.
	assert.GreaterOrEqual(t, strings.Index(out, "stress"), 16)
}

func TestConsoleStatusLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Successf("done")
	c.Warnf("careful")
	c.Errorf("broken")
	c.Stepf(2, 4, "Running...")

	out := buf.String()
	assert.Contains(t, out, "✓ done")
	assert.Contains(t, out, "⚠ careful")
	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "[2/4] Running...")
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", SuccessIcon(true))
	assert.Equal(t, "✗", ErrorIcon(true))
	assert.Equal(t, "⚠", WarningIcon(true))
}
