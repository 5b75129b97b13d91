package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		p, _, errOut := newTestPrinter(t)
		err := p.Error("Test Error", "This is a test error", nil)
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "This is a test error")
	})

	t.Run("numbers multiple suggestions", func(t *testing.T) {
		p, _, errOut := newTestPrinter(t)
		err := p.Error("Test Error", "Explanation", []string{"First option", "Second option"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "Either:\n  1. First option\n  2. Second option\n")
	})
}

func TestMessages(t *testing.T) {
	p, out, errOut := newTestPrinter(t)
	p.Success("done\n")
	p.Step("simulating\n")
	p.Info("plain %d\n", 3)
	p.Warning("dropped %d balls\n", 7)

	assert.Equal(t, "✓ done\n→ simulating\nplain 3\n", out.String())
	assert.Equal(t, "⚠️  dropped 7 balls\n", errOut.String())
}
