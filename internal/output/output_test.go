package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestUI(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	var out, errOut bytes.Buffer
	ui := &UI{Out: &out, ErrOut: &errOut}

	ui.Success("synced %d fields", 2)
	ui.Warning("dry run")
	ui.Error("failed: %v", "boom")

	assert.Contains(t, out.String(), "synced 2 fields\n")
	assert.Contains(t, errOut.String(), "dry run\n")
	assert.Contains(t, errOut.String(), "failed: boom\n")
	assert.NotContains(t, out.String(), "failed")
}
