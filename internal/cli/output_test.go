package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// TestFormatCheckLine verifies the name, status, and detail all appear
// in the rendered line. Marker glyphs are not asserted because color
// handling depends on the terminal.
func TestFormatCheckLine(t *testing.T) {
	line := FormatCheckLine(model.CheckResult{
		Name:   "docker",
		Status: model.CheckOK,
		Detail: "/usr/bin/docker",
	})

	assert.Contains(t, line, "docker")
	assert.Contains(t, line, "ok")
	assert.Contains(t, line, "/usr/bin/docker")
}

func TestFormatCheckLine_NoDetail(t *testing.T) {
	line := FormatCheckLine(model.CheckResult{
		Name:   "nvidia-toolkit",
		Status: model.CheckMissing,
	})

	assert.Contains(t, line, "nvidia-toolkit")
	assert.Contains(t, line, "missing")
	assert.NotContains(t, line, "()")
}

func TestFormatContainerTable(t *testing.T) {
	table := FormatContainerTable([]model.ServiceContainer{
		{Name: "voxnovel-web", Service: "voxnovel", State: "running", Status: "Up 2 minutes"},
		{Name: "voxnovel-nginx", Service: "nginx", State: "exited", Status: "Exited (1) 5 seconds ago"},
	})

	assert.Contains(t, table, "NAME")
	assert.Contains(t, table, "voxnovel-web")
	assert.Contains(t, table, "Up 2 minutes")
	assert.Contains(t, table, "Exited (1) 5 seconds ago")
}

func TestFormatContainerTable_Empty(t *testing.T) {
	assert.Empty(t, FormatContainerTable(nil))
}

func TestFormatStackStateLine(t *testing.T) {
	line := FormatStackStateLine("voxnovel", model.StackRunning)

	assert.Contains(t, line, "voxnovel")
	assert.Contains(t, line, "running")
}
