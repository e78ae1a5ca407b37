package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxnovel/voxdeploy/internal/config"
	"github.com/voxnovel/voxdeploy/internal/model"
	"github.com/voxnovel/voxdeploy/internal/preflight"
)

// TestGPUUsable covers the gate for the deploy-time smoke test: GPU
// handling enabled and both NVIDIA checks satisfied with the tool
// actually present (skipped does not count).
func TestGPUUsable(t *testing.T) {
	withGPU := []model.CheckResult{
		{Name: preflight.CheckNVIDIADriver, Status: model.CheckOK},
		{Name: preflight.CheckNVIDIAToolkit, Status: model.CheckInstalled},
	}
	withoutDriver := []model.CheckResult{
		{Name: preflight.CheckNVIDIADriver, Status: model.CheckSkipped},
		{Name: preflight.CheckNVIDIAToolkit, Status: model.CheckSkipped},
	}
	toolkitMissing := []model.CheckResult{
		{Name: preflight.CheckNVIDIADriver, Status: model.CheckOK},
		{Name: preflight.CheckNVIDIAToolkit, Status: model.CheckMissing},
	}

	assert.True(t, gpuUsable(config.GPUAuto, withGPU))
	assert.True(t, gpuUsable(config.GPUOn, withGPU))

	assert.False(t, gpuUsable(config.GPUOff, withGPU))
	assert.False(t, gpuUsable(config.GPUAuto, withoutDriver))
	assert.False(t, gpuUsable(config.GPUAuto, toolkitMissing))
	assert.False(t, gpuUsable(config.GPUAuto, nil))
}
