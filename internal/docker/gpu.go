// gpu.go implements the GPU passthrough smoke test: a disposable CUDA
// container that runs nvidia-smi through the NVIDIA container runtime.
// If the container exits zero, the driver, the toolkit, and the Docker
// runtime wiring are all working end to end.
package docker

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// gpuTestImage is the image used for the smoke test. The base variant
// is small (no cuDNN, no toolchain) but still links against the driver.
const gpuTestImage = "nvidia/cuda:12.4.1-base-ubuntu22.04"

// gpuTestTimeout bounds the smoke test including a possible image pull.
const gpuTestTimeout = 5 * time.Minute

// GPUSmokeTest runs "docker run --rm --gpus all <cuda image> nvidia-smi"
// and returns the nvidia-smi output on success.
//
// Failures return a model.DeployError with KindGPU. The deploy pipeline
// treats that as a warning — a broken GPU passthrough degrades VoxNovel
// to CPU synthesis, it does not invalidate the deployment.
func GPUSmokeTest(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, gpuTestTimeout)
	defer cancel()

	// docker run is used rather than the SDK's ContainerCreate/Start/
	// Wait sequence because --gpus encapsulates the device request
	// wiring the CLI and the runtime already agree on.
	cmd := exec.CommandContext(runCtx, "docker",
		"run", "--rm", "--gpus", "all", gpuTestImage, "nvidia-smi")
	cmd.Env = os.Environ()

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", model.WrapDeployError(
			model.KindGPU,
			"GPU smoke test failed: "+strings.TrimSpace(string(output)),
			err,
		)
	}

	return strings.TrimSpace(string(output)), nil
}
