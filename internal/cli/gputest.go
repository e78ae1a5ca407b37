package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxnovel/voxdeploy/internal/docker"
)

// NewGPUTestCommand creates the "gpu-test" command: the GPU passthrough
// smoke test on its own.
//
// During deploy a failing smoke test is only a warning, because a host
// without GPU passthrough still runs VoxNovel on CPU. Run standalone,
// the test's whole purpose is the verdict, so a failure exits 1.
func NewGPUTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gpu-test",
		Short: "Verify GPU passthrough into containers",
		Long: `gpu-test starts a disposable CUDA container with --gpus all and runs
nvidia-smi inside it. Success proves the NVIDIA driver, the container
toolkit, and the Docker runtime wiring all work end to end.

The first run pulls the CUDA base image, which can take a few minutes.`,
		Args: cobra.NoArgs,
		RunE: runGPUTest,
	}
}

func runGPUTest(cmd *cobra.Command, args []string) error {
	fmt.Println("running nvidia-smi in a disposable CUDA container...")

	out, err := docker.GPUSmokeTest(cmd.Context())
	if err != nil {
		stepFail("GPU passthrough is not working")
		return err
	}

	fmt.Println(out)
	stepOK("GPU passthrough working")
	return nil
}
