// install.go implements the installation flows for missing host tooling.
// Each installer shells out to the vendor-documented procedure, the same
// commands an operator would paste from the deployment guide. Installers
// run only when Runner.Install is true and only after the corresponding
// check found the tool missing.
package preflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// getDockerScriptURL is Docker's convenience installer. It detects the
// distribution, adds the repository, and installs the engine plus the
// compose plugin.
const getDockerScriptURL = "https://get.docker.com"

// installDocker downloads and runs the get.docker.com script, then
// enables the engine service so it survives reboots.
func (r *Runner) installDocker(ctx context.Context) error {
	script := "/tmp/get-docker.sh"

	if out, err := r.Exec.Run(ctx, "curl", "-fsSL", getDockerScriptURL, "-o", script); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("failed to download Docker install script: %s", strings.TrimSpace(string(out))), err)
	}

	if out, err := r.Exec.Run(ctx, "sh", script); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("Docker install script failed: %s", strings.TrimSpace(string(out))), err)
	}

	// Best effort: on systemd hosts make sure the daemon is running and
	// enabled. Non-systemd environments (some LXC templates) return an
	// error here even though dockerd works, so the result is ignored.
	_, _ = r.Exec.Run(ctx, "systemctl", "enable", "--now", "docker")

	return nil
}

// installComposePlugin installs the docker-compose-plugin package via
// apt. Debian/Ubuntu is the only supported base for the Proxmox LXC
// deployment, so no other package managers are probed.
func (r *Runner) installComposePlugin(ctx context.Context) error {
	if out, err := r.Exec.Run(ctx, "apt-get", "update", "-qq"); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("apt-get update failed: %s", strings.TrimSpace(string(out))), err)
	}

	if out, err := r.Exec.Run(ctx, "apt-get", "install", "-y", "docker-compose-plugin"); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("failed to install docker-compose-plugin: %s", strings.TrimSpace(string(out))), err)
	}

	return nil
}

// installNVIDIAToolkit installs the NVIDIA container toolkit following
// the vendor apt flow: add the signed repository, install the package,
// register the runtime with Docker, and restart the daemon so the
// runtime takes effect.
func (r *Runner) installNVIDIAToolkit(ctx context.Context) error {
	// Repository setup is a shell pipeline in the vendor docs; running it
	// through sh -c keeps it identical to the documented commands.
	repoSetup := `curl -fsSL https://nvidia.github.io/libnvidia-container/gpgkey | ` +
		`gpg --dearmor -o /usr/share/keyrings/nvidia-container-toolkit-keyring.gpg && ` +
		`curl -sL https://nvidia.github.io/libnvidia-container/stable/deb/nvidia-container-toolkit.list | ` +
		`sed 's#deb https://#deb [signed-by=/usr/share/keyrings/nvidia-container-toolkit-keyring.gpg] https://#g' ` +
		`> /etc/apt/sources.list.d/nvidia-container-toolkit.list`

	if out, err := r.Exec.Run(ctx, "sh", "-c", repoSetup); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("failed to add NVIDIA toolkit repository: %s", strings.TrimSpace(string(out))), err)
	}

	if out, err := r.Exec.Run(ctx, "apt-get", "update", "-qq"); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("apt-get update failed: %s", strings.TrimSpace(string(out))), err)
	}

	if out, err := r.Exec.Run(ctx, "apt-get", "install", "-y", "nvidia-container-toolkit"); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("failed to install nvidia-container-toolkit: %s", strings.TrimSpace(string(out))), err)
	}

	if out, err := r.Exec.Run(ctx, "nvidia-ctk", "runtime", "configure", "--runtime=docker"); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("failed to configure NVIDIA runtime: %s", strings.TrimSpace(string(out))), err)
	}

	if out, err := r.Exec.Run(ctx, "systemctl", "restart", "docker"); err != nil {
		return model.WrapDeployError(model.KindPreflight,
			fmt.Sprintf("failed to restart Docker after runtime configuration: %s", strings.TrimSpace(string(out))), err)
	}

	return nil
}
