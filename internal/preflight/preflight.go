package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/voxnovel/voxdeploy/internal/config"
	"github.com/voxnovel/voxdeploy/internal/model"
)

// Check names used in CheckResult.Name. Stable identifiers so scripts
// consuming --json output can key on them.
const (
	CheckDocker        = "docker"
	CheckComposePlugin = "compose-plugin"
	CheckNVIDIADriver  = "nvidia-driver"
	CheckNVIDIAToolkit = "nvidia-toolkit"
)

// CmdRunner executes an external command and returns its combined
// stdout/stderr. The single-method interface keeps installers testable
// without spawning processes.
type CmdRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execCmdRunner is the production CmdRunner backed by os/exec.
type execCmdRunner struct{}

// Run executes the command and captures combined output for error
// reporting, mirroring how compose invocations are handled elsewhere.
func (execCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	return cmd.CombinedOutput()
}

// Runner performs the preflight checks. The probe functions default to
// the real OS implementations and are overridden in tests.
type Runner struct {
	// Install controls whether missing tooling is installed or only
	// reported.
	Install bool

	// GPUMode is one of config.GPUAuto / GPUOn / GPUOff and controls
	// whether the NVIDIA checks run at all.
	GPUMode string

	// LookPath resolves a binary on PATH. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	// Geteuid returns the effective user id. Defaults to os.Geteuid.
	Geteuid func() int

	// Exec runs external commands (version probes and installers).
	Exec CmdRunner
}

// NewRunner creates a Runner wired to the real host.
func NewRunner(install bool, gpuMode string) *Runner {
	return &Runner{
		Install:  install,
		GPUMode:  gpuMode,
		LookPath: exec.LookPath,
		Geteuid:  os.Geteuid,
		Exec:     execCmdRunner{},
	}
}

// RequireRoot fails unless the process runs with effective uid 0.
// Installation and Docker socket access both need root on a stock
// Proxmox LXC host, and the deploy contract demands exit 1 before any
// side effect when invoked as an ordinary user.
func (r *Runner) RequireRoot() error {
	if r.Geteuid() != 0 {
		return model.NewDeployError(model.KindUsage,
			"voxdeploy must run as root (try: sudo voxdeploy deploy)")
	}
	return nil
}

// Run executes all preflight checks in order and returns their results.
//
// Docker and the compose plugin are hard requirements: if either is
// still missing after the (optional) installation attempt, Run returns
// an error alongside the collected results. The NVIDIA checks are
// advisory — a host without a GPU deploys in CPU mode, so their
// failures surface as "missing"/"skipped" results, never as errors.
func (r *Runner) Run(ctx context.Context) ([]model.CheckResult, error) {
	var results []model.CheckResult

	docker := r.checkDocker(ctx)
	results = append(results, docker)

	// The compose plugin rides on the docker binary; checking it without
	// docker present would only produce a confusing duplicate failure.
	if docker.Satisfied() {
		results = append(results, r.checkComposePlugin(ctx))
	} else {
		results = append(results, model.CheckResult{
			Name:   CheckComposePlugin,
			Status: model.CheckSkipped,
			Detail: "docker missing",
		})
	}

	driver := r.checkNVIDIADriver()
	results = append(results, driver)
	results = append(results, r.checkNVIDIAToolkit(ctx, driver))

	for _, res := range results {
		if res.Status == model.CheckMissing && (res.Name == CheckDocker || res.Name == CheckComposePlugin) {
			return results, model.NewDeployError(model.KindPreflight,
				fmt.Sprintf("required tooling %q is not available", res.Name))
		}
	}

	return results, nil
}

// checkDocker verifies the docker binary is on PATH, installing it via
// the get.docker.com convenience script when allowed.
func (r *Runner) checkDocker(ctx context.Context) model.CheckResult {
	if path, err := r.LookPath("docker"); err == nil {
		return model.CheckResult{Name: CheckDocker, Status: model.CheckOK, Detail: path}
	}

	if !r.Install {
		return model.CheckResult{Name: CheckDocker, Status: model.CheckMissing,
			Detail: "docker not found on PATH"}
	}

	if err := r.installDocker(ctx); err != nil {
		return model.CheckResult{Name: CheckDocker, Status: model.CheckMissing,
			Detail: fmt.Sprintf("install failed: %v", err)}
	}

	path, err := r.LookPath("docker")
	if err != nil {
		return model.CheckResult{Name: CheckDocker, Status: model.CheckMissing,
			Detail: "docker still not on PATH after install"}
	}
	return model.CheckResult{Name: CheckDocker, Status: model.CheckInstalled, Detail: path}
}

// checkComposePlugin verifies `docker compose version` works, installing
// the docker-compose-plugin package when allowed. The plugin form is
// probed (not a standalone docker-compose binary) because modern Docker
// ships compose as a CLI plugin.
func (r *Runner) checkComposePlugin(ctx context.Context) model.CheckResult {
	if out, err := r.Exec.Run(ctx, "docker", "compose", "version"); err == nil {
		return model.CheckResult{Name: CheckComposePlugin, Status: model.CheckOK,
			Detail: firstLine(out)}
	}

	if !r.Install {
		return model.CheckResult{Name: CheckComposePlugin, Status: model.CheckMissing,
			Detail: "docker compose plugin not available"}
	}

	if err := r.installComposePlugin(ctx); err != nil {
		return model.CheckResult{Name: CheckComposePlugin, Status: model.CheckMissing,
			Detail: fmt.Sprintf("install failed: %v", err)}
	}

	out, err := r.Exec.Run(ctx, "docker", "compose", "version")
	if err != nil {
		return model.CheckResult{Name: CheckComposePlugin, Status: model.CheckMissing,
			Detail: "compose plugin still not working after install"}
	}
	return model.CheckResult{Name: CheckComposePlugin, Status: model.CheckInstalled,
		Detail: firstLine(out)}
}

// checkNVIDIADriver probes for nvidia-smi. There is no installer for the
// driver itself — on a Proxmox LXC the driver belongs to the hypervisor
// host, so a missing driver in auto mode just means CPU deployment.
func (r *Runner) checkNVIDIADriver() model.CheckResult {
	if r.GPUMode == config.GPUOff {
		return model.CheckResult{Name: CheckNVIDIADriver, Status: model.CheckSkipped,
			Detail: "gpu disabled"}
	}

	if path, err := r.LookPath("nvidia-smi"); err == nil {
		return model.CheckResult{Name: CheckNVIDIADriver, Status: model.CheckOK, Detail: path}
	}

	if r.GPUMode == config.GPUAuto {
		return model.CheckResult{Name: CheckNVIDIADriver, Status: model.CheckSkipped,
			Detail: "no NVIDIA driver detected, deploying in CPU mode"}
	}

	return model.CheckResult{Name: CheckNVIDIADriver, Status: model.CheckMissing,
		Detail: "gpu mode is \"on\" but nvidia-smi is not on PATH"}
}

// checkNVIDIAToolkit probes for the NVIDIA container toolkit
// (nvidia-ctk) and installs it when the driver is present and
// installation is allowed.
func (r *Runner) checkNVIDIAToolkit(ctx context.Context, driver model.CheckResult) model.CheckResult {
	if r.GPUMode == config.GPUOff || driver.Status == model.CheckSkipped {
		return model.CheckResult{Name: CheckNVIDIAToolkit, Status: model.CheckSkipped,
			Detail: "gpu not in use"}
	}
	if driver.Status == model.CheckMissing {
		return model.CheckResult{Name: CheckNVIDIAToolkit, Status: model.CheckSkipped,
			Detail: "driver missing"}
	}

	if path, err := r.LookPath("nvidia-ctk"); err == nil {
		return model.CheckResult{Name: CheckNVIDIAToolkit, Status: model.CheckOK, Detail: path}
	}

	if !r.Install {
		return model.CheckResult{Name: CheckNVIDIAToolkit, Status: model.CheckMissing,
			Detail: "nvidia container toolkit not installed"}
	}

	if err := r.installNVIDIAToolkit(ctx); err != nil {
		return model.CheckResult{Name: CheckNVIDIAToolkit, Status: model.CheckMissing,
			Detail: fmt.Sprintf("install failed: %v", err)}
	}

	path, err := r.LookPath("nvidia-ctk")
	if err != nil {
		return model.CheckResult{Name: CheckNVIDIAToolkit, Status: model.CheckMissing,
			Detail: "nvidia-ctk still not on PATH after install"}
	}
	return model.CheckResult{Name: CheckNVIDIAToolkit, Status: model.CheckInstalled, Detail: path}
}

// firstLine trims command output down to its first line for compact
// check details.
func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
