package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxnovel/voxdeploy/internal/compose"
	"github.com/voxnovel/voxdeploy/internal/config"
	"github.com/voxnovel/voxdeploy/internal/docker"
	"github.com/voxnovel/voxdeploy/internal/logging"
	"github.com/voxnovel/voxdeploy/internal/model"
	"github.com/voxnovel/voxdeploy/internal/preflight"
	"github.com/voxnovel/voxdeploy/internal/readiness"
	"github.com/voxnovel/voxdeploy/internal/workspace"
)

// NewDeployCommand creates the "deploy" command: the full provisioning
// pipeline from preflight checks to a verified-running stack.
func NewDeployCommand() *cobra.Command {
	var (
		noInstall bool
		skipBuild bool
	)

	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision and start the VoxNovel stack",
		Long: `Deploy runs the whole provisioning pipeline:

  1. Verify root privileges and the compose file (before any side effect)
  2. Check and, unless --no-install, install Docker, the compose plugin,
     and the NVIDIA container toolkit
  3. Create the data directories backing the container volume mounts
  4. Tear down any previous instance of the stack, rebuild, and start it
  5. Wait until every container is running and probe the web health
     endpoint
  6. Print the LAN access URL and the operational commands

Re-running deploy on an already provisioned host is safe: present
tooling is never reinstalled and existing directories are left in
place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, noInstall, skipBuild)
		},
	}

	deployCmd.Flags().BoolVar(&noInstall, "no-install", false,
		"Report missing tooling instead of installing it")
	deployCmd.Flags().BoolVar(&skipBuild, "skip-build", false,
		"Start the stack without rebuilding images")

	return deployCmd
}

// runDeploy executes the deployment pipeline. Every failure path
// returns a *model.DeployError so Execute can render it; the exit code
// is always 1 on failure regardless of which phase failed.
func runDeploy(cmd *cobra.Command, noInstall, skipBuild bool) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	pf := preflight.NewRunner(!noInstall, settings.GPU)

	// Root and compose-file verification come before every side effect:
	// a mistyped invocation must not half-install packages or scatter
	// directories.
	if err := pf.RequireRoot(); err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return model.WrapDeployError(model.KindWorkspace, "cannot determine working directory", err)
	}
	if err := workspace.VerifyComposeFile(workDir, settings.ComposeFile); err != nil {
		return err
	}

	stack, err := compose.Load(filepath.Join(workDir, settings.ComposeFile))
	if err != nil {
		return err
	}
	VerboseLog("compose file %s defines services: %s",
		settings.ComposeFile, strings.Join(stack.ServiceNames(), ", "))

	logger := logging.New(settings.LogFile)
	logger.WithField("dir", workDir).Info("deploy started")

	// Phase: tooling.
	sectionHeader("Checking required tooling")
	results, pfErr := pf.Run(ctx)
	printCheckResults(results)
	for _, res := range results {
		logger.WithFields(map[string]interface{}{
			"check":  res.Name,
			"status": string(res.Status),
		}).Info(res.Detail)
	}
	if pfErr != nil {
		logger.WithError(pfErr).Error("preflight failed")
		return pfErr
	}

	// Phase: workspace.
	sectionHeader("Preparing data directories")
	mode, err := settings.Mode()
	if err != nil {
		return err
	}
	if err := workspace.EnsureDirs(workDir, settings.DataDirs, mode); err != nil {
		logger.WithError(err).Error("directory setup failed")
		return err
	}
	stepOK("%d data directories ready under %s", len(settings.DataDirs), workDir)

	// Phase: stack.
	sectionHeader("Starting the stack")
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer cli.Close()
	if err := cli.Ping(ctx); err != nil {
		return err
	}

	comp := docker.NewCompose(workDir, settings.ComposeFile, settings.ProjectName)
	envVars := settings.ComposeEnv()
	for key := range envVars {
		VerboseLog("passing %s through to compose", key)
	}

	// A previous instance is torn down first so the rebuild starts from
	// a clean slate. Volumes are kept — down -v is reserved for the
	// explicit "down --volumes".
	prevState, _, err := docker.StackState(ctx, cli, settings.ProjectName)
	if err != nil {
		return err
	}
	if prevState != model.StackAbsent {
		logger.WithField("state", string(prevState)).Info("stopping previous stack")
		if err := comp.Down(ctx, false); err != nil {
			logger.WithError(err).Error("compose down failed")
			return err
		}
		stepOK("previous stack stopped")
	}

	if !skipBuild {
		fmt.Println("building images (first build downloads several GB of models, be patient)...")
		logger.Info("compose build started")
		if err := comp.Build(ctx, envVars); err != nil {
			logger.WithError(err).Error("compose build failed")
			return err
		}
		stepOK("images built")
	}

	logger.Info("compose up started")
	if err := comp.Up(ctx, envVars); err != nil {
		logger.WithError(err).Error("compose up failed")
		return err
	}
	stepOK("stack started")

	// Phase: readiness.
	sectionHeader("Waiting for containers")
	report, err := waitForStack(ctx, cli, settings)
	if err != nil {
		// Show what the stack looked like at the deadline before failing.
		if report != nil {
			if table := FormatContainerTable(report.Containers); table != "" {
				fmt.Println(table)
			}
			stepFail("stack state after %s: %s", settings.ReadinessTimeout(), report.State)
		}
		logger.WithError(err).Error("readiness failed")
		return err
	}
	stepOK("all containers running after %s", report.Elapsed.Round(readinessRound))
	if report.HealthDetail != "" {
		if report.HealthOK {
			stepOK("web server healthy: %s", report.HealthDetail)
		} else {
			stepWarn("web server not confirming health yet: %s", report.HealthDetail)
		}
	}
	logger.WithField("elapsed", report.Elapsed.String()).Info("stack ready")

	// Phase: GPU smoke test, advisory only.
	if gpuUsable(settings.GPU, results) {
		sectionHeader("Testing GPU passthrough")
		if out, err := docker.GPUSmokeTest(ctx); err != nil {
			stepWarn("GPU passthrough not working, VoxNovel will run on CPU")
			VerboseLog("gpu smoke test: %v", err)
			logger.WithError(err).Warn("gpu smoke test failed")
		} else {
			stepOK("GPU passthrough working")
			VerboseLog("nvidia-smi:\n%s", out)
			logger.Info("gpu smoke test passed")
		}
	}

	printDeploySummary(settings, stack)
	logger.Info("deploy finished")
	return nil
}

// readinessRound is the display granularity for elapsed times.
const readinessRound = 100 * time.Millisecond

// waitForStack runs the readiness poll loop against the Docker API and
// probes the web health endpoint once the containers are up.
func waitForStack(ctx context.Context, cli *docker.Client, settings config.Settings) (*readiness.Report, error) {
	waiter := readiness.NewWaiter(
		func(pollCtx context.Context) (model.StackState, []model.ServiceContainer, error) {
			return docker.StackState(pollCtx, cli, settings.ProjectName)
		},
		settings.PollInterval(),
		settings.ReadinessTimeout(),
	)

	report, err := waiter.Wait(ctx)
	if err != nil {
		return report, err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d%s", settings.WebPort, settings.HealthPath)
	readiness.ProbeHealth(ctx, report, url)
	return report, nil
}

// printDeploySummary prints the access URL and the day-two commands.
func printDeploySummary(settings config.Settings, stack *compose.File) {
	sectionHeader("VoxNovel is up")

	fmt.Printf("  Open:   http://%s:%d\n", readiness.HostIP(), settings.WebPort)
	if !stack.PublishesHostPort(settings.WebPort) {
		stepWarn("compose file does not publish host port %d; the URL above may not answer", settings.WebPort)
	}

	fmt.Println()
	fmt.Println("  Useful commands:")
	fmt.Println("    voxdeploy status          show stack state")
	fmt.Println("    voxdeploy logs -f         follow service logs")
	fmt.Println("    voxdeploy down            stop the stack")
	fmt.Println("    voxdeploy gpu-test        re-run the GPU check")
}

// gpuUsable reports whether the deploy should run the GPU smoke test:
// GPU handling enabled and both the driver and the toolkit present.
func gpuUsable(mode string, results []model.CheckResult) bool {
	if mode == config.GPUOff {
		return false
	}

	driverOK, toolkitOK := false, false
	for _, res := range results {
		switch res.Name {
		case preflight.CheckNVIDIADriver:
			driverOK = res.Status == model.CheckOK || res.Status == model.CheckInstalled
		case preflight.CheckNVIDIAToolkit:
			toolkitOK = res.Status == model.CheckOK || res.Status == model.CheckInstalled
		}
	}
	return driverOK && toolkitOK
}
