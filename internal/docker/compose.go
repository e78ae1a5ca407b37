// compose.go drives the docker compose CLI plugin for the VoxNovel
// stack: down, build, up, and logs. The compose file is operator-owned,
// so voxdeploy invokes the plugin rather than reimplementing service
// dependency ordering, network creation, and build orchestration on the
// SDK.
package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// Compose invokes docker compose commands for a fixed project and
// compose file.
type Compose struct {
	// ProjectDir is the working directory for every invocation; compose
	// resolves relative paths in the YAML against it.
	ProjectDir string

	// File is the compose file passed via -f.
	File string

	// Project is the compose project name passed via -p. It prefixes
	// container, network, and volume names.
	Project string

	// run executes the command. Overridable in tests; defaults to a
	// CombinedOutput exec of the docker binary.
	run func(ctx context.Context, dir string, env map[string]string, args []string) ([]byte, error)
}

// NewCompose creates a Compose driver for the given project directory,
// compose file, and project name.
func NewCompose(projectDir, file, project string) *Compose {
	return &Compose{
		ProjectDir: projectDir,
		File:       file,
		Project:    project,
		run:        runDockerCommand,
	}
}

// Up builds (if needed) and starts the stack detached:
// "docker compose -f <file> -p <project> up -d". The envVars are
// injected into the plugin's environment for variable substitution in
// the YAML — this is how NVIDIA_VISIBLE_DEVICES and CUDA_VISIBLE_DEVICES
// reach the container definitions.
func (c *Compose) Up(ctx context.Context, envVars map[string]string) error {
	args := c.baseArgs()
	args = append(args, "up", "-d")

	return c.exec(ctx, args, envVars, "docker compose up failed")
}

// Build rebuilds the stack's images:
// "docker compose -f <file> -p <project> build".
// envVars are injected for substitution in build args.
func (c *Compose) Build(ctx context.Context, envVars map[string]string) error {
	args := c.baseArgs()
	args = append(args, "build")

	return c.exec(ctx, args, envVars, "docker compose build failed")
}

// Down stops and removes the stack's containers and networks. When
// removeVolumes is true, named and anonymous volumes are removed too
// (-v), wiping all generated audiobook data — callers gate this behind
// an explicit flag.
func (c *Compose) Down(ctx context.Context, removeVolumes bool) error {
	args := c.baseArgs()
	args = append(args, "down")
	if removeVolumes {
		args = append(args, "-v")
	}

	return c.exec(ctx, args, nil, "docker compose down failed")
}

// Logs streams service logs to the caller's stdout/stderr:
// "docker compose -f <file> -p <project> logs [--follow] [--tail N]".
// Unlike the other operations it does not capture output — log streaming
// is interactive.
func (c *Compose) Logs(ctx context.Context, follow bool, tail int) error {
	args := c.baseArgs()
	args = append(args, "logs")
	if follow {
		args = append(args, "--follow")
	}
	if tail > 0 {
		args = append(args, "--tail", strconv.Itoa(tail))
	}

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = c.ProjectDir
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return model.WrapDeployError(model.KindCompose, "docker compose logs failed", err)
	}
	return nil
}

// baseArgs constructs the common prefix shared by every compose
// invocation: the plugin subcommand, the compose file, and the project
// name. "compose" is the plugin-style invocation of modern Docker;
// the legacy standalone docker-compose binary is not used.
func (c *Compose) baseArgs() []string {
	return []string{"compose", "-f", c.File, "-p", c.Project}
}

// exec runs a compose command and wraps failures with the plugin's
// combined output, which carries the actual diagnosis (missing image,
// port already bound, YAML error).
func (c *Compose) exec(ctx context.Context, args []string, envVars map[string]string, msg string) error {
	output, err := c.run(ctx, c.ProjectDir, envVars, args)
	if err != nil {
		return model.WrapDeployError(
			model.KindCompose,
			fmt.Sprintf("%s: %s", msg, strings.TrimSpace(string(output))),
			err,
		)
	}
	return nil
}

// runDockerCommand executes the docker binary as a child process in the
// given directory, inheriting the process environment plus envVars, and
// captures combined stdout/stderr for error reporting.
func runDockerCommand(ctx context.Context, dir string, env map[string]string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = dir

	// os.Environ() returns a copy, so appending does not affect this
	// process.
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	return cmd.CombinedOutput()
}
