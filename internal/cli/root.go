// Package cli implements the cobra-based CLI commands for voxdeploy.
//
// Each subcommand (deploy, check, status, down, logs, gpu-test) is
// defined in its own file within this package. This file defines the
// root command that serves as the parent for all subcommands and
// handles global flags and exit-code mapping.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxnovel/voxdeploy/internal/config"
	"github.com/voxnovel/voxdeploy/internal/model"
)

// Global flag variables shared across all subcommands. These are bound
// to cobra persistent flags on the root command, which makes them
// available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When false (default), output uses human-readable text format.
	jsonOutput bool

	// verbose enables detailed progress output on stderr.
	verbose bool

	// settingsPath is the location of the optional voxdeploy.jsonc
	// settings file.
	settingsPath string
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// The root command itself performs no action — it only provides help
// text and global flags. Functionality lives in the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voxdeploy",
		Short: "Provision and operate the VoxNovel audiobook stack on a Docker host",
		Long: `voxdeploy provisions the VoxNovel audiobook-generation stack on a
Proxmox/Docker host: it verifies and installs the required tooling
(Docker, the Compose plugin, the NVIDIA container toolkit), prepares
the data directories, and drives the compose stack to a verified
running state.

Run it as root from the directory containing the compose file
(docker-compose.proxmox.yml by default).`,

		// SilenceUsage prevents cobra from printing usage on every error;
		// SilenceErrors prevents double-printing — error output is
		// formatted by Execute (text or JSON based on --json).
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", config.DefaultFileName,
		"Path to the voxdeploy settings file")

	rootCmd.AddCommand(NewDeployCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewDownCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewGPUTestCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes. This is the
// main entry point called from main.go.
//
// The deployment contract is binary: every fatal error exits 1, success
// exits 0. DeployError kinds are surfaced in the error output for
// diagnostics but never change the exit code.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var depErr *model.DeployError
		if errors.As(err, &depErr) {
			printError(string(depErr.Kind), depErr.Message, depErr.Err)
			os.Exit(1)
		}

		printError("", err.Error(), nil)
		os.Exit(1)
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag. Errors go to stderr
// in both modes because stdout is reserved for command output.
func printError(kind, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if errMap, ok := errObj["error"].(map[string]interface{}); ok {
			if kind != "" {
				errMap["kind"] = kind
			}
			if underlying != nil {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled. Used throughout the CLI for progress/trace output.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// loadSettings loads the effective settings for the current invocation.
func loadSettings() (config.Settings, error) {
	return config.Load(settingsPath)
}
