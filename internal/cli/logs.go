package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/voxnovel/voxdeploy/internal/docker"
	"github.com/voxnovel/voxdeploy/internal/model"
	"github.com/voxnovel/voxdeploy/internal/workspace"
)

// NewLogsCommand creates the "logs" command: a thin front for
// "docker compose logs" with the stack's file and project pre-filled.
func NewLogsCommand() *cobra.Command {
	var (
		follow bool
		tail   int
	)

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the stack's service logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, follow, tail)
		},
	}

	logsCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVar(&tail, "tail", 0, "Number of lines to show from the end of the logs (0 = all)")

	return logsCmd
}

func runLogs(cmd *cobra.Command, follow bool, tail int) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return model.WrapDeployError(model.KindWorkspace, "cannot determine working directory", err)
	}
	if err := workspace.VerifyComposeFile(workDir, settings.ComposeFile); err != nil {
		return err
	}

	comp := docker.NewCompose(workDir, settings.ComposeFile, settings.ProjectName)
	return comp.Logs(cmd.Context(), follow, tail)
}
