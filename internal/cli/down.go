package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/voxnovel/voxdeploy/internal/docker"
	"github.com/voxnovel/voxdeploy/internal/logging"
	"github.com/voxnovel/voxdeploy/internal/model"
	"github.com/voxnovel/voxdeploy/internal/workspace"
)

// NewDownCommand creates the "down" command: stop and remove the
// stack's containers and networks.
func NewDownCommand() *cobra.Command {
	var removeVolumes bool

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the VoxNovel stack",
		Long: `Down stops the stack's containers and removes them along with the
compose networks. Host data directories are never touched.

With --volumes, compose-managed volumes are removed too. Generated
audiobooks stored in volumes are lost — bind-mounted directories under
data/ survive either way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd, removeVolumes)
		},
	}

	downCmd.Flags().BoolVar(&removeVolumes, "volumes", false,
		"Also remove compose-managed volumes")

	return downCmd
}

func runDown(cmd *cobra.Command, removeVolumes bool) error {
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

	logger := logging.New(settings.LogFile)
	logger.WithField("volumes", removeVolumes).Info("down started")

	comp := docker.NewCompose(workDir, settings.ComposeFile, settings.ProjectName)
	if err := comp.Down(cmd.Context(), removeVolumes); err != nil {
		logger.WithError(err).Error("compose down failed")
		return err
	}

	logger.Info("down finished")
	stepOK("stack %q stopped", settings.ProjectName)
	return nil
}
