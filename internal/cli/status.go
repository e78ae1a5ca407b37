package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxnovel/voxdeploy/internal/docker"
	"github.com/voxnovel/voxdeploy/internal/model"
)

// statusReport is the JSON shape of the status command's output.
type statusReport struct {
	Project    string                   `json:"project"`
	State      model.StackState         `json:"state"`
	Containers []model.ServiceContainer `json:"containers"`
}

// NewStatusCommand creates the "status" command: the aggregate stack
// state plus a per-container table. Read-only.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the VoxNovel stack",
		Long: `Status queries the Docker daemon for the stack's containers
(including stopped ones) and reports the aggregate state:

  running  every container is up
  partial  some containers are up, some are not
  stopped  containers exist but none is running
  absent   the stack has never been deployed (or was removed)`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer cli.Close()
	if err := cli.Ping(cmd.Context()); err != nil {
		return err
	}

	state, containers, err := docker.StackState(cmd.Context(), cli, settings.ProjectName)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		report := statusReport{
			Project:    settings.ProjectName,
			State:      state,
			Containers: containers,
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return model.WrapDeployError(model.KindUsage, "failed to marshal status", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(FormatStackStateLine(settings.ProjectName, state))
	if table := FormatContainerTable(containers); table != "" {
		fmt.Println()
		fmt.Println(table)
	}
	return nil
}
