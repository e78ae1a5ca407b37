package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxnovel/voxdeploy/internal/logging"
	"github.com/voxnovel/voxdeploy/internal/model"
	"github.com/voxnovel/voxdeploy/internal/preflight"
)

// NewCheckCommand creates the "check" command: the preflight phase of
// deploy on its own, for inspecting a host without touching the stack.
func NewCheckCommand() *cobra.Command {
	var install bool

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check (and optionally install) the required host tooling",
		Long: `Check probes the host for Docker, the compose plugin, the NVIDIA
driver, and the NVIDIA container toolkit, and reports each one.

By default nothing is modified. With --install, missing Docker
components are installed the same way deploy would install them —
which requires root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, install)
		},
	}

	checkCmd.Flags().BoolVar(&install, "install", false,
		"Install missing tooling instead of only reporting it")

	return checkCmd
}

func runCheck(cmd *cobra.Command, install bool) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	pf := preflight.NewRunner(install, settings.GPU)
	if install {
		// Read-only probing works for any user; installation does not.
		if err := pf.RequireRoot(); err != nil {
			return err
		}
	}

	logger := logging.Discard()
	if install {
		logger = logging.New(settings.LogFile)
		logger.Info("check --install started")
	}

	results, pfErr := pf.Run(cmd.Context())
	for _, res := range results {
		logger.WithFields(map[string]interface{}{
			"check":  res.Name,
			"status": string(res.Status),
		}).Info(res.Detail)
	}

	if IsJSONOutput() {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return model.WrapDeployError(model.KindUsage, "failed to marshal check results", err)
		}
		fmt.Println(string(data))
	} else {
		printCheckResults(results)
	}

	return pfErr
}
