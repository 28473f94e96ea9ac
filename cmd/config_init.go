package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/scrub/internal/configs"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/git"
	"github.com/PolarWolf314/scrub/internal/ui"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing .scrub.toml")
	ConfigCmd.AddCommand(configInitCmd)
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitForce = false
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write .scrub.toml at the repository root",
	Long: `Writes .scrub.toml at the repository root with the default settings,
overridden by any settings flags passed to this command. Environment
variables are not written.

An existing file is only replaced with --force.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")

		history, err := git.OpenHistory(".")
		if err != nil {
			Logger.Debugf("Failed to open repository: %v", err)
			err = kerrors.ErrNotGitRepository
			fmt.Println(formatConfigError(err))
			return reported(err)
		}

		settings := configs.Defaults()
		applySettingsFlags(cmd, &settings)
		Logger.Debugf("Writing settings: %+v", settings)

		path, err := configs.WriteProjectConfig(history.Root(), settings, configInitForce)
		if err != nil {
			fmt.Println(formatConfigError(err))
			return reported(err)
		}

		Logger.Infof("Wrote %s", path)
		fmt.Println(ui.MarkOK + " Wrote " + ui.Path.Sprint(path))
		fmt.Println(ui.MarkHint + " Commit it so everyone scrubs the same file")
		return nil
	},
}

func formatConfigError(err error) string {
	if msg, ok := formatCommonError(err); ok {
		return msg
	}

	if kerrors.Is(err, kerrors.ErrConfigExists) {
		return ui.MarkFail + " " + ui.Path.Sprint(configs.ProjectConfigFile) + " already exists\n" +
			ui.MarkHint + " Use " + ui.Flag.Sprint("--force") + " to overwrite it"
	}
	return ui.MarkFail + " " + err.Error()
}
