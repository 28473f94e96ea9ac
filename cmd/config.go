package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the project settings file",
	Long: `Provides commands for the .scrub.toml file at the repository root.

Settings are resolved from the built-in defaults, then .scrub.toml, then
SCRUB_* environment variables, then flags.

Examples:
  # Write .scrub.toml with the defaults
  scrub config init

  # Write .scrub.toml for another file and remote
  scrub config init --file secrets.json --remote upstream

  # Show the resolved settings
  scrub config show`,
}

func resetConfigCommandState() {
	resetConfigInitState()
	resetConfigShowState()
}
