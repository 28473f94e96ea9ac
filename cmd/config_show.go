package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/scrub/internal/configs"
	"github.com/PolarWolf314/scrub/internal/ui"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	ConfigCmd.AddCommand(configShowCmd)
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

// ConfigShowOutput is the JSON form of the resolved settings.
type ConfigShowOutput struct {
	ConfigFile    string   `json:"config_file,omitempty"`
	File          string   `json:"file"`
	Backup        string   `json:"backup"`
	IgnoreFile    string   `json:"ignore_file"`
	Remote        string   `json:"remote"`
	CommitMessage string   `json:"commit_message"`
	AggressiveGC  bool     `json:"aggressive_gc"`
	PushTags      bool     `json:"push_tags"`
	IgnoreBackup  bool     `json:"ignore_backup"`
	Environment   []string `json:"environment"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the resolved settings",
	Long: `Displays the settings a purge would use here, after applying .scrub.toml,
SCRUB_* environment variables and any settings flags.

Examples:
  scrub config show
  scrub config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		settings, err := resolveSettings(cmd)
		if err != nil {
			fmt.Println(formatConfigError(err))
			return reported(err)
		}

		root := repoRoot()
		_, found, err := configs.LoadProjectConfig(root)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load project config: %v", err)
		}

		out := ConfigShowOutput{
			File:          settings.File,
			Backup:        settings.BackupPath(),
			IgnoreFile:    settings.IgnoreFile,
			Remote:        settings.Remote,
			CommitMessage: settings.Message(),
			AggressiveGC:  settings.AggressiveGC,
			PushTags:      settings.PushTags,
			IgnoreBackup:  settings.IgnoreBackup,
			Environment:   []string{},
		}
		if found {
			out.ConfigFile = configs.ProjectConfigPath(root)
		}
		for _, key := range configs.EnvKeys() {
			if v, ok := os.LookupEnv(key); ok && v != "" {
				out.Environment = append(out.Environment, key)
			}
		}

		if configShowJSON {
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to marshal config to JSON: %v", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printConfig(out)
		return nil
	},
}

func printConfig(out ConfigShowOutput) {
	if out.ConfigFile != "" {
		fmt.Println(ui.Info.Sprint("Settings") + " (" + ui.Path.Sprint(out.ConfigFile) + "):")
	} else {
		fmt.Println(ui.Info.Sprint("Settings") + " " + ui.Muted.Sprint("no "+configs.ProjectConfigFile) + ":")
	}
	fmt.Println()
	fmt.Printf("  %-16s %s\n", "File:", ui.Path.Sprint(out.File))
	fmt.Printf("  %-16s %s\n", "Backup:", ui.Path.Sprint(out.Backup))
	fmt.Printf("  %-16s %s\n", "Ignore file:", ui.Path.Sprint(out.IgnoreFile))
	fmt.Printf("  %-16s %s\n", "Remote:", ui.Highlight.Sprint(out.Remote))
	fmt.Printf("  %-16s %s\n", "Commit message:", out.CommitMessage)
	fmt.Printf("  %-16s %t\n", "Aggressive gc:", out.AggressiveGC)
	fmt.Printf("  %-16s %t\n", "Push tags:", out.PushTags)
	fmt.Printf("  %-16s %t\n", "Ignore backup:", out.IgnoreBackup)

	if len(out.Environment) > 0 {
		fmt.Println()
		fmt.Println(ui.MarkHint + " Overridden by " + ui.Code.Sprint(fmt.Sprint(out.Environment)))
	}
}
