package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/scrub/internal/ui"
	"github.com/PolarWolf314/scrub/internal/utils"
	"github.com/PolarWolf314/scrub/internal/workflows"
)

var statusJSONOutput bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSONOutput, "json", false, "output in JSON format")
}

func resetStatusCommandState() {
	statusJSONOutput = false
}

// StatusOutput is the JSON form of the status report.
type StatusOutput struct {
	Repository   string   `json:"repository"`
	Branch       string   `json:"branch,omitempty"`
	File         string   `json:"file"`
	Exists       bool     `json:"exists"`
	Tracked      bool     `json:"tracked"`
	Ignored      bool     `json:"ignored"`
	IgnoreFile   string   `json:"ignore_file"`
	InIgnoreFile bool     `json:"in_ignore_file"`
	Backup       string   `json:"backup"`
	BackupExists bool     `json:"backup_exists"`
	Commits      []string `json:"commits"`
	OriginalRefs []string `json:"original_refs"`
	Remote       string   `json:"remote"`
	RemoteExists bool     `json:"remote_exists"`
	Dirty        bool     `json:"dirty"`
	Scrubbed     bool     `json:"scrubbed"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the secrets file stands",
	Long: `Reports whether the secrets file is on disk, tracked, ignored and still
present in history, along with the backup, leftover refs/original refs and
the configured remote. Nothing is changed.

Use --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		settings, err := resolveSettings(cmd)
		if err != nil {
			return reportStatusError(err)
		}

		result, err := workflows.Status(cmd.Context(), workflows.StatusOptions{Settings: settings})
		if err != nil {
			return reportStatusError(err)
		}
		Logger.Debugf("Status: %+v", result)

		if statusJSONOutput {
			return outputStatusJSON(result)
		}

		printStatus(result)
		return nil
	},
}

func reportStatusError(err error) error {
	msg, ok := formatCommonError(err)
	if !ok {
		return Logger.ErrorfAndReturn("failed to read status: %v", err)
	}
	if statusJSONOutput {
		out, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Println(string(out))
	} else {
		fmt.Println(msg)
	}
	return reported(err)
}

func outputStatusJSON(r *workflows.StatusResult) error {
	out := StatusOutput{
		Repository:   r.RepoRoot,
		Branch:       r.Branch,
		File:         r.File,
		Exists:       r.FileExists,
		Tracked:      r.Tracked,
		Ignored:      r.Ignored,
		IgnoreFile:   r.IgnoreFile,
		InIgnoreFile: r.IgnoredByFile,
		Backup:       r.Backup,
		BackupExists: r.BackupExists,
		Commits:      r.Commits,
		OriginalRefs: r.OriginalRefs,
		Remote:       r.Remote,
		RemoteExists: r.RemoteConfigured,
		Dirty:        r.Dirty,
		Scrubbed:     r.Scrubbed(),
	}
	if out.Commits == nil {
		out.Commits = []string{}
	}
	if out.OriginalRefs == nil {
		out.OriginalRefs = []string{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printStatus(r *workflows.StatusResult) {
	fmt.Printf("Repository: %s", ui.Path.Sprint(r.RepoRoot))
	if r.Branch != "" {
		fmt.Printf(" %s", ui.Muted.Sprint(r.Branch))
	}
	fmt.Println()
	fmt.Println()

	check := func(ok bool, good, bad string) {
		if ok {
			fmt.Println("  " + ui.MarkOK + " " + good)
		} else {
			fmt.Println("  " + ui.MarkFail + " " + bad)
		}
	}

	file := ui.Path.Sprint(r.File)
	check(len(r.Commits) == 0, "not in history",
		fmt.Sprintf("in %s: %s", utils.Pluralize(len(r.Commits), "commit"), shortList(shortHashes(r.Commits), 5)))
	check(!r.Tracked, "not tracked", "tracked in the index")
	check(r.Ignored, "ignored by git", "not ignored by git")
	check(r.IgnoredByFile, "listed in "+ui.Path.Sprint(r.IgnoreFile), "not listed in "+ui.Path.Sprint(r.IgnoreFile))
	check(len(r.OriginalRefs) == 0, "no refs/original backup refs",
		fmt.Sprintf("%s left under refs/original", utils.Pluralize(len(r.OriginalRefs), "ref")))

	fmt.Println()
	fmt.Printf("  %-8s %s %s\n", "File:", file, presence(r.FileExists, "on disk", "missing"))
	fmt.Printf("  %-8s %s %s\n", "Backup:", ui.Path.Sprint(r.Backup), presence(r.BackupExists, "present", "missing"))
	fmt.Printf("  %-8s %s %s\n", "Remote:", ui.Highlight.Sprint(r.Remote), presence(r.RemoteConfigured, "configured", "not configured"))
	if r.Dirty {
		fmt.Println()
		fmt.Println(ui.MarkWarning + " The working tree has uncommitted changes")
	}

	fmt.Println()
	if r.Scrubbed() {
		fmt.Println(ui.MarkOK + " " + file + " has been scrubbed")
		return
	}
	fmt.Println(ui.MarkHint + " Run " + ui.Code.Sprint("scrub --dry-run") + " to see what a purge would do")
}

func presence(ok bool, yes, no string) string {
	if ok {
		return ui.Muted.Sprint(yes)
	}
	return ui.Muted.Sprint(no)
}

func shortHashes(hashes []string) []string {
	short := make([]string, len(hashes))
	for i, h := range hashes {
		short[i] = utils.ShortHash(h)
	}
	return short
}

// joinLines is a small helper for building multi-line final messages.
func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}
