package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/scrub/internal/audit"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/ui"
	"github.com/PolarWolf314/scrub/internal/utils"
	"github.com/PolarWolf314/scrub/internal/workflows"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logStatus    string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logStatus, "status", "", "filter by status (ok, failed, dry-run, aborted)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logStatus = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the runs recorded in .git/scrub/audit.jsonl.

Every purge, dry run and verify is recorded with the user, the steps that
completed and the final status. The log lives inside the git directory, so
it is never committed or pushed.

Examples:
  scrub log                      # View full log
  scrub log -n 10                # Last 10 entries
  scrub log --reverse            # Most recent first
  scrub log --operation purge    # Filter by operation
  scrub log --status failed      # Only failed runs
  scrub log --json               # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading audit log...", verbose)
	defer cleanup()

	opts := workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		Status:     logStatus,
	}

	result, err := workflows.Log(cmd.Context(), opts)
	if err != nil {
		spinner.FinalMSG = formatLogError(err)
		if isLogUnexpectedError(err) {
			return reported(err)
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	spinner.FinalMSG = ""
	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		return outputLogJSON(result.Entries)
	}

	if logOneline {
		outputLogOneline(result.Entries)
		return nil
	}

	outputLogDefault(result.Entries)
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	if msg, ok := formatCommonError(err); ok {
		return msg
	}

	switch {
	case kerrors.Is(err, kerrors.ErrNoAuditLog):
		return ui.Info.Sprint("ℹ") + " No audit log found. Runs are recorded once " + ui.Code.Sprint("scrub") + " has been used here."
	default:
		return ui.MarkFail + " Failed to read audit log: " + err.Error()
	}
}

func isLogUnexpectedError(err error) bool {
	return !kerrors.Is(err, kerrors.ErrNoAuditLog)
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(entries []audit.Entry) {
	for _, e := range entries {
		fmt.Printf("%s %s %s %s %s\n", utils.ShortHash(e.RunID), workflows.FormatDateTime(e.Timestamp), e.Operation, e.Status, e.File)
	}
}

func outputLogDefault(entries []audit.Entry) {
	for _, e := range entries {
		datetime := workflows.FormatDateTime(e.Timestamp)
		details := workflows.FormatDetails(e)
		fmt.Printf("%-19s  %-25s  %-7s  %-8s  %s\n", datetime, e.User, e.Operation, statusLabel(e.Status), details)
	}
}

func statusLabel(status string) string {
	switch status {
	case audit.StatusOK:
		return ui.Success.Sprint(status)
	case audit.StatusFailed, audit.StatusAborted:
		return ui.Error.Sprint(status)
	default:
		return ui.Muted.Sprint(status)
	}
}

