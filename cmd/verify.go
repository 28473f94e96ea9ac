package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/ui"
	"github.com/PolarWolf314/scrub/internal/utils"
	"github.com/PolarWolf314/scrub/internal/workflows"
)

var verifyQuiet bool

func init() {
	verifyCmd.Flags().BoolVarP(&verifyQuiet, "quiet", "q", false, "only set the exit code")
}

func resetVerifyCommandState() {
	verifyQuiet = false
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that no commit still contains the secrets file",
	Long: `Walks every commit reachable from any branch, tag or other ref and checks
that none of them contains the secrets file. Exits with status 1 when one does.

The result is recorded in the audit log.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting verify command")

		settings, err := resolveSettings(cmd)
		if err != nil {
			return reportVerifyError(err)
		}

		s, cleanup := startSpinner("Checking history for "+settings.File+"...", verbose || verifyQuiet)
		defer cleanup()

		result, err := workflows.Verify(cmd.Context(), workflows.VerifyOptions{Settings: settings})
		if result != nil && result.AuditErr != nil {
			Logger.Warnf("Failed to record check in the audit log: %v", result.AuditErr)
		}

		switch {
		case err == nil:
			if !verifyQuiet {
				s.FinalMSG = ui.MarkOK + " No reachable commit contains " + ui.Path.Sprint(result.File)
			}
			return nil

		case kerrors.Is(err, kerrors.ErrPathStillInHistory):
			if !verifyQuiet {
				s.FinalMSG = joinLines(
					ui.MarkFail+" "+ui.Path.Sprint(result.File)+" is still in "+
						utils.Pluralize(len(result.Commits), "commit")+": "+shortList(shortHashes(result.Commits), 5),
					ui.MarkHint+" Run "+ui.Code.Sprint("scrub")+" to remove it",
				)
			}
			return reported(err)

		default:
			if !verifyQuiet {
				s.FinalMSG = formatVerifyError(err)
			}
			return reported(err)
		}
	},
}

func reportVerifyError(err error) error {
	if !verifyQuiet {
		fmt.Println(formatVerifyError(err))
	}
	return reported(err)
}

func formatVerifyError(err error) string {
	if msg, ok := formatCommonError(err); ok {
		return msg
	}
	return ui.MarkFail + " Failed to check history: " + err.Error()
}
