package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/scrub/internal/configs"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/ui"
	"github.com/PolarWolf314/scrub/internal/utils"
	"github.com/PolarWolf314/scrub/internal/workflows"
)

var (
	purgeDryRun       bool
	purgeYes          bool
	purgeNoPush       bool
	purgeAllowMissing bool
	purgeRestore      bool
	purgeNoPause      bool
)

func init() {
	flags := ScrubCmd.Flags()
	flags.BoolVar(&purgeDryRun, "dry-run", false, "run the checks and show the steps without changing anything")
	flags.BoolVarP(&purgeYes, "yes", "y", false, "skip the confirmation prompt")
	flags.BoolVar(&purgeNoPush, "no-push", false, "rewrite local history only")
	flags.BoolVar(&purgeAllowMissing, "allow-missing", false, "continue without a backup when the file is already gone")
	flags.BoolVar(&purgeRestore, "restore", false, "copy the backup back into place once the file is ignored")
	flags.BoolVar(&purgeNoPause, "no-pause", false, "do not wait for Enter before exiting")
}

func resetPurgeCommandState() {
	purgeDryRun = false
	purgeYes = false
	purgeNoPush = false
	purgeAllowMissing = false
	purgeRestore = false
	purgeNoPause = false
}

func runPurge(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting purge command")
	interactive := isTerminal()
	ctx := cmd.Context()
	// shared so the pause sees input typed after the confirmation
	in := bufio.NewReader(os.Stdin)

	if !purgeNoPause && interactive {
		defer func() {
			_ = utils.WaitForEnter(ctx, in, os.Stdout, "\nPress Enter to exit")
		}()
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		fmt.Println(formatPurgeError(err))
		return reported(err)
	}

	if !purgeDryRun && !purgeYes {
		if !interactive {
			err := kerrors.ErrConfirmationRequired
			fmt.Println(formatPurgeError(err))
			return reported(err)
		}

		fmt.Println(purgeWarning(settings))
		ok, err := utils.Confirm(ctx, in, os.Stdout, "Continue? [y/N]: ")
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println("\n" + formatPurgeError(kerrors.ErrAborted))
				return reported(ctx.Err())
			}
			return Logger.ErrorfAndReturn("failed to read confirmation: %v", err)
		}
		if !ok {
			fmt.Println(formatPurgeError(kerrors.ErrAborted))
			return nil
		}
	}

	message := "Scrubbing " + settings.File + " from history..."
	if purgeDryRun {
		message = "Checking " + settings.File + "..."
	}
	s, cleanup := startSpinner(message, verbose)
	defer cleanup()

	opts := workflows.PurgeOptions{
		Settings:     settings,
		DryRun:       purgeDryRun,
		NoPush:       purgeNoPush,
		AllowMissing: purgeAllowMissing,
		Restore:      purgeRestore,
		OnStepStart: func(step workflows.Step) {
			Logger.Infof("Running step %s", step.Name)
			setSpinnerMessage(s, step.Name+"...")
		},
		OnStepDone: func(r workflows.StepResult) {
			Logger.Debugf("Step %s finished with status %s in %s", r.Name, r.Status, r.Duration)
		},
	}

	result, err := workflows.Purge(ctx, opts)
	if result == nil {
		Logger.Debugf("Purge stopped before the first step: %v", err)
		s.FinalMSG = formatPurgeError(err)
		return reported(err)
	}

	if result.AuditErr != nil {
		Logger.Warnf("Failed to record run in the audit log: %v", result.AuditErr)
	}

	s.FinalMSG = formatPurgeResult(result, err)
	if err != nil {
		return reported(err)
	}

	Logger.Infof("Purge completed successfully")
	return nil
}

func purgeWarning(s configs.Settings) string {
	var b strings.Builder
	b.WriteString(ui.MarkWarning + " " + ui.Danger.Sprint("This rewrites every commit on every branch and tag") + "\n")
	b.WriteString("  File:   " + ui.Path.Sprint(s.File) + "\n")
	b.WriteString("  Backup: " + ui.Path.Sprint(s.BackupPath()) + "\n")
	if purgeNoPush {
		b.WriteString("  Remote: " + ui.Muted.Sprint("not pushed") + "\n")
	} else {
		b.WriteString("  Remote: " + ui.Highlight.Sprint(s.Remote) + " will be force-pushed\n")
	}
	b.WriteString("\n" + ui.MarkHint + " Collaborators will need to re-clone or rebase onto the new history")
	return b.String()
}

func formatPurgeResult(r *workflows.PurgeResult, err error) string {
	var b strings.Builder

	if r.DryRun {
		b.WriteString(ui.Muted.Sprint("dry run") + " Steps for " + ui.Path.Sprint(r.File) + ":\n")
	}
	for _, step := range r.Steps {
		b.WriteString(formatStepLine(step) + "\n")
	}
	b.WriteString("\n")

	switch {
	case err != nil:
		b.WriteString(formatPurgeError(err))
		if failed := r.Failed(); failed != nil && rewroteHistory(r) {
			b.WriteString("\n" + ui.MarkHint + " History was already rewritten; fix the problem and re-run with " +
				ui.Flag.Sprint("--allow-missing") + " if the file is gone")
		}

	case r.DryRun:
		b.WriteString(ui.MarkOK + " All checks passed. Nothing was changed.\n")
		b.WriteString(ui.MarkHint + " Run without " + ui.Flag.Sprint("--dry-run") + " to scrub " + ui.Path.Sprint(r.File))

	default:
		b.WriteString(ui.MarkOK + " " + ui.Path.Sprint(r.File) + " has been removed from history\n")
		if step := r.Step(workflows.StepBackup); step != nil && step.Status == workflows.StatusOK {
			b.WriteString(ui.MarkHint + " Backup kept at " + ui.Path.Sprint(r.Backup) + "\n")
		}
		if step := r.Step(workflows.StepPush); step != nil && step.Status == workflows.StatusOK {
			b.WriteString(ui.MarkHint + " Collaborators must re-clone or rebase onto " + ui.Highlight.Sprint(r.Remote) + "\n")
		}
		b.WriteString(ui.MarkWarning + " Rotate any credentials the file contained; existing clones still have them")
	}

	return b.String()
}

func formatStepLine(r workflows.StepResult) string {
	var mark string
	switch r.Status {
	case workflows.StatusOK:
		mark = ui.MarkOK
	case workflows.StatusFailed:
		mark = ui.MarkFail
	case workflows.StatusPlanned:
		mark = ui.MarkHint
	default:
		mark = ui.MarkSkip
	}

	line := fmt.Sprintf("%s %-16s", mark, r.Name)
	switch {
	case r.Status == workflows.StatusNotRun:
		line += " " + ui.Muted.Sprint("not run")
	case r.Detail != "":
		line += " " + r.Detail
	}
	if r.Destructive && r.Status == workflows.StatusPlanned {
		line += " " + ui.Danger.Sprint("destructive")
	}
	return strings.TrimRight(line, " ")
}

func rewroteHistory(r *workflows.PurgeResult) bool {
	step := r.Step(workflows.StepRewriteHistory)
	return step != nil && step.Status == workflows.StatusOK
}

func formatPurgeError(err error) string {
	if msg, ok := formatCommonError(err); ok {
		return msg
	}

	var stepErr *kerrors.StepError
	if kerrors.As(err, &stepErr) {
		msg := ui.MarkFail + " Step " + ui.Highlight.Sprint(stepErr.Step) + " failed: "
		var gitErr *kerrors.GitError
		if kerrors.As(stepErr.Err, &gitErr) && strings.TrimSpace(gitErr.Output) != "" {
			msg += "git " + gitErr.Operation + " exited with an error\n" +
				ui.Indent(ui.Muted.Sprint(strings.TrimSpace(gitErr.Output)), 2)
		} else {
			msg += stepErr.Err.Error()
		}
		return msg + "\n" + ui.MarkHint + " The steps after it did not run"
	}

	switch {
	case kerrors.Is(err, kerrors.ErrConfirmationRequired):
		return ui.MarkFail + " Refusing to rewrite history without confirmation\n" +
			ui.MarkHint + " Re-run with " + ui.Flag.Sprint("--yes") + " when stdin is not a terminal"

	case kerrors.Is(err, kerrors.ErrAborted):
		return ui.MarkSkip + " Aborted. Nothing was changed."

	case kerrors.Is(err, kerrors.ErrAlreadyRunning):
		return ui.MarkFail + " " + err.Error() + "\n" +
			ui.MarkHint + " Wait for the other run to finish"

	case kerrors.Is(err, kerrors.ErrSecretsFileNotFound):
		return ui.MarkFail + " " + err.Error() + "\n" +
			ui.MarkHint + " Nothing to back up. Re-run with " + ui.Flag.Sprint("--allow-missing") +
			" to scrub it without a backup"

	case kerrors.Is(err, kerrors.ErrDirtyWorktree):
		return ui.MarkFail + " The working tree has uncommitted changes\n" +
			ui.MarkHint + " Commit or stash them first; rewriting history needs a clean tree"

	case kerrors.Is(err, kerrors.ErrIdentityUnknown):
		return ui.MarkFail + " git cannot make the commit that records the ignore change\n" +
			ui.MarkHint + " Set " + ui.Code.Sprint("git config user.name") + " and " +
			ui.Code.Sprint("git config user.email") + ", then re-run"

	case kerrors.Is(err, kerrors.ErrRemoteNotFound):
		return ui.MarkFail + " " + err.Error() + "\n" +
			ui.MarkHint + " Pass " + ui.Flag.Sprint("--remote") + " or " + ui.Flag.Sprint("--no-push")

	case kerrors.Is(err, kerrors.ErrPathStillInHistory):
		return ui.MarkFail + " " + err.Error()

	default:
		return ui.MarkFail + " " + err.Error()
	}
}
