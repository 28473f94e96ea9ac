package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/scrub/internal/configs"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/git"
	"github.com/PolarWolf314/scrub/internal/ui"
	"github.com/PolarWolf314/scrub/internal/utils"
)

// isTerminal reports whether stdin is interactive. Tests replace it.
var isTerminal = utils.IsTerminal

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// setSpinnerMessage swaps the suffix of a running spinner.
func setSpinnerMessage(s *spinner.Spinner, message string) {
	s.Lock()
	s.Suffix = " " + message
	s.Unlock()
}

// reportedError marks an error whose message has already been shown to the
// user. main only sets the exit code for these.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func reported(err error) error {
	return &reportedError{err: err}
}

// IsReported returns true if the error was already printed by a command.
func IsReported(err error) bool {
	var r *reportedError
	return kerrors.As(err, &r)
}

// repoRoot finds the top of the enclosing work tree, falling back to the
// working directory so that callers can still report a useful error.
func repoRoot() string {
	history, err := git.OpenHistory(".")
	if err != nil {
		Logger.Debugf("No repository found from working directory: %v", err)
		return "."
	}
	return history.Root()
}

// resolveSettings merges the project file, the environment and any flags
// the user set on the command line.
func resolveSettings(cmd *cobra.Command) (configs.Settings, error) {
	root := repoRoot()
	Logger.Debugf("Resolving settings from %s", configs.ProjectConfigPath(root))

	settings, err := configs.Resolve(root, os.LookupEnv)
	if err != nil {
		return configs.Settings{}, err
	}
	applySettingsFlags(cmd, &settings)

	Logger.Debugf("Resolved settings: %+v", settings)
	return settings, nil
}

func applySettingsFlags(cmd *cobra.Command, s *configs.Settings) {
	flags := cmd.Flags()
	if flags.Changed("file") {
		s.File = fileFlag
	}
	if flags.Changed("backup") {
		s.Backup = backupFlag
	}
	if flags.Changed("ignore-file") {
		s.IgnoreFile = ignoreFileFlag
	}
	if flags.Changed("remote") {
		s.Remote = remoteFlag
	}
	if flags.Changed("message") {
		s.CommitMessage = messageFlag
	}
	if flags.Changed("aggressive") {
		s.AggressiveGC = aggressiveFlag
	}
	if flags.Changed("push-tags") {
		s.PushTags = pushTagsFlag
	}
	if flags.Changed("ignore-backup") {
		s.IgnoreBackup = ignoreBackupFlag
	}
}

// formatCommonError renders the errors every repository command can hit.
// ok is false when err is not one of them.
func formatCommonError(err error) (string, bool) {
	switch {
	case kerrors.Is(err, kerrors.ErrGitNotFound):
		return ui.MarkFail + " git was not found on PATH\n" +
			ui.MarkHint + " Install git and try again", true

	case kerrors.Is(err, kerrors.ErrNotGitRepository):
		return ui.MarkFail + " Not inside a git repository\n" +
			ui.MarkHint + " Run scrub from the repository that contains the secrets file", true

	case kerrors.Is(err, kerrors.ErrInvalidConfig):
		return ui.MarkFail + " " + err.Error() + "\n" +
			ui.MarkHint + " Check " + ui.Path.Sprint(configs.ProjectConfigFile) + ", the " +
			ui.Code.Sprint(configs.EnvPrefix+"*") + " variables and the flags you passed", true

	case kerrors.Is(err, kerrors.ErrPathOutsideRepo):
		return ui.MarkFail + " " + err.Error() + "\n" +
			ui.MarkHint + " The secrets file, backup and ignore file must all be inside the repository", true
	}
	return "", false
}

// shortList renders up to max items, followed by a count of the rest.
func shortList(items []string, max int) string {
	if len(items) <= max {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:max], ", ") + fmt.Sprintf(" and %d more", len(items)-max)
}
