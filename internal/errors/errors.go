package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Preflight errors indicate the run cannot safely start.
var (
	// ErrGitNotFound indicates the git executable is not on PATH.
	ErrGitNotFound = errors.New("git executable not found in PATH")

	// ErrNotGitRepository indicates the working directory is not inside a git repository.
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrDirtyWorktree indicates tracked files have uncommitted changes.
	ErrDirtyWorktree = errors.New("working tree has uncommitted changes")

	// ErrIdentityUnknown indicates git has no author or committer identity to commit with.
	ErrIdentityUnknown = errors.New("git user identity is not configured")

	// ErrRemoteNotFound indicates the push remote is not configured.
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrAlreadyRunning indicates another scrub run holds the repository lock.
	ErrAlreadyRunning = errors.New("another scrub run is already in progress for this repository")

	// ErrConfirmationRequired indicates a destructive run was requested without confirmation
	// and no terminal is available to ask for it.
	ErrConfirmationRequired = errors.New("confirmation required: re-run with --yes")

	// ErrAborted indicates the user declined the confirmation prompt.
	ErrAborted = errors.New("aborted by user")
)

// File errors indicate issues with the files the pipeline reads or writes.
var (
	// ErrSecretsFileNotFound indicates the secrets file does not exist on disk.
	ErrSecretsFileNotFound = errors.New("secrets file not found")

	// ErrPathOutsideRepo indicates a configured path resolves outside the repository.
	ErrPathOutsideRepo = errors.New("path is outside the repository")

	// ErrNoAuditLog indicates no audit log has been written yet.
	ErrNoAuditLog = errors.New("no audit log found")
)

// History errors indicate the rewritten history is not what was expected.
var (
	// ErrPathStillInHistory indicates at least one reachable commit still contains the file.
	ErrPathStillInHistory = errors.New("path still present in history")

	// ErrGitOperationFailed indicates a git command returned a non-zero exit status.
	ErrGitOperationFailed = errors.New("git operation failed")
)

// Config errors indicate invalid settings.
var (
	// ErrInvalidConfig indicates the resolved settings are unusable.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigExists indicates a project config file is already present.
	ErrConfigExists = errors.New("config file already exists")
)

// GitError represents a failed git invocation.
// It captures the subcommand, its arguments, the underlying error and stderr.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Output    string
}

// Error implements the error interface.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a new GitError.
func NewGitError(operation string, args []string, err error, output string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       err,
		Output:    output,
	}
}

// StepError records which pipeline step failed.
type StepError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
