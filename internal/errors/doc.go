// Package errors provides typed error values for scrub.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Preflight errors: the run cannot start (ErrGitNotFound, ErrNotGitRepository,
//     ErrDirtyWorktree, ErrIdentityUnknown, ErrRemoteNotFound, ErrAlreadyRunning)
//   - File errors: problems with the secrets or ignore file (ErrSecretsFileNotFound,
//     ErrPathOutsideRepo)
//   - History errors: the rewrite did not do what it should (ErrPathStillInHistory)
//   - Config errors: invalid settings (ErrInvalidConfig)
//
// # Typed Errors
//
// GitError carries the git subcommand, its arguments and captured stderr.
// StepError names the pipeline step that failed and wraps the cause:
//
//	var stepErr *errors.StepError
//	if errors.As(err, &stepErr) {
//	    fmt.Printf("step %s failed\n", stepErr.Step)
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("copying %s: %w", path, errors.ErrSecretsFileNotFound)
package errors
