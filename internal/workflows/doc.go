// Package workflows provides high-level orchestration for scrub commands.
//
// Workflows coordinate the git, ignore, configs, lock and audit packages to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, prompts and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Locating the repository and resolving configured paths
//   - Validating prerequisites before anything is changed
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Purge: Removes the secrets file from history and force-pushes
//   - Status: Reports where the secrets file stands
//   - Verify: Checks that no reachable commit contains the file
//   - Log: Reads the audit trail
//
// # The Purge Pipeline
//
// Purge runs a fixed list of typed steps. Each step reports ok, skipped or
// failed; the first failure stops the run and every later step is reported
// as not-run. Dry runs report each step as planned together with the command
// it would run.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Purge(ctx, opts)
//	if errors.Is(err, kerrors.ErrDirtyWorktree) {
//	    // Ask the user to commit or stash first
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it stops the running git process and aborts the pipeline.
package workflows
