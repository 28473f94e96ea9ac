package workflows

import (
	"context"

	"github.com/google/uuid"

	"github.com/PolarWolf314/scrub/internal/audit"
	"github.com/PolarWolf314/scrub/internal/configs"
	"github.com/PolarWolf314/scrub/internal/git"
	"github.com/PolarWolf314/scrub/internal/utils"
)

// VerifyOptions configures the verify workflow.
type VerifyOptions struct {
	// Dir is any directory inside the repository. Empty means the working directory.
	Dir string

	// Settings are the resolved configuration values.
	Settings configs.Settings

	// Executor runs git commands. Nil uses os/exec.
	Executor git.CommandExecutor
}

// VerifyResult contains the outcome of a history check.
type VerifyResult struct {
	RepoRoot string
	File     string

	// Commits are the reachable commits that still contain the file.
	Commits []string

	// AuditErr is set when the check could not be recorded in the audit log.
	AuditErr error
}

// Verify walks every commit reachable from any ref and checks that none of
// them contains the secrets file.
//
// Returns ErrPathStillInHistory, together with the result, when it does.
func Verify(ctx context.Context, opts VerifyOptions) (*VerifyResult, error) {
	rc, err := openRepo(ctx, opts.Dir, opts.Settings, opts.Executor)
	if err != nil {
		return nil, err
	}

	commits, err := rc.history.CommitsContaining(rc.file)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		RepoRoot: rc.root,
		File:     rc.file,
		Commits:  commits,
	}

	entry := audit.Entry{
		RunID:     uuid.NewString(),
		User:      utils.Identity(rc.history.UserEmail()),
		Operation: "verify",
		File:      rc.file,
		Status:    audit.StatusOK,
	}

	var verifyErr error
	if len(commits) > 0 {
		verifyErr = stillInHistoryError(rc.file, commits)
		entry.Status = audit.StatusFailed
		entry.Error = verifyErr.Error()
	}
	result.AuditErr = audit.Log(rc.gitDir, entry)

	return result, verifyErr
}
