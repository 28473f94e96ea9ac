package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PolarWolf314/scrub/internal/audit"
	"github.com/PolarWolf314/scrub/internal/configs"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/git"
	"github.com/PolarWolf314/scrub/internal/lock"
	"github.com/PolarWolf314/scrub/internal/utils"
)

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusSkipped StepStatus = "skipped"
	StatusFailed  StepStatus = "failed"
	StatusPlanned StepStatus = "planned"
	StatusNotRun  StepStatus = "not-run"
)

// Step names, in pipeline order.
const (
	StepBackup         = "backup"
	StepRewriteHistory = "rewrite-history"
	StepIgnore         = "ignore"
	StepCommit         = "commit"
	StepCleanupRefs    = "cleanup-refs"
	StepGC             = "gc"
	StepVerify         = "verify"
	StepPush           = "push"
	StepPushTags       = "push-tags"
	StepRestore        = "restore"
)

// Step is one stage of the purge pipeline.
type Step struct {
	Name string

	// Destructive steps rewrite or discard history, locally or on the remote.
	Destructive bool

	// Plan describes what Run would do. Shown for dry runs.
	Plan string

	// Skip, when set, is the reason the step will not run at all.
	Skip string

	Run func(ctx context.Context) (StepStatus, string, error)
}

// StepResult records how a step ended.
type StepResult struct {
	Name        string
	Status      StepStatus
	Destructive bool
	Detail      string
	Err         error
	Duration    time.Duration
}

// PurgeOptions configures the purge workflow.
type PurgeOptions struct {
	// Dir is any directory inside the repository. Empty means the working directory.
	Dir string

	// Settings are the resolved configuration values.
	Settings configs.Settings

	// DryRun runs the preflight checks and reports every step as planned.
	DryRun bool

	// NoPush skips the push steps.
	NoPush bool

	// AllowMissing lets the run continue when the secrets file is absent,
	// skipping the backup.
	AllowMissing bool

	// Restore copies the backup back into place once the file is ignored.
	Restore bool

	// Executor runs git commands. Nil uses os/exec.
	Executor git.CommandExecutor

	// OnStepStart is called before each step runs.
	OnStepStart func(step Step)

	// OnStepDone is called with every step result, including planned,
	// skipped and not-run steps.
	OnStepDone func(result StepResult)
}

// PurgeResult contains the outcome of a purge.
type PurgeResult struct {
	RunID    string
	RepoRoot string

	// File is the secrets file relative to the repository root.
	File   string
	Backup string
	Remote string
	DryRun bool

	Steps []StepResult

	// AuditErr is set when the run could not be recorded in the audit log.
	AuditErr error
}

// Completed returns the names of the steps that finished successfully.
func (r *PurgeResult) Completed() []string {
	var names []string
	for _, s := range r.Steps {
		if s.Status == StatusOK {
			names = append(names, s.Name)
		}
	}
	return names
}

// Failed returns the failed step, or nil.
func (r *PurgeResult) Failed() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// Step returns the result for the named step, or nil.
func (r *PurgeResult) Step(name string) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// Purge removes the secrets file from every commit on every ref, ignores it,
// prunes the old objects and force-pushes the result.
//
// Every check that can fail cheaply runs before the first step, so a missing
// file, dirty worktree or unknown remote never leaves history half-rewritten.
// Steps then run in order and the first failure stops the pipeline; the
// remaining steps are reported as not-run and a *errors.StepError is returned
// alongside the result.
//
// Returns ErrGitNotFound, ErrNotGitRepository, ErrAlreadyRunning,
// ErrSecretsFileNotFound, ErrPathOutsideRepo, ErrDirtyWorktree,
// ErrIdentityUnknown or ErrRemoteNotFound from the preflight checks.
func Purge(ctx context.Context, opts PurgeOptions) (*PurgeResult, error) {
	rc, err := openRepo(ctx, opts.Dir, opts.Settings, opts.Executor)
	if err != nil {
		return nil, err
	}

	locker := lock.New(rc.gitDir)
	if err := locker.Acquire(); err != nil {
		return nil, err
	}
	defer func() { _ = locker.Release() }()

	result := &PurgeResult{
		RunID:    uuid.NewString(),
		RepoRoot: rc.root,
		File:     rc.file,
		Backup:   rc.backupAbs,
		Remote:   opts.Settings.Remote,
		DryRun:   opts.DryRun,
	}

	fileExists, err := preflight(ctx, rc, opts)
	if err != nil {
		_ = recordPurge(rc, result, err)
		return nil, err
	}

	run := &purgeRun{
		rc:         rc,
		settings:   opts.Settings,
		opts:       opts,
		fileExists: fileExists,
	}

	var runErr error
	result.Steps, runErr = runSteps(ctx, run.steps(), opts)
	result.AuditErr = recordPurge(rc, result, runErr)

	return result, runErr
}

// preflight checks everything a destructive step depends on. It reports
// whether the secrets file is present.
func preflight(ctx context.Context, rc *repoContext, opts PurgeOptions) (bool, error) {
	fileExists := utils.FileExists(rc.fileAbs)
	if !fileExists && !opts.AllowMissing {
		return false, fmt.Errorf("%w: %s", kerrors.ErrSecretsFileNotFound, rc.file)
	}

	if _, err := rc.ignorePattern(rc.file); err != nil {
		return false, err
	}

	dirty, err := rc.client.HasUncommittedChanges(ctx)
	if err != nil {
		return false, fmt.Errorf("checking working tree: %w", err)
	}
	if dirty {
		return false, kerrors.ErrDirtyWorktree
	}

	// the commit step runs after history is rewritten
	if err := rc.client.CheckIdentity(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("%w: %w", kerrors.ErrIdentityUnknown, err)
	}

	if !opts.NoPush {
		ok, err := rc.history.HasRemote(opts.Settings.Remote)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("%w: %s", kerrors.ErrRemoteNotFound, opts.Settings.Remote)
		}
	}

	return fileExists, nil
}

// runSteps executes steps in order, stopping at the first failure.
func runSteps(ctx context.Context, steps []Step, opts PurgeOptions) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	var failed error

	for _, step := range steps {
		res := StepResult{Name: step.Name, Destructive: step.Destructive}

		switch {
		case failed != nil:
			res.Status = StatusNotRun
		case step.Skip != "":
			res.Status = StatusSkipped
			res.Detail = step.Skip
		case opts.DryRun:
			res.Status = StatusPlanned
			res.Detail = step.Plan
		default:
			if opts.OnStepStart != nil {
				opts.OnStepStart(step)
			}

			start := time.Now()
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				res.Status, res.Detail, res.Err = step.Run(ctx)
			}
			res.Duration = time.Since(start)

			if res.Err != nil {
				res.Status = StatusFailed
				failed = &kerrors.StepError{Step: step.Name, Err: res.Err}
			}
		}

		results = append(results, res)
		if opts.OnStepDone != nil {
			opts.OnStepDone(res)
		}
	}

	return results, failed
}

func recordPurge(rc *repoContext, result *PurgeResult, runErr error) error {
	entry := audit.Entry{
		RunID:     result.RunID,
		User:      utils.Identity(rc.history.UserEmail()),
		Operation: "purge",
		File:      rc.file,
		Backup:    rc.backupAbs,
		Remote:    result.Remote,
		Steps:     result.Completed(),
		Status:    audit.StatusOK,
	}
	if rc.backupRel != "" {
		entry.Backup = rc.backupRel
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		entry.Status = audit.StatusAborted
	case runErr != nil:
		entry.Status = audit.StatusFailed
	case result.DryRun:
		entry.Status = audit.StatusDryRun
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}

	return audit.Log(rc.gitDir, entry)
}
