package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/scrub/internal/configs"
	"github.com/PolarWolf314/scrub/internal/git"
	"github.com/PolarWolf314/scrub/internal/ignore"
	"github.com/PolarWolf314/scrub/internal/utils"
)

// StatusOptions configures the status workflow.
type StatusOptions struct {
	// Dir is any directory inside the repository. Empty means the working directory.
	Dir string

	// Settings are the resolved configuration values.
	Settings configs.Settings

	// Executor runs git commands. Nil uses os/exec.
	Executor git.CommandExecutor
}

// StatusResult describes where the secrets file stands.
type StatusResult struct {
	RepoRoot string
	Branch   string

	// File is the secrets file relative to the repository root.
	File       string
	FileExists bool
	Tracked    bool

	// Ignored is git's own answer; IgnoredByFile is whether the configured
	// ignore file has a matching line.
	Ignored       bool
	IgnoredByFile bool
	IgnoreFile    string

	Backup       string
	BackupExists bool

	// Commits are the reachable commits that still contain the file.
	Commits []string

	// OriginalRefs are leftover filter-branch backup refs.
	OriginalRefs []string

	Remote           string
	RemoteConfigured bool

	Dirty bool
}

// Scrubbed reports whether the file is out of history and ignored.
func (r *StatusResult) Scrubbed() bool {
	return len(r.Commits) == 0 && !r.Tracked && r.Ignored && len(r.OriginalRefs) == 0
}

// Status inspects the repository without changing it.
//
// Returns ErrGitNotFound, ErrNotGitRepository or ErrPathOutsideRepo when the
// repository or configured paths cannot be resolved.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	rc, err := openRepo(ctx, opts.Dir, opts.Settings, opts.Executor)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		RepoRoot:     rc.root,
		Branch:       rc.history.CurrentBranch(),
		File:         rc.file,
		FileExists:   utils.FileExists(rc.fileAbs),
		IgnoreFile:   rc.ignoreRel,
		Backup:       rc.backupAbs,
		BackupExists: utils.FileExists(rc.backupAbs),
		Remote:       opts.Settings.Remote,
	}
	if rc.backupRel != "" {
		result.Backup = rc.backupRel
	}

	if result.Tracked, err = rc.client.IsTracked(ctx, rc.file); err != nil {
		return nil, fmt.Errorf("checking index: %w", err)
	}
	result.Ignored = rc.client.IsIgnored(ctx, rc.file)

	if pattern, err := rc.ignorePattern(rc.file); err == nil {
		rules, err := ignore.Load(rc.ignoreAbs)
		if err != nil {
			return nil, err
		}
		result.IgnoredByFile = rules.Matches(pattern)
	}

	if result.Commits, err = rc.history.CommitsContaining(rc.file); err != nil {
		return nil, err
	}

	if result.OriginalRefs, err = rc.client.OriginalRefs(ctx); err != nil {
		return nil, fmt.Errorf("listing backup refs: %w", err)
	}

	if result.RemoteConfigured, err = rc.history.HasRemote(opts.Settings.Remote); err != nil {
		return nil, err
	}

	if result.Dirty, err = rc.client.HasUncommittedChanges(ctx); err != nil {
		return nil, fmt.Errorf("checking working tree: %w", err)
	}

	return result, nil
}
