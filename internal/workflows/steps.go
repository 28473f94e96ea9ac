package workflows

import (
	"context"
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/PolarWolf314/scrub/internal/configs"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/git"
	"github.com/PolarWolf314/scrub/internal/ignore"
	"github.com/PolarWolf314/scrub/internal/utils"
)

// purgeRun carries state between the steps of one purge.
type purgeRun struct {
	rc       *repoContext
	settings configs.Settings
	opts     PurgeOptions

	fileExists bool
	backedUp   bool
}

func (p *purgeRun) steps() []Step {
	s := p.settings

	steps := []Step{
		{
			Name: StepBackup,
			Plan: fmt.Sprintf("copy %s to %s", p.rc.file, p.backupName()),
			Run:  p.backup,
		},
		{
			Name:        StepRewriteHistory,
			Destructive: true,
			Plan:        gitCommand(git.RemovePathArgs(p.rc.file)),
			Run:         p.rewriteHistory,
		},
		{
			Name: StepIgnore,
			Plan: fmt.Sprintf("append %s to %s", strings.Join(p.ignorePatterns(), ", "), p.rc.ignoreRel),
			Run:  p.ignore,
		},
		{
			Name: StepCommit,
			Plan: gitCommand([]string{"commit", "-m", s.Message()}),
			Run:  p.commit,
		},
		{
			Name:        StepCleanupRefs,
			Destructive: true,
			Plan:        "git update-ref -d <each ref under refs/original/>",
			Run:         p.cleanupRefs,
		},
		{
			Name:        StepGC,
			Destructive: true,
			Plan:        "git reflog expire --expire=now --all && " + gitCommand(git.GCArgs(s.AggressiveGC)),
			Run:         p.gc,
		},
		{
			Name: StepVerify,
			Plan: fmt.Sprintf("check that no reachable commit contains %s", p.rc.file),
			Run:  p.verify,
		},
		{
			Name:        StepPush,
			Destructive: true,
			Plan:        gitCommand(git.PushAllArgs(s.Remote)),
			Run:         p.push,
		},
		{
			Name:        StepPushTags,
			Destructive: true,
			Plan:        gitCommand(git.PushTagsArgs(s.Remote)),
			Run:         p.pushTags,
		},
		{
			Name: StepRestore,
			Plan: fmt.Sprintf("copy %s back to %s", p.backupName(), p.rc.file),
			Run:  p.restore,
		},
	}

	for i := range steps {
		steps[i].Skip = p.skipReason(steps[i].Name)
	}
	return steps
}

// skipReason returns why a step is switched off by the options, or "".
func (p *purgeRun) skipReason(name string) string {
	switch name {
	case StepBackup:
		if !p.fileExists {
			return p.rc.file + " not present"
		}
	case StepPush:
		if p.opts.NoPush {
			return "disabled with --no-push"
		}
	case StepPushTags:
		if p.opts.NoPush {
			return "disabled with --no-push"
		}
		if !p.settings.PushTags {
			return "not requested"
		}
	case StepRestore:
		if !p.opts.Restore {
			return "not requested"
		}
		if !p.fileExists {
			return "no backup taken"
		}
	}
	return ""
}

func (p *purgeRun) backup(ctx context.Context) (StepStatus, string, error) {
	if err := utils.CopyFile(p.rc.fileAbs, p.rc.backupAbs); err != nil {
		return StatusFailed, "", fmt.Errorf("backing up %s: %w", p.rc.file, err)
	}
	p.backedUp = true
	return StatusOK, fmt.Sprintf("copied %s to %s", p.rc.file, p.backupName()), nil
}

func (p *purgeRun) rewriteHistory(ctx context.Context) (StepStatus, string, error) {
	commits, countErr := p.rc.history.CommitsContaining(p.rc.file)
	if countErr == nil && len(commits) == 0 {
		return StatusSkipped, p.rc.file + " is not in history", nil
	}

	if err := p.rc.client.RemovePathFromHistory(ctx, p.rc.file); err != nil {
		return StatusFailed, "", err
	}

	if countErr != nil {
		return StatusOK, "rewrote all refs", nil
	}
	return StatusOK, fmt.Sprintf("removed from %s", utils.Pluralize(len(commits), "commit")), nil
}

func (p *purgeRun) ignore(ctx context.Context) (StepStatus, string, error) {
	added, err := ignore.Ensure(p.rc.ignoreAbs, p.ignorePatterns()...)
	if err != nil {
		return StatusFailed, "", err
	}
	if len(added) == 0 {
		return StatusSkipped, fmt.Sprintf("already ignored by %s", p.rc.ignoreRel), nil
	}
	return StatusOK, fmt.Sprintf("appended %s to %s", strings.Join(added, ", "), p.rc.ignoreRel), nil
}

// ignorePatterns returns the paths to ignore, relative to the ignore file.
func (p *purgeRun) ignorePatterns() []string {
	pattern, err := p.rc.ignorePattern(p.rc.file)
	if err != nil {
		// rejected during preflight
		pattern = p.rc.file
	}
	patterns := []string{pattern}

	if p.settings.IgnoreBackup && p.rc.backupRel != "" {
		if backup, err := p.rc.ignorePattern(p.rc.backupRel); err == nil {
			patterns = append(patterns, backup)
		}
	}
	return patterns
}

func (p *purgeRun) commit(ctx context.Context) (StepStatus, string, error) {
	if err := p.rc.client.Add(ctx, p.rc.ignoreRel); err != nil {
		return StatusFailed, "", err
	}

	staged, err := p.rc.client.HasStagedChanges(ctx)
	if err != nil {
		return StatusFailed, "", err
	}
	if !staged {
		return StatusSkipped, "nothing to commit", nil
	}

	message := p.settings.Message()
	if err := p.rc.client.Commit(ctx, message); err != nil {
		return StatusFailed, "", err
	}

	head, err := p.rc.client.HeadCommit(ctx)
	if err != nil {
		return StatusOK, message, nil
	}
	return StatusOK, fmt.Sprintf("%s %s", utils.ShortHash(head), message), nil
}

func (p *purgeRun) cleanupRefs(ctx context.Context) (StepStatus, string, error) {
	refs, err := p.rc.client.OriginalRefs(ctx)
	if err != nil {
		return StatusFailed, "", err
	}
	if len(refs) == 0 {
		return StatusSkipped, "no refs under refs/original/", nil
	}

	for _, ref := range refs {
		if err := p.rc.client.DeleteRef(ctx, ref); err != nil {
			return StatusFailed, "", err
		}
	}
	return StatusOK, fmt.Sprintf("deleted %s", utils.Pluralize(len(refs), "ref")), nil
}

func (p *purgeRun) gc(ctx context.Context) (StepStatus, string, error) {
	if err := p.rc.client.ExpireReflog(ctx); err != nil {
		return StatusFailed, "", err
	}
	if err := p.rc.client.GC(ctx, p.settings.AggressiveGC); err != nil {
		return StatusFailed, "", err
	}
	return StatusOK, "expired reflog and pruned unreachable objects", nil
}

func (p *purgeRun) verify(ctx context.Context) (StepStatus, string, error) {
	commits, err := findInHistory(p.rc.root, p.rc.file)
	if err != nil {
		return StatusFailed, "", err
	}
	if len(commits) > 0 {
		return StatusFailed, "", stillInHistoryError(p.rc.file, commits)
	}
	return StatusOK, fmt.Sprintf("no reachable commit contains %s", p.rc.file), nil
}

func (p *purgeRun) push(ctx context.Context) (StepStatus, string, error) {
	if err := p.rc.client.PushAll(ctx, p.settings.Remote); err != nil {
		return StatusFailed, "", err
	}
	return StatusOK, fmt.Sprintf("force-pushed all branches to %s", p.settings.Remote), nil
}

func (p *purgeRun) pushTags(ctx context.Context) (StepStatus, string, error) {
	if err := p.rc.client.PushTags(ctx, p.settings.Remote); err != nil {
		return StatusFailed, "", err
	}
	return StatusOK, fmt.Sprintf("force-pushed tags to %s", p.settings.Remote), nil
}

func (p *purgeRun) restore(ctx context.Context) (StepStatus, string, error) {
	if !p.backedUp {
		return StatusSkipped, "no backup taken", nil
	}
	if utils.FileExists(p.rc.fileAbs) {
		return StatusSkipped, p.rc.file + " already present", nil
	}
	if err := utils.CopyFile(p.rc.backupAbs, p.rc.fileAbs); err != nil {
		return StatusFailed, "", fmt.Errorf("restoring %s: %w", p.rc.file, err)
	}
	return StatusOK, fmt.Sprintf("copied %s back to %s", p.backupName(), p.rc.file), nil
}

// backupName is the backup path as shown to the user.
func (p *purgeRun) backupName() string {
	if p.rc.backupRel != "" {
		return p.rc.backupRel
	}
	return p.rc.backupAbs
}

// findInHistory reopens the repository so refs rewritten by other processes
// are seen, and returns the commits containing file.
func findInHistory(root, file string) ([]string, error) {
	history, err := git.OpenHistory(root)
	if err != nil {
		return nil, err
	}
	return history.CommitsContaining(file)
}

func stillInHistoryError(file string, commits []string) error {
	return fmt.Errorf("%w: %s is in %s (first %s)",
		kerrors.ErrPathStillInHistory, file, utils.Pluralize(len(commits), "commit"), utils.ShortHash(commits[0]))
}

func gitCommand(args []string) string {
	return "git " + shellescape.QuoteCommand(args)
}
