package workflows

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/scrub/internal/configs"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/git"
	"github.com/PolarWolf314/scrub/internal/utils"
)

// repoContext is the resolved view of the repository a workflow runs against.
type repoContext struct {
	root    string
	gitDir  string
	client  *git.Client
	history *git.History

	// file is the secrets file relative to root, in slash form.
	file    string
	fileAbs string

	backupAbs string
	// backupRel is empty when the backup lives outside the repository.
	backupRel string

	ignoreAbs string
	ignoreRel string
}

// openRepo locates the repository containing dir and resolves the configured
// paths against it.
func openRepo(ctx context.Context, dir string, settings configs.Settings, executor git.CommandExecutor) (*repoContext, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := git.CheckAvailable(); err != nil {
		return nil, err
	}

	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	if executor == nil {
		executor = git.NewExecExecutor()
	}

	root, err := git.NewClientWithExecutor(dir, executor).TopLevel(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNotGitRepository, dir)
	}

	rc := &repoContext{
		root:   root,
		client: git.NewClientWithExecutor(root, executor),
	}

	if rc.gitDir, err = rc.client.GitDir(ctx); err != nil {
		return nil, fmt.Errorf("locating git dir: %w", err)
	}

	if rc.history, err = git.OpenHistory(root); err != nil {
		return nil, err
	}

	if rc.file, err = utils.RelativeToRepo(root, settings.File); err != nil {
		return nil, err
	}
	rc.fileAbs = utils.ResolvePath(root, filepath.FromSlash(rc.file))

	rc.backupAbs = utils.ResolvePath(root, settings.BackupPath())
	if rel, err := utils.RelativeToRepo(root, settings.BackupPath()); err == nil {
		rc.backupRel = rel
	}

	if rc.ignoreRel, err = utils.RelativeToRepo(root, settings.IgnoreFile); err != nil {
		return nil, err
	}
	rc.ignoreAbs = utils.ResolvePath(root, filepath.FromSlash(rc.ignoreRel))

	return rc, nil
}

// ignorePattern returns rel as a path relative to the ignore file's
// directory, which is how ignore rules are matched.
func (rc *repoContext) ignorePattern(rel string) (string, error) {
	dir := path.Dir(rc.ignoreRel)
	if dir == "." {
		return rel, nil
	}
	if !strings.HasPrefix(rel, dir+"/") {
		return "", fmt.Errorf("%w: %s is not below %s", kerrors.ErrInvalidConfig, rel, rc.ignoreRel)
	}
	return strings.TrimPrefix(rel, dir+"/"), nil
}
