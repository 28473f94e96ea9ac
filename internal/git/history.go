package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

// History provides read-only access to a repository's commit graph.
type History struct {
	repo *gogit.Repository
	root string
}

// OpenHistory opens the repository containing path, searching parent
// directories for the .git directory.
func OpenHistory(path string) (*History, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", path, kerrors.ErrNotGitRepository)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	h := &History{repo: repo}
	if wt, err := repo.Worktree(); err == nil {
		h.root = filepath.Clean(wt.Filesystem.Root())
	}
	return h, nil
}

// Root returns the working tree root, or "" for a bare repository.
func (h *History) Root() string {
	return h.root
}

// HasRemote reports whether a remote with the given name is configured.
func (h *History) HasRemote(name string) (bool, error) {
	_, err := h.repo.Remote(name)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up remote %s: %w", name, err)
	}
	return true, nil
}

// CurrentBranch returns the short name of the checked-out branch, or "" when
// HEAD is detached or unborn.
func (h *History) CurrentBranch() string {
	head, err := h.repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

// UserEmail returns user.email from the local and global git config.
func (h *History) UserEmail() string {
	cfg, err := h.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return ""
	}
	return cfg.User.Email
}

// CommitsContaining returns the hashes of every commit reachable from any
// ref whose tree contains path. path is relative to the repository root.
func (h *History) CommitsContaining(path string) ([]string, error) {
	path = filepath.ToSlash(filepath.Clean(path))

	iter, err := h.repo.Log(&gogit.LogOptions{All: true})
	if err != nil {
		// an empty repository has nothing to search
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("walking history: %w", err)
	}
	defer iter.Close()

	var found []string
	err = iter.ForEach(func(c *object.Commit) error {
		_, err := c.File(path)
		switch {
		case err == nil:
			found = append(found, c.Hash.String())
		case errors.Is(err, object.ErrFileNotFound):
		default:
			return fmt.Errorf("reading tree of %s: %w", c.Hash, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
