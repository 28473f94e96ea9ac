package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

// LookPath finds the git executable. Tests may replace it.
var LookPath = exec.LookPath

// Client runs git commands against a single repository.
type Client struct {
	repoPath string
	executor CommandExecutor
	env      []string
}

// NewClient creates a Client that shells out to git through os/exec.
func NewClient(repoPath string) *Client {
	return NewClientWithExecutor(repoPath, NewExecExecutor())
}

// NewClientWithExecutor creates a Client with a custom executor.
func NewClientWithExecutor(repoPath string, executor CommandExecutor) *Client {
	return &Client{
		repoPath: repoPath,
		executor: executor,
		// Paths are file names, never globs. filter-branch passes the
		// environment on to the git rm in its index filter.
		env: []string{"FILTER_BRANCH_SQUELCH_WARNING=1", "GIT_LITERAL_PATHSPECS=1"},
	}
}

// CheckAvailable verifies git is on PATH.
func CheckAvailable() error {
	if _, err := LookPath("git"); err != nil {
		return kerrors.ErrGitNotFound
	}
	return nil
}

// TopLevel returns the absolute path of the working tree root.
func (c *Client) TopLevel(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.Clean(strings.TrimSpace(out)), nil
}

// GitDir returns the absolute path of the repository's git directory.
func (c *Client) GitDir(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return filepath.Clean(strings.TrimSpace(out)), nil
}

// HasUncommittedChanges reports whether tracked files differ from HEAD.
// Untracked files are ignored since they do not block a history rewrite.
func (c *Client) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, err := c.output(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// IsTracked reports whether path is in the index.
func (c *Client) IsTracked(ctx context.Context, path string) (bool, error) {
	out, err := c.output(ctx, "ls-files", "--", path)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// IsIgnored reports whether path is excluded by any ignore rule.
func (c *Client) IsIgnored(ctx context.Context, path string) bool {
	// check-ignore exits 1 when the path is not ignored
	return c.run(ctx, "check-ignore", "-q", "--no-index", "--", path) == nil
}

// RemovePathArgs returns the filter-branch arguments that drop path from
// every commit on every ref, pruning commits left empty.
func RemovePathArgs(path string) []string {
	indexFilter := "git rm --cached --ignore-unmatch --quiet -- " + shellescape.Quote(path)
	return []string{
		"filter-branch", "--force",
		"--index-filter", indexFilter,
		"--prune-empty",
		"--tag-name-filter", "cat",
		"--", "--all",
	}
}

// RemovePathFromHistory rewrites all refs so that no commit contains path.
func (c *Client) RemovePathFromHistory(ctx context.Context, path string) error {
	return c.run(ctx, RemovePathArgs(path)...)
}

// Add stages the given paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	return c.run(ctx, append([]string{"add", "--"}, paths...)...)
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges(ctx context.Context) (bool, error) {
	err := c.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	if exitCode(err) == 1 {
		return true, nil
	}
	return false, err
}

// Commit records the staged changes.
func (c *Client) Commit(ctx context.Context, message string) error {
	return c.run(ctx, "commit", "-m", message)
}

// CheckIdentity fails when git cannot build the author and committer
// identity a commit needs.
func (c *Client) CheckIdentity(ctx context.Context) error {
	for _, v := range []string{"GIT_AUTHOR_IDENT", "GIT_COMMITTER_IDENT"} {
		if _, err := c.output(ctx, "var", v); err != nil {
			return err
		}
	}
	return nil
}

// HeadCommit returns the full hash of HEAD.
func (c *Client) HeadCommit(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// OriginalRefs lists the backup refs filter-branch leaves under refs/original/.
func (c *Client) OriginalRefs(ctx context.Context) ([]string, error) {
	out, err := c.output(ctx, "for-each-ref", "--format=%(refname)", "refs/original/")
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, line := range strings.Split(out, "\n") {
		if ref := strings.TrimSpace(line); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// DeleteRef removes a single ref.
func (c *Client) DeleteRef(ctx context.Context, ref string) error {
	return c.run(ctx, "update-ref", "-d", ref)
}

// ExpireReflog drops every reflog entry on every ref.
func (c *Client) ExpireReflog(ctx context.Context) error {
	return c.run(ctx, "reflog", "expire", "--expire=now", "--all")
}

// GCArgs returns the gc arguments used to prune unreachable objects.
func GCArgs(aggressive bool) []string {
	args := []string{"gc", "--prune=now", "--quiet"}
	if aggressive {
		args = append(args, "--aggressive")
	}
	return args
}

// GC prunes unreachable objects immediately.
func (c *Client) GC(ctx context.Context, aggressive bool) error {
	return c.run(ctx, GCArgs(aggressive)...)
}

// PushAllArgs returns the arguments that force-push every local branch.
func PushAllArgs(remote string) []string {
	return []string{"push", "--force", "--all", remote}
}

// PushAll force-pushes every local branch to remote.
func (c *Client) PushAll(ctx context.Context, remote string) error {
	return c.run(ctx, PushAllArgs(remote)...)
}

// PushTagsArgs returns the arguments that force-push every tag.
func PushTagsArgs(remote string) []string {
	return []string{"push", "--force", "--tags", remote}
}

// PushTags force-pushes every tag to remote.
func (c *Client) PushTags(ctx context.Context, remote string) error {
	return c.run(ctx, PushTagsArgs(remote)...)
}

// run executes a git command in the repository directory.
func (c *Client) run(ctx context.Context, args ...string) error {
	return c.executor.Execute(ctx, c.command(ctx, args...))
}

// output executes a git command and returns its stdout.
func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	return c.executor.ExecuteWithOutput(ctx, c.command(ctx, args...))
}

func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	baseArgs := []string{"-C", c.repoPath}
	cmd := exec.CommandContext(ctx, "git", append(baseArgs, args...)...)
	cmd.Dir = c.repoPath
	cmd.Env = append(os.Environ(), c.env...)
	return cmd
}

// exitCode extracts a process exit code from err, or -1.
func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if kerrors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}
