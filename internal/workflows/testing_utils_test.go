package workflows

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/scrub/internal/git"
)

const secretContent = "API_KEY=rotated\n"

// setupFixture creates a repository whose history contains .env, pushed to a
// bare remote named origin. It returns the working repository and the remote.
func setupFixture(t *testing.T) (string, string) {
	t.Helper()
	repo, remote := setupRepoWithRemote(t)

	commitFile(t, repo, ".env", "API_KEY=first\n", "Add secrets")
	commitFile(t, repo, "app.txt", "app", "Add app")
	commitFile(t, repo, ".env", secretContent, "Rotate key")
	runGitCommand(t, repo, "tag", "v1")
	runGitCommand(t, repo, "push", "--quiet", "--tags", "origin", "main")

	return repo, remote
}

// setupRepoWithRemote creates a repository with one commit and an empty bare
// remote named origin tracking main.
func setupRepoWithRemote(t *testing.T) (string, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	remote := t.TempDir()
	runGitCommand(t, remote, "init", "--quiet", "--bare", "--initial-branch=main")

	repo := t.TempDir()
	runGitCommand(t, repo, "init", "--quiet", "--initial-branch=main")
	runGitCommand(t, repo, "config", "user.email", "test@example.com")
	runGitCommand(t, repo, "config", "user.name", "Test User")
	runGitCommand(t, repo, "config", "commit.gpgsign", "false")
	runGitCommand(t, repo, "config", "tag.gpgsign", "false")
	commitFile(t, repo, "initial.txt", "Initial content", "Initial commit")
	runGitCommand(t, repo, "remote", "add", "origin", remote)
	runGitCommand(t, repo, "push", "--quiet", "-u", "origin", "main")

	return repo, remote
}

func commitFile(t *testing.T, dir, name, content, message string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	runGitCommand(t, dir, "add", name)
	runGitCommand(t, dir, "commit", "--quiet", "-m", message)
}

func runGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return string(out)
}

var errInjected = errors.New("injected failure")

// recordingExecutor runs git for real and records every invocation. Commands
// whose subcommand matches failOn fail without running.
type recordingExecutor struct {
	inner  git.CommandExecutor
	calls  [][]string
	failOn string
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{inner: git.NewExecExecutor()}
}

func (r *recordingExecutor) Execute(ctx context.Context, cmd *exec.Cmd) error {
	if err := r.record(cmd); err != nil {
		return err
	}
	return r.inner.Execute(ctx, cmd)
}

func (r *recordingExecutor) ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error) {
	if err := r.record(cmd); err != nil {
		return "", err
	}
	return r.inner.ExecuteWithOutput(ctx, cmd)
}

func (r *recordingExecutor) record(cmd *exec.Cmd) error {
	args := cmd.Args[1:]
	if len(args) >= 2 && args[0] == "-C" {
		args = args[2:]
	}
	r.calls = append(r.calls, args)

	if r.failOn != "" && len(args) > 0 && args[0] == r.failOn {
		return errInjected
	}
	return nil
}

// invocations returns the recorded calls of a git subcommand.
func (r *recordingExecutor) invocations(subcommand string) [][]string {
	var found [][]string
	for _, call := range r.calls {
		if len(call) > 0 && call[0] == subcommand {
			found = append(found, call)
		}
	}
	return found
}

func statuses(result *PurgeResult) map[string]StepStatus {
	m := make(map[string]StepStatus, len(result.Steps))
	for _, s := range result.Steps {
		m[s.Name] = s.Status
	}
	return m
}

func headSubject(t *testing.T, repo string) string {
	t.Helper()
	return strings.TrimSpace(runGitCommand(t, repo, "log", "-1", "--format=%s"))
}

// isolateGitIdentity hides every identity source outside the repository's
// own config for the rest of the test.
func isolateGitIdentity(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	global := filepath.Join(home, ".gitconfig")
	if err := os.WriteFile(global, nil, 0644); err != nil {
		t.Fatalf("Failed to create empty global config: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("GIT_CONFIG_GLOBAL", global)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	for _, key := range []string{"GIT_AUTHOR_NAME", "GIT_AUTHOR_EMAIL", "GIT_COMMITTER_NAME", "GIT_COMMITTER_EMAIL", "EMAIL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
