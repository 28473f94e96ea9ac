package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/workflows"
)

func TestPurgeCommand_ScrubsAndPushes(t *testing.T) {
	repo, remote := setupTestRepo(t)

	output, err := runScrub(t, "--yes")
	if err != nil {
		t.Fatalf("Expected purge to succeed, got: %v\nOutput: %s", err, output)
	}

	for _, want := range []string{"backup", "rewrite-history", "has been removed from history", "Rotate any credentials"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}

	backup, err := os.ReadFile(filepath.Join(repo, ".env.backup"))
	if err != nil {
		t.Fatalf("Expected backup to exist: %v", err)
	}
	if string(backup) != secretContent {
		t.Errorf("Expected backup content %q, got %q", secretContent, backup)
	}

	ignoreContent, err := os.ReadFile(filepath.Join(repo, ".gitignore"))
	if err != nil {
		t.Fatalf("Expected .gitignore to exist: %v", err)
	}
	if !strings.Contains(string(ignoreContent), ".env\n") {
		t.Errorf("Expected .gitignore to list .env, got: %q", ignoreContent)
	}
	if !strings.Contains(string(ignoreContent), ".env.backup\n") {
		t.Errorf("Expected .gitignore to list the backup, got: %q", ignoreContent)
	}

	if commits := commitsTouching(t, repo, ".env"); len(commits) != 0 {
		t.Errorf("Expected .env to be gone from local history, found in %v", commits)
	}
	if commits := commitsTouching(t, remote, ".env"); len(commits) != 0 {
		t.Errorf("Expected .env to be gone from the remote, found in %v", commits)
	}
	if refs := strings.TrimSpace(runGitCommand(t, repo, "for-each-ref", "refs/original/")); refs != "" {
		t.Errorf("Expected no refs/original refs, got: %s", refs)
	}
}

func TestPurgeCommand_RequiresConfirmationWithoutTerminal(t *testing.T) {
	repo, _ := setupTestRepo(t)

	output, err := runScrub(t)
	if !errors.Is(err, kerrors.ErrConfirmationRequired) {
		t.Fatalf("Expected ErrConfirmationRequired, got: %v", err)
	}
	if !IsReported(err) {
		t.Errorf("Expected the error to be marked as reported")
	}
	if !strings.Contains(output, "Refusing to rewrite history") {
		t.Errorf("Expected refusal message, got: %s", output)
	}
	if commits := commitsTouching(t, repo, ".env"); len(commits) != 2 {
		t.Errorf("Expected history to be untouched, got %d commits with .env", len(commits))
	}
}

func TestPurgeCommand_ConfirmsAndPausesAtTerminal(t *testing.T) {
	repo, remote := setupTestRepo(t)
	setStdin(t, "y\n\n", false)

	output, err := runScrubWithTerminal(t, true)
	if err != nil {
		t.Fatalf("Expected purge to succeed, got: %v\nOutput: %s", err, output)
	}

	for _, want := range []string{"Continue? [y/N]", "has been removed from history", "Press Enter to exit"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
	if strings.Index(output, "has been removed from history") > strings.Index(output, "Press Enter to exit") {
		t.Errorf("Expected the pause after the summary, got: %s", output)
	}
	if commits := commitsTouching(t, repo, ".env"); len(commits) != 0 {
		t.Errorf("Expected .env to be gone from local history, found in %v", commits)
	}
	if commits := commitsTouching(t, remote, ".env"); len(commits) != 0 {
		t.Errorf("Expected .env to be gone from the remote, found in %v", commits)
	}
}

func TestPurgeCommand_InterruptAtPromptAborts(t *testing.T) {
	repo, _ := setupTestRepo(t)
	setStdin(t, "", true)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	output, err := runScrubContext(t, ctx, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v\nOutput: %s", err, output)
	}
	if !IsReported(err) {
		t.Errorf("Expected the error to be marked as reported")
	}
	if !strings.Contains(output, "Aborted") {
		t.Errorf("Expected abort message, got: %s", output)
	}
	if commits := commitsTouching(t, repo, ".env"); len(commits) != 2 {
		t.Errorf("Expected history to be untouched, got %d commits with .env", len(commits))
	}
}

func TestPurgeCommand_DryRunChangesNothing(t *testing.T) {
	repo, _ := setupTestRepo(t)

	output, err := runScrub(t, "--dry-run")
	if err != nil {
		t.Fatalf("Expected dry run to succeed, got: %v\nOutput: %s", err, output)
	}

	for _, want := range []string{"filter-branch", "push --force --all", "All checks passed"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
	if _, err := os.Stat(filepath.Join(repo, ".env.backup")); !os.IsNotExist(err) {
		t.Errorf("Expected no backup after a dry run")
	}
	if _, err := os.Stat(filepath.Join(repo, ".gitignore")); !os.IsNotExist(err) {
		t.Errorf("Expected no .gitignore after a dry run")
	}
	if commits := commitsTouching(t, repo, ".env"); len(commits) != 2 {
		t.Errorf("Expected history to be untouched, got %d commits with .env", len(commits))
	}
}

func TestPurgeCommand_MissingFileAbortsBeforeRewriting(t *testing.T) {
	repo, _ := setupTestRepo(t)
	if err := os.Remove(filepath.Join(repo, ".env")); err != nil {
		t.Fatalf("Failed to remove .env: %v", err)
	}

	output, err := runScrub(t, "--yes")
	if !errors.Is(err, kerrors.ErrSecretsFileNotFound) {
		t.Fatalf("Expected ErrSecretsFileNotFound, got: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "--allow-missing") {
		t.Errorf("Expected a hint about --allow-missing, got: %s", output)
	}
	if commits := commitsTouching(t, repo, ".env"); len(commits) != 2 {
		t.Errorf("Expected history to be untouched, got %d commits with .env", len(commits))
	}
}

func TestPurgeCommand_NoPushLeavesRemote(t *testing.T) {
	repo, remote := setupTestRepo(t)

	output, err := runScrub(t, "--yes", "--no-push", "--message", "Ignore secrets")
	if err != nil {
		t.Fatalf("Expected purge to succeed, got: %v\nOutput: %s", err, output)
	}

	if commits := commitsTouching(t, repo, ".env"); len(commits) != 0 {
		t.Errorf("Expected .env to be gone from local history, found in %v", commits)
	}
	if commits := commitsTouching(t, remote, ".env"); len(commits) != 2 {
		t.Errorf("Expected the remote to be untouched, got %d commits with .env", len(commits))
	}
	if subject := strings.TrimSpace(runGitCommand(t, repo, "log", "-1", "--format=%s")); subject != "Ignore secrets" {
		t.Errorf("Expected commit message %q, got %q", "Ignore secrets", subject)
	}
}

func TestPurgeCommand_UnknownRemote(t *testing.T) {
	setupTestRepo(t)

	output, err := runScrub(t, "--yes", "--remote", "upstream")
	if !errors.Is(err, kerrors.ErrRemoteNotFound) {
		t.Fatalf("Expected ErrRemoteNotFound, got: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "--no-push") {
		t.Errorf("Expected a hint about --no-push, got: %s", output)
	}
}

func TestPurgeCommand_FlagsOverrideProjectConfig(t *testing.T) {
	repo, _ := setupTestRepo(t)
	config := "[scrub]\nfile = \".env\"\nremote = \"upstream\"\n"
	if err := os.WriteFile(filepath.Join(repo, ".scrub.toml"), []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := runScrub(t, "--dry-run")
	if !errors.Is(err, kerrors.ErrRemoteNotFound) {
		t.Fatalf("Expected the configured remote to be used, got: %v", err)
	}

	output, err := runScrub(t, "--dry-run", "--remote", "origin")
	if err != nil {
		t.Fatalf("Expected --remote to override the config, got: %v\nOutput: %s", err, output)
	}
}

func TestPurgeCommand_DirtyWorktree(t *testing.T) {
	repo, _ := setupTestRepo(t)
	if err := os.WriteFile(filepath.Join(repo, "initial.txt"), []byte("changed"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}

	output, err := runScrub(t, "--yes")
	if !errors.Is(err, kerrors.ErrDirtyWorktree) {
		t.Fatalf("Expected ErrDirtyWorktree, got: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "uncommitted changes") {
		t.Errorf("Expected dirty worktree message, got: %s", output)
	}
}

func TestPurgeCommand_DeclinedConfirmation(t *testing.T) {
	repo, _ := setupTestRepo(t)
	setStdin(t, "n\n\n", false)

	output, err := runScrubWithTerminal(t, true, "--no-pause")
	if err != nil {
		t.Fatalf("Expected a declined prompt to return cleanly, got: %v", err)
	}
	if !strings.Contains(output, "Aborted") {
		t.Errorf("Expected abort message, got: %s", output)
	}
	if strings.Contains(output, "Press Enter to exit") {
		t.Errorf("Expected --no-pause to skip the pause, got: %s", output)
	}
	if commits := commitsTouching(t, repo, ".env"); len(commits) != 2 {
		t.Errorf("Expected history to be untouched, got %d commits with .env", len(commits))
	}
}

func TestFormatStepLine(t *testing.T) {
	tests := []struct {
		name   string
		result workflows.StepResult
		want   []string
	}{
		{
			name:   "ok with detail",
			result: workflows.StepResult{Name: "backup", Status: workflows.StatusOK, Detail: "copied .env"},
			want:   []string{"backup", "copied .env"},
		},
		{
			name:   "not run",
			result: workflows.StepResult{Name: "push", Status: workflows.StatusNotRun, Detail: "ignored"},
			want:   []string{"push", "not run"},
		},
		{
			name:   "planned destructive",
			result: workflows.StepResult{Name: "gc", Status: workflows.StatusPlanned, Destructive: true, Detail: "git gc"},
			want:   []string{"gc", "git gc", "destructive"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := formatStepLine(tt.result)
			for _, want := range tt.want {
				if !strings.Contains(line, want) {
					t.Errorf("Expected %q to contain %q", line, want)
				}
			}
		})
	}
}

func TestFormatPurgeError(t *testing.T) {
	gitErr := kerrors.NewGitError("filter-branch", []string{"--force"}, errors.New("exit status 1"), "Cannot rewrite branches")
	stepErr := &kerrors.StepError{Step: "rewrite-history", Err: gitErr}

	msg := formatPurgeError(stepErr)
	for _, want := range []string{"rewrite-history", "Cannot rewrite branches", "did not run"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q to contain %q", msg, want)
		}
	}

	if n := strings.Count(msg, "Cannot rewrite branches"); n != 1 {
		t.Errorf("Expected git output once, got %d times in %q", n, msg)
	}

	msg = formatPurgeError(&kerrors.StepError{Step: "ignore", Err: errors.New("permission denied")})
	if !strings.Contains(msg, "permission denied") {
		t.Errorf("Expected plain step error text, got %q", msg)
	}

	msg = formatPurgeError(fmt.Errorf("%w: no email", kerrors.ErrIdentityUnknown))
	if !strings.Contains(msg, "user.email") {
		t.Errorf("Expected identity hint, got %q", msg)
	}

	msg = formatPurgeError(kerrors.ErrAlreadyRunning)
	if !strings.Contains(msg, "other run") {
		t.Errorf("Expected lock hint, got %q", msg)
	}

	msg = formatPurgeError(errors.New("boom"))
	if !strings.Contains(msg, "boom") {
		t.Errorf("Expected unknown error text, got %q", msg)
	}
}
