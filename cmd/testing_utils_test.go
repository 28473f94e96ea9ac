package cmd

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const secretContent = "API_KEY=rotated\n"

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// runScrub executes the root command with args as if stdin were not a
// terminal.
func runScrub(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runScrubWithTerminal(t, false, args...)
}

func runScrubWithTerminal(t *testing.T, terminal bool, args ...string) (string, error) {
	t.Helper()
	return runScrubContext(t, context.Background(), terminal, args...)
}

func runScrubContext(t *testing.T, ctx context.Context, terminal bool, args ...string) (string, error) {
	t.Helper()

	ResetGlobalState()
	originalIsTerminal := isTerminal
	isTerminal = func() bool { return terminal }
	t.Cleanup(func() {
		isTerminal = originalIsTerminal
		ResetGlobalState()
	})

	ScrubCmd.SetArgs(args)
	return captureOutput(func() error {
		return ScrubCmd.ExecuteContext(ctx)
	})
}

// setStdin replaces os.Stdin with a pipe holding input for the rest of the
// test. The pipe stays open when keepOpen is set, so reads block.
func setStdin(t *testing.T, input string, keepOpen bool) {
	t.Helper()
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create stdin pipe: %v", err)
	}
	if _, err := writer.WriteString(input); err != nil {
		t.Fatalf("Failed to write stdin: %v", err)
	}
	if !keepOpen {
		writer.Close()
	}

	original := os.Stdin
	os.Stdin = reader
	t.Cleanup(func() {
		os.Stdin = original
		writer.Close()
		reader.Close()
	})
}

// setupTestRepo creates a repository whose history contains .env, pushed to
// a bare remote named origin, and changes into it. It returns the working
// repository and the remote.
func setupTestRepo(t *testing.T) (string, string) {
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
	commitFile(t, repo, "initial.txt", "Initial content", "Initial commit")
	commitFile(t, repo, ".env", "API_KEY=first\n", "Add secrets")
	commitFile(t, repo, ".env", secretContent, "Rotate key")
	runGitCommand(t, repo, "remote", "add", "origin", remote)
	runGitCommand(t, repo, "push", "--quiet", "-u", "origin", "main")

	changeDir(t, repo)
	return repo, remote
}

// changeDir changes into dir until the test ends.
func changeDir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
	})
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

// commitsTouching returns the commits reachable from any ref that touch path.
func commitsTouching(t *testing.T, dir, path string) []string {
	t.Helper()
	out := strings.TrimSpace(runGitCommand(t, dir, "log", "--all", "--format=%H", "--", path))
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
