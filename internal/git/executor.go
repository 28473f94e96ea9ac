package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

// CommandExecutor defines an interface for executing commands.
type CommandExecutor interface {
	// Execute runs a command, discarding stdout.
	Execute(ctx context.Context, cmd *exec.Cmd) error

	// ExecuteWithOutput runs a command and returns its stdout.
	ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default CommandExecutor backed by os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Execute implements CommandExecutor.Execute.
func (e *ExecExecutor) Execute(ctx context.Context, cmd *exec.Cmd) error {
	_, err := e.ExecuteWithOutput(ctx, cmd)
	return err
}

// ExecuteWithOutput implements CommandExecutor.ExecuteWithOutput.
func (e *ExecExecutor) ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		operation, args := splitGitArgs(cmd.Args)
		return "", kerrors.NewGitError(operation, args,
			fmt.Errorf("%w: %w", kerrors.ErrGitOperationFailed, err), stderr.String())
	}

	return stdout.String(), nil
}

// splitGitArgs drops the executable and any leading global options
// (-C <path>, -c <key=value>) and returns the subcommand and its arguments.
func splitGitArgs(argv []string) (string, []string) {
	if len(argv) == 0 {
		return "", nil
	}
	args := argv[1:]
	for len(args) > 0 {
		switch {
		case (args[0] == "-C" || args[0] == "-c") && len(args) > 1:
			args = args[2:]
		case strings.HasPrefix(args[0], "--git-dir=") || strings.HasPrefix(args[0], "--work-tree="):
			args = args[1:]
		default:
			return args[0], args[1:]
		}
	}
	return "", nil
}
