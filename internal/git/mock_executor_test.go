package git

import (
	"context"
	"os/exec"
)

// MockCommandExecutor records commands without running them.
type MockCommandExecutor struct {
	Output              string
	Commands            []*exec.Cmd
	ExecuteFn           func(ctx context.Context, cmd *exec.Cmd) error
	ExecuteWithOutputFn func(ctx context.Context, cmd *exec.Cmd) (string, error)
}

// Execute implements the CommandExecutor interface.
func (m *MockCommandExecutor) Execute(ctx context.Context, cmd *exec.Cmd) error {
	m.Commands = append(m.Commands, cmd)
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, cmd)
	}
	return nil
}

// ExecuteWithOutput implements the CommandExecutor interface.
func (m *MockCommandExecutor) ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error) {
	m.Commands = append(m.Commands, cmd)
	if m.ExecuteWithOutputFn != nil {
		return m.ExecuteWithOutputFn(ctx, cmd)
	}
	return m.Output, nil
}

// exitError satisfies the ExitCode interface git.exitCode looks for.
type exitError struct{ code int }

func (e exitError) Error() string { return "exit status" }
func (e exitError) ExitCode() int { return e.code }
