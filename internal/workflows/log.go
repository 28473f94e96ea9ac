package workflows

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/PolarWolf314/scrub/internal/audit"
	kerrors "github.com/PolarWolf314/scrub/internal/errors"
	"github.com/PolarWolf314/scrub/internal/git"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Dir is any directory inside the repository. Empty means the working directory.
	Dir string

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Operations filters entries by operation (comma-separated).
	Operations string

	// Status filters entries by final status.
	Status string

	// Executor runs git commands. Nil uses os/exec.
	Executor git.CommandExecutor
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the audit log.
//
// Returns ErrNotGitRepository outside a repository and ErrNoAuditLog if no
// run has been recorded yet.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	if err := git.CheckAvailable(); err != nil {
		return nil, err
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	client := git.NewClientWithExecutor(dir, executorOrDefault(opts.Executor))

	gitDir, err := client.GitDir(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, kerrors.ErrNotGitRepository
	}

	entries, err := audit.ReadEntries(gitDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, kerrors.ErrNoAuditLog
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
	}

	filtered := entries

	if opts.Operations != "" {
		ops := strings.Split(opts.Operations, ",")
		for i := range ops {
			ops[i] = strings.TrimSpace(ops[i])
		}
		filtered = filterByOperations(filtered, ops)
	}

	if opts.Status != "" {
		filtered = filterByStatus(filtered, opts.Status)
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// When reversed, limit takes first N (most recent).
			filtered = filtered[:opts.Limit]
		} else {
			// When not reversed, limit takes last N (most recent).
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

func executorOrDefault(executor git.CommandExecutor) git.CommandExecutor {
	if executor == nil {
		return git.NewExecExecutor()
	}
	return executor
}

// filterByOperations filters entries by operation types.
func filterByOperations(entries []audit.Entry, ops []string) []audit.Entry {
	opSet := make(map[string]bool)
	for _, op := range ops {
		opSet[strings.ToLower(op)] = true
	}

	var result []audit.Entry
	for _, e := range entries {
		if opSet[strings.ToLower(e.Operation)] {
			result = append(result, e)
		}
	}
	return result
}

func filterByStatus(entries []audit.Entry, status string) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if strings.EqualFold(e.Status, status) {
			result = append(result, e)
		}
	}
	return result
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, err := time.Parse(audit.TimestampFormat, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	if err != nil {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails summarises an entry's steps and error for display.
func FormatDetails(e audit.Entry) string {
	var parts []string
	if e.File != "" {
		parts = append(parts, e.File)
	}
	if e.Remote != "" {
		parts = append(parts, "remote "+e.Remote)
	}
	if len(e.Steps) > 0 {
		parts = append(parts, fmt.Sprintf("%d steps ok", len(e.Steps)))
	}
	if e.Error != "" {
		parts = append(parts, e.Error)
	}
	return strings.Join(parts, ", ")
}
