package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// Dir is the directory under the git dir holding scrub state.
	Dir = "scrub"

	// FileName is the audit log file name.
	FileName = "audit.jsonl"

	// TimestampFormat is RFC3339 with microseconds in UTC.
	TimestampFormat = "2006-01-02T15:04:05.000000Z"
)

// Run statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusDryRun  = "dry-run"
	StatusAborted = "aborted"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`
	RunID     string `json:"run_id"`
	User      string `json:"user,omitempty"` // From git config user.email.
	Operation string `json:"op"`

	File   string   `json:"file,omitempty"`
	Backup string   `json:"backup,omitempty"`
	Remote string   `json:"remote,omitempty"`
	Steps  []string `json:"steps,omitempty"` // Steps that completed.
	Status string   `json:"status"`
	Error  string   `json:"error,omitempty"`
}

// LogPath returns the audit log path for a git dir.
func LogPath(gitDir string) string {
	return filepath.Join(gitDir, Dir, FileName)
}

// Log appends an entry to the audit log under gitDir.
// Callers should treat a returned error as a warning: a run never fails
// because the audit trail could not be written.
func Log(gitDir string, entry Entry) error {
	if gitDir == "" {
		return nil
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	logPath := LogPath(gitDir)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("creating audit dir: %w", err)
	}

	// #nosec G306 -- the log holds no secret values.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// ReadEntries reads all entries from the audit log under gitDir.
// It returns os.ErrNotExist (wrapped) when no log has been written.
func ReadEntries(gitDir string) ([]Entry, error) {
	data, err := os.ReadFile(LogPath(gitDir))
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Partial writes from an interrupted run.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// ParseTimestamp parses an entry timestamp.
func (e Entry) ParseTimestamp() (time.Time, error) {
	return time.Parse(TimestampFormat, e.Timestamp)
}
