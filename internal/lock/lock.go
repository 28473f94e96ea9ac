package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

// FileName is the lock file name inside the git directory.
const FileName = "scrub.lock"

// Locker guards a repository with a PID lock file.
type Locker struct {
	lockFile string
	pid      int
	acquired bool
}

// New creates a Locker whose lock file lives in gitDir.
func New(gitDir string) *Locker {
	return &Locker{
		lockFile: filepath.Join(gitDir, FileName),
		pid:      os.Getpid(),
	}
}

// Path returns the lock file path.
func (l *Locker) Path() string {
	return l.lockFile
}

// Acquire takes the lock, replacing a stale lock whose owner has exited.
func (l *Locker) Acquire() error {
	err := l.tryCreate()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return fmt.Errorf("creating lock file %s: %w", l.lockFile, err)
	}

	otherPid, readErr := l.readPid()
	if readErr == nil && otherPid != l.pid && isProcessRunning(otherPid) {
		return fmt.Errorf("lock held by PID %d (%s): %w", otherPid, l.lockFile, kerrors.ErrAlreadyRunning)
	}

	// stale or unreadable lock
	if err := os.Remove(l.lockFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale lock file %s: %w", l.lockFile, err)
	}
	if err := l.tryCreate(); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("lock taken while replacing stale lock: %w", kerrors.ErrAlreadyRunning)
		}
		return fmt.Errorf("creating lock file %s: %w", l.lockFile, err)
	}
	return nil
}

// Release removes the lock file if this Locker holds it.
func (l *Locker) Release() error {
	if !l.acquired {
		return nil
	}
	l.acquired = false
	if err := os.Remove(l.lockFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file %s: %w", l.lockFile, err)
	}
	return nil
}

func (l *Locker) tryCreate() error {
	f, err := os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(l.pid)); err != nil {
		_ = os.Remove(l.lockFile)
		return fmt.Errorf("writing PID to lock file: %w", err)
	}
	l.acquired = true
	return nil
}

func (l *Locker) readPid() (int, error) {
	data, err := os.ReadFile(l.lockFile)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// isProcessRunning checks if a process exists using signal 0.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
