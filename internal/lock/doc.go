// Package lock prevents two scrub runs from rewriting the same repository
// at once.
//
// The lock is a file created with O_EXCL inside the repository's git
// directory holding the owner's PID. A lock left behind by a process that is
// no longer running is treated as stale and replaced.
//
//	l := lock.New(gitDir)
//	if err := l.Acquire(); err != nil {
//	    return err // errors.Is(err, errors.ErrAlreadyRunning)
//	}
//	defer l.Release()
package lock
