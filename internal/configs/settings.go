package configs

import (
	"fmt"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

const (
	DefaultFile       = ".env"
	DefaultIgnoreFile = ".gitignore"
	DefaultRemote     = "origin"

	// BackupSuffix is appended to the secrets file name when no backup path is set.
	BackupSuffix = ".backup"
)

// Settings controls a single purge run. Paths are relative to the
// repository root unless absolute.
type Settings struct {
	File          string `toml:"file"`
	Backup        string `toml:"backup,omitempty"`
	IgnoreFile    string `toml:"ignore_file"`
	Remote        string `toml:"remote"`
	CommitMessage string `toml:"commit_message,omitempty"`
	AggressiveGC  bool   `toml:"aggressive_gc"`
	PushTags      bool   `toml:"push_tags"`
	IgnoreBackup  bool   `toml:"ignore_backup"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		File:       DefaultFile,
		IgnoreFile: DefaultIgnoreFile,
		Remote:     DefaultRemote,

		// the backup holds the plaintext secret
		IgnoreBackup: true,
	}
}

// BackupPath returns the configured backup path or the sibling default.
func (s Settings) BackupPath() string {
	if s.Backup != "" {
		return s.Backup
	}
	return s.File + BackupSuffix
}

// Message returns the commit message recording the ignore change.
func (s Settings) Message() string {
	if s.CommitMessage != "" {
		return s.CommitMessage
	}
	return fmt.Sprintf("Add %s to %s", filepath.ToSlash(s.File), filepath.Base(s.IgnoreFile))
}

// Validate checks that the settings describe a runnable purge.
func (s Settings) Validate() error {
	switch {
	case strings.TrimSpace(s.File) == "":
		return fmt.Errorf("%w: file must not be empty", kerrors.ErrInvalidConfig)
	case strings.TrimSpace(s.IgnoreFile) == "":
		return fmt.Errorf("%w: ignore_file must not be empty", kerrors.ErrInvalidConfig)
	case strings.TrimSpace(s.Remote) == "":
		return fmt.Errorf("%w: remote must not be empty", kerrors.ErrInvalidConfig)
	case strings.ContainsAny(s.File, "\n\r"):
		return fmt.Errorf("%w: file must be a single line", kerrors.ErrInvalidConfig)
	case filepath.Clean(s.BackupPath()) == filepath.Clean(s.File):
		return fmt.Errorf("%w: backup path must differ from file", kerrors.ErrInvalidConfig)
	case filepath.Clean(s.IgnoreFile) == filepath.Clean(s.File):
		return fmt.Errorf("%w: ignore_file must differ from file", kerrors.ErrInvalidConfig)
	case strings.HasPrefix(s.Remote, "-"):
		return fmt.Errorf("%w: remote %q looks like a flag", kerrors.ErrInvalidConfig, s.Remote)
	}
	return nil
}
