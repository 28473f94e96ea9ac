package configs

import (
	"fmt"
	"strconv"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCRUB_"

// ApplyEnv overrides settings with any SCRUB_* variables that are set.
func ApplyEnv(s *Settings, lookupEnv func(string) (string, bool)) error {
	strs := map[string]*string{
		"FILE":           &s.File,
		"BACKUP":         &s.Backup,
		"IGNORE_FILE":    &s.IgnoreFile,
		"REMOTE":         &s.Remote,
		"COMMIT_MESSAGE": &s.CommitMessage,
	}
	for key, dst := range strs {
		if v, ok := lookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"AGGRESSIVE_GC": &s.AggressiveGC,
		"PUSH_TAGS":     &s.PushTags,
		"IGNORE_BACKUP": &s.IgnoreBackup,
	}
	for key, dst := range bools {
		v, ok := lookupEnv(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", kerrors.ErrInvalidConfig, EnvPrefix, key, v)
		}
		*dst = b
	}

	return nil
}

// EnvKeys lists the recognised environment variables.
func EnvKeys() []string {
	return []string{
		EnvPrefix + "FILE",
		EnvPrefix + "BACKUP",
		EnvPrefix + "IGNORE_FILE",
		EnvPrefix + "REMOTE",
		EnvPrefix + "COMMIT_MESSAGE",
		EnvPrefix + "AGGRESSIVE_GC",
		EnvPrefix + "PUSH_TAGS",
		EnvPrefix + "IGNORE_BACKUP",
	}
}
