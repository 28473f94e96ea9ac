package configs

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/scrub/internal/errors"
)

// ProjectConfigFile is the project config file name at the repository root.
const ProjectConfigFile = ".scrub.toml"

const projectConfigHeader = `scrub project settings.
Environment variables (SCRUB_*) and command-line flags override these values.`

// ProjectConfig is the on-disk shape of .scrub.toml.
type ProjectConfig struct {
	Scrub Settings `toml:"scrub"`
}

// ProjectConfigPath returns the config file path for a repository root.
func ProjectConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ProjectConfigFile)
}

// LoadProjectConfig loads .scrub.toml from repoRoot on top of the defaults.
// It reports whether the file existed.
func LoadProjectConfig(repoRoot string) (*ProjectConfig, bool, error) {
	configPath := ProjectConfigPath(repoRoot)

	config := &ProjectConfig{Scrub: Defaults()}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, false, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, true, fmt.Errorf("%w: failed to load %s: %w", kerrors.ErrInvalidConfig, configPath, err)
	}

	return config, true, nil
}

// WriteProjectConfig writes settings to .scrub.toml in repoRoot. An existing
// file is only replaced when force is set.
func WriteProjectConfig(repoRoot string, settings Settings, force bool) (string, error) {
	configPath := ProjectConfigPath(repoRoot)

	if _, err := os.Stat(configPath); err == nil && !force {
		return configPath, fmt.Errorf("%w: %s", kerrors.ErrConfigExists, configPath)
	}

	if err := settings.Validate(); err != nil {
		return configPath, err
	}

	if err := SaveTOML(configPath, &ProjectConfig{Scrub: settings}, projectConfigHeader); err != nil {
		return configPath, fmt.Errorf("failed to save project config: %w", err)
	}

	return configPath, nil
}

// Resolve merges defaults, the project file and the environment. lookupEnv
// is usually os.LookupEnv.
func Resolve(repoRoot string, lookupEnv func(string) (string, bool)) (Settings, error) {
	config, _, err := LoadProjectConfig(repoRoot)
	if err != nil {
		return Settings{}, err
	}

	settings := config.Scrub
	if err := ApplyEnv(&settings, lookupEnv); err != nil {
		return Settings{}, err
	}

	return settings, nil
}
