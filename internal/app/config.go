package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/timegate/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "timegate"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# timegate configuration
# Run: timegate --help

# Optional: override the SQLite database location.
# Can also be set via TIMEGATE_DB_PATH or --db-path.
# db_path: ~/.config/timegate/timegate.db

# Optional: checklist plan file. The built-in plan is used when unset.
# Can also be set via TIMEGATE_PLAN or --plan.
# plan_path: ~/.config/timegate/plan.yaml

# Optional: refresh cadence for the watch view.
# minute_tick: 60s
# second_tick: 1s
`
