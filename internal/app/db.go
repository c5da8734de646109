package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDBPath resolves the database path.
// Order of precedence:
// 1) CLI override (e.g. --db-path)
// 2) Environment variable: TIMEGATE_DB_PATH
// 3) config.yaml: db_path
// 4) Default: ~/.config/timegate/timegate.db
// Returns the path to timegate.db and ensures the parent directory exists.
func GetDBPath() (string, error) {
	path, _, err := ResolveDBPathDetailed()
	return path, err
}

// ResolveDBPathDetailed returns the resolved DB path along with the source of that decision.
// This is for debugging/reporting; normal code should use GetDBPath.
func ResolveDBPathDetailed() (path string, source string, err error) {
	if override := getDBPathOverride(); override != "" {
		resolvedPath, ensureErr := EnsureDBDir(override)
		return resolvedPath, "cli(--db-path)", ensureErr
	}

	if envPath := os.Getenv("TIMEGATE_DB_PATH"); envPath != "" {
		resolvedPath, ensureErr := EnsureDBDir(envPath)
		return resolvedPath, "env(TIMEGATE_DB_PATH)", ensureErr
	}

	cfg, err := LoadSettings()
	if err != nil {
		return "", "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DBPath != "" {
		resolvedPath, ensureErr := EnsureDBDir(expandHome(cfg.DBPath))
		return resolvedPath, "config(db_path)", ensureErr
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	resolved, err := EnsureDBDir(filepath.Join(configDir, "timegate.db"))
	return resolved, "default(~/.config/timegate/timegate.db)", err
}

// ResolvePlanPath returns the plan file to load and where that choice came
// from. An empty path means the built-in plan.
func ResolvePlanPath() (path string, source string, err error) {
	if override := getPlanPathOverride(); override != "" {
		return override, "cli(--plan)", nil
	}
	if envPath := os.Getenv("TIMEGATE_PLAN"); envPath != "" {
		return envPath, "env(TIMEGATE_PLAN)", nil
	}
	cfg, err := LoadSettings()
	if err != nil {
		return "", "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.PlanPath != "" {
		return expandHome(cfg.PlanPath), "config(plan_path)", nil
	}
	return "", "builtin", nil
}

func EnsureDBDir(dbPath string) (string, error) {
	if dbPath == ":memory:" {
		return dbPath, nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return dbPath, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
