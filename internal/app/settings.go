package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/timegate/internal/clock"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath     string        `yaml:"db_path"`
	PlanPath   string        `yaml:"plan_path"`
	MinuteTick time.Duration `yaml:"minute_tick"`
	SecondTick time.Duration `yaml:"second_tick"`
}

// TickSettings are the effective sampling cadences for the watch loop.
type TickSettings struct {
	Minute time.Duration `json:"minute_tick"`
	Second time.Duration `json:"second_tick"`
}

const minTick = 10 * time.Millisecond

// EffectiveTickSettings returns validated cadences with defaults.
// Invalid or missing config values fall back to the clock package defaults.
func EffectiveTickSettings() TickSettings {
	cfg := TickSettings{Minute: clock.MinuteTick, Second: clock.SecondTick}

	s, err := LoadSettings()
	if err != nil {
		return cfg
	}
	if s.MinuteTick >= minTick {
		cfg.Minute = s.MinuteTick
	}
	if s.SecondTick >= minTick {
		cfg.Second = s.SecondTick
	}
	if cfg.Second > cfg.Minute {
		cfg.Second = cfg.Minute
	}
	return cfg
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// The override vars hold process-wide values from CLI flags (--db-path, --plan).
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	overrideMu       sync.RWMutex
	dbPathOverride   string
	planPathOverride string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	overrideMu.Lock()
	dbPathOverride = path
	overrideMu.Unlock()
}

func getDBPathOverride() string {
	overrideMu.RLock()
	v := dbPathOverride
	overrideMu.RUnlock()
	return v
}

// SetPlanPathOverride sets a process-wide plan file override (--plan).
func SetPlanPathOverride(path string) {
	overrideMu.Lock()
	planPathOverride = path
	overrideMu.Unlock()
}

func getPlanPathOverride() string {
	overrideMu.RLock()
	v := planPathOverride
	overrideMu.RUnlock()
	return v
}

// settingsPaths lists config files in lookup order (first found wins):
// 1) ~/.config/timegate/config.yaml
// 2) /etc/timegate/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
func settingsPaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "timegate", "config.yaml"),
		"config.yaml",
	}, nil
}

// LoadSettings loads configuration once using the documented lookup order.
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		paths, err := settingsPaths()
		if err != nil {
			settingsErr = err
			return
		}
		for _, p := range paths {
			s, err := loadSettingsFile(p)
			if err == nil {
				settings = s
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = err
				return
			}
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the fixed lookup list
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
