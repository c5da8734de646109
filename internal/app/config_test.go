package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigDir_UsesHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "timegate"), dir)
}

func TestEnsureConfigDir_CreatesDefaultConfigOnlyWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	err := EnsureConfigDir()
	require.NoError(t, err)

	dir, err := ConfigDir()
	require.NoError(t, err)

	configFile := filepath.Join(dir, "config.yaml")
	b, err := os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, defaultConfig, string(b))

	custom := []byte("db_path: /tmp/custom.db\n")
	require.NoError(t, os.WriteFile(configFile, custom, 0o600))

	err = EnsureConfigDir()
	require.NoError(t, err)

	b, err = os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, string(custom), string(b))
}

func TestDefaultConfig_DocumentsEverySetting(t *testing.T) {
	for _, key := range []string{"db_path:", "plan_path:", "minute_tick:", "second_tick:"} {
		require.Contains(t, defaultConfig, "# "+key, "default config should document %s", key)
	}
}

func TestDefaultConfig_UncommentedValuesLoad(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfig, "\n") {
		body := strings.TrimPrefix(line, "# ")
		if key, _, ok := strings.Cut(body, ":"); ok && (strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_tick")) {
			line = body
		}
		lines = append(lines, line)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, "~/.config/timegate/timegate.db", s.DBPath)
	require.Equal(t, "~/.config/timegate/plan.yaml", s.PlanPath)
	require.Equal(t, 60*time.Second, s.MinuteTick)
	require.Equal(t, time.Second, s.SecondTick)
}
