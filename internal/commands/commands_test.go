package commands

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/timegate/internal/app"
)

const testPlan = `name: test-day
timezone: UTC
event_start: "2025-08-13T07:00:00"
intro: true
tasks:
  - id: 1
    title: Wake up
    description: Open your eyes
    unlock_at: "07:00"
    initially_visible: true
  - id: 2
    title: Breakfast
    description: Eat something
    unlock_at: "09:00"
    reveal_at: "08:45"
`

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
}

// setupCLI points every resolver at temp locations and an in-memory plan file.
func setupCLI(t *testing.T) (dbPath string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TIMEGATE_PRETTY_JSON", "")
	t.Setenv("TIMEGATE_DB_PATH", "")
	t.Setenv("TIMEGATE_PLAN", "")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/plans/day.yaml", []byte(testPlan), 0o644))
	prev := planFS
	planFS = fs

	t.Cleanup(func() {
		planFS = prev
		app.SetDBPathOverride("")
		app.SetPlanPathOverride("")
	})
	return t.TempDir() + "/timegate.db"
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = original }()

	fn()

	require.NoError(t, w.Close())
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(b)
}

// runCLI executes one command line and decodes the JSON envelope.
func runCLI(t *testing.T, args ...string) (envelope, error) {
	t.Helper()
	var runErr error
	out := captureStdout(t, func() {
		root := newRootCmd("test")
		root.SetArgs(args)
		runErr = root.Execute()
	})
	var env envelope
	if out != "" {
		require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	}
	return env, runErr
}

func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := newRootCmd("test")
	for _, path := range [][]string{
		{"status"}, {"tasks"}, {"toggle"}, {"intro", "show"}, {"intro", "accept"},
		{"countdown"}, {"watch"}, {"history"}, {"plan", "show"}, {"plan", "validate"},
		{"db", "path"}, {"db", "version"}, {"db", "dump"}, {"doctor"}, {"schema", "commands"},
	} {
		sub, _, err := root.Find(path)
		require.NoError(t, err)
		require.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestVersionFlag(t *testing.T) {
	setupCLI(t)
	env, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "test", env.Data["version"])
}

func TestToggleCmd_RequiresID(t *testing.T) {
	cmd := NewToggleCmd()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestIntroAcceptCmd_RequiresConsent(t *testing.T) {
	cmd := newIntroAcceptCmd()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestPlanValidateCmd_RequiresFile(t *testing.T) {
	cmd := newPlanValidateCmd()
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestHistory_RejectsEphemeral(t *testing.T) {
	setupCLI(t)
	_, err := runCLI(t, "history", "--ephemeral")
	require.Error(t, err)

	var pe printedError
	require.ErrorAs(t, err, &pe)
	var ee *EphemeralStoreError
	require.ErrorAs(t, pe.err, &ee)
	assert.Equal(t, "history", ee.Command)
}

func TestStatus_BadAtFlag(t *testing.T) {
	db := setupCLI(t)
	_, err := runCLI(t, "status", "--db-path", db, "--plan", "/plans/day.yaml", "--at", "tomorrow")
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestPlanValidate(t *testing.T) {
	setupCLI(t)

	env, err := runCLI(t, "plan", "validate", "--file", "/plans/day.yaml")
	require.NoError(t, err)
	assert.Equal(t, true, env.Data["valid"])
	assert.Equal(t, "test-day", env.Data["name"])
	assert.InDelta(t, 2, env.Data["tasks"], 0)

	require.NoError(t, afero.WriteFile(planFS, "/plans/bad.yaml", []byte("name: x\ntasks:\n  - id: 2\n    title: t\n    unlock_at: \"25:00\"\n"), 0o644))
	_, err = runCLI(t, "plan", "validate", "--file", "/plans/bad.yaml")
	require.Error(t, err)
}

func TestPlanShow_BuiltinByDefault(t *testing.T) {
	setupCLI(t)
	env, err := runCLI(t, "plan", "show")
	require.NoError(t, err)
	assert.Equal(t, "builtin", env.Data["source"])
}

func TestCountdown_BeforeEvent(t *testing.T) {
	db := setupCLI(t)
	env, err := runCLI(t, "countdown", "--db-path", db, "--plan", "/plans/day.yaml", "--at", "2025-08-13T05:29:55Z")
	require.NoError(t, err)
	assert.Equal(t, false, env.Data["event_started"])
	assert.Equal(t, "01:30:05", env.Data["countdown"])
}

func TestCheckInFlow_PersistsAcrossRuns(t *testing.T) {
	db := setupCLI(t)
	common := []string{"--db-path", db, "--plan", "/plans/day.yaml", "--at", "2025-08-13T09:10:00Z"}
	with := func(args ...string) []string { return append(args, common...) }

	env, err := runCLI(t, with("status")...)
	require.NoError(t, err)
	assert.Equal(t, "showing_intro", env.Data["phase"])
	assert.Equal(t, "sqlite", env.Data["store"])

	env, err = runCLI(t, with("toggle", "--id", "1")...)
	require.NoError(t, err)
	result := env.Data["result"].(map[string]any)
	assert.Equal(t, false, result["applied"])
	assert.Equal(t, "gated", result["reason"])

	env, err = runCLI(t, with("intro", "accept", "--consent")...)
	require.NoError(t, err)
	assert.Equal(t, true, env.Data["accepted"])
	assert.Equal(t, "active", env.Data["phase"])

	env, err = runCLI(t, with("toggle", "--id", "2")...)
	require.NoError(t, err)
	result = env.Data["result"].(map[string]any)
	assert.Equal(t, "locked", result["reason"])

	env, err = runCLI(t, with("toggle", "--id", "1")...)
	require.NoError(t, err)
	result = env.Data["result"].(map[string]any)
	assert.Equal(t, true, result["applied"])
	assert.Equal(t, true, result["completed"])

	env, err = runCLI(t, with("tasks")...)
	require.NoError(t, err)
	tasks := env.Data["tasks"].([]any)
	require.Len(t, tasks, 2)
	first := tasks[0].(map[string]any)
	second := tasks[1].(map[string]any)
	assert.Equal(t, true, first["completed"])
	assert.Equal(t, true, second["unlockable"])

	env, err = runCLI(t, with("history")...)
	require.NoError(t, err)
	assert.InDelta(t, 2, env.Data["count"], 0)

	env, err = runCLI(t, with("db", "dump")...)
	require.NoError(t, err)
	assert.Equal(t, "test-day", env.Data["namespace"])
	assert.Len(t, env.Data["entries"], 2)
}

func TestTasks_HidesUnrevealedDescriptions(t *testing.T) {
	db := setupCLI(t)
	env, err := runCLI(t, "tasks", "--all", "--ephemeral", "--db-path", db, "--plan", "/plans/day.yaml", "--at", "2025-08-13T08:00:00Z")
	require.NoError(t, err)

	tasks := env.Data["tasks"].([]any)
	require.Len(t, tasks, 2)
	second := tasks[1].(map[string]any)
	assert.Equal(t, false, second["visible"])
	assert.NotContains(t, second, "description")
}

func TestDoctor_ReportsSources(t *testing.T) {
	db := setupCLI(t)
	env, err := runCLI(t, "doctor", "--db-path", db, "--plan", "/plans/day.yaml")
	require.NoError(t, err)
	assert.Equal(t, "cli(--db-path)", env.Data["db_source"])
	assert.Equal(t, "cli(--plan)", env.Data["plan_source"])
	assert.Equal(t, true, env.Data["db_ok"])
	assert.Equal(t, true, env.Data["plan_ok"])
	assert.InDelta(t, 2, env.Data["schema_latest"], 0)
}
