package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MZiaRAwan/PF-Project/internal/tracelog"
)

// runStored runs the line level into db and returns the run id.
func runStored(t *testing.T, db string, extra ...string) string {
	t.Helper()
	args := append([]string{"--format", "json", "run", "--db", db}, extra...)
	stdout, _, err := execute(t, append(args, writeLevel(t))...)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotEmpty(t, resp.RunID)
	return resp.RunID
}

func TestRun_TextSummary(t *testing.T) {
	stdout, _, err := execute(t, "run", writeLevel(t))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Level line: complete after 6 ticks")
	assert.Contains(t, stdout, "Settings: weather=CLEAR policy=wait seed=1")
	assert.Contains(t, stdout, "arrivals: 1\n")
	assert.Contains(t, stdout, "signal_violations: 1\n")
	assert.Contains(t, stdout, "throughput: 16.67\n")
	assert.NotContains(t, stdout, "Run:", "no run id without a database")
}

func TestRun_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "run", "--weather", "fog", "--seed", "9", writeLevel(t))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "line", data["level"])
	assert.Equal(t, true, data["complete"])
	assert.NotEmpty(t, data["digest"])

	settings := data["settings"].(map[string]any)
	assert.Equal(t, "FOG", settings["weather"])
	assert.EqualValues(t, 9, settings["seed"])
}

func TestRun_WritesOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	_, _, err := execute(t, "run", "--out", out, writeLevel(t))
	require.NoError(t, err)

	for _, name := range []string{tracelog.TraceFile, tracelog.SwitchesFile, tracelog.SignalsFile, tracelog.MetricsFile} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
	trace, err := os.ReadFile(filepath.Join(out, tracelog.TraceFile))
	require.NoError(t, err)
	assert.Contains(t, string(trace), "5,1,0,6,RIGHT,ARRIVED\n")

	metrics, err := os.ReadFile(filepath.Join(out, tracelog.MetricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "ticks: 6\n")
}

func TestRun_StoresRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := runStored(t, db)

	stdout, _, err := execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, id)
	assert.Contains(t, stdout, "complete")
}

func TestRun_RequireComplete(t *testing.T) {
	stdout, _, err := execute(t, "run", "--max-ticks", "2", "--require-complete", writeLevel(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "incomplete after 2 ticks")

	_, _, err = execute(t, "run", "--max-ticks", "2", writeLevel(t))
	assert.NoError(t, err, "hitting the limit is fine without --require-complete")
}

func TestRun_MissingLevel(t *testing.T) {
	stdout, _, err := execute(t, "run", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E_LEVEL_READ]")
}

func TestRun_BadOverride(t *testing.T) {
	_, _, err := execute(t, "run", "--policy", "teleport", writeLevel(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "teleport")
}

func TestRun_VerboseLogs(t *testing.T) {
	_, stderr, err := execute(t, "-v", "run", writeLevel(t))
	require.NoError(t, err)
	assert.Contains(t, stderr, "run started")
	assert.Contains(t, stderr, "run finished")
}

func TestRun_FixedRunID(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvMaxTicks, "")
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "json"},
		Database:    filepath.Join(t.TempDir(), "runs.db"),
		NewRunID:    func() string { return "fixed-run" },
	}
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, runLevel(opts, writeLevel(t), cmd))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "fixed-run", resp.RunID)
}
