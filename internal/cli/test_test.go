package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MZiaRAwan/PF-Project/internal/testutil"
)

const harnessScenarios = "../harness/testdata/scenarios"

func TestTest_HarnessScenariosPass(t *testing.T) {
	stdout, _, err := execute(t, "test", harnessScenarios)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ line_arrival")
	assert.Contains(t, stdout, "✓ line_halt")
	assert.Contains(t, stdout, "✓ line_toggle")
	assert.Contains(t, stdout, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	stdout, _, err := execute(t, "test", "--filter", "*_halt", harnessScenarios)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ line_halt")
	assert.NotContains(t, stdout, "line_arrival")
	assert.Contains(t, stdout, "1 total")
}

func TestTest_GoldenCompare(t *testing.T) {
	stdout, _, err := execute(t, "test", "--golden-dir", "../harness/testdata/golden",
		filepath.Join(harnessScenarios, "line_arrival.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ line_arrival")
}

func TestTest_GoldenUpdateThenMismatch(t *testing.T) {
	golden := t.TempDir()
	scenario := filepath.Join(harnessScenarios, "line_halt.yaml")

	stdout, _, err := execute(t, "test", "--golden-dir", golden, "--update", scenario)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ line_halt (golden updated)")

	data, err := os.ReadFile(filepath.Join(golden, "line_halt.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# line_halt\n")

	_, _, err = execute(t, "test", "--golden-dir", golden, scenario)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(golden, "line_halt.golden"), []byte("stale\n"), 0o644))
	stdout, _, err = execute(t, "test", "--golden-dir", golden, scenario)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Golden file mismatch")
}

func TestTest_UpdateNeedsGoldenDir(t *testing.T) {
	_, _, err := execute(t, "test", "--update", harnessScenarios)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_FailingScenario_JSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "line.yaml"), []byte(testutil.LineLevelYAML), 0o644))
	scenario := `name: wrong_arrivals
description: one train cannot produce two arrivals
level: line.yaml
assertions:
  - type: metric
    name: arrivals
    equals: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0o644))

	stdout, _, err := execute(t, "--format", "json", "test", filepath.Join(dir, "wrong.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeScenario, resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	sr := resp.Data.Scenarios[0]
	assert.Equal(t, "wrong_arrivals", sr.Name)
	assert.False(t, sr.Pass)
	require.Len(t, sr.Errors, 1)
	assert.Contains(t, sr.Errors[0], "arrivals")
}

func TestTest_LoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\nunknown_field: 1\n"), 0o644))

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ bad.yaml")
	assert.Contains(t, stdout, "Load error")
}

func TestTest_NoScenarios(t *testing.T) {
	stdout, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")

	_, _, err = execute(t, "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
