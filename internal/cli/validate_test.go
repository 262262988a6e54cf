package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyLine = `ROWS:
1
COLS:
7
MAP:
S--A--D
TRAINS:
0 0 0 RIGHT 0 0 6
`

func TestValidate_Valid(t *testing.T) {
	legacy := filepath.Join(t.TempDir(), "line.lvl")
	require.NoError(t, os.WriteFile(legacy, []byte(legacyLine), 0o644))

	stdout, _, err := execute(t, "validate", writeLevel(t), legacy)
	require.NoError(t, err)
	assert.Contains(t, stdout, "line.yaml: line (yaml, 1x7, 1 switches, 1 trains)")
	assert.Contains(t, stdout, "line.lvl: line (legacy, 1x7, 1 switches, 1 trains)")
}

func TestValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("map: [\n"), 0o644))

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", filepath.Join(dir, "absent.yaml"), "E_LEVEL_READ"},
		{"malformed", broken, "E_LEVEL_PARSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "validate", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stdout, "✗ "+tt.path)
			assert.Contains(t, stdout, tt.code+":")
		})
	}
}

func TestValidate_JSON(t *testing.T) {
	good := writeLevel(t)
	bad := filepath.Join(t.TempDir(), "absent.yaml")

	stdout, _, err := execute(t, "--format", "json", "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed for 1 level(s)")

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_LEVEL_READ", resp.Error.Code)

	require.Len(t, resp.Data.Levels, 2)
	assert.True(t, resp.Data.Levels[0].Valid)
	assert.Len(t, resp.Data.Levels[0].Digest, 64)
	assert.False(t, resp.Data.Levels[1].Valid)
}
