package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MZiaRAwan/PF-Project/internal/store"
)

func TestReplay_Latest(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	runStored(t, db)
	id := runStored(t, db, "--seed", "3")

	stdout, _, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Run "+id+" (line): 6 stored ticks, 6 replayed")
	assert.Contains(t, stdout, "✓ Replay matches")
}

func TestReplay_ByID_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := runStored(t, db, "--seed", "77")
	runStored(t, db)

	stdout, _, err := execute(t, "--format", "json", "replay", "--db", db, id)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, id, resp.RunID)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["match"])
	assert.EqualValues(t, 6, data["stored_ticks"])
	assert.Nil(t, data["divergence"])
}

func TestReplay_Diverged(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := runStored(t, db)

	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE digests SET digest = 'tampered' WHERE run_id = ? AND tick = 2`, id)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	stdout, _, err := execute(t, "replay", "--db", db, id)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ Diverged at tick 2")
	assert.Contains(t, stdout, "stored:   tampered")
}

func TestReplay_Errors(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no database", []string{"replay"}, "no database"},
		{"empty database", []string{"replay", "--db", db}, "no run to replay"},
		{"unknown run", []string{"replay", "--db", db, "missing"}, "run not found"},
		{"id and latest", []string{"replay", "--db", db, "--latest", "x"}, "not both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRuns_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs found in database.")

	stdout, _, err = execute(t, "--format", "json", "runs", "--db", db)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, []any{}, resp.Data)
}
