package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesLevelPath(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/line_arrival.yaml")
	require.NoError(t, err)

	assert.Equal(t, "line_arrival", s.Name)
	assert.Equal(t, filepath.Join("testdata", "levels", "line.yaml"), s.Level)
	assert.Equal(t, int64(50), s.MaxTicks)
	assert.Equal(t, "line-arrival-0001", s.RunID)
	require.Len(t, s.Assertions, 7)
	require.NotNil(t, s.Assertions[4].Pos)
	assert.Equal(t, 6, s.Assertions[4].Pos.Col)
	require.NotNil(t, s.Assertions[4].Tick)
	assert.Equal(t, int64(5), *s.Assertions[4].Tick)
}

func TestLoadScenario_Edits(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/line_halt.yaml")
	require.NoError(t, err)

	require.Len(t, s.Edits, 3)
	assert.Equal(t, Edit{Tick: 0, Action: EditHalt, Switch: "A", Ticks: 3}, s.Edits[0])
	assert.Equal(t, "OUT_OF_BOUNDS", s.Edits[2].ExpectError)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingLevelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	content := `name: x
description: "x"
level: missing.yaml
assertions:
  - type: complete
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level file not found")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`name: x
description: "x"
inline_level: "map: [S-D]"
assertion:
  - type: complete
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	base := "name: x\ndescription: d\ninline_level: \"map: [S-D]\"\n"
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "description: d\ninline_level: x\nassertions: [{type: complete}]\n", "name is required"},
		{"no description", "name: x\ninline_level: x\nassertions: [{type: complete}]\n", "description is required"},
		{"no level", "name: x\ndescription: d\nassertions: [{type: complete}]\n", "level or inline_level is required"},
		{"both levels", base + "level: a.yaml\nassertions: [{type: complete}]\n", "mutually exclusive"},
		{"no assertions", base, "assertions list is required"},
		{"negative max ticks", base + "max_ticks: -1\nassertions: [{type: complete}]\n", "max_ticks"},
		{"assertion type", base + "assertions: [{name: x}]\n", "type is required"},
		{"unknown type", base + "assertions: [{type: magic}]\n", "unknown assertion type"},
		{"unknown metric", base + "assertions: [{type: metric, name: speed}]\n", "unknown metric"},
		{"train needs state", base + "assertions: [{type: train, train: 1}]\n", "state or pos"},
		{"unknown train state", base + "assertions: [{type: train, train: 1, state: parked}]\n", "unknown train state"},
		{"switch needs state", base + "assertions: [{type: switch, switch: A}]\n", "switch and state"},
		{"signal needs color", base + "assertions: [{type: signal, switch: A}]\n", "switch and signal"},
		{"negative tick", base + "assertions: [{type: signal, switch: A, signal: RED, tick: -1}]\n", "tick must be non-negative"},
		{"edit action", base + "edits: [{tick: 0}]\nassertions: [{type: complete}]\n", "action is required"},
		{"edit unknown", base + "edits: [{tick: 0, action: explode}]\nassertions: [{type: complete}]\n", "unknown action"},
		{"halt switch", base + "edits: [{tick: 0, action: halt}]\nassertions: [{type: complete}]\n", "switch is required"},
		{"edit tick", base + "edits: [{tick: -2, action: toggle_buffer}]\nassertions: [{type: complete}]\n", "tick must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "error %q does not mention %q", err, tt.want)
		})
	}
}
