package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inlineLine = `name: inline
map: ["S--A--D"]
trains:
  - {id: 1, start: {row: 0, col: 0}, dir: RIGHT, dest: {row: 0, col: 6}}
`

func TestRun_AllScenariosPass(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ResultFields(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/line_arrival.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, "line-arrival-0001", result.RunID)
	assert.Equal(t, int64(6), result.Ticks)
	assert.True(t, result.Complete)
	assert.Len(t, result.Snapshots, 6)
	assert.Len(t, result.Digest, 64)
	assert.Equal(t, 1, result.Metrics.Arrivals)
	assert.Contains(t, result.MetricsText, "arrivals: 1\n")
}

func TestRun_InlineLevelDefaultRunID(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "inline",
		Description: "inline level",
		InlineLevel: inlineLine,
		Assertions:  []Assertion{{Type: AssertComplete}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "test-run-default", result.RunID)
}

func TestRun_FailingAssertions(t *testing.T) {
	tick := int64(1)
	no := false
	result, err := Run(&Scenario{
		Name:        "failing",
		Description: "every assertion is wrong",
		InlineLevel: inlineLine,
		Assertions: []Assertion{
			{Type: AssertComplete, Value: &no},
			{Type: AssertMetric, Name: "arrivals", Equals: 2},
			{Type: AssertTrain, Train: 1, State: "CRASHED"},
			{Type: AssertTrain, Train: 9, State: "ARRIVED"},
			{Type: AssertSignal, Switch: "A", Tick: &tick, Signal: "GREEN"},
			{Type: AssertSwitch, Switch: "A", State: "TURN"},
			{Type: AssertSignal, Switch: "B", Signal: "GREEN"},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "Assertion failed: complete")
	assert.Contains(t, result.Errors[1], "arrivals = 2")
	assert.Contains(t, result.Errors[2], "Actual: ARRIVED")
	assert.Contains(t, result.Errors[3], "no such train")
	assert.Contains(t, result.Errors[4], "at tick 1")
	assert.Contains(t, result.Errors[5], "0 (STRAIGHT)")
	assert.Contains(t, result.Errors[6], "not on the grid")
}

func TestRun_TickBeyondRun(t *testing.T) {
	tick := int64(40)
	result, err := Run(&Scenario{
		Name:        "late",
		Description: "tick after the run ended",
		InlineLevel: inlineLine,
		Assertions:  []Assertion{{Type: AssertSignal, Switch: "A", Tick: &tick, Signal: "GREEN"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no snapshot for tick 40")
}

func TestRun_UnexpectedEditOutcome(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "edits",
		Description: "edit outcomes differ from expectations",
		InlineLevel: inlineLine,
		Edits: []Edit{
			{Tick: 0, Action: EditToggleBuffer, Row: 9, Col: 9},
			{Tick: 0, Action: EditHalt, Switch: "A", ExpectError: "UNKNOWN_SWITCH"},
			{Tick: 1, Action: EditHalt, Switch: "Z", ExpectError: "OUT_OF_BOUNDS"},
		},
		Assertions: []Assertion{{Type: AssertComplete}},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "toggle_buffer failed")
	assert.Contains(t, result.Errors[1], "expected UNKNOWN_SWITCH error, got <nil>")
	assert.Contains(t, result.Errors[2], "got UNKNOWN_SWITCH")
}

func TestRun_BadLevel(t *testing.T) {
	_, err := Run(&Scenario{
		Name:        "bad",
		Description: "level does not parse",
		InlineLevel: "map: [S-D]\nbogus: 1\n",
		Assertions:  []Assertion{{Type: AssertComplete}},
	})
	assert.Error(t, err)
}
