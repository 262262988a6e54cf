package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_LineArrival(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/line_arrival.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestGoldenText_Layout(t *testing.T) {
	r := &Result{Trace: "t\n", Switches: "s\n", Signals: "g\n", MetricsText: "m\n"}
	assert.Equal(t, "# x\n\nt\n\ns\n\ng\n\nm\n", string(GoldenText("x", r)))
}

func TestGoldenText_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/line_halt.yaml")
	require.NoError(t, err)

	a, err := Run(s)
	require.NoError(t, err)
	b, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, GoldenText(s.Name, a), GoldenText(s.Name, b))
	assert.Equal(t, a.Digest, b.Digest)
	assert.True(t, strings.HasPrefix(string(GoldenText(s.Name, a)), "# line_halt\n"))
}
