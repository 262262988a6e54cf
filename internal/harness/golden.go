package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenText renders the parts of a result that golden files pin: the
// trace, switch and signal logs and the metrics, separated by blank lines.
func GoldenText(name string, r *Result) []byte {
	var b strings.Builder
	b.WriteString("# " + name + "\n")
	for _, part := range []string{r.Trace, r.Switches, r.Signals, r.MetricsText} {
		b.WriteString("\n")
		b.WriteString(part)
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its logs against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, GoldenText(name, result))
}
