package harness

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
)

var zeroSummary engine.Summary

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Tick     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Tick != "" {
		fmt.Fprintf(&buf, " at tick %s", e.Tick)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages in assertion order.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(r, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertComplete:
		return assertComplete(r, a)
	case AssertMetric:
		return assertMetric(r, a)
	case AssertTrain:
		return assertTrain(r, a)
	case AssertSwitch:
		return assertSwitch(r, a)
	case AssertSignal:
		return assertSignal(r, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func tickLabel(tick *int64) string {
	if tick == nil {
		return "final"
	}
	return strconv.FormatInt(*tick, 10)
}

func assertComplete(r *Result, a Assertion) error {
	want := a.Value == nil || *a.Value
	if r.Complete == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertComplete,
		Expected: strconv.FormatBool(want),
		Actual:   fmt.Sprintf("%t after %d ticks", r.Complete, r.Ticks),
	}
}

func assertMetric(r *Result, a Assertion) error {
	got, ok := metricValue(r.Metrics, a.Name)
	if !ok {
		return fmt.Errorf("unknown metric %q", a.Name)
	}
	if math.Abs(got-a.Equals) < 0.005 {
		return nil
	}
	return &AssertionError{
		Type:     AssertMetric,
		Expected: fmt.Sprintf("%s = %g", a.Name, a.Equals),
		Actual:   fmt.Sprintf("%s = %g", a.Name, got),
	}
}

// metricValue reads a metric by the name metrics.txt uses for it.
func metricValue(s engine.Summary, name string) (float64, bool) {
	switch name {
	case "ticks":
		return float64(s.Ticks), true
	case "spawned":
		return float64(s.Spawned), true
	case "arrivals":
		return float64(s.Arrivals), true
	case "forced_arrivals":
		return float64(s.ForcedArrivals), true
	case "crashes":
		return float64(s.Crashes), true
	case "wait_ticks":
		return float64(s.WaitTicks), true
	case "signal_violations":
		return float64(s.SignalViolations), true
	case "switch_flips":
		return float64(s.SwitchFlips), true
	case "train_ticks":
		return float64(s.TrainTicks), true
	case "buffers":
		return float64(s.Buffers), true
	case "throughput":
		return s.Throughput, true
	case "avg_wait":
		return s.AvgWait, true
	case "energy_efficiency":
		return s.EnergyEfficiency, true
	}
	return 0, false
}

func assertTrain(r *Result, a Assertion) error {
	snap, ok := r.snapshot(a.Tick)
	if !ok {
		return fmt.Errorf("no snapshot for tick %s", tickLabel(a.Tick))
	}
	for _, t := range snap.Trains {
		if t.ID != a.Train {
			continue
		}
		if a.State != "" && !strings.EqualFold(t.State, a.State) {
			return &AssertionError{
				Type:     AssertTrain,
				Tick:     tickLabel(a.Tick),
				Expected: fmt.Sprintf("train %d state %s", a.Train, strings.ToUpper(a.State)),
				Actual:   t.State,
			}
		}
		if a.Pos != nil && t.Pos != *a.Pos {
			return &AssertionError{
				Type:     AssertTrain,
				Tick:     tickLabel(a.Tick),
				Expected: fmt.Sprintf("train %d at %s", a.Train, a.Pos),
				Actual:   t.Pos.String(),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertTrain,
		Tick:     tickLabel(a.Tick),
		Expected: fmt.Sprintf("train %d", a.Train),
		Actual:   "no such train",
	}
}

func findSwitch(snap engine.Snapshot, letter string) (engine.SwitchView, bool) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	for _, sw := range snap.Switches {
		if sw.Letter == letter {
			return sw, true
		}
	}
	return engine.SwitchView{}, false
}

func assertSwitch(r *Result, a Assertion) error {
	snap, ok := r.snapshot(a.Tick)
	if !ok {
		return fmt.Errorf("no snapshot for tick %s", tickLabel(a.Tick))
	}
	sw, ok := findSwitch(snap, a.Switch)
	if !ok {
		return fmt.Errorf("switch %s is not on the grid", a.Switch)
	}
	if a.State == strconv.Itoa(sw.State) || switches.NormalizeLabel(a.State) == sw.Label {
		return nil
	}
	return &AssertionError{
		Type:     AssertSwitch,
		Tick:     tickLabel(a.Tick),
		Expected: fmt.Sprintf("switch %s state %s", sw.Letter, a.State),
		Actual:   fmt.Sprintf("%d (%s)", sw.State, sw.Label),
	}
}

func assertSignal(r *Result, a Assertion) error {
	snap, ok := r.snapshot(a.Tick)
	if !ok {
		return fmt.Errorf("no snapshot for tick %s", tickLabel(a.Tick))
	}
	sw, ok := findSwitch(snap, a.Switch)
	if !ok {
		return fmt.Errorf("switch %s is not on the grid", a.Switch)
	}
	if strings.EqualFold(sw.Signal, a.Signal) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSignal,
		Tick:     tickLabel(a.Tick),
		Expected: fmt.Sprintf("switch %s %s", sw.Letter, strings.ToUpper(a.Signal)),
		Actual:   sw.Signal,
	}
}
