package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/level"
	"github.com/MZiaRAwan/PF-Project/internal/runner"
	"github.com/MZiaRAwan/PF-Project/internal/store"
	"github.com/MZiaRAwan/PF-Project/internal/testutil"
	"github.com/MZiaRAwan/PF-Project/internal/tracelog"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store. Execution flow:
//  1. Load the level (file or inline)
//  2. Run it with the scenario's overrides and edits, recording every tick
//  3. Replay the stored run and compare digest chains
//  4. Evaluate assertions
//
// An error is returned only when the scenario cannot run at all; failed
// checks are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext is Run with a context and a logger for the engine.
func RunContext(ctx context.Context, scenario *Scenario, log *slog.Logger) (*Result, error) {
	lvl, err := loadLevel(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var traceBuf, switchBuf, signalBuf bytes.Buffer
	tw, err := tracelog.NewWriter(&traceBuf, &switchBuf, &signalBuf)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	res, err := runner.Run(ctx, runner.Config{
		Level:      lvl,
		MaxTicks:   scenario.MaxTicks,
		Weather:    scenario.Weather,
		Policy:     scenario.Policy,
		Seed:       scenario.Seed,
		Store:      st,
		NewRunID:   testutil.FixedRunID(scenario.RunID),
		Trace:      tw,
		BeforeTick: editHook(scenario.Edits, result),
		OnTick: func(s engine.Snapshot, _ string) {
			result.Snapshots = append(result.Snapshots, s)
		},
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result.RunID = res.RunID
	result.Ticks = res.Ticks
	result.Complete = res.Complete
	result.Digest = res.Digest
	result.Metrics = res.Metrics
	result.Trace = traceBuf.String()
	result.Switches = switchBuf.String()
	result.Signals = signalBuf.String()
	var mbuf bytes.Buffer
	if err := tracelog.WriteMetrics(&mbuf, res.Metrics); err != nil {
		return nil, err
	}
	result.MetricsText = mbuf.String()

	rep, err := runner.Replay(ctx, st, res.RunID, editHook(scenario.Edits, NewResult()), log)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: replay: %w", scenario.Name, err)
	}
	if !rep.Match() {
		d := rep.Divergence
		result.AddError(fmt.Sprintf("replay diverged at tick %d: stored %q, replayed %q", d.Tick, d.Want, d.Got))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadLevel(s *Scenario) (*level.Level, error) {
	if s.Level != "" {
		return level.Load(s.Level)
	}
	return level.Parse([]byte(s.InlineLevel), level.FormatAuto)
}

// editHook applies the edits scheduled for the engine's current tick.
// Unexpected edit outcomes are recorded in result; they do not stop the
// run.
func editHook(edits []Edit, result *Result) runner.Hook {
	if len(edits) == 0 {
		return nil
	}
	return func(e *engine.Engine) error {
		tick := e.CurrentTick()
		for i, ed := range edits {
			if ed.Tick != tick {
				continue
			}
			err := applyEdit(e, ed)
			if msg := checkEdit(i, ed, err); msg != "" {
				result.AddError(msg)
			}
		}
		return nil
	}
}

func applyEdit(e *engine.Engine, ed Edit) error {
	switch ed.Action {
	case EditToggleBuffer:
		return e.ToggleBufferTile(ed.Row, ed.Col)
	case EditToggleSwitch, EditHalt:
		id, ok := grid.SwitchID(ed.Switch)
		if !ok {
			return fmt.Errorf("invalid switch letter %q", ed.Switch)
		}
		if ed.Action == EditHalt {
			return e.TriggerEmergencyHalt(id, ed.Ticks)
		}
		return e.ToggleSwitch(id)
	}
	return fmt.Errorf("unknown action %q", ed.Action)
}

func checkEdit(index int, ed Edit, err error) string {
	if ed.ExpectError == "" {
		if err != nil {
			return fmt.Sprintf("edits[%d]: %s failed: %v", index, ed.Action, err)
		}
		return ""
	}
	var ee *engine.EditError
	if !errors.As(err, &ee) {
		return fmt.Sprintf("edits[%d]: expected %s error, got %v", index, ed.ExpectError, err)
	}
	if string(ee.Code) != ed.ExpectError {
		return fmt.Sprintf("edits[%d]: expected %s error, got %s", index, ed.ExpectError, ee.Code)
	}
	return ""
}
