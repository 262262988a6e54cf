package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// Scenario is one simulation test: a level, optional manual edits and the
// assertions the run must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Level is a level file path, relative to the scenario file.
	Level string `yaml:"level,omitempty"`

	// InlineLevel is level text (YAML or legacy) used when Level is empty.
	InlineLevel string `yaml:"inline_level,omitempty"`

	// MaxTicks bounds the run. Zero uses the runner default.
	MaxTicks int64 `yaml:"max_ticks,omitempty"`

	// Weather, Policy and Seed override the level's values.
	Weather string  `yaml:"weather,omitempty"`
	Policy  string  `yaml:"policy,omitempty"`
	Seed    *uint64 `yaml:"seed,omitempty"`

	// Edits are manual edits applied between ticks.
	Edits []Edit `yaml:"edits,omitempty"`

	// Assertions validate the run.
	Assertions []Assertion `yaml:"assertions"`

	// RunID is the id the run is stored under. Defaults to
	// "test-run-default" so stored runs are reproducible.
	RunID string `yaml:"run_id,omitempty"`
}

// Edit is one manual edit, applied before tick Tick runs.
type Edit struct {
	Tick   int64  `yaml:"tick"`
	Action string `yaml:"action"`

	// Row and Col address toggle_buffer.
	Row int `yaml:"row,omitempty"`
	Col int `yaml:"col,omitempty"`

	// Switch is the letter for toggle_switch and halt.
	Switch string `yaml:"switch,omitempty"`

	// Ticks is the halt duration.
	Ticks int `yaml:"ticks,omitempty"`

	// ExpectError is the edit error code the edit must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Edit actions.
const (
	EditToggleBuffer = "toggle_buffer"
	EditToggleSwitch = "toggle_switch"
	EditHalt         = "halt"
)

// Assertion validates the run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Tick selects the snapshot taken after that tick. Nil means the final
	// snapshot.
	Tick *int64 `yaml:"tick,omitempty"`

	// Name and Equals are used by metric.
	Name   string  `yaml:"name,omitempty"`
	Equals float64 `yaml:"equals,omitempty"`

	// Value is used by complete; nil means true.
	Value *bool `yaml:"value,omitempty"`

	// Train, State and Pos are used by train.
	Train int       `yaml:"train,omitempty"`
	Pos   *grid.Pos `yaml:"pos,omitempty"`

	// Switch is used by switch and signal.
	Switch string `yaml:"switch,omitempty"`

	// State is a train state name for train, a switch state (as text) for
	// switch.
	State string `yaml:"state,omitempty"`

	// Signal is used by signal.
	Signal string `yaml:"signal,omitempty"`
}

// Assertion types.
const (
	AssertComplete = "complete"
	AssertMetric   = "metric"
	AssertTrain    = "train"
	AssertSwitch   = "switch"
	AssertSignal   = "signal"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected and the level path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Level != "" && !filepath.IsAbs(s.Level) {
		s.Level = filepath.Join(filepath.Dir(path), s.Level)
	}
	if s.Level != "" {
		if _, err := os.Stat(s.Level); err != nil {
			return nil, fmt.Errorf("invalid scenario: level file not found: %s", s.Level)
		}
	}
	return s, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Level == "" && s.InlineLevel == "" {
		return fmt.Errorf("level or inline_level is required")
	}
	if s.Level != "" && s.InlineLevel != "" {
		return fmt.Errorf("level and inline_level are mutually exclusive")
	}
	if s.MaxTicks < 0 {
		return fmt.Errorf("max_ticks must be non-negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, e := range s.Edits {
		if err := validateEdit(i, &e); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateEdit(index int, e *Edit) error {
	if e.Tick < 0 {
		return fmt.Errorf("edits[%d]: tick must be non-negative", index)
	}
	switch e.Action {
	case EditToggleBuffer:
	case EditToggleSwitch, EditHalt:
		if e.Switch == "" {
			return fmt.Errorf("edits[%d]: switch is required for %s", index, e.Action)
		}
	case "":
		return fmt.Errorf("edits[%d]: action is required", index)
	default:
		return fmt.Errorf("edits[%d]: unknown action %q", index, e.Action)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tick != nil && *a.Tick < 0 {
		return fmt.Errorf("assertions[%d]: tick must be non-negative", index)
	}
	switch a.Type {
	case AssertComplete:
	case AssertMetric:
		if _, ok := metricValue(zeroSummary, a.Name); !ok {
			return fmt.Errorf("assertions[%d]: unknown metric %q", index, a.Name)
		}
	case AssertTrain:
		if a.State == "" && a.Pos == nil {
			return fmt.Errorf("assertions[%d]: state or pos is required for train", index)
		}
		if a.State != "" {
			if _, err := train.ParseState(a.State); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertSwitch:
		if a.Switch == "" || a.State == "" {
			return fmt.Errorf("assertions[%d]: switch and state are required for switch", index)
		}
	case AssertSignal:
		if a.Switch == "" || a.Signal == "" {
			return fmt.Errorf("assertions[%d]: switch and signal are required for signal", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
