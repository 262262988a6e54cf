// Package level loads level descriptions into engine inputs.
//
// Two formats are accepted:
//
//   - YAML documents (strict: unknown fields are rejected)
//   - the legacy text format with ROWS:/COLS:/MAP: and optional SEED:,
//     WEATHER:, POLICY:, NAME:, SWITCHES:, TRAINS: sections
//
// The engine tuning keys recovery, limits and strict_progress exist only in
// YAML. Set strict_progress: false for maps whose routes must lead away from
// a destination before reaching it; the default guard holds such trains in
// place.
//
// Both are normalised into a Level and checked against the embedded CUE
// schema before anything is built. All failures are *LoadError values.
package level

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MZiaRAwan/PF-Project/internal/collision"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/router"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
)

// Format selects a parser.
type Format int

const (
	FormatAuto Format = iota
	FormatYAML
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatLegacy:
		return "legacy"
	}
	return "auto"
}

// Level is a normalised level description.
type Level struct {
	Name           string      `yaml:"name,omitempty" json:"name,omitempty"`
	Seed           uint64      `yaml:"seed,omitempty" json:"seed,omitempty"`
	Weather        string      `yaml:"weather,omitempty" json:"weather,omitempty"`
	Policy         string      `yaml:"policy,omitempty" json:"policy,omitempty"`
	Recovery       *bool       `yaml:"recovery,omitempty" json:"recovery,omitempty"`
	Limits         *LimitsDef  `yaml:"limits,omitempty" json:"limits,omitempty"`
	StrictProgress *bool       `yaml:"strict_progress,omitempty" json:"strict_progress,omitempty"`
	Cols           int         `yaml:"cols,omitempty" json:"cols,omitempty"`
	Map            []string    `yaml:"map" json:"map"`
	Switches       []SwitchDef `yaml:"switches,omitempty" json:"switches,omitempty"`
	Trains         []TrainDef  `yaml:"trains,omitempty" json:"trains,omitempty"`

	path   string
	format Format
	source []byte
}

// LimitsDef overrides stuck-train recovery thresholds. Omitted fields keep
// train.DefaultLimits.
type LimitsDef struct {
	Repeat      int   `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Oscillation int   `yaml:"oscillation,omitempty" json:"oscillation,omitempty"`
	NoProgress  int   `yaml:"no_progress,omitempty" json:"no_progress,omitempty"`
	Lifetime    int64 `yaml:"lifetime,omitempty" json:"lifetime,omitempty"`
	Close       int   `yaml:"close,omitempty" json:"close,omitempty"`
}

// SwitchDef configures the switch drawn with Letter on the map.
type SwitchDef struct {
	Letter     string      `yaml:"letter" json:"letter"`
	Mode       string      `yaml:"mode,omitempty" json:"mode,omitempty"`
	Init       int         `yaml:"init,omitempty" json:"init,omitempty"`
	Thresholds *Thresholds `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	Global     int         `yaml:"global,omitempty" json:"global,omitempty"`
	Labels     []string    `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Thresholds are the per-direction entry counts that queue a flip. Zero
// disables a direction.
type Thresholds struct {
	Up    int `yaml:"up,omitempty" json:"up,omitempty"`
	Right int `yaml:"right,omitempty" json:"right,omitempty"`
	Down  int `yaml:"down,omitempty" json:"down,omitempty"`
	Left  int `yaml:"left,omitempty" json:"left,omitempty"`
}

// TrainDef schedules one train. A missing ID is the train's index; a missing
// Dest is assigned by the engine.
type TrainDef struct {
	ID    *int      `yaml:"id,omitempty" json:"id,omitempty"`
	Spawn int64     `yaml:"spawn,omitempty" json:"spawn,omitempty"`
	Start grid.Pos  `yaml:"start" json:"start"`
	Dir   string    `yaml:"dir,omitempty" json:"dir,omitempty"`
	Dest  *grid.Pos `yaml:"dest,omitempty" json:"dest,omitempty"`
	Color int       `yaml:"color,omitempty" json:"color,omitempty"`
}

// Path returns the file the level was loaded from, "" for Parse.
func (l *Level) Path() string { return l.path }

// Format returns the format the level was parsed from.
func (l *Level) Format() Format { return l.format }

// Source returns the raw level text.
func (l *Level) Source() []byte { return l.source }

// Load reads, parses and validates a level file. The format follows the
// extension (.yaml/.yml, .lvl/.txt) and is sniffed otherwise.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(ErrCodeRead, path, 0, err, "read level: %v", err)
	}
	format := FormatAuto
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".lvl", ".txt":
		format = FormatLegacy
	}
	return parse(data, format, path)
}

// Parse parses and validates level text.
func Parse(data []byte, format Format) (*Level, error) {
	return parse(data, format, "")
}

func parse(data []byte, format Format, path string) (*Level, error) {
	if format == FormatAuto {
		format = Detect(data)
	}
	var (
		lvl *Level
		err error
	)
	if format == FormatLegacy {
		lvl, err = parseLegacy(data, path)
	} else {
		lvl, err = parseYAML(data, path)
	}
	if err != nil {
		return nil, err
	}
	lvl.path = path
	lvl.format = format
	lvl.source = data
	lvl.normalize()
	if err := Validate(lvl); err != nil {
		return nil, err
	}
	return lvl, nil
}

// Detect returns FormatLegacy when the first significant line is a legacy
// section header, FormatYAML otherwise.
func Detect(data []byte) Format {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := legacySections[line]; ok {
			return FormatLegacy
		}
		return FormatYAML
	}
	return FormatYAML
}

func parseYAML(data []byte, path string) (*Level, error) {
	var lvl Level
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lvl); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, loadErr(ErrCodeParse, path, 0, err, "empty level")
		}
		return nil, loadErr(ErrCodeParse, path, 0, err, "parse YAML: %v", err)
	}
	return &lvl, nil
}

// normalize rewrites recognised spellings to their canonical form. Values
// that do not parse are left alone for the schema to report.
func (l *Level) normalize() {
	if w, err := router.ParseWeather(l.Weather); err == nil && l.Weather != "" {
		l.Weather = w.String()
	}
	if p, err := collision.ParsePolicy(l.Policy); err == nil && l.Policy != "" {
		l.Policy = p.String()
	}
	for i := range l.Switches {
		sw := &l.Switches[i]
		sw.Letter = strings.ToUpper(strings.TrimSpace(sw.Letter))
		if m, err := switches.ParseMode(sw.Mode); err == nil && sw.Mode != "" {
			sw.Mode = m.String()
		}
		for j, label := range sw.Labels {
			sw.Labels[j] = switches.NormalizeLabel(label)
		}
	}
	for i := range l.Trains {
		tr := &l.Trains[i]
		if d, err := grid.ParseDirection(tr.Dir); err == nil && tr.Dir != "" {
			tr.Dir = d.String()
		}
	}
}
