package level

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
)

// Section headers of the legacy text format. Each stands alone on its line.
//
//	ROWS:      row count, then COLS: column count
//	MAP:       exactly ROWS lines of tiles, read verbatim
//	SEED:      unsigned seed
//	WEATHER:   CLEAR | RAIN | FOG (or 0/1/2)
//	POLICY:    wait | crash
//	NAME:      free text
//	SWITCHES:  one line per switch: letter mode init up right down left [label0 label1]
//	TRAINS:    one line per train: spawn row col dir color [destRow destCol]
//
// GLOBAL switches use the first threshold as their global threshold. Lines
// starting with # are comments outside MAP.
var legacySections = map[string]struct{}{
	"ROWS:":     {},
	"COLS:":     {},
	"MAP:":      {},
	"SEED:":     {},
	"WEATHER:":  {},
	"POLICY:":   {},
	"NAME:":     {},
	"SWITCHES:": {},
	"TRAINS:":   {},
}

func parseLegacy(data []byte, path string) (*Level, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	lvl := &Level{}
	rows := -1
	section := ""
	for i := 0; i < len(lines); i++ {
		n := i + 1
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := legacySections[line]; ok {
			section = line
			if line != "MAP:" {
				continue
			}
			if rows < 0 {
				return nil, loadErr(ErrCodeParse, path, n, nil, "MAP: before ROWS:")
			}
			if i+rows >= len(lines) {
				return nil, loadErr(ErrCodeParse, path, n, nil,
					"map has %d rows, ROWS: says %d", len(lines)-i-1, rows)
			}
			lvl.Map = append([]string(nil), lines[i+1:i+1+rows]...)
			i += rows
			section = ""
			continue
		}

		var err error
		cur := section
		switch section {
		case "ROWS:":
			rows, err = legacyInt(line, 1, grid.MaxRows)
			section = ""
		case "COLS:":
			lvl.Cols, err = legacyInt(line, 1, grid.MaxCols)
			section = ""
		case "SEED:":
			lvl.Seed, err = strconv.ParseUint(line, 10, 64)
			section = ""
		case "WEATHER:":
			lvl.Weather = line
			section = ""
		case "POLICY:":
			lvl.Policy = line
			section = ""
		case "NAME:":
			lvl.Name = line
			section = ""
		case "SWITCHES:":
			var sw SwitchDef
			sw, err = legacySwitch(strings.Fields(line))
			lvl.Switches = append(lvl.Switches, sw)
		case "TRAINS:":
			var tr TrainDef
			tr, err = legacyTrain(strings.Fields(line), len(lvl.Trains))
			lvl.Trains = append(lvl.Trains, tr)
		default:
			return nil, loadErr(ErrCodeParse, path, n, nil, "unexpected line %q", line)
		}
		if err != nil {
			return nil, loadErr(ErrCodeParse, path, n, err, "%s %q: %v", strings.TrimSuffix(cur, ":"), line, err)
		}
	}
	if lvl.Map == nil {
		return nil, loadErr(ErrCodeParse, path, 0, nil, "missing MAP: section")
	}
	return lvl, nil
}

func legacyInt(s string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func legacySwitch(f []string) (SwitchDef, error) {
	if len(f) != 7 && len(f) != 9 {
		return SwitchDef{}, errFieldCount(len(f), "7 or 9")
	}
	nums := make([]int, 5)
	for i := range nums {
		v, err := strconv.Atoi(f[2+i])
		if err != nil {
			return SwitchDef{}, err
		}
		nums[i] = v
	}
	sw := SwitchDef{
		Letter: f[0],
		Mode:   f[1],
		Init:   nums[0],
		Thresholds: &Thresholds{
			Up:    nums[1],
			Right: nums[2],
			Down:  nums[3],
			Left:  nums[4],
		},
	}
	if m, err := switches.ParseMode(sw.Mode); err == nil && m == switches.Global {
		sw.Global = nums[1]
	}
	if len(f) == 9 {
		sw.Labels = []string{f[7], f[8]}
	}
	return sw, nil
}

func legacyTrain(f []string, index int) (TrainDef, error) {
	if len(f) != 5 && len(f) != 7 {
		return TrainDef{}, errFieldCount(len(f), "5 or 7")
	}
	spawn, err := strconv.ParseInt(f[0], 10, 64)
	if err != nil {
		return TrainDef{}, err
	}
	var nums [5]int
	for i, j := range []int{1, 2, 4} {
		if nums[i], err = strconv.Atoi(f[j]); err != nil {
			return TrainDef{}, err
		}
	}
	id := index
	tr := TrainDef{
		ID:    &id,
		Spawn: spawn,
		Start: grid.Pos{Row: nums[0], Col: nums[1]},
		Dir:   f[3],
		Color: nums[2],
	}
	if len(f) == 7 {
		for i, j := range []int{5, 6} {
			if nums[3+i], err = strconv.Atoi(f[j]); err != nil {
				return TrainDef{}, err
			}
		}
		tr.Dest = &grid.Pos{Row: nums[3], Col: nums[4]}
	}
	return tr, nil
}

func errFieldCount(got int, want string) error {
	return fmt.Errorf("has %d fields, want %s", got, want)
}
