package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MZiaRAwan/PF-Project/internal/canon"
	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/level"
	"github.com/MZiaRAwan/PF-Project/internal/runner"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// LevelCheck is the validation outcome of one level file.
type LevelCheck struct {
	Path     string `json:"path"`
	Valid    bool   `json:"valid"`
	Name     string `json:"name,omitempty"`
	Format   string `json:"format,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Cols     int    `json:"cols,omitempty"`
	Switches int    `json:"switches,omitempty"`
	Trains   int    `json:"trains,omitempty"`
	Digest   string `json:"digest,omitempty"`
	Code     string `json:"code,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ValidationResult is the validate command's output.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Levels []LevelCheck `json:"levels"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <level>...",
		Short: "Check level files without running them",
		Long: `Parse each level file (YAML or legacy text), check it against the
level schema and build its grid, switches and trains.

Exit codes:
  0 - All levels valid
  1 - One or more levels invalid

Examples:
  trainsim validate levels/*.yaml
  trainsim validate --format json levels/legacy.lvl`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	result := ValidationResult{Valid: true, Levels: make([]LevelCheck, 0, len(paths))}
	for _, path := range paths {
		out.VerboseLog("Validating level: %s", path)
		check := checkLevel(path)
		if !check.Valid {
			result.Valid = false
		}
		result.Levels = append(result.Levels, check)
	}

	if out.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			first := firstInvalid(result.Levels)
			resp.Status = "error"
			resp.Error = &CLIError{Code: first.Code, Message: first.Message}
		}
		enc := json.NewEncoder(out.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		w := out.Writer
		for _, c := range result.Levels {
			if c.Valid {
				fmt.Fprintf(w, "✓ %s: %s (%s, %dx%d, %d switches, %d trains)\n",
					c.Path, c.Name, c.Format, c.Rows, c.Cols, c.Switches, c.Trains)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", c.Path)
			if c.Line > 0 {
				fmt.Fprintf(w, "  line %d\n", c.Line)
			}
			fmt.Fprintf(w, "  %s: %s\n", c.Code, c.Message)
		}
	}

	if !result.Valid {
		invalid := 0
		for _, c := range result.Levels {
			if !c.Valid {
				invalid++
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d level(s)", invalid))
	}
	return nil
}

func checkLevel(path string) LevelCheck {
	check := LevelCheck{Path: path}
	lvl, err := level.Load(path)
	if err == nil {
		var e *engine.Engine
		e, err = lvl.Engine()
		if err == nil {
			snap := e.Snapshot()
			check.Valid = true
			check.Name = runner.Name(lvl)
			check.Format = lvl.Format().String()
			check.Rows = e.Grid().Rows()
			check.Cols = e.Grid().Cols()
			check.Switches = len(snap.Switches)
			check.Trains = len(snap.Trains)
			check.Digest = canon.LevelDigest(lvl.Source())
			return check
		}
	}

	check.Code = ErrorCode(err)
	check.Message = err.Error()
	var le *level.LoadError
	if errors.As(err, &le) {
		check.Line = le.Line
		check.Message = le.Message
	}
	return check
}

func firstInvalid(checks []LevelCheck) LevelCheck {
	for _, c := range checks {
		if !c.Valid {
			return c
		}
	}
	return LevelCheck{}
}
