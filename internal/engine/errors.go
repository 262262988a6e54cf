package engine

import (
	"errors"
	"fmt"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
)

// EditError is returned by the manual-edit mutators.
//
// Edit errors never leave the engine in a partial state: the edit either
// applied completely or not at all.
type EditError struct {
	// Code identifies the error category.
	Code EditErrorCode

	// Op names the mutator ("toggle_buffer", "toggle_switch", "halt").
	Op string

	// Target is the addressed cell or switch letter.
	Target string

	// Err is the underlying sentinel error.
	Err error
}

// EditErrorCode categorizes edit errors.
type EditErrorCode string

const (
	// ErrCodeOutOfBounds indicates a cell outside the grid.
	ErrCodeOutOfBounds EditErrorCode = "OUT_OF_BOUNDS"

	// ErrCodeNotBufferable indicates a tile that cannot hold a buffer.
	ErrCodeNotBufferable EditErrorCode = "NOT_BUFFERABLE"

	// ErrCodeUnknownSwitch indicates a switch id that is not on the grid.
	ErrCodeUnknownSwitch EditErrorCode = "UNKNOWN_SWITCH"
)

// Error implements the error interface.
func (e *EditError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Op, e.Target, e.Err)
}

// Unwrap exposes the sentinel so errors.Is works against grid and switches
// errors.
func (e *EditError) Unwrap() error {
	return e.Err
}

func newEditError(op, target string, err error) *EditError {
	code := ErrCodeUnknownSwitch
	switch {
	case errors.Is(err, grid.ErrOutOfBounds):
		code = ErrCodeOutOfBounds
	case errors.Is(err, grid.ErrNotBufferable):
		code = ErrCodeNotBufferable
	}
	return &EditError{Code: code, Op: op, Target: target, Err: err}
}

// IsUnknownSwitch reports whether err addresses a switch that does not
// exist. Uses errors.As to handle wrapped errors.
func IsUnknownSwitch(err error) bool {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnknownSwitch
	}
	return errors.Is(err, switches.ErrUnknownSwitch)
}

// IsOutOfBounds reports whether err addresses a cell outside the grid.
func IsOutOfBounds(err error) bool {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeOutOfBounds
	}
	return errors.Is(err, grid.ErrOutOfBounds)
}
