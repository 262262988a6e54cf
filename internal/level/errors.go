package level

import (
	"errors"
	"fmt"
)

// Error codes carried by LoadError.
const (
	ErrCodeRead   = "E_LEVEL_READ"   // file missing or unreadable
	ErrCodeParse  = "E_LEVEL_PARSE"  // malformed YAML or legacy text
	ErrCodeSchema = "E_LEVEL_SCHEMA" // document rejected by the level schema
	ErrCodeGrid   = "E_LEVEL_GRID"   // map or placement cannot be built
)

// LoadError describes why a level could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Line    int // 1-based, 0 when unknown
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<level>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(code, path string, line int, err error, format string, args ...any) *LoadError {
	return &LoadError{
		Code:    code,
		Path:    path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func hasCode(err error, code string) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == code
}

// IsReadError reports whether err is a level read failure.
func IsReadError(err error) bool { return hasCode(err, ErrCodeRead) }

// IsParseError reports whether err is a level syntax failure.
func IsParseError(err error) bool { return hasCode(err, ErrCodeParse) }

// IsSchemaError reports whether err is a schema violation.
func IsSchemaError(err error) bool { return hasCode(err, ErrCodeSchema) }

// IsGridError reports whether err is a map or placement failure.
func IsGridError(err error) bool { return hasCode(err, ErrCodeGrid) }
