package level

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed level.cue
var schemaCUE string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error

	// cue values are not safe for concurrent use.
	schemaMu sync.Mutex
)

func levelSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("level.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile level schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Level"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("level schema has no #Level")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate checks a level against the embedded schema. Parse and Load call
// it; it is exported for levels built in code.
func Validate(l *Level) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, def, err := levelSchema()
	if err != nil {
		return loadErr(ErrCodeSchema, l.path, 0, err, "%v", err)
	}
	doc, err := json.Marshal(l)
	if err != nil {
		return loadErr(ErrCodeSchema, l.path, 0, err, "encode level: %v", err)
	}
	// JSON is valid CUE, and compiling it keeps integers as integers.
	v := ctx.CompileBytes(doc, cue.Filename("level.json"))
	if err := v.Err(); err != nil {
		return loadErr(ErrCodeSchema, l.path, 0, err, "compile level: %v", err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return loadErr(ErrCodeSchema, l.path, 0, err, "%s", schemaMessage(err))
	}
	return nil
}

func schemaMessage(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	msg := errs[0].Error()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
	}
	return msg
}
