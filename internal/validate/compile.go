package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sqlprobe/sqlprobe/internal/database"
	"github.com/sqlprobe/sqlprobe/internal/errs"
)

// CompileValidator re-submits an object's defining statement under
// SET NOEXEC ON, so the engine compiles it without persisting or executing
// anything. Session flags are replayed from the object's recorded values
// first, then restored to a fixed baseline — OFF / ON — not to whatever the
// session had before.
type CompileValidator struct {
	db database.Session
}

// NewCompileValidator creates a CompileValidator on the given session.
func NewCompileValidator(db database.Session) *CompileValidator {
	return &CompileValidator{db: db}
}

// sessionResetSequence forces the session back to the compile baseline.
// Run before every check: a failed check leaves the restore statements
// unexecuted, and the next object must not inherit that poisoned state.
var sessionResetSequence = []string{
	"SET NOEXEC OFF",
	"SET PARSEONLY OFF",
	"SET QUOTED_IDENTIFIER OFF",
	"SET ANSI_NULLS ON",
}

// Validate runs the compile-only check for one definition.
//
// The statements execute strictly in order on the one session. On the first
// engine error the remaining restoration statements are not attempted and
// the error is returned; the pre-check reset repairs the session before the
// next object.
func (v *CompileValidator) Validate(ctx context.Context, def ObjectDefinition) error {
	for _, stmt := range sessionResetSequence {
		if err := v.db.Exec(ctx, stmt); err != nil {
			return errs.Wrap(errs.ErrKindCompileFailed, "session reset failed", err)
		}
	}

	obj := def.Object
	sequence := []string{
		"SET NOEXEC ON",
		"SET QUOTED_IDENTIFIER " + onOff(obj.QuotedIdentifier),
		"SET ANSI_NULLS " + onOff(obj.AnsiNulls),
		def.Text,
		"SET QUOTED_IDENTIFIER OFF",
		"SET ANSI_NULLS ON",
		"SET NOEXEC OFF",
		"SET PARSEONLY OFF",
	}

	for _, stmt := range sequence {
		if err := v.db.Exec(ctx, stmt); err != nil {
			return errs.Wrap(errs.ErrKindCompileFailed, engineMessage(err), err)
		}
	}
	return nil
}

func onOff(flag bool) string {
	if flag {
		return "ON"
	}
	return "OFF"
}

// engineMessage extracts the engine-reported message, with the line number
// when the driver carries one, without importing the driver package.
func engineMessage(err error) string {
	var detail interface {
		SQLErrorLineNo() int32
		SQLErrorMessage() string
	}
	if errors.As(err, &detail) {
		return fmt.Sprintf("line %d: %s", detail.SQLErrorLineNo(), detail.SQLErrorMessage())
	}
	return err.Error()
}
