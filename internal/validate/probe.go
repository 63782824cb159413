package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlprobe/sqlprobe/internal/database"
	"github.com/sqlprobe/sqlprobe/internal/errs"
)

// ExecutionProber runs one best-effort live invocation of an object that
// already passed the compile check and the safety scan. Probe-induced side
// effects for misclassified objects are an accepted risk of this design:
// there is no transaction wrapping and no retry.
type ExecutionProber struct {
	db     database.Session
	params *ParameterIntrospector
	values *ValueSynthesizer
}

// NewExecutionProber creates an ExecutionProber on the given session.
func NewExecutionProber(db database.Session) *ExecutionProber {
	return &ExecutionProber{
		db:     db,
		params: NewParameterIntrospector(db),
		values: NewValueSynthesizer(),
	}
}

// Probe executes the object once with synthesized inputs and returns the
// statement it ran. A non-nil error means the engine raised one; the object
// counts as invalid.
func (p *ExecutionProber) Probe(ctx context.Context, obj CatalogObject) (string, error) {
	stmt, err := p.buildStatement(ctx, obj)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindExecFailed,
			fmt.Sprintf("cannot build probe for %s", obj.QualifiedName()), err)
	}

	if obj.Type.returnsRows() || obj.Type.isFunction() {
		rows, err := p.db.Query(ctx, stmt)
		if err != nil {
			return stmt, errs.Wrap(errs.ErrKindExecFailed, engineMessage(err), err)
		}
		rows.Close()
		return stmt, nil
	}

	if err := p.db.Exec(ctx, stmt); err != nil {
		return stmt, errs.Wrap(errs.ErrKindExecFailed, engineMessage(err), err)
	}
	return stmt, nil
}

// buildStatement renders the invocation form for the object's kind.
func (p *ExecutionProber) buildStatement(ctx context.Context, obj CatalogObject) (string, error) {
	switch {
	case obj.Type == View:
		// Views take no parameters; one row is enough to surface
		// runtime errors without scanning the whole thing.
		return "SELECT TOP 1 * FROM " + obj.QualifiedName(), nil

	case obj.Type == Procedure:
		params, err := p.params.List(ctx, obj.Schema, obj.Name)
		if err != nil {
			return "", err
		}
		return buildProcedureCall(obj, params, p.values), nil

	case obj.Type.isFunction():
		params, err := p.params.List(ctx, obj.Schema, obj.Name)
		if err != nil {
			return "", err
		}
		return buildFunctionCall(obj, params, p.values), nil

	default:
		return "", fmt.Errorf("unsupported object type %v", obj.Type)
	}
}

// buildProcedureCall renders a direct call by qualified name with every
// parameter bound by name in declaration order. Output parameters are bound
// to declared variables and passed with OUTPUT (input-output direction).
func buildProcedureCall(obj CatalogObject, params []FormalParameter, values *ValueSynthesizer) string {
	var b strings.Builder

	for _, param := range params {
		if param.IsOutput {
			fmt.Fprintf(&b, "DECLARE %s %s; ", param.Name, param.TypeName)
		}
	}

	b.WriteString("EXEC " + obj.QualifiedName())

	binds := make([]string, 0, len(params))
	for _, param := range params {
		if param.IsOutput {
			binds = append(binds, fmt.Sprintf("%s = %s OUTPUT", param.Name, param.Name))
		} else {
			binds = append(binds, fmt.Sprintf("%s = %s", param.Name, values.Literal(param)))
		}
	}
	if len(binds) > 0 {
		b.WriteString(" " + strings.Join(binds, ", "))
	}
	return b.String()
}

// buildFunctionCall wraps the function in an explicit SELECT, since
// functions cannot be invoked as bare statements.
func buildFunctionCall(obj CatalogObject, params []FormalParameter, values *ValueSynthesizer) string {
	args := make([]string, 0, len(params))
	for _, param := range params {
		args = append(args, values.Literal(param))
	}
	call := obj.QualifiedName() + "(" + strings.Join(args, ", ") + ")"

	if obj.Type == ScalarFunction {
		return "SELECT " + call
	}
	return "SELECT * FROM " + call
}
