package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sqlprobe/sqlprobe/internal/database"
	"github.com/sqlprobe/sqlprobe/internal/errs"
	"github.com/sqlprobe/sqlprobe/internal/logger"
	"github.com/sqlprobe/sqlprobe/internal/report"
)

// Options control a validation pass.
type Options struct {
	// Execute enables the execution probe for objects that compile and
	// pass the safety scan.
	Execute bool
}

// Validator drives one validation pass end-to-end on a single session:
// enumerate, then per object fetch → compile → (optionally) classify and
// probe. Everything is sequential; the session's flags are the only state.
type Validator struct {
	rep      *report.Reporter
	log      *logger.Logger
	opts     Options
	classify Classifier

	enum    *Enumerator
	fetch   *DefinitionFetcher
	compile *CompileValidator
	probe   *ExecutionProber
}

// New creates a Validator on the given session.
func New(db database.Session, rep *report.Reporter, log *logger.Logger, opts Options) *Validator {
	if log == nil {
		log = logger.Nop()
	}
	return &Validator{
		rep:      rep,
		log:      log,
		opts:     opts,
		classify: KeywordClassifier{},
		enum:     NewEnumerator(db, rep),
		fetch:    NewDefinitionFetcher(db),
		compile:  NewCompileValidator(db),
		probe:    NewExecutionProber(db),
	}
}

// WithClassifier substitutes the execution-safety classifier.
func (v *Validator) WithClassifier(c Classifier) *Validator {
	v.classify = c
	return v
}

// Run executes the pass and returns its Summary. Only enumeration and
// connection failures abort the pass; every per-object failure is recorded
// and processing continues, preserving partial progress and an accurate
// final count.
func (v *Validator) Run(ctx context.Context) (Summary, error) {
	objects, err := v.enum.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	v.log.With().Int("objects", len(objects)).Bool("execute", v.opts.Execute).Logger().
		Info("starting validation pass")

	var sum Summary
	for _, obj := range objects {
		sum.Processed++
		v.rep.Progress(obj.Type.String(), obj.QualifiedName())
		out := v.checkObject(ctx, obj, &sum)
		v.log.With().
			Str("object", obj.QualifiedName()).
			Bool("compiled", out.Compiled).
			Str("diagnostic", out.Diagnostic).
			Logger().Debug("object checked")
	}

	v.rep.Summary(sum.Processed, sum.Invalid)
	return sum, nil
}

// checkObject validates one object. The invalid counter increments at most
// once per object: a compile failure dominates, and an execution failure
// after a successful compile counts once.
func (v *Validator) checkObject(ctx context.Context, obj CatalogObject, sum *Summary) Outcome {
	out := Outcome{Object: obj}

	def, err := v.fetch.Fetch(ctx, obj)
	if err != nil {
		// Not counted invalid: there was nothing to compile.
		out.Diagnostic = diagnosticText(err)
		v.rep.Unreadable(obj.Schema, obj.Name, out.Diagnostic)
		v.log.ErrorWith("definition unreadable", err)
		return out
	}
	if def.Text == "" {
		return out
	}

	if err := v.compile.Validate(ctx, def); err != nil {
		sum.Invalid++
		out.Diagnostic = diagnosticText(err)
		v.rep.Failed(obj.Schema, obj.Name, out.Diagnostic)
		return out
	}
	out.Compiled = true

	if !v.opts.Execute {
		return out
	}
	if !v.classify.SideEffectFree(def.Text) {
		v.rep.Verbosef("skipping probe of %s: body may have side effects", obj.QualifiedName())
		return out
	}

	stmt, err := v.probe.Probe(ctx, obj)
	if stmt != "" {
		v.rep.Verbosef("probe: %s", stmt)
	}
	executed := err == nil
	out.Executed = &executed
	if err != nil {
		sum.Invalid++
		out.Diagnostic = diagnosticText(err)
		v.rep.Failed(obj.Schema, obj.Name, out.Diagnostic)
	}
	return out
}

// diagnosticText reduces an error chain to the text of a diagnostic line.
func diagnosticText(err error) string {
	var e *errs.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Kind == errs.ErrKindUnreadable && e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}
