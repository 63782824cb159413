// Package validate implements the validation engine: version-aware object
// enumeration, definition retrieval, the compile-only check, the execution
// safety scan, parameter synthesis, and the execution probe.
//
// The engine never parses SQL itself. Syntax and semantics validation is
// delegated entirely to the live engine by re-submitting each object's
// defining statement under SET NOEXEC ON.
package validate

import "strings"

// ObjectType is the kind of catalog object under validation.
type ObjectType int

const (
	Procedure ObjectType = iota
	View
	ScalarFunction
	InlineFunction
	TableFunction
)

func (t ObjectType) String() string {
	switch t {
	case Procedure:
		return "procedure"
	case View:
		return "view"
	case ScalarFunction:
		return "scalar function"
	case InlineFunction:
		return "inline function"
	case TableFunction:
		return "table function"
	default:
		return "object"
	}
}

// objectTypeFromCode maps the engine's two-letter type code to an ObjectType.
func objectTypeFromCode(code string) (ObjectType, bool) {
	switch strings.TrimSpace(code) {
	case "P":
		return Procedure, true
	case "V":
		return View, true
	case "FN":
		return ScalarFunction, true
	case "IF":
		return InlineFunction, true
	case "TF":
		return TableFunction, true
	default:
		return 0, false
	}
}

// isFunction reports whether the object is any flavour of function.
func (t ObjectType) isFunction() bool {
	return t == ScalarFunction || t == InlineFunction || t == TableFunction
}

// returnsRows reports whether invoking the object yields a result set
// (table-valued functions and views) rather than a scalar.
func (t ObjectType) returnsRows() bool {
	return t == View || t == InlineFunction || t == TableFunction
}

// CatalogObject identifies one user-defined procedure, view, or function,
// together with the session flags it was originally created under.
// Immutable; scoped to one validation pass.
type CatalogObject struct {
	Schema string
	Name   string
	Type   ObjectType

	// Session flags recorded at creation time. The compile check must
	// replay these, or the engine would reject definitions that depend
	// on them.
	QuotedIdentifier bool
	AnsiNulls        bool
}

// QualifiedName returns the bracket-quoted two-part name, e.g. [dbo].[usp_x].
func (o CatalogObject) QualifiedName() string {
	return quoteIdent(o.Schema) + "." + quoteIdent(o.Name)
}

// ObjectDefinition is the reconstructed source text of one object.
// Text is empty when the definition could not be read.
type ObjectDefinition struct {
	Object CatalogObject
	Text   string
}

// FormalParameter describes one declared parameter of a procedure or
// function, in declaration order.
type FormalParameter struct {
	Name     string // includes the leading @
	TypeName string // base system type name, e.g. "nvarchar"
	IsOutput bool

	// Default is the declared default value, when one exists. The catalog
	// never reports one for T-SQL modules, so probing normally synthesizes
	// a value from the type registry instead.
	Default *string
}

// Outcome is the per-object validation result.
type Outcome struct {
	Object     CatalogObject
	Compiled   bool
	Executed   *bool  // nil when the probe was not attempted
	Diagnostic string // empty when the object is valid
}

// Summary aggregates one validation pass.
type Summary struct {
	Processed int
	Invalid   int
}

// Pass reports whether the database's procedural surface is valid.
func (s Summary) Pass() bool {
	return s.Invalid == 0
}

// quoteIdent bracket-quotes an identifier, escaping closing brackets.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
