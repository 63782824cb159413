package validate

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValueSynthesizer maps base type names to placeholder SQL literals for
// probe invocations. The mapping is a closed, finite table: anything
// unrecognized falls back to NULL.
type ValueSynthesizer struct {
	// now is a seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewValueSynthesizer returns a synthesizer using the wall clock.
func NewValueSynthesizer() *ValueSynthesizer {
	return &ValueSynthesizer{now: time.Now}
}

// Literal renders the placeholder for one parameter as a SQL literal.
// A declared default, when present, is used verbatim instead.
func (v *ValueSynthesizer) Literal(p FormalParameter) string {
	if p.Default != nil {
		return *p.Default
	}
	return v.literalForType(p.TypeName)
}

func (v *ValueSynthesizer) literalForType(typeName string) string {
	switch strings.ToLower(typeName) {
	case "char", "varchar", "nchar", "nvarchar", "text", "ntext", "sysname":
		return "N'X'"
	case "bit", "tinyint", "smallint", "int", "bigint",
		"decimal", "numeric", "money", "smallmoney", "float", "real":
		return "1"
	case "date", "time", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "timestamp":
		// yyyymmdd hh:mm:ss parses under every DATEFORMAT setting
		return "'" + v.now().UTC().Format("20060102 15:04:05") + "'"
	case "uniqueidentifier":
		// fresh per call — probe invocations must never collide
		return "'" + uuid.NewString() + "'"
	default:
		// binary, image, xml, CLR types, anything unknown
		return "NULL"
	}
}
