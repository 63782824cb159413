// Package report emits the line-oriented diagnostic output of a validation
// pass. Every diagnostic is a single tab-delimited line with embedded
// newlines stripped, so downstream log scraping stays line-oriented.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/sqlprobe/sqlprobe/internal/errs"
)

// Verbosity controls how much of the pass is narrated on the console.
// Diagnostic lines (UNREADABLE / FAILED) are suppressed only at None.
type Verbosity int

const (
	VerbosityNone Verbosity = iota
	VerbosityQuiet
	VerbosityNormal
	VerbosityVerbose
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityNone:
		return "none"
	case VerbosityQuiet:
		return "quiet"
	case VerbosityNormal:
		return "normal"
	case VerbosityVerbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// ParseVerbosity maps a config string to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return VerbosityNone, nil
	case "quiet":
		return VerbosityQuiet, nil
	case "normal", "":
		return VerbosityNormal, nil
	case "verbose":
		return VerbosityVerbose, nil
	default:
		return VerbosityNormal, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("unknown verbosity %q (want none|quiet|normal|verbose)", s))
	}
}

// Reporter writes diagnostic and progress lines for one validation pass.
// Not safe for concurrent use; a pass is strictly sequential anyway.
type Reporter struct {
	out       io.Writer
	verbosity Verbosity
	capture   *bytes.Buffer
}

// New creates a Reporter writing to out at the given verbosity.
func New(out io.Writer, verbosity Verbosity) *Reporter {
	return &Reporter{out: out, verbosity: verbosity}
}

// EnableCapture makes the Reporter additionally record every diagnostic and
// summary line, independent of verbosity, so the full report can be
// archived after the pass.
func (r *Reporter) EnableCapture() {
	r.capture = &bytes.Buffer{}
}

// Captured returns the recorded report, or nil when capture is disabled.
func (r *Reporter) Captured() []byte {
	if r.capture == nil {
		return nil
	}
	return r.capture.Bytes()
}

// Unreadable reports an object whose definition text could not be
// retrieved. The object is skipped, not counted invalid.
func (r *Reporter) Unreadable(schema, name, detail string) {
	r.diagnostic(fmt.Sprintf("UNREADABLE\t%s.%s\t%s", schema, name, singleLine(detail)))
}

// Failed reports a compile or execution failure for one object.
func (r *Reporter) Failed(schema, name, detail string) {
	r.diagnostic(fmt.Sprintf("FAILED\t%s.%s\t%s", schema, name, singleLine(detail)))
}

// Progress emits a per-object progress line before the object is processed.
func (r *Reporter) Progress(kind, qualifiedName string) {
	if r.verbosity >= VerbosityNormal {
		fmt.Fprintf(r.out, "checking %s %s\n", kind, qualifiedName)
	}
}

// Infof emits an informational line (engine generation, probe decisions, …).
func (r *Reporter) Infof(format string, args ...any) {
	if r.verbosity >= VerbosityNormal {
		fmt.Fprintf(r.out, format+"\n", args...)
	}
}

// Verbosef emits detail only shown at the highest verbosity.
func (r *Reporter) Verbosef(format string, args ...any) {
	if r.verbosity >= VerbosityVerbose {
		fmt.Fprintf(r.out, format+"\n", args...)
	}
}

// Summary emits the end-of-pass summary line and the overall verdict.
func (r *Reporter) Summary(processed, invalid int) {
	line := fmt.Sprintf("%d objects processed, %d invalid", processed, invalid)
	verdict := color.GreenString("database is valid")
	if invalid > 0 {
		verdict = color.RedString("database is NOT valid")
	}

	if r.capture != nil {
		fmt.Fprintf(r.capture, "%s\n", line)
	}
	if r.verbosity >= VerbosityQuiet {
		fmt.Fprintf(r.out, "%s\n%s\n", line, verdict)
	}
}

// diagnostic writes a single diagnostic line, honoring verbosity for the
// console but always feeding the capture buffer.
func (r *Reporter) diagnostic(line string) {
	if r.capture != nil {
		fmt.Fprintln(r.capture, line)
	}
	if r.verbosity >= VerbosityQuiet {
		fmt.Fprintln(r.out, line)
	}
}

// singleLine strips line breaks so each diagnostic stays on one line.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
