// Package errors provides structured error types for the Wesley language.
//
// It defines Error, a unified type covering parser and runtime failures with
// enough metadata for display and programmatic handling.
package errors

import (
	"fmt"
	"strings"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Grammar failed to consume all tokens
	ClassEval      ErrorClass = "eval"      // Runtime condition
	ClassType      ErrorClass = "type"      // Failed unbox / wrong runtime type
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Name or overload not found
)

// Error represents any error from lexing, parsing, or evaluation.
type Error struct {
	Class   ErrorClass `json:"class"`
	Message string     `json:"message"`
	File    string     `json:"file,omitempty"`
	Line    int        `json:"line"`   // 1-based (0 if unknown)
	Column  int        `json:"column"` // 1-based (0 if unknown)
}

// New creates an error with no location. Callers fill File/Line/Column when
// a source position is known.
func New(class ErrorClass, message string) *Error {
	return &Error{Class: class, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(class ErrorClass, format string, args ...any) *Error {
	return &Error{Class: class, Message: fmt.Sprintf(format, args...)}
}

// At returns the error with its location set.
func (e *Error) At(file string, line, column int) *Error {
	e.File = file
	e.Line = line
	e.Column = column
	return e
}

// IsParse reports whether the error came from the parser.
func (e *Error) IsParse() bool { return e.Class == ClassParse }

// Error implements the error interface.
func (e *Error) Error() string {
	return e.String()
}

// String returns a single-line representation.
func (e *Error) String() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d, column %d: ", e.Line, e.Column)
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// Report renders the error the way the batch CLI prints it. Locations are
// suppressed for the synthetic "__EVAL__" filename used by the REPL and the
// eval() builtin.
func (e *Error) Report() string {
	kind := "Eval error"
	if e.Class == ClassParse {
		kind = "Parsing error"
	}
	if e.File == "" || e.File == EvalFilename {
		return fmt.Sprintf("%s: %q", kind, e.Message)
	}
	return fmt.Sprintf("%s: %q in '%s' line: %d", kind, e.Message, e.File, e.Line)
}

// EvalFilename is the synthetic filename used for REPL input and for
// strings evaluated through the eval() builtin.
const EvalFilename = "__EVAL__"
