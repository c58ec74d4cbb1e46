// errors.go — error taxonomy and caret-snippet rendering.
//
// Three structured error kinds cross the host boundary:
//
//   - *LexError     — malformed token; aborts the compile unit.
//   - *ParseError   — unexpected token; carries the offending token; aborts
//     the compile unit (no resynchronization).
//   - *RuntimeError — execution failure with a Kind discriminant; unwinds the
//     entire top-level execution (the language has no catch construct).
//
// WrapErrorWithSource turns any of these into a readable, Python-style
// snippet with a caret under the offending column:
//
//	PARSE ERROR at 3:12: expected ')' after arguments
//
//	   2 | var[x] = f(1, 2
//	   3 | print(x)
//	     |            ^
//
// Other error values pass through unchanged. Line is 1-based; Col is 0-based
// in the structs and rendered 1-based.
package gilgamesh

import (
	"errors"
	"fmt"
	"strings"
)

// LexError is a fatal tokenization failure.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEX ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// ParseError is a fatal syntax failure carrying the offending token.
type ParseError struct {
	Line  int
	Col   int
	Msg   string
	Tok   Token
	AtEOF bool // interactive mode: the parser ran out of input
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// IsIncomplete reports whether err is a parse error caused by running out of
// input in interactive mode, meaning a REPL should prompt for more lines.
func IsIncomplete(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.AtEOF
}

// ErrKind discriminates runtime failures.
type ErrKind int

const (
	ErrGeneric ErrKind = iota
	ErrUndefinedVariable
	ErrNotCallable
	ErrNullPropertyAccess
	ErrImportResolution
	ErrInterrupted
)

func (k ErrKind) String() string {
	switch k {
	case ErrUndefinedVariable:
		return "undefined variable"
	case ErrNotCallable:
		return "not callable"
	case ErrNullPropertyAccess:
		return "null property access"
	case ErrImportResolution:
		return "import resolution"
	case ErrInterrupted:
		return "interrupted"
	default:
		return "runtime"
	}
}

// RuntimeError is a fatal execution failure. Line is the source line of the
// statement or expression that raised it (0 when unknown).
type RuntimeError struct {
	Kind ErrKind
	Msg  string
	Line int
	Col  int
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("RUNTIME ERROR at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("RUNTIME ERROR: %s", e.Msg)
}

func rtErr(kind ErrKind, line int, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line}
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes the three structured error
// kinds and leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "LEX ERROR", e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "PARSE ERROR", e.Line, e.Col+1, e.Msg))
	case *RuntimeError:
		if e.Line <= 0 {
			return err
		}
		return fmt.Errorf("%s", snippet(src, "RUNTIME ERROR", e.Line, e.Col+1, e.Msg))
	default:
		return err
	}
}

// snippet builds the header plus up to one line of context on either side,
// with a caret under the 1-based column. Out-of-range coordinates are clamped
// so rendering never fails.
func snippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
