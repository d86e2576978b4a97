package tacit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures returned from Bind and Call.
type ErrorKind int

const (
	ShapeMismatch ErrorKind = iota + 1
	StackSignatureMismatch
	AmbiguousSignature
	InvalidInversion
	IndexOutOfBounds
	TypeMismatch
	// AssertionFailed is raised by the assert primitive; its message is the
	// user's.
	AssertionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ShapeMismatch:
		return "ShapeMismatch"
	case StackSignatureMismatch:
		return "StackSignatureMismatch"
	case AmbiguousSignature:
		return "AmbiguousSignature"
	case InvalidInversion:
		return "InvalidInversion"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case TypeMismatch:
		return "TypeMismatch"
	case AssertionFailed:
		return "AssertionFailed"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrShapeMismatch          = &Error{Kind: ShapeMismatch}
	ErrStackSignatureMismatch = &Error{Kind: StackSignatureMismatch}
	ErrAmbiguousSignature     = &Error{Kind: AmbiguousSignature}
	ErrInvalidInversion       = &Error{Kind: InvalidInversion}
	ErrIndexOutOfBounds       = &Error{Kind: IndexOutOfBounds}
	ErrTypeMismatch           = &Error{Kind: TypeMismatch}
	ErrAssertionFailed        = &Error{Kind: AssertionFailed}
)

// Error is the typed failure produced by the core.
type Error struct {
	Kind ErrorKind
	Msg  string
	Span Span
	// Trace lists named functions the error passed through, innermost first.
	Trace []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if !e.Span.IsZero() {
		b.WriteString(" at ")
		b.WriteString(e.Span.String())
	}
	if len(e.Trace) > 0 {
		b.WriteString(" (in ")
		b.WriteString(strings.Join(e.Trace, " <- "))
		b.WriteByte(')')
	}
	return b.String()
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// withSpan sets the span on err when it is an *Error without one.
func withSpan(err error, span Span) error {
	var e *Error
	if errors.As(err, &e) && e.Span.IsZero() && !span.IsZero() {
		e.Span = span
	}
	return err
}

// withFrame appends a named frame to the trace of err.
func withFrame(err error, name string) error {
	var e *Error
	if errors.As(err, &e) && name != "" {
		e.Trace = append(e.Trace, name)
	}
	return err
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Span locates an instruction in source.
type Span struct {
	Binding string
	Index   int
	Line    int
	Column  int
}

func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	switch {
	case s.Line > 0:
		return fmt.Sprintf("%s:%d:%d", s.Binding, s.Line, s.Column)
	case s.Binding != "":
		return fmt.Sprintf("%s#%d", s.Binding, s.Index)
	default:
		return fmt.Sprintf("#%d", s.Index)
	}
}
