// Package playground runs tacit programs for the browser playground and
// turns their failures into user-facing messages.
package playground

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/speakeasy-api/tacit"
	"github.com/speakeasy-api/tacit/pkg/program"
)

// FormatRunErrors turns load and execution errors into a user-facing message.
func FormatRunErrors(errs []error) string {
	if len(errs) == 0 {
		return "Program failed, but no additional details were provided."
	}

	var b strings.Builder
	b.WriteString("Program failed.\n")

	for _, err := range errs {
		loc := deriveLocation(err)
		msg, hint := classifyAndHint(err)
		details := extractDetails(err)

		fmt.Fprintf(&b, "- %s\n", msg)
		if loc != "" {
			fmt.Fprintf(&b, "  Location: %s\n", loc)
		}
		if hint != "" {
			fmt.Fprintf(&b, "  How to fix: %s\n", hint)
		}
		if details != "" {
			fmt.Fprintf(&b, "  Details: %s\n", details)
		}
	}

	return b.String()
}

func deriveLocation(err error) string {
	// Prefer the instruction that failed.
	var terr *tacit.Error
	if errors.As(err, &terr) && !terr.Span.IsZero() {
		loc := terr.Span.String()
		if len(terr.Trace) > 0 {
			loc += " (in " + strings.Join(terr.Trace, " <- ") + ")"
		}
		return loc
	}

	// Otherwise the place in the source the loader was reading.
	var perr *program.Error
	if errors.As(err, &perr) && perr.Line > 0 {
		return fmt.Sprintf("line %d:%d", perr.Line, perr.Column)
	}
	return ""
}

func classifyAndHint(err error) (msg, hint string) {
	switch tacit.KindOf(err) {
	case tacit.ShapeMismatch:
		return "Array shapes do not agree.",
			`Check the shapes involved with "shape", or wrap the operation in "fill" to pad the shorter side.`
	case tacit.StackSignatureMismatch:
		return "A function does not have the signature its context needs.",
			"Make both branches of a modifier take and leave the same number of values, or fix the declared signature."
	case tacit.AmbiguousSignature:
		return "The signature of a function could not be determined.",
			"Bind names before they are used, and declare a signature on recursive bindings or bodies that use call."
	case tacit.InvalidInversion:
		return "The function has no inverse.",
			`"under" and "invert" only accept functions built from invertible primitives; move the rest outside.`
	case tacit.IndexOutOfBounds:
		return "An index is out of range.",
			`Check the length first, or wrap the operation in "fill" to supply a default.`
	case tacit.TypeMismatch:
		return "A value has the wrong type.",
			"Arithmetic needs numbers, and joined arrays must hold the same kind of element."
	case tacit.AssertionFailed:
		return "An assertion failed.", ""
	}

	var perr *program.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Execution was cancelled.", "Simplify the program or reduce repetition counts."
	case errors.As(err, &perr):
		return "The program could not be loaded.",
			"A program is a mapping with options, bindings, stack and entry; each binding is a list of instructions."
	}
	return "Execution error.", ""
}

func extractDetails(err error) string {
	// The core message without kind, span and trace, which are shown above.
	var terr *tacit.Error
	if errors.As(err, &terr) {
		return strings.TrimSpace(terr.Msg)
	}
	var perr *program.Error
	if errors.As(err, &perr) {
		if perr.Err != nil {
			return strings.TrimSpace(perr.Msg + ": " + perr.Err.Error())
		}
		return strings.TrimSpace(perr.Msg)
	}
	return strings.TrimSpace(err.Error())
}
