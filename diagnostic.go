package tacit

import "fmt"

// Severity ranks a diagnostic. None of them stop binding or execution.
type Severity int

const (
	SeverityAdvice Severity = iota
	SeverityStyle
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityAdvice:
		return "advice"
	case SeverityStyle:
		return "style"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is an advisory message produced while binding.
type Diagnostic struct {
	Message  string
	Severity Severity
	Span     Span
}

func (d Diagnostic) String() string {
	if d.Span.IsZero() {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s at %s", d.Severity, d.Message, d.Span)
}

// cancelling maps a primitive to the one that undoes it when it directly
// follows.
var cancelling = map[Primitive]Primitive{
	PrimFlip:    PrimFlip,
	PrimReverse: PrimReverse,
	PrimNeg:     PrimNeg,
	PrimNot:     PrimNot,
	PrimBox:     PrimUnbox,
	PrimDup:     PrimPop,
}

// lint looks for redundant constructs in a bound body and in every operand
// body it contains.
func lint(instrs []Instr) []Diagnostic {
	var out []Diagnostic
	for i, in := range instrs {
		if p, ok := in.Primitive(); ok {
			if p == PrimIdentity {
				out = append(out, Diagnostic{
					Message:  "identity does nothing here",
					Severity: SeverityStyle,
					Span:     in.Span,
				})
			}
			if i > 0 {
				prev, ok := instrs[i-1].Primitive()
				if want, known := cancelling[prev]; ok && known && want == p {
					out = append(out, Diagnostic{
						Message:  fmt.Sprintf("%s %s cancels out", prev, p),
						Severity: SeverityAdvice,
						Span:     instrs[i-1].Span,
					})
				}
			}
			continue
		}
		switch in.op {
		case opMod:
			out = append(out, lintModifier(in)...)
		case opPushFunc, opArray:
			if f, ok := in.v.(*Function); ok && f.name == "" {
				out = append(out, lint(f.instrs)...)
			}
		}
	}
	return out
}

func lintModifier(in Instr) []Diagnostic {
	app := in.v.(*modApp)
	var out []Diagnostic
	switch app.mod {
	case ModDip, ModGap, ModBoth, ModUnder:
		for _, f := range app.fns {
			if f.isIdentity() {
				return []Diagnostic{{
					Message:  fmt.Sprintf("%s with identity is redundant", app.mod),
					Severity: SeverityAdvice,
					Span:     in.Span,
				}}
			}
		}
	case ModFork:
		same := true
		for _, f := range app.fns[1:] {
			if f.bodyString() != app.fns[0].bodyString() {
				same = false
				break
			}
		}
		if same {
			out = append(out, Diagnostic{
				Message:  "fork branches are identical; compute the value once and dup it",
				Severity: SeverityAdvice,
				Span:     in.Span,
			})
		}
	}
	for _, f := range app.fns {
		if f.name == "" {
			out = append(out, lint(f.instrs)...)
		}
	}
	return out
}
