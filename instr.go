package tacit

import (
	"fmt"
	"strings"
)

type opcode int

const (
	opPush opcode = iota
	opPushFunc
	opPrim
	opRef
	opCall
	opMod
	opArray
	opHook
	opInverse
)

func (op opcode) String() string {
	switch op {
	case opPush:
		return "push"
	case opPushFunc:
		return "pushfunc"
	case opPrim:
		return "prim"
	case opRef:
		return "ref"
	case opCall:
		return "call"
	case opMod:
		return "mod"
	case opArray:
		return "array"
	case opHook:
		return "hook"
	case opInverse:
		return "inverse"
	default:
		panic(op)
	}
}

// Instr is one step of a function body. Parsers build raw instructions with
// the constructors below; Bind resolves references, binds operand bodies and
// returns instructions the machine can run.
type Instr struct {
	op   opcode
	v    any
	Span Span
}

// modApp is a modifier applied to operand functions. Raw applications carry
// bodies only; bound ones carry functions.
type modApp struct {
	mod    Modifier
	bodies [][]Instr
	fns    []*Function
	sig    Signature
	// inverse is the context-free inverse built for invert.
	inverse *Function
}

type hookRef struct {
	name string
	sig  Signature
}

// Push pushes a constant.
func Push(v Value) Instr { return Instr{op: opPush, v: v} }

// PushFunc pushes a reference to an anonymous function with the given body.
func PushFunc(body ...Instr) Instr { return Instr{op: opPushFunc, v: body} }

// Prim calls a primitive.
func Prim(p Primitive) Instr { return Instr{op: opPrim, v: p} }

// Ref names another binding. Bind classifies it as a constant push or a call.
func Ref(name string) Instr { return Instr{op: opRef, v: name} }

// CallFunc calls an already bound function.
func CallFunc(f *Function) Instr { return Instr{op: opCall, v: f} }

// Mod applies a modifier to operand bodies.
func Mod(m Modifier, operands ...[]Instr) Instr {
	return Instr{op: opMod, v: &modApp{mod: m, bodies: operands}}
}

// Array runs body and collects every value it leaves into one array.
func Array(body ...Instr) Instr { return Instr{op: opArray, v: body} }

// Hook invokes a registered side-effect hook with a declared signature.
func Hook(name string, sig Signature) Instr {
	return Instr{op: opHook, v: hookRef{name: name, sig: sig}}
}

// Body is a convenience for building operand lists.
func Body(instrs ...Instr) []Instr { return instrs }

// At returns i located at span.
func (i Instr) At(span Span) Instr {
	i.Span = span
	return i
}

// Primitive reports the primitive an instruction calls, if any.
func (i Instr) Primitive() (Primitive, bool) {
	p, ok := i.v.(Primitive)
	return p, ok && i.op == opPrim
}

func (i Instr) String() string {
	switch i.op {
	case opPush:
		return i.v.(Value).String()
	case opPushFunc:
		if f, ok := i.v.(*Function); ok {
			return "(" + f.bodyString() + ")"
		}
		return "(" + formatInstrs(i.v.([]Instr)) + ")"
	case opPrim:
		return i.v.(Primitive).String()
	case opRef:
		return i.v.(string)
	case opCall:
		return i.v.(*Function).String()
	case opMod:
		app := i.v.(*modApp)
		parts := make([]string, 0, len(app.bodies))
		if app.fns != nil {
			for _, f := range app.fns {
				parts = append(parts, f.bodyString())
			}
		} else {
			for _, b := range app.bodies {
				parts = append(parts, formatInstrs(b))
			}
		}
		return fmt.Sprintf("%s(%s)", app.mod, strings.Join(parts, "; "))
	case opArray:
		if f, ok := i.v.(*Function); ok {
			return "[" + f.bodyString() + "]"
		}
		return "[" + formatInstrs(i.v.([]Instr)) + "]"
	case opHook:
		return "&" + i.v.(hookRef).name
	case opInverse:
		return "un" + i.v.(Primitive).String()
	default:
		panic(i.op)
	}
}

func formatInstrs(instrs []Instr) string {
	parts := make([]string, len(instrs))
	for k, in := range instrs {
		parts[k] = in.String()
	}
	return strings.Join(parts, " ")
}
