package tacit

import (
	"slices"
	"sync/atomic"
)

var nextFunctionID atomic.Uint64

// Function is a bound instruction sequence with its resolved signature.
// Functions are immutable; call sites share them by pointer.
type Function struct {
	id     uint64
	name   string
	instrs []Instr
	sig    Signature
	// pure is false when the body reaches a side-effect hook.
	pure bool
}

func newFunction(name string, instrs []Instr, sig Signature, pure bool) *Function {
	return &Function{
		id:     nextFunctionID.Add(1),
		name:   name,
		instrs: instrs,
		sig:    sig,
		pure:   pure,
	}
}

// PrimFunction wraps a single primitive as a function.
func PrimFunction(p Primitive) *Function {
	sig, _ := p.Signature()
	return newFunction("", []Instr{Prim(p)}, sig, true)
}

func (f *Function) Name() string { return f.name }

func (f *Function) Signature() Signature { return f.sig }

// Instrs returns a copy of the bound body.
func (f *Function) Instrs() []Instr { return slices.Clone(f.instrs) }

// asPrimitive reports whether f is exactly one primitive call.
func (f *Function) asPrimitive() (Primitive, bool) {
	if len(f.instrs) != 1 {
		return 0, false
	}
	return f.instrs[0].Primitive()
}

// isIdentity reports whether f leaves its single argument untouched.
func (f *Function) isIdentity() bool {
	if len(f.instrs) == 0 {
		return false
	}
	for _, in := range f.instrs {
		if p, ok := in.Primitive(); !ok || p != PrimIdentity {
			return false
		}
	}
	return true
}

func (f *Function) String() string {
	if f.name != "" {
		return f.name
	}
	if p, ok := f.asPrimitive(); ok {
		return p.String()
	}
	return "(" + f.bodyString() + ")"
}

func (f *Function) bodyString() string {
	if f.name != "" {
		return f.name
	}
	return formatInstrs(f.instrs)
}
