package tacit

import "sort"

// Modifier builds a composite function from operand functions.
type Modifier int

const (
	ModDip Modifier = iota
	ModGap
	ModBoth
	ModFork
	ModBracket
	ModDistribute
	ModRows
	ModFold
	ModReduce
	ModRepeat
	ModIf
	ModTry
	ModUnder
	ModInvert
	ModFill

	numModifiers
)

type modInfo struct {
	name  string
	arity int
	// variadic modifiers take arity or more operands.
	variadic bool
}

var modTable = [numModifiers]modInfo{
	ModDip:        {"dip", 1, false},
	ModGap:        {"gap", 1, false},
	ModBoth:       {"both", 1, false},
	ModFork:       {"fork", 2, true},
	ModBracket:    {"bracket", 2, true},
	ModDistribute: {"distribute", 1, false},
	ModRows:       {"rows", 1, false},
	ModFold:       {"fold", 1, false},
	ModReduce:     {"reduce", 1, false},
	ModRepeat:     {"repeat", 1, false},
	ModIf:         {"if", 2, false},
	ModTry:        {"try", 2, false},
	ModUnder:      {"under", 2, false},
	ModInvert:     {"invert", 1, false},
	ModFill:       {"fill", 2, false},
}

var modByName = func() map[string]Modifier {
	m := make(map[string]Modifier, numModifiers)
	for k := Modifier(0); k < numModifiers; k++ {
		m[modTable[k].name] = k
	}
	return m
}()

func (m Modifier) String() string {
	if m < 0 || m >= numModifiers {
		return "unknown"
	}
	return modTable[m].name
}

// ParseModifier resolves a modifier by name.
func ParseModifier(name string) (Modifier, bool) {
	m, ok := modByName[name]
	return m, ok
}

// Modifiers lists all modifiers sorted by name.
func Modifiers() []Modifier {
	out := make([]Modifier, 0, numModifiers)
	for m := Modifier(0); m < numModifiers; m++ {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Arity returns the number of function operands m takes, and whether it
// accepts more.
func (m Modifier) Arity() (n int, variadic bool) {
	if m < 0 || m >= numModifiers {
		return 0, false
	}
	return modTable[m].arity, modTable[m].variadic
}

func (m Modifier) checkArity(n int) error {
	info := modTable[m]
	if n == info.arity || (info.variadic && n > info.arity) {
		return nil
	}
	want := "exactly"
	if info.variadic {
		want = "at least"
	}
	return errorf(StackSignatureMismatch, "%s takes %s %d functions, got %d", info.name, want, info.arity, n)
}

// ModifierSignature derives the signature of m applied to fns.
func ModifierSignature(m Modifier, fns ...*Function) (Signature, error) {
	if err := m.checkArity(len(fns)); err != nil {
		return Signature{}, err
	}
	f := fns[0].sig
	switch m {
	case ModDip:
		return Sig(f.Inputs+1, f.Outputs+1), nil
	case ModGap:
		return Sig(f.Inputs+1, f.Outputs), nil
	case ModBoth:
		return Sig(f.Inputs*2, f.Outputs*2), nil
	case ModFork, ModBracket:
		var s Signature
		for _, fn := range fns {
			s.Inputs += fn.sig.Inputs
			s.Outputs += fn.sig.Outputs
		}
		return s, nil
	case ModDistribute, ModRows:
		if f.Inputs < 1 {
			return Signature{}, errorf(StackSignatureMismatch, "%s needs a function with at least one input, got %s", m, f)
		}
		return f, nil
	case ModFold:
		if f.Outputs < 1 || f.Inputs <= f.Outputs {
			return Signature{}, errorf(StackSignatureMismatch,
				"fold needs a function with more inputs than accumulators, got %s", f)
		}
		return f, nil
	case ModReduce:
		if f != Sig(2, 1) {
			return Signature{}, errorf(StackSignatureMismatch, "reduce needs a |2.1 function, got %s", f)
		}
		return Sig(1, 1), nil
	case ModRepeat:
		if f.Inputs != f.Outputs {
			return Signature{}, errorf(StackSignatureMismatch, "repeat needs a function that keeps the stack height, got %s", f)
		}
		return Sig(f.Inputs+1, f.Outputs), nil
	case ModIf:
		joined, err := IfBranchSignature(fns[0].sig, fns[1].sig)
		if err != nil {
			return Signature{}, err
		}
		return Sig(joined.Inputs+1, joined.Outputs), nil
	case ModTry:
		h := fns[1].sig
		if h.Outputs != f.Outputs || h.Inputs > f.Inputs+1 {
			return Signature{}, errorf(StackSignatureMismatch,
				"try handler %s does not fit protected function %s", h, f)
		}
		return f, nil
	case ModUnder:
		return underSignature(fns[0], fns[1])
	case ModInvert:
		return invertSignature(fns[0])
	case ModFill:
		if f != Sig(0, 1) {
			return Signature{}, errorf(StackSignatureMismatch, "fill value function must be |0.1, got %s", f)
		}
		return fns[1].sig, nil
	default:
		panic(m)
	}
}

// IfBranchSignature joins the signatures of two branches. Outputs must
// agree; inputs are the larger of the two. The branch with fewer inputs
// reads only the top of the stack and leaves the rest untouched.
func IfBranchSignature(a, b Signature) (Signature, error) {
	if a.Outputs != b.Outputs {
		return Signature{}, errorf(StackSignatureMismatch,
			"if branches must have the same number of outputs, got %s and %s", a, b)
	}
	return Sig(max(a.Inputs, b.Inputs), a.Outputs), nil
}
