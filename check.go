package tacit

// absValue is a value on the simulated stack. fn is set when the value is a
// statically known function reference.
type absValue struct {
	fn *Function
}

// simulator walks bound instructions tracking stack height. Reads below the
// bottom count toward the deficit, which becomes the inferred input count.
type simulator struct {
	stack   []absValue
	deficit int
	// dynamic is set when a call's target was not known statically.
	dynamic bool
}

func (s *simulator) pop() absValue {
	if len(s.stack) == 0 {
		s.deficit++
		return absValue{}
	}
	v := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return v
}

func (s *simulator) push(vs ...absValue) {
	s.stack = append(s.stack, vs...)
}

func (s *simulator) apply(sig Signature) {
	for range sig.Inputs {
		s.pop()
	}
	for range sig.Outputs {
		s.push(absValue{})
	}
}

// inferSignature computes the signature of a bound instruction sequence.
// dynamic reports that inference stopped at a call whose target is only
// known at run time; err is then AmbiguousSignature.
func inferSignature(instrs []Instr) (sig Signature, dynamic bool, err error) {
	var s simulator
	for _, in := range instrs {
		if err := s.step(in); err != nil {
			return Signature{}, s.dynamic, withSpan(err, in.Span)
		}
	}
	return Sig(s.deficit, len(s.stack)), false, nil
}

func (s *simulator) step(in Instr) error {
	switch in.op {
	case opPush:
		v := in.v.(Value)
		if v.kind == KindFunc && v.IsScalar() {
			s.push(absValue{fn: v.funcs[0]})
		} else {
			s.push(absValue{})
		}
	case opPushFunc:
		s.push(absValue{fn: in.v.(*Function)})
	case opPrim:
		return s.prim(in.v.(Primitive))
	case opCall:
		s.apply(in.v.(*Function).sig)
	case opMod:
		s.apply(in.v.(*modApp).sig)
	case opArray:
		s.apply(Sig(in.v.(*Function).sig.Inputs, 1))
	case opHook:
		s.apply(in.v.(hookRef).sig)
	case opInverse:
		sig, _ := in.v.(Primitive).Signature()
		s.apply(sig)
	case opRef:
		return errorf(AmbiguousSignature, "unresolved reference to %q", in.v.(string))
	default:
		panic(in.op)
	}
	return nil
}

// prim applies a primitive, following function references through the
// stack primitives so that a later call can be resolved.
func (s *simulator) prim(p Primitive) error {
	switch p {
	case PrimDup:
		a := s.pop()
		s.push(a, a)
	case PrimOver:
		b, a := s.pop(), s.pop()
		s.push(a, b, a)
	case PrimFlip:
		b, a := s.pop(), s.pop()
		s.push(b, a)
	case PrimIdentity:
		s.push(s.pop())
	case PrimCall:
		f := s.pop()
		if f.fn == nil {
			s.dynamic = true
			return errorf(AmbiguousSignature, "cannot infer the signature of a call to a function that is not known statically")
		}
		s.apply(f.fn.sig)
	default:
		sig, _ := p.Signature()
		s.apply(sig)
	}
	return nil
}
