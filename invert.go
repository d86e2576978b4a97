package tacit

// selfInverse primitives undo themselves without any context.
var selfInverse = map[Primitive]bool{
	PrimIdentity: true,
	PrimNeg:      true,
	PrimNot:      true,
	PrimReverse:  true,
	PrimFlip:     true,
}

// paramInverse primitives can be inverted when their top operand is a
// constant pushed right before them.
var paramInverse = map[Primitive]bool{
	PrimAdd:    true,
	PrimSub:    true,
	PrimMul:    true,
	PrimDiv:    true,
	PrimPow:    true,
	PrimRotate: true,
}

// invertSignature is the signature of invert(f).
func invertSignature(f *Function) (Signature, error) {
	inv, err := invertFunction(f)
	if err != nil {
		return Signature{}, err
	}
	return inv.sig, nil
}

// invertFunction builds the context-free inverse of f: each step replaced
// by its inverse, in reverse order.
func invertFunction(f *Function) (*Function, error) {
	return invertWith(f, map[*Function]bool{})
}

func invertWith(f *Function, visiting map[*Function]bool) (*Function, error) {
	if visiting[f] {
		return nil, errorf(InvalidInversion, "recursive function %s cannot be inverted", f)
	}
	visiting[f] = true
	defer delete(visiting, f)

	var units [][]Instr
	for i := 0; i < len(f.instrs); i++ {
		in := f.instrs[i]
		switch in.op {
		case opPush:
			if i+1 < len(f.instrs) {
				next := f.instrs[i+1]
				if p, ok := next.Primitive(); ok && paramInverse[p] {
					units = append(units, []Instr{in, {op: opInverse, v: p, Span: next.Span}})
					i++
					continue
				}
			}
			return nil, withSpan(errorf(InvalidInversion, "a constant cannot be inverted"), in.Span)
		case opPrim:
			p := in.v.(Primitive)
			switch {
			case selfInverse[p]:
				units = append(units, []Instr{in})
			case p == PrimTranspose:
				units = append(units, []Instr{{op: opInverse, v: p, Span: in.Span}})
			case p == PrimBox:
				units = append(units, []Instr{Prim(PrimUnbox).At(in.Span)})
			case p == PrimUnbox:
				units = append(units, []Instr{Prim(PrimBox).At(in.Span)})
			default:
				return nil, withSpan(errorf(InvalidInversion, "%s has no inverse", p), in.Span)
			}
		case opCall:
			g, err := invertWith(in.v.(*Function), visiting)
			if err != nil {
				return nil, withSpan(err, in.Span)
			}
			units = append(units, []Instr{CallFunc(g).At(in.Span)})
		default:
			return nil, withSpan(errorf(InvalidInversion, "%s has no inverse", in), in.Span)
		}
	}

	var out []Instr
	for i := len(units) - 1; i >= 0; i-- {
		out = append(out, units[i]...)
	}
	sig, _, err := inferSignature(out)
	if err != nil {
		return nil, err
	}
	if sig != Sig(f.sig.Outputs, f.sig.Inputs) {
		return nil, errorf(InvalidInversion, "inverse of %s has signature %s, expected %s",
			f, sig, Sig(f.sig.Outputs, f.sig.Inputs))
	}
	name := ""
	if f.name != "" {
		name = "un" + f.name
	}
	return newFunction(name, out, sig, f.pure), nil
}

// inversePrim runs the context-free inverse of p.
func (m *machine) inversePrim(p Primitive) error {
	switch p {
	case PrimTranspose:
		v, err := m.stack.pop()
		if err != nil {
			return err
		}
		m.stack.push(v.untranspose())
		return nil
	case PrimAdd, PrimSub, PrimMul, PrimDiv, PrimPow, PrimRotate:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		r, err := inverseDyadic(p, x, y)
		if err != nil {
			return err
		}
		m.stack.push(r)
		return nil
	default:
		return errorf(InvalidInversion, "%s has no inverse", p)
	}
}

// inverseDyadic undoes r = p(x, y) for x given the same y.
func inverseDyadic(p Primitive, r, y Value) (Value, error) {
	switch p {
	case PrimAdd:
		return opSub.apply(r, y)
	case PrimSub:
		return opAdd.apply(r, y)
	case PrimMul:
		return opDiv.apply(r, y)
	case PrimDiv:
		return opMul.apply(r, y)
	case PrimPow:
		recip, err := opDiv.apply(Num(1), y)
		if err != nil {
			return Value{}, err
		}
		return opPow.apply(r, recip)
	case PrimRotate:
		n, err := y.asInt("rotation")
		if err != nil {
			return Value{}, err
		}
		return rotateRows(r, -n), nil
	default:
		return Value{}, errorf(InvalidInversion, "%s has no inverse", p)
	}
}
