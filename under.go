package tacit

// frameKind tags an inversion context.
type frameKind int

const (
	framePrim frameKind = iota
	frameDip
	frameFill
)

// inversionContext records what one forward step of under discarded, so the
// step can be undone once the inner function has replaced its result.
type inversionContext struct {
	kind frameKind
	prim Primitive
	// orig is the argument the step transformed.
	orig Value
	// param is the captured top operand of dyadic steps.
	param Value
	// idx holds the rows of orig that the result came from.
	idx    []int
	scalar bool
	// inner holds the contexts of a dip or fill body; fill is its value.
	inner *contextStack
	fill  Value
}

// contextStack is a LIFO of inversion contexts. Undoing pops them in the
// reverse of the order the forward pass pushed them.
type contextStack struct {
	frames []inversionContext
}

func (cs *contextStack) push(c inversionContext) {
	cs.frames = append(cs.frames, c)
}

func (cs *contextStack) pop() (inversionContext, bool) {
	if len(cs.frames) == 0 {
		return inversionContext{}, false
	}
	c := cs.frames[len(cs.frames)-1]
	cs.frames = cs.frames[:len(cs.frames)-1]
	return c, true
}

func (cs *contextStack) len() int { return len(cs.frames) }

// underPrims lists the primitives that can be undone, with the signature of
// their undo step.
var underPrims = map[Primitive]Signature{
	PrimIdentity:  Sig(1, 1),
	PrimNeg:       Sig(1, 1),
	PrimNot:       Sig(1, 1),
	PrimReverse:   Sig(1, 1),
	PrimTranspose: Sig(1, 1),
	PrimBox:       Sig(1, 1),
	PrimUnbox:     Sig(1, 1),
	PrimDeshape:   Sig(1, 1),
	PrimFirst:     Sig(1, 1),
	PrimLast:      Sig(1, 1),
	PrimFlip:      Sig(2, 2),
	PrimAdd:       Sig(1, 1),
	PrimSub:       Sig(1, 1),
	PrimMul:       Sig(1, 1),
	PrimDiv:       Sig(1, 1),
	PrimPow:       Sig(1, 1),
	PrimRotate:    Sig(1, 1),
	PrimTake:      Sig(1, 1),
	PrimDrop:      Sig(1, 1),
	PrimSelect:    Sig(1, 1),
	PrimKeep:      Sig(1, 1),
	PrimReshape:   Sig(1, 1),
}

// underSignature is the signature of under(f, g): f forward, then g, then
// the undo of f.
func underSignature(f, g *Function) (Signature, error) {
	undo, err := undoSignature(f, map[*Function]bool{})
	if err != nil {
		return Signature{}, err
	}
	return f.sig.Compose(g.sig).Compose(undo), nil
}

// undoSignature statically checks that every step of f can be undone and
// returns the signature of the whole undo pass.
func undoSignature(f *Function, visiting map[*Function]bool) (Signature, error) {
	if visiting[f] {
		return Signature{}, errorf(InvalidInversion, "recursive function %s cannot be undone", f)
	}
	visiting[f] = true
	defer delete(visiting, f)

	steps := make([]Signature, 0, len(f.instrs))
	for _, in := range f.instrs {
		sig, skip, err := undoStepSignature(in, visiting)
		if err != nil {
			return Signature{}, withSpan(err, in.Span)
		}
		if !skip {
			steps = append(steps, sig)
		}
	}
	var total Signature
	for i := len(steps) - 1; i >= 0; i-- {
		total = total.Compose(steps[i])
	}
	return total, nil
}

func undoStepSignature(in Instr, visiting map[*Function]bool) (sig Signature, skip bool, err error) {
	switch in.op {
	case opPush, opPushFunc:
		return Signature{}, true, nil
	case opPrim:
		p := in.v.(Primitive)
		sig, ok := underPrims[p]
		if !ok {
			return Signature{}, false, errorf(InvalidInversion, "%s cannot be undone", p)
		}
		return sig, false, nil
	case opCall:
		sig, err := undoSignature(in.v.(*Function), visiting)
		return sig, false, err
	case opMod:
		app := in.v.(*modApp)
		switch app.mod {
		case ModDip:
			inner, err := undoSignature(app.fns[0], visiting)
			if err != nil {
				return Signature{}, false, err
			}
			return Sig(inner.Inputs+1, inner.Outputs+1), false, nil
		case ModFill:
			sig, err := undoSignature(app.fns[1], visiting)
			return sig, false, err
		default:
			return Signature{}, false, errorf(InvalidInversion, "%s cannot be undone", app.mod)
		}
	default:
		return Signature{}, false, errorf(InvalidInversion, "%s cannot be undone", in)
	}
}

// under runs f forward while recording contexts, runs g on the result and
// then undoes f with g's output in place of f's.
func (m *machine) under(f, g *Function) error {
	ctx := &contextStack{}
	if err := m.forward(f, ctx); err != nil {
		return err
	}
	if err := m.call(g); err != nil {
		return err
	}
	return m.undoAll(ctx)
}

// forward runs f, pushing one context per undoable step onto ctx. Calls of
// user functions record into the same stack.
func (m *machine) forward(f *Function, ctx *contextStack) error {
	if m.depth >= m.env.opts.MaxCallDepth {
		return errorf(StackSignatureMismatch, "call depth exceeded %d", m.env.opts.MaxCallDepth)
	}
	m.depth++
	defer func() { m.depth-- }()
	for _, in := range f.instrs {
		if err := m.forwardStep(in, ctx); err != nil {
			return withFrame(withSpan(err, in.Span), f.name)
		}
	}
	return nil
}

func (m *machine) forwardStep(in Instr, ctx *contextStack) error {
	switch in.op {
	case opPush, opPushFunc:
		return m.exec(in)
	case opPrim:
		return m.forwardPrim(in.v.(Primitive), ctx)
	case opCall:
		return m.forward(in.v.(*Function), ctx)
	case opMod:
		app := in.v.(*modApp)
		switch app.mod {
		case ModDip:
			hidden, err := m.stack.pop()
			if err != nil {
				return err
			}
			inner := &contextStack{}
			err = m.forward(app.fns[0], inner)
			m.stack.push(hidden)
			if err != nil {
				return err
			}
			ctx.push(inversionContext{kind: frameDip, inner: inner})
			return nil
		case ModFill:
			fv, err := m.fillValue(app.fns[0])
			if err != nil {
				return err
			}
			inner := &contextStack{}
			release := m.fills.acquire(fv)
			err = m.forward(app.fns[1], inner)
			release()
			if err != nil {
				return err
			}
			ctx.push(inversionContext{kind: frameFill, fill: fv, inner: inner})
			return nil
		}
	}
	return errorf(InvalidInversion, "%s cannot be undone", in)
}

// forwardPrim runs p and records what its undo needs.
func (m *machine) forwardPrim(p Primitive, ctx *contextStack) error {
	if _, ok := underPrims[p]; !ok {
		return errorf(InvalidInversion, "%s cannot be undone", p)
	}
	frame := inversionContext{kind: framePrim, prim: p}
	switch p {
	case PrimDeshape, PrimFirst, PrimLast:
		orig, err := m.stack.top()
		if err != nil {
			return err
		}
		frame.orig = orig
	case PrimAdd, PrimSub, PrimMul, PrimDiv, PrimPow, PrimRotate:
		param, err := m.stack.top()
		if err != nil {
			return err
		}
		frame.param = param
	case PrimTake, PrimDrop, PrimReshape:
		args, err := m.stack.peekN(2)
		if err != nil {
			return err
		}
		frame.orig, frame.param = args[0], args[1]
	case PrimSelect:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		r, idx, err := selectValue(x, y)
		if err != nil {
			return err
		}
		frame.orig, frame.idx, frame.scalar = x, idx, y.IsScalar()
		m.stack.push(r)
		ctx.push(frame)
		return nil
	case PrimKeep:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		counts, err := keepCounts(x, y, &m.fills)
		if err != nil {
			return err
		}
		for i, c := range counts {
			if c > 1 {
				return errorf(InvalidInversion, "keep can only be undone with a boolean mask, got count %d", c)
			}
			if c == 1 {
				frame.idx = append(frame.idx, i)
			}
		}
		frame.orig = x
		m.stack.push(x.gather(frame.idx))
		ctx.push(frame)
		return nil
	}
	if err := m.prim(p); err != nil {
		return err
	}
	ctx.push(frame)
	return nil
}

// undoAll undoes every context in ctx, newest first.
func (m *machine) undoAll(ctx *contextStack) error {
	for {
		frame, ok := ctx.pop()
		if !ok {
			return nil
		}
		if err := m.undo(frame); err != nil {
			return err
		}
	}
}

func (m *machine) undo(c inversionContext) error {
	switch c.kind {
	case frameDip:
		hidden, err := m.stack.pop()
		if err != nil {
			return err
		}
		defer m.stack.push(hidden)
		return m.undoAll(c.inner)
	case frameFill:
		release := m.fills.acquire(c.fill)
		defer release()
		return m.undoAll(c.inner)
	}

	if c.prim == PrimFlip {
		args, err := m.stack.popN(2)
		if err != nil {
			return err
		}
		m.stack.push(args[1], args[0])
		return nil
	}
	r, err := m.stack.pop()
	if err != nil {
		return err
	}
	out, err := undoPrim(c, r)
	if err != nil {
		return err
	}
	m.stack.push(out)
	return nil
}

// undoPrim rebuilds the argument of a primitive step from its replaced
// result r.
func undoPrim(c inversionContext, r Value) (Value, error) {
	switch c.prim {
	case PrimIdentity:
		return r, nil
	case PrimNeg:
		return opNeg.apply(r)
	case PrimNot:
		return opNot.apply(r)
	case PrimReverse:
		return r.Reverse(), nil
	case PrimTranspose:
		return r.untranspose(), nil
	case PrimBox:
		if r.kind == KindBox && r.IsScalar() {
			return r.boxes[0], nil
		}
		return r, nil
	case PrimUnbox:
		return Box(r), nil
	case PrimDeshape:
		if r.ElementCount() != c.orig.ElementCount() {
			return Value{}, errorf(ShapeMismatch, "cannot restore shape %s from %d elements",
				c.orig.shape, r.ElementCount())
		}
		return r.withShape(c.orig.shape), nil
	case PrimFirst, PrimLast:
		if c.orig.Len() == 0 {
			return c.orig, nil
		}
		i := 0
		if c.prim == PrimLast {
			i = c.orig.Len() - 1
		}
		return setRows(c.orig, []int{i}, r.withShape(prependDim(1, r.shape)))
	case PrimAdd, PrimSub, PrimMul, PrimDiv, PrimPow, PrimRotate:
		return inverseDyadic(c.prim, r, c.param)
	case PrimTake, PrimDrop:
		ns, err := c.param.asInts("count")
		if err != nil {
			return Value{}, err
		}
		return untakeAxes(c.orig, ns, r, c.prim == PrimTake)
	case PrimSelect:
		if c.scalar {
			r = r.withShape(prependDim(1, r.shape))
		}
		return setRows(c.orig, c.idx, r)
	case PrimKeep:
		if len(c.idx) == 0 && r.Len() == 0 && !r.IsScalar() {
			return c.orig, nil
		}
		return setRows(c.orig, c.idx, r)
	case PrimReshape:
		return unreshape(c.orig, c.param, r)
	default:
		return Value{}, errorf(InvalidInversion, "%s cannot be undone", c.prim)
	}
}

// untakeAxes puts the rows of repl back where take (or drop) found them in
// orig, axis by axis. Rows of repl that came from the fill are discarded.
func untakeAxes(orig Value, ns []int, repl Value, take bool) (Value, error) {
	l, n := orig.Len(), ns[0]
	var want, off int
	switch {
	case take && n >= 0:
		want, off = n, 0
	case take:
		want, off = -n, l+n
	case n >= 0:
		want, off = max(l-n, 0), n
	default:
		want, off = max(l+n, 0), 0
	}
	if repl.IsScalar() || repl.Len() != want {
		return Value{}, errorf(ShapeMismatch, "expected %d rows to put back, got %s", want, repl.shape)
	}
	idx := make([]int, 0, want)
	rows := make([]Value, 0, want)
	for j := 0; j < want; j++ {
		i := j + off
		if i < 0 || i >= l {
			continue
		}
		row, err := repl.Row(j)
		if err != nil {
			return Value{}, err
		}
		if len(ns) > 1 {
			origRow, err := orig.Row(i)
			if err != nil {
				return Value{}, err
			}
			if row, err = untakeAxes(origRow, ns[1:], row, take); err != nil {
				return Value{}, err
			}
		}
		idx = append(idx, i)
		rows = append(rows, row)
	}
	if len(idx) == 0 {
		return orig, nil
	}
	put, err := FromRows(rows)
	if err != nil {
		return Value{}, err
	}
	return setRows(orig, idx, put)
}

// unreshape restores the shape of orig from r, the replaced result of
// reshaping orig by dims. When the reshape dropped elements they are taken
// from orig; when it repeated or padded them only the leading ones count.
func unreshape(orig, dims, r Value) (Value, error) {
	target, err := dims.asInts("shape")
	if err != nil {
		return Value{}, err
	}
	have, got := orig.ElementCount(), r.ElementCount()
	if got != Shape(target).Size() {
		return Value{}, errorf(ShapeMismatch, "cannot restore shape %s from %d elements, expected %d",
			orig.shape, got, Shape(target).Size())
	}
	flat := r.Deshape()
	switch {
	case got > have:
		idx := make([]int, have)
		for i := range idx {
			idx[i] = i
		}
		flat = flat.gather(idx)
	case got < have:
		idx := make([]int, got)
		for i := range idx {
			idx[i] = i
		}
		var err error
		if flat, err = setRows(orig.Deshape(), idx, flat); err != nil {
			return Value{}, err
		}
	}
	return flat.withShape(orig.shape), nil
}
