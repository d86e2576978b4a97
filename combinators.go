package tacit

// modifier runs a bound modifier application.
func (m *machine) modifier(app *modApp) error {
	fns := app.fns
	switch app.mod {
	case ModDip:
		return m.dip(fns[0])
	case ModGap:
		if _, err := m.stack.pop(); err != nil {
			return err
		}
		return m.call(fns[0])
	case ModBoth:
		return m.both(fns[0])
	case ModFork:
		return m.fork(fns)
	case ModBracket:
		return m.bracket(fns)
	case ModDistribute:
		return m.distribute(fns[0])
	case ModRows:
		return m.rows(fns[0])
	case ModFold:
		return m.fold(fns[0])
	case ModReduce:
		return m.reduce(fns[0])
	case ModRepeat:
		return m.repeat(fns[0])
	case ModIf:
		return m.ifElse(fns[0], fns[1], app.sig)
	case ModTry:
		return m.try(fns[0], fns[1])
	case ModUnder:
		return m.under(fns[0], fns[1])
	case ModInvert:
		return m.call(app.inverse)
	case ModFill:
		return m.fill(fns[0], fns[1])
	default:
		panic(app.mod)
	}
}

// dip hides the top value while f runs and puts it back above f's outputs.
// The hidden value is restored even when f fails.
func (m *machine) dip(f *Function) error {
	hidden, err := m.stack.pop()
	if err != nil {
		return err
	}
	defer m.stack.push(hidden)
	return m.call(f)
}

// both runs f on the lower group of arguments, then on the upper one.
func (m *machine) both(f *Function) error {
	upper, err := m.stack.popN(f.sig.Inputs)
	if err != nil {
		return err
	}
	if m.stack.len() < f.sig.Inputs {
		return errorf(StackSignatureMismatch, "both needs %d arguments but the stack has %d",
			2*f.sig.Inputs, m.stack.len()+len(upper))
	}
	if err := m.call(f); err != nil {
		return err
	}
	m.stack.push(upper...)
	return m.call(f)
}

// fork takes the combined inputs of its branches. Every branch sees the
// same arguments and reads as many as it needs from the top, so arguments
// below the largest branch's inputs are consumed without being read: with
// branches |2.1 and |1.1 fork pops three values and the deepest is
// discarded. Outputs are left in branch order.
func (m *machine) fork(fns []*Function) error {
	total := 0
	for _, f := range fns {
		total += f.sig.Inputs
	}
	args, err := m.stack.popN(total)
	if err != nil {
		return err
	}
	for _, f := range fns {
		m.stack.push(args[total-f.sig.Inputs:]...)
		if err := m.call(f); err != nil {
			return err
		}
	}
	return nil
}

// bracket splits its arguments between branches: the first branch takes
// the topmost group, the next branch the group below it, and so on.
// Outputs are left in branch order.
func (m *machine) bracket(fns []*Function) error {
	total := 0
	for _, f := range fns {
		total += f.sig.Inputs
	}
	args, err := m.stack.popN(total)
	if err != nil {
		return err
	}
	end := total
	for _, f := range fns {
		start := end - f.sig.Inputs
		m.stack.push(args[start:end]...)
		if err := m.call(f); err != nil {
			return err
		}
		end = start
	}
	return nil
}

// distribute calls f once per row of the top value, passing the values
// below it unchanged to every call.
func (m *machine) distribute(f *Function) error {
	x, err := m.stack.pop()
	if err != nil {
		return err
	}
	shared, err := m.stack.popN(f.sig.Inputs - 1)
	if err != nil {
		return err
	}
	if x.IsScalar() {
		m.stack.push(shared...)
		m.stack.push(x)
		return m.call(f)
	}
	return m.eachRow(f, x.Len(), func(i int) []Value {
		row, _ := x.Row(i)
		return append(append([]Value(nil), shared...), row)
	}, func() ([]Value, bool) {
		row, ok := prototypeRow(x)
		return append(append([]Value(nil), shared...), row), ok
	})
}

// rows calls f on corresponding rows of all its arguments. Scalars are
// reused for every row.
func (m *machine) rows(f *Function) error {
	args, err := m.stack.popN(f.sig.Inputs)
	if err != nil {
		return err
	}
	n, err := lockstepLen(args)
	if err != nil {
		return err
	}
	if n < 0 {
		m.stack.push(args...)
		return m.call(f)
	}
	return m.eachRow(f, n, func(i int) []Value {
		return rowsAt(args, i)
	}, func() ([]Value, bool) {
		out := make([]Value, len(args))
		for k, a := range args {
			if a.IsScalar() {
				out[k] = a
				continue
			}
			row, ok := prototypeRow(a)
			if !ok {
				return nil, false
			}
			out[k] = row
		}
		return out, true
	})
}

// eachRow calls f n times on the arguments built by argsAt and stacks each
// output position into an array. With no rows the outputs are empty arrays
// shaped by emptyOutputs.
func (m *machine) eachRow(f *Function, n int, argsAt func(i int) []Value, proto func() ([]Value, bool)) error {
	if n == 0 {
		return m.emptyOutputs(f, proto)
	}
	outs := make([][]Value, f.sig.Outputs)
	for i := 0; i < n; i++ {
		m.stack.push(argsAt(i)...)
		if err := m.call(f); err != nil {
			return err
		}
		vals, err := m.stack.popN(f.sig.Outputs)
		if err != nil {
			return err
		}
		for k, v := range vals {
			outs[k] = append(outs[k], v)
		}
	}
	for _, rows := range outs {
		v, err := FromRows(rows)
		if err != nil {
			return err
		}
		m.stack.push(v)
	}
	return nil
}

// emptyOutputs pushes f's outputs for zero iterations. A pure f is run once
// on prototype rows and each output becomes an empty array of the shape and
// kind it produced. When f has hooks, or the prototype run fails, every
// output is an empty list.
func (m *machine) emptyOutputs(f *Function, proto func() ([]Value, bool)) error {
	base := m.stack.len()
	if f.pure {
		if args, ok := proto(); ok {
			m.stack.push(args...)
			if err := m.call(f); err == nil {
				vals, _ := m.stack.popN(f.sig.Outputs)
				m.stack.truncate(base)
				for _, v := range vals {
					m.stack.push(emptyLike(v))
				}
				return nil
			}
			m.stack.truncate(base)
		}
	}
	for i := 0; i < f.sig.Outputs; i++ {
		m.stack.push(emptyList())
	}
	return nil
}

// prototypeRow is a row of v's row shape holding the zero element of v's
// kind. Function arrays have no zero element.
func prototypeRow(v Value) (Value, bool) {
	var zero Value
	switch v.kind {
	case KindNum:
		zero = Num(0)
	case KindChar:
		zero = Char(' ')
	case KindBox:
		zero = Box(emptyList())
	default:
		return Value{}, false
	}
	return filled(zero, v.shape.rowShape()), true
}

// emptyLike is a zero-row array whose rows have row's shape and kind.
func emptyLike(row Value) Value {
	return assemble(row.kind, row.shape, nil, nil)
}

// lockstepLen returns the shared length of the array arguments, or -1 when
// all of them are scalars.
func lockstepLen(args []Value) (int, error) {
	n := -1
	for _, a := range args {
		if a.IsScalar() {
			continue
		}
		if n >= 0 && a.Len() != n {
			return 0, errorf(ShapeMismatch, "cannot iterate arrays of length %d and %d together", n, a.Len())
		}
		n = a.Len()
	}
	return n, nil
}

func rowsAt(args []Value, i int) []Value {
	out := make([]Value, len(args))
	for k, a := range args {
		if a.IsScalar() {
			out[k] = a
			continue
		}
		out[k], _ = a.Row(i)
	}
	return out
}

// fold threads accumulators through f. The arrays sit above the
// accumulators; each step receives the accumulators followed by one row of
// every array.
func (m *machine) fold(f *Function) error {
	nacc := f.sig.Outputs
	arrays, err := m.stack.popN(f.sig.Inputs - nacc)
	if err != nil {
		return err
	}
	accs, err := m.stack.popN(nacc)
	if err != nil {
		return err
	}
	n, err := lockstepLen(arrays)
	if err != nil {
		return err
	}
	if n < 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		m.stack.push(accs...)
		m.stack.push(rowsAt(arrays, i)...)
		if err := m.call(f); err != nil {
			return err
		}
		if accs, err = m.stack.popN(nacc); err != nil {
			return err
		}
	}
	m.stack.push(accs...)
	return nil
}

// reduce folds the rows of the top value with a |2.1 function, seeded by
// the first row. An empty array reduces to the fill.
func (m *machine) reduce(f *Function) error {
	x, err := m.stack.pop()
	if err != nil {
		return err
	}
	if x.IsScalar() {
		m.stack.push(x)
		return nil
	}
	if x.Len() == 0 {
		fill := m.fills.fillFor(x.kind)
		if fill == nil {
			return errorf(IndexOutOfBounds, "cannot reduce an empty array without a fill")
		}
		m.stack.push(filled(*fill, x.shape.rowShape()))
		return nil
	}
	rows := x.Rows()
	acc := rows[0]
	for _, row := range rows[1:] {
		m.stack.push(acc, row)
		if err := m.call(f); err != nil {
			return err
		}
		if acc, err = m.stack.pop(); err != nil {
			return err
		}
	}
	m.stack.push(acc)
	return nil
}

// repeat calls f as many times as the count on top of the stack says.
func (m *machine) repeat(f *Function) error {
	v, err := m.stack.pop()
	if err != nil {
		return err
	}
	n, err := v.asInt("repetition count")
	if err != nil {
		return err
	}
	if n < 0 {
		return errorf(TypeMismatch, "repetition count must be natural, got %d", n)
	}
	for i := 0; i < n; i++ {
		if err := m.call(f); err != nil {
			return err
		}
	}
	return nil
}

// ifElse pops a 0/1 condition and runs a on 1, b on 0. A branch with fewer
// inputs than the joined signature only sees the top of the stack. The
// arguments below the ones it takes are never passed to it and are dropped,
// so the instruction always consumes what its signature says.
func (m *machine) ifElse(a, b *Function, sig Signature) error {
	c, err := m.stack.pop()
	if err != nil {
		return err
	}
	cond, err := c.asBool("condition")
	if err != nil {
		return err
	}
	branch := b
	if cond {
		branch = a
	}
	joined := sig.Inputs - 1
	if m.stack.len() < joined {
		return errorf(StackSignatureMismatch, "if needs %d arguments but the stack has %d", joined, m.stack.len())
	}
	excess := joined - branch.sig.Inputs
	var kept []Value
	if excess > 0 {
		kept, _ = m.stack.popN(branch.sig.Inputs)
		m.stack.truncate(m.stack.len() - excess)
		m.stack.push(kept...)
	}
	return m.call(branch)
}

// try runs f. If it fails, the stack is rolled back to below f's arguments
// and h is called with the top arguments f received followed by the error
// message.
func (m *machine) try(f, h *Function) error {
	args, err := m.stack.peekN(f.sig.Inputs)
	if err != nil {
		return err
	}
	base := m.stack.len() - f.sig.Inputs
	callErr := m.call(f)
	if callErr == nil {
		return nil
	}
	m.logger.Debugf("try caught: %v", callErr)
	m.stack.truncate(base)
	if h.sig.Inputs > 0 {
		m.stack.push(args[len(args)-(h.sig.Inputs-1):]...)
		m.stack.push(Str(callErr.Error()))
	}
	return m.call(h)
}

// fill runs f with the value produced by v as the ambient fill.
func (m *machine) fill(v, f *Function) error {
	fv, err := m.fillValue(v)
	if err != nil {
		return err
	}
	release := m.fills.acquire(fv)
	defer release()
	return m.call(f)
}

func (m *machine) fillValue(v *Function) (Value, error) {
	if err := m.call(v); err != nil {
		return Value{}, err
	}
	return m.stack.pop()
}
