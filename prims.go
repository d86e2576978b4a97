package tacit

import "fmt"

// prim runs one primitive on the stack.
func (m *machine) prim(p Primitive) error {
	info := &primTable[p]
	switch {
	case info.mon != nil:
		x, err := m.stack.pop()
		if err != nil {
			return err
		}
		r, err := info.mon.apply(x)
		if err != nil {
			return err
		}
		m.stack.push(r)
		return nil
	case info.dy != nil:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		r, err := info.dy.apply(x, y)
		if err != nil {
			return err
		}
		m.stack.push(r)
		return nil
	}

	switch p {
	case PrimDup:
		v, err := m.stack.top()
		if err != nil {
			return err
		}
		m.stack.push(v)
	case PrimOver:
		args, err := m.stack.popN(2)
		if err != nil {
			return err
		}
		m.stack.push(args[0], args[1], args[0])
	case PrimFlip:
		args, err := m.stack.popN(2)
		if err != nil {
			return err
		}
		m.stack.push(args[1], args[0])
	case PrimPop:
		_, err := m.stack.pop()
		return err
	case PrimIdentity:
		_, err := m.stack.top()
		return err
	case PrimCall:
		v, err := m.stack.pop()
		if err != nil {
			return err
		}
		f, err := v.asFunction()
		if err != nil {
			return err
		}
		return m.call(f)
	case PrimAssert:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		if ok, err := x.asBool("assertion"); err == nil && ok {
			return nil
		}
		return errorf(AssertionFailed, "%s", assertMessage(y))
	case PrimJoin, PrimCouple, PrimSelect, PrimRotate, PrimTake, PrimDrop, PrimKeep, PrimReshape:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		r, err := dyadicArray(p, x, y, &m.fills)
		if err != nil {
			return err
		}
		m.stack.push(r)
	default:
		x, err := m.stack.pop()
		if err != nil {
			return err
		}
		r, err := monadicArray(p, x, &m.fills)
		if err != nil {
			return err
		}
		m.stack.push(r)
	}
	return nil
}

func assertMessage(v Value) string {
	if v.kind == KindChar && v.Rank() <= 1 {
		return string(v.chars)
	}
	return v.String()
}

func (v Value) asFunction() (*Function, error) {
	if v.kind != KindFunc || !v.IsScalar() {
		return nil, errorf(TypeMismatch, "cannot call %s", v.describe())
	}
	return v.funcs[0], nil
}

// monadicArray runs the structural primitives of one argument.
func monadicArray(p Primitive, v Value, fills *fillState) (Value, error) {
	switch p {
	case PrimLen:
		return Num(float64(v.Len())), nil
	case PrimShape:
		return indexValue(v.shape), nil
	case PrimRange:
		ns, err := v.asNats("range")
		if err != nil {
			return Value{}, err
		}
		if n, ok := Shape(ns).checkedSize(); !ok || n*max(len(ns), 1) > MaxElements {
			return Value{}, errorf(ShapeMismatch, "range %s has more than %d elements", v, MaxElements)
		}
		return rangeOf(ns, v.IsScalar()), nil
	case PrimFirst:
		return endRow(v, 0, fills.fillFor(v.kind))
	case PrimLast:
		return endRow(v, v.Len()-1, fills.fillFor(v.kind))
	case PrimReverse:
		return v.Reverse(), nil
	case PrimDeshape:
		return v.Deshape(), nil
	case PrimTranspose:
		return v.Transpose(), nil
	case PrimBox:
		return Box(v), nil
	case PrimUnbox:
		return v.Unbox()
	case PrimRise, PrimFall, PrimClassify, PrimDeduplicate:
		if v.IsScalar() {
			return Value{}, errorf(ShapeMismatch, "cannot %s a scalar", p)
		}
		switch p {
		case PrimRise:
			return indexValue(grade(v, false)), nil
		case PrimFall:
			return indexValue(grade(v, true)), nil
		case PrimClassify:
			return classify(v), nil
		default:
			return deduplicate(v), nil
		}
	default:
		panic(fmt.Sprintf("%s is not a monadic array primitive", p))
	}
}

// endRow returns row i of v, or a row of fill when v is empty.
func endRow(v Value, i int, fill *Value) (Value, error) {
	if v.IsScalar() {
		return Value{}, errorf(ShapeMismatch, "cannot take a row of a scalar")
	}
	if v.Len() == 0 {
		if fill == nil {
			return Value{}, errorf(IndexOutOfBounds, "cannot take a row of an empty array")
		}
		return filled(*fill, v.shape.rowShape()), nil
	}
	return v.Row(i)
}

// dyadicArray runs the structural primitives of two arguments. x is the
// deeper argument; y is the top one and carries the parameter (count,
// indices, mask or shape) where there is one.
func dyadicArray(p Primitive, x, y Value, fills *fillState) (Value, error) {
	switch p {
	case PrimJoin:
		return Join(x, y)
	case PrimCouple:
		return Couple(x, y)
	case PrimSelect:
		r, _, err := selectValue(x, y)
		return r, err
	case PrimRotate:
		n, err := y.asInt("rotation")
		if err != nil {
			return Value{}, err
		}
		return rotateRows(x, n), nil
	case PrimTake:
		ns, err := y.asInts("take count")
		if err != nil {
			return Value{}, err
		}
		return takeAxes(x, ns, fills.fillFor(x.kind))
	case PrimDrop:
		ns, err := y.asInts("drop count")
		if err != nil {
			return Value{}, err
		}
		return dropAxes(x, ns, fills.fillFor(x.kind))
	case PrimKeep:
		counts, err := keepCounts(x, y, fills)
		if err != nil {
			return Value{}, err
		}
		return replicate(x, counts), nil
	case PrimReshape:
		dims, err := y.asInts("shape")
		if err != nil {
			return Value{}, err
		}
		return reshape(x, Shape(dims), fills.fillFor(x.kind))
	default:
		panic(fmt.Sprintf("%s is not a dyadic array primitive", p))
	}
}

// selectValue picks rows of x by the indices in y. A scalar index yields a
// single row. The normalized indices are returned for undoing.
func selectValue(x, y Value) (Value, []int, error) {
	idx, err := y.asInts("index")
	if err != nil {
		return Value{}, nil, err
	}
	r, norm, err := selectRows(x, idx)
	if err != nil {
		return Value{}, nil, err
	}
	if y.IsScalar() {
		return r.firstRow(), norm, nil
	}
	return r, norm, nil
}

// keepCounts reads the replication counts of keep. A scalar count applies
// to every row. A short list is extended with the fill when one is set.
func keepCounts(x, y Value, fills *fillState) ([]int, error) {
	counts, err := y.asNats("keep count")
	if err != nil {
		return nil, err
	}
	l := x.Len()
	if y.IsScalar() {
		out := make([]int, l)
		for i := range out {
			out[i] = counts[0]
		}
		counts = out
	}
	if len(counts) < l {
		if fill := fills.fillFor(KindNum); fill != nil {
			n, err := fill.asNats("keep fill")
			if err != nil {
				return nil, err
			}
			for len(counts) < l {
				counts = append(counts, n[0])
			}
		}
	}
	if len(counts) != l {
		return nil, errorf(ShapeMismatch, "cannot keep %d rows with %d counts", l, len(counts))
	}
	limit := MaxElements / max(x.rowLen(), 1)
	total := 0
	for _, c := range counts {
		if total += c; total > limit {
			return nil, errorf(ShapeMismatch, "keep result exceeds %d elements", MaxElements)
		}
	}
	return counts, nil
}

// takeAxes takes ns[k] elements along axis k.
func takeAxes(v Value, ns []int, fill *Value) (Value, error) {
	if err := checkAxes("take", v, ns); err != nil {
		return Value{}, err
	}
	out, _, err := takeRows(v, ns[0], fill)
	if err != nil {
		return Value{}, err
	}
	if len(ns) == 1 {
		return out, nil
	}
	return mapRows(out, func(row Value) (Value, error) {
		return takeAxes(row, ns[1:], fill)
	}, func(shape Shape) {
		for k, n := range ns[1:] {
			shape[k] = absInt(n)
		}
	})
}

// dropAxes drops ns[k] elements along axis k.
func dropAxes(v Value, ns []int, fill *Value) (Value, error) {
	if err := checkAxes("drop", v, ns); err != nil {
		return Value{}, err
	}
	out, err := dropRows(v, ns[0], fill)
	if err != nil {
		return Value{}, err
	}
	if len(ns) == 1 {
		return out, nil
	}
	return mapRows(out, func(row Value) (Value, error) {
		return dropAxes(row, ns[1:], fill)
	}, func(shape Shape) {
		for k, n := range ns[1:] {
			shape[k] = max(shape[k]-absInt(n), 0)
		}
	})
}

func checkAxes(op string, v Value, ns []int) error {
	if v.IsScalar() {
		return errorf(ShapeMismatch, "cannot %s from a scalar", op)
	}
	if len(ns) == 0 || len(ns) > v.Rank() {
		return errorf(ShapeMismatch, "cannot %s along %d axes of an array of rank %d", op, len(ns), v.Rank())
	}
	return nil
}

// mapRows applies f to every row and stacks the results. When v has no rows
// emptyRow adjusts the row shape the result would have had.
func mapRows(v Value, f func(Value) (Value, error), emptyRow func(Shape)) (Value, error) {
	if v.Len() == 0 {
		rowShape := v.shape.rowShape()
		emptyRow(rowShape)
		return assemble(v.kind, rowShape, nil, nil), nil
	}
	rows := v.Rows()
	for i, r := range rows {
		out, err := f(r)
		if err != nil {
			return Value{}, err
		}
		rows[i] = out
	}
	return FromRows(rows)
}
