package tacit

import (
	"fmt"
	"sort"
)

// rowRef names row `row` of part `src` when assembling a new array.
type rowRef struct {
	src, row int
}

// assemble builds an array of the given kind whose rows are copied from
// parts. Every part must have rows of rowShape; a scalar part counts as a
// single row when rowShape is empty.
func assemble(kind Kind, rowShape Shape, parts []Value, refs []rowRef) Value {
	rowLen := rowShape.Size()
	out := Value{kind: kind, shape: prependDim(len(refs), rowShape)}
	switch kind {
	case KindNum:
		out.nums = pickRows(parts, rowLen, refs, func(v Value) []float64 { return v.nums })
	case KindChar:
		out.chars = pickRows(parts, rowLen, refs, func(v Value) []rune { return v.chars })
	case KindBox:
		out.boxes = pickRows(parts, rowLen, refs, func(v Value) []Value { return v.boxes })
	case KindFunc:
		out.funcs = pickRows(parts, rowLen, refs, func(v Value) []*Function { return v.funcs })
	default:
		panic(fmt.Sprintf("unhandled kind %d", kind))
	}
	return out
}

func pickRows[T any](parts []Value, rowLen int, refs []rowRef, data func(Value) []T) []T {
	out := make([]T, 0, len(refs)*rowLen)
	for _, r := range refs {
		d := data(parts[r.src])
		out = append(out, d[r.row*rowLen:(r.row+1)*rowLen]...)
	}
	return out
}

// gather picks rows of v by index. A scalar is treated as a single row.
func (v Value) gather(idx []int) Value {
	refs := make([]rowRef, len(idx))
	for i, j := range idx {
		refs[i] = rowRef{0, j}
	}
	return assemble(v.kind, v.shape.rowShape(), []Value{v}, refs)
}

// withShape reinterprets the flat data under a new shape of equal size.
func (v Value) withShape(shape Shape) Value {
	out := v
	out.shape = shape.clone()
	return out
}

// filled returns an array of the given shape whose elements all equal the
// scalar fill.
func filled(fill Value, shape Shape) Value {
	refs := make([]rowRef, shape.Size())
	return assemble(fill.kind, Shape{}, []Value{fill}, refs).withShape(shape)
}

// emptyList is the canonical zero-length list.
func emptyList() Value {
	return Value{kind: KindNum, shape: Shape{0}, nums: []float64{}}
}

func isEmptyList(v Value) bool {
	return v.Rank() == 1 && v.shape[0] == 0
}

// Reverse reverses the rows of v. Scalars and empty arrays come back
// unchanged in shape.
func (v Value) Reverse() Value {
	if v.IsScalar() {
		return v
	}
	n := v.shape[0]
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	return v.gather(idx)
}

// Join concatenates a and b along the leading axis. Arrays of equal rank
// must agree on their row shape; an array one rank lower is added as a
// single row; two scalars make a pair.
func Join(a, b Value) (Value, error) {
	kind, err := joinKind(a, b)
	if err != nil {
		return Value{}, err
	}
	switch {
	case a.Rank() == b.Rank() && a.IsScalar():
		return assemble(kind, Shape{}, []Value{a, b}, []rowRef{{0, 0}, {1, 0}}), nil
	case a.Rank() == b.Rank():
		return concatRows(kind, a, b)
	case a.Rank()+1 == b.Rank():
		return concatRows(kind, a.withShape(prependDim(1, a.shape)), b)
	case a.Rank() == b.Rank()+1:
		return concatRows(kind, a, b.withShape(prependDim(1, b.shape)))
	default:
		return Value{}, errorf(ShapeMismatch, "cannot join arrays of shape %s and %s", a.shape, b.shape)
	}
}

// joinKind picks the element kind of a join. An empty list adopts the
// other side's kind.
func joinKind(a, b Value) (Kind, error) {
	switch {
	case a.kind == b.kind:
		return a.kind, nil
	case isEmptyList(a):
		return b.kind, nil
	case isEmptyList(b):
		return a.kind, nil
	default:
		return 0, errorf(TypeMismatch, "cannot join %s with %s", a.describe(), b.describe())
	}
}

func concatRows(kind Kind, a, b Value) (Value, error) {
	switch {
	case isEmptyList(a) && b.Rank() >= 1:
		return b.withKind(kind), nil
	case isEmptyList(b) && a.Rank() >= 1:
		return a.withKind(kind), nil
	}
	ra, rb := a.shape.rowShape(), b.shape.rowShape()
	if !ra.Equal(rb) {
		return Value{}, errorf(ShapeMismatch, "cannot join rows of shape %s and %s", ra, rb)
	}
	refs := make([]rowRef, 0, a.Len()+b.Len())
	for i := 0; i < a.Len(); i++ {
		refs = append(refs, rowRef{0, i})
	}
	for i := 0; i < b.Len(); i++ {
		refs = append(refs, rowRef{1, i})
	}
	return assemble(kind, ra, []Value{a, b}, refs), nil
}

// withKind retags an empty value; non-empty values are returned as is.
func (v Value) withKind(kind Kind) Value {
	if v.kind == kind || v.ElementCount() != 0 {
		return v
	}
	return assemble(kind, v.shape.rowShape(), nil, nil).withShape(v.shape)
}

// Couple stacks two arrays of equal shape into a new leading axis.
func Couple(a, b Value) (Value, error) {
	if !a.shape.Equal(b.shape) {
		return Value{}, errorf(ShapeMismatch, "cannot couple arrays of shape %s and %s", a.shape, b.shape)
	}
	if a.kind != b.kind {
		return Value{}, errorf(TypeMismatch, "cannot couple %s with %s", a.describe(), b.describe())
	}
	return concatRows(a.kind, a.withShape(prependDim(1, a.shape)), b.withShape(prependDim(1, b.shape)))
}

// takeRows keeps |n| rows from the front (n >= 0) or the back (n < 0) of v.
// When |n| exceeds the length, rows of fill are added on the taken side;
// without a fill that fails with IndexOutOfBounds. pad reports how many
// fill rows were added.
func takeRows(v Value, n int, fill *Value) (out Value, pad int, err error) {
	if v.IsScalar() {
		return Value{}, 0, errorf(ShapeMismatch, "cannot take from a scalar")
	}
	l, abs := v.Len(), absInt(n)
	if abs > l {
		if fill == nil {
			return Value{}, 0, errorf(IndexOutOfBounds, "cannot take %d rows from an array of length %d", n, l)
		}
		if _, ok := prependDim(abs, v.shape.rowShape()).checkedSize(); !ok || abs > MaxElements {
			return Value{}, 0, errorf(IndexOutOfBounds, "cannot take %d rows: result exceeds %d elements", n, MaxElements)
		}
		pad = abs - l
	}
	kept := abs - pad
	refs := make([]rowRef, 0, abs)
	if n >= 0 {
		for i := 0; i < kept; i++ {
			refs = append(refs, rowRef{0, i})
		}
	}
	for i := 0; i < pad; i++ {
		refs = append(refs, rowRef{1, 0})
	}
	if n < 0 {
		for i := l - kept; i < l; i++ {
			refs = append(refs, rowRef{0, i})
		}
	}
	rowShape := v.shape.rowShape()
	parts := []Value{v}
	if pad > 0 {
		parts = append(parts, filled(*fill, prependDim(1, rowShape)))
	}
	return assemble(v.kind, rowShape, parts, refs), pad, nil
}

// dropRows removes |n| rows from the front (n >= 0) or back (n < 0) of v.
// Dropping more rows than exist needs a fill and yields an empty array.
func dropRows(v Value, n int, fill *Value) (Value, error) {
	if v.IsScalar() {
		return Value{}, errorf(ShapeMismatch, "cannot drop from a scalar")
	}
	l, abs := v.Len(), absInt(n)
	if abs > l {
		if fill == nil {
			return Value{}, errorf(IndexOutOfBounds, "cannot drop %d rows from an array of length %d", n, l)
		}
		abs = l
	}
	idx := make([]int, 0, l-abs)
	if n >= 0 {
		for i := abs; i < l; i++ {
			idx = append(idx, i)
		}
	} else {
		for i := 0; i < l-abs; i++ {
			idx = append(idx, i)
		}
	}
	return v.gather(idx), nil
}

// replicate repeats row i of v counts[i] times.
func replicate(v Value, counts []int) Value {
	idx := make([]int, 0, len(counts))
	for i, c := range counts {
		for j := 0; j < c; j++ {
			idx = append(idx, i)
		}
	}
	return v.gather(idx)
}

// reshape lays the elements of v out in the target shape, cycling them when
// the target is larger. With a fill the extra elements are fill instead.
func reshape(v Value, target Shape, fill *Value) (Value, error) {
	for _, d := range target {
		if d < 0 {
			return Value{}, errorf(ShapeMismatch, "cannot reshape to %s", target)
		}
	}
	n, ok := target.checkedSize()
	if !ok {
		return Value{}, errorf(ShapeMismatch, "cannot reshape to %s: more than %d elements", target, MaxElements)
	}
	have := v.ElementCount()
	flat := v.withShape(Shape{have})
	if n <= have {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return flat.gather(idx).withShape(target), nil
	}
	if fill != nil {
		out, err := concatRows(v.kind, flat, filled(*fill, Shape{n - have}))
		if err != nil {
			return Value{}, err
		}
		return out.withShape(target), nil
	}
	if have == 0 {
		return Value{}, errorf(ShapeMismatch, "cannot reshape an empty array to %s without a fill", target)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i % have
	}
	return flat.gather(idx).withShape(target), nil
}

// Deshape flattens v into a list.
func (v Value) Deshape() Value {
	return v.withShape(Shape{v.ElementCount()})
}

// Transpose rotates the axes of v left by one.
func (v Value) Transpose() Value {
	if v.Rank() < 2 {
		return v
	}
	rows, rowLen := v.shape[0], v.rowLen()
	idx := make([]int, 0, v.ElementCount())
	for j := 0; j < rowLen; j++ {
		for i := 0; i < rows; i++ {
			idx = append(idx, i*rowLen+j)
		}
	}
	shape := append(v.shape[1:].clone(), v.shape[0])
	return v.Deshape().gather(idx).withShape(shape)
}

// untranspose rotates the axes of v right by one.
func (v Value) untranspose() Value {
	if v.Rank() < 2 {
		return v
	}
	colLen := v.shape[len(v.shape)-1]
	colCount := v.shape[:len(v.shape)-1].Size()
	idx := make([]int, 0, v.ElementCount())
	for j := 0; j < colLen; j++ {
		for i := 0; i < colCount; i++ {
			idx = append(idx, i*colLen+j)
		}
	}
	shape := prependDim(colLen, v.shape[:len(v.shape)-1])
	return v.Deshape().gather(idx).withShape(shape)
}

// rotateRows rotates the rows of v left by n.
func rotateRows(v Value, n int) Value {
	if v.IsScalar() || v.Len() == 0 {
		return v
	}
	l := v.Len()
	n = ((n % l) + l) % l
	idx := make([]int, l)
	for i := range idx {
		idx[i] = (i + n) % l
	}
	return v.gather(idx)
}

// selectRows picks rows by possibly negative index.
func selectRows(v Value, indices []int) (Value, []int, error) {
	if v.IsScalar() {
		return Value{}, nil, errorf(ShapeMismatch, "cannot select from a scalar")
	}
	norm, err := normalizeIndices(indices, v.Len())
	if err != nil {
		return Value{}, nil, err
	}
	return v.gather(norm), norm, nil
}

func normalizeIndices(indices []int, l int) ([]int, error) {
	out := make([]int, len(indices))
	for i, j := range indices {
		k := j
		if k < 0 {
			k += l
		}
		if k < 0 || k >= l {
			return nil, errorf(IndexOutOfBounds, "index %d out of bounds for length %d", j, l)
		}
		out[i] = k
	}
	return out, nil
}

// setRows returns orig with the rows at idx replaced by the rows of repl.
// Later indices win when idx repeats.
func setRows(orig Value, idx []int, repl Value) (Value, error) {
	if repl.Rank() == 0 || repl.Len() != len(idx) {
		return Value{}, errorf(ShapeMismatch, "expected %d replacement rows, got %s", len(idx), repl.shape)
	}
	if !repl.shape.rowShape().Equal(orig.shape.rowShape()) {
		return Value{}, errorf(ShapeMismatch, "replacement rows have shape %s, expected %s",
			repl.shape.rowShape(), orig.shape.rowShape())
	}
	kind, err := joinKind(orig, repl)
	if err != nil {
		return Value{}, err
	}
	if len(idx) > 0 && orig.ElementCount() > 0 && repl.ElementCount() > 0 && orig.kind != repl.kind {
		return Value{}, errorf(TypeMismatch, "cannot put %s rows into %s", repl.kind, orig.describe())
	}
	refs := make([]rowRef, orig.Len())
	for i := range refs {
		refs[i] = rowRef{0, i}
	}
	for i, j := range idx {
		refs[j] = rowRef{1, i}
	}
	return assemble(kind, orig.shape.rowShape(), []Value{orig, repl}, refs), nil
}

// rangeOf builds the index array for a natural number or a shape.
func rangeOf(shape []int, scalar bool) Value {
	if scalar {
		n := shape[0]
		xs := make([]int, n)
		for i := range xs {
			xs[i] = i
		}
		return indexValue(xs)
	}
	if len(shape) == 0 {
		return Num(0)
	}
	out := append(Shape(shape).clone(), len(shape))
	if Shape(shape).Size() == 0 {
		return Value{kind: KindNum, shape: out, nums: []float64{}}
	}
	data := make([]float64, 0, out.Size())
	curr := make([]int, len(shape))
	for {
		for _, d := range curr {
			data = append(data, float64(d))
		}
		i := len(shape) - 1
		for ; i >= 0; i-- {
			curr[i]++
			if curr[i] < shape[i] {
				break
			}
			curr[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return Value{kind: KindNum, shape: out, nums: data}
}

// compareRows orders two rows of the same array lexicographically.
func (v Value) compareRows(a, b int) int {
	rl := v.rowLen()
	for k := 0; k < rl; k++ {
		if c := v.compareElems(a*rl+k, b*rl+k); c != 0 {
			return c
		}
	}
	return 0
}

func (v Value) compareElems(i, j int) int {
	switch v.kind {
	case KindNum:
		return compareNums(v.nums[i], v.nums[j])
	case KindChar:
		return compareInts(int(v.chars[i]), int(v.chars[j]))
	case KindBox:
		return compareValues(v.boxes[i], v.boxes[j])
	case KindFunc:
		return compareInts(int(v.funcs[i].id), int(v.funcs[j].id))
	default:
		panic(fmt.Sprintf("unhandled kind %d", v.kind))
	}
}

// compareValues orders whole values: by kind, then rank, then shape, then
// elements.
func compareValues(a, b Value) int {
	if c := compareInts(int(a.kind), int(b.kind)); c != 0 {
		return c
	}
	if c := compareInts(a.Rank(), b.Rank()); c != 0 {
		return c
	}
	for i := range a.shape {
		if c := compareInts(a.shape[i], b.shape[i]); c != 0 {
			return c
		}
	}
	pair := Value{kind: a.kind}
	switch a.kind {
	case KindNum:
		pair.nums = append(a.Nums(), b.nums...)
	case KindChar:
		pair.chars = append(a.Chars(), b.chars...)
	case KindBox:
		pair.boxes = append(a.Boxes(), b.boxes...)
	case KindFunc:
		pair.funcs = append(a.Funcs(), b.funcs...)
	}
	n := a.ElementCount()
	for k := 0; k < n; k++ {
		if c := pair.compareElems(k, n+k); c != 0 {
			return c
		}
	}
	return 0
}

func compareNums(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case a == b:
		return 0
	case a != a && b != b:
		return 0
	case a != a:
		return 1
	default:
		return -1
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// grade returns row indices in ascending (or descending) order, stable.
func grade(v Value, descending bool) []int {
	idx := make([]int, v.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		c := v.compareRows(idx[i], idx[j])
		if descending {
			return c > 0
		}
		return c < 0
	})
	return idx
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// FromRows stacks values of one shape into a new leading axis. Values of
// different kinds only mix when the odd ones out are empty lists.
func FromRows(rows []Value) (Value, error) {
	if len(rows) == 0 {
		return emptyList(), nil
	}
	first := rows[0]
	kind := first.kind
	for _, r := range rows[1:] {
		if !r.shape.Equal(first.shape) {
			return Value{}, errorf(ShapeMismatch, "cannot combine rows of shape %s and %s", first.shape, r.shape)
		}
		if r.kind != kind {
			k, err := joinKind(Value{kind: kind, shape: first.shape}, r)
			if err != nil {
				return Value{}, err
			}
			kind = k
		}
	}
	refs := make([]rowRef, len(rows))
	parts := make([]Value, len(rows))
	for i, r := range rows {
		parts[i] = r.withKind(kind).withShape(prependDim(1, r.shape))
		refs[i] = rowRef{i, 0}
	}
	return assemble(kind, first.shape, parts, refs), nil
}
