package tacit

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind tags the element type of a Value.
type Kind uint8

const (
	KindNum Kind = iota
	KindChar
	KindBox
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "number"
	case KindChar:
		return "character"
	case KindBox:
		return "box"
	case KindFunc:
		return "function"
	default:
		return "unknown"
	}
}

// Value is an immutable array of numbers, characters, boxes or function
// references. Exactly one data slice is populated, selected by kind, and its
// length always equals shape.Size().
type Value struct {
	kind  Kind
	shape Shape
	nums  []float64
	chars []rune
	boxes []Value
	funcs []*Function
}

// Num returns a scalar number.
func Num(x float64) Value {
	return Value{kind: KindNum, shape: Shape{}, nums: []float64{x}}
}

// Nums returns a list of numbers.
func Nums(xs ...float64) Value {
	return Value{kind: KindNum, shape: Shape{len(xs)}, nums: slices.Clone(xs)}
}

// Char returns a scalar character.
func Char(r rune) Value {
	return Value{kind: KindChar, shape: Shape{}, chars: []rune{r}}
}

// Str returns a character list.
func Str(s string) Value {
	rs := []rune(s)
	return Value{kind: KindChar, shape: Shape{len(rs)}, chars: rs}
}

// Box wraps v into a scalar box.
func Box(v Value) Value {
	return Value{kind: KindBox, shape: Shape{}, boxes: []Value{v}}
}

// FuncValue returns a scalar function reference.
func FuncValue(f *Function) Value {
	return Value{kind: KindFunc, shape: Shape{}, funcs: []*Function{f}}
}

// NewNumArray builds a number array. It fails with ShapeMismatch when the
// data length disagrees with the shape.
func NewNumArray(shape Shape, data []float64) (Value, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return Value{}, err
	}
	return Value{kind: KindNum, shape: shape.clone(), nums: slices.Clone(data)}, nil
}

func NewCharArray(shape Shape, data []rune) (Value, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return Value{}, err
	}
	return Value{kind: KindChar, shape: shape.clone(), chars: slices.Clone(data)}, nil
}

// NewBoxArray builds an array whose elements are boxes around the given values.
func NewBoxArray(shape Shape, data []Value) (Value, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return Value{}, err
	}
	return Value{kind: KindBox, shape: shape.clone(), boxes: slices.Clone(data)}, nil
}

func NewFuncArray(shape Shape, data []*Function) (Value, error) {
	if err := checkLen(shape, len(data)); err != nil {
		return Value{}, err
	}
	return Value{kind: KindFunc, shape: shape.clone(), funcs: slices.Clone(data)}, nil
}

func checkLen(shape Shape, n int) error {
	for _, d := range shape {
		if d < 0 {
			return errorf(ShapeMismatch, "negative dimension in shape %s", shape)
		}
	}
	size, ok := shape.checkedSize()
	if !ok {
		return errorf(ShapeMismatch, "shape %s has more than %d elements", shape, MaxElements)
	}
	if size != n {
		return errorf(ShapeMismatch, "shape %s needs %d elements, got %d", shape, size, n)
	}
	return nil
}

func (v Value) Kind() Kind { return v.kind }

// Shape returns a copy of the value's shape.
func (v Value) Shape() Shape { return v.shape.clone() }

func (v Value) Rank() int { return len(v.shape) }

func (v Value) IsScalar() bool { return len(v.shape) == 0 }

// Len is the number of rows; a scalar has one.
func (v Value) Len() int {
	if len(v.shape) == 0 {
		return 1
	}
	return v.shape[0]
}

// ElementCount is the flat element count.
func (v Value) ElementCount() int { return v.shape.Size() }

func (v Value) rowLen() int {
	if len(v.shape) == 0 {
		return 1
	}
	return Shape(v.shape[1:]).Size()
}

// Nums returns a copy of the numeric data, or nil for other kinds.
func (v Value) Nums() []float64 { return slices.Clone(v.nums) }

func (v Value) Chars() []rune { return slices.Clone(v.chars) }

// Boxes returns the inner values of a box array.
func (v Value) Boxes() []Value { return slices.Clone(v.boxes) }

func (v Value) Funcs() []*Function { return slices.Clone(v.funcs) }

// Unbox returns the inner value of a scalar box.
func (v Value) Unbox() (Value, error) {
	if v.kind != KindBox {
		return Value{}, errorf(TypeMismatch, "cannot unbox %s", v.describe())
	}
	if !v.IsScalar() {
		return Value{}, errorf(TypeMismatch, "cannot unbox an array of boxes with shape %s", v.shape)
	}
	return v.boxes[0], nil
}

// Row returns row i along the leading axis.
func (v Value) Row(i int) (Value, error) {
	if v.IsScalar() {
		return Value{}, errorf(IndexOutOfBounds, "cannot index a scalar")
	}
	if i < 0 || i >= v.shape[0] {
		return Value{}, errorf(IndexOutOfBounds, "index %d out of bounds for length %d", i, v.shape[0])
	}
	return v.gather([]int{i}).firstRow(), nil
}

// Rows splits v into its rows. A scalar yields itself.
func (v Value) Rows() []Value {
	if v.IsScalar() {
		return []Value{v}
	}
	out := make([]Value, v.shape[0])
	for i := range out {
		out[i] = v.gather([]int{i}).firstRow()
	}
	return out
}

// firstRow drops the leading axis of a value with exactly one row.
func (v Value) firstRow() Value {
	out := v
	out.shape = v.shape.rowShape()
	return out
}

// Equal reports deep structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || !v.shape.Equal(o.shape) {
		return false
	}
	switch v.kind {
	case KindNum:
		for i := range v.nums {
			a, b := v.nums[i], o.nums[i]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				return false
			}
		}
		return true
	case KindChar:
		return slices.Equal(v.chars, o.chars)
	case KindBox:
		for i := range v.boxes {
			if !v.boxes[i].Equal(o.boxes[i]) {
				return false
			}
		}
		return true
	case KindFunc:
		for i := range v.funcs {
			if v.funcs[i] != o.funcs[i] {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("unhandled kind %d", v.kind))
	}
}

// describe is a short type/shape label for error messages.
func (v Value) describe() string {
	if v.IsScalar() {
		return "scalar " + v.kind.String()
	}
	return v.kind.String() + " array " + v.shape.String()
}

func (v Value) String() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v Value) writeTo(b *strings.Builder) {
	if v.kind == KindChar && v.Rank() == 1 {
		b.WriteString(strconv.Quote(string(v.chars)))
		return
	}
	if v.IsScalar() {
		v.writeElem(b, 0)
		return
	}
	rows := v.Rows()
	b.WriteByte('[')
	for i, r := range rows {
		if i > 0 {
			b.WriteByte(' ')
		}
		r.writeTo(b)
	}
	b.WriteByte(']')
}

func (v Value) writeElem(b *strings.Builder, i int) {
	switch v.kind {
	case KindNum:
		b.WriteString(FormatNum(v.nums[i]))
	case KindChar:
		b.WriteString("@" + string(v.chars[i]))
	case KindBox:
		b.WriteString("□")
		v.boxes[i].writeTo(b)
	case KindFunc:
		b.WriteString(v.funcs[i].String())
	default:
		panic(fmt.Sprintf("unhandled kind %d", v.kind))
	}
}

// FormatNum renders a number with the high minus for negatives.
func FormatNum(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "∞"
	case math.IsInf(x, -1):
		return "¯∞"
	case math.IsNaN(x):
		return "NaN"
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if strings.HasPrefix(s, "-") {
		s = "¯" + s[1:]
	}
	return s
}

// maxExactInt is the largest integer a float64 holds exactly. Larger counts
// and indices are rejected before conversion to int.
const maxExactInt = 1 << 53

// asInt reads a scalar (or single-element) whole number.
func (v Value) asInt(what string) (int, error) {
	if v.kind != KindNum || v.ElementCount() != 1 || v.Rank() > 1 {
		return 0, errorf(TypeMismatch, "%s must be a single integer, got %s", what, v.describe())
	}
	x := v.nums[0]
	if x != math.Trunc(x) || math.IsInf(x, 0) {
		return 0, errorf(TypeMismatch, "%s must be an integer, got %s", what, FormatNum(x))
	}
	if math.Abs(x) > maxExactInt {
		return 0, errorf(TypeMismatch, "%s %s is out of range", what, FormatNum(x))
	}
	return int(x), nil
}

// asInts reads a scalar or list of whole numbers.
func (v Value) asInts(what string) ([]int, error) {
	if v.kind != KindNum || v.Rank() > 1 {
		return nil, errorf(TypeMismatch, "%s must be an integer or list of integers, got %s", what, v.describe())
	}
	out := make([]int, len(v.nums))
	for i, x := range v.nums {
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, errorf(TypeMismatch, "%s must contain integers, got %s", what, FormatNum(x))
		}
		if math.Abs(x) > maxExactInt {
			return nil, errorf(TypeMismatch, "%s %s is out of range", what, FormatNum(x))
		}
		out[i] = int(x)
	}
	return out, nil
}

// asNats is asInts restricted to non-negative values.
func (v Value) asNats(what string) ([]int, error) {
	ns, err := v.asInts(what)
	if err != nil {
		return nil, err
	}
	for _, n := range ns {
		if n < 0 {
			return nil, errorf(TypeMismatch, "%s must contain natural numbers, got %d", what, n)
		}
	}
	return ns, nil
}

func (v Value) asBool(what string) (bool, error) {
	n, err := v.asInt(what)
	if err != nil {
		return false, err
	}
	if n != 0 && n != 1 {
		return false, errorf(TypeMismatch, "%s must be 0 or 1, got %d", what, n)
	}
	return n == 1, nil
}

// indexValue builds a number list from ints.
func indexValue(xs []int) Value {
	fs := make([]float64, len(xs))
	for i, x := range xs {
		fs[i] = float64(x)
	}
	return Value{kind: KindNum, shape: Shape{len(fs)}, nums: fs}
}
