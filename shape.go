package tacit

import (
	"strconv"
	"strings"
)

// MaxElements bounds the number of elements in an array built at run time.
// Operations whose result would exceed it fail instead of allocating.
const MaxElements = 1 << 30

// Shape is the ordered list of dimension sizes of an array.
// The empty shape is a scalar.
type Shape []int

// Size returns the number of elements an array of this shape holds.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// checkedSize is Size for shapes that come from user input. ok is false
// when a dimension is negative or the product exceeds MaxElements.
func (s Shape) checkedSize() (n int, ok bool) {
	for _, d := range s {
		if d < 0 {
			return 0, false
		}
		if d == 0 {
			return 0, true
		}
	}
	n = 1
	for _, d := range s {
		if n > MaxElements/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// rowShape is the shape of one row (the shape without its leading axis).
func (s Shape) rowShape() Shape {
	if len(s) == 0 {
		return Shape{}
	}
	return s[1:].clone()
}

func (s Shape) clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// prefixOf reports whether s matches the leading dimensions of o.
func (s Shape) prefixOf(o Shape) bool {
	if len(s) > len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, " × ") + "]"
}

func prependDim(n int, s Shape) Shape {
	out := make(Shape, 0, len(s)+1)
	out = append(out, n)
	return append(out, s...)
}
