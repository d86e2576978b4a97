package tacit

import "math"

// monadicOp is an element-wise function over numbers.
type monadicOp struct {
	name string
	num  func(float64) float64
}

func (op monadicOp) apply(v Value) (Value, error) {
	if v.kind != KindNum {
		return Value{}, errorf(TypeMismatch, "cannot %s %s", op.name, v.describe())
	}
	out := make([]float64, len(v.nums))
	for i, x := range v.nums {
		out[i] = op.num(x)
	}
	return Value{kind: KindNum, shape: v.shape.clone(), nums: out}, nil
}

// dyadicOp is an element-wise function of x (deeper) and y (top).
// Absent functions mean the kind pair is unsupported.
type dyadicOp struct {
	name string
	nn   func(x, y float64) float64
	nc   func(x float64, y rune) rune
	cn   func(x rune, y float64) rune
	cc   func(x, y rune) float64
	// cmp marks comparison operators; it maps an ordering of x against y
	// to the boolean result.
	cmp func(ord int) bool
}

func (op dyadicOp) apply(x, y Value) (Value, error) {
	if op.cmp != nil {
		return op.compare(x, y)
	}
	switch {
	case x.kind == KindNum && y.kind == KindNum && op.nn != nil:
		shape, data, err := pervade2(x.shape, x.nums, y.shape, y.nums, op.nn)
		return Value{kind: KindNum, shape: shape, nums: data}, err
	case x.kind == KindNum && y.kind == KindChar && op.nc != nil:
		shape, data, err := pervade2(x.shape, x.nums, y.shape, y.chars, op.nc)
		return Value{kind: KindChar, shape: shape, chars: data}, err
	case x.kind == KindChar && y.kind == KindNum && op.cn != nil:
		shape, data, err := pervade2(x.shape, x.chars, y.shape, y.nums, op.cn)
		return Value{kind: KindChar, shape: shape, chars: data}, err
	case x.kind == KindChar && y.kind == KindChar && op.cc != nil:
		shape, data, err := pervade2(x.shape, x.chars, y.shape, y.chars, op.cc)
		return Value{kind: KindNum, shape: shape, nums: data}, err
	default:
		return Value{}, errorf(TypeMismatch, "cannot %s %s and %s", op.name, x.describe(), y.describe())
	}
}

// compare orders numbers before characters; boxes and functions are
// opaque to pervasive operations.
func (op dyadicOp) compare(x, y Value) (Value, error) {
	if x.kind == KindBox || x.kind == KindFunc || y.kind == KindBox || y.kind == KindFunc {
		return Value{}, errorf(TypeMismatch, "cannot %s %s and %s", op.name, x.describe(), y.describe())
	}
	toBool := func(ord int) float64 {
		if op.cmp(ord) {
			return 1
		}
		return 0
	}
	var (
		shape Shape
		data  []float64
		err   error
	)
	switch {
	case x.kind == KindNum && y.kind == KindNum:
		shape, data, err = pervade2(x.shape, x.nums, y.shape, y.nums, func(a, b float64) float64 {
			return toBool(compareNums(a, b))
		})
	case x.kind == KindChar && y.kind == KindChar:
		shape, data, err = pervade2(x.shape, x.chars, y.shape, y.chars, func(a, b rune) float64 {
			return toBool(compareInts(int(a), int(b)))
		})
	case x.kind == KindNum:
		shape, data, err = pervade2(x.shape, x.nums, y.shape, y.chars, func(float64, rune) float64 {
			return toBool(-1)
		})
	default:
		shape, data, err = pervade2(x.shape, x.chars, y.shape, y.nums, func(rune, float64) float64 {
			return toBool(1)
		})
	}
	return Value{kind: KindNum, shape: shape, nums: data}, err
}

// pervade2 applies f across two arrays. The shape of one must be a prefix
// of the other's; each element of the shorter one pairs with the whole
// trailing block it heads in the longer one.
func pervade2[A, B, C any](xs Shape, xd []A, ys Shape, yd []B, f func(A, B) C) (Shape, []C, error) {
	if !xs.prefixOf(ys) && !ys.prefixOf(xs) {
		return nil, nil, errorf(ShapeMismatch, "shapes %s and %s do not match", xs, ys)
	}
	shape := xs
	if len(ys) > len(xs) {
		shape = ys
	}
	n := shape.Size()
	out := make([]C, n)
	if n == 0 {
		return shape.clone(), out, nil
	}
	xstride, ystride := n/len(xd), n/len(yd)
	for k := range out {
		out[k] = f(xd[k/xstride], yd[k/ystride])
	}
	return shape.clone(), out, nil
}

var (
	opNot   = monadicOp{"not", func(x float64) float64 { return 1 - x }}
	opNeg   = monadicOp{"negate", func(x float64) float64 { return -x }}
	opAbs   = monadicOp{"take the absolute value of", math.Abs}
	opSign  = monadicOp{"take the sign of", sign}
	opSqrt  = monadicOp{"take the square root of", math.Sqrt}
	opSin   = monadicOp{"take the sine of", math.Sin}
	opCos   = monadicOp{"take the cosine of", math.Cos}
	opFloor = monadicOp{"floor", math.Floor}
	opCeil  = monadicOp{"ceil", math.Ceil}
	opRound = monadicOp{"round", math.Round}
)

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

var (
	opAdd = dyadicOp{
		name: "add",
		nn:   func(x, y float64) float64 { return x + y },
		nc:   func(x float64, y rune) rune { return y + rune(x) },
		cn:   func(x rune, y float64) rune { return x + rune(y) },
	}
	opSub = dyadicOp{
		name: "subtract",
		nn:   func(x, y float64) float64 { return x - y },
		cn:   func(x rune, y float64) rune { return x - rune(y) },
		cc:   func(x, y rune) float64 { return float64(x - y) },
	}
	opMul = dyadicOp{name: "multiply", nn: func(x, y float64) float64 { return x * y }}
	opDiv = dyadicOp{name: "divide", nn: func(x, y float64) float64 { return x / y }}
	opPow = dyadicOp{name: "take the power of", nn: math.Pow}
	opMin = dyadicOp{name: "take the minimum of", nn: math.Min}
	opMax = dyadicOp{name: "take the maximum of", nn: math.Max}

	// Floored, so the result takes the sign of the divisor.
	opModulus = dyadicOp{name: "take the modulus of", nn: func(x, y float64) float64 {
		return math.Mod(math.Mod(x, y)+y, y)
	}}

	opEq = dyadicOp{name: "compare", cmp: func(o int) bool { return o == 0 }}
	opNe = dyadicOp{name: "compare", cmp: func(o int) bool { return o != 0 }}
	opLt = dyadicOp{name: "compare", cmp: func(o int) bool { return o < 0 }}
	opLe = dyadicOp{name: "compare", cmp: func(o int) bool { return o <= 0 }}
	opGt = dyadicOp{name: "compare", cmp: func(o int) bool { return o > 0 }}
	opGe = dyadicOp{name: "compare", cmp: func(o int) bool { return o >= 0 }}
)

// Add and friends expose the pervasive operators for library users; x is the
// deeper operand and y the top one.
func Add(x, y Value) (Value, error) { return opAdd.apply(x, y) }
func Sub(x, y Value) (Value, error) { return opSub.apply(x, y) }
func Mul(x, y Value) (Value, error) { return opMul.apply(x, y) }
func Div(x, y Value) (Value, error) { return opDiv.apply(x, y) }
func Neg(v Value) (Value, error)    { return opNeg.apply(v) }
