package tacit

import "sort"

// Primitive identifies a built-in function.
type Primitive int

const (
	PrimDup Primitive = iota
	PrimOver
	PrimFlip
	PrimPop
	PrimIdentity

	PrimNot
	PrimNeg
	PrimAbs
	PrimSign
	PrimSqrt
	PrimSin
	PrimCos
	PrimFloor
	PrimCeil
	PrimRound

	PrimAdd
	PrimSub
	PrimMul
	PrimDiv
	PrimMod
	PrimPow
	PrimMin
	PrimMax
	PrimEq
	PrimNe
	PrimLt
	PrimLe
	PrimGt
	PrimGe

	PrimLen
	PrimShape
	PrimRange
	PrimFirst
	PrimLast
	PrimReverse
	PrimDeshape
	PrimTranspose
	PrimBox
	PrimUnbox
	PrimRise
	PrimFall
	PrimClassify
	PrimDeduplicate

	PrimJoin
	PrimCouple
	PrimSelect
	PrimRotate
	PrimTake
	PrimDrop
	PrimKeep
	PrimReshape

	PrimCall
	PrimAssert

	numPrimitives
)

type primInfo struct {
	name string
	sig  Signature
	// dynamic marks primitives whose signature depends on a runtime value.
	dynamic bool
	mon     *monadicOp
	dy      *dyadicOp
}

var primTable = [numPrimitives]primInfo{
	PrimDup:      {name: "dup", sig: Sig(1, 2)},
	PrimOver:     {name: "over", sig: Sig(2, 3)},
	PrimFlip:     {name: "flip", sig: Sig(2, 2)},
	PrimPop:      {name: "pop", sig: Sig(1, 0)},
	PrimIdentity: {name: "identity", sig: Sig(1, 1)},

	PrimNot:   {name: "not", sig: Sig(1, 1), mon: &opNot},
	PrimNeg:   {name: "neg", sig: Sig(1, 1), mon: &opNeg},
	PrimAbs:   {name: "abs", sig: Sig(1, 1), mon: &opAbs},
	PrimSign:  {name: "sign", sig: Sig(1, 1), mon: &opSign},
	PrimSqrt:  {name: "sqrt", sig: Sig(1, 1), mon: &opSqrt},
	PrimSin:   {name: "sin", sig: Sig(1, 1), mon: &opSin},
	PrimCos:   {name: "cos", sig: Sig(1, 1), mon: &opCos},
	PrimFloor: {name: "floor", sig: Sig(1, 1), mon: &opFloor},
	PrimCeil:  {name: "ceil", sig: Sig(1, 1), mon: &opCeil},
	PrimRound: {name: "round", sig: Sig(1, 1), mon: &opRound},

	PrimAdd: {name: "add", sig: Sig(2, 1), dy: &opAdd},
	PrimSub: {name: "sub", sig: Sig(2, 1), dy: &opSub},
	PrimMul: {name: "mul", sig: Sig(2, 1), dy: &opMul},
	PrimDiv: {name: "div", sig: Sig(2, 1), dy: &opDiv},
	PrimMod: {name: "mod", sig: Sig(2, 1), dy: &opModulus},
	PrimPow: {name: "pow", sig: Sig(2, 1), dy: &opPow},
	PrimMin: {name: "min", sig: Sig(2, 1), dy: &opMin},
	PrimMax: {name: "max", sig: Sig(2, 1), dy: &opMax},
	PrimEq:  {name: "eq", sig: Sig(2, 1), dy: &opEq},
	PrimNe:  {name: "ne", sig: Sig(2, 1), dy: &opNe},
	PrimLt:  {name: "lt", sig: Sig(2, 1), dy: &opLt},
	PrimLe:  {name: "le", sig: Sig(2, 1), dy: &opLe},
	PrimGt:  {name: "gt", sig: Sig(2, 1), dy: &opGt},
	PrimGe:  {name: "ge", sig: Sig(2, 1), dy: &opGe},

	PrimLen:         {name: "len", sig: Sig(1, 1)},
	PrimShape:       {name: "shape", sig: Sig(1, 1)},
	PrimRange:       {name: "range", sig: Sig(1, 1)},
	PrimFirst:       {name: "first", sig: Sig(1, 1)},
	PrimLast:        {name: "last", sig: Sig(1, 1)},
	PrimReverse:     {name: "reverse", sig: Sig(1, 1)},
	PrimDeshape:     {name: "deshape", sig: Sig(1, 1)},
	PrimTranspose:   {name: "transpose", sig: Sig(1, 1)},
	PrimBox:         {name: "box", sig: Sig(1, 1)},
	PrimUnbox:       {name: "unbox", sig: Sig(1, 1)},
	PrimRise:        {name: "rise", sig: Sig(1, 1)},
	PrimFall:        {name: "fall", sig: Sig(1, 1)},
	PrimClassify:    {name: "classify", sig: Sig(1, 1)},
	PrimDeduplicate: {name: "deduplicate", sig: Sig(1, 1)},

	PrimJoin:    {name: "join", sig: Sig(2, 1)},
	PrimCouple:  {name: "couple", sig: Sig(2, 1)},
	PrimSelect:  {name: "select", sig: Sig(2, 1)},
	PrimRotate:  {name: "rotate", sig: Sig(2, 1)},
	PrimTake:    {name: "take", sig: Sig(2, 1)},
	PrimDrop:    {name: "drop", sig: Sig(2, 1)},
	PrimKeep:    {name: "keep", sig: Sig(2, 1)},
	PrimReshape: {name: "reshape", sig: Sig(2, 1)},

	PrimCall:   {name: "call", dynamic: true},
	PrimAssert: {name: "assert", sig: Sig(2, 0)},
}

var primByName = func() map[string]Primitive {
	m := make(map[string]Primitive, numPrimitives)
	for p := Primitive(0); p < numPrimitives; p++ {
		m[primTable[p].name] = p
	}
	return m
}()

func (p Primitive) String() string {
	if p < 0 || p >= numPrimitives {
		return "unknown"
	}
	return primTable[p].name
}

// Signature returns the fixed signature of p. The second result is false
// for primitives whose arity is only known at run time.
func (p Primitive) Signature() (Signature, bool) {
	info := primTable[p]
	return info.sig, !info.dynamic
}

// IsPervasive reports whether p broadcasts element-wise.
func (p Primitive) IsPervasive() bool {
	return primTable[p].mon != nil || primTable[p].dy != nil
}

// ParsePrimitive resolves a primitive by name.
func ParsePrimitive(name string) (Primitive, bool) {
	p, ok := primByName[name]
	return p, ok
}

// Primitives lists all primitives sorted by name.
func Primitives() []Primitive {
	out := make([]Primitive, 0, numPrimitives)
	for p := Primitive(0); p < numPrimitives; p++ {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
