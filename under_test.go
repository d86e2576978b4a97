package tacit

import (
	"testing"
)

func TestUnderTakeNegate(t *testing.T) {
	out := runProgram(t, []Value{Nums(1, 2, 3, 4)},
		Mod(ModUnder, Body(push(2), Prim(PrimTake)), prim(PrimNeg)))
	expectStack(t, out, Nums(-1, -2, 3, 4))
}

func TestUnder(t *testing.T) {
	m3 := matrix(t, 3, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	tests := []struct {
		name  string
		f, g  []Instr
		stack []Value
		want  []Value
	}{
		{
			name:  "drop",
			f:     Body(push(1), Prim(PrimDrop)),
			g:     prim(PrimNeg),
			stack: []Value{Nums(1, 2, 3)},
			want:  []Value{Nums(1, -2, -3)},
		},
		{
			name:  "negative take",
			f:     Body(push(-1), Prim(PrimTake)),
			g:     Body(push(10), Prim(PrimMul)),
			stack: []Value{Nums(1, 2, 3)},
			want:  []Value{Nums(1, 2, 30)},
		},
		{
			name:  "take along two axes",
			f:     Body(pushList(2, 2), Prim(PrimTake)),
			g:     prim(PrimNeg),
			stack: []Value{m3},
			want:  []Value{matrix(t, 3, 3, -1, -2, 3, -4, -5, 6, 7, 8, 9)},
		},
		{
			name:  "keep",
			f:     Body(pushList(1, 0, 1), Prim(PrimKeep)),
			g:     prim(PrimNeg),
			stack: []Value{Nums(1, 2, 3)},
			want:  []Value{Nums(-1, 2, -3)},
		},
		{
			name:  "first",
			f:     prim(PrimFirst),
			g:     prim(PrimNeg),
			stack: []Value{Nums(1, 2, 3)},
			want:  []Value{Nums(-1, 2, 3)},
		},
		{
			name:  "select",
			f:     Body(pushList(2, 0), Prim(PrimSelect)),
			g:     prim(PrimNeg),
			stack: []Value{Nums(10, 20, 30)},
			want:  []Value{Nums(-10, 20, -30)},
		},
		{
			name:  "reshape",
			f:     Body(pushList(2, 2), Prim(PrimReshape)),
			g:     prim(PrimReverse),
			stack: []Value{Nums(0, 1, 2, 3)},
			want:  []Value{Nums(2, 3, 0, 1)},
		},
		{
			name:  "truncating reshape",
			f:     Body(pushList(3), Prim(PrimReshape)),
			g:     prim(PrimNeg),
			stack: []Value{Nums(1, 2, 3, 4, 5)},
			want:  []Value{Nums(-1, -2, -3, 4, 5)},
		},
		{
			name:  "deshape",
			f:     prim(PrimDeshape),
			g:     prim(PrimReverse),
			stack: []Value{matrix(t, 2, 2, 1, 2, 3, 4)},
			want:  []Value{matrix(t, 2, 2, 4, 3, 2, 1)},
		},
		{
			name:  "arithmetic",
			f:     Body(push(10), Prim(PrimAdd)),
			g:     Body(push(2), Prim(PrimMul)),
			stack: []Value{Num(1)},
			want:  []Value{Num(12)},
		},
		{
			name:  "dip",
			f:     Body(Mod(ModDip, prim(PrimReverse))),
			g:     prim(PrimLen),
			stack: []Value{Nums(1, 2), Nums(3, 4, 5)},
			want:  []Value{Nums(1, 2), Num(3)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runProgram(t, tt.stack, Mod(ModUnder, tt.f, tt.g))
			expectStack(t, out, tt.want...)
		})
	}
}

// Undoing f after identity must give back the original argument.
func TestUnderIdentityRoundTrip(t *testing.T) {
	m3 := matrix(t, 3, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	list := Nums(1, 2, 3)
	tests := []struct {
		name  string
		f     []Instr
		stack []Value
	}{
		{"identity", prim(PrimIdentity), []Value{list}},
		{"neg", prim(PrimNeg), []Value{list}},
		{"not", prim(PrimNot), []Value{list}},
		{"reverse", prim(PrimReverse), []Value{list}},
		{"transpose", prim(PrimTranspose), []Value{matrix(t, 2, 3, 1, 2, 3, 4, 5, 6)}},
		{"box", prim(PrimBox), []Value{list}},
		{"unbox", prim(PrimUnbox), []Value{Box(list)}},
		{"deshape", prim(PrimDeshape), []Value{m3}},
		{"first", prim(PrimFirst), []Value{list}},
		{"last", prim(PrimLast), []Value{m3}},
		{"add", Body(push(3), Prim(PrimAdd)), []Value{list}},
		{"sub", Body(push(3), Prim(PrimSub)), []Value{list}},
		{"mul", Body(push(2), Prim(PrimMul)), []Value{list}},
		{"div", Body(push(4), Prim(PrimDiv)), []Value{list}},
		{"pow", Body(push(2), Prim(PrimPow)), []Value{list}},
		{"rotate", Body(push(1), Prim(PrimRotate)), []Value{list}},
		{"take", Body(push(2), Prim(PrimTake)), []Value{list}},
		{"negative take", Body(push(-2), Prim(PrimTake)), []Value{list}},
		{"drop", Body(push(1), Prim(PrimDrop)), []Value{list}},
		{"negative drop", Body(push(-1), Prim(PrimDrop)), []Value{list}},
		{"take along two axes", Body(pushList(2, 2), Prim(PrimTake)), []Value{m3}},
		{"drop along two axes", Body(pushList(1, 1), Prim(PrimDrop)), []Value{m3}},
		{"select", Body(pushList(2, 0), Prim(PrimSelect)), []Value{list}},
		{"select one", Body(push(1), Prim(PrimSelect)), []Value{list}},
		{"keep", Body(pushList(1, 0, 1), Prim(PrimKeep)), []Value{list}},
		{"truncating reshape", Body(pushList(2), Prim(PrimReshape)), []Value{list}},
		{"cycling reshape", Body(pushList(2, 3), Prim(PrimReshape)), []Value{list}},
		{"flip", Body(Prim(PrimFlip)), []Value{Num(1), Num(2)}},
		{"dip", Body(Mod(ModDip, prim(PrimNeg))), []Value{Num(1), Num(2)}},
		{"composed", Body(Prim(PrimReverse), push(1), Prim(PrimDrop), Prim(PrimNeg)), []Value{list}},
		{"padded take", Body(Mod(ModFill, Body(push(0)), Body(push(5), Prim(PrimTake)))), []Value{list}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runProgram(t, tt.stack, Mod(ModUnder, tt.f, prim(PrimIdentity)))
			expectStack(t, out, tt.stack...)
		})
	}
}

func TestUnderErrors(t *testing.T) {
	env := newTestEnv()

	_, err := env.BindAnonymous(Body(Mod(ModUnder, prim(PrimDup), prim(PrimIdentity))))
	expectKind(t, err, InvalidInversion)

	_, err = env.BindAnonymous(Body(Mod(ModUnder, Body(Mod(ModFork, prim(PrimNeg), prim(PrimNeg))), prim(PrimIdentity))))
	expectKind(t, err, InvalidInversion)

	mustBind(t, env, "r", sigp(1, 1), Ref("r"))
	_, err = env.BindAnonymous(Body(Mod(ModUnder, Body(Ref("r")), prim(PrimIdentity))))
	expectKind(t, err, InvalidInversion)

	err = runErr(t, []Value{Nums(1, 2, 3)},
		Mod(ModUnder, Body(pushList(2, 1, 0), Prim(PrimKeep)), prim(PrimIdentity)))
	expectKind(t, err, InvalidInversion)

	// The replacement must have as many rows as were taken.
	err = runErr(t, []Value{Nums(1, 2, 3, 4)},
		Mod(ModUnder, Body(push(2), Prim(PrimTake)), Body(pushList(9), Prim(PrimJoin))))
	expectKind(t, err, ShapeMismatch)

	// Reshape can only be undone when g keeps the element count.
	err = runErr(t, []Value{Nums(1, 2, 3, 4)},
		Mod(ModUnder, Body(pushList(2, 2), Prim(PrimReshape)), Body(push(1), Prim(PrimDrop))))
	expectKind(t, err, ShapeMismatch)
}

func TestUnderKeepExtendsMaskWithFill(t *testing.T) {
	out := runProgram(t, []Value{Nums(1, 2, 3, 4)},
		Mod(ModFill, Body(push(1)),
			Body(Mod(ModUnder, Body(pushList(0, 1), Prim(PrimKeep)), prim(PrimNeg)))))
	expectStack(t, out, Nums(1, -2, -3, -4))

	// Without a fill the short mask does not match the rows.
	err := runErr(t, []Value{Nums(1, 2, 3, 4)},
		Mod(ModUnder, Body(pushList(0, 1), Prim(PrimKeep)), prim(PrimNeg)))
	expectKind(t, err, ShapeMismatch)
}

func TestInvert(t *testing.T) {
	env := newTestEnv()
	mustBind(t, env, "inc", nil, push(1), Prim(PrimAdd))

	tests := []struct {
		name  string
		f     []Instr
		stack []Value
		want  []Value
	}{
		{"add", Body(push(3), Prim(PrimAdd)), []Value{Num(10)}, []Value{Num(7)}},
		{"neg", prim(PrimNeg), []Value{Num(4)}, []Value{Num(-4)}},
		{"box", prim(PrimBox), []Value{Box(Num(1))}, []Value{Num(1)}},
		{"rotate", Body(push(1), Prim(PrimRotate)), []Value{Nums(1, 2, 3)}, []Value{Nums(3, 1, 2)}},
		{"composed", Body(Prim(PrimNeg), Prim(PrimReverse)), []Value{Nums(1, 2)}, []Value{Nums(-2, -1)}},
		{"named", Body(Ref("inc")), []Value{Num(5)}, []Value{Num(4)}},
		{"flip", prim(PrimFlip), []Value{Num(1), Num(2)}, []Value{Num(2), Num(1)}},
		{"transpose", prim(PrimTranspose), []Value{matrix(t, 2, 3, 1, 2, 3, 4, 5, 6)}, []Value{matrix(t, 3, 2, 1, 4, 2, 5, 3, 6)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.Run(t.Context(), Body(Mod(ModInvert, tt.f)), tt.stack)
			if err != nil {
				t.Fatal(err)
			}
			expectStack(t, res.Stack, tt.want...)
		})
	}

	_, err := env.BindAnonymous(Body(Mod(ModInvert, prim(PrimDup))))
	expectKind(t, err, InvalidInversion)

	_, err = env.BindAnonymous(Body(Mod(ModInvert, Body(push(3)))))
	expectKind(t, err, InvalidInversion)

	f, err := env.BindAnonymous(Body(Mod(ModInvert, Body(push(3), Prim(PrimAdd)))))
	if err != nil {
		t.Fatal(err)
	}
	if f.Signature() != Sig(1, 1) {
		t.Fatalf("invert signature = %s, want |1.1", f.Signature())
	}
}
