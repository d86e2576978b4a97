package tacit

import (
	"testing"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		a, b Signature
		want Signature
	}{
		{Sig(1, 1), Sig(1, 1), Sig(1, 1)},
		{Sig(0, 1), Sig(2, 1), Sig(1, 1)},
		{Sig(1, 2), Sig(2, 1), Sig(1, 1)},
		{Sig(1, 3), Sig(1, 0), Sig(1, 2)},
		{Sig(2, 0), Sig(0, 1), Sig(2, 1)},
	}
	for _, tt := range tests {
		if got := tt.a.Compose(tt.b); got != tt.want {
			t.Errorf("%s then %s = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		text    string
		want    Signature
		wantErr bool
	}{
		{text: "|2.1", want: Sig(2, 1)},
		{text: "0.1", want: Sig(0, 1)},
		{text: "|1", wantErr: true},
		{text: "|-1.1", wantErr: true},
		{text: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseSignature(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSignature(%q) = %s, expected an error", tt.text, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("ParseSignature(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestCompatibility(t *testing.T) {
	if !Sig(2, 1).IsCompatibleWith(Sig(3, 2)) {
		t.Error("|2.1 and |3.2 should be compatible")
	}
	if !Sig(3, 2).IsSupersetOf(Sig(2, 1)) || Sig(2, 1).IsSupersetOf(Sig(3, 2)) {
		t.Error("superset must require at least as many inputs")
	}
	if got := Sig(1, 3).Max(Sig(2, 1)); got != Sig(2, 3) {
		t.Errorf("Max = %s", got)
	}
}

func TestInferSignature(t *testing.T) {
	tests := []struct {
		name   string
		instrs []Instr
		want   Signature
	}{
		{"empty", nil, Sig(0, 0)},
		{"constant", Body(push(1)), Sig(0, 1)},
		{"monadic", Body(Prim(PrimNeg)), Sig(1, 1)},
		{"deficit", Body(push(1), Prim(PrimAdd), Prim(PrimAdd)), Sig(2, 1)},
		{"dup", Body(Prim(PrimDup), Prim(PrimMul)), Sig(1, 1)},
		{"dip", Body(Mod(ModDip, prim(PrimNeg))), Sig(2, 2)},
		{"gap", Body(Mod(ModGap, prim(PrimNeg))), Sig(2, 1)},
		{"both", Body(Mod(ModBoth, prim(PrimAdd))), Sig(4, 2)},
		{"fork", Body(Mod(ModFork, prim(PrimNeg), prim(PrimSub))), Sig(3, 2)},
		{"bracket", Body(Mod(ModBracket, prim(PrimNeg), prim(PrimSub))), Sig(3, 2)},
		{"rows", Body(Mod(ModRows, prim(PrimAdd))), Sig(2, 1)},
		{"reduce", Body(Mod(ModReduce, prim(PrimAdd))), Sig(1, 1)},
		{"repeat", Body(Mod(ModRepeat, prim(PrimNeg))), Sig(2, 1)},
		{"if", Body(Mod(ModIf, prim(PrimNeg), prim(PrimSub))), Sig(3, 1)},
		{"fill", Body(Mod(ModFill, Body(push(0)), Body(push(3), Prim(PrimTake)))), Sig(1, 1)},
		{"array", Body(Array(push(1), Prim(PrimDup))), Sig(0, 1)},
		{"static call", Body(PushFunc(Prim(PrimAdd)), Prim(PrimCall)), Sig(2, 1)},
		{"call through flip", Body(PushFunc(Prim(PrimNeg)), Prim(PrimFlip), Prim(PrimPop), Prim(PrimCall)), Sig(2, 1)},
	}
	env := newTestEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := env.BindAnonymous(tt.instrs)
			if err != nil {
				t.Fatalf("bind failed: %v", err)
			}
			if f.Signature() != tt.want {
				t.Fatalf("signature = %s, want %s", f.Signature(), tt.want)
			}
		})
	}
}

func TestModifierSignatureErrors(t *testing.T) {
	tests := []struct {
		name   string
		instrs []Instr
	}{
		{"fold without accumulator", Body(Mod(ModFold, prim(PrimNeg)))},
		{"reduce needs |2.1", Body(Mod(ModReduce, prim(PrimNeg)))},
		{"repeat changes height", Body(Mod(ModRepeat, prim(PrimAdd)))},
		{"rows without input", Body(Mod(ModRows, Body(push(1))))},
		{"fork with one branch", Body(Mod(ModFork, prim(PrimNeg)))},
		{"dip with two operands", Body(Mod(ModDip, prim(PrimNeg), prim(PrimNeg)))},
	}
	env := newTestEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.BindAnonymous(tt.instrs)
			expectKind(t, err, StackSignatureMismatch)
		})
	}
}

func TestBindConstant(t *testing.T) {
	env := newTestEnv()
	mustBind(t, env, "x", nil, push(5))
	mustBind(t, env, "y", nil, Ref("x"), Prim(PrimNeg))
	f := mustBind(t, env, "f", nil, Ref("x"), Prim(PrimAdd))

	for name, want := range map[string]Value{"x": Num(5), "y": Num(-5)} {
		b, ok := env.Lookup(name)
		if !ok {
			t.Fatalf("%s is not bound", name)
		}
		if b.Kind != BindConstant || !b.Value.Equal(want) {
			t.Fatalf("%s = %s %s, want constant %s", name, b.Kind, b.Value, want)
		}
	}
	b, _ := env.Lookup("f")
	if b.Kind != BindFunction || f.Signature() != Sig(1, 1) {
		t.Fatalf("f should be a |1.1 function, got %s %s", b.Kind, f.Signature())
	}
	got, err := env.Call(f, []Value{Num(1)})
	if err != nil {
		t.Fatal(err)
	}
	expectStack(t, got, Num(6))

	// A declared |0.1 signature keeps the binding a function.
	mustBind(t, env, "z", sigp(0, 1), push(1))
	if b, _ := env.Lookup("z"); b.Kind != BindFunction {
		t.Fatalf("z should be a function binding, got %s", b.Kind)
	}

	var names []string
	for _, b := range env.Bindings() {
		names = append(names, b.Name)
	}
	if len(names) != 4 || names[0] != "x" || names[3] != "z" {
		t.Fatalf("bindings out of order: %v", names)
	}
}

func TestBindErrors(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.Bind("f", Body(Prim(PrimAdd)), sigp(1, 1))
	expectKind(t, err, StackSignatureMismatch)

	_, _, err = env.Bind("g", Body(Ref("nope")), nil)
	expectKind(t, err, AmbiguousSignature)

	_, _, err = env.Bind("h", Body(Prim(PrimCall)), nil)
	expectKind(t, err, AmbiguousSignature)

	_, _, err = env.Bind("r", Body(Prim(PrimDup), Ref("r")), nil)
	expectKind(t, err, AmbiguousSignature)

	_, _, err = env.Bind("", Body(push(1)), nil)
	if err == nil {
		t.Fatal("expected an error for an empty name")
	}

	// A declared signature stands in for a call that cannot be inferred.
	apply := mustBind(t, env, "apply", sigp(3, 1), Prim(PrimCall))
	if apply.Signature() != Sig(3, 1) {
		t.Fatalf("apply signature = %s", apply.Signature())
	}
}

func TestRecursionWithDeclaredSignature(t *testing.T) {
	env := newTestEnv()
	f := mustBind(t, env, "fact", sigp(1, 1),
		Prim(PrimDup), push(1), Prim(PrimLe),
		Mod(ModIf,
			Body(Prim(PrimPop), push(1)),
			Body(Prim(PrimDup), push(1), Prim(PrimSub), Ref("fact"), Prim(PrimMul))))
	got, err := env.Call(f, []Value{Num(5)})
	if err != nil {
		t.Fatal(err)
	}
	expectStack(t, got, Num(120))
}
