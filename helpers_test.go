package tacit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// valueCmp compares values structurally.
var valueCmp = cmp.Comparer(func(a, b Value) bool { return a.Equal(b) })

func quietOptions() Options {
	opts := DefaultOptions()
	opts.LogLevel = ""
	return opts
}

func newTestEnv() *Env {
	return NewEnv(quietOptions())
}

func mustBind(t *testing.T, env *Env, name string, declared *Signature, instrs ...Instr) *Function {
	t.Helper()
	f, _, err := env.Bind(name, instrs, declared)
	if err != nil {
		t.Fatalf("Bind(%s) failed: %v", name, err)
	}
	return f
}

// runProgram binds instrs anonymously and runs them on stack.
func runProgram(t *testing.T, stack []Value, instrs ...Instr) []Value {
	t.Helper()
	res, err := newTestEnv().Run(context.Background(), instrs, stack)
	if err != nil {
		t.Fatalf("Run(%s) failed: %v", formatInstrs(instrs), err)
	}
	return res.Stack
}

// runErr runs instrs and returns the error, failing if there is none.
func runErr(t *testing.T, stack []Value, instrs ...Instr) error {
	t.Helper()
	_, err := newTestEnv().Run(context.Background(), instrs, stack)
	if err == nil {
		t.Fatalf("Run(%s) succeeded, expected an error", formatInstrs(instrs))
	}
	return err
}

func expectKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	if !errors.Is(err, &Error{Kind: kind}) {
		t.Fatalf("expected %s, got %v", kind, err)
	}
}

func expectStack(t *testing.T, got []Value, want ...Value) {
	t.Helper()
	if diff := cmp.Diff(want, got, valueCmp); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
}

func matrix(t *testing.T, rows, cols int, xs ...float64) Value {
	t.Helper()
	v, err := NewNumArray(Shape{rows, cols}, xs)
	if err != nil {
		t.Fatalf("NewNumArray failed: %v", err)
	}
	return v
}

func sigp(i, o int) *Signature {
	s := Sig(i, o)
	return &s
}

func push(x float64) Instr { return Push(Num(x)) }

func pushList(xs ...float64) Instr { return Push(Nums(xs...)) }

func prim(p Primitive) []Instr { return Body(Prim(p)) }
