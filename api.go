// Package tacit is the execution core of a stack-based array language:
// values, signature inference, modifiers, the stack machine and under.
package tacit

import (
	"context"
	"fmt"
)

// Result is the outcome of Run.
type Result struct {
	Stack       []Value      // Final stack, deepest value first
	Signature   Signature    // Inferred signature of the program
	Diagnostics []Diagnostic // Advisory messages from binding
}

// Run binds instrs as a program in a fresh environment and calls it on
// stack.
//
// Example:
//
//	res, err := tacit.Run(context.Background(), tacit.Body(
//		tacit.Push(tacit.Num(2)),
//		tacit.Mod(tacit.ModUnder, tacit.Body(tacit.Prim(tacit.PrimTake)), tacit.Body(tacit.Prim(tacit.PrimNeg))),
//	), []tacit.Value{tacit.Nums(1, 2, 3, 4)})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Stack) // [[¯1 ¯2 3 4]]
func Run(ctx context.Context, instrs []Instr, stack []Value, opts ...Options) (*Result, error) {
	env := NewEnv(opts...)
	return env.Run(ctx, instrs, stack)
}

// Run binds instrs against env's bindings without registering them and
// calls the result on stack.
func (env *Env) Run(ctx context.Context, instrs []Instr, stack []Value) (*Result, error) {
	f, err := env.BindAnonymous(instrs)
	if err != nil {
		return nil, fmt.Errorf("failed to bind program: %w", err)
	}
	var diags []Diagnostic
	if env.opts.EnableDiagnostics {
		diags = lint(f.instrs)
		env.diags = append(env.diags, diags...)
	}
	out, err := env.CallContext(ctx, f, stack)
	if err != nil {
		return nil, err
	}
	return &Result{Stack: out, Signature: f.sig, Diagnostics: diags}, nil
}

// String returns a representation of the result for debugging.
func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	diags := ""
	if len(r.Diagnostics) > 0 {
		diags = fmt.Sprintf(" (diagnostics: %d)", len(r.Diagnostics))
	}
	return fmt.Sprintf("Result{Stack: %v, Signature: %s%s}", r.Stack, r.Signature, diags)
}
