package tacit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name   string
		instrs []Instr
		want   []Diagnostic
	}{
		{
			name:   "cancelling pair",
			instrs: Body(Prim(PrimFlip), Prim(PrimFlip)),
			want: []Diagnostic{{
				Message:  "flip flip cancels out",
				Severity: SeverityAdvice,
				Span:     Span{Binding: "f", Index: 0},
			}},
		},
		{
			name:   "box then unbox",
			instrs: Body(Prim(PrimBox), Prim(PrimUnbox)),
			want: []Diagnostic{{
				Message:  "box unbox cancels out",
				Severity: SeverityAdvice,
				Span:     Span{Binding: "f", Index: 0},
			}},
		},
		{
			name:   "bare identity",
			instrs: Body(Prim(PrimIdentity)),
			want: []Diagnostic{{
				Message:  "identity does nothing here",
				Severity: SeverityStyle,
				Span:     Span{Binding: "f", Index: 0},
			}},
		},
		{
			name:   "dip identity",
			instrs: Body(push(1), Mod(ModDip, prim(PrimIdentity))),
			want: []Diagnostic{{
				Message:  "dip with identity is redundant",
				Severity: SeverityAdvice,
				Span:     Span{Binding: "f", Index: 1},
			}},
		},
		{
			name:   "identical fork branches",
			instrs: Body(Mod(ModFork, prim(PrimNeg), prim(PrimNeg))),
			want: []Diagnostic{{
				Message:  "fork branches are identical; compute the value once and dup it",
				Severity: SeverityAdvice,
				Span:     Span{Binding: "f", Index: 0},
			}},
		},
		{
			name:   "nested body",
			instrs: Body(Mod(ModBoth, Body(Prim(PrimNeg), Prim(PrimNeg)))),
			want: []Diagnostic{{
				Message:  "neg neg cancels out",
				Severity: SeverityAdvice,
				Span:     Span{Binding: "f", Index: 0},
			}},
		},
		{
			name:   "clean",
			instrs: Body(Prim(PrimNeg), Prim(PrimReverse)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			_, diags, err := env.Bind("f", tt.instrs, nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, diags); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRedefinitionWarning(t *testing.T) {
	env := newTestEnv()
	mustBind(t, env, "f", nil, Prim(PrimNeg))
	_, diags, err := env.Bind("f", Body(Prim(PrimNot)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 1 || diags[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %v", diags)
	}
	if got := len(env.Diagnostics()); got != 1 {
		t.Fatalf("env holds %d diagnostics, want 1", got)
	}
	b, _ := env.Lookup("f")
	got, err := env.Call(b.Func, []Value{Num(1)})
	if err != nil {
		t.Fatal(err)
	}
	expectStack(t, got, Num(0))
}

func TestDiagnosticsDisabled(t *testing.T) {
	opts := quietOptions()
	opts.EnableDiagnostics = false
	env := NewEnv(opts)
	_, diags, err := env.Bind("f", Body(Prim(PrimFlip), Prim(PrimFlip)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 || len(env.Diagnostics()) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Message: "neg neg cancels out", Severity: SeverityAdvice, Span: Span{Binding: "f", Index: 2}}
	if got := d.String(); got != "advice: neg neg cancels out at "+d.Span.String() {
		t.Fatalf("String() = %q", got)
	}
	d.Span = Span{}
	if got := d.String(); got != "advice: neg neg cancels out" {
		t.Fatalf("String() = %q", got)
	}
}
