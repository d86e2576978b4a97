package program

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/speakeasy-api/tacit"
	"gopkg.in/yaml.v3"
)

var valueCmp = cmp.Comparer(func(a, b tacit.Value) bool { return a.Equal(b) })

const underProgram = `options:
  log_level: error
  max_call_depth: 50
bindings:
  square: [dup, mul]
  double:
    signature: "|1.1"
    body: [2, mul]
  main:
    - under: [[2, take], neg]
stack:
  - [1, 2, 3, 4]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(underProgram))
	if err != nil {
		t.Fatal(err)
	}
	if p.Entry != "main" {
		t.Errorf("entry = %q, want main", p.Entry)
	}
	if p.Options.MaxCallDepth != 50 || p.Options.LogLevel != "error" {
		t.Errorf("options not decoded: %+v", p.Options)
	}

	var names []string
	for name := range p.Bindings.All() {
		names = append(names, name)
	}
	if diff := cmp.Diff([]string{"square", "double", "main"}, names); diff != "" {
		t.Fatalf("binding order mismatch (-want +got):\n%s", diff)
	}

	square, _ := p.Bindings.Get("square")
	if len(square.Body) != 2 {
		t.Fatalf("square has %d instructions, want 2", len(square.Body))
	}
	want := tacit.Span{Binding: "square", Index: 1, Line: 5, Column: 17}
	if got := square.Body[1].Span; got != want {
		t.Errorf("span = %+v, want %+v", got, want)
	}
	if square.Line != 5 || square.Column != 3 {
		t.Errorf("square defined at %d:%d, want 5:3", square.Line, square.Column)
	}

	double, _ := p.Bindings.Get("double")
	if double.Signature == nil || *double.Signature != tacit.Sig(1, 1) {
		t.Errorf("double signature = %v, want |1.1", double.Signature)
	}
	if square.Signature != nil {
		t.Errorf("square has a declared signature %v", square.Signature)
	}

	if diff := cmp.Diff([]tacit.Value{tacit.Nums(1, 2, 3, 4)}, p.Stack, valueCmp); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
}

func TestRun(t *testing.T) {
	p, err := Parse([]byte(underProgram))
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background(), p.NewEnv())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]tacit.Value{tacit.Nums(-1, -2, 3, 4)}, res.Stack, valueCmp); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
	if res.Signature != tacit.Sig(1, 1) {
		t.Errorf("signature = %s, want |1.1", res.Signature)
	}
}

func TestRunBodies(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		stack []tacit.Value
		want  []tacit.Value
	}{
		{
			name:  "single operand modifier",
			src:   "main: [{dip: [10, add]}]",
			stack: []tacit.Value{tacit.Num(1), tacit.Num(2)},
			want:  []tacit.Value{tacit.Num(11), tacit.Num(2)},
		},
		{
			name: "array literal and value literal",
			src:  "main: [{value: [1, 2]}, [3, 4], join]",
			want: []tacit.Value{tacit.Nums(1, 2, 3, 4)},
		},
		{
			name: "function reference",
			src:  "main: [5, {func: [1, add]}, call]",
			want: []tacit.Value{tacit.Num(6)},
		},
		{
			name: "high minus",
			src:  "main: [¯3, abs]",
			want: []tacit.Value{tacit.Num(3)},
		},
		{
			name:  "reference to an earlier binding",
			src:   "inc: [1, add]\nmain: [inc, inc]",
			stack: []tacit.Value{tacit.Num(1)},
			want:  []tacit.Value{tacit.Num(3)},
		},
		{
			name: "quoted string and char",
			src:  `main: ["ab", {char: c}, join]`,
			want: []tacit.Value{tacit.Str("abc")},
		},
		{
			name:  "bare body",
			src:   "main: neg",
			stack: []tacit.Value{tacit.Num(2)},
			want:  []tacit.Value{tacit.Num(-2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "options: {log_level: error}\nbindings:\n" + indent(tt.src)
			p, err := Parse([]byte(src))
			if err != nil {
				t.Fatal(err)
			}
			p.Stack = tt.stack
			res, err := p.Run(context.Background(), p.NewEnv())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, res.Stack, valueCmp); diff != "" {
				t.Fatalf("stack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestRunHook(t *testing.T) {
	p, err := Parse([]byte(`options: {log_level: error}
bindings:
  main: [{hook: double, signature: "|1.1"}]
stack: [4]
`))
	if err != nil {
		t.Fatal(err)
	}
	env := p.NewEnv()
	env.RegisterHook("double", func(args []tacit.Value) ([]tacit.Value, error) {
		return []tacit.Value{tacit.Num(args[0].Nums()[0] * 2)}, nil
	})
	res, err := p.Run(context.Background(), env)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]tacit.Value{tacit.Num(8)}, res.Stack, valueCmp); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
}

func TestConstantEntry(t *testing.T) {
	p, err := Parse([]byte("options: {log_level: error}\nbindings:\n  three: 3\nstack: [1]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Entry != "three" {
		t.Fatalf("entry = %q, want the last binding", p.Entry)
	}
	res, err := p.Run(context.Background(), p.NewEnv())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]tacit.Value{tacit.Num(1), tacit.Num(3)}, res.Stack, valueCmp); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
	if res.Signature != tacit.Sig(0, 1) {
		t.Errorf("signature = %s, want |0.1", res.Signature)
	}
}

func TestExplicitEntry(t *testing.T) {
	p, err := Parse([]byte("options: {log_level: error}\nentry: first\nbindings:\n  first: [1, add]\n  second: [2, add]\nstack: [0]\n"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background(), p.NewEnv())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]tacit.Value{tacit.Num(1)}, res.Stack, valueCmp); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBody(t *testing.T) {
	body, err := ParseBody("repl", []byte("[1, 2, add, {dip: neg}]"))
	if err != nil {
		t.Fatal(err)
	}
	if len(body) != 4 {
		t.Fatalf("got %d instructions, want 4", len(body))
	}
	if got := body[3].Span; got != (tacit.Span{Binding: "repl", Index: 3, Line: 1, Column: 13}) {
		t.Errorf("span = %+v", got)
	}
	res, err := tacit.Run(context.Background(), body, []tacit.Value{tacit.Num(5)}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]tacit.Value{tacit.Num(-5), tacit.Num(3)}, res.Stack, valueCmp); diff != "" {
		t.Fatalf("stack mismatch (-want +got):\n%s", diff)
	}

	if body, err := ParseBody("repl", nil); err != nil || body != nil {
		t.Fatalf("empty source gave %v, %v", body, err)
	}
	if _, err := ParseBody("repl", []byte("[1, {nosuch: 1}]")); err == nil {
		t.Fatal("expected an error")
	}
}

func quiet() tacit.Options {
	opts := tacit.DefaultOptions()
	opts.LogLevel = "error"
	return opts
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		src  string
		want tacit.Value
	}{
		{"3", tacit.Num(3)},
		{"-1.5", tacit.Num(-1.5)},
		{"¯2", tacit.Num(-2)},
		{"true", tacit.Num(1)},
		{`"hi"`, tacit.Str("hi")},
		{"hi", tacit.Str("hi")},
		{"{char: x}", tacit.Char('x')},
		{"{box: [1, 2]}", tacit.Box(tacit.Nums(1, 2))},
		{"[1, 2, 3]", tacit.Nums(1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseValue(node(t, tt.src))
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseValue(%s) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}

	m, err := ParseValue(node(t, "[[1, 2], [3, 4], [5, 6]]"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tacit.Shape{3, 2}, m.Shape()); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2, 3, 4, 5, 6}, m.Nums()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestParseValueErrors(t *testing.T) {
	_, err := ParseValue(node(t, "[[1, 2], [3]]"))
	if tacit.KindOf(err) != tacit.ShapeMismatch {
		t.Fatalf("expected a shape mismatch, got %v", err)
	}
	var perr *Error
	if !errors.As(err, &perr) || perr.Line != 1 {
		t.Fatalf("expected a located error, got %v", err)
	}

	for _, src := range []string{"{char: xy}", "~", "{nope: 1}", "{char: a, box: 1}"} {
		if _, err := ParseValue(node(t, src)); err == nil {
			t.Errorf("ParseValue(%s) succeeded, expected an error", src)
		}
	}
}

func node(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatal(err)
	}
	return doc.Content[0]
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{"unknown key", "bindings: {}\nextra: 1\n", 2, "unknown key"},
		{"root not a mapping", "- 1\n", 1, "must be a mapping"},
		{"bindings not a mapping", "bindings: [1]\n", 1, "bindings must be"},
		{"unknown modifier", "bindings:\n  f: [{nosuch: [dup]}]\n", 2, "unknown modifier"},
		{"bad char", "bindings:\n  f:\n    - {char: ab}\n", 3, "exactly one character"},
		{"hook without signature", "bindings:\n  f: [{hook: h}]\n", 2, "name and a signature"},
		{"null instruction", "bindings:\n  f: [1, ~]\n", 2, "unexpected !!null"},
		{"bad signature", "bindings:\n  f: {signature: nope, body: [dup]}\n", 2, "invalid signature"},
		{"bad options", "options:\n  max_call_depth: 0\n", 2, "invalid options"},
		{"stack not a sequence", "stack: 1\n", 1, "stack must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("line = %d, want %d (%v)", perr.Line, tt.wantLine, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}

	if _, err := Parse([]byte("bindings: [\n")); err == nil {
		t.Error("malformed YAML parsed")
	}
	if _, err := Parse(nil); err == nil {
		t.Error("empty program parsed")
	}
}

func TestBindErrorLocation(t *testing.T) {
	p, err := Parse([]byte("options: {log_level: error}\nbindings:\n  ok: [1]\n  f: [1, dup, dup, add, under]\n"))
	if err == nil {
		_, err = p.Run(context.Background(), p.NewEnv())
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Line != 4 || !strings.Contains(err.Error(), "failed to load binding f") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRuntimeErrorSpan(t *testing.T) {
	p, err := Parse([]byte("options: {log_level: error}\nbindings:\n  main:\n    - {value: [1, 2]}\n    - add\nstack:\n  - [1, 2, 3]\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Run(context.Background(), p.NewEnv())
	var terr *tacit.Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *tacit.Error, got %v", err)
	}
	if terr.Kind != tacit.ShapeMismatch {
		t.Errorf("kind = %s, want %s", terr.Kind, tacit.ShapeMismatch)
	}
	want := tacit.Span{Binding: "main", Index: 1, Line: 5, Column: 7}
	if terr.Span != want {
		t.Errorf("span = %+v, want %+v", terr.Span, want)
	}
}
