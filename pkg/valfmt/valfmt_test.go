package valfmt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/speakeasy-api/tacit"
)

func mustArray(t *testing.T, v tacit.Value, err error) tacit.Value {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestFormat(t *testing.T) {
	m := func(shape tacit.Shape, xs ...float64) tacit.Value {
		v, err := tacit.NewNumArray(shape, xs)
		return mustArray(t, v, err)
	}
	chars, err := tacit.NewCharArray(tacit.Shape{2, 2}, []rune("abcd"))
	if err != nil {
		t.Fatal(err)
	}
	boxes, err := tacit.NewBoxArray(tacit.Shape{2}, []tacit.Value{tacit.Num(1), tacit.Nums(2, 3)})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		v    tacit.Value
		want []string
	}{
		{"number", tacit.Num(3), []string{"3"}},
		{"negative", tacit.Num(-2.5), []string{"¯2.5"}},
		{"char", tacit.Char('x'), []string{"@x"}},
		{"string", tacit.Str("hi"), []string{`"hi"`}},
		{"list", tacit.Nums(1, 2, 3), []string{"[1 2 3]"}},
		{"empty list", tacit.Nums(), []string{"[]"}},
		{"empty matrix", m(tacit.Shape{0, 3}), []string{"[] [0 × 3]"}},
		{"box", tacit.Box(tacit.Nums(1, 2)), []string{"□[1 2]"}},
		{"list of boxes", boxes, []string{"[□1 □[2 3]]"}},
		{
			name: "matrix",
			v:    m(tacit.Shape{2, 2}, 1, -20, 300, 4),
			want: []string{
				"┌─────────┐",
				"│   1 ¯20 │",
				"│ 300   4 │",
				"└─────────┘",
			},
		},
		{
			name: "char matrix",
			v:    chars,
			want: []string{
				"┌────┐",
				"│ ab │",
				"│ cd │",
				"└────┘",
			},
		},
		{
			name: "rank three",
			v:    m(tacit.Shape{2, 1, 2}, 1, 2, 3, 4),
			want: []string{
				"┌─────┐",
				"│ 1 2 │",
				"│     │",
				"│ 3 4 │",
				"└─────┘",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Split(Format(tt.v, Config{}), "\n")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Format mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatNestedBox(t *testing.T) {
	inner, err := tacit.NewNumArray(tacit.Shape{2, 2}, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	v, err := tacit.NewBoxArray(tacit.Shape{2}, []tacit.Value{inner, tacit.Num(5)})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"┌─────────────┐",
		"│ □┌─────┐ □5 │",
		"│  │ 1 2 │    │",
		"│  │ 3 4 │    │",
		"│  └─────┘    │",
		"└─────────────┘",
	}
	got := strings.Split(Format(v, Config{}), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatStack(t *testing.T) {
	got := FormatStack([]tacit.Value{tacit.Num(1), tacit.Str("top")}, Config{})
	if got != "\"top\"\n1" {
		t.Fatalf("FormatStack = %q", got)
	}
	if got := FormatStack(nil, Config{}); got != "" {
		t.Fatalf("FormatStack(nil) = %q", got)
	}
}

func TestMaxWidth(t *testing.T) {
	got := Format(tacit.Nums(1, 2, 3, 4, 5), Config{MaxWidth: 5})
	if got != "[1 2…" {
		t.Fatalf("Format = %q, want %q", got, "[1 2…")
	}
	got = Format(tacit.Nums(1, 2), Config{MaxWidth: 5})
	if got != "[1 2]" {
		t.Fatalf("Format = %q, want the line untouched", got)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{}, false},
		{Config{MaxWidth: 80}, false},
		{Config{MaxWidth: -1}, true},
		{Config{MaxWidth: 1}, true},
	}
	for _, tt := range tests {
		_, err := ValidateConfig(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateConfig(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
		}
	}
}
