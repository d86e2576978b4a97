// Package valfmt renders values for terminals. Lists print on one line;
// arrays of rank two or more print as aligned grids inside a frame, and boxed
// values nest their own rendering inside the cell that holds them.
package valfmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/speakeasy-api/tacit"
)

type Config struct {
	// MaxWidth truncates longer lines. Zero means no limit.
	MaxWidth int
}

func ValidateConfig(cfg Config) (Config, error) {
	if cfg.MaxWidth < 0 {
		return cfg, fmt.Errorf("invalid max width %d; must be zero or positive", cfg.MaxWidth)
	}
	if cfg.MaxWidth > 0 && cfg.MaxWidth < 2 {
		return cfg, fmt.Errorf("max width %d is too narrow to show anything", cfg.MaxWidth)
	}
	return cfg, nil
}

// Format renders v.
func Format(v tacit.Value, cfg Config) string {
	return strings.Join(clip(render(v), cfg), "\n")
}

// FormatStack renders a stack, top value first.
func FormatStack(stack []tacit.Value, cfg Config) string {
	var lines []string
	for i := len(stack) - 1; i >= 0; i-- {
		lines = append(lines, render(stack[i])...)
	}
	return strings.Join(clip(lines, cfg), "\n")
}

func clip(lines []string, cfg Config) []string {
	if cfg.MaxWidth <= 0 {
		return lines
	}
	for i, l := range lines {
		lines[i] = runewidth.Truncate(l, cfg.MaxWidth, "…")
	}
	return lines
}

func render(v tacit.Value) []string {
	switch {
	case v.IsScalar():
		return scalar(v)
	case v.ElementCount() == 0 && v.Rank() == 1:
		return []string{"[]"}
	case v.ElementCount() == 0:
		return []string{"[] " + v.Shape().String()}
	case v.Rank() == 1 && v.Kind() == tacit.KindChar:
		return []string{strconv.Quote(string(v.Chars()))}
	case v.Rank() == 1:
		return list(v)
	default:
		return frame(body(v))
	}
}

func scalar(v tacit.Value) []string {
	switch v.Kind() {
	case tacit.KindNum:
		return []string{tacit.FormatNum(v.Nums()[0])}
	case tacit.KindChar:
		return []string{"@" + string(v.Chars()[0])}
	case tacit.KindBox:
		inner, _ := v.Unbox()
		lines := render(inner)
		out := make([]string, len(lines))
		for i, l := range lines {
			if i == 0 {
				out[i] = "□" + l
			} else {
				out[i] = " " + l
			}
		}
		return out
	default:
		return []string{v.Funcs()[0].String()}
	}
}

// list prints a flat list on one line unless one of its elements needs more.
func list(v tacit.Value) []string {
	items := v.Rows()
	cells := make([][]string, len(items))
	parts := make([]string, len(items))
	flat := true
	for i, it := range items {
		cells[i] = scalar(it)
		flat = flat && len(cells[i]) == 1
		if flat {
			parts[i] = cells[i][0]
		}
	}
	if flat {
		return []string{"[" + strings.Join(parts, " ") + "]"}
	}
	return frame(grid([][][]string{cells}, v.Kind() == tacit.KindNum))
}

// body renders an array of rank two or more without its frame. Higher
// ranks stack their rows with a blank line between them.
func body(v tacit.Value) []string {
	rows := v.Rows()
	if v.Rank() > 2 {
		var out []string
		for i, r := range rows {
			if i > 0 {
				out = append(out, "")
			}
			out = append(out, body(r)...)
		}
		return out
	}
	if v.Kind() == tacit.KindChar {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = string(r.Chars())
		}
		return out
	}
	cells := make([][][]string, len(rows))
	for i, r := range rows {
		items := r.Rows()
		cells[i] = make([][]string, len(items))
		for j, it := range items {
			cells[i][j] = scalar(it)
		}
	}
	return grid(cells, v.Kind() == tacit.KindNum)
}

// grid lays out cells[row][col], each a block of lines, in aligned columns.
// Numbers are right-aligned.
func grid(cells [][][]string, numeric bool) []string {
	var widths []int
	for _, row := range cells {
		for j, cell := range row {
			if j == len(widths) {
				widths = append(widths, 0)
			}
			for _, l := range cell {
				widths[j] = max(widths[j], runewidth.StringWidth(l))
			}
		}
	}

	var out []string
	for _, row := range cells {
		height := 0
		for _, cell := range row {
			height = max(height, len(cell))
		}
		for k := 0; k < height; k++ {
			parts := make([]string, len(row))
			for j, cell := range row {
				l := ""
				if k < len(cell) {
					l = cell[k]
				}
				if numeric {
					parts[j] = runewidth.FillLeft(l, widths[j])
				} else {
					parts[j] = runewidth.FillRight(l, widths[j])
				}
			}
			out = append(out, strings.TrimRight(strings.Join(parts, " "), " "))
		}
	}
	return out
}

func frame(lines []string) []string {
	w := 0
	for _, l := range lines {
		w = max(w, runewidth.StringWidth(l))
	}
	rule := strings.Repeat("─", w+2)
	out := make([]string, 0, len(lines)+2)
	out = append(out, "┌"+rule+"┐")
	for _, l := range lines {
		out = append(out, "│ "+runewidth.FillRight(l, w)+" │")
	}
	return append(out, "└"+rule+"┘")
}
