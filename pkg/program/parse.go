package program

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/speakeasy-api/tacit"
	"gopkg.in/yaml.v3"
)

// ParseBody parses a body written on its own, such as a line typed at a
// prompt. Empty source is an empty body.
func ParseBody(binding string, src []byte) ([]tacit.Instr, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &Error{Msg: "invalid YAML", Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	return parseBody(binding, doc.Content[0])
}

// parseBody reads a function body: a sequence of instructions, or a single
// instruction on its own.
func parseBody(binding string, n *yaml.Node) ([]tacit.Instr, error) {
	if n == nil {
		return nil, &Error{Msg: "binding " + binding + " has no body"}
	}
	if n.Kind != yaml.SequenceNode {
		in, err := parseInstr(binding, 0, n)
		if err != nil {
			return nil, err
		}
		return tacit.Body(in), nil
	}
	body := make([]tacit.Instr, 0, len(n.Content))
	for i, item := range n.Content {
		in, err := parseInstr(binding, i, item)
		if err != nil {
			return nil, err
		}
		body = append(body, in)
	}
	return body, nil
}

// parseInstr reads one instruction:
//
//	3, -1.5, ¯2          push a number
//	"text"               push a character list
//	dup, take, ...       a primitive
//	square               a reference to a binding
//	[1, 2, 3]            an array literal; its body runs and is collected
//	{func: body}         push a function reference
//	{char: a}            push a character
//	{value: literal}     push any value literal
//	{hook: name, signature: "|i.o"}
//	{dip: body}          a single-operand modifier
//	{fork: [body, ...]}  a modifier of several operands
func parseInstr(binding string, idx int, n *yaml.Node) (tacit.Instr, error) {
	span := tacit.Span{Binding: binding, Index: idx, Line: n.Line, Column: n.Column}
	switch n.Kind {
	case yaml.ScalarNode:
		if isQuoted(n) {
			return tacit.Push(tacit.Str(n.Value)).At(span), nil
		}
		switch n.ShortTag() {
		case "!!int", "!!float", "!!bool":
			x, err := scalarNum(n)
			if err != nil {
				return tacit.Instr{}, err
			}
			return tacit.Push(tacit.Num(x)).At(span), nil
		case "!!str":
			if x, ok := highMinus(n.Value); ok {
				return tacit.Push(tacit.Num(x)).At(span), nil
			}
			if p, ok := tacit.ParsePrimitive(n.Value); ok {
				return tacit.Prim(p).At(span), nil
			}
			return tacit.Ref(n.Value).At(span), nil
		default:
			return tacit.Instr{}, errorAt(n, "unexpected %s in body", n.ShortTag())
		}
	case yaml.SequenceNode:
		body := make([]tacit.Instr, 0, len(n.Content))
		for i, item := range n.Content {
			in, err := parseInstr(binding, i, item)
			if err != nil {
				return tacit.Instr{}, err
			}
			body = append(body, in)
		}
		return tacit.Array(body...).At(span), nil
	case yaml.MappingNode:
		return parseMapping(binding, span, n)
	default:
		return tacit.Instr{}, errorAt(n, "aliases are not supported")
	}
}

func parseMapping(binding string, span tacit.Span, n *yaml.Node) (tacit.Instr, error) {
	if hasKey(n, "hook") {
		return parseHook(span, n)
	}
	if len(n.Content) != 2 {
		return tacit.Instr{}, errorAt(n, "an instruction mapping must have exactly one key")
	}
	key, val := n.Content[0], n.Content[1]
	switch key.Value {
	case "func":
		body, err := parseBody(binding, val)
		if err != nil {
			return tacit.Instr{}, err
		}
		return tacit.PushFunc(body...).At(span), nil
	case "char":
		c, err := parseChar(val)
		if err != nil {
			return tacit.Instr{}, err
		}
		return tacit.Push(c).At(span), nil
	case "value":
		v, err := ParseValue(val)
		if err != nil {
			return tacit.Instr{}, err
		}
		return tacit.Push(v).At(span), nil
	}

	m, ok := tacit.ParseModifier(key.Value)
	if !ok {
		return tacit.Instr{}, errorAt(key, "unknown modifier %q", key.Value)
	}
	// A single-operand modifier takes its sequence as the operand body;
	// the others take one body per item.
	var operands [][]tacit.Instr
	if arity, variadic := m.Arity(); val.Kind == yaml.SequenceNode && (arity > 1 || variadic) {
		for _, item := range val.Content {
			body, err := parseBody(binding, item)
			if err != nil {
				return tacit.Instr{}, err
			}
			operands = append(operands, body)
		}
	} else {
		body, err := parseBody(binding, val)
		if err != nil {
			return tacit.Instr{}, err
		}
		operands = append(operands, body)
	}
	return tacit.Mod(m, operands...).At(span), nil
}

func parseHook(span tacit.Span, n *yaml.Node) (tacit.Instr, error) {
	var (
		name string
		sig  *tacit.Signature
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "hook":
			name = v.Value
		case "signature":
			s, err := tacit.ParseSignature(v.Value)
			if err != nil {
				return tacit.Instr{}, wrapAt(v, err, "invalid hook signature")
			}
			sig = &s
		default:
			return tacit.Instr{}, errorAt(k, "unknown key %q in hook", k.Value)
		}
	}
	if name == "" || sig == nil {
		return tacit.Instr{}, errorAt(n, "a hook needs a name and a signature")
	}
	return tacit.Hook(name, *sig).At(span), nil
}

// ParseValue reads a value literal: numbers, strings, nested sequences of
// equal shape, {char: c} and {box: literal}.
func ParseValue(n *yaml.Node) (tacit.Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if isQuoted(n) {
			return tacit.Str(n.Value), nil
		}
		switch n.ShortTag() {
		case "!!int", "!!float", "!!bool":
			x, err := scalarNum(n)
			if err != nil {
				return tacit.Value{}, err
			}
			return tacit.Num(x), nil
		case "!!str":
			if x, ok := highMinus(n.Value); ok {
				return tacit.Num(x), nil
			}
			return tacit.Str(n.Value), nil
		default:
			return tacit.Value{}, errorAt(n, "unexpected %s in value", n.ShortTag())
		}
	case yaml.SequenceNode:
		rows := make([]tacit.Value, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := ParseValue(item)
			if err != nil {
				return tacit.Value{}, err
			}
			rows = append(rows, v)
		}
		v, err := tacit.FromRows(rows)
		if err != nil {
			return tacit.Value{}, wrapAt(n, err, "invalid array")
		}
		return v, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return tacit.Value{}, errorAt(n, "a value mapping must have exactly one key")
		}
		key, val := n.Content[0], n.Content[1]
		switch key.Value {
		case "char":
			return parseChar(val)
		case "box":
			inner, err := ParseValue(val)
			if err != nil {
				return tacit.Value{}, err
			}
			return tacit.Box(inner), nil
		default:
			return tacit.Value{}, errorAt(key, "unknown value form %q", key.Value)
		}
	default:
		return tacit.Value{}, errorAt(n, "aliases are not supported")
	}
}

func isQuoted(n *yaml.Node) bool {
	return n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0
}

func scalarNum(n *yaml.Node) (float64, error) {
	if n.ShortTag() == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return 0, wrapAt(n, err, "invalid boolean")
		}
		if b {
			return 1, nil
		}
		return 0, nil
	}
	var x float64
	if err := n.Decode(&x); err != nil {
		return 0, wrapAt(n, err, "invalid number")
	}
	return x, nil
}

// highMinus reads numbers written with ¯ for the sign.
func highMinus(s string) (float64, bool) {
	if !strings.HasPrefix(s, "¯") {
		return 0, false
	}
	x, err := strconv.ParseFloat("-"+strings.TrimPrefix(s, "¯"), 64)
	return x, err == nil
}

func parseChar(n *yaml.Node) (tacit.Value, error) {
	if n.Kind != yaml.ScalarNode || utf8.RuneCountInString(n.Value) != 1 {
		return tacit.Value{}, errorAt(n, "char needs exactly one character")
	}
	r, _ := utf8.DecodeRuneInString(n.Value)
	return tacit.Char(r), nil
}
