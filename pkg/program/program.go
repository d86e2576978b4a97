// Package program loads tacit programs written in YAML.
//
// A program is a mapping with up to four keys:
//
//	options:                  # same keys as tacit.LoadOptions
//	  log_level: info
//	bindings:                 # bound in order
//	  square: [dup, mul]
//	  apply:
//	    signature: "|3.1"
//	    body: [call]
//	  main:
//	    - under: [[2, take], neg]
//	stack: [[1, 2, 3, 4]]     # initial stack, deepest value first
//	entry: main               # defaults to the last binding
//
// Inside a body, numbers push themselves, quoted strings push character
// lists, plain words name a primitive or a binding, a sequence is an array
// literal and a single-key mapping applies a modifier to its operand
// bodies. See parseInstr for the complete list.
package program

import (
	"context"
	"fmt"
	"io"

	"github.com/speakeasy-api/openapi/sequencedmap"
	"github.com/speakeasy-api/tacit"
	"gopkg.in/yaml.v3"
)

// Program is a parsed program, not yet bound.
type Program struct {
	Options  tacit.Options
	Bindings *sequencedmap.Map[string, *Definition]
	Stack    []tacit.Value
	Entry    string
}

// Definition is one binding as written in the source.
type Definition struct {
	Name      string
	Signature *tacit.Signature
	Body      []tacit.Instr
	Line      int
	Column    int
}

// Error is a load failure located in the source.
type Error struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line == 0 {
		return msg
	}
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func errorAt(n *yaml.Node, format string, args ...any) *Error {
	return &Error{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

func wrapAt(n *yaml.Node, err error, format string, args ...any) *Error {
	e := errorAt(n, format, args...)
	e.Err = err
	return e
}

// Load reads and parses a program.
func Load(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	return Parse(data)
}

// Parse parses a program from YAML source.
func Parse(data []byte) (*Program, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Msg: "invalid YAML", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &Error{Msg: "empty program"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errorAt(root, "a program must be a mapping")
	}

	p := &Program{
		Options:  tacit.DefaultOptions(),
		Bindings: sequencedmap.New[string, *Definition](),
	}
	var last string
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "options":
			if err := val.Decode(&p.Options); err != nil {
				return nil, wrapAt(val, err, "invalid options")
			}
			if err := p.Options.Validate(); err != nil {
				return nil, wrapAt(val, err, "invalid options")
			}
		case "bindings":
			if val.Kind != yaml.MappingNode {
				return nil, errorAt(val, "bindings must be a mapping of names to bodies")
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				def, err := parseDefinition(val.Content[j], val.Content[j+1])
				if err != nil {
					return nil, err
				}
				if _, exists := p.Bindings.Get(def.Name); exists {
					return nil, errorAt(val.Content[j], "duplicate binding %s", def.Name)
				}
				p.Bindings.Set(def.Name, def)
				last = def.Name
			}
		case "stack":
			if val.Kind != yaml.SequenceNode {
				return nil, errorAt(val, "stack must be a sequence of values")
			}
			for _, item := range val.Content {
				v, err := ParseValue(item)
				if err != nil {
					return nil, err
				}
				p.Stack = append(p.Stack, v)
			}
		case "entry":
			if val.Kind != yaml.ScalarNode {
				return nil, errorAt(val, "entry must be a binding name")
			}
			p.Entry = val.Value
		default:
			return nil, errorAt(key, "unknown key %q", key.Value)
		}
	}
	if p.Entry == "" {
		p.Entry = last
	}
	return p, nil
}

func parseDefinition(key, val *yaml.Node) (*Definition, error) {
	def := &Definition{Name: key.Value, Line: key.Line, Column: key.Column}
	if def.Name == "" {
		return nil, errorAt(key, "binding name cannot be empty")
	}
	bodyNode := val
	if val.Kind == yaml.MappingNode && hasKey(val, "body") {
		bodyNode = nil
		for i := 0; i+1 < len(val.Content); i += 2 {
			k, v := val.Content[i], val.Content[i+1]
			switch k.Value {
			case "body":
				bodyNode = v
			case "signature":
				sig, err := tacit.ParseSignature(v.Value)
				if err != nil {
					return nil, wrapAt(v, err, "invalid signature for %s", def.Name)
				}
				def.Signature = &sig
			default:
				return nil, errorAt(k, "unknown key %q in binding %s", k.Value, def.Name)
			}
		}
	}
	body, err := parseBody(def.Name, bodyNode)
	if err != nil {
		return nil, err
	}
	def.Body = body
	return def, nil
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// NewEnv creates an environment configured with the program's options.
func (p *Program) NewEnv() *tacit.Env {
	return tacit.NewEnv(p.Options)
}

// BindAll binds every definition into env, in source order.
func (p *Program) BindAll(env *tacit.Env) ([]tacit.Diagnostic, error) {
	var diags []tacit.Diagnostic
	for name, def := range p.Bindings.All() {
		_, ds, err := env.Bind(name, def.Body, def.Signature)
		if err != nil {
			return diags, &Error{Line: def.Line, Column: def.Column, Msg: "failed to load binding " + name, Err: err}
		}
		diags = append(diags, ds...)
	}
	return diags, nil
}

// Run binds the program into env and calls the entry binding on the
// program's stack. A constant entry is pushed onto that stack.
func (p *Program) Run(ctx context.Context, env *tacit.Env) (*tacit.Result, error) {
	diags, err := p.BindAll(env)
	if err != nil {
		return nil, err
	}
	if p.Entry == "" {
		return nil, fmt.Errorf("program has no bindings to run")
	}
	b, ok := env.Lookup(p.Entry)
	if !ok {
		return nil, fmt.Errorf("entry %q is not bound", p.Entry)
	}
	if b.Kind == tacit.BindConstant {
		stack := append(append([]tacit.Value(nil), p.Stack...), b.Value)
		return &tacit.Result{Stack: stack, Signature: tacit.Sig(0, 1), Diagnostics: diags}, nil
	}
	out, err := env.CallContext(ctx, b.Func, p.Stack)
	if err != nil {
		return nil, err
	}
	return &tacit.Result{Stack: out, Signature: b.Func.Signature(), Diagnostics: diags}, nil
}
