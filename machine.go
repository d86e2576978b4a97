package tacit

import (
	"context"
	"fmt"
)

// machine executes bound functions against one data stack.
type machine struct {
	ctx    context.Context
	env    *Env
	stack  *valueStack
	fills  fillState
	depth  int
	logger Logger
	// trace enables per-instruction debug lines.
	trace bool
}

func newMachine(ctx context.Context, env *Env, init []Value, execID string) *machine {
	logger := env.logger
	if logger.IsEnabled(LevelInfo) {
		logger = logger.With(map[string]any{"exec": execID})
	}
	return &machine{
		ctx:    ctx,
		env:    env,
		stack:  newValueStack(init),
		logger: logger,
		trace:  logger.IsEnabled(LevelDebug),
	}
}

// call runs f. The stack must hold at least f's inputs, and after the body
// runs it must have changed height exactly as f's signature says.
func (m *machine) call(f *Function) error {
	if m.stack.len() < f.sig.Inputs {
		return withFrame(errorf(StackSignatureMismatch, "%s needs %d arguments but the stack has %d",
			f, f.sig.Inputs, m.stack.len()), f.name)
	}
	if m.depth >= m.env.opts.MaxCallDepth {
		return errorf(StackSignatureMismatch, "call depth exceeded %d", m.env.opts.MaxCallDepth)
	}
	if err := m.ctx.Err(); err != nil {
		return err
	}
	m.depth++
	defer func() { m.depth-- }()

	base := m.stack.len() - f.sig.Inputs
	for i, in := range f.instrs {
		if m.trace {
			m.logger.With(map[string]any{
				"pc":    i,
				"depth": m.depth,
				"fill":  m.fills.depth(),
				"stack": stackPreview(m.stack.data, m.env.opts.LogStackPreviewDepth),
			}).Debugf("%s %s", in.op, in)
		}
		if err := m.exec(in); err != nil {
			return withFrame(withSpan(err, in.Span), f.name)
		}
	}
	if got := m.stack.len() - base; got != f.sig.Outputs {
		return withFrame(errorf(StackSignatureMismatch, "%s should leave %d values but left %d",
			f, f.sig.Outputs, got), f.name)
	}
	return nil
}

func (m *machine) exec(in Instr) error {
	switch in.op {
	case opPush:
		m.stack.push(in.v.(Value))
	case opPushFunc:
		f, ok := in.v.(*Function)
		if !ok {
			return errorf(AmbiguousSignature, "function body %s is not bound", in)
		}
		m.stack.push(FuncValue(f))
	case opPrim:
		return m.prim(in.v.(Primitive))
	case opCall:
		return m.call(in.v.(*Function))
	case opMod:
		app := in.v.(*modApp)
		if app.fns == nil {
			return errorf(AmbiguousSignature, "modifier %s is not bound", app.mod)
		}
		return m.modifier(app)
	case opArray:
		f, ok := in.v.(*Function)
		if !ok {
			return errorf(AmbiguousSignature, "array body %s is not bound", in)
		}
		return m.array(f)
	case opHook:
		return m.hook(in.v.(hookRef))
	case opInverse:
		return m.inversePrim(in.v.(Primitive))
	case opRef:
		return errorf(AmbiguousSignature, "unresolved reference to %s", in.v.(string))
	default:
		panic(in.op)
	}
	return nil
}

// array runs f and collects everything it leaves into one array, deepest
// value first.
func (m *machine) array(f *Function) error {
	base := m.stack.len() - f.sig.Inputs
	if err := m.call(f); err != nil {
		return err
	}
	rows, err := m.stack.popN(m.stack.len() - base)
	if err != nil {
		return err
	}
	v, err := FromRows(rows)
	if err != nil {
		return err
	}
	m.stack.push(v)
	return nil
}

func (m *machine) hook(h hookRef) error {
	fn, ok := m.env.hooks[h.name]
	if !ok {
		return errorf(TypeMismatch, "no hook registered for %s", h.name)
	}
	args, err := m.stack.popN(h.sig.Inputs)
	if err != nil {
		return err
	}
	out, err := fn(args)
	if err != nil {
		m.logger.With(map[string]any{"args": len(args)}).Errorf("hook %s failed: %v", h.name, err)
		return fmt.Errorf("hook %s failed: %w", h.name, err)
	}
	if len(out) != h.sig.Outputs {
		return errorf(StackSignatureMismatch, "hook %s declared %d outputs but returned %d",
			h.name, h.sig.Outputs, len(out))
	}
	m.stack.push(out...)
	return nil
}

// pop2 pops the top two values; y was on top.
func (m *machine) pop2() (x, y Value, err error) {
	args, err := m.stack.popN(2)
	if err != nil {
		return Value{}, Value{}, err
	}
	return args[0], args[1], nil
}
