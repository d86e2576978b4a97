package tacit

import "fmt"

// Bind resolves instrs, infers their signature and registers the result as
// name. References are classified first: a constant binding becomes a push
// of its value and a function binding becomes a call. The signature is then
// simulated over the resolved stream. When declared is non-nil it must match
// the inferred signature; it also allows the body to call itself.
//
// A binding with signature |0.1, no declared signature and no hooks is a
// constant: it is evaluated once, on an empty stack, while binding.
func (env *Env) Bind(name string, instrs []Instr, declared *Signature) (*Function, []Diagnostic, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("binding name cannot be empty")
	}
	b := &binder{env: env, name: name}
	if declared != nil {
		b.self = &Function{id: nextFunctionID.Add(1), name: name, sig: *declared, pure: true}
	}

	resolved, err := b.resolve(instrs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bind %s: %w", name, err)
	}
	sig, dynamic, err := inferSignature(resolved)
	switch {
	case err != nil && dynamic && declared != nil:
		sig = *declared
	case err != nil:
		return nil, nil, fmt.Errorf("failed to bind %s: %w", name, err)
	case declared != nil && sig != *declared:
		return nil, nil, fmt.Errorf("failed to bind %s: %w", name, errorf(StackSignatureMismatch,
			"declared signature %s does not match inferred signature %s", *declared, sig))
	}

	pure := pureInstrs(resolved)
	var fn *Function
	if b.self != nil {
		fn = b.self
		fn.instrs = resolved
		fn.pure = pure
	} else {
		fn = newFunction(name, resolved, sig, pure)
	}

	binding := &Binding{Name: name, Kind: BindFunction, Func: fn, Declared: declared != nil}
	if declared == nil && sig == Sig(0, 1) && pure {
		out, err := env.Call(fn, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to evaluate constant %s: %w", name, err)
		}
		binding.Kind = BindConstant
		binding.Value = out[0]
	}

	var diags []Diagnostic
	if env.opts.EnableDiagnostics {
		if _, exists := env.bindings.Get(name); exists {
			diags = append(diags, Diagnostic{
				Message:  fmt.Sprintf("%s is redefined", name),
				Severity: SeverityWarning,
				Span:     Span{Binding: name},
			})
		}
		diags = append(diags, lint(resolved)...)
		env.diags = append(env.diags, diags...)
	}
	for _, d := range diags {
		env.logger.Debugf("diagnostic: %s", d)
	}

	env.bindings.Set(name, binding)
	if env.logger.IsEnabled(LevelDebug) {
		env.logger.With(map[string]any{
			"kind": binding.Kind,
			"sig":  sig,
		}).Debugf("Bound %s", name)
	}
	return fn, diags, nil
}

// BindAnonymous binds a body without registering it.
func (env *Env) BindAnonymous(instrs []Instr) (*Function, error) {
	b := &binder{env: env}
	return b.anonymous(instrs)
}

// binder carries the state of one Bind call.
type binder struct {
	env  *Env
	name string
	// self is the function being defined when its signature was declared.
	self *Function
}

// resolve returns a copy of instrs with references classified and operand
// bodies bound. Instructions without a span are located by index.
func (b *binder) resolve(instrs []Instr) ([]Instr, error) {
	out := make([]Instr, len(instrs))
	for i, in := range instrs {
		if in.Span.IsZero() {
			in.Span = Span{Binding: b.name, Index: i}
		}
		r, err := b.resolveOne(in)
		if err != nil {
			return nil, withSpan(err, in.Span)
		}
		out[i] = r
	}
	return out, nil
}

func (b *binder) resolveOne(in Instr) (Instr, error) {
	switch in.op {
	case opRef:
		ref := in.v.(string)
		if ref == b.name && b.self != nil {
			return Instr{op: opCall, v: b.self, Span: in.Span}, nil
		}
		bnd, ok := b.env.bindings.Get(ref)
		switch {
		case !ok && ref == b.name:
			return Instr{}, errorf(AmbiguousSignature, "recursive binding %s needs a declared signature", ref)
		case !ok:
			return Instr{}, errorf(AmbiguousSignature, "unknown binding %s", ref)
		case bnd.Kind == BindConstant:
			return Instr{op: opPush, v: bnd.Value, Span: in.Span}, nil
		default:
			return Instr{op: opCall, v: bnd.Func, Span: in.Span}, nil
		}
	case opPushFunc, opArray:
		if _, ok := in.v.(*Function); ok {
			return in, nil
		}
		f, err := b.anonymous(in.v.([]Instr))
		if err != nil {
			return Instr{}, err
		}
		in.v = f
		return in, nil
	case opMod:
		app := in.v.(*modApp)
		if app.fns != nil {
			return in, nil
		}
		bound := &modApp{mod: app.mod, bodies: app.bodies, fns: make([]*Function, len(app.bodies))}
		for k, body := range app.bodies {
			f, err := b.anonymous(body)
			if err != nil {
				return Instr{}, err
			}
			bound.fns[k] = f
		}
		sig, err := ModifierSignature(app.mod, bound.fns...)
		if err != nil {
			return Instr{}, err
		}
		bound.sig = sig
		if app.mod == ModInvert {
			if bound.inverse, err = invertFunction(bound.fns[0]); err != nil {
				return Instr{}, err
			}
		}
		in.v = bound
		return in, nil
	default:
		return in, nil
	}
}

// anonymous binds an operand body. Its signature must be inferable.
func (b *binder) anonymous(body []Instr) (*Function, error) {
	resolved, err := b.resolve(body)
	if err != nil {
		return nil, err
	}
	sig, _, err := inferSignature(resolved)
	if err != nil {
		return nil, err
	}
	return newFunction("", resolved, sig, pureInstrs(resolved)), nil
}

// pureInstrs reports whether no hook is reachable from instrs.
func pureInstrs(instrs []Instr) bool {
	for _, in := range instrs {
		switch in.op {
		case opHook:
			return false
		case opCall, opPushFunc, opArray:
			if f, ok := in.v.(*Function); ok && !f.pure {
				return false
			}
		case opMod:
			for _, f := range in.v.(*modApp).fns {
				if !f.pure {
					return false
				}
			}
		}
	}
	return true
}
