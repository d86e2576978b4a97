package tacit

import (
	"context"
	"fmt"
	"time"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// HookFunc performs a side effect for the machine. It receives the hook's
// arguments deepest first and returns its outputs in push order.
type HookFunc func(args []Value) ([]Value, error)

// BindingKind tags what a name refers to after binding.
type BindingKind int

const (
	BindFunction BindingKind = iota
	BindConstant
)

func (k BindingKind) String() string {
	switch k {
	case BindFunction:
		return "function"
	case BindConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// Binding is a named, classified definition.
type Binding struct {
	Name string
	Kind BindingKind
	// Func is always set; for constants it is the body that produced Value.
	Func  *Function
	Value Value
	// Declared reports whether the signature was given rather than inferred.
	Declared bool
}

// Env holds bindings, hooks and diagnostics. It is not safe for concurrent
// use; every Call runs on its own stack and fill state.
type Env struct {
	opts     Options
	logger   Logger
	bindings *sequencedmap.Map[string, *Binding]
	hooks    map[string]HookFunc
	diags    []Diagnostic
	execID   string
	calls    int
}

// NewEnv creates an empty environment.
func NewEnv(opts ...Options) *Env {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxCallDepth <= 0 {
		opt.MaxCallDepth = DefaultOptions().MaxCallDepth
	}
	return &Env{
		opts:     opt,
		logger:   opt.newLogger(),
		bindings: sequencedmap.New[string, *Binding](),
		hooks:    make(map[string]HookFunc),
		execID:   fmt.Sprintf("e%d", time.Now().UnixNano()%1000000),
	}
}

func (env *Env) Options() Options { return env.opts }

// RegisterHook makes fn available to Hook instructions named name.
func (env *Env) RegisterHook(name string, fn HookFunc) {
	if _, ok := env.hooks[name]; ok {
		env.logger.Warnf("hook %s registered again, replacing the earlier function", name)
	}
	env.hooks[name] = fn
}

// Lookup returns the binding for name.
func (env *Env) Lookup(name string) (*Binding, bool) {
	return env.bindings.Get(name)
}

// Bindings returns all bindings in definition order. A redefined name keeps
// its original position.
func (env *Env) Bindings() []*Binding {
	out := make([]*Binding, 0, env.bindings.Len())
	for _, b := range env.bindings.All() {
		out = append(out, b)
	}
	return out
}

// Diagnostics returns every diagnostic collected so far, in binding order.
func (env *Env) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(env.diags))
	copy(out, env.diags)
	return out
}

// Call runs f on a copy of stack (deepest value first) and returns the
// resulting stack. The input slice is never modified, and on failure no
// partial stack is returned.
func (env *Env) Call(f *Function, stack []Value) ([]Value, error) {
	return env.CallContext(context.Background(), f, stack)
}

// CallContext is Call with a context that is checked between function calls.
func (env *Env) CallContext(ctx context.Context, f *Function, stack []Value) ([]Value, error) {
	if f == nil {
		return nil, fmt.Errorf("cannot call a nil function")
	}
	env.calls++
	m := newMachine(ctx, env, stack, fmt.Sprintf("%s.%d", env.execID, env.calls))
	info := m.logger.IsEnabled(LevelInfo)
	if info {
		m.logger.With(map[string]any{
			"sig":   f.sig,
			"stack": len(stack),
		}).Infof("Calling %s", f)
	}

	if err := m.call(f); err != nil {
		m.logger.Infof("Call failed: %v", err)
		return nil, err
	}
	out := m.stack.values()
	if info {
		m.logger.With(map[string]any{
			"stack": stackPreview(out, env.opts.LogStackPreviewDepth),
		}).Infof("Call finished")
	}
	return out, nil
}

// CallBinding calls the function bound to name.
func (env *Env) CallBinding(name string, stack []Value) ([]Value, error) {
	b, ok := env.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no binding named %q", name)
	}
	return env.Call(b.Func, stack)
}
