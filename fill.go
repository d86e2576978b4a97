package tacit

// fillState is the stack of ambient fill values. Only the innermost one is
// visible; acquire and its release must nest.
type fillState struct {
	vals []Value
}

// acquire makes v the current fill until the returned release runs.
// Release restores whatever was visible before, so calling it from a
// defer rolls back on every exit path.
func (fs *fillState) acquire(v Value) (release func()) {
	depth := len(fs.vals)
	fs.vals = append(fs.vals, v)
	return func() {
		fs.vals = fs.vals[:depth]
	}
}

// current returns the innermost fill.
func (fs *fillState) current() (Value, bool) {
	if len(fs.vals) == 0 {
		return Value{}, false
	}
	return fs.vals[len(fs.vals)-1], true
}

func (fs *fillState) depth() int {
	return len(fs.vals)
}

// fillFor returns the current fill when it is a scalar of the given kind.
// A fill of another kind does not apply and reads as unset.
func (fs *fillState) fillFor(kind Kind) *Value {
	v, ok := fs.current()
	if !ok || !v.IsScalar() || v.kind != kind {
		return nil
	}
	return &v
}
