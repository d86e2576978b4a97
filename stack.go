package tacit

// valueStack is the data stack of the machine. The top is the last element.
type valueStack struct {
	data []Value
}

// newValueStack creates a stack holding a copy of init.
func newValueStack(init []Value) *valueStack {
	data := make([]Value, len(init), max(len(init), 64))
	copy(data, init)
	return &valueStack{data: data}
}

// push adds a value to the top of the stack.
func (s *valueStack) push(vs ...Value) {
	s.data = append(s.data, vs...)
}

// pop removes and returns the top value.
func (s *valueStack) pop() (Value, error) {
	if len(s.data) == 0 {
		return Value{}, errorf(StackSignatureMismatch, "stack is empty")
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, nil
}

// popN removes the top n values and returns them deepest first.
func (s *valueStack) popN(n int) ([]Value, error) {
	if n > len(s.data) {
		return nil, errorf(StackSignatureMismatch, "expected %d values on the stack, found %d", n, len(s.data))
	}
	out := make([]Value, n)
	copy(out, s.data[len(s.data)-n:])
	s.data = s.data[:len(s.data)-n]
	return out, nil
}

// peekN returns the top n values deepest first without removing them.
func (s *valueStack) peekN(n int) ([]Value, error) {
	if n > len(s.data) {
		return nil, errorf(StackSignatureMismatch, "expected %d values on the stack, found %d", n, len(s.data))
	}
	out := make([]Value, n)
	copy(out, s.data[len(s.data)-n:])
	return out, nil
}

// top returns the top value without removing it.
func (s *valueStack) top() (Value, error) {
	if len(s.data) == 0 {
		return Value{}, errorf(StackSignatureMismatch, "stack is empty")
	}
	return s.data[len(s.data)-1], nil
}

// truncate drops everything above height n.
func (s *valueStack) truncate(n int) {
	if n < len(s.data) {
		s.data = s.data[:n]
	}
}

// values returns a copy of the stack, deepest first.
func (s *valueStack) values() []Value {
	out := make([]Value, len(s.data))
	copy(out, s.data)
	return out
}

// len returns the number of values on the stack.
func (s *valueStack) len() int {
	return len(s.data)
}
