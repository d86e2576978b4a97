package tacit

import "fmt"

// Signature is the number of values a function takes from and leaves on
// the stack.
type Signature struct {
	Inputs  int
	Outputs int
}

// Sig is shorthand for Signature{i, o}.
func Sig(inputs, outputs int) Signature {
	return Signature{Inputs: inputs, Outputs: outputs}
}

// IsCompatibleWith reports whether both signatures change the stack height
// by the same amount.
func (s Signature) IsCompatibleWith(o Signature) bool {
	return s.Inputs-s.Outputs == o.Inputs-o.Outputs
}

// IsSupersetOf is IsCompatibleWith with at least as many inputs.
func (s Signature) IsSupersetOf(o Signature) bool {
	return s.IsCompatibleWith(o) && s.Inputs >= o.Inputs
}

func (s Signature) Max(o Signature) Signature {
	return Signature{max(s.Inputs, o.Inputs), max(s.Outputs, o.Outputs)}
}

// Compose returns the signature of running s followed by next.
func (s Signature) Compose(next Signature) Signature {
	return Signature{
		Inputs:  s.Inputs + max(next.Inputs-s.Outputs, 0),
		Outputs: max(s.Outputs-next.Inputs, 0) + next.Outputs,
	}
}

func (s Signature) String() string {
	return fmt.Sprintf("|%d.%d", s.Inputs, s.Outputs)
}

// ParseSignature reads the "|i.o" or "i.o" form.
func ParseSignature(text string) (Signature, error) {
	var s Signature
	if len(text) > 0 && text[0] == '|' {
		text = text[1:]
	}
	if _, err := fmt.Sscanf(text, "%d.%d", &s.Inputs, &s.Outputs); err != nil {
		return Signature{}, fmt.Errorf("invalid signature %q: %w", text, err)
	}
	if s.Inputs < 0 || s.Outputs < 0 {
		return Signature{}, fmt.Errorf("invalid signature %q: counts must be natural", text)
	}
	return s, nil
}
