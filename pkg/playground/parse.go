package playground

import (
	"fmt"
	"strings"

	"github.com/speakeasy-api/tacit"
	"github.com/speakeasy-api/tacit/pkg/program"
	"gopkg.in/yaml.v3"
)

// ParseStackInput parses the stack panel: a YAML sequence of value
// literals, deepest value first. Empty input is an empty stack.
func ParseStackInput(src string) ([]tacit.Value, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("stack input is not valid YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("stack input must be a sequence of values")
	}

	stack := make([]tacit.Value, 0, len(root.Content))
	for _, item := range root.Content {
		v, err := program.ParseValue(item)
		if err != nil {
			return nil, fmt.Errorf("stack input: %w", err)
		}
		stack = append(stack, v)
	}
	return stack, nil
}
