package playground

import (
	"context"
	"time"

	"github.com/speakeasy-api/tacit"
	"github.com/speakeasy-api/tacit/pkg/program"
	"github.com/speakeasy-api/tacit/pkg/valfmt"
)

// RunTimeout bounds a single playground run.
var RunTimeout = 5 * time.Second

// RunResult is what the playground panels show after a run.
type RunResult struct {
	Output      string   `json:"output"`
	Stack       []string `json:"stack"`
	Signature   string   `json:"signature"`
	Printed     []string `json:"printed"`
	Diagnostics []string `json:"diagnostics"`
}

// RunError carries every error of a failed run. Its message is the
// formatted report.
type RunError struct {
	Errs []error
}

func (e *RunError) Error() string { return FormatRunErrors(e.Errs) }

func (e *RunError) Unwrap() []error { return e.Errs }

// RunProgram loads and runs a YAML program. A non-empty stackInput replaces
// the program's own stack. Programs may call the print hook, signature |1.0,
// to add a line to Printed.
func RunProgram(src, stackInput string, cfg valfmt.Config) (*RunResult, error) {
	cfg, err := valfmt.ValidateConfig(cfg)
	if err != nil {
		return nil, err
	}
	p, err := program.Parse([]byte(src))
	if err != nil {
		return nil, &RunError{Errs: []error{err}}
	}
	if stackInput != "" {
		stack, err := ParseStackInput(stackInput)
		if err != nil {
			return nil, &RunError{Errs: []error{err}}
		}
		p.Stack = stack
	}

	result := &RunResult{}
	env := p.NewEnv()
	env.RegisterHook("print", func(args []tacit.Value) ([]tacit.Value, error) {
		result.Printed = append(result.Printed, valfmt.Format(args[0], cfg))
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()
	res, err := p.Run(ctx, env)
	if err != nil {
		return nil, &RunError{Errs: []error{err}}
	}

	result.Output = valfmt.FormatStack(res.Stack, cfg)
	result.Signature = res.Signature.String()
	for _, v := range res.Stack {
		result.Stack = append(result.Stack, v.String())
	}
	for _, d := range res.Diagnostics {
		result.Diagnostics = append(result.Diagnostics, d.String())
	}
	return result, nil
}
