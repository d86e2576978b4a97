//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/speakeasy-api/tacit/pkg/playground"
	"github.com/speakeasy-api/tacit/pkg/valfmt"
)

// ExecuteProgram runs a YAML program on an optional YAML stack and returns
// the playground result as JSON.
func ExecuteProgram(src, stackInput string, width int) (string, error) {
	result, err := playground.RunProgram(src, stackInput, valfmt.Config{MaxWidth: width})
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run result: %w", err)
	}

	return string(out), nil
}

// FormatValue renders a YAML stack as the output panel would show it.
func FormatValue(stackInput string, width int) (string, error) {
	cfg, err := valfmt.ValidateConfig(valfmt.Config{MaxWidth: width})
	if err != nil {
		return "", err
	}

	stack, err := playground.ParseStackInput(stackInput)
	if err != nil {
		return "", fmt.Errorf("failed to parse values: %w", err)
	}

	return valfmt.FormatStack(stack, cfg), nil
}

// promisify wraps a Go function to return a JavaScript Promise
func promisify(fn func(args []js.Value) (string, error)) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		// Handler for the Promise
		handler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) any {
			resolve := promiseArgs[0]
			reject := promiseArgs[1]

			// Run this code asynchronously
			go func() {
				result, err := fn(args)
				if err != nil {
					errorConstructor := js.Global().Get("Error")
					errorObject := errorConstructor.New(err.Error())
					reject.Invoke(errorObject)
					return
				}

				resolve.Invoke(result)
			}()

			return nil
		})

		promiseConstructor := js.Global().Get("Promise")
		return promiseConstructor.New(handler)
	})
}

func main() {
	js.Global().Set("ExecuteProgram", promisify(func(args []js.Value) (string, error) {
		if len(args) != 3 {
			return "", fmt.Errorf("ExecuteProgram: expected 3 args (program, stack, width), got %v", len(args))
		}

		return ExecuteProgram(args[0].String(), args[1].String(), args[2].Int())
	}))

	js.Global().Set("FormatValue", promisify(func(args []js.Value) (string, error) {
		if len(args) != 2 {
			return "", fmt.Errorf("FormatValue: expected 2 args (stack, width), got %v", len(args))
		}

		return FormatValue(args[0].String(), args[1].Int())
	}))

	// Keep the program running
	<-make(chan bool)
}
