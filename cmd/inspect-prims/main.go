package main

import (
	"fmt"

	"github.com/speakeasy-api/tacit"
	"github.com/speakeasy-api/tacit/pkg/program"
)

func main() {
	fmt.Println("=== primitives ===")
	for _, p := range tacit.Primitives() {
		sig := "dynamic"
		if s, ok := p.Signature(); ok {
			sig = s.String()
		}
		flags := ""
		if p.IsPervasive() {
			flags = "pervasive"
		}
		fmt.Printf("%-12s %-8s %s\n", p, sig, flags)
	}

	fmt.Println("\n=== modifiers ===")
	for _, m := range tacit.Modifiers() {
		n, variadic := m.Arity()
		arity := fmt.Sprint(n)
		if variadic {
			arity += "+"
		}
		fmt.Printf("%-12s %s\n", m, arity)
	}

	programs := []string{
		"[dup, mul]",                  // Stack and pervasive
		"[{under: [[2, take], neg]}]", // Under
		"[{fork: [add, sub]}]",        // Fork
		"[{fill: [0, [3, take]]}]",    // Fill
		"[{rows: [1, add]}]",          // Rows
	}

	for _, src := range programs {
		fmt.Printf("\n=== %s ===\n", src)
		p, err := program.Parse([]byte("options: {log_level: error}\nbindings:\n  f: " + src + "\n"))
		if err != nil {
			fmt.Printf("Parse error: %v\n", err)
			continue
		}

		env := p.NewEnv()
		if _, err := p.BindAll(env); err != nil {
			fmt.Printf("Bind error: %v\n", err)
			continue
		}
		b, _ := env.Lookup("f")
		fmt.Printf("signature %s, %s\n", b.Func.Signature(), b.Kind)
		for i, in := range b.Func.Instrs() {
			fmt.Printf("%3d: %-30s %s\n", i, in, in.Span)
		}
	}
}
