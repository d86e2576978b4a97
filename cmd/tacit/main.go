// Command tacit runs YAML tacit programs.
//
//	tacit run [-stack '- [1, 2, 3]'] [-entry main] [-log debug] [program.yaml]
//	tacit repl [program.yaml]
//
// run reads the program from standard input when no file is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/speakeasy-api/tacit"
	"github.com/speakeasy-api/tacit/pkg/playground"
	"github.com/speakeasy-api/tacit/pkg/program"
	"github.com/speakeasy-api/tacit/pkg/valfmt"
	"golang.org/x/term"
)

const (
	appName     = "tacit"
	historyFile = ".tacit_history"
	prompt      = "    "
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Usage:
  %s run [flags] [program.yaml]    Run a program and print the final stack
  %s repl [program.yaml]           Start the REPL, optionally with a program's bindings

`, appName, appName)
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	stackInput := fs.String("stack", "", "initial stack as a YAML sequence, deepest value first")
	entry := fs.String("entry", "", "binding to run (default: the program's entry)")
	logLevel := fs.String("log", "", "log level override: error, warn, info or debug")
	width := fs.Int("width", -1, "truncate output lines to this width (default: terminal width)")
	quiet := fs.Bool("q", false, "do not print diagnostics")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, err := loadProgram(fs.Args(), os.Stdin)
	if err == nil && *stackInput != "" {
		p.Stack, err = playground.ParseStackInput(*stackInput)
	}
	if err != nil {
		fmt.Fprint(os.Stderr, playground.FormatRunErrors([]error{err}))
		return 1
	}
	if *entry != "" {
		p.Entry = *entry
	}
	if *logLevel != "" {
		p.Options.LogLevel = *logLevel
	}

	cfg, err := valfmt.ValidateConfig(valfmt.Config{MaxWidth: outputWidth(*width)})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	env := p.NewEnv()
	registerPrint(env, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := p.Run(ctx, env)
	if err != nil {
		fmt.Fprint(os.Stderr, playground.FormatRunErrors([]error{err}))
		return 1
	}

	if !*quiet {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(os.Stderr, d)
		}
	}
	if out := valfmt.FormatStack(res.Stack, cfg); out != "" {
		fmt.Println(out)
	}
	return 0
}

func loadProgram(args []string, stdin io.Reader) (*program.Program, error) {
	switch len(args) {
	case 0:
		return program.Load(stdin)
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return program.Load(f)
	default:
		return nil, fmt.Errorf("expected at most one program file, got %d", len(args))
	}
}

func registerPrint(env *tacit.Env, cfg valfmt.Config) {
	env.RegisterHook("print", func(args []tacit.Value) ([]tacit.Value, error) {
		fmt.Println(valfmt.Format(args[0], cfg))
		return nil, nil
	})
}

// outputWidth picks the truncation width: the flag when given, the
// terminal's width when stdout is one, and no limit otherwise.
func outputWidth(flagWidth int) int {
	if flagWidth >= 0 {
		return flagWidth
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return 0
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 0
}

// cmdRepl reads one body per line and runs it on a stack that persists
// between lines. ":def name body" binds a name; ":clear" empties the stack.
func cmdRepl(args []string) int {
	env := tacit.NewEnv()
	var stack []tacit.Value
	if len(args) > 0 {
		p, err := loadProgram(args, nil)
		if err == nil {
			env = p.NewEnv()
			_, err = p.BindAll(env)
		}
		if err != nil {
			fmt.Fprint(os.Stderr, playground.FormatRunErrors([]error{err}))
			return 1
		}
		stack = p.Stack
	}
	cfg := valfmt.Config{MaxWidth: outputWidth(-1)}
	registerPrint(env, cfg)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.")
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Println()
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		switch {
		case line == ":quit":
			return 0
		case line == ":clear":
			stack = nil
			continue
		case strings.HasPrefix(line, ":def "):
			if err := replDefine(env, strings.TrimPrefix(line, ":def ")); err != nil {
				fmt.Fprint(os.Stderr, playground.FormatRunErrors([]error{err}))
			}
			continue
		case strings.HasPrefix(line, ":"):
			fmt.Println("unknown command. Commands are :def, :clear and :quit.")
			continue
		}

		body, err := program.ParseBody("repl", []byte("["+line+"]"))
		if err != nil {
			fmt.Fprint(os.Stderr, playground.FormatRunErrors([]error{err}))
			continue
		}
		res, err := env.Run(context.Background(), body, stack)
		if err != nil {
			fmt.Fprint(os.Stderr, playground.FormatRunErrors([]error{err}))
			continue
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintln(os.Stderr, d)
		}
		stack = res.Stack
		if out := valfmt.FormatStack(stack, cfg); out != "" {
			fmt.Println(out)
		}
	}
}

func replDefine(env *tacit.Env, def string) error {
	name, src, ok := strings.Cut(strings.TrimSpace(def), " ")
	if !ok || name == "" {
		return fmt.Errorf("usage: :def name body")
	}
	body, err := program.ParseBody(name, []byte("["+src+"]"))
	if err != nil {
		return err
	}
	_, diags, err := env.Bind(name, body, nil)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	return err
}
