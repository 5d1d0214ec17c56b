package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	pydust "github.com/hosackm/ziggy-pydust"
	"github.com/hosackm/ziggy-pydust/engine"
	"github.com/hosackm/ziggy-pydust/errors"
	"github.com/hosackm/ziggy-pydust/py"
)

// config is the environment-driven part of the CLI; flags override it.
type config struct {
	Wasm        string `env:"PYRUN_WASM"`
	MemoryPages uint32 `env:"PYRUN_MEMORY_PAGES"`
	StdlibDir   string `env:"PYRUN_STDLIB_DIR"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: parse env: %v\n", err)
		os.Exit(1)
	}

	var (
		wasmFile    = flag.String("wasm", cfg.Wasm, "Path to a wasm32-wasi interpreter build (empty runs the demo runtime)")
		moduleName  = flag.String("module", "", "Module to import")
		attrName    = flag.String("attr", "", "Attribute to fetch and print")
		callName    = flag.String("call", "", "Attribute to call")
		callArgs    = flag.String("args", "", "Call arguments (comma-separated)")
		list        = flag.Bool("list", false, "List the module's attribute names and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			engine.SetLogger(logger)
			defer logger.Sync() //nolint:errcheck
		}
	}

	if *moduleName == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: pyrun -module <name> [-wasm file.wasm] [-attr name | -call name [-args a,b]]")
		fmt.Fprintln(os.Stderr, "       pyrun -module <name> -list")
		fmt.Fprintln(os.Stderr, "       pyrun -i [-module name]  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*wasmFile, *moduleName, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *moduleName, *attrName, *callName, *callArgs, *list, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile, moduleName, attrName, callName, argsStr string, listOnly bool, cfg config) error {
	ctx := context.Background()

	rt, err := openRuntime(ctx, wasmFile, cfg)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	mod, err := py.Import(rt, moduleName)
	if err != nil {
		return surfaced(rt, err)
	}
	defer mod.Decref()

	if listOnly {
		names, err := attrNames(rt, mod)
		if err != nil {
			return surfaced(rt, err)
		}
		fmt.Printf("Module: %s\n\nAttributes:\n", moduleName)
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
		return nil
	}

	switch {
	case attrName != "":
		attr, err := mod.Attr(attrName)
		if err != nil {
			return surfaced(rt, err)
		}
		out, err := render(rt, attr)
		if err != nil {
			return surfaced(rt, err)
		}
		fmt.Println(out)

	case callName != "":
		fn, err := mod.Attr(callName)
		if err != nil {
			return surfaced(rt, err)
		}
		res, err := py.Call(rt, fn, parseArgs(argsStr)...)
		if err != nil {
			return surfaced(rt, err)
		}
		defer res.Decref()
		out, err := render(rt, res)
		if err != nil {
			return surfaced(rt, err)
		}
		fmt.Println(out)

	default:
		out, err := render(rt, mod)
		if err != nil {
			return surfaced(rt, err)
		}
		fmt.Println(out)
	}
	return nil
}

// openRuntime picks the backend: a wazero-hosted interpreter when a build
// is given, the in-process demo runtime otherwise.
func openRuntime(ctx context.Context, wasmFile string, cfg config) (pydust.Runtime, error) {
	if wasmFile == "" {
		fmt.Fprintln(os.Stderr, "(no -wasm given; running against the built-in demo runtime)")
		return demoRuntime(), nil
	}
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, fmt.Errorf("read interpreter build: %w", err)
	}
	return engine.New(ctx, data, &engine.Config{
		MemoryLimitPages: cfg.MemoryPages,
		StdlibDir:        cfg.StdlibDir,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
	})
}

// attrNames lists a module's attributes through builtins.dir.
func attrNames(rt pydust.Runtime, mod py.Module) ([]string, error) {
	builtins, err := py.Import(rt, "builtins")
	if err != nil {
		return nil, err
	}
	defer builtins.Decref()

	dir, err := builtins.Attr("dir")
	if err != nil {
		return nil, err
	}
	listing, err := py.Call(rt, dir, mod)
	if err != nil {
		return nil, err
	}
	defer listing.Decref()

	tup, err := py.TupleOf(rt, listing)
	if err != nil {
		return nil, err
	}
	defer tup.Decref()

	n, err := tup.Len()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, n)
	for i := int64(0); i < n; i++ {
		item, err := tup.Get(i)
		if err != nil {
			return nil, err
		}
		s, err := py.AsStr(item)
		if err != nil {
			return nil, err
		}
		text, err := s.Value()
		if err != nil {
			return nil, err
		}
		names = append(names, text)
	}
	return names, nil
}

// render prints a value the way the interpreter would.
func render(rt pydust.Runtime, v any) (string, error) {
	s, err := py.StrOf(rt, v)
	if err != nil {
		return "", err
	}
	defer s.Decref()
	return s.Value()
}

// parseArgs converts comma-separated CLI arguments into native values:
// ints, floats and bools when they parse, strings otherwise.
func parseArgs(argsStr string) []any {
	if argsStr == "" {
		return nil
	}
	parts := strings.Split(argsStr, ",")
	args := make([]any, len(parts))
	for i, p := range parts {
		args[i] = parseArg(strings.TrimSpace(p))
	}
	return args
}

func parseArg(s string) any {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	switch s {
	case "true", "True":
		return true
	case "false", "False":
		return false
	}
	return s
}

// surfaced swaps a foreign-raise marker for the interpreter's own message
// when one is pending.
func surfaced(rt pydust.Runtime, err error) error {
	if !errors.IsForeignRaised(err) {
		return err
	}
	raised, ok := py.FetchRaised(rt)
	if !ok {
		return err
	}
	defer raised.Close()
	return fmt.Errorf("%s", raised.String())
}
