// Command varunac is a thin stub over the varunac compile pipeline.
//
// It exists to document the external-collaborator boundary spec.md §1
// draws around this repository: the real driver's job of parsing a full
// flag set, spawning worker processes, and scheduling a parallel build
// across -j jobs is explicitly out of scope here (see SPEC_FULL.md §5,
// "cmd/varunac is a thin CLI stub documenting the external collaborator
// boundary"). What's wired below is only enough to drive the in-process
// pipeline in compiler.go end to end for a single invocation: one -o, one
// -emit, one -O, any number of source files, each compiled and logged in
// sequence. A production driver would replace this file, not internal/.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vrn-lang/varunac"
	"github.com/vrn-lang/varunac/internal/config"
)

var (
	outputFile  = flag.String("o", "-", "output file name (\"-\" means stdout)")
	optLevel    = flag.String("O", "O0", "optimization level: O0, O1, O2, O3, Os, Oz")
	emit        = flag.String("emit", "object", "emit target: none, ast, ir, bitcode, asm, object")
	logLevel    = flag.String("log", "info", "logging level: trace, debug, info, warn, err, critical, off")
	emitDebug   = flag.Bool("g", false, "emit debug info")
	genModule   = flag.Bool("module", false, "write a .vamod module-interface file alongside the output")
	defineFlags multiFlag
)

// multiFlag collects repeated -D name flags into a conditional-compilation
// define set (each argument, taken whole, becomes one defined name; no
// "=value" part is split off), the way the teacher's driver collects repeated
// flags via flag.Var rather than a single comma-joined string.
type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint([]string(*m)) }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	flag.Var(&defineFlags, "D", "define a conditional-compilation symbol (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] file ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "varunac compiles varuna source files to IR (see SPEC_FULL.md).\n")
		fmt.Fprintf(os.Stderr, "This driver does not spawn worker processes or schedule parallel\n")
		fmt.Fprintf(os.Stderr, "jobs; -j-style flags and a real build scheduler belong to a\n")
		fmt.Fprintf(os.Stderr, "separate, unimplemented driver layer.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	opts := config.Default()
	opts.InputFilenames = flag.Args()
	opts.OutputFilename = *outputFile
	opts.OptimizationLevel = config.OptLevel(*optLevel)
	opts.Emit = config.EmitKind(*emit)
	opts.LoggingLevel = config.LogLevel(*logLevel)
	opts.EmitDebug = *emitDebug
	opts.GenerateModuleFile = *genModule

	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "varunac: %v\n", err)
		os.Exit(1)
	}

	logger, err := varunac.NewLogger(opts.LoggingLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "varunac: building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	defines := make(map[string]bool, len(defineFlags))
	for _, d := range defineFlags {
		defines[d] = true
	}

	results, err := varunac.Compile(opts, defines, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "varunac: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, res := range results {
		if res.HasErrors {
			failed = true
			continue
		}
		if opts.Emit == config.EmitIR && opts.OutputFilename == "-" {
			fmt.Fprint(os.Stdout, res.IRText)
		}
	}
	if failed {
		os.Exit(1)
	}
}
