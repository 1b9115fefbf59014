// Package varunac is the top-level entry point wiring the lexer, parser,
// type/symbol system, and IR generator into the single synchronous compile
// spec.md §2's data-flow diagram describes (source text in, IR text plus an
// optional .vamod module-interface file out). Flag parsing, process
// spawning, and any worker pool sit outside this package per spec.md §1;
// cmd/varunac documents that boundary without implementing it.
package varunac

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vrn-lang/varunac/internal/ast"
	"github.com/vrn-lang/varunac/internal/config"
	"github.com/vrn-lang/varunac/internal/diag"
	"github.com/vrn-lang/varunac/internal/irgen"
	"github.com/vrn-lang/varunac/internal/lexer"
	"github.com/vrn-lang/varunac/internal/modfile"
	"github.com/vrn-lang/varunac/internal/parser"
	"github.com/vrn-lang/varunac/internal/source"
	"github.com/vrn-lang/varunac/internal/symtab"
	"github.com/vrn-lang/varunac/internal/types"
)

// Result is one source file's compile output: the generated IR text, its
// module-interface export set (nil unless GenerateModuleFile is set), and
// whether any stage reported an error.
type Result struct {
	SourceName string
	IRText     string
	Exports    *modfile.Module
	HasErrors  bool
}

// Compile runs the full pipeline over opts.InputFilenames and returns one
// Result per input, in the order given. Diagnostics in one file do not
// stop the run (spec.md §7's "keep going where recovery is safe"); a
// caller inspecting Result.HasErrors across every file decides whether to
// treat the overall run as failed. An I/O error (reading a source file or
// writing its module interface) ends the run and is returned as err.
//
// defines is the `-D name` style symbol table gating the lexer's
// conditional-compilation directives (SPEC_FULL.md §4); nil disables every
// #if branch.
func Compile(opts config.Options, defines map[string]bool, logger *zap.Logger) ([]*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "compiler: invalid configuration")
	}

	cache := source.NewCache()
	results := make([]*Result, 0, len(opts.InputFilenames))
	for _, path := range opts.InputFilenames {
		res, err := compileOne(cache, path, opts, defines, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "compiler: %s", path)
		}
		results = append(results, res)
	}
	return results, nil
}

func compileOne(cache *source.Cache, path string, opts config.Options, defines map[string]bool, logger *zap.Logger) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	handle, err := cache.Add(path, string(content))
	if err != nil {
		return nil, err
	}

	toks, lexBag := lexer.New(cache, handle, defines).Scan()

	prog, parseBag := parser.New(toks).Parse()

	reg := types.NewRegistry()
	sym := symtab.New()
	gen := irgen.New(reg, sym, filepath.Dir(path), opts.EmitDebug)
	mod, exports := gen.Generate(prog, filepath.Base(path))

	bag := diag.NewBag()
	bag.Append(lexBag)
	bag.Append(parseBag)
	bag.Append(gen.Bag)
	bag.Flush(logger, cache)

	if opts.GenerateModuleFile && !bag.HasErrors() {
		if err := modfile.Write(moduleInterfacePath(path), exports); err != nil {
			return nil, errors.Wrapf(err, "writing module interface for %s", path)
		}
	}

	return &Result{
		SourceName: path,
		IRText:     mod.Text(),
		Exports:    exports,
		HasErrors:  bag.HasErrors(),
	}, nil
}

// moduleInterfacePath derives a .vamod sibling path for source: the
// source path with its extension replaced. opts.OutputFilename plays no
// part in where the module-interface file is written.
func moduleInterfacePath(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + ".vamod"
}

// DumpAST renders prog as the indented textual tree of spec.md §6's
// `emit = "ast"` mode, a thin pass-through to ast.Dump kept here so callers
// needn't import internal/ast themselves for the common case.
func DumpAST(prog *ast.Program) string {
	return ast.Dump(prog)
}

// NewLogger builds the process-wide zap logger spec.md §6 describes,
// leveled from level. LogOff returns zap.NewNop(), since "off"
// has no zapcore.Level equivalent.
func NewLogger(level config.LogLevel) (*zap.Logger, error) {
	if level == config.LogOff {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.ZapLevel())
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}
