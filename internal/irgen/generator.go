package irgen

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vrn-lang/varunac/internal/ast"
	"github.com/vrn-lang/varunac/internal/diag"
	"github.com/vrn-lang/varunac/internal/modfile"
	"github.com/vrn-lang/varunac/internal/symtab"
	"github.com/vrn-lang/varunac/internal/types"
)

// Generator is the AST-walking IR generation pass of spec.md §4.4. It
// owns the type registry, symbol-table stack, builder cursor, and (when
// enabled) debug-info scopes for exactly one compile, per §5's "per-
// compile and not shared" resource policy.
type Generator struct {
	Registry *types.Registry
	Symbols  *symtab.Table
	Bag      *diag.Bag

	builder *Builder
	mod     *Module

	baseDir    string // directory imports resolve relative to
	debugInfo  bool
	runID      uuid.UUID // per-compile handle, echoed into the IR text header as Module.CompileID

	curFn      *Function
	curRetType *types.Type
	curEntry   *Block
	labels     map[string]*Block
}

// New returns a Generator for one compile, rooted at baseDir for
// resolving import paths.
func New(reg *types.Registry, sym *symtab.Table, baseDir string, debugInfo bool) *Generator {
	return &Generator{
		Registry:  reg,
		Symbols:   sym,
		Bag:       diag.NewBag(),
		baseDir:   baseDir,
		debugInfo: debugInfo,
		runID:     uuid.New(),
	}
}

// Generate walks prog in source order and returns the generated module
// plus the on-disk export set ready for internal/modfile.Write.
func (g *Generator) Generate(prog *ast.Program, sourceName string) (*Module, *modfile.Module) {
	g.mod = &Module{SourceName: sourceName, CompileID: g.runID.String()}
	g.builder = newBuilder(g.mod, g.debugInfo)

	for _, stmt := range prog.Global.Stmts {
		g.genTopLevel(stmt)
	}

	return g.mod, g.buildExports()
}

// buildExports implements spec.md §4.4's export-writing step: after a
// module finishes generation, extract the export set from the top
// (global) frame and convert each exported symbol to its on-disk
// module-interface representation. The caller is responsible for handing
// the result to internal/modfile.Write; compiler.go writes it beside the
// source file.
func (g *Generator) buildExports() *modfile.Module {
	mf := &modfile.Module{}
	for _, frame := range g.Symbols.Exports() {
		for _, sym := range frame {
			if sym.IsFunction {
				mf.Functions = append(mf.Functions, functionEntryFor(sym))
			} else {
				mf.Globals = append(mf.Globals, modfile.GlobalEntry{
					Name:     sym.Name,
					TypeName: sym.Type.CanonicalName(),
					Mutable:  sym.IsMutable,
				})
			}
		}
	}
	return mf
}

func functionEntryFor(sym *symtab.Symbol) modfile.FunctionEntry {
	return modfile.FunctionEntry{
		Name:        sym.Name,
		ReturnType:  sym.Type.Return.CanonicalName(),
		ParamTypes:  canonicalNames(sym.Type.Params),
		Mangle:      sym.Mangled != "" && sym.Mangled != sym.Name,
		MangledName: sym.Mangled,
	}
}

func (g *Generator) errorf(n ast.Node, format string, args ...interface{}) {
	g.Bag.Errorf(n.Loc(), format, args...)
}

func (g *Generator) warnf(n ast.Node, format string, args ...interface{}) {
	g.Bag.Warnf(n.Loc(), format, args...)
}

// ---------------------------------------------------------------------
// Top level
// ---------------------------------------------------------------------

func (g *Generator) genTopLevel(n ast.Node) {
	switch v := n.(type) {
	case *ast.Empty:
	case *ast.Import:
		g.genImport(v)
	case *ast.Module:
		g.mod.Name = v.Name
	case *ast.Alias:
		g.genAlias(v)
	case *ast.GlobalVarDef:
		g.genGlobalVarDef(v)
	case *ast.ConstDecl:
		g.genConstDecl(v)
	case *ast.StructDecl:
		g.genStructDecl(v)
	case *ast.FuncDef:
		g.genFuncDef(v)
	default:
		g.errorf(n, "internal: unhandled top-level node %s", n.Kind())
	}
}

// genImport implements spec.md §4.4's Import handling: resolve the
// referenced module-interface file, then register its exported symbols
// into the current (global) frame. Duplicate imports are tolerated
// silently as long as the symbol set is identical — approximated here by
// ignoring a "name already defined" redefinition as long as the
// resubmitted symbol's type matches.
func (g *Generator) genImport(im *ast.Import) {
	path := im.Name
	if !im.IsPath {
		path = strings.ReplaceAll(im.Name, ".", string(filepath.Separator)) + ".vamod"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.baseDir, path)
	}
	mf, err := modfile.Read(path)
	if err != nil {
		g.Bag.ErrorfNoLoc("import %q: %v", im.Name, err)
		return
	}
	for _, fn := range mf.Functions {
		g.registerImportedFunction(im, fn)
	}
	for _, gl := range mf.Globals {
		g.registerImportedGlobal(im, gl)
	}
}

func (g *Generator) registerImportedFunction(im *ast.Import, fn modfile.FunctionEntry) {
	ret := g.resolveTypeName(im, fn.ReturnType)
	params := make([]*types.Type, len(fn.ParamTypes))
	for i, pt := range fn.ParamTypes {
		params[i] = g.resolveTypeName(im, pt)
	}
	ft := g.Registry.FunctionType(ret, params)
	sym := &symtab.Symbol{
		Name: fn.Name, Type: ft, IsFunction: true, IsExport: true,
		Loc: im.Loc(), Mangled: fn.MangledName,
		ValueHandle: &value{ref: "@" + fn.MangledName, typ: ft},
	}
	if err := g.Symbols.DefineGlobal(fn.Name, sym); err != nil {
		existing := g.Symbols.Find(fn.Name, boolPtr(true))
		if existing == nil || existing.Type.CanonicalName() != ft.CanonicalName() {
			g.errorf(im, "import %q: conflicting redefinition of %q", im.Name, fn.Name)
		}
	}
}

func (g *Generator) registerImportedGlobal(im *ast.Import, gl modfile.GlobalEntry) {
	t := g.resolveTypeName(im, gl.TypeName)
	sym := &symtab.Symbol{
		Name: gl.Name, Type: t, IsMutable: gl.Mutable, IsExport: true, Loc: im.Loc(),
		ValueHandle: &value{ref: "@" + gl.Name, typ: t},
	}
	if err := g.Symbols.DefineGlobal(gl.Name, sym); err != nil {
		existing := g.Symbols.Find(gl.Name, boolPtr(false))
		if existing == nil || existing.Type.CanonicalName() != t.CanonicalName() {
			g.errorf(im, "import %q: conflicting redefinition of %q", im.Name, gl.Name)
		}
	}
}

func boolPtr(b bool) *bool { return &b }

func (g *Generator) resolveTypeName(n ast.Node, name string) *types.Type {
	if t := g.Registry.Lookup(name); t != nil {
		return t
	}
	g.errorf(n, "unknown type %q", name)
	return g.Registry.Lookup("void")
}

func (g *Generator) genAlias(al *ast.Alias) {
	underlying := g.Registry.Lookup(al.ExistingName)
	if underlying == nil {
		g.errorf(al, "use %s = %s: unknown type %q", al.NewName, al.ExistingName, al.ExistingName)
		return
	}
	t := &types.Type{Kind: types.Alias, Name: al.NewName, Underlying: underlying, SizeInBits: underlying.SizeInBits}
	if err := g.Registry.Insert(t); err != nil {
		g.errorf(al, "%v", err)
	}
}

func (g *Generator) genStructDecl(sd *ast.StructDecl) {
	fields := make([]types.Field, 0, len(sd.Fields))
	offset := 0
	for _, f := range sd.Fields {
		ft := g.resolveTypeName(sd, f.Type.Name)
		fields = append(fields, types.Field{Name: f.Name, Type: ft, Offset: offset})
		offset += ft.SizeInBits
	}
	t := &types.Type{Kind: types.Struct, Name: sd.Name, SizeInBits: offset, Fields: fields}
	if err := g.Registry.Insert(t); err != nil {
		g.errorf(sd, "%v", err)
	}
}

// genGlobalVarDef implements spec.md §4.4: "global variables require a
// constant initializer and are emitted as module-level values with
// internal (non-exported) or weak-ODR (exported) linkage."
func (g *Generator) genGlobalVarDef(gv *ast.GlobalVarDef) {
	def := gv.Def
	t := g.varDefType(def)
	initText, ok := g.constantText(def.Init, t)
	if !ok {
		g.errorf(def, "global %q requires a constant initializer", def.Name)
		initText = zeroValueText(t)
	}
	gl := &Global{Name: def.Name, Type: t.CanonicalName(), Exported: gv.Exported, Mutable: def.Mutable, Init: initText}
	g.mod.Globals = append(g.mod.Globals, gl)

	sym := &symtab.Symbol{
		Name: def.Name, Type: t, IsMutable: def.Mutable, IsExport: gv.Exported, Loc: def.Loc(),
		ValueHandle: &value{ref: "@" + def.Name, typ: t},
	}
	if err := g.Symbols.DefineGlobal(def.Name, sym); err != nil {
		g.errorf(def, "%v", err)
	}
}

func (g *Generator) genConstDecl(cd *ast.ConstDecl) {
	t := g.resolveTypeNameRef(cd, cd.Type)
	text, ok := g.constantText(cd.Value, t)
	if !ok {
		g.errorf(cd, "const %q requires a constant-literal initializer", cd.Name)
		text = zeroValueText(t)
	}
	sym := &symtab.Symbol{
		Name: cd.Name, Type: t, IsMutable: false, IsExport: cd.Exported, Loc: cd.Loc(),
		ValueHandle: &value{ref: text, typ: t, isImmediate: true},
	}
	if err := g.Symbols.DefineGlobal(cd.Name, sym); err != nil {
		g.errorf(cd, "%v", err)
	}
}

func (g *Generator) resolveTypeNameRef(n ast.Node, tr *ast.TypeRef) *types.Type {
	if tr == nil {
		return g.Registry.Lookup("void")
	}
	return g.resolveTypeName(n, tr.Name)
}

func (g *Generator) varDefType(def *ast.VarDef) *types.Type {
	if def.Type != nil {
		return g.resolveTypeName(def, def.Type.Name)
	}
	return g.inferType(def.Init)
}

// inferType is a best-effort literal/identifier type inference used when
// a `let` omits its `: type` annotation; full expression type inference
// happens during genExpr via the per-kind operation tables.
func (g *Generator) inferType(n ast.Node) *types.Type {
	switch v := n.(type) {
	case *ast.IntLiteral:
		return g.Registry.Lookup(fmt.Sprintf("i%d", defaultWidth(v.Width)))
	case *ast.FloatLiteral:
		return g.Registry.Lookup(fmt.Sprintf("f%d", defaultWidth32or64(v.Width)))
	case *ast.StringLiteral:
		if v.CString {
			return g.Registry.Lookup("cstring")
		}
		return g.Registry.Lookup("string")
	case *ast.CharLiteral:
		if v.Byte {
			return g.Registry.Lookup("bchar")
		}
		return g.Registry.Lookup("char")
	case *ast.BoolLiteral:
		return g.Registry.Lookup("bool")
	case *ast.Identifier:
		if sym := g.Symbols.Find(v.Name, nil); sym != nil {
			return sym.Type
		}
	}
	return g.Registry.Lookup("void")
}

func defaultWidth(w int) int {
	if w == 0 {
		return 32
	}
	return w
}

func defaultWidth32or64(w int) int {
	if w == 0 {
		return 64
	}
	return w
}

// constantText renders n as literal IR text if it is a constant literal,
// per spec.md §4.4's "global variables require a constant initializer."
func (g *Generator) constantText(n ast.Node, t *types.Type) (string, bool) {
	switch v := n.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(v.Value, 10), true
	case *ast.FloatLiteral:
		return strconv.FormatFloat(v.Value, 'g', -1, 64), true
	case *ast.BoolLiteral:
		if v.Value {
			return "true", true
		}
		return "false", true
	case *ast.CharLiteral:
		return strconv.Itoa(int(v.Value)), true
	case *ast.StringLiteral:
		return strconv.Quote(v.Value), true
	case *ast.Empty:
		return zeroValueText(t), true
	default:
		return "", false
	}
}

func zeroValueText(t *types.Type) string {
	if t == nil {
		return "0"
	}
	switch t.Kind {
	case types.Float:
		return "0.0"
	case types.Bool:
		return "false"
	case types.String, types.CString:
		return `""`
	default:
		return "0"
	}
}
