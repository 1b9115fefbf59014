package irgen

import (
	"github.com/vrn-lang/varunac/internal/ast"
	"github.com/vrn-lang/varunac/internal/symtab"
	"github.com/vrn-lang/varunac/internal/types"
)

// genFuncDef implements spec.md §4.4's four-step function handling.
func (g *Generator) genFuncDef(fd *ast.FuncDef) {
	proto := fd.Prototype
	retType := g.resolveTypeNameRef(fd, proto.ReturnType)
	paramTypes := make([]*types.Type, len(proto.Params))
	paramNames := make([]string, len(proto.Params))
	for i, p := range proto.Params {
		paramTypes[i] = g.resolveTypeNameRef(fd, p.Def.Type)
		paramNames[i] = p.Def.Name
	}
	ft := g.Registry.FunctionType(retType, paramTypes)

	// Step 1: compare against any prior declaration under the same name.
	if existing := g.Symbols.Find(proto.Name, boolPtr(true)); existing != nil {
		if existing.Type.CanonicalName() != ft.CanonicalName() {
			g.errorf(fd, "conflicting declaration of %q: %s vs previously declared %s",
				proto.Name, ft.CanonicalName(), existing.Type.CanonicalName())
			return
		}
	}

	// Step 3: main's signature.
	if proto.IsMain {
		if retType.Kind != types.SignedInt || retType.Width != 32 || len(paramTypes) != 0 {
			g.errorf(fd, "main must return i32 and take no parameters")
		}
	}

	// Step 2: linkage and name.
	mangled := proto.Name
	if !proto.IsMain && proto.Mangle && fd.Exported {
		mangled = Mangle(proto.Name, paramTypes)
	}
	exported := fd.Exported || proto.IsMain || fd.IsDeclaration

	fn := &Function{
		Name: mangled, SourceName: proto.Name, ReturnType: retType.CanonicalName(),
		ParamTypes: canonicalNames(paramTypes), ParamNames: paramNames,
		IsExternal: fd.IsDeclaration, Exported: exported,
	}
	g.mod.Functions = append(g.mod.Functions, fn)

	sym := &symtab.Symbol{
		Name: proto.Name, Type: ft, IsFunction: true, IsExport: fd.Exported, Loc: fd.Loc(),
		Mangled: mangled, PrototypeRef: proto,
		ValueHandle: &value{ref: "@" + mangled, typ: ft},
	}
	if err := g.Symbols.DefineGlobal(proto.Name, sym); err != nil {
		// Redeclaration under an identical type (forward decl then def) is fine.
	}

	if fd.IsDeclaration {
		return
	}

	// Step 4: generate the body.
	g.builder.curFn = fn
	g.curFn = fn
	g.curRetType = retType
	g.labels = map[string]*Block{}

	entry := g.builder.NewBlock(g.builder.NewLabel("entry"))
	g.builder.SetInsertBlock(entry)
	g.curEntry = entry

	g.Symbols.Push()
	for i, p := range proto.Params {
		pt := paramTypes[i]
		addr := g.builder.EmitAlloca(entry, p.Def.Name, pt)
		g.builder.EmitStore(addr, &value{ref: "%arg." + p.Def.Name, typ: pt})
		g.Symbols.Define(p.Def.Name, &symtab.Symbol{
			Name: p.Def.Name, Type: pt, IsMutable: true, Loc: p.Loc(), ValueHandle: addr,
		})
	}

	g.genBlock(fd.Body)

	if !g.builder.BlockTerminated() {
		if retType.Kind == types.Void {
			g.builder.EmitReturn(nil)
		} else {
			g.errorf(fd, "function %q falls off the end without returning a value of type %s",
				proto.Name, retType.CanonicalName())
		}
	}
	g.Symbols.Pop()

	g.sweepTerminators(fn)

	g.builder.curFn = nil
	g.curFn = nil
	g.curRetType = nil
}

func canonicalNames(ts []*types.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.CanonicalName()
	}
	return out
}

// sweepTerminators implements spec.md §4.4 step 4's closing sentence:
// "keep only instructions up to and including the first terminator; if
// no terminator exists, append an unreachable."
func (g *Generator) sweepTerminators(fn *Function) {
	for _, blk := range fn.Blocks {
		cut := -1
		for i, in := range blk.Instrs {
			if blk.isTerminator(in.Op) {
				cut = i
				break
			}
		}
		if cut >= 0 {
			blk.Instrs = blk.Instrs[:cut+1]
			blk.terminated = true
			continue
		}
		blk.Instrs = append(blk.Instrs, Instr{Op: "unreachable"})
		blk.terminated = true
	}
}
