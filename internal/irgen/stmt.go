package irgen

import (
	"github.com/vrn-lang/varunac/internal/ast"
	"github.com/vrn-lang/varunac/internal/symtab"
	"github.com/vrn-lang/varunac/internal/types"
)

// genBlock implements spec.md §4.4's Block handling: "Push scope, walk
// children; pop scope."
func (g *Generator) genBlock(b *ast.Block) {
	g.Symbols.Push()
	for _, s := range b.Stmts {
		g.genStmt(s)
	}
	g.Symbols.Pop()
}

func (g *Generator) genStmt(n ast.Node) {
	g.builder.SetLoc(n.Loc())
	switch v := n.(type) {
	case *ast.Empty:
	case *ast.Block:
		g.genBlock(v)
	case *ast.ExprStmt:
		g.genExpr(v.X)
	case *ast.VarDef:
		g.genLocalVarDef(v)
	case *ast.ConstDecl:
		g.genConstDecl(v)
	case *ast.StructDecl:
		g.genStructDecl(v)
	case *ast.If:
		g.genIf(v)
	case *ast.While:
		g.genWhile(v)
	case *ast.For:
		g.genFor(v)
	case *ast.Return:
		g.genReturn(v)
	case *ast.LabelStmt:
		g.genLabel(v)
	case *ast.GotoStmt:
		g.genGoto(v)
	default:
		g.errorf(n, "internal: unhandled statement node %s", n.Kind())
	}
}

// genLocalVarDef implements spec.md §4.4: "Variable definitions allocate
// in the function entry block, emit a store of the init expression, and
// register a symbol."
func (g *Generator) genLocalVarDef(def *ast.VarDef) {
	t := g.varDefType(def)
	addr := g.builder.EmitAlloca(g.curEntry, def.Name, t)
	if _, isEmpty := def.Init.(*ast.Empty); !isEmpty {
		init := g.genExpr(def.Init)
		init = g.implicitCastOrError(def, init, t)
		g.builder.EmitStore(addr, init)
	}
	if err := g.Symbols.Define(def.Name, &symtab.Symbol{
		Name: def.Name, Type: t, IsMutable: def.Mutable, Loc: def.Loc(), ValueHandle: addr,
	}); err != nil {
		g.errorf(def, "%v", err)
	}
}

func (g *Generator) implicitCastOrError(n ast.Node, v types.Value, to *types.Type) types.Value {
	res := types.CanCast(v.Type(), to, types.Implicit)
	if !res.Allowed && v.Type().CanonicalName() != to.CanonicalName() {
		g.errorf(n, "%s", res.Reason)
		return v
	}
	return g.builder.EmitCast(v, to, types.Implicit)
}

// genIf implements spec.md §4.4's If handling: then/else/merge blocks,
// conditional branch, both arms unconditionally branch to merge.
func (g *Generator) genIf(stmt *ast.If) {
	cond := g.genExpr(stmt.Cond)
	cond = g.implicitCastOrError(stmt, cond, g.Registry.Lookup("bool"))

	thenBlk := g.builder.NewBlock(g.builder.NewLabel("then"))
	elseBlk := g.builder.NewBlock(g.builder.NewLabel("else"))
	mergeBlk := g.builder.NewBlock(g.builder.NewLabel("endif"))

	g.builder.EmitCondBranch(cond, thenBlk, elseBlk)

	g.builder.SetInsertBlock(thenBlk)
	g.genStmt(stmt.Then)
	if !g.builder.BlockTerminated() {
		g.builder.EmitBranch(mergeBlk)
	}

	g.builder.SetInsertBlock(elseBlk)
	if _, isEmpty := stmt.Else.(*ast.Empty); !isEmpty {
		g.genStmt(stmt.Else)
	}
	if !g.builder.BlockTerminated() {
		g.builder.EmitBranch(mergeBlk)
	}

	g.builder.SetInsertBlock(mergeBlk)
}

// genWhile implements spec.md §4.4's While handling.
func (g *Generator) genWhile(stmt *ast.While) {
	condBlk := g.builder.NewBlock(g.builder.NewLabel("wcond"))
	bodyBlk := g.builder.NewBlock(g.builder.NewLabel("wbody"))
	mergeBlk := g.builder.NewBlock(g.builder.NewLabel("wend"))

	g.builder.EmitBranch(condBlk)

	g.builder.SetInsertBlock(condBlk)
	cond := g.genExpr(stmt.Cond)
	cond = g.implicitCastOrError(stmt, cond, g.Registry.Lookup("bool"))
	g.builder.EmitCondBranch(cond, bodyBlk, mergeBlk)

	g.builder.SetInsertBlock(bodyBlk)
	g.genStmt(stmt.Body)
	if !g.builder.BlockTerminated() {
		g.builder.EmitBranch(condBlk)
	}

	g.builder.SetInsertBlock(mergeBlk)
}

// genFor implements spec.md §4.4's For handling: init/cond/body/step/
// merge blocks, each branching per the spec's wiring.
func (g *Generator) genFor(stmt *ast.For) {
	g.Symbols.Push()
	defer g.Symbols.Pop()

	condBlk := g.builder.NewBlock(g.builder.NewLabel("fcond"))
	bodyBlk := g.builder.NewBlock(g.builder.NewLabel("fbody"))
	stepBlk := g.builder.NewBlock(g.builder.NewLabel("fstep"))
	mergeBlk := g.builder.NewBlock(g.builder.NewLabel("fend"))

	if def, ok := stmt.Init.(*ast.VarDef); ok {
		g.genLocalVarDef(def)
	} else if _, isEmpty := stmt.Init.(*ast.Empty); !isEmpty {
		g.genExpr(stmt.Init)
	}
	g.builder.EmitBranch(condBlk)

	g.builder.SetInsertBlock(condBlk)
	cond := g.genExpr(stmt.End)
	cond = g.implicitCastOrError(stmt, cond, g.Registry.Lookup("bool"))
	g.builder.EmitCondBranch(cond, bodyBlk, mergeBlk)

	g.builder.SetInsertBlock(bodyBlk)
	g.genStmt(stmt.Body)
	if !g.builder.BlockTerminated() {
		g.builder.EmitBranch(stepBlk)
	}

	g.builder.SetInsertBlock(stepBlk)
	if _, isEmpty := stmt.Step.(*ast.Empty); !isEmpty {
		g.genExpr(stmt.Step)
	}
	if !g.builder.BlockTerminated() {
		g.builder.EmitBranch(condBlk)
	}

	g.builder.SetInsertBlock(mergeBlk)
}

// genReturn implements spec.md §4.4's Return handling.
func (g *Generator) genReturn(stmt *ast.Return) {
	if _, isEmpty := stmt.Value.(*ast.Empty); isEmpty {
		if g.curRetType != nil && g.curRetType.Kind != types.Void {
			g.errorf(stmt, "missing return value in function returning %s", g.curRetType.CanonicalName())
		}
		g.builder.EmitReturn(nil)
		return
	}
	v := g.genExpr(stmt.Value)
	v = g.implicitCastOrError(stmt, v, g.curRetType)
	g.builder.EmitReturn(v)
}

// genLabel and genGoto implement SPEC_FULL.md §4's labeled-statement
// support: a label names the block current control falls into; goto
// branches unconditionally to it, creating the block ahead of its
// definition on a forward reference.
func (g *Generator) genLabel(stmt *ast.LabelStmt) {
	blk, ok := g.labels[stmt.Name]
	if !ok {
		blk = g.builder.NewBlock("L_" + stmt.Name)
		g.labels[stmt.Name] = blk
	} else {
		g.curFn.Blocks = append(g.curFn.Blocks, blk)
	}
	if !g.builder.BlockTerminated() {
		g.builder.EmitBranch(blk)
	}
	g.builder.SetInsertBlock(blk)
}

func (g *Generator) genGoto(stmt *ast.GotoStmt) {
	blk, ok := g.labels[stmt.Label]
	if !ok {
		blk = &Block{Label: "L_" + stmt.Label}
		g.labels[stmt.Label] = blk
	}
	g.builder.EmitBranch(blk)
}
