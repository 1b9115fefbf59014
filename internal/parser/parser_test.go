package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrn-lang/varunac/internal/ast"
	"github.com/vrn-lang/varunac/internal/lexer"
	"github.com/vrn-lang/varunac/internal/parser"
	"github.com/vrn-lang/varunac/internal/source"
)

func parse(t *testing.T, src string) (*ast.Program, []string) {
	t.Helper()
	cache := source.NewCache()
	h, err := cache.Add("t.vrn", src)
	require.NoError(t, err)
	toks, lexBag := lexer.New(cache, h, nil).Scan()
	require.False(t, lexBag.HasErrors(), "lexer errors: %+v", lexBag.Items())
	prog, parseBag := parser.New(toks).Parse()
	var msgs []string
	for _, d := range parseBag.Items() {
		msgs = append(msgs, d.Message)
	}
	return prog, msgs
}

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, msgs := parse(t, src)
	require.Empty(t, msgs, "unexpected parser diagnostics")
	return prog
}

func TestParseGlobalLetWithType(t *testing.T) {
	prog := parseOK(t, "let x: i32 = 42;")
	require.Len(t, prog.Global.Stmts, 1)
	gv, ok := prog.Global.Stmts[0].(*ast.GlobalVarDef)
	require.True(t, ok)
	require.Equal(t, "x", gv.Def.Name)
	require.Equal(t, "i32", gv.Def.Type.Name)
	lit, ok := gv.Def.Init.(*ast.IntLiteral)
	require.True(t, ok)
	require.EqualValues(t, 42, lit.Value)
}

func TestParseExportedFuncDef(t *testing.T) {
	prog := parseOK(t, "export def add(a: i32, b: i32) -> i32 { return a + b; }")
	require.Len(t, prog.Global.Stmts, 1)
	fd, ok := prog.Global.Stmts[0].(*ast.FuncDef)
	require.True(t, ok)
	require.True(t, fd.Exported)
	require.Equal(t, "add", fd.Prototype.Name)
	require.Equal(t, "i32", fd.Prototype.ReturnType.Name)
	require.Len(t, fd.Prototype.Params, 2)
	require.Equal(t, "a", fd.Prototype.Params[0].Def.Name)

	require.Len(t, fd.Body.Stmts, 1)
	ret, ok := fd.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestParseFuncDeclarationNoBody(t *testing.T) {
	prog := parseOK(t, "def f(x: i32) -> i32;")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	require.True(t, fd.IsDeclaration)
	require.Empty(t, fd.Body.Stmts)
}

func TestParseMainIsDetected(t *testing.T) {
	prog := parseOK(t, "def main() -> i32 { return 0; }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	require.True(t, fd.Prototype.IsMain)
}

func TestOperatorPrecedenceAndAssociativity(t *testing.T) {
	// 1 + 2 * 3 ^ 2 should parse as 1 + (2 * (3 ^ 2)), since ^ binds
	// tighter than * and is right-associative, and * binds tighter than +.
	prog := parseOK(t, "def f() { let r = 1 + 2 * 3 ^ 2; }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	def := fd.Body.Stmts[0].(*ast.VarDef)
	top, ok := def.Init.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "+", top.Op)
	require.IsType(t, &ast.IntLiteral{}, top.Left)
	mul, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "*", mul.Op)
	pow, ok := mul.Right.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "^", pow.Op)
}

func TestAssignmentIsDistinctFromBinaryOp(t *testing.T) {
	prog := parseOK(t, "def f() { let mut x: i32 = 0; x += 1; }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	stmt := fd.Body.Stmts[1].(*ast.ExprStmt)
	assign, ok := stmt.X.(*ast.AssignOp)
	require.True(t, ok)
	require.Equal(t, "+=", assign.Op)
}

func TestUnaryMinusRetaggedAtExpressionStart(t *testing.T) {
	prog := parseOK(t, "def f() { let x: i32 = -5 + 1; }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	def := fd.Body.Stmts[0].(*ast.VarDef)
	bin := def.Init.(*ast.BinaryOp)
	require.Equal(t, "+", bin.Op)
	un, ok := bin.Left.(*ast.UnaryOp)
	require.True(t, ok)
	require.Equal(t, "-", un.Op)
}

func TestExplicitCastAsOperator(t *testing.T) {
	prog := parseOK(t, "def f() { let x = 5 as f64; }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	def := fd.Body.Stmts[0].(*ast.VarDef)
	cast, ok := def.Init.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, "as", cast.Op)
	ident, ok := cast.Right.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "f64", ident.Name)
}

func TestCastBuiltinParsesAsCallOp(t *testing.T) {
	prog := parseOK(t, "def f() { let x = cast(5, f64); }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	def := fd.Body.Stmts[0].(*ast.VarDef)
	call, ok := def.Init.(*ast.CallOp)
	require.True(t, ok)
	callee, ok := call.Callee.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "cast", callee.Name)
	require.Len(t, call.Args, 2)
}

func TestMemberAccessAndCallChain(t *testing.T) {
	prog := parseOK(t, "def f() { point.getX(); }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	stmt := fd.Body.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.CallOp)
	require.True(t, ok)
	member, ok := call.Callee.(*ast.MemberAccess)
	require.True(t, ok)
	require.Equal(t, "getX", member.Field)
}

func TestForLoopDefaultsEndToTrue(t *testing.T) {
	prog := parseOK(t, "def f() { for (let mut i: i32 = 0, , i += 1) {} }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	forStmt := fd.Body.Stmts[0].(*ast.For)
	lit, ok := forStmt.End.(*ast.BoolLiteral)
	require.True(t, ok)
	require.True(t, lit.Value)
}

func TestLabelAndGoto(t *testing.T) {
	prog := parseOK(t, "def f() { start: goto start; }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	require.IsType(t, &ast.LabelStmt{}, fd.Body.Stmts[0])
	gotoStmt, ok := fd.Body.Stmts[1].(*ast.GotoStmt)
	require.True(t, ok)
	require.Equal(t, "start", gotoStmt.Label)
}

func TestUnbalancedParenReportsError(t *testing.T) {
	_, msgs := parse(t, "def f() { let x = (1 + 2; }")
	require.NotEmpty(t, msgs)
}

func TestSolveParentsAssignsParentsExceptGlobal(t *testing.T) {
	prog := parseOK(t, "def f(a: i32) -> i32 { return a; }")
	require.Nil(t, prog.Global.Parent())
	fd := prog.Global.Stmts[0]
	require.Equal(t, prog.Global, fd.Parent())
}

func TestParseTopLevelConstDecl(t *testing.T) {
	prog := parseOK(t, "const limit: i32 = 10;")
	require.Len(t, prog.Global.Stmts, 1)
	cd, ok := prog.Global.Stmts[0].(*ast.ConstDecl)
	require.True(t, ok)
	require.Equal(t, "limit", cd.Name)
	require.Equal(t, "i32", cd.Type.Name)
	require.False(t, cd.IsExported())
	lit, ok := cd.Value.(*ast.IntLiteral)
	require.True(t, ok)
	require.EqualValues(t, 10, lit.Value)
}

func TestParseExportedConstDecl(t *testing.T) {
	prog := parseOK(t, "export const limit: i32 = 10;")
	cd, ok := prog.Global.Stmts[0].(*ast.ConstDecl)
	require.True(t, ok)
	require.True(t, cd.IsExported())
}

func TestParseStructDeclWithFields(t *testing.T) {
	prog := parseOK(t, "struct Point { x: i32; y: i32; }")
	require.Len(t, prog.Global.Stmts, 1)
	sd, ok := prog.Global.Stmts[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)
	require.Equal(t, "x", sd.Fields[0].Name)
	require.Equal(t, "i32", sd.Fields[0].Type.Name)
	require.Equal(t, "y", sd.Fields[1].Name)
}

func TestParseLocalConstDeclInsideFunctionBody(t *testing.T) {
	prog := parseOK(t, "def f() -> i32 { const limit: i32 = 10; return limit; }")
	fd := prog.Global.Stmts[0].(*ast.FuncDef)
	cd, ok := fd.Body.Stmts[0].(*ast.ConstDecl)
	require.True(t, ok)
	require.Equal(t, "limit", cd.Name)
}
