package ast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStringNamesKnownKinds(t *testing.T) {
	require.Equal(t, "FuncDef", KFuncDef.String())
	require.Equal(t, "BinaryOp", KBinaryOp.String())
}

func TestKindStringUnknownFallsBack(t *testing.T) {
	require.Equal(t, "Unknown", Kind(9999).String())
}

func TestExportBasePromotesToConcreteNode(t *testing.T) {
	fd := &FuncDef{ExportBase: ExportBase{Base: Base{K: KFuncDef}}}
	require.False(t, fd.IsExported())
	fd.SetExported(true)
	require.True(t, fd.IsExported())
	require.True(t, fd.Exported)
}

func TestChildrenBlockReturnsStmtsInOrder(t *testing.T) {
	a := &Identifier{Base: Base{K: KIdentifier}, Name: "a"}
	b := &Identifier{Base: Base{K: KIdentifier}, Name: "b"}
	block := &Block{Base: Base{K: KBlock}, Stmts: []Node{a, b}}
	require.Equal(t, []Node{a, b}, Children(block))
}

func TestChildrenSkipsEmptyAndNil(t *testing.T) {
	ret := &Return{Base: Base{K: KReturn}, Value: &Empty{Base: Base{K: KEmpty}}}
	require.Empty(t, Children(ret))

	ifNode := &If{Base: Base{K: KIf}, Cond: &Identifier{Name: "c"}, Then: &Empty{}, Else: &Empty{}}
	kids := Children(ifNode)
	require.Len(t, kids, 1)
	require.IsType(t, &Identifier{}, kids[0])
}

func TestChildrenCallOpIncludesCalleeAndArgs(t *testing.T) {
	callee := &Identifier{Name: "f"}
	arg1 := &IntLiteral{Value: 1}
	arg2 := &IntLiteral{Value: 2}
	call := &CallOp{Base: Base{K: KCallOp}, Callee: callee, Args: []Node{arg1, arg2}}
	kids := Children(call)
	require.Equal(t, []Node{callee, arg1, arg2}, kids)
}

func TestChildrenLeafKindsReturnNil(t *testing.T) {
	require.Nil(t, Children(&Identifier{Name: "x"}))
	require.Nil(t, Children(&IntLiteral{Value: 1}))
	require.Nil(t, Children(&Module{Name: "m"}))
	require.Nil(t, Children(&StructDecl{Name: "S"}))
}

func TestSolveParentsLinksEveryReachableNodeExceptGlobal(t *testing.T) {
	ret := &Return{Base: Base{K: KReturn}, Value: &Identifier{Base: Base{K: KIdentifier}, Name: "a"}}
	body := &Block{Base: Base{K: KBlock}, Stmts: []Node{ret}}
	fd := &FuncDef{
		ExportBase: ExportBase{Base: Base{K: KFuncDef}},
		Prototype:  &FuncPrototype{Base: Base{K: KFuncPrototype}, Name: "f"},
		Body:       body,
	}
	global := &Block{Base: Base{K: KBlock}, Stmts: []Node{fd}}

	SolveParents(global)

	require.Nil(t, global.Parent())
	require.Equal(t, Node(global), fd.Parent())
	require.Equal(t, Node(fd), fd.Prototype.Parent())
	require.Equal(t, Node(fd), body.Parent())
	require.Equal(t, Node(body), ret.Parent())
	require.Equal(t, Node(ret), ret.Value.Parent())
}

func TestEnclosingFunctionFindsNearestFuncDef(t *testing.T) {
	inner := &Identifier{Base: Base{K: KIdentifier}, Name: "x"}
	ret := &Return{Base: Base{K: KReturn}, Value: inner}
	body := &Block{Base: Base{K: KBlock}, Stmts: []Node{ret}}
	fd := &FuncDef{ExportBase: ExportBase{Base: Base{K: KFuncDef}}, Prototype: &FuncPrototype{Name: "f"}, Body: body}
	global := &Block{Base: Base{K: KBlock}, Stmts: []Node{fd}}

	SolveParents(global)

	require.Equal(t, fd, EnclosingFunction(inner))
	require.Equal(t, fd, EnclosingFunction(ret))
	require.Nil(t, EnclosingFunction(global))
}

func TestDumpRendersNodeDescriptions(t *testing.T) {
	fd := &FuncDef{
		ExportBase: ExportBase{Base: Base{K: KFuncDef}, Exported: true},
		Prototype:  &FuncPrototype{Base: Base{K: KFuncPrototype}, Name: "add", IsMain: false},
		Body: &Block{Base: Base{K: KBlock}, Stmts: []Node{
			&Return{Base: Base{K: KReturn}, Value: &BinaryOp{Op: "+", Left: &Identifier{Name: "a"}, Right: &Identifier{Name: "b"}}},
		}},
	}
	prog := &Program{Global: &Block{Stmts: []Node{fd}}}

	out := Dump(prog)

	require.True(t, strings.Contains(out, "FuncDef: add (export=true decl=false)"))
	require.True(t, strings.Contains(out, "BinaryOp: +"))
	require.True(t, strings.Contains(out, "Identifier: a"))
	require.True(t, strings.Contains(out, "Identifier: b"))
}
