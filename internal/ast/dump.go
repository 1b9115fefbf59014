package ast

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Dump renders prog as the indented textual tree spec.md §6 specifies,
// one node per line, using the domain-stack's treeprint library in place
// of the teacher's hand-rolled indent-counter OutputWriter
// (yparse/output.go). Dump is a pure function of the AST (spec.md §8's
// round-trip law): it never consults symbol or type state.
func Dump(prog *Program) string {
	root := treeprint.New()
	root.SetValue("Program")
	for _, stmt := range prog.Global.Stmts {
		addNode(root, stmt)
	}
	return root.String()
}

func addNode(parent treeprint.Tree, n Node) {
	branch := parent.AddBranch(describe(n))
	for _, c := range Children(n) {
		addNode(branch, c)
	}
}

func describe(n Node) string {
	switch v := n.(type) {
	case *Identifier:
		return fmt.Sprintf("Identifier: %s", v.Name)
	case *VariableRef:
		return fmt.Sprintf("VariableRef: %s", v.Name)
	case *IntLiteral:
		return fmt.Sprintf("IntLiteral: %d", v.Value)
	case *FloatLiteral:
		return fmt.Sprintf("FloatLiteral: %g", v.Value)
	case *StringLiteral:
		return fmt.Sprintf("StringLiteral: %q", v.Value)
	case *CharLiteral:
		return fmt.Sprintf("CharLiteral: %d", v.Value)
	case *BoolLiteral:
		return fmt.Sprintf("BoolLiteral: %v", v.Value)
	case *VarDef:
		return fmt.Sprintf("VarDef: %s (mut=%v)", v.Name, v.Mutable)
	case *GlobalVarDef:
		return fmt.Sprintf("GlobalVarDef: %s (export=%v)", v.Def.Name, v.Exported)
	case *ConstDecl:
		return fmt.Sprintf("ConstDecl: %s", v.Name)
	case *BinaryOp:
		return fmt.Sprintf("BinaryOp: %s", v.Op)
	case *UnaryOp:
		return fmt.Sprintf("UnaryOp: %s", v.Op)
	case *AssignOp:
		return fmt.Sprintf("AssignOp: %s", v.Op)
	case *CallOp:
		return "CallOp"
	case *Subscript:
		return "Subscript"
	case *MemberAccess:
		return fmt.Sprintf("MemberAccess: .%s", v.Field)
	case *Block:
		return "Block"
	case *ExprStmt:
		return "ExprStmt"
	case *If:
		return "If"
	case *For:
		return "For"
	case *While:
		return "While"
	case *Return:
		return "Return"
	case *Import:
		return fmt.Sprintf("Import: %s (path=%v)", v.Name, v.IsPath)
	case *Module:
		return fmt.Sprintf("Module: %s", v.Name)
	case *Alias:
		return fmt.Sprintf("Alias: %s = %s", v.NewName, v.ExistingName)
	case *FuncParam:
		return fmt.Sprintf("FuncParam: %s (#%d)", v.Def.Name, v.Position)
	case *FuncPrototype:
		return fmt.Sprintf("FuncPrototype: %s (main=%v)", v.Name, v.IsMain)
	case *FuncDef:
		return fmt.Sprintf("FuncDef: %s (export=%v decl=%v)", v.Prototype.Name, v.Exported, v.IsDeclaration)
	case *StructDecl:
		return fmt.Sprintf("StructDecl: %s", v.Name)
	case *LabelStmt:
		return fmt.Sprintf("LabelStmt: %s", v.Name)
	case *GotoStmt:
		return fmt.Sprintf("GotoStmt: %s", v.Label)
	case *Empty:
		return "Empty"
	default:
		return "Unknown"
	}
}
