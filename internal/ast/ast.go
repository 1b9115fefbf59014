// Package ast defines the tagged-variant AST of spec.md §3/§9. The
// source (gmofishsauce/wut4/lang/yparse/ast.go, sem/ast.go) models nodes
// as one interface per role (Decl/Stmt/Expr) with a concrete struct per
// kind — classic double-dispatch-adjacent Go. spec.md §9 asks for a
// tagged sum instead: every node carries a Kind tag used for structural
// queries, and passes `switch` on the Go concrete type (Go's closest
// built-in to a match over a tagged union) rather than an Accept/visitor
// method. This package keeps the teacher's per-kind struct fields but
// drops its marker-method interfaces in favor of one Node interface with
// a Kind() tag, and parent/export bookkeeping lives on a shared base
// embedded by every concrete kind.
package ast

import "github.com/vrn-lang/varunac/internal/source"

// Kind tags every node. It is used for structural queries (spec.md §3),
// never for dispatch — dispatch is a Go type switch on the concrete node.
type Kind int

const (
	KEmpty Kind = iota

	// Expressions
	KIdentifier
	KVariableRef
	KIntLiteral
	KFloatLiteral
	KStringLiteral
	KCharLiteral
	KBoolLiteral
	KVarDef
	KGlobalVarDef
	KConstDecl
	KBinaryOp
	KUnaryOp
	KAssignOp
	KCallOp
	KSubscript
	KMemberAccess

	// Statements
	KBlock
	KExprStmt
	KIf
	KFor
	KWhile
	KReturn
	KImport
	KModule
	KAlias
	KFuncParam
	KFuncPrototype
	KFuncDef
	KStructDecl
	KLabelStmt
	KGotoStmt
)

var kindNames = map[Kind]string{
	KEmpty: "Empty", KIdentifier: "Identifier", KVariableRef: "VariableRef",
	KIntLiteral: "IntLiteral", KFloatLiteral: "FloatLiteral",
	KStringLiteral: "StringLiteral", KCharLiteral: "CharLiteral",
	KBoolLiteral: "BoolLiteral", KVarDef: "VarDef", KGlobalVarDef: "GlobalVarDef",
	KConstDecl: "ConstDecl", KBinaryOp: "BinaryOp", KUnaryOp: "UnaryOp",
	KAssignOp: "AssignOp", KCallOp: "CallOp", KSubscript: "Subscript",
	KMemberAccess: "MemberAccess", KBlock: "Block", KExprStmt: "ExprStmt",
	KIf: "If", KFor: "For", KWhile: "While", KReturn: "Return",
	KImport: "Import", KModule: "Module", KAlias: "Alias",
	KFuncParam: "FuncParam", KFuncPrototype: "FuncPrototype", KFuncDef: "FuncDef",
	KStructDecl: "StructDecl", KLabelStmt: "LabelStmt", KGotoStmt: "GotoStmt",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Node is implemented by every AST node. Kind is a structural tag only;
// callers wanting behavior per kind use a Go type switch on the concrete
// type, not a method on Node.
type Node interface {
	Kind() Kind
	Loc() source.Loc
	Parent() Node
	setParent(Node)
}

// Base is embedded by every concrete node and supplies the shared
// Loc/Parent bookkeeping spec.md §3 requires on every node.
type Base struct {
	K      Kind
	L      source.Loc
	parent Node
}

func (b *Base) Kind() Kind          { return b.K }
func (b *Base) Loc() source.Loc     { return b.L }
func (b *Base) Parent() Node        { return b.parent }
func (b *Base) setParent(p Node)    { b.parent = p }

// Exportable is implemented by the top-level statement kinds that carry
// the optional export flag of spec.md §3 ("set only on top-level
// statements").
type Exportable interface {
	Node
	IsExported() bool
	SetExported(bool)
}

// ExportBase adds the export flag to a top-level node.
type ExportBase struct {
	Base
	Exported bool
}

func (e *ExportBase) IsExported() bool   { return e.Exported }
func (e *ExportBase) SetExported(v bool) { e.Exported = v }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// Empty is the empty expression (also reused as the empty statement).
type Empty struct{ Base }

// Identifier is a bare name reference as the parser produces it. The IR
// generator resolves it through the symbol table where it is used; it is
// not rewritten into a VariableRef.
type Identifier struct {
	Base
	Name string
}

// VariableRef is a resolved reference to a variable or function binding.
type VariableRef struct {
	Base
	Name string
}

// IntLiteral is an integer literal expression.
type IntLiteral struct {
	Base
	Value  int64
	Base_  int  // base the literal was written in (2, 8, 10, 16)
	Width  int  // requested width in bits
	IsByte bool
}

// FloatLiteral is a float literal expression.
type FloatLiteral struct {
	Base
	Value float64
	Width int
}

// StringLiteral is a string literal expression.
type StringLiteral struct {
	Base
	Value    string
	CString  bool
}

// CharLiteral is a character literal expression.
type CharLiteral struct {
	Base
	Value byte // code point truncated per ByteChar, else rune value
	Byte  bool
}

// BoolLiteral is a bool literal expression.
type BoolLiteral struct {
	Base
	Value bool
}

// TypeRef names a type in source: either a simple name or an alias use.
type TypeRef struct {
	Name string
}

// VarDef is a local variable definition expression (`let [mut] name [:
// type] = init`).
type VarDef struct {
	Base
	Name      string
	Type      *TypeRef // nil if inferred
	Mutable   bool
	Init      Node // Expr
}

// GlobalVarDef wraps a VarDef for a module-level binding.
type GlobalVarDef struct {
	ExportBase
	Def *VarDef
}

// ConstDecl is a compile-time named constant (SPEC_FULL.md §4).
type ConstDecl struct {
	ExportBase
	Name  string
	Type  *TypeRef
	Value Node // Expr, must be a constant literal
}

// BinaryOp is a binary operator expression.
type BinaryOp struct {
	Base
	Op          string
	Left, Right Node
}

// UnaryOp is a prefix unary operator expression (`+ - ! not sizeof typeof
// addressof`).
type UnaryOp struct {
	Base
	Op      string
	Operand Node
}

// AssignOp is an assignment expression, distinct from BinaryOp per
// spec.md §4.2 ("produce assignment nodes distinct from binary nodes").
type AssignOp struct {
	Base
	Op          string // = += -= *= /= %=
	Left, Right Node
}

// CallOp is the arbitrary-arity operator used for function calls and
// constructor-like casts.
type CallOp struct {
	Base
	Callee Node
	Args   []Node
}

// Subscript is an array/index expression.
type Subscript struct {
	Base
	Target, Index Node
}

// MemberAccess is a `.` field-access expression (SPEC_FULL.md §4 struct
// support).
type MemberAccess struct {
	Base
	Target Node
	Field  string
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// Block is an ordered sequence of statements.
type Block struct {
	Base
	Stmts []Node
}

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	Base
	X Node
}

// If is an if/else statement. Else may be *Empty.
type If struct {
	Base
	Cond       Node
	Then, Else Node
}

// For is a C-style for loop; Init/End/Step may be *Empty.
type For struct {
	Base
	Init, End, Step Node
	Body            Node
}

// While is a while loop.
type While struct {
	Base
	Cond Node
	Body Node
}

// Return is a return statement; Value may be *Empty for void returns.
type Return struct {
	Base
	Value Node
}

// ImportKind distinguishes unspecified/module/package imports.
type ImportKind int

const (
	ImportUnspecified ImportKind = iota
	ImportModule
	ImportPackage
)

// Import is an import statement. IsPath is true when the import named a
// string-literal path rather than a dotted identifier.
type Import struct {
	Base
	Name   string
	IsPath bool
	Kind   ImportKind
}

// Module sets the compilation's output module identifier.
type Module struct {
	Base
	Name string
}

// Alias is a `use` statement introducing an alias type.
type Alias struct {
	Base
	NewName      string
	ExistingName string
}

// FuncParam is a function-prototype parameter: a VarDef plus its
// 1-based position.
type FuncParam struct {
	Base
	Def      *VarDef
	Position int
}

// FuncPrototype is a function's name, return type, and parameter list.
type FuncPrototype struct {
	Base
	Name       string
	ReturnType *TypeRef
	Params     []*FuncParam
	IsMain     bool
	Mangle     bool
}

// FuncDef is a function definition: its prototype plus a body block.
// IsDeclaration is true for a forward declaration, whose Body is empty.
type FuncDef struct {
	ExportBase
	Prototype     *FuncPrototype
	Body          *Block
	IsDeclaration bool
}

// StructField is one field of a struct declaration.
type StructField struct {
	Name string
	Type *TypeRef
}

// StructDecl is a struct type declaration (SPEC_FULL.md §4).
type StructDecl struct {
	ExportBase
	Name   string
	Fields []*StructField
}

// LabelStmt names a statement position for GotoStmt (SPEC_FULL.md §4).
type LabelStmt struct {
	Base
	Name string
}

// GotoStmt jumps to a LabelStmt within the same function.
type GotoStmt struct {
	Base
	Label string
}

// Program is the parse root: the global block plus whatever top-level
// statements it holds. Invariant (d) of spec.md §3: after the
// parent-solver pass, Global itself has a nil parent; every other
// reachable node does not.
type Program struct {
	Global *Block
}
