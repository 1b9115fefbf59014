// Package irgen implements spec.md §4.4: an AST-walking pass that
// produces a typed instruction stream against an abstract builder,
// enforces assignability/lvalue/return-type rules, supports
// multi-file compilation through internal/modfile, and maintains
// debug-info scopes and name mangling.
//
// The instruction-stream shape (virtual registers, one basic block per
// label, op/dest/args instructions) is grounded on
// gmofishsauce/wut4/lang/ysem/ir.go's IRGen/IRFunc/IRInstr, generalized
// from that teacher's fixed machine-level opcode set (CONST.W, LOAD.W,
// ADD.W, ...) to an opaque textual opcode driven by spec.md §4.3's
// per-type operation tables, and from its flat instruction list to
// explicit basic blocks so the terminator-sweep invariant of spec.md
// §4.4 point 4 has something concrete to sweep.
package irgen

import (
	"fmt"

	"github.com/vrn-lang/varunac/internal/source"
	"github.com/vrn-lang/varunac/internal/types"
)

// value is the concrete types.Value every builder call produces: a
// virtual register (or an immediate/global reference) tagged with its
// varuna type.
type value struct {
	ref string
	typ *types.Type
	// isImmediate marks a constant folded directly into operand text
	// rather than a register name, mirroring ysem/ir.go's distinction
	// between a temp name and a literal operand string.
	isImmediate bool
}

func (v *value) Type() *types.Type { return v.typ }

// Instr is one emitted instruction: an opcode, an optional destination
// register, and operand text, matching ysem/ir.go's IRInstr shape. Loc
// is populated only when the generator runs with debug info on
// (spec.md §4.4's debug-info scopes).
type Instr struct {
	Op     string
	Dest   string
	Args   []string
	Target string // branch target block label, set for control-flow ops
	Loc    source.Loc
	HasLoc bool
}

// Block is a straight-line run of instructions ending in exactly one
// terminator, the unit spec.md's Glossary defines as "Basic block".
type Block struct {
	Label      string
	Instrs     []Instr
	terminated bool
}

func (b *Block) appendInstr(i Instr) {
	b.Instrs = append(b.Instrs, i)
}

func (b *Block) isTerminator(op string) bool {
	switch op {
	case "ret", "br", "brcond", "unreachable":
		return true
	}
	return false
}

// Function is one generated function: its mangled name, parameter and
// return type text, and its basic blocks in emission order.
type Function struct {
	Name       string // mangled (or original, if nomangle)
	SourceName string
	ReturnType string
	ParamTypes []string
	ParamNames []string
	Blocks     []*Block
	IsExternal bool // forward declaration only, no body
	Exported   bool
}

// Global is one module-level variable.
type Global struct {
	Name     string
	Type     string
	Exported bool
	Mutable  bool
	Init     string
}

// Module is the complete generated unit for one source file, spec.md
// §4.4's output before it is handed to the (out of scope) external
// back-end as line-oriented text.
type Module struct {
	SourceName string
	Name       string // set by a `module` top-level statement, if present
	CompileID  string // per-compile UUID, echoed into the IR text header for log correlation
	Globals    []*Global
	Functions  []*Function
}

// Text renders m as the line-oriented, back-end-opaque IR text spec.md
// §5 describes, in the teacher's ygen/emit.go directive/instruction
// style (indented mnemonics, colon-terminated labels).
func (m *Module) Text() string {
	var out string
	out += fmt.Sprintf("; source %s\n", m.SourceName)
	if m.Name != "" {
		out += fmt.Sprintf("; module %s\n", m.Name)
	}
	if m.CompileID != "" {
		out += fmt.Sprintf("; compile %s\n", m.CompileID)
	}
	for _, g := range m.Globals {
		vis := "internal"
		if g.Exported {
			vis = "weak_odr"
		}
		out += fmt.Sprintf("global %s %s %s = %s\n", vis, g.Type, g.Name, g.Init)
	}
	for _, fn := range m.Functions {
		out += fn.text()
	}
	return out
}

func (fn *Function) text() string {
	vis := "internal"
	if fn.Exported {
		vis = "weak_odr"
	}
	params := ""
	for i, pt := range fn.ParamTypes {
		if i > 0 {
			params += ", "
		}
		params += fmt.Sprintf("%s %s", pt, fn.ParamNames[i])
	}
	if fn.IsExternal {
		return fmt.Sprintf("declare %s %s(%s)\n", fn.ReturnType, fn.Name, params)
	}
	out := fmt.Sprintf("func %s %s %s(%s) {\n", vis, fn.ReturnType, fn.Name, params)
	for _, b := range fn.Blocks {
		out += fmt.Sprintf("%s:\n", b.Label)
		for _, in := range b.Instrs {
			out += formatInstr(in)
		}
	}
	out += "}\n"
	return out
}

func formatInstr(in Instr) string {
	line := "    "
	if in.Dest != "" {
		line += in.Dest + " = "
	}
	line += in.Op
	for _, a := range in.Args {
		line += " " + a
	}
	if in.Target != "" {
		line += " " + in.Target
	}
	if in.HasLoc {
		line += fmt.Sprintf("  ; %s", in.Loc)
	}
	return line + "\n"
}
