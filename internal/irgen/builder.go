package irgen

import (
	"fmt"

	"github.com/vrn-lang/varunac/internal/source"
	"github.com/vrn-lang/varunac/internal/types"
)

// Builder is the concrete types.Builder the per-kind operation tables of
// internal/types call into. It owns the function currently being
// generated and the basic block instructions are appended to, mirroring
// ysem/ir.go's IRGen.currentFn/emit bookkeeping but split out from AST
// walking so the op tables in internal/types can depend on it without
// depending on internal/ast.
type Builder struct {
	mod       *Module
	curFn     *Function
	curBlock  *Block
	tempCount int
	blockSeq  int

	debugInfo bool
	curLoc    source.Loc
}

// newBuilder returns a Builder with no current function; Generator calls
// startFunction before emitting anything into it. debugInfo gates
// whether emitted instructions carry the source location active at
// emission time (spec.md §4.4's debug-info scopes).
func newBuilder(mod *Module, debugInfo bool) *Builder {
	return &Builder{mod: mod, debugInfo: debugInfo}
}

// SetLoc records the source location genStmt is currently walking, so
// every instruction emitted until the next SetLoc call is attributed to
// it. A no-op when debugInfo is off.
func (b *Builder) SetLoc(loc source.Loc) {
	if b.debugInfo {
		b.curLoc = loc
	}
}

func (b *Builder) newTemp() string {
	t := fmt.Sprintf("%%t%d", b.tempCount)
	b.tempCount++
	return t
}

// NewBlock creates and appends a fresh block to the current function,
// without switching the builder's insertion point to it.
func (b *Builder) NewBlock(label string) *Block {
	blk := &Block{Label: label}
	b.curFn.Blocks = append(b.curFn.Blocks, blk)
	return blk
}

// NewLabel returns a fresh block label unique within the current
// function.
func (b *Builder) NewLabel(prefix string) string {
	l := fmt.Sprintf(".%s%d", prefix, b.blockSeq)
	b.blockSeq++
	return l
}

// SetInsertBlock switches the builder's current insertion point.
func (b *Builder) SetInsertBlock(blk *Block) { b.curBlock = blk }

// CurrentBlock returns the block instructions are currently appended to.
func (b *Builder) CurrentBlock() *Block { return b.curBlock }

// BlockTerminated reports whether the current block already ends in a
// terminator, so callers avoid emitting dead instructions past it.
func (b *Builder) BlockTerminated() bool { return b.curBlock != nil && b.curBlock.terminated }

func (b *Builder) emit(op, dest string, args ...string) {
	if b.curBlock.terminated {
		return // spec.md §4.4: keep only instructions up to the first terminator
	}
	in := Instr{Op: op, Dest: dest, Args: args}
	if b.debugInfo {
		in.Loc, in.HasLoc = b.curLoc, true
	}
	b.curBlock.appendInstr(in)
	if b.curBlock.isTerminator(op) {
		b.curBlock.terminated = true
	}
}

func operandText(v types.Value) string {
	cv := v.(*value)
	return cv.ref
}

// EmitBinary implements types.Builder.
func (b *Builder) EmitBinary(op string, result *types.Type, lhs, rhs types.Value) types.Value {
	dest := b.newTemp()
	b.emit(binOpcode(op), dest, operandText(lhs), operandText(rhs))
	return &value{ref: dest, typ: result}
}

// EmitUnary implements types.Builder.
func (b *Builder) EmitUnary(op string, result *types.Type, operand types.Value) types.Value {
	dest := b.newTemp()
	b.emit(unOpcode(op), dest, operandText(operand))
	return &value{ref: dest, typ: result}
}

// EmitCompare implements types.Builder.
func (b *Builder) EmitCompare(op string, boolType *types.Type, lhs, rhs types.Value) types.Value {
	dest := b.newTemp()
	b.emit("cmp."+cmpOpcode(op), dest, operandText(lhs), operandText(rhs))
	return &value{ref: dest, typ: boolType}
}

// EmitCall implements types.Builder.
func (b *Builder) EmitCall(callee types.Value, args []types.Value, result *types.Type) types.Value {
	argRefs := make([]string, 0, len(args)+1)
	argRefs = append(argRefs, operandText(callee))
	for _, a := range args {
		argRefs = append(argRefs, operandText(a))
	}
	if result == nil || result.Kind == types.Void {
		b.emit("call", "", argRefs...)
		return &value{ref: "", typ: result}
	}
	dest := b.newTemp()
	b.emit("call", dest, argRefs...)
	return &value{ref: dest, typ: result}
}

// EmitCast implements types.Builder.
func (b *Builder) EmitCast(v types.Value, to *types.Type, mode types.CastMode) types.Value {
	cv := v.(*value)
	if cv.typ != nil && to != nil && cv.typ.CanonicalName() == to.CanonicalName() {
		return v
	}
	dest := b.newTemp()
	op := "cast"
	if mode == types.BitReinterpret {
		op = "bitcast"
	}
	b.emit(op, dest, cv.ref, to.CanonicalName())
	return &value{ref: dest, typ: to}
}

// EmitStore implements types.Builder.
func (b *Builder) EmitStore(addr, val types.Value) {
	b.emit("store", "", operandText(val), operandText(addr))
}

// EmitLoad implements types.Builder.
func (b *Builder) EmitLoad(addr types.Value, t *types.Type) types.Value {
	dest := b.newTemp()
	b.emit("load", dest, operandText(addr))
	return &value{ref: dest, typ: t}
}

// EmitAlloca reserves a named stack slot in the function's entry block
// (spec.md §4.4: "Variable definitions allocate in the function entry
// block"). Not part of types.Builder since only the generator's
// statement walker, not the op tables, needs it.
func (b *Builder) EmitAlloca(entry *Block, name string, t *types.Type) *value {
	ref := "%" + name
	entry.appendInstr(Instr{Op: "alloca", Dest: ref, Args: []string{t.CanonicalName()}})
	return &value{ref: ref, typ: t}
}

// EmitFieldAddr computes the address of field f within the struct value
// at base, for SPEC_FULL.md §4's struct member access.
func (b *Builder) EmitFieldAddr(base *value, f types.Field) *value {
	dest := b.newTemp()
	b.emit("gep", dest, base.ref, fmt.Sprintf("%d", f.Offset/8))
	return &value{ref: dest, typ: f.Type}
}

// EmitBranch emits an unconditional branch and marks the current block
// terminated.
func (b *Builder) EmitBranch(target *Block) {
	b.emit("br", "", target.Label)
	b.curBlock.Instrs[len(b.curBlock.Instrs)-1].Target = target.Label
}

// EmitCondBranch emits a two-way conditional branch.
func (b *Builder) EmitCondBranch(cond types.Value, thenBlk, elseBlk *Block) {
	b.emit("brcond", "", operandText(cond), thenBlk.Label, elseBlk.Label)
}

// EmitReturn emits a return, with or without a value.
func (b *Builder) EmitReturn(v types.Value) {
	if v == nil {
		b.emit("ret", "")
		return
	}
	b.emit("ret", "", operandText(v))
}

// EmitUnreachable appends the spec.md §4.4 sweep's synthetic terminator
// for a block that otherwise falls off the end.
func (b *Builder) EmitUnreachable() { b.emit("unreachable", "") }

func binOpcode(op string) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div"
	case "%", "rem":
		return "rem"
	case "&&":
		return "and"
	case "||":
		return "or"
	default:
		return "binop." + op
	}
}

func unOpcode(op string) string {
	switch op {
	case "-":
		return "neg"
	case "!", "not":
		return "not"
	default:
		return "unop." + op
	}
}

func cmpOpcode(op string) string {
	switch op {
	case "==":
		return "eq"
	case "!=":
		return "ne"
	case "<":
		return "lt"
	case "<=":
		return "le"
	case ">":
		return "gt"
	case ">=":
		return "ge"
	default:
		return op
	}
}
