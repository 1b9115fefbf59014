package irgen

import (
	"strconv"
	"strings"

	"github.com/vrn-lang/varunac/internal/ast"
	"github.com/vrn-lang/varunac/internal/diag"
	"github.com/vrn-lang/varunac/internal/types"
)

// genExpr walks one expression node and returns its generated value,
// per spec.md §4.4's "Expression handling" paragraph.
func (g *Generator) genExpr(n ast.Node) types.Value {
	switch v := n.(type) {
	case *ast.Empty:
		return g.zeroValue()
	case *ast.IntLiteral:
		return g.genIntLiteral(v)
	case *ast.FloatLiteral:
		return g.genFloatLiteral(v)
	case *ast.StringLiteral:
		t := g.Registry.Lookup("string")
		if v.CString {
			t = g.Registry.Lookup("cstring")
		}
		return &value{ref: strconv.Quote(v.Value), typ: t, isImmediate: true}
	case *ast.CharLiteral:
		t := g.Registry.Lookup("char")
		if v.Byte {
			t = g.Registry.Lookup("bchar")
		}
		return &value{ref: strconv.Itoa(int(v.Value)), typ: t, isImmediate: true}
	case *ast.BoolLiteral:
		t := g.Registry.Lookup("bool")
		ref := "false"
		if v.Value {
			ref = "true"
		}
		return &value{ref: ref, typ: t, isImmediate: true}
	case *ast.Identifier:
		return g.genIdentifier(v)
	case *ast.BinaryOp:
		return g.genBinaryOp(v)
	case *ast.UnaryOp:
		return g.genUnaryOp(v)
	case *ast.AssignOp:
		return g.genAssignOp(v)
	case *ast.CallOp:
		return g.genCallOp(v)
	case *ast.Subscript:
		g.errorf(v, "unimplemented: subscript is parsed but not yet generated")
		return g.zeroValue()
	case *ast.MemberAccess:
		return g.genMemberAccessRead(v)
	default:
		g.errorf(n, "internal: unhandled expression node %s", n.Kind())
		return g.zeroValue()
	}
}

func (g *Generator) zeroValue() types.Value {
	return &value{ref: "0", typ: g.Registry.Lookup("void"), isImmediate: true}
}

func (g *Generator) genIdentifier(v *ast.Identifier) types.Value {
	sym := g.Symbols.Find(v.Name, nil)
	if sym == nil {
		g.errorf(v, "undefined symbol %q", v.Name)
		return g.zeroValue()
	}
	vh, ok := sym.ValueHandle.(*value)
	if !ok || vh == nil {
		return g.zeroValue()
	}
	if sym.IsFunction || vh.isImmediate {
		// A reference to a function materializes its callable value
		// rather than a load, per spec.md §4.4.
		return vh
	}
	return g.builder.EmitLoad(vh, sym.Type)
}

func widthBits(requested int) int {
	if requested == 0 {
		return 32
	}
	return requested
}

func maxSignedForWidth(w int) int64 {
	if w >= 64 {
		return 1<<63 - 1
	}
	return int64(1)<<(uint(w)-1) - 1
}

func minSignedForWidth(w int) int64 {
	if w >= 64 {
		return -(1 << 63)
	}
	return -(int64(1) << (uint(w) - 1))
}

// genIntLiteral implements spec.md §4.4: "integer overflow of the
// declared width is a compile error."
func (g *Generator) genIntLiteral(v *ast.IntLiteral) types.Value {
	w := widthBits(v.Width)
	if v.IsByte {
		w = 8
	}
	max, min := maxSignedForWidth(w), minSignedForWidth(w)
	if v.Value > max || v.Value < min {
		g.errorf(v, "%s", diag.RangeDiagnostic(v.Value, max, w))
	}
	name := "i" + strconv.Itoa(w)
	if v.IsByte {
		name = "byte"
	}
	t := g.Registry.Lookup(name)
	if t == nil {
		t = g.Registry.Lookup("i32")
	}
	return &value{ref: strconv.FormatInt(v.Value, 10), typ: t, isImmediate: true}
}

func (g *Generator) genFloatLiteral(v *ast.FloatLiteral) types.Value {
	w := v.Width
	if w == 0 {
		w = 64
	}
	t := g.Registry.Lookup("f" + strconv.Itoa(w))
	if t == nil {
		t = g.Registry.Lookup("f64")
	}
	return &value{ref: strconv.FormatFloat(v.Value, 'g', -1, 64), typ: t, isImmediate: true}
}

// genBinaryOp dispatches to the left operand's per-kind operation table,
// per spec.md §4.3, implicitly unifying mismatched-but-castable operand
// types first. Op == "as" is the explicit-cast expression of spec.md
// §4.1's textual `as` operator rather than a true binary operator.
func (g *Generator) genBinaryOp(v *ast.BinaryOp) types.Value {
	if v.Op == "as" {
		return g.genExplicitCast(v)
	}
	left := g.genExpr(v.Left)
	right := g.genExpr(v.Right)
	if left.Type().CanonicalName() != right.Type().CanonicalName() {
		switch {
		case types.CanCast(right.Type(), left.Type(), types.Implicit).Allowed:
			right = g.builder.EmitCast(right, left.Type(), types.Implicit)
		case types.CanCast(left.Type(), right.Type(), types.Implicit).Allowed:
			left = g.builder.EmitCast(left, right.Type(), types.Implicit)
		default:
			g.errorf(v, "operand types %s and %s are not compatible for %q",
				left.Type(), right.Type(), v.Op)
			return left
		}
	}
	tbl := types.TableFor(left.Type().Kind)
	if tbl.Binary == nil {
		g.errorf(v, "unsupported operator %q for type %s", v.Op, left.Type())
		return left
	}
	result, err := tbl.Binary(v, g.builder, v.Op, []types.Value{left, right})
	if err != nil {
		g.errorf(v, "%v", err)
		return left
	}
	return result
}

func (g *Generator) genExplicitCast(v *ast.BinaryOp) types.Value {
	ident, ok := v.Right.(*ast.Identifier)
	if !ok {
		g.errorf(v, "right-hand side of 'as' must name a type")
		return g.genExpr(v.Left)
	}
	t := g.resolveTypeName(v, ident.Name)
	operand := g.genExpr(v.Left)
	res := types.CanCast(operand.Type(), t, types.Explicit)
	if !res.Allowed {
		g.errorf(v, "%s", res.Reason)
		return operand
	}
	return g.builder.EmitCast(operand, t, types.Explicit)
}

func (g *Generator) genUnaryOp(v *ast.UnaryOp) types.Value {
	switch v.Op {
	case "sizeof":
		return g.genSizeof(v)
	case "typeof":
		t := g.staticTypeOf(v.Operand)
		return &value{ref: strconv.Quote(t.CanonicalName()), typ: g.Registry.Lookup("cstring"), isImmediate: true}
	case "addressof":
		addr, _, ok := g.lvalue(v.Operand)
		if !ok {
			return g.zeroValue()
		}
		return addr
	default:
		operand := g.genExpr(v.Operand)
		tbl := types.TableFor(operand.Type().Kind)
		if tbl.Unary == nil {
			g.errorf(v, "unsupported operator %q for type %s", v.Op, operand.Type())
			return operand
		}
		result, err := tbl.Unary(v, g.builder, v.Op, []types.Value{operand})
		if err != nil {
			g.errorf(v, "%v", err)
			return operand
		}
		return result
	}
}

func (g *Generator) genSizeof(v *ast.UnaryOp) types.Value {
	t := g.staticTypeOf(v.Operand)
	return &value{ref: strconv.Itoa(t.SizeInBits / 8), typ: g.Registry.Lookup("i32"), isImmediate: true}
}

// staticTypeOf resolves an expression's type without emitting code when
// possible (a bare identifier naming a registered type, or a variable
// already in scope); it falls back to full evaluation otherwise. Used by
// `sizeof`/`typeof`, which need a type, not a value.
func (g *Generator) staticTypeOf(n ast.Node) *types.Type {
	if ident, ok := n.(*ast.Identifier); ok {
		if t := g.Registry.Lookup(ident.Name); t != nil {
			return t
		}
		if sym := g.Symbols.Find(ident.Name, nil); sym != nil {
			return sym.Type
		}
	}
	return g.genExpr(n).Type()
}

// lvalue resolves n to its storage address, per spec.md §4.3's lvalue
// discipline: "Assignment requires the left operand to be an lvalue ...
// and its is-mutable flag to be true."
func (g *Generator) lvalue(n ast.Node) (addr *value, mutable bool, ok bool) {
	switch v := n.(type) {
	case *ast.Identifier:
		sym := g.Symbols.Find(v.Name, boolPtr(false))
		if sym == nil {
			g.errorf(v, "undefined symbol %q", v.Name)
			return nil, false, false
		}
		vh, _ := sym.ValueHandle.(*value)
		if vh == nil || vh.isImmediate {
			g.errorf(v, "%q is not an lvalue", v.Name)
			return nil, false, false
		}
		return vh, sym.IsMutable, true
	case *ast.MemberAccess:
		baseAddr, baseMutable, ok := g.lvalue(v.Target)
		if !ok {
			return nil, false, false
		}
		if baseAddr.typ == nil || baseAddr.typ.Kind != types.Struct {
			g.errorf(v, "member access on non-struct type %s", baseAddr.typ)
			return nil, false, false
		}
		for _, f := range baseAddr.typ.Fields {
			if f.Name == v.Field {
				return g.builder.EmitFieldAddr(baseAddr, f), baseMutable, true
			}
		}
		g.errorf(v, "type %s has no field %q", baseAddr.typ, v.Field)
		return nil, false, false
	case *ast.Subscript:
		g.errorf(v, "unimplemented: subscript is parsed but not yet generated")
		return nil, false, false
	default:
		g.errorf(n, "expression is not an lvalue")
		return nil, false, false
	}
}

func (g *Generator) genMemberAccessRead(v *ast.MemberAccess) types.Value {
	addr, _, ok := g.lvalue(v)
	if !ok {
		return g.zeroValue()
	}
	return g.builder.EmitLoad(addr, addr.typ)
}

// genAssignOp implements the assignment half of spec.md §4.2/§4.3: a
// distinct node from BinaryOp, lvalue-checked, with compound forms
// decomposed into a binary op plus a store.
func (g *Generator) genAssignOp(v *ast.AssignOp) types.Value {
	addr, mutable, ok := g.lvalue(v.Left)
	if !ok {
		return g.genExpr(v.Right)
	}
	if !mutable {
		g.errorf(v, "cannot assign to immutable binding")
	}
	rhs := g.genExpr(v.Right)

	if v.Op == "=" {
		casted := g.implicitCastOrError(v, rhs, addr.typ)
		g.builder.EmitStore(addr, casted)
		return casted
	}

	cur := g.builder.EmitLoad(addr, addr.typ)
	binOp := strings.TrimSuffix(v.Op, "=")
	rhsCast := g.implicitCastOrError(v, rhs, addr.typ)
	tbl := types.TableFor(addr.typ.Kind)
	if tbl.Binary == nil {
		g.errorf(v, "unsupported operator %q for type %s", v.Op, addr.typ)
		return cur
	}
	result, err := tbl.Binary(v, g.builder, binOp, []types.Value{cur, rhsCast})
	if err != nil {
		g.errorf(v, "%v", err)
		return cur
	}
	g.builder.EmitStore(addr, result)
	return result
}

// genCallOp implements spec.md §3's arbitrary-arity op: ordinary function
// calls, plus the "constructor-like cast" forms `cast(expr, Type)` and
// `Type(expr)` that reuse call syntax (spec.md §9's partially-implemented
// feature note: "constructor-like syntax that is actually a cast").
func (g *Generator) genCallOp(v *ast.CallOp) types.Value {
	if ident, ok := v.Callee.(*ast.Identifier); ok {
		if ident.Name == "cast" {
			return g.genCastBuiltin(v)
		}
		if t := g.Registry.Lookup(ident.Name); t != nil && t.Kind != types.Function {
			return g.genTypeConversionCall(v, t)
		}
	}

	callee := g.genExpr(v.Callee)
	args := make([]types.Value, 0, len(v.Args)+1)
	args = append(args, callee)
	for _, a := range v.Args {
		args = append(args, g.genExpr(a))
	}
	tbl := types.TableFor(types.Function)
	result, err := tbl.Call(v, g.builder, "call", args)
	if err != nil {
		g.errorf(v, "%v", err)
		return g.zeroValue()
	}
	return result
}

func (g *Generator) genCastBuiltin(v *ast.CallOp) types.Value {
	if len(v.Args) != 2 {
		g.errorf(v, "cast(expr, Type) expects exactly 2 arguments, got %d", len(v.Args))
		return g.zeroValue()
	}
	typeIdent, ok := v.Args[1].(*ast.Identifier)
	if !ok {
		g.errorf(v, "cast(expr, Type): second argument must name a type")
		return g.zeroValue()
	}
	t := g.resolveTypeName(v, typeIdent.Name)
	operand := g.genExpr(v.Args[0])
	res := types.CanCast(operand.Type(), t, types.Explicit)
	if !res.Allowed {
		g.errorf(v, "%s", res.Reason)
		return operand
	}
	return g.builder.EmitCast(operand, t, types.Explicit)
}

func (g *Generator) genTypeConversionCall(v *ast.CallOp, t *types.Type) types.Value {
	if len(v.Args) != 1 {
		g.errorf(v, "%s(...) type conversion expects exactly 1 argument, got %d", t.CanonicalName(), len(v.Args))
		return g.zeroValue()
	}
	operand := g.genExpr(v.Args[0])
	res := types.CanCast(operand.Type(), t, types.Explicit)
	if !res.Allowed {
		g.errorf(v, "%s", res.Reason)
		return operand
	}
	return g.builder.EmitCast(operand, t, types.Explicit)
}
