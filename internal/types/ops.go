package types

import (
	"fmt"

	"github.com/vrn-lang/varunac/internal/ast"
)

// Value is a builder-produced typed value. internal/irgen supplies the
// concrete implementation; this package only needs to read its type back
// to type-check further operations.
type Value interface {
	Type() *Type
}

// Builder is the abstract instruction-emitting collaborator spec.md
// §4.3's operation tables are written against ("each taking
// (source-node, builder, operator, operand-list)"). internal/irgen
// implements it; keeping the interface here (rather than importing
// irgen from types) is what lets the per-kind operation tables live next
// to the type system instead of being duplicated inside the IR
// generator, mirroring how the teacher keeps type-directed codegen
// decisions (ysem/analyzer.go's valueFitsInType/adaptLiteralToType) next
// to its Type definitions rather than inside the emitter.
type Builder interface {
	EmitBinary(op string, result *Type, lhs, rhs Value) Value
	EmitUnary(op string, result *Type, operand Value) Value
	EmitCompare(op string, boolType *Type, lhs, rhs Value) Value
	EmitCall(callee Value, args []Value, result *Type) Value
	EmitCast(v Value, to *Type, mode CastMode) Value
	EmitStore(addr Value, val Value)
	EmitLoad(addr Value, t *Type) Value
}

// OpFunc is the shape of every entry in an OperationTable: a source node
// for diagnostics, the builder, the textual operator, and the already
// type-checked operand values.
type OpFunc func(node ast.Node, b Builder, op string, operands []Value) (Value, error)

// OperationTable is the per-type-kind family of spec.md §4.3: "Each type
// kind owns a table of four functions — assignment, unary, binary,
// arbitrary-arity". A nil entry means the operation is unsupported for
// that kind and callers should report "unsupported operator for type".
type OperationTable struct {
	Assignment OpFunc
	Unary      OpFunc
	Binary     OpFunc
	Call       OpFunc
}

var tables map[Kind]*OperationTable

func init() {
	tables = map[Kind]*OperationTable{
		SignedInt: integralTable(),
		Float:     floatTable(),
		Bool:      boolTable(),
		Char:      equalityOnlyTable(),
		BChar:     equalityOnlyTable(),
		String:    assignOnlyTable(),
		CString:   assignOnlyTable(),
		Function:  functionTable(),
		Byte:      byteTable(),
		Void:      &OperationTable{},
		Struct:    assignOnlyTable(),
	}
}

// TableFor returns kind's operation table. It is never nil; kinds with no
// supported operations get an all-nil table.
func TableFor(kind Kind) *OperationTable {
	if t, ok := tables[kind]; ok {
		return t
	}
	return &OperationTable{}
}

func unsupported(node ast.Node, kindName, op string) error {
	return fmt.Errorf("%s: unsupported operator %q for type %s", node.Loc(), op, kindName)
}

func simpleAssign(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
	if len(operands) != 2 {
		return nil, fmt.Errorf("%s: assignment expects 2 operands", node.Loc())
	}
	addr, val := operands[0], operands[1]
	cast := b.EmitCast(val, addr.Type(), Implicit)
	b.EmitStore(addr, cast)
	return cast, nil
}

func assignOnlyTable() *OperationTable {
	return &OperationTable{Assignment: simpleAssign}
}

func equalityOnlyTable() *OperationTable {
	return &OperationTable{
		Assignment: simpleAssign,
		Binary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if op != "==" && op != "!=" {
				return nil, unsupported(node, "char", op)
			}
			if len(operands) != 2 {
				return nil, fmt.Errorf("%s: binary op expects 2 operands", node.Loc())
			}
			return b.EmitCompare(op, boolResult(operands[0]), operands[0], operands[1]), nil
		},
	}
}

// boolResult returns a standalone bool type for a comparison's result:
// operation tables hold no Registry reference, so this is a fresh *Type
// named "bool", not the registry's entry. It matches the registry's bool
// by name, which is what CanCast compares.
func boolResult(v Value) *Type {
	return &Type{Kind: Bool, Name: "bool", SizeInBits: 8}
}

// defaultIntType is spec.md §4.3's "default integer type" (i32), the cast
// target for unary +, matching original_source/src/codegen/TypeOperation.cpp's
// OPERATORU_PLUS case, which looks up "int" and casts to it rather than
// leaving the operand's own type unchanged.
func defaultIntType() *Type {
	return &Type{Kind: SignedInt, Name: "i32", SizeInBits: 32, Width: 32}
}

func integralTable() *OperationTable {
	return &OperationTable{
		Assignment: simpleAssign,
		Unary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if len(operands) != 1 {
				return nil, fmt.Errorf("%s: unary op expects 1 operand", node.Loc())
			}
			v := operands[0]
			switch op {
			case "+":
				return b.EmitCast(v, defaultIntType(), Implicit), nil
			case "-", "!":
				return b.EmitUnary(op, v.Type(), v), nil
			default:
				return nil, unsupported(node, "integral", op)
			}
		},
		Binary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if len(operands) != 2 {
				return nil, fmt.Errorf("%s: binary op expects 2 operands", node.Loc())
			}
			lhs, rhs := operands[0], operands[1]
			switch op {
			case "+", "-", "*", "/", "%", "rem":
				rt := widerOf(lhs.Type(), rhs.Type())
				return b.EmitBinary(op, rt, lhs, rhs), nil
			case "==", "!=", "<", "<=", ">", ">=":
				return b.EmitCompare(op, boolResult(lhs), lhs, rhs), nil
			case "+=", "-=", "*=", "/=", "%=":
				base := op[:1]
				binOp := base
				if op == "%=" {
					binOp = "%"
				}
				sum := b.EmitBinary(binOp, lhs.Type(), lhs, rhs)
				b.EmitStore(lhs, sum)
				return sum, nil
			default:
				return nil, unsupported(node, "integral", op)
			}
		},
	}
}

func widerOf(a, b *Type) *Type {
	if a.Width >= b.Width {
		return a
	}
	return b
}

func floatTable() *OperationTable {
	return &OperationTable{
		Assignment: simpleAssign,
		Unary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if len(operands) != 1 {
				return nil, fmt.Errorf("%s: unary op expects 1 operand", node.Loc())
			}
			v := operands[0]
			switch op {
			case "+":
				return v, nil
			case "-":
				return b.EmitUnary(op, v.Type(), v), nil
			default:
				return nil, unsupported(node, "float", op)
			}
		},
		Binary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if len(operands) != 2 {
				return nil, fmt.Errorf("%s: binary op expects 2 operands", node.Loc())
			}
			lhs, rhs := operands[0], operands[1]
			switch op {
			case "+", "-", "*", "/":
				rt := widerOf(lhs.Type(), rhs.Type())
				return b.EmitBinary(op, rt, lhs, rhs), nil
			case "==", "!=", "<", "<=", ">", ">=":
				return b.EmitCompare(op, boolResult(lhs), lhs, rhs), nil
			default:
				return nil, unsupported(node, "float", op)
			}
		},
	}
}

func boolTable() *OperationTable {
	return &OperationTable{
		Assignment: simpleAssign,
		Unary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if op != "!" && op != "not" {
				return nil, unsupported(node, "bool", op)
			}
			return b.EmitUnary("!", operands[0].Type(), operands[0]), nil
		},
		Binary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			lhs, rhs := operands[0], operands[1]
			switch op {
			case "&&", "and":
				return b.EmitBinary("&&", lhs.Type(), lhs, rhs), nil
			case "||", "or":
				return b.EmitBinary("||", lhs.Type(), lhs, rhs), nil
			case "==", "!=":
				return b.EmitCompare(op, lhs.Type(), lhs, rhs), nil
			default:
				return nil, unsupported(node, "bool", op)
			}
		},
	}
}

func byteTable() *OperationTable {
	return &OperationTable{
		Assignment: simpleAssign,
		Binary: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if op != "==" && op != "!=" {
				return nil, unsupported(node, "byte", op)
			}
			return b.EmitCompare(op, boolResult(operands[0]), operands[0], operands[1]), nil
		},
	}
}

func functionTable() *OperationTable {
	return &OperationTable{
		Call: func(node ast.Node, b Builder, op string, operands []Value) (Value, error) {
			if len(operands) == 0 {
				return nil, fmt.Errorf("%s: call requires a callee operand", node.Loc())
			}
			callee := operands[0]
			args := operands[1:]
			ft := callee.Type()
			if ft.Kind != Function {
				return nil, fmt.Errorf("%s: call target is not a function", node.Loc())
			}
			if len(args) != len(ft.Params) {
				return nil, fmt.Errorf("%s: %s expects %d argument(s), got %d",
					node.Loc(), ft.CanonicalName(), len(ft.Params), len(args))
			}
			cast := make([]Value, len(args))
			for i, a := range args {
				res := CanCast(a.Type(), ft.Params[i], Implicit)
				if !res.Allowed && a.Type().CanonicalName() != ft.Params[i].CanonicalName() {
					return nil, fmt.Errorf("%s: argument %d: %s", node.Loc(), i+1, res.Reason)
				}
				cast[i] = b.EmitCast(a, ft.Params[i], Implicit)
			}
			return b.EmitCall(callee, cast, ft.Return), nil
		},
	}
}
