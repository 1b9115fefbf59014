package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrn-lang/varunac/internal/ast"
)

func TestCanonicalNameForPrimitive(t *testing.T) {
	reg := NewRegistry()
	require.Equal(t, "i32", reg.Lookup("i32").CanonicalName())
}

func TestCanonicalNameForFunctionType(t *testing.T) {
	reg := NewRegistry()
	i32 := reg.Lookup("i32")
	ft := reg.FunctionType(i32, []*Type{i32, i32})
	require.Equal(t, "i32(i32,i32)", ft.CanonicalName())
	require.Equal(t, ft.CanonicalName(), ft.String())
}

func TestRegistryLookupReturnsNilForUnknown(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, reg.Lookup("nope"))
	require.NotNil(t, reg.Lookup("f64"))
}

func TestRegistryInsertRejectsDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.Insert(&Type{Kind: SignedInt, Name: "i32"}))
}

func TestRegistryInsertAddsNewType(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Insert(&Type{Kind: Struct, Name: "Point"}))
	require.NotNil(t, reg.Lookup("Point"))
}

func TestRegistryFunctionTypeCachesByCanonicalName(t *testing.T) {
	reg := NewRegistry()
	i32 := reg.Lookup("i32")
	a := reg.FunctionType(i32, []*Type{i32})
	b := reg.FunctionType(i32, []*Type{i32})
	require.Same(t, a, b)
}

func TestRegistryNamesIncludesPrimitivesInInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	names := reg.Names()
	require.Equal(t, "void", names[0])
	require.Contains(t, names, "i64")
}

func TestCanCastImplicitWideningIntAllowed(t *testing.T) {
	reg := NewRegistry()
	res := CanCast(reg.Lookup("i32"), reg.Lookup("i64"), Implicit)
	require.True(t, res.Allowed)
}

func TestCanCastImplicitNarrowingIntRejected(t *testing.T) {
	reg := NewRegistry()
	res := CanCast(reg.Lookup("i64"), reg.Lookup("i32"), Implicit)
	require.False(t, res.Allowed)
}

func TestCanCastImplicitIdentityAllowed(t *testing.T) {
	reg := NewRegistry()
	res := CanCast(reg.Lookup("i32"), reg.Lookup("i32"), Implicit)
	require.True(t, res.Allowed)
}

func TestCanCastImplicitBoolToIntAllowed(t *testing.T) {
	reg := NewRegistry()
	res := CanCast(reg.Lookup("bool"), reg.Lookup("i32"), Implicit)
	require.True(t, res.Allowed)
}

func TestCanCastBitReinterpretRequiresEqualWidth(t *testing.T) {
	reg := NewRegistry()
	res := CanCast(reg.Lookup("i32"), reg.Lookup("f64"), BitReinterpret)
	require.False(t, res.Allowed)

	res2 := CanCast(reg.Lookup("i32"), reg.Lookup("f32"), BitReinterpret)
	require.True(t, res2.Allowed)
}

func TestCanCastBitReinterpretRejectsStringAndVoid(t *testing.T) {
	reg := NewRegistry()
	str := reg.Lookup("string")
	other := &Type{Kind: SignedInt, Name: "fake128", SizeInBits: 128, Width: 128}
	res := CanCast(str, other, BitReinterpret)
	require.False(t, res.Allowed)
}

func TestCanCastExplicitIntToBoolAndBack(t *testing.T) {
	reg := NewRegistry()
	i32 := reg.Lookup("i32")
	b := reg.Lookup("bool")
	require.True(t, CanCast(i32, b, Explicit).Allowed)
	require.True(t, CanCast(b, i32, Explicit).Allowed)
}

func TestCanCastExplicitVoidRejectedEverywhere(t *testing.T) {
	reg := NewRegistry()
	res := CanCast(reg.Lookup("void"), reg.Lookup("i32"), Explicit)
	require.False(t, res.Allowed)
}

func TestCanCastNilTypesRejected(t *testing.T) {
	require.False(t, CanCast(nil, nil, Implicit).Allowed)
}

// --- OperationTable dispatch ---

type fakeValue struct{ t *Type }

func (f *fakeValue) Type() *Type { return f.t }

type fakeBuilder struct {
	binaryOp  string
	storedAddr, storedVal Value
	castTo    *Type
}

func (b *fakeBuilder) EmitBinary(op string, result *Type, lhs, rhs Value) Value {
	b.binaryOp = op
	return &fakeValue{t: result}
}
func (b *fakeBuilder) EmitUnary(op string, result *Type, operand Value) Value {
	return &fakeValue{t: result}
}
func (b *fakeBuilder) EmitCompare(op string, boolType *Type, lhs, rhs Value) Value {
	return &fakeValue{t: boolType}
}
func (b *fakeBuilder) EmitCall(callee Value, args []Value, result *Type) Value {
	return &fakeValue{t: result}
}
func (b *fakeBuilder) EmitCast(v Value, to *Type, mode CastMode) Value {
	b.castTo = to
	return &fakeValue{t: to}
}
func (b *fakeBuilder) EmitStore(addr Value, val Value) {
	b.storedAddr, b.storedVal = addr, val
}
func (b *fakeBuilder) EmitLoad(addr Value, t *Type) Value { return &fakeValue{t: t} }

func TestIntegralTableBinaryAddPicksWiderResultType(t *testing.T) {
	reg := NewRegistry()
	i32, i64 := reg.Lookup("i32"), reg.Lookup("i64")
	tbl := TableFor(SignedInt)
	b := &fakeBuilder{}
	v, err := tbl.Binary(&ast.Empty{}, b, "+", []Value{&fakeValue{t: i32}, &fakeValue{t: i64}})
	require.NoError(t, err)
	require.Equal(t, "+", b.binaryOp)
	require.Equal(t, i64, v.Type())
}

func TestIntegralTableCompoundAssignStoresResult(t *testing.T) {
	reg := NewRegistry()
	i32 := reg.Lookup("i32")
	tbl := TableFor(SignedInt)
	b := &fakeBuilder{}
	addr := &fakeValue{t: i32}
	_, err := tbl.Binary(&ast.Empty{}, b, "+=", []Value{addr, &fakeValue{t: i32}})
	require.NoError(t, err)
	require.Equal(t, "+", b.binaryOp)
	require.Same(t, addr, b.storedAddr)
}

func TestIntegralTableUnaryPlusCastsToDefaultIntType(t *testing.T) {
	reg := NewRegistry()
	i64 := reg.Lookup("i64")
	tbl := TableFor(SignedInt)
	b := &fakeBuilder{}
	v, err := tbl.Unary(&ast.Empty{}, b, "+", []Value{&fakeValue{t: i64}})
	require.NoError(t, err)
	require.Equal(t, "i32", b.castTo.Name)
	require.Equal(t, "i32", v.Type().Name)
}

func TestIntegralTableUnaryMinusKeepsOperandType(t *testing.T) {
	reg := NewRegistry()
	i64 := reg.Lookup("i64")
	tbl := TableFor(SignedInt)
	b := &fakeBuilder{}
	v, err := tbl.Unary(&ast.Empty{}, b, "-", []Value{&fakeValue{t: i64}})
	require.NoError(t, err)
	require.Equal(t, i64, v.Type())
}

func TestIntegralTableRejectsUnsupportedOperator(t *testing.T) {
	reg := NewRegistry()
	i32 := reg.Lookup("i32")
	tbl := TableFor(SignedInt)
	b := &fakeBuilder{}
	_, err := tbl.Binary(&ast.Empty{}, b, "&&", []Value{&fakeValue{t: i32}, &fakeValue{t: i32}})
	require.Error(t, err)
}

func TestStringTableOnlySupportsAssignment(t *testing.T) {
	tbl := TableFor(String)
	require.NotNil(t, tbl.Assignment)
	require.Nil(t, tbl.Binary)
	require.Nil(t, tbl.Unary)
	require.Nil(t, tbl.Call)
}

func TestSimpleAssignCastsThenStores(t *testing.T) {
	reg := NewRegistry()
	i32, i64 := reg.Lookup("i32"), reg.Lookup("i64")
	tbl := TableFor(SignedInt)
	b := &fakeBuilder{}
	addr := &fakeValue{t: i64}
	val := &fakeValue{t: i32}
	_, err := tbl.Assignment(&ast.Empty{}, b, "=", []Value{addr, val})
	require.NoError(t, err)
	require.Equal(t, i64, b.castTo)
	require.Same(t, addr, b.storedAddr)
}

func TestFunctionTableCallValidatesArgCount(t *testing.T) {
	reg := NewRegistry()
	i32 := reg.Lookup("i32")
	ft := reg.FunctionType(i32, []*Type{i32, i32})
	tbl := TableFor(Function)
	b := &fakeBuilder{}
	callee := &fakeValue{t: ft}
	_, err := tbl.Call(&ast.Empty{}, b, "call", []Value{callee, &fakeValue{t: i32}})
	require.Error(t, err)
}

func TestFunctionTableCallSucceedsWithMatchingArgs(t *testing.T) {
	reg := NewRegistry()
	i32 := reg.Lookup("i32")
	ft := reg.FunctionType(i32, []*Type{i32, i32})
	tbl := TableFor(Function)
	b := &fakeBuilder{}
	callee := &fakeValue{t: ft}
	v, err := tbl.Call(&ast.Empty{}, b, "call", []Value{callee, &fakeValue{t: i32}, &fakeValue{t: i32}})
	require.NoError(t, err)
	require.Equal(t, i32, v.Type())
}

func TestTableForUnknownKindReturnsAllNilTable(t *testing.T) {
	tbl := TableFor(Kind(-1))
	require.Nil(t, tbl.Assignment)
	require.Nil(t, tbl.Unary)
	require.Nil(t, tbl.Binary)
	require.Nil(t, tbl.Call)
}
