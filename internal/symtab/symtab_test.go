package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrn-lang/varunac/internal/types"
)

func boolPtr(v bool) *bool { return &v }

func TestNewTableStartsWithOneFrame(t *testing.T) {
	tab := New()
	require.Equal(t, 1, tab.Depth())
}

func TestPushAndPopAdjustDepth(t *testing.T) {
	tab := New()
	tab.Push()
	tab.Push()
	require.Equal(t, 3, tab.Depth())
	tab.Pop()
	require.Equal(t, 2, tab.Depth())
}

func TestPopOnEmptyTablePanics(t *testing.T) {
	tab := &Table{}
	require.Panics(t, func() { tab.Pop() })
}

func TestDefineRejectsRedefinitionInSameFrame(t *testing.T) {
	tab := New()
	require.NoError(t, tab.Define("x", &Symbol{Name: "x"}))
	require.Error(t, tab.Define("x", &Symbol{Name: "x"}))
}

func TestDefineAllowsShadowingInNestedFrame(t *testing.T) {
	tab := New()
	require.NoError(t, tab.Define("x", &Symbol{Name: "x", Type: &types.Type{Name: "outer"}}))
	tab.Push()
	require.NoError(t, tab.Define("x", &Symbol{Name: "x", Type: &types.Type{Name: "inner"}}))

	found := tab.Find("x", nil)
	require.Equal(t, "inner", found.Type.Name)

	tab.Pop()
	found = tab.Find("x", nil)
	require.Equal(t, "outer", found.Type.Name)
}

func TestFindReturnsNilForUnknownName(t *testing.T) {
	tab := New()
	require.Nil(t, tab.Find("nope", nil))
}

func TestFindFiltersByIsFunction(t *testing.T) {
	tab := New()
	require.NoError(t, tab.Define("f", &Symbol{Name: "f", IsFunction: true}))
	require.NoError(t, tab.Define("v", &Symbol{Name: "v", IsFunction: false}))

	require.NotNil(t, tab.Find("f", boolPtr(true)))
	require.Nil(t, tab.Find("f", boolPtr(false)))
	require.NotNil(t, tab.Find("v", boolPtr(false)))
	require.Nil(t, tab.Find("v", boolPtr(true)))
}

func TestDefineGlobalInsertsIntoBottomFrameRegardlessOfDepth(t *testing.T) {
	tab := New()
	tab.Push()
	tab.Push()
	require.NoError(t, tab.DefineGlobal("g", &Symbol{Name: "g"}))

	// Pop back to the bottom frame and confirm it's visible there.
	tab.Pop()
	tab.Pop()
	require.NotNil(t, tab.Find("g", nil))
}

func TestDefineGlobalRejectsDuplicateInBottomFrame(t *testing.T) {
	tab := New()
	require.NoError(t, tab.DefineGlobal("g", &Symbol{Name: "g"}))
	require.Error(t, tab.DefineGlobal("g", &Symbol{Name: "g"}))
}

func TestExportsPreservesFrameStructureAndOrder(t *testing.T) {
	tab := New()
	require.NoError(t, tab.Define("a", &Symbol{Name: "a", IsExport: true}))
	require.NoError(t, tab.Define("b", &Symbol{Name: "b", IsExport: false}))
	require.NoError(t, tab.Define("c", &Symbol{Name: "c", IsExport: true}))
	tab.Push()
	require.NoError(t, tab.Define("d", &Symbol{Name: "d", IsExport: true}))

	exports := tab.Exports()
	require.Len(t, exports, 2)
	require.Len(t, exports[0], 2)
	require.Equal(t, "a", exports[0][0].Name)
	require.Equal(t, "c", exports[0][1].Name)
	require.Len(t, exports[1], 1)
	require.Equal(t, "d", exports[1][0].Name)
}

func TestExportsEmptyFrameYieldsNilSlice(t *testing.T) {
	tab := New()
	require.NoError(t, tab.Define("a", &Symbol{Name: "a", IsExport: false}))
	exports := tab.Exports()
	require.Empty(t, exports[0])
}
