package modfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	m := &Module{
		Functions: []FunctionEntry{
			{Name: "add", ReturnType: "i32", ParamTypes: []string{"i32", "i32"}, Mangle: true, MangledName: "_VN3addi32i32"},
			{Name: "main", ReturnType: "i32", Mangle: false, MangledName: "main"},
		},
		Globals: []GlobalEntry{
			{Name: "counter", TypeName: "i64", Mutable: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, len(m.Functions)+len(m.Globals)))
	for _, fn := range m.Functions {
		require.NoError(t, writeFunctionEntry(&buf, fn))
	}
	for _, g := range m.Globals {
		require.NoError(t, writeGlobalEntry(&buf, g))
	}

	got, err := ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestReadFromRejectsBadMagic(t *testing.T) {
	_, err := ReadFrom(bytes.NewReader([]byte{0, 0, 0, 0}))
	require.Error(t, err)
}

func TestReadFromRejectsTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, 1))
	_, err := ReadFrom(&buf)
	require.Error(t, err)
}
