package varunac

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrn-lang/varunac/internal/config"
)

func writeTempSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCompileSimpleProgramProducesIR(t *testing.T) {
	dir := t.TempDir()
	path := writeTempSource(t, dir, "main.vrn", "def main() -> i32 { return 0; }")

	opts := config.Default()
	opts.InputFilenames = []string{path}

	logger, err := NewLogger(config.LogOff)
	require.NoError(t, err)

	results, err := Compile(opts, nil, logger)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.False(t, res.HasErrors)
	require.True(t, strings.Contains(res.IRText, "func weak_odr i32 main()"))
}

func TestCompileWritesModuleInterfaceWhenRequested(t *testing.T) {
	dir := t.TempDir()
	path := writeTempSource(t, dir, "math.vrn", "export def add(a: i32, b: i32) -> i32 { return a + b; }")

	opts := config.Default()
	opts.InputFilenames = []string{path}
	opts.GenerateModuleFile = true

	logger, err := NewLogger(config.LogOff)
	require.NoError(t, err)

	results, err := Compile(opts, nil, logger)
	require.NoError(t, err)
	require.False(t, results[0].HasErrors)
	require.Len(t, results[0].Exports.Functions, 1)

	vamodPath := filepath.Join(dir, "math.vamod")
	_, statErr := os.Stat(vamodPath)
	require.NoError(t, statErr)
}

func TestCompileReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTempSource(t, dir, "broken.vrn", "def f( { return ; }")

	opts := config.Default()
	opts.InputFilenames = []string{path}

	logger, err := NewLogger(config.LogOff)
	require.NoError(t, err)

	results, err := Compile(opts, nil, logger)
	require.NoError(t, err)
	require.True(t, results[0].HasErrors)
}

func TestCompileRejectsInvalidConfig(t *testing.T) {
	opts := config.Default()
	opts.InputFilenames = nil

	logger, err := NewLogger(config.LogOff)
	require.NoError(t, err)

	_, err = Compile(opts, nil, logger)
	require.Error(t, err)
}

func TestCompileHonorsConditionalCompilationDefines(t *testing.T) {
	dir := t.TempDir()
	src := "#if FEATURE\ndef main() -> i32 { return 1; }\n#else\ndef main() -> i32 { return 0; }\n#endif"
	path := writeTempSource(t, dir, "cond.vrn", src)

	opts := config.Default()
	opts.InputFilenames = []string{path}

	logger, err := NewLogger(config.LogOff)
	require.NoError(t, err)

	results, err := Compile(opts, map[string]bool{"FEATURE": true}, logger)
	require.NoError(t, err)
	require.False(t, results[0].HasErrors)
	require.Contains(t, results[0].IRText, "ret 1")
}
