// Package config defines the compiler's configuration surface (spec.md
// §6). Besides the standard library it imports only go.uber.org/zap/zapcore
// for the log-level mapping — see DESIGN.md for why no validation library
// from the retrieved pack was wired in here.
package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// OptLevel is one of spec.md §6's optimization levels.
type OptLevel string

const (
	O0 OptLevel = "O0"
	O1 OptLevel = "O1"
	O2 OptLevel = "O2"
	O3 OptLevel = "O3"
	Os OptLevel = "Os"
	Oz OptLevel = "Oz"
)

var validOptLevels = map[OptLevel]bool{O0: true, O1: true, O2: true, O3: true, Os: true, Oz: true}

// EmitKind is one of spec.md §6's emit targets.
type EmitKind string

const (
	EmitNone    EmitKind = "none"
	EmitAST     EmitKind = "ast"
	EmitIR      EmitKind = "ir"
	EmitBitcode EmitKind = "bitcode"
	EmitAsm     EmitKind = "asm"
	EmitObject EmitKind = "object"
)

var validEmitKinds = map[EmitKind]bool{
	EmitNone: true, EmitAST: true, EmitIR: true, EmitBitcode: true, EmitAsm: true, EmitObject: true,
}

// LogLevel is one of spec.md §6's logging levels, mapped onto
// go.uber.org/zap's level set by LogLevel.ZapLevel.
type LogLevel string

const (
	LogTrace    LogLevel = "trace"
	LogDebug    LogLevel = "debug"
	LogInfo     LogLevel = "info"
	LogWarn     LogLevel = "warn"
	LogErr      LogLevel = "err"
	LogCritical LogLevel = "critical"
	LogOff      LogLevel = "off"
)

var validLogLevels = map[LogLevel]bool{
	LogTrace: true, LogDebug: true, LogInfo: true, LogWarn: true,
	LogErr: true, LogCritical: true, LogOff: true,
}

// IntSize selects the width `i32`-less integer literals and `int`-typed
// intermediate results default to. 0 means pointer width.
type IntSize int

const (
	IntSizePointer IntSize = 0
	IntSize32      IntSize = 32
	IntSize64      IntSize = 64
)

// Options is the full configuration surface of spec.md §6.
type Options struct {
	OptimizationLevel   OptLevel
	Emit                EmitKind
	LoggingLevel        LogLevel
	EmitDebug           bool
	StripDebug          bool
	StripSourceFilename bool
	GenerateModuleFile  bool
	InputFilenames      []string
	OutputFilename      string // "-" means stdout
	Jobs                int
	IntSize             IntSize
}

// Default returns the configuration a bare invocation would use.
func Default() Options {
	return Options{
		OptimizationLevel: O0,
		Emit:              EmitObject,
		LoggingLevel:      LogInfo,
		OutputFilename:    "-",
		Jobs:              1,
		IntSize:           IntSizePointer,
	}
}

// ZapLevel maps spec.md §6's logging-level onto a zapcore.Level for the
// diagnostic sink's go.uber.org/zap logger. "critical" has no direct zap
// equivalent and maps to zapcore.DPanicLevel; "off" is handled by callers
// constructing a no-op logger rather than by a level value.
func (l LogLevel) ZapLevel() zapcore.Level {
	switch l {
	case LogTrace, LogDebug:
		return zapcore.DebugLevel
	case LogInfo:
		return zapcore.InfoLevel
	case LogWarn:
		return zapcore.WarnLevel
	case LogErr:
		return zapcore.ErrorLevel
	case LogCritical:
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// Validate reports the first malformed field, per spec.md §6's
// configuration surface.
func (o Options) Validate() error {
	if !validOptLevels[o.OptimizationLevel] {
		return fmt.Errorf("config: invalid optimization-level %q", o.OptimizationLevel)
	}
	if !validEmitKinds[o.Emit] {
		return fmt.Errorf("config: invalid emit %q", o.Emit)
	}
	if !validLogLevels[o.LoggingLevel] {
		return fmt.Errorf("config: invalid logging-level %q", o.LoggingLevel)
	}
	switch o.IntSize {
	case IntSizePointer, IntSize32, IntSize64:
	default:
		return fmt.Errorf("config: invalid int-size %d", o.IntSize)
	}
	if o.Jobs < 0 {
		return fmt.Errorf("config: jobs must be >= 0, got %d", o.Jobs)
	}
	if len(o.InputFilenames) == 0 {
		return fmt.Errorf("config: at least one input filename is required")
	}
	if o.OutputFilename == "" {
		return fmt.Errorf("config: output-filename must not be empty")
	}
	return nil
}
