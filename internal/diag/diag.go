// Package diag is the structured-diagnostic replacement for the teacher's
// per-pass ad hoc error accumulation (every pass in gmofishsauce/wut4/lang
// has its own `error(format, args...)`/`errorAt(...)` pair appending to a
// local []string). Every stage of this compiler collects into one Bag
// instead, so a diagnostic always carries a severity and a source span.
package diag

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/vrn-lang/varunac/internal/source"
)

// Severity is the diagnostic level.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported message with an optional source span.
type Diagnostic struct {
	Severity Severity
	Message  string
	Loc      source.Loc
	HasLoc   bool
}

// Bag accumulates diagnostics across a stage's run. A stage records a
// sticky "has errors" flag but keeps going where recovery is safe
// (spec.md §7's propagation policy), so Bag never stops collecting on its
// own; callers decide when to halt.
type Bag struct {
	items    []Diagnostic
	hasError bool
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag { return &Bag{} }

func (b *Bag) add(sev Severity, loc source.Loc, hasLoc bool, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Loc:      loc,
		HasLoc:   hasLoc,
	})
	if sev == Error {
		b.hasError = true
	}
}

// Errorf records an error diagnostic at loc.
func (b *Bag) Errorf(loc source.Loc, format string, args ...interface{}) {
	b.add(Error, loc, true, format, args...)
}

// Warnf records a warning diagnostic at loc.
func (b *Bag) Warnf(loc source.Loc, format string, args ...interface{}) {
	b.add(Warning, loc, true, format, args...)
}

// Infof records an info diagnostic at loc (e.g. pointing back at a
// declaration that conflicts with a later error, spec.md §8 scenario 3).
func (b *Bag) Infof(loc source.Loc, format string, args ...interface{}) {
	b.add(Info, loc, true, format, args...)
}

// ErrorfNoLoc records an error with no source span (e.g. I/O failures).
func (b *Bag) ErrorfNoLoc(format string, args ...interface{}) {
	b.add(Error, source.Loc{}, false, format, args...)
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (b *Bag) HasErrors() bool { return b.hasError }

// Items returns the accumulated diagnostics in report order.
func (b *Bag) Items() []Diagnostic { return b.items }

// Append merges another bag's diagnostics into b, preserving order.
func (b *Bag) Append(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.hasError = b.hasError || other.hasError
}

// RangeDiagnostic formats an out-of-range literal diagnostic using
// human-readable thousands separators, per SPEC_FULL.md's domain-stack
// wiring of go-humanize.
func RangeDiagnostic(value int64, max int64, width int) string {
	return fmt.Sprintf("value %s does not fit in a %d-bit integer (max %s)",
		humanize.Comma(value), width, humanize.Comma(max))
}

// Flush renders every diagnostic through logger in
// "FILE:LINE:COL: {error|warning|info}: message" form (spec.md §6),
// appending a caret-underlined source excerpt when the diagnostic carries
// a location.
func (b *Bag) Flush(logger *zap.Logger, cache *source.Cache) {
	for _, d := range b.items {
		prefix := ""
		if d.HasLoc {
			f := cache.File(d.Loc.File)
			prefix = fmt.Sprintf("%s:%s: ", f.Name, d.Loc)
		}
		line := fmt.Sprintf("%s%s: %s", prefix, d.Severity, d.Message)
		switch d.Severity {
		case Error:
			logger.Error(line)
		case Warning:
			logger.Warn(line)
		default:
			logger.Info(line)
		}
		if d.HasLoc {
			logger.Info(d.Loc.Caret(cache))
		}
	}
}
