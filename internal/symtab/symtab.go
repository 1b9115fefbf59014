// Package symtab implements the lexically scoped symbol table of spec.md
// §4.3: a stack of frames pushed on function entry, nested block, and
// control-flow construct entry. Grounded on
// gmofishsauce/wut4/lang/yparse/symtab.go's Symbol/Storage/SymKind model,
// generalized from that teacher's flat "global scope + one function
// scope" table to spec.md's full frame stack (arbitrary nesting depth,
// one frame per block).
package symtab

import (
	"fmt"

	"github.com/vrn-lang/varunac/internal/source"
	"github.com/vrn-lang/varunac/internal/types"
)

// Symbol is a named binding (spec.md §3).
type Symbol struct {
	Name       string
	Type       *types.Type
	ValueHandle interface{} // back-end IR value, set by internal/irgen
	IsMutable  bool
	IsExport   bool
	IsFunction bool
	Loc        source.Loc

	PrototypeRef interface{} // *ast.FuncPrototype, kept untyped to avoid an ast import cycle concern
	Mangled      string
}

type frame struct {
	names map[string]*Symbol
	order []string
}

func newFrame() *frame {
	return &frame{names: make(map[string]*Symbol)}
}

// Table is the stack of frames described in spec.md §4.3.
type Table struct {
	frames []*frame
}

// New returns a Table with its single global frame already pushed.
func New() *Table {
	t := &Table{}
	t.Push()
	return t
}

// Push opens a new, empty top frame (function entry, nested block, or
// control-flow construct).
func (t *Table) Push() {
	t.frames = append(t.frames, newFrame())
}

// Pop discards the top frame.
func (t *Table) Pop() {
	if len(t.frames) == 0 {
		panic("symtab: pop on empty table")
	}
	t.frames = t.frames[:len(t.frames)-1]
}

// Depth returns the number of frames currently pushed.
func (t *Table) Depth() int { return len(t.frames) }

// Define inserts sym into the top frame. It fails if the name already
// exists there (spec.md §4.3: "Name collisions within one frame are
// errors").
func (t *Table) Define(name string, sym *Symbol) error {
	top := t.frames[len(t.frames)-1]
	if _, exists := top.names[name]; exists {
		return fmt.Errorf("redefinition of %q in the same scope", name)
	}
	top.names[name] = sym
	top.order = append(top.order, name)
	return nil
}

// Find walks frames top-down and returns the first symbol named name. If
// isFunction is non-nil, only a symbol whose IsFunction matches *isFunction is
// returned ("find(name, kind?)" in spec.md §4.3).
func (t *Table) Find(name string, isFunction *bool) *Symbol {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if sym, ok := t.frames[i].names[name]; ok {
			if isFunction == nil || sym.IsFunction == *isFunction {
				return sym
			}
		}
	}
	return nil
}

// DefineGlobal inserts sym directly into the bottom (global) frame,
// regardless of current depth. Used by internal/irgen when registering
// imported module-interface symbols into "the current top frame" at
// global scope (spec.md §4.4's Import handling runs before any function
// scope is pushed, so top frame IS the global frame there).
func (t *Table) DefineGlobal(name string, sym *Symbol) error {
	bottom := t.frames[0]
	if _, exists := bottom.names[name]; exists {
		return fmt.Errorf("redefinition of %q", name)
	}
	bottom.names[name] = sym
	bottom.order = append(bottom.order, name)
	return nil
}

// Exports copies out every symbol with IsExport = true from every frame,
// preserving frame structure as a slice-of-slices in frame order
// (spec.md §4.3: "exports() copies out every symbol with is-export =
// true preserving frame structure").
func (t *Table) Exports() [][]*Symbol {
	out := make([][]*Symbol, len(t.frames))
	for i, f := range t.frames {
		var frameExports []*Symbol
		for _, name := range f.order {
			sym := f.names[name]
			if sym.IsExport {
				frameExports = append(frameExports, sym)
			}
		}
		out[i] = frameExports
	}
	return out
}
