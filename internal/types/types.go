// Package types implements the type registry and per-kind operation
// tables of spec.md §4.3, grounded on the Type/BaseType representation of
// gmofishsauce/wut4/lang/yparse/types.go and the cast-adaptation logic of
// ysem/analyzer.go (valueFitsInType, adaptLiteralToType), generalized
// from that teacher's six machine-word base types to the primitive set
// spec.md §3 names.
package types

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind discriminates primitive, function, alias, and (SPEC_FULL.md §4)
// struct types.
type Kind int

const (
	Void Kind = iota
	SignedInt
	Float
	Bool
	Char    // unicode, 32-bit
	BChar   // byte-character, 8-bit
	Byte
	String
	CString
	Function
	Alias
	Struct
)

// DebugInfoHandle is an opaque reference into a debug-info builder,
// populated by internal/irgen when debug info is enabled.
type DebugInfoHandle int

// Field is one member of a Struct type.
type Field struct {
	Name   string
	Type   *Type
	Offset int // bits, computed at registration time
}

// Type is a process-wide, canonically-named type entry (spec.md §3).
type Type struct {
	Kind        Kind
	Name        string
	SizeInBits  int
	DebugInfo   DebugInfoHandle

	// SignedInt / Float
	Width int

	// Function
	Return *Type
	Params []*Type

	// Alias
	Underlying *Type

	// Struct
	Fields []Field
}

// CanonicalName returns the type's process-wide key. Function types
// serialize as "ret(param1,param2,...)" per spec.md §3.
func (t *Type) CanonicalName() string {
	if t.Kind == Function {
		return t.canonicalFuncName()
	}
	return t.Name
}

func (t *Type) canonicalFuncName() string {
	s := t.Return.CanonicalName() + "("
	for i, p := range t.Params {
		if i > 0 {
			s += ","
		}
		s += p.CanonicalName()
	}
	return s + ")"
}

func (t *Type) String() string { return t.CanonicalName() }

// Registry is the process-wide (per-compile, spec.md §5) list of owned
// type entries with lookup by canonical name. It uses an ordered map
// (SPEC_FULL.md §3 domain-stack wiring) so Names() lists types in
// insertion order rather than Go's randomized map order, unlike the
// teacher's plain `map[string]*Type` equivalents.
type Registry struct {
	byName *orderedmap.OrderedMap[string, *Type]
}

// NewRegistry returns a Registry pre-populated with the primitive types
// spec.md §4.3 requires at construction.
func NewRegistry() *Registry {
	r := &Registry{byName: orderedmap.New[string, *Type]()}
	for _, t := range []*Type{
		{Kind: Void, Name: "void", SizeInBits: 0},
		{Kind: SignedInt, Name: "i8", SizeInBits: 8, Width: 8},
		{Kind: SignedInt, Name: "i16", SizeInBits: 16, Width: 16},
		{Kind: SignedInt, Name: "i32", SizeInBits: 32, Width: 32},
		{Kind: SignedInt, Name: "i64", SizeInBits: 64, Width: 64},
		{Kind: Float, Name: "f32", SizeInBits: 32, Width: 32},
		{Kind: Float, Name: "f64", SizeInBits: 64, Width: 64},
		{Kind: Bool, Name: "bool", SizeInBits: 8},
		{Kind: Char, Name: "char", SizeInBits: 32},
		{Kind: BChar, Name: "bchar", SizeInBits: 8},
		{Kind: Byte, Name: "byte", SizeInBits: 8},
		{Kind: String, Name: "string", SizeInBits: 128}, // fat pointer: len + ptr
		{Kind: CString, Name: "cstring", SizeInBits: 64},
	} {
		r.byName.Set(t.Name, t)
	}
	return r
}

// Lookup returns the registered type named name, or nil.
func (r *Registry) Lookup(name string) *Type {
	t, ok := r.byName.Get(name)
	if !ok {
		return nil
	}
	return t
}

// Insert registers t under its canonical name. Re-insertion under an
// existing name is an error (spec.md §4.3).
func (r *Registry) Insert(t *Type) error {
	name := t.CanonicalName()
	if _, exists := r.byName.Get(name); exists {
		return fmt.Errorf("type %q already registered", name)
	}
	r.byName.Set(name, t)
	return nil
}

// FunctionType returns the function type for (ret, params), inserting it
// on first use per spec.md §4.3 ("Function types are inserted on first
// use").
func (r *Registry) FunctionType(ret *Type, params []*Type) *Type {
	ft := &Type{Kind: Function, Return: ret, Params: params}
	name := ft.canonicalFuncName()
	if existing, ok := r.byName.Get(name); ok {
		return existing
	}
	ft.Name = name
	r.byName.Set(name, ft)
	return ft
}

// Names returns every registered type's canonical name, in insertion
// order.
func (r *Registry) Names() []string {
	out := make([]string, 0, r.byName.Len())
	for pair := r.byName.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
