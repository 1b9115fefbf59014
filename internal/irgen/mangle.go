package irgen

import (
	"fmt"
	"strings"

	"github.com/vrn-lang/varunac/internal/types"
)

// Mangle implements spec.md §4.4's name-mangling requirement: "injective
// over (name, parameter-type-list)". The scheme itself is opaque to the
// spec; this one is grounded on the Itanium-style length-prefixed
// component encoding the teacher's linker symbol names approximate only
// informally (yld's WOFSymbol names are unmangled), generalized here into
// an explicit, collision-free encoding since spec.md requires injectivity
// as a hard contract rather than linker convention.
func Mangle(name string, paramTypes []*types.Type) string {
	var b strings.Builder
	b.WriteString("_VN")
	writeComponent(&b, name)
	for _, pt := range paramTypes {
		writeComponent(&b, pt.CanonicalName())
	}
	return b.String()
}

func writeComponent(b *strings.Builder, s string) {
	fmt.Fprintf(b, "%d%s", len(s), s)
}
