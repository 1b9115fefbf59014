package types

// CastMode selects which row of spec.md §4.3's cast lattice applies.
type CastMode int

const (
	Implicit CastMode = iota // assignment / argument passing / return
	Explicit                 // cast-expression / `as` operator
	BitReinterpret           // same storage width required
)

// CastResult reports whether a cast is allowed and, if it is not, the
// reason.
type CastResult struct {
	Allowed bool
	Reason  string
}

func ok() CastResult  { return CastResult{Allowed: true} }
func no(why string) CastResult { return CastResult{Allowed: false, Reason: why} }

// CanCast reports whether a value of type from may be cast to type to
// under mode, per spec.md §4.3's cast-lattice table.
func CanCast(from, to *Type, mode CastMode) CastResult {
	if from == nil || to == nil {
		return no("unknown type")
	}
	if from.Kind == to.Kind && sameIdentity(from, to) {
		return ok()
	}

	switch mode {
	case BitReinterpret:
		if from.SizeInBits != to.SizeInBits {
			return no("bit-reinterpret requires equal storage width")
		}
		if from.Kind == Void || to.Kind == Void || from.Kind == String || to.Kind == String ||
			from.Kind == CString || to.Kind == CString {
			return no("void/string/cstring may not be bit-reinterpreted")
		}
		return ok()
	case Explicit:
		return explicitCast(from, to)
	default:
		return implicitCast(from, to)
	}
}

func sameIdentity(from, to *Type) bool {
	switch from.Kind {
	case Function:
		return from.CanonicalName() == to.CanonicalName()
	default:
		return from.Name == to.Name
	}
}

// implicitCast allows only `=` rows (identity) or widenings within the
// same family: integer to a wider integer of the same signedness, float
// to a wider float. Everything else must go through an explicit cast.
func implicitCast(from, to *Type) CastResult {
	if from.Kind == SignedInt && to.Kind == SignedInt && to.Width >= from.Width {
		return ok()
	}
	if from.Kind == Float && to.Kind == Float && to.Width >= from.Width {
		return ok()
	}
	if from.Kind == Bool && to.Kind == SignedInt {
		return ok() // zero-extend
	}
	if from.Kind == Bool && to.Kind == Float {
		return ok() // zero-extend-then-float
	}
	if from.Kind == Char && to.Kind == SignedInt && to.Width >= 32 {
		return ok() // zero-extend
	}
	if from.Kind == BChar && to.Kind == SignedInt && to.Width >= 8 {
		return ok() // "= (as i8)"
	}
	if from.Kind == Byte && to.Kind == SignedInt {
		return ok() // zero-extend
	}
	return no(from.CanonicalName() + " cannot be implicitly cast to " + to.CanonicalName())
}

// explicitCast implements the table of spec.md §4.3 for `cast`/`as`.
// Transitions marked "bit only" go through the BitReinterpret rule, so
// they succeed only between equal storage widths and never to or from
// string or cstring.
func explicitCast(from, to *Type) CastResult {
	switch from.Kind {
	case Void:
		return no("void has no explicit casts")
	case SignedInt:
		switch to.Kind {
		case SignedInt:
			return ok() // widen/truncate
		case Float:
			return ok() // int -> float
		case Bool:
			return ok() // truncate-to-1
		case Char, BChar, Byte, String, CString, Function:
			return CanCast(from, to, BitReinterpret)
		}
	case Float:
		switch to.Kind {
		case SignedInt:
			return ok() // float -> int
		case Float:
			return ok() // widen/truncate
		case Char, BChar, Byte, Function:
			return CanCast(from, to, BitReinterpret)
		}
	case Bool:
		switch to.Kind {
		case SignedInt:
			return ok()
		case Float:
			return ok()
		case Char, BChar, Byte, Function:
			return CanCast(from, to, BitReinterpret)
		}
	case Char:
		switch to.Kind {
		case SignedInt:
			return ok() // truncate
		case Bool:
			return ok() // zero-extend
		case BChar, Byte, Function:
			return CanCast(from, to, BitReinterpret)
		}
	case BChar:
		switch to.Kind {
		case SignedInt:
			return ok() // = (as i8)
		case Bool:
			return ok() // zero-extend
		case Char, Byte, Function:
			return CanCast(from, to, BitReinterpret)
		}
	case Byte:
		switch to.Kind {
		case SignedInt:
			return ok() // zero-extend / truncate
		case Bool:
			return ok()
		case Char, BChar, Function:
			return CanCast(from, to, BitReinterpret)
		}
	case String:
		if to.Kind == String {
			return ok()
		}
	case CString:
		if to.Kind == CString {
			return ok()
		}
	case Function:
		if to.Kind == Function {
			return ok()
		}
		return CanCast(from, to, BitReinterpret)
	}
	return no(from.CanonicalName() + " has no explicit cast to " + to.CanonicalName())
}
