package cil

import "strings"

// mangle is a total injection from Type into the set of valid identifier
// suffixes (spec.md §4.3 invariant). Two different translation units that
// mangle the "same" Type must produce the same string, since the array,
// slice and tuple factories rely on it to name aggregates deterministically.
func mangle(t Type) string {
	switch t.kind {
	case KVoid:
		return "v"
	case KI8:
		return "i8"
	case KI16:
		return "i16"
	case KI32:
		return "i32"
	case KI64:
		return "i64"
	case KI128:
		return "i128"
	case KU8:
		return "u8"
	case KU16:
		return "u16"
	case KU32:
		return "u32"
	case KU64:
		return "u64"
	case KU128:
		return "u128"
	case KF32:
		return "f32"
	case KF64:
		return "f64"
	case KBool:
		return "b"
	case KStrSlice:
		return "str"
	case KPtr:
		return "p" + mangle(*t.elem)
	case KRef:
		if t.mutable {
			return "rm" + mangle(*t.elem)
		}
		return "rs" + mangle(*t.elem)
	case KArray:
		return "A" + itoa(int(t.count)) + "_" + mangle(*t.elem)
	case KSlice:
		return "S" + mangle(*t.elem)
	case KTuple:
		s := "T" + itoa(len(t.elems))
		for _, e := range t.elems {
			s += mangle(e)
		}
		return s
	case KNamed:
		s := "N" + itoa(len(t.name)) + sanitizeIdent(t.name)
		for _, a := range t.args {
			s += mangle(a)
		}
		return s
	case KGeneric:
		return "G" + itoa(int(t.index))
	default:
		return "x"
	}
}

// sanitizeIdent replaces any rune that is not a letter, digit or underscore
// with an underscore, so mangled names are always valid identifier
// fragments even when the source name contains generic punctuation
// (e.g. "Foo::Bar<T>").
func sanitizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
