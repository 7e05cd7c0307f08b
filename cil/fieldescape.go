package cil

// reservedFieldNames collides with identifiers the target assembler or
// runtime treats specially; a field using one of these must be escaped.
// Grounded on original_source/src/type/type_def.rs::escape_field_name.
var reservedFieldNames = map[string]bool{
	"value": true, "flags": true, "alignment": true, "init": true,
	"string": true, "nint": true, "nuint": true, "out": true, "rem": true,
	"add": true, "div": true, "error": true, "opt": true, "private": true,
	"public": true, "object": true, "class": true, "0": true,
}

// EscapeFieldName prefixes name with "m_" if its first character is neither
// a letter nor an underscore, or if name collides with a reserved target
// identifier. The predicate is stable across translation units (spec.md
// §4.3), and idempotent: escaping an already-escaped name is a no-op since
// "m_foo" starts with a letter and is not itself reserved.
func EscapeFieldName(name string) string {
	if name == "" {
		return "fld"
	}
	first := rune(name[0])
	needsEscape := !isIdentStart(first) || reservedFieldNames[name]
	if !needsEscape {
		return name
	}
	return "m_" + name
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
