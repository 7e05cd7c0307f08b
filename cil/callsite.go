package cil

import "fmt"

// TypeRef names a type in the assembly's type table, with its generic
// arguments if any. It is how a CallSite or FieldDescriptor refers to a
// type without holding a pointer to its TypeDef (spec.md §9, "no cyclic
// reference is needed").
type TypeRef struct {
	Name string
	Args []Type
}

func (r TypeRef) String() string {
	return Named(r.Name, r.Args...).String()
}

// Equal reports whether r and other name the same type with the same
// generic arguments.
func (r TypeRef) Equal(other TypeRef) bool {
	if r.Name != other.Name || len(r.Args) != len(other.Args) {
		return false
	}
	for i := range r.Args {
		if !r.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// CallSite identifies a callee: an optional declaring type (nil for a
// free/static function with no declaring class), a method name, a
// signature, and whether the call is static. Equality is structural.
type CallSite struct {
	Declaring *TypeRef
	Name      string
	Sig       FnSig
	Static    bool
}

// IsUnresolvedExternal reports whether the call site is a static call to a
// free function with no declaring type, the shape autopatch (spec.md §4.7)
// treats as possibly-external.
func (c CallSite) IsUnresolvedExternal() bool {
	return c.Static && c.Declaring == nil
}

// Key returns a string uniquely identifying the call site's (declaring
// type, name, signature, staticness) tuple, suitable as a map key for the
// dedup performed by autopatch.
func (c CallSite) Key() string {
	decl := ""
	if c.Declaring != nil {
		decl = c.Declaring.String()
	}
	return fmt.Sprintf("%s|%s|%s|%v", decl, c.Name, c.Sig.String(), c.Static)
}

// Equal reports whether c and other identify the same callee.
func (c CallSite) Equal(other CallSite) bool {
	return c.Key() == other.Key()
}

// FieldDescriptor names an instance field: the declaring type, the field's
// type, and its name.
type FieldDescriptor struct {
	Parent    TypeRef
	FieldType Type
	FieldName string
}

// Equal reports whether fd and other name the same field on the same
// declaring type.
func (fd FieldDescriptor) Equal(other FieldDescriptor) bool {
	return fd.Parent.Equal(other.Parent) && fd.FieldType.Equal(other.FieldType) && fd.FieldName == other.FieldName
}

// StaticFieldDescriptor names a static field owned by the assembly itself
// (no declaring instance), by its type and name.
type StaticFieldDescriptor struct {
	FieldType Type
	FieldName string
}

// Equal reports whether s and other name the same static field.
func (s StaticFieldDescriptor) Equal(other StaticFieldDescriptor) bool {
	return s.FieldType.Equal(other.FieldType) && s.FieldName == other.FieldName
}
