// Package cil models the target stack-machine bytecode assembly: its type
// system, opcodes, methods, type definitions and the assembly container that
// holds them, plus the passes that build, link and patch an assembly
// (temporary-local allocation, peephole, linking, autopatch). Lowering
// from the source IR lives in the cil/lower subpackage.
package cil

import "fmt"

// Kind identifies which variant of Type a value represents.
type Kind uint8

const ( //nolint:revive
	KVoid Kind = iota
	KI8
	KI16
	KI32
	KI64
	KI128
	KU8
	KU16
	KU32
	KU64
	KU128
	KF32
	KF64
	KBool
	KPtr
	KRef
	KArray
	KSlice
	KTuple
	KStrSlice
	KNamed
	KGeneric
)

var kindNames = [...]string{
	KVoid:     "void",
	KI8:       "i8",
	KI16:      "i16",
	KI32:      "i32",
	KI64:      "i64",
	KI128:     "i128",
	KU8:       "u8",
	KU16:      "u16",
	KU32:      "u32",
	KU64:      "u64",
	KU128:     "u128",
	KF32:      "f32",
	KF64:      "f64",
	KBool:     "bool",
	KPtr:      "ptr",
	KRef:      "ref",
	KArray:    "array",
	KSlice:    "slice",
	KTuple:    "tuple",
	KStrSlice: "strslice",
	KNamed:    "named",
	KGeneric:  "generic",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("illegal kind (%d)", k)
}

// Type is a value descriptor: a sum over primitives, pointers, references,
// aggregates and named type handles. It is immutable after construction and
// cheap to copy by value.
type Type struct {
	kind    Kind
	elem    *Type  // Ptr, Ref, Array, Slice
	count   uint64 // Array
	mutable bool   // Ref
	elems   []Type // Tuple
	name    string // Named
	args    []Type // Named (generic arguments)
	index   uint32 // Generic
}

// Void, Bool and the fixed-width integer/float constructors are total and
// take no arguments; Ptr/Ref/Array/Slice/Tuple/Named/Generic build compound
// types out of simpler ones.
var (
	Void = Type{kind: KVoid}
	I8   = Type{kind: KI8}
	I16  = Type{kind: KI16}
	I32  = Type{kind: KI32}
	I64  = Type{kind: KI64}
	I128 = Type{kind: KI128}
	U8   = Type{kind: KU8}
	U16  = Type{kind: KU16}
	U32  = Type{kind: KU32}
	U64  = Type{kind: KU64}
	U128 = Type{kind: KU128}
	F32  = Type{kind: KF32}
	F64  = Type{kind: KF64}
	Bool = Type{kind: KBool}
	// ISize and USize share the KI64/KU64 kinds and are told apart from
	// I64/U64 only by their name, which SizeOf checks to size them by the
	// assembly's pointer width. Equal does not compare that name, so ISize
	// equals I64 and USize equals U64.
	ISize    = Type{kind: KI64, name: "isize"}
	USize    = Type{kind: KU64, name: "usize"}
	StrSlice = Type{kind: KStrSlice}
)

// Ptr returns a pointer-to-elem type.
func Ptr(elem Type) Type { return Type{kind: KPtr, elem: &elem} }

// Ref returns a reference-to-elem type. mutable distinguishes a shared
// reference from a mutable one; both erase to a single pointer form after
// lowering (spec.md §3), but the distinction is kept up to that point since
// the frontend's borrow-checked IR still needs it for its own diagnostics.
func Ref(elem Type, mutable bool) Type {
	return Type{kind: KRef, elem: &elem, mutable: mutable}
}

// Array returns a fixed-size array of count elements of type elem.
func Array(elem Type, count uint64) Type {
	return Type{kind: KArray, elem: &elem, count: count}
}

// Slice returns a two-word fat-pointer slice of elem.
func Slice(elem Type) Type { return Type{kind: KSlice, elem: &elem} }

// Tuple returns the tuple of the given element types.
func Tuple(elems ...Type) Type {
	cp := make([]Type, len(elems))
	copy(cp, elems)
	return Type{kind: KTuple, elems: cp}
}

// Named returns a handle into the assembly's type table for the aggregate
// called name, optionally instantiated with generic arguments.
func Named(name string, args ...Type) Type {
	var cp []Type
	if len(args) > 0 {
		cp = make([]Type, len(args))
		copy(cp, args)
	}
	return Type{kind: KNamed, name: name, args: cp}
}

// Generic returns the type of the generic parameter at the given index in
// its enclosing def/signature.
func Generic(index uint32) Type { return Type{kind: KGeneric, index: index} }

// Kind reports the variant of t.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the pointee/element type of Ptr, Ref, Array and Slice types.
// It panics if t is not one of those kinds; callers are expected to switch
// on Kind() first, as with any exhaustive-match design (see DESIGN.md).
func (t Type) Elem() Type { return *t.elem }

// IsMutableRef reports whether a KRef type is a mutable reference.
func (t Type) IsMutableRef() bool { return t.mutable }

// Count returns the element count of a KArray type.
func (t Type) Count() uint64 { return t.count }

// Elems returns the element types of a KTuple type.
func (t Type) Elems() []Type { return t.elems }

// Name returns the type name of a KNamed type.
func (t Type) Name() string { return t.name }

// Args returns the generic arguments of a KNamed type.
func (t Type) Args() []Type { return t.args }

// Index returns the parameter index of a KGeneric type.
func (t Type) Index() uint32 { return t.index }

// Equal reports whether t and other describe the same type. Equality is
// structural, as required for the type-definition factories (spec.md §4.3)
// to produce byte-identical defs for the "same" aggregate across
// independently lowered translation units.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KPtr, KRef, KArray, KSlice:
		if t.kind == KArray && t.count != other.count {
			return false
		}
		if t.kind == KRef && t.mutable != other.mutable {
			return false
		}
		return t.elem.Equal(*other.elem)
	case KTuple:
		if len(t.elems) != len(other.elems) {
			return false
		}
		for i := range t.elems {
			if !t.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	case KNamed:
		if t.name != other.name || len(t.args) != len(other.args) {
			return false
		}
		for i := range t.args {
			if !t.args[i].Equal(other.args[i]) {
				return false
			}
		}
		return true
	case KGeneric:
		return t.index == other.index
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.kind {
	case KPtr:
		return "*" + t.elem.String()
	case KRef:
		if t.mutable {
			return "&mut " + t.elem.String()
		}
		return "&" + t.elem.String()
	case KArray:
		return fmt.Sprintf("[%s;%d]", t.elem.String(), t.count)
	case KSlice:
		return "[]" + t.elem.String()
	case KTuple:
		s := "("
		for i, e := range t.elems {
			if i > 0 {
				s += ","
			}
			s += e.String()
		}
		return s + ")"
	case KNamed:
		s := t.name
		if len(t.args) > 0 {
			s += "<"
			for i, a := range t.args {
				if i > 0 {
					s += ","
				}
				s += a.String()
			}
			s += ">"
		}
		return s
	case KGeneric:
		return fmt.Sprintf("#%d", t.index)
	default:
		if t.name != "" {
			return t.name
		}
		return t.kind.String()
	}
}

// FnSig is an ordered sequence of input types plus a single output type. For
// instance (non-static) methods, the first input is the receiver.
type FnSig struct {
	Inputs []Type
	Output Type
}

// NewFnSig builds a signature from the given inputs and output.
func NewFnSig(inputs []Type, output Type) FnSig {
	cp := make([]Type, len(inputs))
	copy(cp, inputs)
	return FnSig{Inputs: cp, Output: output}
}

// Equal reports whether sig and other are structurally identical.
func (sig FnSig) Equal(other FnSig) bool {
	if len(sig.Inputs) != len(other.Inputs) {
		return false
	}
	for i := range sig.Inputs {
		if !sig.Inputs[i].Equal(other.Inputs[i]) {
			return false
		}
	}
	return sig.Output.Equal(other.Output)
}

func (sig FnSig) String() string {
	s := "("
	for i, in := range sig.Inputs {
		if i > 0 {
			s += ","
		}
		s += in.String()
	}
	return s + ")->" + sig.Output.String()
}
