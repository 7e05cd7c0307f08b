package cil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeOf(t *testing.T) {
	asm := NewAssembly("test")
	sz, err := asm.SizeOf(I32)
	require.NoError(t, err)
	require.Equal(t, 4, sz)

	sz, err = asm.SizeOf(Array(I64, 3))
	require.NoError(t, err)
	require.Equal(t, 24, sz)

	sz, err = asm.SizeOf(Tuple(I8, I32))
	require.NoError(t, err)
	require.Equal(t, 5, sz)

	_, err = asm.SizeOf(Slice(I32))
	require.ErrorIs(t, err, ErrUncomputableSize)

	_, err = asm.SizeOf(Generic(0))
	require.ErrorIs(t, err, ErrUncomputableSize)
}

// TestSizeOfNamed is the S5 scenario: a named struct's size is the sum of
// its non-static field sizes, recursively.
func TestSizeOfNamed(t *testing.T) {
	asm := NewAssembly("test")
	asm.AddType(TypeDef{
		Name: "Point",
		Fields: []FieldDef{
			{Name: "x", Type: I32},
			{Name: "y", Type: I32},
			{Name: "cached", Type: I64, Static: true},
		},
		ValueType: true,
	})
	sz, err := asm.SizeOf(Named("Point"))
	require.NoError(t, err)
	require.Equal(t, 8, sz) // static field excluded
}

func TestSizeOfUnknownNamed(t *testing.T) {
	asm := NewAssembly("test")
	_, err := asm.SizeOf(Named("Nope"))
	require.Error(t, err)
}

// TestJoinUnion is the S3 scenario: Join performs a true set union,
// keeping entries unique to either input and deduplicating identical
// entries shared by both, rather than one input unconditionally
// shadowing the other.
func TestJoinUnion(t *testing.T) {
	a := NewAssembly("asm")
	a.AddType(TypeDef{Name: "Foo", Fields: []FieldDef{{Name: "x", Type: I32}}})
	a.AddMethod(NewMethod(Public, true, NewFnSig(nil, Void), "fA", nil))

	b := NewAssembly("asm")
	b.AddType(TypeDef{Name: "Bar", Fields: []FieldDef{{Name: "y", Type: Bool}}})
	b.AddMethod(NewMethod(Public, true, NewFnSig(nil, Void), "fB", nil))

	joined, err := Join(a, b)
	require.NoError(t, err)
	require.Len(t, joined.Types(), 2)
	require.Len(t, joined.Methods(), 2)
}

func TestJoinDedupesIdenticalType(t *testing.T) {
	a := NewAssembly("asm")
	def := TypeDef{Name: "Shared", Fields: []FieldDef{{Name: "x", Type: I32}}}
	a.AddType(def)

	b := NewAssembly("asm")
	b.AddType(def)

	joined, err := Join(a, b)
	require.NoError(t, err)
	require.Len(t, joined.Types(), 1)
}

func TestJoinRejectsConflictingType(t *testing.T) {
	a := NewAssembly("asm")
	a.AddType(TypeDef{Name: "Shared", Fields: []FieldDef{{Name: "x", Type: I32}}})

	b := NewAssembly("asm")
	b.AddType(TypeDef{Name: "Shared", Fields: []FieldDef{{Name: "x", Type: I64}}})

	_, err := Join(a, b)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConflictingType))
}

func TestJoinRejectsConflictingMethodSignature(t *testing.T) {
	a := NewAssembly("asm")
	a.AddMethod(NewMethod(Public, true, NewFnSig(nil, Void), "f", nil))

	b := NewAssembly("asm")
	b.AddMethod(NewMethod(Public, true, NewFnSig([]Type{I32}, Void), "f", nil))

	_, err := Join(a, b)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConflictingMethod))
}

func TestJoinRejectsConflictingStatic(t *testing.T) {
	a := NewAssembly("asm")
	a.AddStatic(StaticDef{Name: "g", Type: I32})

	b := NewAssembly("asm")
	b.AddStatic(StaticDef{Name: "g", Type: I64})

	_, err := Join(a, b)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConflictingStatic))
}

func TestEntrypoint(t *testing.T) {
	asm := NewAssembly("asm")
	plain := NewMethod(Public, true, NewFnSig(nil, Void), "plain", nil)
	asm.AddMethod(plain)
	_, ok := asm.Entrypoint()
	require.False(t, ok)

	main := NewMethod(Public, true, NewFnSig(nil, Void), "main", nil)
	main.AddAttribute(EntryPoint)
	asm.AddMethod(main)

	ep, ok := asm.Entrypoint()
	require.True(t, ok)
	require.Equal(t, "main", ep.Name)
}
