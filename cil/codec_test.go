package cil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	asm := NewAssembly("roundtrip")
	asm.AddType(TypeDef{Name: "Point", Fields: []FieldDef{{Name: "x", Type: I32}, {Name: "y", Type: I32}}, ValueType: true})
	asm.AddStatic(StaticDef{Name: "g", Type: Ptr(U8)})

	m := NewMethod(Public, true, NewFnSig([]Type{I32}, I32), "double", nil)
	m.Ops = []Op{
		LDArg(0), LdcI32(2), Mul, Ret,
	}
	asm.AddMethod(m)

	data, err := asm.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, asm.Name, decoded.Name)
	require.Equal(t, asm.Types(), decoded.Types())
	require.Equal(t, asm.Statics(), decoded.Statics())
	require.Equal(t, asm.Methods(), decoded.Methods())
}
