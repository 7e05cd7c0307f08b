package cil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAutopatch is the S4 scenario: a static call with no declaring type
// naming a function the assembly never defines gets a synthesized
// throwing stub, and calling it twice with the same signature produces
// only one stub.
func TestAutopatch(t *testing.T) {
	asm := NewAssembly("asm")
	missing := CallSite{Name: "missing_fn", Sig: NewFnSig([]Type{I32}, Void), Static: true}
	caller := NewMethod(Public, true, NewFnSig(nil, Void), "caller", nil)
	caller.Ops = []Op{
		LdcI32(1), Call(missing),
		LdcI32(2), Call(missing),
		Ret,
	}
	asm.AddMethod(caller)

	Autopatch(asm)

	stub, ok := asm.LookupMethod("missing_fn")
	require.True(t, ok)
	require.True(t, stub.IsStatic)
	require.Equal(t, Private, stub.Access)
	require.True(t, stub.Sig.Equal(missing.Sig))
	require.Equal(t, OLdStr, stub.Ops[0].Kind)
	require.Equal(t, ONewObj, stub.Ops[1].Kind)
	require.Equal(t, OThrow, stub.Ops[2].Kind)

	require.Len(t, asm.Methods(), 2) // caller + exactly one stub
}

func TestAutopatchSkipsResolvedCalls(t *testing.T) {
	asm := NewAssembly("asm")
	defined := NewMethod(Public, true, NewFnSig(nil, Void), "defined_fn", nil)
	asm.AddMethod(defined)

	caller := NewMethod(Public, true, NewFnSig(nil, Void), "caller", nil)
	caller.Ops = []Op{Call(CallSite{Name: "defined_fn", Sig: NewFnSig(nil, Void), Static: true}), Ret}
	asm.AddMethod(caller)

	Autopatch(asm)
	require.Len(t, asm.Methods(), 2) // no stub added
}

func TestAutopatchSkipsInstanceAndDeclaredCalls(t *testing.T) {
	asm := NewAssembly("asm")
	caller := NewMethod(Public, true, NewFnSig(nil, Void), "caller", nil)
	instanceCall := CallSite{Name: "m", Sig: NewFnSig([]Type{Ref(Named("Foo"), true)}, Void), Static: false}
	declaredStaticCall := CallSite{Declaring: &TypeRef{Name: "Foo"}, Name: "s", Sig: NewFnSig(nil, Void), Static: true}
	caller.Ops = []Op{CallVirt(instanceCall), Call(declaredStaticCall), Ret}
	asm.AddMethod(caller)

	Autopatch(asm)
	require.Len(t, asm.Methods(), 1) // neither call site is autopatchable
}

// TestUnresolvedExternals is the collaborator Autopatch itself now builds
// on: a linker running with abort-on-error semantics calls this directly
// instead of Autopatch, so it can fail the link instead of patching.
func TestUnresolvedExternals(t *testing.T) {
	asm := NewAssembly("asm")
	missing := CallSite{Name: "missing_fn", Sig: NewFnSig([]Type{I32}, Void), Static: true}
	caller := NewMethod(Public, true, NewFnSig(nil, Void), "caller", nil)
	caller.Ops = []Op{LdcI32(1), Call(missing), Ret}
	asm.AddMethod(caller)

	got := UnresolvedExternals(asm)
	require.Len(t, got, 1)
	require.Equal(t, "missing_fn", got[0].Name)

	// Calling it does not itself register any stub.
	_, ok := asm.LookupMethod("missing_fn")
	require.False(t, ok)
}

func TestAddMandatoryStatics(t *testing.T) {
	asm := NewAssembly("asm")
	AddMandatoryStatics(asm)
	statics := asm.Statics()
	require.Len(t, statics, 3)

	byName := make(map[string]StaticDef, len(statics))
	for _, s := range statics {
		byName[s.Name] = s
	}
	require.True(t, byName["__rust_alloc_error_handler_should_panic"].Type.Equal(U8))
	require.True(t, byName["__rust_no_alloc_shim_is_unstable"].Type.Equal(U8))
	require.True(t, byName["environ"].Type.Equal(Ptr(Ptr(U8))))
}
