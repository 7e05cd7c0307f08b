package cil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMangleInjective exercises the injectivity invariant mangle.go
// relies on: two structurally different types must never mangle to the
// same string. Array's encoding of its element count is the case that
// was initially buggy (mangle without the count collapses [i32;4] and
// [i32;8] to the same name).
func TestMangleInjective(t *testing.T) {
	types := []Type{
		I32, I64, Bool,
		Array(I32, 4), Array(I32, 8), Array(I64, 4),
		Slice(I32), Slice(I64),
		Tuple(I32, Bool), Tuple(Bool, I32),
		Named("Foo"), Named("Foo", I32), Named("Bar"),
		Generic(0), Generic(1),
	}
	seen := make(map[string]Type)
	for _, ty := range types {
		m := mangle(ty)
		if other, ok := seen[m]; ok && !other.Equal(ty) {
			t.Fatalf("mangle collision: %s and %s both mangle to %q", other, ty, m)
		}
		seen[m] = ty
	}
}

func TestMangleArrayEncodesCount(t *testing.T) {
	require.NotEqual(t, mangle(Array(I32, 4)), mangle(Array(I32, 8)))
}

func TestMangleDeterministic(t *testing.T) {
	ty := Tuple(I32, Slice(Bool), Array(I64, 3))
	require.Equal(t, mangle(ty), mangle(ty))
}
