package cil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEscapeFieldName exercises the S6 scenario: names colliding with
// reserved target identifiers, and names starting with a non-identifier
// character, both get an "m_" prefix; the empty name becomes "fld";
// anything else passes through unchanged, and escaping twice is a no-op.
func TestEscapeFieldName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"value", "m_value"},
		{"error", "m_error"},
		{"0", "m_0"},
		{"foo", "foo"},
		{"_bar", "_bar"},
		{"", "fld"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, EscapeFieldName(tc.name))
		})
	}
}

func TestEscapeFieldNameIdempotent(t *testing.T) {
	for _, name := range []string{"value", "error", "0", "foo", "1bad"} {
		once := EscapeFieldName(name)
		twice := EscapeFieldName(once)
		require.Equal(t, once, twice, "escaping %q twice should be stable", name)
	}
}
