package ltlf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"F(on_a_b)", "F(on_a_b)"},
		{"G(clear_c)", "G(clear_c)"},
		{"F(on_a_b) & G(clear_c)", "F(on_a_b) & G(clear_c)"},
		{"on_a_b U clear_c", "on_a_b U clear_c"},
		{"X(on_a_b)", "X(on_a_b)"},
		{"WX(on_a_b)", "WX(on_a_b)"},
		{"!on_a_b", "!on_a_b"},
		{"on_a_b -> clear_c", "on_a_b -> clear_c"},
		{"on_a_b <-> clear_c", "on_a_b <-> clear_c"},
		{"true", "true"},
		{"false U on_a_b", "false U on_a_b"},
	}
	for _, tc := range cases {
		f, err := Parse(tc.in)
		require.NoError(t, err, "formula %q", tc.in)
		assert.Equal(t, tc.want, f.String())
	}
}

func TestParsePrecedence(t *testing.T) {
	// & binds tighter than |, U tighter than &.
	f, err := Parse("a | b & c U d")
	require.NoError(t, err)
	or, ok := f.(Binary)
	require.True(t, ok)
	assert.Equal(t, "|", or.Op)
	and, ok := or.R.(Binary)
	require.True(t, ok)
	assert.Equal(t, "&", and.Op)
	until, ok := and.R.(Binary)
	require.True(t, ok)
	assert.Equal(t, "U", until.Op)

	// Implication is right-associative.
	f, err = Parse("a -> b -> c")
	require.NoError(t, err)
	impl := f.(Binary)
	assert.Equal(t, "->", impl.Op)
	_, leftIsAtom := impl.L.(Atom)
	assert.True(t, leftIsAtom)
}

func TestParseErrors(t *testing.T) {
	for _, bad := range []string{"", "F(", "a &", "a b", "On_a", "a U", "(a"} {
		_, err := Parse(bad)
		assert.Error(t, err, "formula %q", bad)
	}
}

func TestAtoms(t *testing.T) {
	f, err := Parse("F(on_a_b & clear_c) | G(on_a_b)")
	require.NoError(t, err)
	assert.Equal(t, []string{"clear_c", "on_a_b"}, Atoms(f))
}

func TestCheckAlphabet(t *testing.T) {
	f, err := Parse("F(on_a_b) & G(clear_c)")
	require.NoError(t, err)

	assert.Empty(t, CheckAlphabet(f, []string{"on_a_b", "clear_c"}))
	missing := CheckAlphabet(f, []string{"on_a_b"})
	assert.Equal(t, []string{"clear_c"}, missing)
}
