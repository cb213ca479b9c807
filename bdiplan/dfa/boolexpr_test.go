package dfa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

func TestParseLabelPrecedence(t *testing.T) {
	// Negation binds tighter than &, which binds tighter than |.
	e, err := ParseLabel("!a & b | c")
	require.NoError(t, err)

	cases := []struct {
		a, b, c bool
		want    bool
	}{
		{false, true, false, true},  // !a & b
		{true, true, false, false},  // a kills the conjunct
		{true, false, true, true},   // c alone
		{false, false, false, false},
	}
	for _, tc := range cases {
		got := e.Eval(map[string]bool{"a": tc.a, "b": tc.b, "c": tc.c})
		assert.Equal(t, tc.want, got, "a=%v b=%v c=%v", tc.a, tc.b, tc.c)
	}
}

func TestParseLabelConstantsAndParens(t *testing.T) {
	e, err := ParseLabel("(a | false) & true")
	require.NoError(t, err)
	assert.True(t, e.Eval(map[string]bool{"a": true}))
	assert.False(t, e.Eval(map[string]bool{"a": false}))

	e, err = ParseLabel("~(a & b)")
	require.NoError(t, err)
	assert.True(t, e.Eval(map[string]bool{"a": true, "b": false}))
	assert.False(t, e.Eval(map[string]bool{"a": true, "b": true}))
}

func TestParseLabelErrors(t *testing.T) {
	for _, bad := range []string{"a &", "(a", "a b", "&", "a | | b", "a ? b"} {
		_, err := ParseLabel(bad)
		require.Error(t, err, "label %q", bad)
		var parseErr *bdiplan.LabelParseError
		assert.True(t, errors.As(err, &parseErr), "label %q should yield LabelParseError", bad)
	}
}

func TestExprAtoms(t *testing.T) {
	e, err := ParseLabel("on_a_b & (clear_c | ~on_a_b)")
	require.NoError(t, err)
	assert.Equal(t, []string{"clear_c", "on_a_b"}, ExprAtoms(e))
}

func TestDNF(t *testing.T) {
	e, err := ParseLabel("(a & b) | c")
	require.NoError(t, err)
	dnf := DNF(e)
	require.Len(t, dnf, 2)
	assert.Equal(t, "a", dnf[0][0].Name)
	assert.Equal(t, "b", dnf[0][1].Name)
	assert.Equal(t, "c", dnf[1][0].Name)

	// De Morgan through negation.
	e, err = ParseLabel("~(a | b)")
	require.NoError(t, err)
	dnf = DNF(e)
	require.Len(t, dnf, 1)
	require.Len(t, dnf[0], 2)
	assert.True(t, dnf[0][0].Negated)
	assert.True(t, dnf[0][1].Negated)

	// Contradictory conjuncts are dropped.
	e, err = ParseLabel("a & ~a")
	require.NoError(t, err)
	assert.Empty(t, DNF(e))

	// true becomes the empty conjunction, false the empty disjunction.
	e, _ = ParseLabel("true")
	require.Len(t, DNF(e), 1)
	assert.Empty(t, DNF(e)[0])
	e, _ = ParseLabel("false")
	assert.Empty(t, DNF(e))
}
