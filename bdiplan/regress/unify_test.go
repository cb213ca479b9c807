package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

func TestMatch(t *testing.T) {
	// Pattern variables bind to target terms.
	b, ok := Match(bdiplan.NewAtom("on", "?x", "?y"), bdiplan.NewAtom("on", "a", "b"))
	require.True(t, ok)
	assert.Equal(t, Binding{"?x": "a", "?y": "b"}, b)

	// Variables may bind to variables.
	b, ok = Match(bdiplan.NewAtom("on", "?x", "?y"), bdiplan.NewAtom("on", "a", "?v1"))
	require.True(t, ok)
	assert.Equal(t, "?v1", b["?y"])

	// Repeated variables must bind consistently.
	_, ok = Match(bdiplan.NewAtom("eq", "?x", "?x"), bdiplan.NewAtom("eq", "a", "b"))
	assert.False(t, ok)
	b, ok = Match(bdiplan.NewAtom("eq", "?x", "?x"), bdiplan.NewAtom("eq", "a", "a"))
	require.True(t, ok)
	assert.Equal(t, Binding{"?x": "a"}, b)

	// Constants unify only with equal constants.
	_, ok = Match(bdiplan.NewAtom("on", "a", "?y"), bdiplan.NewAtom("on", "b", "c"))
	assert.False(t, ok)

	// Name and arity must agree.
	_, ok = Match(bdiplan.NewAtom("on", "?x"), bdiplan.NewAtom("on", "a", "b"))
	assert.False(t, ok)
	_, ok = Match(bdiplan.NewAtom("clear", "?x"), bdiplan.NewAtom("on", "a"))
	assert.False(t, ok)
}

func TestBindingApply(t *testing.T) {
	b := Binding{"?x": "a"}
	assert.Equal(t, "a", b.Apply("?x"))
	assert.Equal(t, "?y", b.Apply("?y"))

	clone := b.Clone()
	clone["?x"] = "z"
	assert.Equal(t, "a", b.Apply("?x"), "Clone must not alias")
}
