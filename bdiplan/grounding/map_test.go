package grounding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

const sampleMap = `{
  "atoms": {
    "on_a_b":   {"predicate": "on",    "args": ["a", "b"]},
    "clear_c":  {"predicate": "clear", "args": ["c"]},
    "handempty": {"predicate": "handempty", "args": []}
  },
  "predicates": {
    "on":    {"arity": 2},
    "clear": {"arity": 1},
    "handempty": {"arity": 0}
  },
  "objects": ["a", "b", "c"]
}`

func TestLoadAndResolve(t *testing.T) {
	m, err := Load([]byte(sampleMap))
	require.NoError(t, err)

	atom, err := m.Atom("on_a_b")
	require.NoError(t, err)
	assert.Equal(t, "on(a,b)", atom.Key())

	atom, err = m.Atom("handempty")
	require.NoError(t, err)
	assert.Equal(t, "handempty", atom.Key())

	_, err = m.Atom("missing_sym")
	require.Error(t, err)
	var mismatch *bdiplan.GroundingMapMismatchError
	assert.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "missing_sym", mismatch.Symbol)
}

func TestSymbolEncodingRoundTrip(t *testing.T) {
	m, err := Load([]byte(`{
	  "atoms": {
	    "on_blockhh1_blockhh2": {"predicate": "on", "args": ["block-1", "block-2"]}
	  },
	  "objects": ["block-1", "block-2"]
	}`))
	require.NoError(t, err)

	// Encoding the predicate-and-arguments pair must land on the symbol the
	// map carries, and resolving the symbol returns the pair exactly.
	sym := m.Symbol("on", []string{"block-1", "block-2"})
	assert.Equal(t, "on_blockhh1_blockhh2", sym)

	atom, err := m.Atom(sym)
	require.NoError(t, err)
	assert.Equal(t, []string{"block-1", "block-2"}, atom.Args)
}

func TestValidate(t *testing.T) {
	m, err := Load([]byte(`{
	  "atoms": {"on_a": {"predicate": "on", "args": ["a"]}},
	  "predicates": {"on": {"arity": 2}},
	  "objects": ["a"]
	}`))
	require.NoError(t, err)
	problems := m.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "arity")
}

func TestLoadFillsImplicitRegistries(t *testing.T) {
	m, err := Load([]byte(`{"atoms": {"p_x": {"predicate": "p", "args": ["x"]}}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Predicates["p"])
	assert.Equal(t, []string{"x"}, m.Objects)
}
