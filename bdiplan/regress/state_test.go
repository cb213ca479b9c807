package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

func TestCanonicalKeyDetectsIsomorphism(t *testing.T) {
	a := NewState([]bdiplan.Atom{
		bdiplan.NewAtom("on", "?v2", "?v5"),
		bdiplan.NewAtom("clear", "?v2"),
	}, []Constraint{NewConstraint("?v2", "?v5")}, 0, 5)

	b := NewState([]bdiplan.Atom{
		bdiplan.NewAtom("on", "?v7", "?v3"),
		bdiplan.NewAtom("clear", "?v7"),
	}, []Constraint{NewConstraint("?v7", "?v3")}, 0, 7)

	assert.Equal(t, a.CanonicalKey(), b.CanonicalKey(),
		"states isomorphic under variable renaming must share a key")
}

func TestCanonicalKeyDistinguishesStructure(t *testing.T) {
	a := NewState([]bdiplan.Atom{
		bdiplan.NewAtom("on", "?v1", "?v2"),
		bdiplan.NewAtom("clear", "?v1"),
	}, nil, 0, 2)
	b := NewState([]bdiplan.Atom{
		bdiplan.NewAtom("on", "?v1", "?v2"),
		bdiplan.NewAtom("clear", "?v2"),
	}, nil, 0, 2)
	assert.NotEqual(t, a.CanonicalKey(), b.CanonicalKey())

	// Constraints distinguish otherwise-identical states.
	c := NewState(a.Atoms, []Constraint{NewConstraint("?v1", "?v2")}, 0, 2)
	assert.NotEqual(t, a.CanonicalKey(), c.CanonicalKey())
}

func TestCanonicalKeyConstantsUnchanged(t *testing.T) {
	s := NewState([]bdiplan.Atom{bdiplan.NewAtom("on", "a", "?v4")}, nil, 0, 4)
	c := s.Canonicalize()
	require.Len(t, c.Atoms, 1)
	assert.Equal(t, "on(a,?c1)", c.Atoms[0].Key())
}

func TestCanonicalizeIsFixedPoint(t *testing.T) {
	s := NewState([]bdiplan.Atom{
		bdiplan.NewAtom("on", "?v9", "?v2"),
		bdiplan.NewAtom("holding", "?v4"),
	}, []Constraint{NewConstraint("?v9", "?v4")}, 3, 9)

	once := s.Canonicalize()
	twice := once.Canonicalize()
	assert.Equal(t, once.CanonicalKey(), twice.CanonicalKey())
	for i := range once.Atoms {
		assert.True(t, once.Atoms[i].Equal(twice.Atoms[i]))
	}
}

func TestNewStateSortsAndDeduplicatesConstraints(t *testing.T) {
	s := NewState(
		[]bdiplan.Atom{bdiplan.NewAtom("on", "?v1", "?v2"), bdiplan.NewAtom("clear", "?v3")},
		[]Constraint{NewConstraint("?v2", "?v1"), NewConstraint("?v1", "?v2")},
		1, 3)
	require.Len(t, s.Constraints, 1)
	assert.Equal(t, "clear", s.Atoms[0].Name, "atoms sorted")
}
