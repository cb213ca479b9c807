package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RockYYY888/bdi-planlib/bdiplan/pddl"
)

func loadBlocksworld(t *testing.T) *pddl.Domain {
	t.Helper()
	d, err := pddl.ParseDomainFile("../pddl/testdata/blocksworld.pddl")
	require.NoError(t, err)
	return d
}

func TestH2MutexBlocksworld(t *testing.T) {
	inv := SynthesizeInvariants(loadBlocksworld(t))

	// handempty and holding can never co-occur: no action makes them
	// simultaneously true.
	assert.True(t, inv.Mutex("handempty", "holding"))
	assert.True(t, inv.Mutex("holding", "handempty"), "mutex is unordered")

	// Co-added pairs are cleared: stack adds clear, handempty and on
	// together; unstack adds holding and clear together.
	assert.False(t, inv.Mutex("clear", "handempty"))
	assert.False(t, inv.Mutex("clear", "on"))
	assert.False(t, inv.Mutex("handempty", "on"))
	assert.False(t, inv.Mutex("clear", "holding"))

	// put-down adds ontable, clear and handempty together.
	assert.False(t, inv.Mutex("clear", "ontable"))
	assert.False(t, inv.Mutex("handempty", "ontable"))
}

func TestExactlyOneToggleDetection(t *testing.T) {
	// A light-switch domain where toggle actions flip exactly one atom on
	// and one off.
	d, err := pddl.ParseDomain(`(define (domain switch)
	  (:predicates (lampon) (lampoff))
	  (:action flip-on
	    :parameters ()
	    :precondition (lampoff)
	    :effect (and (lampon) (not (lampoff))))
	  (:action flip-off
	    :parameters ()
	    :precondition (lampon)
	    :effect (and (lampoff) (not (lampon)))))`)
	require.NoError(t, err)

	inv := SynthesizeInvariants(d)
	groups := inv.ExactlyOneGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"lampoff", "lampon"}, groups[0])

	// Both members are nullary, so both are singletons.
	assert.True(t, inv.Singleton("lampon"))
	assert.True(t, inv.Singleton("lampoff"))
}

func TestToggleGroupWithArity(t *testing.T) {
	// A gripper-like slot: free hand toggles against holding an object.
	d, err := pddl.ParseDomain(`(define (domain grip)
	  (:predicates (free) (carrying ?x))
	  (:action grab
	    :parameters (?x)
	    :precondition (free)
	    :effect (and (carrying ?x) (not (free))))
	  (:action drop
	    :parameters (?x)
	    :precondition (carrying ?x)
	    :effect (and (free) (not (carrying ?x)))))`)
	require.NoError(t, err)

	inv := SynthesizeInvariants(d)
	require.Len(t, inv.ExactlyOneGroups(), 1)
	// carrying shares its group with the nullary free, so at most one
	// carrying instance may exist.
	assert.True(t, inv.Singleton("carrying"))
	assert.True(t, inv.Mutex("free", "carrying"))
}

func TestBlocksworldHasNoToggleGroups(t *testing.T) {
	// None of the four blocksworld operators is single-add/single-delete.
	inv := SynthesizeInvariants(loadBlocksworld(t))
	assert.Empty(t, inv.ExactlyOneGroups())
}
