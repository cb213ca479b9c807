package dfa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monaDot = `digraph MONA_DFA {
 rankdir = LR;
 center = true;
 size = "7.5,10.5";
 edge [fontname = Courier];
 node [height = .5, width = .5];
 node [shape = doublecircle]; 3;
 node [shape = circle]; 1; 2;
 init [shape = plaintext, label = ""];
 init -> 1;
 1 -> 1 [label="~on_a_b"];
 1 -> 3 [label="on_a_b"];
 3 -> 3 [label="true"];
}`

const mockDot = `digraph G {
    __start [shape=none];
    s0 [shape=circle];
    s1 [shape=doublecircle];
    __start -> s0;
    s0 -> s1 [label="on_a_b & clear_c"];
    s1 -> s1 [label="true"];
}`

func TestParseDOTMonaDialect(t *testing.T) {
	d, err := ParseDOT(monaDot)
	require.NoError(t, err)

	assert.Equal(t, "1", d.Initial)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, d.States)
	assert.True(t, d.Accepting["3"])
	assert.False(t, d.Accepting["1"])
	require.Len(t, d.Transitions, 3)
	assert.Equal(t, Transition{From: "1", To: "3", Label: "on_a_b"}, d.Transitions[1])

	atoms, err := d.Alphabet()
	require.NoError(t, err)
	assert.Equal(t, []string{"on_a_b"}, atoms)
}

func TestParseDOTNodeAttributeDialect(t *testing.T) {
	d, err := ParseDOT(mockDot)
	require.NoError(t, err)

	assert.Equal(t, "s0", d.Initial)
	assert.True(t, d.Accepting["s1"])
	assert.False(t, d.Accepting["s0"])
	require.Len(t, d.Transitions, 2)
	assert.Equal(t, "on_a_b & clear_c", d.Transitions[0].Label)
}

func TestAccepts(t *testing.T) {
	d, err := ParseDOT(monaDot)
	require.NoError(t, err)

	// Never achieving on_a_b stays in state 1: rejected.
	ok, err := d.Accepts([]map[string]bool{{"on_a_b": false}, {"on_a_b": false}})
	require.NoError(t, err)
	assert.False(t, ok)

	// Achieving it once reaches the accepting sink.
	ok, err = d.Accepts([]map[string]bool{{"on_a_b": false}, {"on_a_b": true}})
	require.NoError(t, err)
	assert.True(t, ok)

	// The empty word ends in the (non-accepting) initial state.
	ok, err = d.Accepts(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
