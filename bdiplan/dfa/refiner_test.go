package dfa

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RockYYY888/bdi-planlib/bdiplan"
)

func twoStateDFA(label string) *DFA {
	return &DFA{
		States:    []string{"1", "2"},
		Initial:   "1",
		Accepting: map[string]bool{"2": true},
		Transitions: []Transition{
			{From: "1", To: "2", Label: label},
		},
	}
}

// checkRefined verifies the refinement contract: every refined label is a
// single literal or a conjunction of literals, and the refined automaton
// enables the same successors everywhere.
func checkRefined(t *testing.T, orig *DFA, result *RefineResult) {
	t.Helper()
	for _, tr := range result.DFA.Transitions {
		_, err := ParseLabel(tr.Label)
		require.NoError(t, err, "refined label %q", tr.Label)
		if kept(result, tr.Label) {
			continue
		}
		assert.NotContains(t, tr.Label, "|", "refined label %q must be conjunctive", tr.Label)
	}
	disagreements, err := VerifyEquivalence(orig, result.DFA, MaxEnumerativeAtoms)
	require.NoError(t, err)
	assert.Empty(t, disagreements)
}

func kept(result *RefineResult, label string) bool {
	for _, k := range result.KeptVerbatim {
		if k == label {
			return true
		}
	}
	return false
}

func TestRefineSingleAtomLabelIsUnchanged(t *testing.T) {
	orig := twoStateDFA("on_a_b")
	result, err := Refine(orig, RefineOptions{})
	require.NoError(t, err)
	require.Len(t, result.DFA.Transitions, 1)
	assert.Equal(t, "on_a_b", result.DFA.Transitions[0].Label)
	checkRefined(t, orig, result)
}

func TestRefineNegatedLabel(t *testing.T) {
	orig := twoStateDFA("~on_a_b")
	result, err := Refine(orig, RefineOptions{})
	require.NoError(t, err)
	require.Len(t, result.DFA.Transitions, 1)
	assert.Equal(t, "~on_a_b", result.DFA.Transitions[0].Label)
	checkRefined(t, orig, result)
}

func TestRefineDisjunctionSplits(t *testing.T) {
	// (on_a_b & clear_c) | on_d_e over a 3-atom alphabet becomes two
	// disjoint transitions.
	orig := twoStateDFA("(on_a_b & clear_c) | on_d_e")
	result, err := Refine(orig, RefineOptions{})
	require.NoError(t, err)

	require.Len(t, result.DFA.Transitions, 2)
	labels := []string{result.DFA.Transitions[0].Label, result.DFA.Transitions[1].Label}
	assert.Contains(t, labels, "on_d_e")
	// The other partition is the first disjunct minus on_d_e.
	var other string
	for _, l := range labels {
		if l != "on_d_e" {
			other = l
		}
	}
	assert.Contains(t, other, "~on_d_e")
	assert.Contains(t, other, "clear_c")
	assert.Contains(t, other, "on_a_b")

	checkRefined(t, orig, result)
}

func TestRefineKeepsTrueLabels(t *testing.T) {
	orig := &DFA{
		States:    []string{"1"},
		Initial:   "1",
		Accepting: map[string]bool{"1": true},
		Transitions: []Transition{
			{From: "1", To: "1", Label: "true"},
			{From: "1", To: "1", Label: "a | ~a"},
		},
	}
	result, err := Refine(orig, RefineOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", result.DFA.Transitions[0].Label)
	assert.Equal(t, "a | ~a", result.DFA.Transitions[1].Label)
}

func TestRefineBudgetKeepsLabelVerbatim(t *testing.T) {
	// a | b | c | d expands past a budget of 2.
	orig := twoStateDFA("a | b | c | d")
	result, err := Refine(orig, RefineOptions{MintermBudget: 2})
	require.NoError(t, err)
	require.Len(t, result.DFA.Transitions, 1)
	assert.Equal(t, "a | b | c | d", result.DFA.Transitions[0].Label)
	assert.Equal(t, []string{"a | b | c | d"}, result.KeptVerbatim)
	assert.NotEmpty(t, result.Warnings)
}

func TestRefineMalformedLabel(t *testing.T) {
	_, err := Refine(twoStateDFA("on_a_b &"), RefineOptions{})
	require.Error(t, err)
	var parseErr *bdiplan.LabelParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestRefineEnumerativeMatchesSemantics(t *testing.T) {
	for _, label := range []string{
		"on_a_b",
		"~on_a_b",
		"(on_a_b & clear_c) | on_d_e",
		"a & (b | ~c)",
	} {
		orig := twoStateDFA(label)
		result, err := RefineEnumerative(orig, RefineOptions{})
		require.NoError(t, err, "label %q", label)
		checkRefined(t, orig, result)
	}
}

func TestRefineEnumerativeTooManyPredicates(t *testing.T) {
	atoms := make([]string, MaxEnumerativeAtoms+1)
	for i := range atoms {
		atoms[i] = fmt.Sprintf("p%d", i)
	}
	orig := twoStateDFA(strings.Join(atoms, " | "))
	_, err := RefineEnumerative(orig, RefineOptions{})
	require.Error(t, err)
	var tooMany *bdiplan.TooManyPredicatesError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, MaxEnumerativeAtoms+1, tooMany.Count)
}

func TestRefineAgreesWithEnumerative(t *testing.T) {
	// Both refiners must preserve the language; they may pick different
	// partition shapes.
	for _, label := range []string{
		"x & y",
		"x | y",
		"~(x & y)",
		"(x & ~y) | (z & y)",
	} {
		orig := twoStateDFA(label)
		viaBDD, err := Refine(orig, RefineOptions{})
		require.NoError(t, err)
		viaEnum, err := RefineEnumerative(orig, RefineOptions{})
		require.NoError(t, err)

		disagreements, err := VerifyEquivalence(viaBDD.DFA, viaEnum.DFA, MaxEnumerativeAtoms)
		require.NoError(t, err)
		assert.Empty(t, disagreements, "label %q", label)
	}
}
